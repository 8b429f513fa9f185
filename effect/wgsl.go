// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"fmt"
	"strings"
)

// WGSL compute kernels are generated from the catalog rather than kept as
// checked-in shader files, so the GPU path and the software path share one
// set of constants. Each kernel operates on packed RGBA8 pixels in storage
// buffers (one u32 per pixel, little-endian channel order) and receives a
// common uniform block:
//
//	binding 0: Params uniform (width, height, amount, time, texel step)
//	binding 1: source pixels, read-only storage
//	binding 2: destination pixels, read-write storage
//	binding 3: tone LUT, read-only storage (LUT kernels only)
//
// Amount-dependent matrices are computed inside the kernel from the amount
// uniform, so a compiled module is reusable across setting changes.

const wgslHeader = `struct Params {
    width: u32,
    height: u32,
    amount: f32,
    time: f32,
    texel: vec2<f32>,
    pad: vec2<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> src: array<u32>;
@group(0) @binding(2) var<storage, read_write> dst: array<u32>;
`

const wgslLUTBinding = `@group(0) @binding(3) var<storage, read> lut: array<u32>;
`

const wgslCommon = `
fn load_px(idx: u32) -> vec4<f32> {
    let p = src[idx];
    return vec4<f32>(
        f32(p & 0xffu),
        f32((p >> 8u) & 0xffu),
        f32((p >> 16u) & 0xffu),
        f32((p >> 24u) & 0xffu)) / 255.0;
}

fn store_px(idx: u32, c: vec4<f32>) {
    let q = clamp(c, vec4<f32>(0.0), vec4<f32>(1.0)) * 255.0 + vec4<f32>(0.5);
    dst[idx] = u32(q.x) | (u32(q.y) << 8u) | (u32(q.z) << 16u) | (u32(q.w) << 24u);
}

fn tap(x: i32, y: i32) -> vec4<f32> {
    let cx = clamp(x, 0, i32(params.width) - 1);
    let cy = clamp(y, 0, i32(params.height) - 1);
    return load_px(u32(cy) * params.width + u32(cx));
}

fn luma(c: vec3<f32>) -> f32 {
    return dot(c, vec3<f32>(0.2126, 0.7152, 0.0722));
}
`

const wgslHSV = `
fn rgb2hsv(c: vec3<f32>) -> vec3<f32> {
    let k = vec4<f32>(0.0, -1.0 / 3.0, 2.0 / 3.0, -1.0);
    let p = mix(vec4<f32>(c.bg, k.wz), vec4<f32>(c.gb, k.xy), step(c.b, c.g));
    let q = mix(vec4<f32>(p.xyw, c.r), vec4<f32>(c.r, p.yzx), step(p.x, c.r));
    let d = q.x - min(q.w, q.y);
    let e = 1.0e-10;
    return vec3<f32>(abs(q.z + (q.w - q.y) / (6.0 * d + e)), d / (q.x + e), q.x);
}

fn hsv2rgb(c: vec3<f32>) -> vec3<f32> {
    let k = vec4<f32>(1.0, 2.0 / 3.0, 1.0 / 3.0, 3.0);
    let p = abs(fract(c.xxx + k.xyz) * 6.0 - k.www);
    return c.z * mix(k.xxx, clamp(p - k.xxx, vec3<f32>(0.0), vec3<f32>(1.0)), c.y);
}
`

// kernelBody holds the per-kind statements operating on `c`, the current
// pixel in [0, 1] RGBA. gid and idx are in scope.
var kernelBodies = map[Kind]string{
	KindVibrance: `    let avg = (c.r + c.g + c.b) / 3.0;
    let mx = max(c.r, max(c.g, c.b));
    let amt = (mx - avg) * (-params.amount * 3.0);
    c = vec4<f32>(mix(c.rgb, vec3<f32>(mx), amt), c.a);`,

	KindSaturation: `    let f = 1.0 + params.amount;
    let gray = luma(c.rgb);
    c = vec4<f32>(vec3<f32>(gray) + (c.rgb - vec3<f32>(gray)) * f, c.a);`,

	KindTemperature: `    c.r = c.r + params.amount;
    c.b = c.b - params.amount;`,

	KindTint: `    c.g = c.g - params.amount;`,

	KindHue: `    var hsv = rgb2hsv(c.rgb);
    hsv.x = fract(hsv.x + params.amount + 1.0);
    c = vec4<f32>(hsv2rgb(hsv), c.a);`,

	KindBrightness: `    c = vec4<f32>(c.rgb * (1.0 + params.amount), c.a);`,

	KindExposure: `    let lin = pow(max(c.rgb, vec3<f32>(0.0)), vec3<f32>(2.2));
    c = vec4<f32>(pow(lin * exp2(params.amount * 2.0), vec3<f32>(1.0 / 2.2)), c.a);`,

	KindContrast: `    let f = 1.0 + params.amount;
    c = vec4<f32>((c.rgb - vec3<f32>(0.5)) * f + vec3<f32>(0.5), c.a);`,

	KindBlacks: `    let ir = lut[u32(round(clamp(c.r, 0.0, 1.0) * 255.0))];
    let ig = lut[u32(round(clamp(c.g, 0.0, 1.0) * 255.0))];
    let ib = lut[u32(round(clamp(c.b, 0.0, 1.0) * 255.0))];
    c.r = f32(ir & 0xffu) / 255.0;
    c.g = f32((ig >> 8u) & 0xffu) / 255.0;
    c.b = f32((ib >> 16u) & 0xffu) / 255.0;`,

	KindWhites: `    c = vec4<f32>(c.rgb * (vec3<f32>(1.0) + params.amount * c.rgb), c.a);`,

	KindHighlights: `    let m = smoothstep(0.5, 1.0, luma(c.rgb));
    c = vec4<f32>(c.rgb * (1.0 + params.amount * m * 0.7), c.a);`,

	KindShadows: `    let m = 1.0 - smoothstep(0.0, 0.5, luma(c.rgb));
    c = vec4<f32>(c.rgb + vec3<f32>(params.amount * m * 0.35), c.a);`,

	KindDehaze: `    c = vec4<f32>((c.rgb - vec3<f32>(0.1 * params.amount)) * (1.0 + 0.3 * params.amount), c.a);`,

	KindBloom: `    var acc = vec3<f32>(0.0);
    for (var dy = -2; dy <= 2; dy = dy + 1) {
        for (var dx = -2; dx <= 2; dx = dx + 1) {
            let s = tap(i32(gid.x) + dx, i32(gid.y) + dy);
            acc = acc + max(s.rgb - vec3<f32>(0.7), vec3<f32>(0.0));
        }
    }
    c = vec4<f32>(c.rgb + acc / 25.0 * params.amount * 3.0, c.a);`,

	KindGlamour: `    var acc = vec3<f32>(0.0);
    for (var dy = -2; dy <= 2; dy = dy + 1) {
        for (var dx = -2; dx <= 2; dx = dx + 1) {
            acc = acc + tap(i32(gid.x) + dx, i32(gid.y) + dy).rgb;
        }
    }
    let soft = acc / 25.0;
    let lo = 2.0 * c.rgb * soft;
    let hi = vec3<f32>(1.0) - 2.0 * (vec3<f32>(1.0) - c.rgb) * (vec3<f32>(1.0) - soft);
    let over = mix(lo, hi, step(vec3<f32>(0.5), c.rgb));
    c = vec4<f32>(mix(c.rgb, over, params.amount), c.a);`,

	KindClarity: `    var acc = 0.0;
    for (var dy = -2; dy <= 2; dy = dy + 1) {
        for (var dx = -2; dx <= 2; dx = dx + 1) {
            acc = acc + luma(tap(i32(gid.x) + dx * 2, i32(gid.y) + dy * 2).rgb);
        }
    }
    let detail = luma(c.rgb) - acc / 25.0;
    c = vec4<f32>(c.rgb + vec3<f32>(detail * params.amount), c.a);`,

	KindSharpen: `    let conv = 5.0 * c.rgb
        - tap(i32(gid.x) - 1, i32(gid.y)).rgb
        - tap(i32(gid.x) + 1, i32(gid.y)).rgb
        - tap(i32(gid.x), i32(gid.y) - 1).rgb
        - tap(i32(gid.x), i32(gid.y) + 1).rgb;
    c = vec4<f32>(mix(c.rgb, conv, params.amount), c.a);`,

	KindSmooth: `    var acc = vec3<f32>(0.0);
    for (var dy = -1; dy <= 1; dy = dy + 1) {
        for (var dx = -1; dx <= 1; dx = dx + 1) {
            acc = acc + tap(i32(gid.x) + dx, i32(gid.y) + dy).rgb;
        }
    }
    c = vec4<f32>(mix(c.rgb, acc / 9.0, params.amount), c.a);`,

	KindBlurH: `    var acc = vec4<f32>(0.0);
    for (var t = -4; t <= 4; t = t + 1) {
        let off = i32(round(f32(t) * params.amount));
        acc = acc + tap(i32(gid.x) + off, i32(gid.y)) * gauss_w(t + 4);
    }
    c = acc;`,

	KindBlurV: `    var acc = vec4<f32>(0.0);
    for (var t = -4; t <= 4; t = t + 1) {
        let off = i32(round(f32(t) * params.amount));
        acc = acc + tap(i32(gid.x), i32(gid.y) + off) * gauss_w(t + 4);
    }
    c = acc;`,

	KindVignette: `    let uv = (vec2<f32>(f32(gid.x), f32(gid.y)) + vec2<f32>(0.5)) /
        vec2<f32>(f32(params.width), f32(params.height));
    let d = distance(uv, vec2<f32>(0.5));
    let m = smoothstep(0.3, 0.8, d);
    c = vec4<f32>(c.rgb * (1.0 - params.amount * m * 0.7), c.a);`,

	KindGrain: `    let uv = (vec2<f32>(f32(gid.x), f32(gid.y)) + vec2<f32>(0.5)) /
        vec2<f32>(f32(params.width), f32(params.height));
    let n = fract(sin(dot(uv + vec2<f32>(params.time), vec2<f32>(12.9898, 78.233))) * 43758.5453) * 2.0 - 1.0;
    c = vec4<f32>(c.rgb + vec3<f32>(n * params.amount), c.a);`,

	KindBlit: ``,
}

const wgslGauss = `
fn gauss_w(i: i32) -> f32 {
    switch i {
        case 0: { return 0.0162162162; }
        case 1: { return 0.0540540541; }
        case 2: { return 0.1216216216; }
        case 3: { return 0.1945945946; }
        case 4: { return 0.2270270270; }
        case 5: { return 0.1945945946; }
        case 6: { return 0.1216216216; }
        case 7: { return 0.0540540541; }
        default: { return 0.0162162162; }
    }
}
`

// KernelSource generates the complete WGSL compute module for one pass
// kind. The result is deterministic, so callers may cache compiled
// modules keyed by a hash of the source.
func KernelSource(k Kind) (string, error) {
	body, ok := kernelBodies[k]
	if !ok {
		return "", fmt.Errorf("effect: no kernel for pass kind %d", int(k))
	}

	var b strings.Builder
	b.WriteString(wgslHeader)
	if k == KindBlacks {
		b.WriteString(wgslLUTBinding)
	}
	b.WriteString(wgslCommon)
	if k == KindHue {
		b.WriteString(wgslHSV)
	}
	if k == KindBlurH || k == KindBlurV {
		b.WriteString(wgslGauss)
	}

	b.WriteString(`
@compute @workgroup_size(8, 8)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    if (gid.x >= params.width || gid.y >= params.height) {
        return;
    }
    let idx = gid.y * params.width + gid.x;
    var c = load_px(idx);
`)
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString(`    store_px(idx, c);
}
`)
	return b.String(), nil
}
