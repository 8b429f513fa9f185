// Command darkroom applies color and tone adjustments to a PNG file.
//
// Usage:
//
//	darkroom -in photo.png -out fixed.png -contrast 20 -vibrance 30
//	darkroom -in photo.png -out fixed.png -auto
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"

	_ "image/jpeg"
	"image/png"

	"github.com/gogpu/darkroom"
	_ "github.com/gogpu/darkroom/backend/software"
	_ "github.com/gogpu/darkroom/backend/wgpu"
)

func main() {
	var (
		in      = flag.String("in", "", "input image (PNG or JPEG)")
		out     = flag.String("out", "out.png", "output PNG file")
		backend = flag.String("backend", "", "backend to use (wgpu, software); empty = auto")
		auto    = flag.Bool("auto", false, "apply automatic corrections")
		verbose = flag.Bool("v", false, "log engine activity")

		exposure   = flag.Float64("exposure", 0, "exposure, -100..100")
		contrast   = flag.Float64("contrast", 0, "contrast, -100..100")
		vibrance   = flag.Float64("vibrance", 0, "vibrance, -100..100")
		saturation = flag.Float64("saturation", 0, "saturation, -100..100")
		temp       = flag.Float64("temperature", 0, "temperature, -100..100")
		vignette   = flag.Float64("vignette", 0, "vignette, 0..100")
		grain      = flag.Float64("grain", 0, "grain, 0..100")
	)
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		darkroom.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		log.Fatalf("decode input: %v", err)
	}

	p, err := darkroom.NewPipeline(darkroom.Config{Backend: *backend})
	if err != nil {
		log.Fatalf("create pipeline: %v", err)
	}
	defer p.Dispose()
	fmt.Fprintf(os.Stderr, "using %s backend\n", p.BackendInUse())

	if err := p.LoadImage(img); err != nil {
		log.Fatalf("load image: %v", err)
	}

	if *auto {
		part, err := p.AutoFix()
		if err != nil {
			log.Fatalf("auto fix: %v", err)
		}
		report := func(name string, v *float32) {
			if v != nil {
				fmt.Fprintf(os.Stderr, "auto %s: %+.0f\n", name, *v)
			}
		}
		report("whites", part.Whites)
		report("blacks", part.Blacks)
		report("vibrance", part.Vibrance)
	}

	set := func(v float64) *float32 {
		if v == 0 {
			return nil
		}
		f := float32(v)
		return &f
	}
	if err := p.SetSettings(darkroom.Partial{
		Exposure:    set(*exposure),
		Contrast:    set(*contrast),
		Vibrance:    set(*vibrance),
		Saturation:  set(*saturation),
		Temperature: set(*temp),
		Vignette:    set(*vignette),
		Grain:       set(*grain),
	}); err != nil {
		log.Fatalf("apply settings: %v", err)
	}

	pm, err := p.Pixels()
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	of, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer of.Close()
	if err := png.Encode(of, pm.ToImage()); err != nil {
		log.Fatalf("encode output: %v", err)
	}
	log.Printf("wrote %s", *out)
}
