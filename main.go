package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := renderer.NewDefaultLogger()
	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		logger.Printf("Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run renders the configured scene. stdout only ever carries image data or help text.
func run(ctx context.Context, args []string, stdout io.Writer, logger core.Logger) error {
	flagSet := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	cfg, flags, err := config.Load(flagSet, args)
	if flags != nil && flags.Help {
		printHelp(stdout, flagSet)
		return nil
	}
	if err != nil {
		return err
	}

	selectedScene, err := createScene(cfg)
	if err != nil {
		return err
	}
	sampling := selectedScene.SamplingConfig

	logger.Printf("Using %s scene with %d shapes\n", cfg.Scene, selectedScene.GetPrimitiveCount())

	raytracer := renderer.NewRaytracer(selectedScene, sampling, logger)
	fb, _, err := raytracer.Render(ctx)
	if err != nil {
		return err
	}
	pixels := fb.Quantize()

	if err := writeOutput(cfg.Output, stdout, fb.Width, fb.Height, pixels); err != nil {
		return err
	}
	if cfg.Output != "-" {
		logger.Printf("Render saved as %s\n", cfg.Output)
	}

	img, err := output.ToImage(fb.Width, fb.Height, pixels)
	if err != nil {
		return err
	}
	if cfg.Preview != "" {
		if err := createOutputDir(cfg.Preview); err != nil {
			return err
		}
		if err := output.SaveImage(cfg.Preview, output.Thumbnail(img, cfg.PreviewSize)); err != nil {
			return err
		}
		logger.Printf("Preview saved as %s\n", cfg.Preview)
	}

	if cfg.S3.Enabled() {
		publisher, err := output.NewS3Publisher(cfg.S3, logger)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("renders/%s/render_%s.png", cfg.Scene, time.Now().Format("20060102_150405"))
		if err := publisher.PublishImage(ctx, key, img); err != nil {
			return err
		}
	}

	return nil
}

// createScene builds the named scene with sampling overrides applied and validates it
func createScene(cfg config.Config) (*scene.Scene, error) {
	s, err := scene.New(cfg.Scene)
	if err != nil {
		return nil, err
	}

	s.SetSamplingConfig(cfg.SamplingFor(s.SamplingConfig))
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.Scene, err)
	}
	return s, nil
}

// writeOutput writes P3 to stdout for "-" and otherwise saves by file extension
func writeOutput(path string, stdout io.Writer, width, height int, pixels []core.RGB8) error {
	if path == "-" {
		return output.WritePPM(stdout, width, height, pixels)
	}
	if err := createOutputDir(path); err != nil {
		return err
	}
	return output.Save(path, width, height, pixels)
}

// createOutputDir makes sure the parent directory of path exists
func createOutputDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	return nil
}

func printHelp(w io.Writer, flagSet *flag.FlagSet) {
	fmt.Fprintln(w, "Sphere Path Tracer")
	fmt.Fprintln(w, "Usage: pathtracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.ListScenes() {
		fmt.Fprintf(w, "  %-12s %s\n", info.ID, info.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings may also come from the environment or an env file:")
	fmt.Fprintln(w, "  PT_SCENE, PT_WIDTH, PT_HEIGHT, PT_SAMPLES, PT_MAX_DEPTH, PT_SEED, PT_WORKERS,")
	fmt.Fprintln(w, "  PT_TILE_SIZE, PT_OUTPUT, PT_PREVIEW, PT_PREVIEW_SIZE, S3_BUCKET, S3_REGION,")
	fmt.Fprintln(w, "  S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY")
}
