package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// ErrInvalidConfig is returned for unparsable or out-of-range settings
var ErrInvalidConfig = errors.New("invalid config")

// Environment keys
const (
	EnvScene       = "PT_SCENE"
	EnvWidth       = "PT_WIDTH"
	EnvHeight      = "PT_HEIGHT"
	EnvSamples     = "PT_SAMPLES"
	EnvMaxDepth    = "PT_MAX_DEPTH"
	EnvSeed        = "PT_SEED"
	EnvWorkers     = "PT_WORKERS"
	EnvTileSize    = "PT_TILE_SIZE"
	EnvOutput      = "PT_OUTPUT"
	EnvPreview     = "PT_PREVIEW"
	EnvPreviewSize = "PT_PREVIEW_SIZE"
	EnvS3Bucket    = "S3_BUCKET"
	EnvS3Region    = "S3_REGION"
	EnvS3Endpoint  = "S3_ENDPOINT"
	EnvS3AccessKey = "S3_ACCESS_KEY"
	EnvS3SecretKey = "S3_SECRET_KEY"
)

// DefaultEnvFile is read when present; a missing default file is not an error
const DefaultEnvFile = ".env"

// Config holds everything the CLI needs to render and publish an image
type Config struct {
	Scene       string                  // Built-in scene name
	Sampling    renderer.SamplingConfig // Zero fields fall back to the scene's defaults
	MaxDepth    *int                    // Bounce budget override; nil keeps the scene's, 0 is honoured
	Seed        *int64                  // Seed override; nil keeps the scene's, 0 is honoured
	Output      string                  // Output path, "-" writes P3 to stdout
	Preview     string                  // Optional thumbnail path
	PreviewSize uint                    // Longest thumbnail edge in pixels
	S3          output.S3Config
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Scene:       "default",
		Output:      "-",
		PreviewSize: 256,
	}
}

// SamplingFor overlays the configured overrides on a scene's sampling defaults
func (c Config) SamplingFor(base renderer.SamplingConfig) renderer.SamplingConfig {
	result := renderer.MergeSamplingConfig(base, c.Sampling)
	if c.MaxDepth != nil {
		result.MaxDepth = *c.MaxDepth
	}
	if c.Seed != nil {
		result.Seed = *c.Seed
	}
	return result
}

// LookupFunc resolves a configuration key
type LookupFunc func(key string) (string, bool)

// EnvLookup resolves keys from the process environment first, then from
// variables read out of an env file
func EnvLookup(fileVars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := fileVars[key]
		return value, ok
	}
}

// ReadEnvFile reads KEY=value pairs from path. A missing file yields no
// variables unless required is set.
func ReadEnvFile(path string, required bool) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return vars, nil
}

// FromLookup builds a configuration from Default overlaid with every key lookup resolves
func FromLookup(lookup LookupFunc) (Config, error) {
	cfg := Default()
	var err error

	setString := func(key string, dst *string) {
		if value, ok := lookup(key); ok && value != "" {
			*dst = value
		}
	}
	setInt := func(key string, dst *int) {
		value, ok := lookup(key)
		if !ok || value == "" || err != nil {
			return
		}
		n, parseErr := strconv.Atoi(value)
		if parseErr != nil {
			err = fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, value)
			return
		}
		*dst = n
	}

	setString(EnvScene, &cfg.Scene)
	setInt(EnvWidth, &cfg.Sampling.Width)
	setInt(EnvHeight, &cfg.Sampling.Height)
	setInt(EnvSamples, &cfg.Sampling.SamplesPerPixel)
	setInt(EnvWorkers, &cfg.Sampling.NumWorkers)
	setInt(EnvTileSize, &cfg.Sampling.TileSize)
	setString(EnvOutput, &cfg.Output)
	setString(EnvPreview, &cfg.Preview)
	setString(EnvS3Bucket, &cfg.S3.Bucket)
	setString(EnvS3Region, &cfg.S3.Region)
	setString(EnvS3Endpoint, &cfg.S3.Endpoint)
	setString(EnvS3AccessKey, &cfg.S3.AccessKey)
	setString(EnvS3SecretKey, &cfg.S3.SecretKey)

	if value, ok := lookup(EnvMaxDepth); ok && value != "" && err == nil {
		depth, parseErr := strconv.Atoi(value)
		if parseErr != nil {
			err = fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvMaxDepth, value)
		}
		cfg.MaxDepth = &depth
	}
	if value, ok := lookup(EnvSeed); ok && value != "" && err == nil {
		seed, parseErr := strconv.ParseInt(value, 10, 64)
		if parseErr != nil {
			err = fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvSeed, value)
		}
		cfg.Seed = &seed
	}
	if value, ok := lookup(EnvPreviewSize); ok && value != "" && err == nil {
		size, parseErr := strconv.ParseUint(value, 10, 32)
		if parseErr != nil {
			err = fmt.Errorf("%w: %s=%q is not a positive integer", ErrInvalidConfig, EnvPreviewSize, value)
		}
		cfg.PreviewSize = uint(size)
	}

	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Flags holds the command line flags that override the environment
type Flags struct {
	EnvFile string
	Help    bool

	scene       string
	width       int
	height      int
	samples     int
	depth       int
	seed        int64
	workers     int
	tileSize    int
	output      string
	preview     string
	previewSize uint

	flagSet *flag.FlagSet
}

// BindFlags registers the CLI flags on flagSet
func BindFlags(flagSet *flag.FlagSet) *Flags {
	f := &Flags{flagSet: flagSet}
	defaults := Default()

	flagSet.StringVar(&f.scene, "scene", defaults.Scene, "Built-in scene name")
	flagSet.IntVar(&f.width, "width", 0, "Image width in pixels (0 = scene default)")
	flagSet.IntVar(&f.height, "height", 0, "Image height in pixels (0 = scene default)")
	flagSet.IntVar(&f.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flagSet.IntVar(&f.depth, "depth", 0, "Maximum bounces per path (unset = scene default)")
	flagSet.Int64Var(&f.seed, "seed", 0, "Random seed (unset = scene default)")
	flagSet.IntVar(&f.workers, "workers", 0, "Parallel workers (0 = one per CPU)")
	flagSet.IntVar(&f.tileSize, "tile", 0, "Tile size in pixels (0 = scene default)")
	flagSet.StringVar(&f.output, "out", defaults.Output, "Output file (.ppm, .png, .jpg, ...) or - for PPM on stdout")
	flagSet.StringVar(&f.preview, "preview", "", "Optional preview thumbnail path")
	flagSet.UintVar(&f.previewSize, "preview-size", defaults.PreviewSize, "Longest preview edge in pixels")
	flagSet.StringVar(&f.EnvFile, "env", DefaultEnvFile, "Env file with PT_* and S3_* settings")
	flagSet.BoolVar(&f.Help, "help", false, "Show help information")

	return f
}

// Apply overlays every flag that was set explicitly on the command line
func (f *Flags) Apply(cfg *Config) {
	f.flagSet.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "scene":
			cfg.Scene = f.scene
		case "width":
			cfg.Sampling.Width = f.width
		case "height":
			cfg.Sampling.Height = f.height
		case "samples":
			cfg.Sampling.SamplesPerPixel = f.samples
		case "depth":
			depth := f.depth
			cfg.MaxDepth = &depth
		case "seed":
			seed := f.seed
			cfg.Seed = &seed
		case "workers":
			cfg.Sampling.NumWorkers = f.workers
		case "tile":
			cfg.Sampling.TileSize = f.tileSize
		case "out":
			cfg.Output = f.output
		case "preview":
			cfg.Preview = f.preview
		case "preview-size":
			cfg.PreviewSize = f.previewSize
		}
	})
}

// Load parses args, reads the env file and resolves the final configuration.
// Precedence: flags, process environment, env file, defaults.
func Load(flagSet *flag.FlagSet, args []string) (Config, *Flags, error) {
	flags := BindFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return Config{}, flags, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if flags.Help {
		return Default(), flags, nil
	}

	explicitEnv := false
	flagSet.Visit(func(fl *flag.Flag) {
		if fl.Name == "env" {
			explicitEnv = true
		}
	})

	fileVars, err := ReadEnvFile(flags.EnvFile, explicitEnv)
	if err != nil {
		return Config{}, flags, err
	}

	cfg, err := FromLookup(EnvLookup(fileVars))
	if err != nil {
		return Config{}, flags, err
	}
	flags.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, flags, err
	}
	return cfg, flags, nil
}

// Validate rejects settings no scene default can repair. Zero sampling
// values mean "use the scene's default" and are accepted; an explicit
// depth of 0 is a valid override.
func (c Config) Validate() error {
	switch {
	case c.Scene == "":
		return fmt.Errorf("%w: empty scene name", ErrInvalidConfig)
	case c.Output == "":
		return fmt.Errorf("%w: empty output path", ErrInvalidConfig)
	case c.Sampling.Width < 0 || c.Sampling.Height < 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Sampling.Width, c.Sampling.Height)
	case c.Sampling.SamplesPerPixel < 0:
		return fmt.Errorf("%w: samples per pixel %d", ErrInvalidConfig, c.Sampling.SamplesPerPixel)
	case c.MaxDepth != nil && *c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidConfig, *c.MaxDepth)
	case c.Sampling.TileSize < 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidConfig, c.Sampling.TileSize)
	case c.Sampling.NumWorkers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Sampling.NumWorkers)
	case c.Preview != "" && c.PreviewSize == 0:
		return fmt.Errorf("%w: preview size must be positive", ErrInvalidConfig)
	}
	return nil
}
