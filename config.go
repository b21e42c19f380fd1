package fractal

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/fractal/internal/collector"
)

// MetricsConfig controls the Prometheus endpoint of the command line tool.
type MetricsConfig struct {
	// Enabled starts an HTTP server exposing /metrics while rendering.
	Enabled bool `yaml:"enabled"`

	// Addr is the listen address of the metrics server.
	Addr string `yaml:"addr"`
}

// ProgressConfig configures the NATS KV work-unit audit trail.
type ProgressConfig struct {
	// Enabled publishes the render plan and every completed unit to NATS KV.
	Enabled bool `yaml:"enabled"`

	// NatsURL is the server to connect to.
	NatsURL string `yaml:"natsUrl"`

	// Bucket is the KV bucket name. Created on first use.
	Bucket string `yaml:"bucket"`

	// OperationTimeout bounds each KV operation (get, put, delete).
	OperationTimeout time.Duration `yaml:"operationTimeout"`
}

// Config is the configuration for the Renderer.
//
// Durations accept standard Go duration strings like "500ms" or "5s".
type Config struct {
	// Width is the image width in pixels.
	Width int `yaml:"width"`

	// Height is the image height in pixels. Rows are the unit of work distribution.
	Height int `yaml:"height"`

	// MaxIterations caps the escape-time iteration count per pixel.
	MaxIterations int `yaml:"maxIterations"`

	// Threads is the number of worker goroutines. Each owns one horizontal band.
	Threads int `yaml:"threads"`

	// Granularity is the number of work units each band is split into.
	// 1 gives one unit per band; values above the band height give one-row units.
	Granularity int `yaml:"granularity"`

	// Viewport is the rectangle of the complex plane mapped onto the image.
	Viewport Viewport `yaml:"viewport"`

	// Output is the path of the P3 image written by the command line tool.
	Output string `yaml:"output"`

	// CollectMode selects how pixels reach the shared collector: "pixel"
	// locks once per pixel, "unit" once per completed work unit.
	CollectMode string `yaml:"collectMode"`

	// Metrics controls the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Progress controls the NATS KV audit trail.
	Progress ProgressConfig `yaml:"progress"`
}

// DefaultViewport returns the rectangle showing the whole Mandelbrot set.
func DefaultViewport() Viewport {
	return Viewport{MinReal: -2.5, MaxReal: 1.0, MinImag: -2.0, MaxImag: 2.0}
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Width:         1920,
		Height:        1080,
		MaxIterations: 255,
		Threads:       1,
		Granularity:   1,
		Viewport:      DefaultViewport(),
		Output:        "mandelbrot.ppm",
		CollectMode:   string(collector.ModeUnit),
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Progress: ProgressConfig{
			Enabled:          false,
			NatsURL:          "nats://127.0.0.1:4222",
			Bucket:           "fractal-progress",
			OperationTimeout: 5 * time.Second,
		},
	}
}

// SetDefaults fills in missing optional configuration values with defaults.
//
// The core render parameters (Width, Height, MaxIterations, Threads and
// Granularity) are never defaulted: a zero value there is a configuration
// error reported by Validate. Start from DefaultConfig() to get the
// reference values. A viewport is considered missing only when all four
// bounds are zero.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Viewport == (Viewport{}) {
		cfg.Viewport = defaults.Viewport
	}
	if cfg.Output == "" {
		cfg.Output = defaults.Output
	}
	if cfg.CollectMode == "" {
		cfg.CollectMode = defaults.CollectMode
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = defaults.Metrics.Addr
	}
	if cfg.Progress.NatsURL == "" {
		cfg.Progress.NatsURL = defaults.Progress.NatsURL
	}
	if cfg.Progress.Bucket == "" {
		cfg.Progress.Bucket = defaults.Progress.Bucket
	}
	if cfg.Progress.OperationTimeout == 0 {
		cfg.Progress.OperationTimeout = defaults.Progress.OperationTimeout
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - Width, Height, MaxIterations, Threads, Granularity > 0
//   - Threads <= Height (every worker owns at least one row)
//   - MinReal < MaxReal and MinImag < MaxImag
//   - CollectMode is "pixel" or "unit"
//   - Progress.NatsURL and Progress.Bucket set, Progress.OperationTimeout > 0 when progress is enabled
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"Width", cfg.Width},
		{"Height", cfg.Height},
		{"MaxIterations", cfg.MaxIterations},
		{"Threads", cfg.Threads},
		{"Granularity", cfg.Granularity},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %d", ErrInvalidConfig, p.name, p.value)
		}
	}

	if cfg.Threads > cfg.Height {
		return fmt.Errorf("%w: Threads (%d) must be <= Height (%d) so that every worker owns a row",
			ErrInvalidConfig, cfg.Threads, cfg.Height)
	}

	vp := cfg.Viewport
	if vp.MinReal >= vp.MaxReal {
		return fmt.Errorf("%w: viewport MinReal (%v) must be < MaxReal (%v)", ErrInvalidConfig, vp.MinReal, vp.MaxReal)
	}
	if vp.MinImag >= vp.MaxImag {
		return fmt.Errorf("%w: viewport MinImag (%v) must be < MaxImag (%v)", ErrInvalidConfig, vp.MinImag, vp.MaxImag)
	}

	if !collector.Mode(cfg.CollectMode).Valid() {
		return fmt.Errorf("%w: CollectMode must be %q or %q, got %q",
			ErrInvalidConfig, collector.ModePixel, collector.ModeUnit, cfg.CollectMode)
	}

	if cfg.Progress.Enabled {
		if cfg.Progress.NatsURL == "" {
			return fmt.Errorf("%w: progress natsUrl is required when progress is enabled", ErrInvalidConfig)
		}
		if cfg.Progress.Bucket == "" {
			return fmt.Errorf("%w: progress bucket is required when progress is enabled", ErrInvalidConfig)
		}
		if cfg.Progress.OperationTimeout <= 0 {
			return fmt.Errorf("%w: progress OperationTimeout must be > 0, got %v",
				ErrInvalidConfig, cfg.Progress.OperationTimeout)
		}
	}

	return nil
}

// ValidateWithWarnings logs warnings for valid but questionable values.
//
// This is called after Validate() in NewRenderer() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cpus := runtime.NumCPU(); cfg.Threads > 4*cpus {
		logger.Warn(
			"thread count far exceeds available CPUs",
			"threads", cfg.Threads,
			"cpus", cpus,
		)
	}

	if band := cfg.Height / cfg.Threads; cfg.Granularity > band {
		logger.Warn(
			"granularity exceeds band height, units will be single rows",
			"granularity", cfg.Granularity,
			"band_rows", band,
		)
	}
}

// TestConfig returns a small configuration for fast test execution.
//
// Returns:
//   - Config: 64x48 image with 64 iterations
//
// Example:
//
//	cfg := fractal.TestConfig()
//	cfg.Threads = 4
//	r, err := fractal.NewRenderer(&cfg)
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 64
	cfg.Height = 48
	cfg.MaxIterations = 64

	return cfg
}

// LoadConfig reads a YAML configuration file, applies defaults and validates it.
//
// Keys absent from the file keep their DefaultConfig() value; keys present
// with a zero value stay zero and fail validation.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - *Config: Loaded configuration
//   - error: Read, parse or validation error
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadConfig reads a YAML configuration file over DefaultConfig() without
// validating it, for callers that adjust the result before validation.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return DecodeConfig(data)
}

// ParseConfig decodes YAML configuration bytes over DefaultConfig(), applies
// defaults and validates.
func ParseConfig(data []byte) (*Config, error) {
	cfg, err := DecodeConfig(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DecodeConfig decodes YAML configuration bytes over DefaultConfig() and
// applies defaults, without validating.
func DecodeConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	SetDefaults(&cfg)

	return &cfg, nil
}
