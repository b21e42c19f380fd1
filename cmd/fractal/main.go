// Command fractal renders the escape-time fractal to a P3 image file.
//
// Settings come from an optional YAML file (-config) and are overridden by
// any flag given explicitly on the command line:
//
//	fractal -threads 8 -granularity 16 -output out.ppm
//	fractal -config render.yaml -metrics -progress -embedded-nats
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/fractal"
	"github.com/arloliu/fractal/internal/logging"
	"github.com/arloliu/fractal/internal/metrics"
	"github.com/arloliu/fractal/internal/progress"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "fractal: %v\n", err)
		os.Exit(1)
	}
}

// options are the command line settings that are not part of fractal.Config.
type options struct {
	configPath   string
	logLevel     string
	embeddedNATS bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	fractal.SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := logging.NewText(stderr, level)

	renderOpts := []fractal.Option{fractal.WithLogger(logger)}

	var collector fractal.MetricsCollector = metrics.NewNop()
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		collector = metrics.NewPrometheus(reg, "fractal")
		srv := newMetricsServer(cfg.Metrics.Addr, reg, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Shutdown()
		renderOpts = append(renderOpts, fractal.WithMetrics(collector))
	}

	if cfg.Progress.Enabled {
		nc, shutdown, err := connectNATS(cfg.Progress.NatsURL, opts.embeddedNATS, logger)
		if err != nil {
			return err
		}
		defer shutdown()

		rec, err := progress.Open(ctx, nc, cfg.Progress.Bucket, cfg.Progress.OperationTimeout, logger, collector)
		if err != nil {
			return fmt.Errorf("failed to open progress bucket: %w", err)
		}
		renderOpts = append(renderOpts, fractal.WithProgressRecorder(rec))
	}

	renderer, err := fractal.NewRenderer(cfg, renderOpts...)
	if err != nil {
		return err
	}

	res, err := renderer.Render(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Time measured in milliseconds: %d\n", res.ElapsedMillis())

	digest, err := res.WriteFile(cfg.Output)
	if err != nil {
		return err
	}
	logger.Info("image written", "path", cfg.Output, "digest", digest.String())

	return nil
}

// parseFlags reads the optional config file and applies explicitly set flags on top.
// Validation happens once, in run, after the overrides.
func parseFlags(args []string, stderr io.Writer) (*fractal.Config, options, error) {
	def := fractal.DefaultConfig()
	fs := flag.NewFlagSet("fractal", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts     options
		flagCfg  = def
		viewport = def.Viewport
	)

	fs.StringVar(&opts.configPath, "config", "", "Path to YAML configuration file")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.embeddedNATS, "embedded-nats", false, "Start an in-process NATS server for progress recording")

	fs.IntVar(&flagCfg.Width, "width", def.Width, "Image width in pixels")
	fs.IntVar(&flagCfg.Height, "height", def.Height, "Image height in pixels")
	fs.IntVar(&flagCfg.MaxIterations, "iterations", def.MaxIterations, "Maximum iterations per pixel")
	fs.IntVar(&flagCfg.Threads, "threads", def.Threads, "Number of worker goroutines")
	fs.IntVar(&flagCfg.Granularity, "granularity", def.Granularity, "Work units per worker band")
	fs.Float64Var(&viewport.MinReal, "min-real", def.Viewport.MinReal, "Viewport minimum real part")
	fs.Float64Var(&viewport.MaxReal, "max-real", def.Viewport.MaxReal, "Viewport maximum real part")
	fs.Float64Var(&viewport.MinImag, "min-imag", def.Viewport.MinImag, "Viewport minimum imaginary part")
	fs.Float64Var(&viewport.MaxImag, "max-imag", def.Viewport.MaxImag, "Viewport maximum imaginary part")
	fs.StringVar(&flagCfg.Output, "output", def.Output, "Output P3 image path")
	fs.StringVar(&flagCfg.CollectMode, "collect-mode", def.CollectMode, "Collector locking mode (pixel, unit)")
	fs.BoolVar(&flagCfg.Metrics.Enabled, "metrics", def.Metrics.Enabled, "Serve Prometheus metrics")
	fs.StringVar(&flagCfg.Metrics.Addr, "metrics-addr", def.Metrics.Addr, "Metrics listen address")
	fs.BoolVar(&flagCfg.Progress.Enabled, "progress", def.Progress.Enabled, "Record work units in NATS KV")
	fs.StringVar(&flagCfg.Progress.NatsURL, "nats-url", def.Progress.NatsURL, "NATS server URL")
	fs.StringVar(&flagCfg.Progress.Bucket, "bucket", def.Progress.Bucket, "NATS KV bucket for progress")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}
	if fs.NArg() > 0 {
		return nil, opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := def
	if opts.configPath != "" {
		loaded, err := fractal.ReadConfig(opts.configPath)
		if err != nil {
			return nil, opts, err
		}
		cfg = *loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = flagCfg.Width
		case "height":
			cfg.Height = flagCfg.Height
		case "iterations":
			cfg.MaxIterations = flagCfg.MaxIterations
		case "threads":
			cfg.Threads = flagCfg.Threads
		case "granularity":
			cfg.Granularity = flagCfg.Granularity
		case "min-real":
			cfg.Viewport.MinReal = viewport.MinReal
		case "max-real":
			cfg.Viewport.MaxReal = viewport.MaxReal
		case "min-imag":
			cfg.Viewport.MinImag = viewport.MinImag
		case "max-imag":
			cfg.Viewport.MaxImag = viewport.MaxImag
		case "output":
			cfg.Output = flagCfg.Output
		case "collect-mode":
			cfg.CollectMode = flagCfg.CollectMode
		case "metrics":
			cfg.Metrics.Enabled = flagCfg.Metrics.Enabled
		case "metrics-addr":
			cfg.Metrics.Addr = flagCfg.Metrics.Addr
		case "progress":
			cfg.Progress.Enabled = flagCfg.Progress.Enabled
		case "nats-url":
			cfg.Progress.NatsURL = flagCfg.Progress.NatsURL
		case "bucket":
			cfg.Progress.Bucket = flagCfg.Progress.Bucket
		}
	})

	if opts.embeddedNATS {
		cfg.Progress.Enabled = true
	}

	return &cfg, opts, nil
}
