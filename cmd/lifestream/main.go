package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/lifestream/pkg/build"
	"github.com/umputun/lifestream/pkg/config"
	"github.com/umputun/lifestream/pkg/scheduler"
	"github.com/umputun/lifestream/server"
)

// Opts with all CLI options
type Opts struct {
	Config   string `short:"c" long:"config" env:"CONFIG" default:"lifestream.yml" description:"configuration file"`
	Output   string `short:"o" long:"output" env:"OUTPUT" description:"output directory, overrides config"`
	Template string `short:"t" long:"template" env:"TEMPLATE" description:"page template file, overrides config"`

	Serve    bool          `short:"s" long:"serve" env:"SERVE" description:"serve the page and rebuild it periodically"`
	Listen   string        `short:"l" long:"listen" env:"LISTEN" default:":8080" description:"listen address for serve mode"`
	Refresh  time.Duration `long:"refresh" env:"REFRESH" default:"30m" description:"rebuild interval for serve mode"`
	Attempts int           `long:"attempts" env:"ATTEMPTS" default:"1" description:"publish attempts with backoff in serve mode, sources are fetched once"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)
	log.Printf("[INFO] starting lifestream version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] done")
}

// run builds the page once, or keeps rebuilding and serving it in serve mode
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLog(opts.Debug, opts.NoColor, cfg.Secrets()...)

	if opts.Output != "" {
		cfg.Output.Dir = opts.Output
	}
	if opts.Template != "" {
		cfg.Output.Template = opts.Template
	}

	builder, err := build.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to make builder: %w", err)
	}

	if !opts.Serve {
		if _, err := builder.Run(ctx); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		return nil
	}

	sched := scheduler.NewScheduler(scheduler.Params{
		Builder:  builder,
		Interval: opts.Refresh,
		Retry:    scheduler.Retry{Attempts: opts.Attempts},
	})
	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(server.Config{Listen: opts.Listen, Timeout: cfg.HTTP.Timeout, Version: revision, Debug: opts.Debug}, sched)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

