package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vmorsell/gesture-control/internal/config"
	"github.com/vmorsell/gesture-control/internal/handlers"
	"github.com/vmorsell/gesture-control/internal/hub"
	"github.com/vmorsell/gesture-control/internal/mediakey"
	"github.com/vmorsell/gesture-control/internal/ratelimit"
	"github.com/vmorsell/gesture-control/internal/server"
	"github.com/vmorsell/gesture-control/internal/volume"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv(config.EnvConfigFile), "Path to a YAML config file")
		host       = flag.String("host", config.DefaultHost, "Address to bind")
		port       = flag.Int("port", config.DefaultPort, "Port to listen on")
		backend    = flag.String("backend", mediakey.BackendAuto, "Input backend: auto, native, xdotool, uinput or noop")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn or error")
		logFormat  = flag.String("log-format", "json", "Log format: json or console")
		rateLimit  = flag.Int("rate-limit", 0, "Max gestures per client per window, 0 disables")
		watch      = flag.Bool("watch-volume", false, "Push host volume changes to /ws clients")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment: %v\n", err)
		os.Exit(1)
	}

	var o config.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			o.Host = host
		case "port":
			o.Port = port
		case "backend":
			o.Backend = backend
		case "log-level":
			o.LogLevel = logLevel
		case "log-format":
			o.LogFormat = logFormat
		case "rate-limit":
			o.RateLimit = rateLimit
		case "watch-volume":
			o.Watch = watch
		}
	})
	o.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if err := run(logger, cfg); err != nil {
		logger.Fatal("gesture controller stopped", zap.Error(err))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher, err := mediakey.New(logger.Named("mediakey"), mediakey.Options{
		Backend:      cfg.Input.Backend,
		UinputDevice: cfg.Input.UinputDevice,
		Timeout:      cfg.Input.DispatchTimeout,
	})
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}
	serialized := mediakey.Serialize(dispatcher)
	defer func() {
		if err := serialized.Close(); err != nil {
			logger.Warn("failed to close input backend", zap.Error(err))
		}
	}()

	reader := volume.System{}
	opts := []handlers.Option{
		handlers.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		handlers.WithVolume(reader),
	}
	if cfg.RateLimit.Limit > 0 {
		opts = append(opts, handlers.WithRateLimiter(ratelimit.New(cfg.RateLimit.Limit, cfg.RateLimit.Window)))
	}
	if cfg.WebSocket.Enabled {
		opts = append(opts, handlers.WithStream(hub.Config{
			MaxMessageBytes: cfg.WebSocket.MaxMessageBytes,
			SendBuffer:      cfg.WebSocket.SendBuffer,
		}))
	}
	h := handlers.NewHandler(logger.Named("handlers"), serialized, opts...)

	srv := server.New(logger.Named("server"), server.Config{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, h.Routes())

	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	fmt.Println("────────────────────────────────────────────")
	fmt.Println("   SPOTIFY GESTURE CONTROLLER - LOCAL BACKEND")
	fmt.Printf("   Running on http://localhost:%d\n", cfg.Server.Port)
	fmt.Println("────────────────────────────────────────────")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(ctx, ln)
	})

	if stream := h.Stream(); stream != nil {
		g.Go(func() error {
			stream.Run(ctx)
			return nil
		})
	}

	if cfg.Volume.Watch && h.Stream() != nil {
		g.Go(func() error {
			return watchVolume(ctx, logger.Named("volume"), reader, cfg.Volume, h)
		})
	}

	return g.Wait()
}

// watchVolume forwards host volume changes to stream clients. A host that
// cannot report volume disables the watcher without stopping the server.
func watchVolume(ctx context.Context, logger *zap.Logger, reader volume.Reader, cfg config.VolumeConfig, h *handlers.Handler) error {
	listener := volume.NewListener(logger, reader, cfg.PollInterval)
	volCh, err := listener.Listen(ctx)
	if err != nil {
		logger.Warn("volume watch disabled", zap.Error(err))
		return nil
	}
	if vol, ok := listener.Last(); ok {
		logger.Info("local volume", zap.Int("volume", vol))
	}

	for vol := range volCh {
		logger.Debug("local volume changed", zap.Int("volume", vol))
		h.PublishVolume(vol)
	}
	return nil
}
