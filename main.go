package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/freekieb7/pebble/config"
	"github.com/freekieb7/pebble/filesystem"
	"github.com/freekieb7/pebble/http"
	"github.com/freekieb7/pebble/telemetry"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, args []string) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(args, os.Getenv)
	if err != nil {
		return err
	}

	fs := filesystem.NewLocalFileSystem()
	if err := cfg.CheckBasePath(fs); err != nil {
		return err
	}
	if cfg.BasePath, err = fs.GetAbsolutePath(cfg.BasePath); err != nil {
		return err
	}

	telemetryCfg := telemetry.Config{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	}
	otelShutdown, err := telemetry.Setup(ctx, telemetryCfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
	}()

	logger := newLogger(cfg, telemetryCfg.Enabled())

	server := newServer(cfg, fs, logger)

	color.New(color.FgGreen, color.Bold).Fprintf(os.Stderr, "%s listening on %s, static files from %s\n", cfg.ServiceName, cfg.Addr, cfg.BasePath)

	serverErrorChannel := make(chan error, 1)
	go func() {
		serverErrorChannel <- server.ListenAndServe(ctx, cfg.Addr)
	}()

	select {
	case err := <-serverErrorChannel:
		return err
	case <-ctx.Done():
		stop()
	}

	logger.Info("shutting down", "timeout", shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serverErrorChannel; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newServer(cfg config.Config, fs filesystem.Filesystem, logger *slog.Logger) *http.Server {
	server := http.NewServer(cfg.ServiceName)
	server.Logger = logger
	server.ReadTimeout = cfg.ReadTimeout
	server.WriteTimeout = cfg.WriteTimeout
	server.MaxConns = cfg.MaxConns
	server.MaxBodySize = cfg.MaxBodySize
	server.ReusePort = cfg.ReusePort
	server.Static = http.NewStaticResolver(cfg.BasePath, fs, logger)

	site := newSite(cfg.BasePath, fs, logger)
	server.Registry.RegisterFunc("/", site.root)
	server.Registry.Register("/index", http.HandlerFunc(site.index))

	return server
}

// newLogger writes to the OpenTelemetry log pipeline when exporting is
// configured and to stderr otherwise.
func newLogger(cfg config.Config, exporting bool) *slog.Logger {
	if exporting {
		return otelslog.NewLogger(cfg.ServiceName)
	}

	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
