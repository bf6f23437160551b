package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/broadcast"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/filestore"
	"github.com/erazemk/lostfound/internal/qrcode"
	"github.com/erazemk/lostfound/internal/service"
)

// levelRouter is a slog.Handler that routes DEBUG/INFO/WARN to stdout and
// ERROR+ to stderr.
type levelRouter struct {
	level  slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. ERROR goes to stderr, everything
// else to stdout. If logPath is non-empty, all levels are also written to that
// file. Returns a cleanup function that closes the log file (if opened).
func setupLogger(level slog.Level, format, logPath string) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: level}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	newHandler := func(w io.Writer) slog.Handler {
		if format == "json" {
			return slog.NewJSONHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}

	logger := slog.New(&levelRouter{
		level:  level,
		stdout: newHandler(stdoutW),
		stderr: newHandler(stderrW),
	})
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("lostfound", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "")
	fs.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "")

	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "")
	fs.StringVar(&cfg.DataDir, "D", cfg.DataDir, "")

	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound [flags]

Flags:
  -d, -db <path>          SQLite database path (default: lostfound.sqlite3)
  -a, -addr <host:port>   listen address (default: :5000)
  -b, -base-url <url>     client URL used in QR code links (default: http://localhost:3000)
  -D, -data <dir>         directory for uploads and QR codes with local storage (default: data)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -log-level <level>      debug, info, warn or error (default: info)
  -log-format <format>    text or json (default: text)
  -h, -help               show this help and exit

Every flag can also be set through LOSTFOUND_* environment variables or a
.env file in the working directory.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := setupLogger(cfg.Level(), cfg.LogFormat, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg, logger); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	files, err := openFileStore(cfg)
	if err != nil {
		return err
	}

	hub := broadcast.NewHub(logger)
	svc := service.New(database, files, qrcode.NewGenerator(), hub, service.Options{
		BaseURL:   cfg.BaseURL,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	}, logger)

	router := api.NewRouter(svc, files, api.Options{
		Live:           broadcast.NewHandler(hub, cfg.Origins(), logger),
		AllowedOrigins: cfg.Origins(),
	}, logger)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		// Websocket connections are hijacked, so Shutdown does not see them.
		hub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "storage", cfg.Storage, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}

func openFileStore(cfg *config.Config) (filestore.Store, error) {
	switch cfg.Storage {
	case config.StorageS3:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := filestore.NewS3(ctx, filestore.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("setting up s3 storage: %w", err)
		}
		return s, nil
	default:
		l, err := filestore.NewLocal(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("setting up local storage: %w", err)
		}
		return l, nil
	}
}
