package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/gof/internal/api"
	"github.com/btouchard/gof/internal/config"
	"github.com/btouchard/gof/internal/demo"
	"github.com/btouchard/gof/internal/listener"
	gofmcp "github.com/btouchard/gof/internal/mcp"
	"github.com/btouchard/gof/internal/store"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		cmdMenu()
		return
	}

	switch os.Args[1] {
	case "menu":
		cmdMenu()
	case "serve":
		cmdServe(os.Args[2:])
	case "check":
		cmdCheck(os.Args[2:])
	case "version":
		fmt.Printf("gof %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: gof [command] [flags]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  menu      Pick a pattern demo to run (default)\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the notification hub server\n")
	fmt.Fprintf(os.Stderr, "  check     Validate configuration\n")
	fmt.Fprintf(os.Stderr, "  version   Print version\n")
}

func cmdMenu() {
	if err := demo.DefaultMenu().Run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "demo failed: %v\n", err)
		os.Exit(1)
	}
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args) // ExitOnError handles errors

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	slog.Info("starting gof",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args) // ExitOnError handles errors

	_, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("configuration is valid")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch cfg.Server.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlers := []slog.Handler{
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}

	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			slog.Warn("failed to open log file, using stderr only", "path", cfg.Server.LogFile, "error", err)
		} else {
			handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		}
	}

	logger := slog.New(slog.NewMultiHandler(handlers...))
	slog.SetDefault(logger)
}

func run(ctx context.Context, cfg *config.Config) error {
	// --- SQLite Store ---
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	slog.Info("database opened", "path", cfg.Database.Path)

	if cfg.Database.RetentionDays > 0 {
		go cleanupLoop(ctx, db, time.Duration(cfg.Database.RetentionDays)*24*time.Hour)
	}

	// --- Listeners ---
	deps := listener.Deps{
		Out:         os.Stdout,
		Journal:     db,
		MCPDebounce: cfg.MCP.Debounce,
	}

	var mcpServer *server.MCPServer
	if cfg.MCP.Enabled {
		mcpServer = gofmcp.NewServer(version)
		deps.MCP = mcpServer
	}

	catalog, err := listener.NewCatalog(cfg.Listeners, deps)
	if err != nil {
		return fmt.Errorf("building listeners: %w", err)
	}
	reg := listener.NewRegistry(catalog)

	slog.Info("hub ready",
		"listeners", catalog.Names(),
		"subscribed", reg.Hub().Len())

	// --- HTTP Router ---
	r := api.NewRouter(reg, db)

	if mcpServer != nil {
		gofmcp.RegisterTools(mcpServer, reg, db)
		r.Handle("/mcp", server.NewStreamableHTTPServer(mcpServer))
	}

	// --- HTTP Server ---
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gof is ready", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// cleanupLoop prunes journal rows older than retention once an hour.
func cleanupLoop(ctx context.Context, db store.Store, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		n, err := db.Cleanup(time.Now().Add(-retention))
		if err != nil {
			slog.Warn("journal cleanup failed", "error", err)
		} else if n > 0 {
			slog.Info("journal cleanup", "deleted", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
