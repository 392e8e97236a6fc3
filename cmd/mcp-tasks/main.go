// Command mcp-tasks serves the async task tools, plus a pair of demo tools,
// over stdio on the backend of your choice. With --api-base it also serves
// the REST search tools, authenticated per --auth-type.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	mcptoolkit "github.com/ggoodman/mcp-toolkit-go"
	"github.com/ggoodman/mcp-toolkit-go/auth"
	"github.com/ggoodman/mcp-toolkit-go/config"
	"github.com/ggoodman/mcp-toolkit-go/engine"
	"github.com/ggoodman/mcp-toolkit-go/examples/api"
	"github.com/ggoodman/mcp-toolkit-go/examples/tasks"
	"github.com/ggoodman/mcp-toolkit-go/storage"
	"github.com/ggoodman/mcp-toolkit-go/storage/memory"
	redisstore "github.com/ggoodman/mcp-toolkit-go/storage/redis"
	"github.com/ggoodman/mcp-toolkit-go/storage/sqlite"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mcp-tasks",
		Short:        "Serve async task tools over MCP stdio",
		Version:      version,
		SilenceUsage: true,
		RunE:         runServe,
	}
	cmd.Flags().String("name", "", "Server name reported to clients (default: $MCP_SERVER_NAME)")
	cmd.Flags().String("backend", "", "Backend: auto, sdk or stdio (default: $MCP_BACKEND)")
	cmd.Flags().String("store", "memory", "Task store: memory, redis or sqlite")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address for --store=redis")
	cmd.Flags().String("sqlite-path", "", "SQLite database path for --store=sqlite (default: ./mcp-tasks.db)")
	cmd.Flags().Duration("task-ttl", 24*time.Hour, "How long finished task records are kept")
	cmd.Flags().Duration("step-interval", time.Second, "Simulated duration of one task step")
	cmd.Flags().Bool("verbose", false, "Include error details in tool results")
	cmd.Flags().String("config", "", "Path to a JSON or YAML config file, reloaded on change")
	cmd.Flags().String("env-file", ".env", "Path to a dotenv file")
	cmd.Flags().String("otlp-endpoint", "", "OTLP/HTTP trace endpoint URL (disabled when empty)")
	cmd.Flags().String("api-base", "", "Base URL of the upstream API; enables search_data and get_item")
	cmd.Flags().String("auth-type", string(auth.KindNone), "Upstream auth: api_key, basic, token or none")
	cmd.Flags().String("api-key-env", "EXAMPLE_API_KEY", "Environment variable holding the API key")
	cmd.Flags().String("token-env", "EXAMPLE_API_TOKEN", "Environment variable holding the access token")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader()
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := loader.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	var level slog.LevelVar
	lvl, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	level.Set(lvl)
	// stdout carries the protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		if err := loader.LoadFile(configPath); err != nil {
			return err
		}
		go watchConfig(ctx, loader, configPath, &level, logger)
	}

	name := flagOr(cmd, "name", cfg.Name)
	kind := flagOr(cmd, "backend", cfg.Backend)
	verbose := cfg.VerboseErrors
	if cmd.Flags().Changed("verbose") {
		verbose, _ = cmd.Flags().GetBool("verbose")
	}

	endpoint, _ := cmd.Flags().GetString("otlp-endpoint")
	tracer, shutdown, err := setupTracing(ctx, endpoint, name)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("tracing.shutdown", slog.String("err", err.Error()))
		}
	}()

	store, err := openStore(cmd, cfg.MaxRetries)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	provider, err := newAuthProvider(cmd)
	if err != nil {
		return err
	}

	srv, err := mcptoolkit.New(kind, name,
		mcptoolkit.WithLogger(logger),
		mcptoolkit.WithLevelVar(&level),
		mcptoolkit.WithVerbose(verbose),
		mcptoolkit.WithConfig(loader),
		mcptoolkit.WithVersion(cfg.Version),
		mcptoolkit.WithInstructions("Start long-running tasks with start_task and poll them with get_task_status."),
		mcptoolkit.WithEngineOptions(engine.WithTracer(tracer)),
		mcptoolkit.WithAuth(provider),
	)
	if errors.Is(err, mcptoolkit.ErrBackendUnavailable) {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(mcptoolkit.Backends(), ", "))
	}
	if err != nil {
		return err
	}

	ttl, _ := cmd.Flags().GetDuration("task-ttl")
	interval, _ := cmd.Flags().GetDuration("step-interval")
	mgr := tasks.NewManager(tasks.NewStore(store, ttl),
		tasks.WithStepInterval(interval),
		tasks.WithTimeout(cfg.Timeout),
		tasks.WithLogger(logger),
	)
	defer func() { _ = mgr.Close() }()

	tasks.Register(srv, mgr)
	registerDemoTools(srv)
	if base, _ := cmd.Flags().GetString("api-base"); base != "" {
		api.Register(srv, &api.Client{BaseURL: base, HTTP: &http.Client{Timeout: cfg.Timeout}})
	}

	logger.InfoContext(ctx, "mcp-tasks.start",
		slog.String("name", name),
		slog.String("backend", kind),
		slog.Int("tools", srv.Registry().ToolCount()),
	)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newAuthProvider builds the upstream credential provider from flags. The
// credentials themselves only come from the environment.
func newAuthProvider(cmd *cobra.Command) (auth.Provider, error) {
	kind, _ := cmd.Flags().GetString("auth-type")
	keyEnv, _ := cmd.Flags().GetString("api-key-env")
	tokenEnv, _ := cmd.Flags().GetString("token-env")
	return auth.New(auth.Kind(kind), auth.Options{
		APIKeyEnv:   keyEnv,
		TokenEnv:    tokenEnv,
		UsernameEnv: "EXAMPLE_API_USERNAME",
		PasswordEnv: "EXAMPLE_API_PASSWORD",
	})
}

func flagOr(cmd *cobra.Command, name, def string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return def
}

// openStore opens the --store backend. maxRetries bounds Redis command
// retries.
func openStore(cmd *cobra.Command, maxRetries int) (storage.Storage, error) {
	kind, _ := cmd.Flags().GetString("store")
	switch kind {
	case "memory":
		return memory.New(10_000, time.Minute)
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		return redisstore.New(redisstore.Config{Client: redis.NewClient(&redis.Options{Addr: addr, MaxRetries: maxRetries})})
	case "sqlite":
		path, _ := cmd.Flags().GetString("sqlite-path")
		if path == "" {
			path = filepath.Join(".", "mcp-tasks.db")
		}
		return sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown store %q (want memory, redis or sqlite)", kind)
	}
}

// watchConfig reloads the log level from the config file's "log_level" key.
func watchConfig(ctx context.Context, loader *config.Loader, path string, level *slog.LevelVar, logger *slog.Logger) {
	err := loader.Watch(ctx, path, func(err error) {
		if err != nil {
			logger.Warn("config.reload", slog.String("path", path), slog.String("err", err.Error()))
			return
		}
		raw, ok := loader.Get("log_level", "").(string)
		if !ok || raw == "" {
			return
		}
		lvl, err := config.ParseLogLevel(raw)
		if err != nil {
			logger.Warn("config.reload.log_level", slog.String("err", err.Error()))
			return
		}
		level.Set(lvl)
		logger.Info("config.reload", slog.String("path", path), slog.String("log_level", raw))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("config.watch", slog.String("path", path), slog.String("err", err.Error()))
	}
}
