package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hanpama/snapgraph/internal/broker"
	"github.com/hanpama/snapgraph/internal/config"
	"github.com/hanpama/snapgraph/internal/datasource"
	"github.com/hanpama/snapgraph/internal/datasource/memory"
	"github.com/hanpama/snapgraph/internal/datasource/postgres"
	"github.com/hanpama/snapgraph/internal/eventbus"
	"github.com/hanpama/snapgraph/internal/executor"
	"github.com/hanpama/snapgraph/internal/graphrt"
	"github.com/hanpama/snapgraph/internal/introspection"
	"github.com/hanpama/snapgraph/internal/mutation"
	"github.com/hanpama/snapgraph/internal/otel"
	"github.com/hanpama/snapgraph/internal/schema"
	"github.com/hanpama/snapgraph/internal/server"
)

const rootUsage = `snapgraph — GraphQL engine for the photo sharing graph

USAGE:
  snapgraph <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL endpoint
  print-schema     Render the schema as SDL
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>              YAML configuration file
  -server.addr <addr>         HTTP listen address (overrides config)
  -server.pretty              Pretty-print JSON responses
  -graphql.introspection      Enable GraphQL introspection (default: true)
  -otel.endpoint <addr>       OTLP collector endpoint (overrides config)
`

const printSchemaUsage = `print-schema FLAGS:
  -out <file>    Write SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}
	switch args[0] {
	case "serve":
		return cmdServe(args[1:])
	case "print-schema":
		return cmdPrintSchema(args[1:])
	case "help":
		return cmdHelp(args[1:])
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "print-schema":
		fmt.Print(printSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdServe(args []string) error {
	configPath := ""
	addr := ""
	pretty := false
	enableIntrospection := true
	otelEndpoint := ""

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&configPath, "config", configPath, "YAML configuration file")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.BoolVar(&enableIntrospection, "graphql.introspection", enableIntrospection, "Enable GraphQL introspection")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if addr == "" {
		addr = cfg.Server.Addr()
	}
	if otelEndpoint == "" {
		otelEndpoint = cfg.Telemetry.Endpoint
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventbus.Use(eventbus.New())
	shutdownTracing, err := otel.Setup(otelEndpoint, cfg.Telemetry.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	src, closeSrc, err := openSources(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	b := broker.New(cfg.Subscriptions.QueueSize, log)
	mut := mutation.NewCoordinator(src, b, log)
	var runtime executor.Runtime = graphrt.New(src, mut, log)

	sch, err := graphrt.BuildSchema()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	if enableIntrospection {
		wrapper := introspection.Wrap(runtime, sch)
		runtime = wrapper.Runtime
		sch = wrapper.Schema
	}

	sopts := []server.Option{
		server.WithLogger(log),
		server.WithGraphiQL(cfg.Server.GraphiQL),
		server.WithSubscriptions(func(ctx context.Context, field string, args map[string]any) (*broker.Subscription, error) {
			return graphrt.Subscribe(ctx, b, field, args)
		}),
	}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if cfg.Server.Timeout > 0 {
		sopts = append(sopts, server.WithTimeout(cfg.Server.Timeout))
	}
	if cfg.Server.MaxBodyBytes > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes))
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	h, err := server.New(runtime, sch, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/graphql", h)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("GraphQL server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openSources selects the backing store: PostgreSQL when a database host is
// configured, in-memory otherwise. Agenda items are never persisted, so the
// in-memory agenda source backs both.
func openSources(ctx context.Context, cfg *config.Config, log zerolog.Logger) (datasource.Store, func(), error) {
	mem := memory.NewStore()
	if cfg.Database.Host == "" {
		log.Info().Msg("using in-memory data sources")
		return mem.Sources(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return datasource.Store{}, nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return datasource.Store{}, nil, fmt.Errorf("postgres ping: %w", err)
	}
	log.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("using PostgreSQL data sources")

	src := postgres.NewStore(pool).Sources()
	src.Agenda = mem.Sources().Agenda
	return src, pool.Close, nil
}

func cmdPrintSchema(args []string) error {
	outFile := ""
	fs := flag.NewFlagSet("print-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, printSchemaUsage)
		return err
	}

	sch, err := graphrt.BuildSchema()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	sdl := schema.Render(sch)
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0o644)
}

func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q", cfg.Level)
	}
	var out = os.Stderr
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out})
	}
	return logger, nil
}
