// Command subagentkit hosts the sub-agent orchestration core: it loads
// configuration, builds the role registry, and serves a Prometheus
// metrics endpoint for the threadctl/collabtools instrumentation. The
// turn loop that actually drives model calls is an external
// collaborator (out of scope for this core, see pkg/threadctl's package
// doc); this binary wires a no-op stand-in so the control plane can be
// exercised standalone.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/odvcencio/subagentkit/pkg/approvalrouter"
	"github.com/odvcencio/subagentkit/pkg/collabtools"
	"github.com/odvcencio/subagentkit/pkg/config"
	"github.com/odvcencio/subagentkit/pkg/obslog"
	"github.com/odvcencio/subagentkit/pkg/roleregistry"
	"github.com/odvcencio/subagentkit/pkg/rolloutindex"
	"github.com/odvcencio/subagentkit/pkg/threadctl"
)

func main() {
	configPath := flag.String("config", "", "path to an explicit config.yaml (default: discover ~/.subagentkit and ./.subagentkit)")
	metricsAddr := flag.String("metrics-addr", "127.0.0.1:9091", "address to serve /metrics on")
	flag.Parse()

	if err := run(*configPath, *metricsAddr); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, metricsAddr string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	shutdownTracing, err := setupTracing()
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	if err := os.MkdirAll(cfg.Observability.LogDir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	logger, err := obslog.New(filepath.Join(cfg.Observability.LogDir, "events.jsonl"))
	if err != nil {
		return fmt.Errorf("opening obslog: %w", err)
	}
	defer logger.Close()

	cwd := config.ResolveProjectRoot()
	roots := roleregistry.Roots{
		UserDir:     cfg.Registry.UserDir,
		ProjectDirs: append(roleregistry.DiscoverProjectDirs(cwd), config.ResolveRegistryProjectDirs(cfg, cwd)...),
	}

	registry := roleregistry.New()
	if err := registry.Load(roots); err != nil {
		return fmt.Errorf("loading role registry: %w", err)
	}
	for _, parseErr := range registry.Errors() {
		log.Printf("role registry: %v", parseErr)
	}

	if !cfg.Registry.DisableWatch {
		if watcher, err := roleregistry.WatchRoots(registry, roots); err != nil {
			log.Printf("role registry hot-reload disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	handler := &collabtools.Handler{
		Manager:  threadctl.NewManager(noopTurnLoop{}),
		Registry: registry,
		Router:   approvalrouter.New(),
		Index:    rolloutindex.NewMapIndex(),
		Log:      logger,
	}
	_ = handler

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: metricsAddr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	log.Printf("subagentkit: serving metrics on %s", metricsAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// setupTracing wires threadctl's spans to stdout. A real deployment
// would swap stdouttrace for an OTLP exporter; stdout keeps this binary
// dependency-free for local runs and demos.
func setupTracing() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, err
	}
	provider := trace.NewTracerProvider(trace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

func loadConfig(explicitPath string) (*config.Config, error) {
	if explicitPath != "" {
		return config.LoadFromPath(explicitPath)
	}
	return config.Load()
}

// noopTurnLoop satisfies threadctl.TurnLoop without driving any real
// model calls; a hosting process wires its own implementation in place
// of this one.
type noopTurnLoop struct{}

func (noopTurnLoop) Start(ctx context.Context, id threadctl.ThreadId, initial threadctl.Op, publish func(threadctl.AgentStatus)) {
}

func (noopTurnLoop) Submit(ctx context.Context, id threadctl.ThreadId, op threadctl.Op) error {
	return nil
}
