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
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/mmcdole/sift/internal/adapter"
	"github.com/mmcdole/sift/internal/adapter/provider/catalog"
	"github.com/mmcdole/sift/internal/adapter/provider/httpapi"
	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/query"
	"github.com/mmcdole/sift/internal/selection"
	"github.com/mmcdole/sift/internal/store"
	"github.com/mmcdole/sift/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// flags holds command-line overrides
type flags struct {
	importFile  string
	collection  string
	query       string
	metricsAddr string
	setToken    bool
	list        bool
}

func main() {
	var showVersion bool
	var f flags
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&f.importFile, "import", "", "load items from a JSON file into the catalog collection and exit")
	flag.StringVar(&f.collection, "collection", "", "catalog collection to search or import into")
	flag.StringVar(&f.query, "q", "", "run a single query and print the results")
	flag.StringVar(&f.metricsAddr, "metrics", "", "serve Prometheus metrics on this address")
	flag.BoolVar(&f.setToken, "set-token", false, "prompt for the HTTP provider token and save it")
	flag.BoolVar(&f.list, "collections", false, "list catalog collections and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("sift %s\n", Version)
		return
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if f.collection != "" {
		cfg.Provider.Collection = f.collection
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = f.metricsAddr
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting sift", "version", Version, "provider", cfg.Provider.Type)

	if f.setToken {
		return runSetTokenFlow(cfg)
	}
	if f.importFile != "" {
		return runImport(cfg, f.importFile, logger)
	}
	if f.list {
		return runListCollections(cfg, os.Stdout)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, closeProvider, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	opts := []query.Option{}
	if cfg.Metrics.Enabled {
		observer, shutdown, err := startMetrics(cfg.Metrics.Addr, logger)
		if err != nil {
			return err
		}
		defer shutdown()
		opts = append(opts, query.WithObserver(observer))
	}

	coordinator := query.NewCoordinator(provider, cfg.QueryConfig(), logger, opts...)
	defer coordinator.Close()

	if f.query != "" || !interactive() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return runOnce(ctx, coordinator, f.query, os.Stdout, os.Stderr)
	}

	return runTUI(cfg, coordinator, logger)
}

// interactive reports whether a terminal is available for the selector. The
// selector draws on stderr so stdout stays clean for the accepted items.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// newProvider builds the configured search backend. The returned func
// releases its resources.
func newProvider(cfg *adapter.Config, logger *slog.Logger) (domain.SearchProvider, func(), error) {
	switch cfg.Provider.Type {
	case adapter.ProviderTypeHTTP:
		return httpapi.NewClient(cfg.Provider.URL, cfg.Provider.Token, logger), func() {}, nil

	case adapter.ProviderTypeCatalog:
		s, err := openStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeStore := func() {
			if err := s.Close(); err != nil {
				logger.Error("failed to close catalog", "error", err)
			}
		}
		return catalog.NewProvider(s, cfg.Provider.Collection, logger), closeStore, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider type %q", cfg.Provider.Type)
	}
}

func openStore(cfg *adapter.Config) (*store.CatalogStore, error) {
	dir, err := adapter.ExpandPath(cfg.Provider.DataDir)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return s, nil
}

// startMetrics registers the query metrics and serves them on addr
func startMetrics(addr string, logger *slog.Logger) (query.Observer, func(), error) {
	reg := prometheus.NewRegistry()
	observer, err := adapter.NewPrometheusObserver("sift", reg)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", adapter.MetricsHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
	return observer, shutdown, nil
}

func runTUI(cfg *adapter.Config, coordinator *query.Coordinator, logger *slog.Logger) error {
	sel := selection.New(cfg.SelectionMode())

	observer := tui.NewChannelObserver(16)
	unsubscribe := coordinator.Subscribe(observer.OnState)
	defer unsubscribe()

	prompt := ""
	if cfg.Provider.Type == adapter.ProviderTypeCatalog {
		prompt = cfg.Provider.Collection + ">"
	}

	model := tui.NewModel(coordinator, sel, observer.States(), logger, tui.Options{
		Prompt:    prompt,
		Overscan:  cfg.View.Overscan,
		MaxHeight: cfg.View.Height,
	})

	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))

	logger.Info("starting TUI")

	final, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	result, ok := final.(tui.Model)
	if !ok || !result.Accepted() {
		logger.Info("selection cancelled")
		return nil
	}

	printItems(os.Stdout, result.Selected())
	logger.Info("selection accepted", "count", len(result.Selected()))
	return nil
}
