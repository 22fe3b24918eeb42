package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yair/festival-atlas/pkg/config"
	"github.com/yair/festival-atlas/pkg/domain"
	"github.com/yair/festival-atlas/pkg/interfaces"
	"github.com/yair/festival-atlas/pkg/logger"
	"github.com/yair/festival-atlas/pkg/pipeline"
	"github.com/yair/festival-atlas/pkg/sources"
	"github.com/yair/festival-atlas/pkg/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	datasetStore, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	providers, err := buildProviders(cfg)
	if err != nil {
		slog.Error("failed to initialize sources", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := pipeline.NewMetrics(registry)

	runner := pipeline.NewRunner(providers, pipeline.Config{
		FetchTimeout:       cfg.Pipeline.FetchTimeout,
		MaxConcurrentFetch: cfg.Pipeline.MaxConcurrentFetch,
	}, metrics)

	service := interfaces.NewFestivalService(datasetStore, runner)
	handler := interfaces.NewFestivalHandler(service, cfg.Server.RefreshSecret)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Build the first snapshot in the background when the store is empty,
	// so a fresh deployment serves data without a manual refresh call.
	go func() {
		if _, err := service.GetDataset(ctx); errors.Is(err, domain.ErrDatasetNotFound) {
			slog.Info("no snapshot found, building initial dataset")
			if _, err := service.Refresh(ctx); err != nil {
				slog.Error("initial refresh failed", "error", err)
			}
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (store.DatasetStore, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "redis":
		s, err := store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, errors.New("unknown store backend " + cfg.Store.Backend)
	}
}

func buildProviders(cfg *config.Config) ([]pipeline.Provider, error) {
	var providers []pipeline.Provider

	if cfg.Sources.Manual.Enabled {
		providers = append(providers, sources.NewManualSource())
	}
	if cfg.Sources.Ticketmaster.Enabled {
		client, err := sources.NewTicketmasterClient(sources.TicketmasterConfig{
			APIKey: cfg.Sources.Ticketmaster.APIKey,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, client)
	}
	if cfg.Sources.ResidentAdvisor.Enabled {
		providers = append(providers, sources.NewResidentAdvisorScraper(sources.ResidentAdvisorConfig{
			UserAgent:    cfg.Sources.ResidentAdvisor.UserAgent,
			RequestDelay: cfg.Sources.ResidentAdvisor.RequestDelay,
		}))
	}
	if cfg.Sources.Wizard.Enabled {
		providers = append(providers, sources.NewWizardScraper(sources.WizardConfig{
			UserAgent:    cfg.Sources.Wizard.UserAgent,
			RequestDelay: cfg.Sources.Wizard.RequestDelay,
		}))
	}
	if cfg.Sources.Culture.Enabled {
		providers = append(providers, sources.NewCultureClient(sources.CultureConfig{}))
	}

	return providers, nil
}
