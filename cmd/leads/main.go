package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkedin-leads/internal/auth"
	"linkedin-leads/internal/browser"
	"linkedin-leads/internal/config"
	"linkedin-leads/internal/crawler"
	"linkedin-leads/internal/logger"
	"linkedin-leads/internal/metrics"
	"linkedin-leads/internal/models"
	"linkedin-leads/internal/orchestrator"
	"linkedin-leads/internal/storage"
	"linkedin-leads/internal/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "leads",
	Short:         "Scrape LinkedIn people searches into a searchable lead store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, scrapeCmd, searchCmd)

	if err := rootCmd.Execute(); err != nil {
		utils.PrintErr("error: %v", err)
		os.Exit(1)
	}
}

// app holds the wired pipeline shared by every command
type app struct {
	cfg      models.Config
	logger   *zap.Logger
	store    *storage.ProfileStore
	registry *prometheus.Registry
	scraper  *orchestrator.Scraper
	queries  *crawler.QueryService
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewProfileStore(cfg.Database)
	if err != nil {
		log.Sync()
		return nil, err
	}

	parser, err := crawler.NewProfileExtractor(cfg.Selectors)
	if err != nil {
		store.Close()
		log.Sync()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	sessions := auth.NewSessionManager(browser.NewChromeLauncher(cfg.Browser), cfg.Session, log.Named("session"))
	paginator := crawler.NewPaginator(cfg.Pagination, cfg.Selectors, cfg.Session.NavigationTimeout, log.Named("paginator"))

	return &app{
		cfg:      cfg,
		logger:   log,
		store:    store,
		registry: registry,
		scraper:  orchestrator.NewScraper(cfg, sessions, paginator, parser, store, m, log.Named("scraper")),
		queries:  crawler.NewQueryService(store, log.Named("query")),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close profile store", zap.Error(err))
	}
	a.logger.Sync()
}
