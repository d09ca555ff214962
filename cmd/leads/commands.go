package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkedin-leads/internal/api"
	"linkedin-leads/internal/config"
	"linkedin-leads/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Routes:
  POST /linkedin/scrape    {"searchUrl": "..."}
  GET  /linkedin/search    ?query=...
  GET  /linkedin/profiles  ?url=...
  GET  /linkedin/runs
  GET  /health
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := config.RequireCredentials(a.cfg); err != nil {
			a.logger.Warn("scrapes will fail until credentials are set", zap.Error(err))
		}

		ctx, cancel := utils.SignalContext(context.Background(), func(sig os.Signal) {
			a.logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
		})
		defer cancel()

		srv := &http.Server{
			Addr: a.cfg.Server.Addr,
			Handler: api.NewHandler(api.Deps{
				Scraper:  a.scraper,
				Searcher: a.queries,
				Profiles: a.store,
				Gatherer: a.registry,
				Logger:   a.logger.Named("http"),
			}),
			ReadTimeout:  a.cfg.Server.ReadTimeout,
			WriteTimeout: a.cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		}

		shutdownCtx, stop := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <search-url>",
	Short: "Scrape one LinkedIn people search and print the stored leads as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := config.RequireCredentials(a.cfg); err != nil {
			return err
		}

		ctx, cancel := utils.SignalContext(cmd.Context(), nil)
		defer cancel()

		res, err := a.scraper.Scrape(ctx, args[0])
		if err != nil {
			return err
		}
		if res.Warnings > 0 {
			utils.PrintErr("%d profile(s) were not persisted, see the log for details", res.Warnings)
		}
		return printJSON(cmd, res.Profiles)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored leads by name, job title, company or location",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		profiles, err := a.queries.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(cmd, profiles)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
