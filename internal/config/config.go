package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"linkedin-leads/internal/models"
)

// MaxResultCap is the hard ceiling on records returned by a single scrape
const MaxResultCap = 20

// DefaultConfig returns the default configuration for the scraper
func DefaultConfig() models.Config {
	return models.Config{
		Server: models.ServerConfig{
			Addr:            "127.0.0.1:5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: models.DatabaseConfig{
			Path:        "leads.db",
			BusyTimeout: 5 * time.Second,
		},
		Log: models.LogConfig{
			Level: "info",
		},
		Browser: models.BrowserConfig{
			Headless:  true,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		},
		Session: models.SessionConfig{
			LoginURL:          "https://www.linkedin.com/login",
			UsernameSelector:  "#username",
			PasswordSelector:  "#password",
			SubmitSelector:    `[type="submit"]`,
			PostLoginSelector: "#global-nav, nav.global-nav, [data-test-global-nav]",
			NavigationTimeout: 30 * time.Second,
			LoginTimeout:      20 * time.Second,
		},
		Pagination: models.PaginationConfig{
			RevealIterations: 5,
			ScrollDelta:      1000,
			JitterMin:        2 * time.Second,
			JitterMax:        3 * time.Second,
			SettleTimeout:    5 * time.Second,
			ResultsTimeout:   15 * time.Second,
			PollInterval:     250 * time.Millisecond,
		},
		Scrape: models.ScrapeConfig{
			ResultCap:      MaxResultCap,
			Timeout:        4 * time.Minute,
			UpsertAttempts: 3,
			HistorySize:    50,
		},
		Selectors: DefaultSelectors(),
	}
}

// DefaultSelectors matches the people-search result markup
func DefaultSelectors() models.CardSelectors {
	return models.CardSelectors{
		Container:     `div[data-view-name="search-entity-result-universal-template"]`,
		Card:          "li",
		Name:          `a span[aria-hidden="true"]`,
		Headline:      ".t-14.t-black.t-normal",
		Secondary:     ".t-14.t-normal",
		Summary:       "p.entity-result__summary--2-lines",
		ProfileMarker: "linkedin.com/in/",
		BaseURL:       "https://www.linkedin.com",
	}
}

// Load builds the configuration from defaults, an optional YAML file, .env files
// and the environment, in that order of increasing priority.
func Load(path string) (models.Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return models.Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return models.Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFiles(); err != nil {
		return models.Config{}, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return models.Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return models.Config{}, err
	}
	return cfg, nil
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// godotenv never overrides variables that are already set.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *models.Config) error {
	cfg.Account.Email = envOr("LINKEDIN_EMAIL", cfg.Account.Email)
	cfg.Account.Password = envOr("LINKEDIN_PASSWORD", cfg.Account.Password)

	cfg.Server.Addr = envOr("LEADS_ADDR", cfg.Server.Addr)
	cfg.Database.Path = envOr("LEADS_DB_PATH", cfg.Database.Path)
	cfg.Log.Level = envOr("LEADS_LOG_LEVEL", cfg.Log.Level)
	cfg.Browser.ExecPath = envOr("CHROME_PATH", cfg.Browser.ExecPath)

	var errs []error
	if v, ok := os.LookupEnv("LEADS_LOG_DEVELOPMENT"); ok {
		b, err := strconv.ParseBool(v)
		errs = append(errs, envErr("LEADS_LOG_DEVELOPMENT", err))
		if err == nil {
			cfg.Log.Development = b
		}
	}
	if v, ok := os.LookupEnv("LEADS_HEADLESS"); ok {
		b, err := strconv.ParseBool(v)
		errs = append(errs, envErr("LEADS_HEADLESS", err))
		if err == nil {
			cfg.Browser.Headless = b
		}
	}
	if v, ok := os.LookupEnv("LEADS_REVEAL_ITERATIONS"); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, envErr("LEADS_REVEAL_ITERATIONS", err))
		if err == nil {
			cfg.Pagination.RevealIterations = n
		}
	}
	durations := map[string]*time.Duration{
		"LEADS_LOGIN_TIMEOUT":      &cfg.Session.LoginTimeout,
		"LEADS_NAVIGATION_TIMEOUT": &cfg.Session.NavigationTimeout,
		"LEADS_RESULTS_TIMEOUT":    &cfg.Pagination.ResultsTimeout,
		"LEADS_SCRAPE_TIMEOUT":     &cfg.Scrape.Timeout,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		errs = append(errs, envErr(key, err))
		if err == nil {
			*dst = d
		}
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", models.ErrConfig, key, err)
}

// Validate rejects configurations that would allow an unbounded wait or batch
func Validate(cfg models.Config) error {
	var errs []error
	positive := map[string]time.Duration{
		"session.navigation_timeout": cfg.Session.NavigationTimeout,
		"session.login_timeout":      cfg.Session.LoginTimeout,
		"pagination.settle_timeout":  cfg.Pagination.SettleTimeout,
		"pagination.results_timeout": cfg.Pagination.ResultsTimeout,
		"pagination.poll_interval":   cfg.Pagination.PollInterval,
		"scrape.timeout":             cfg.Scrape.Timeout,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive", models.ErrConfig, name))
		}
	}
	if cfg.Pagination.RevealIterations < 1 {
		errs = append(errs, fmt.Errorf("%w: pagination.reveal_iterations must be at least 1", models.ErrConfig))
	}
	if cfg.Pagination.JitterMin < 0 || cfg.Pagination.JitterMax < cfg.Pagination.JitterMin {
		errs = append(errs, fmt.Errorf("%w: pagination jitter range is invalid", models.ErrConfig))
	}
	if cfg.Scrape.ResultCap < 1 || cfg.Scrape.ResultCap > MaxResultCap {
		errs = append(errs, fmt.Errorf("%w: scrape.result_cap must be within 1..%d", models.ErrConfig, MaxResultCap))
	}
	if cfg.Scrape.UpsertAttempts < 1 {
		errs = append(errs, fmt.Errorf("%w: scrape.upsert_attempts must be at least 1", models.ErrConfig))
	}
	if cfg.Selectors.Container == "" || cfg.Selectors.Card == "" || cfg.Selectors.ProfileMarker == "" {
		errs = append(errs, fmt.Errorf("%w: selectors.container, selectors.card and selectors.profile_marker are required", models.ErrConfig))
	}
	return errors.Join(errs...)
}

// RequireCredentials reports missing LinkedIn credentials before any browser is launched
func RequireCredentials(cfg models.Config) error {
	if cfg.Account.Empty() {
		return fmt.Errorf("%w: LINKEDIN_EMAIL and LINKEDIN_PASSWORD must be set", models.ErrConfig)
	}
	return nil
}
