package models

import "time"

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Browser    BrowserConfig    `yaml:"browser"`
	Session    SessionConfig    `yaml:"session"`
	Pagination PaginationConfig `yaml:"pagination"`
	Scrape     ScrapeConfig     `yaml:"scrape"`
	Selectors  CardSelectors    `yaml:"selectors"`

	// Credentials are only read from the environment.
	Account Account `yaml:"-"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// BrowserConfig controls the Chrome instance launched for each session
type BrowserConfig struct {
	Headless  bool   `yaml:"headless"`
	ExecPath  string `yaml:"exec_path"`
	UserAgent string `yaml:"user_agent"`
}

// SessionConfig controls the login flow. LoginTimeout is the ceiling on the post-login settle.
type SessionConfig struct {
	LoginURL          string        `yaml:"login_url"`
	UsernameSelector  string        `yaml:"username_selector"`
	PasswordSelector  string        `yaml:"password_selector"`
	SubmitSelector    string        `yaml:"submit_selector"`
	PostLoginSelector string        `yaml:"post_login_selector"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	LoginTimeout      time.Duration `yaml:"login_timeout"`
}

// PaginationConfig controls the reveal loop on the search page
type PaginationConfig struct {
	RevealIterations int           `yaml:"reveal_iterations"`
	ScrollDelta      float64       `yaml:"scroll_delta"`
	JitterMin        time.Duration `yaml:"jitter_min"`
	JitterMax        time.Duration `yaml:"jitter_max"`
	SettleTimeout    time.Duration `yaml:"settle_timeout"`
	ResultsTimeout   time.Duration `yaml:"results_timeout"`
	PollInterval     time.Duration `yaml:"poll_interval"`
}

type ScrapeConfig struct {
	ResultCap      int           `yaml:"result_cap"`
	Timeout        time.Duration `yaml:"timeout"`
	UpsertAttempts int           `yaml:"upsert_attempts"`
	HistorySize    int           `yaml:"history_size"`
}

// CardSelectors describes where each field lives inside a result card.
// Container marks a card on the page; the others are evaluated inside one card.
type CardSelectors struct {
	Container     string `yaml:"container"`
	Card          string `yaml:"card"`
	Name          string `yaml:"name"`
	Headline      string `yaml:"headline"`
	Secondary     string `yaml:"secondary"`
	Summary       string `yaml:"summary"`
	ProfileMarker string `yaml:"profile_marker"`
	BaseURL       string `yaml:"base_url"`
}
