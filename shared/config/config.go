package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Env           string `yaml:"env" env:"ENV"`
	Port          string `yaml:"port" env:"PORT"`
	APIBaseURL    string `yaml:"api_base_url" env:"API_BASE_URL"`
	SecureCookies bool   `yaml:"secure_cookies" env:"SECURE_COOKIES"`
	LogLevel      string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat     string `yaml:"log_format" env:"LOG_FORMAT"` // "json" or "console"

	TurnstileSiteKey string `yaml:"turnstile_sitekey" env:"TURNSTILE_SITEKEY"`

	// signed-in visitors are sent here from /signup and /reset
	HomeURL string `yaml:"home_url" env:"HOME_URL"`
	// read from disk and reloaded when Env is development; embedded otherwise
	TemplatesDir string `yaml:"templates_dir" env:"TEMPLATES_DIR"`

	// Lookup debounce windows, see signup.NameLookup
	UsernameDelay      time.Duration `yaml:"username_delay" env:"USERNAME_DELAY"`
	ProfileSearchDelay time.Duration `yaml:"profile_search_delay" env:"PROFILE_SEARCH_DELAY"`
	ProfileSearchLimit int           `yaml:"profile_search_limit" env:"PROFILE_SEARCH_LIMIT"`
	RecentNotesLimit   int           `yaml:"recent_notes_limit" env:"RECENT_NOTES_LIMIT"`

	SessionTTL  time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	PollTimeout time.Duration `yaml:"poll_timeout" env:"POLL_TIMEOUT"`

	InstitutionDomainsRefresh time.Duration `yaml:"institution_domains_refresh" env:"INSTITUTION_DOMAINS_REFRESH"`

	APIReadTimeout  time.Duration `yaml:"api_read_timeout" env:"API_READ_TIMEOUT"`
	APIWriteTimeout time.Duration `yaml:"api_write_timeout" env:"API_WRITE_TIMEOUT"`

	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR"`

	// Email-sending endpoints (reset, activation, register): tokens per window per email
	EmailRateLimit  int           `yaml:"email_rate_limit" env:"EMAIL_RATE_LIMIT"`
	EmailRateWindow time.Duration `yaml:"email_rate_window" env:"EMAIL_RATE_WINDOW"`
	// Lookup API: requests per window per IP
	LookupRateLimit  int           `yaml:"lookup_rate_limit" env:"LOOKUP_RATE_LIMIT"`
	LookupRateWindow time.Duration `yaml:"lookup_rate_window" env:"LOOKUP_RATE_WINDOW"`

	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

type Private struct {
	JwtSecret     string `yaml:"jwt_secret" env:"JWT_SECRET"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Public.Env, "development")
}

func defaults() Public {
	return Public{
		Env:                       "production",
		Port:                      "8081",
		HomeURL:                   "https://openreview.net",
		LogLevel:                  "info",
		LogFormat:                 "console",
		UsernameDelay:             500 * time.Millisecond,
		ProfileSearchDelay:        300 * time.Millisecond,
		ProfileSearchLimit:        50,
		RecentNotesLimit:          3,
		SessionTTL:                30 * time.Minute,
		PollTimeout:               10 * time.Second,
		InstitutionDomainsRefresh: 10 * time.Minute,
		APIReadTimeout:            5 * time.Second,
		APIWriteTimeout:           15 * time.Second,
		EmailRateLimit:            3,
		EmailRateWindow:           10 * time.Minute,
		LookupRateLimit:           20,
		LookupRateWindow:          time.Second,
	}
}

func loadPath(configPath string, output interface{}, required bool) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if required {
			return fmt.Errorf("config file does not exist: %s", configPath)
		}
		return nil
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml (required) and private.yaml (optional) from configFolder,
// then applies .env and environment overrides.
func Load(configFolder string) (*Config, error) {
	public := defaults()
	if err := loadPath(path.Join(configFolder, "public.yaml"), &public, true); err != nil {
		return nil, err
	}

	var private Private
	if err := loadPath(path.Join(configFolder, "private.yaml"), &private, false); err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()

	if err := env.Parse(&public); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := env.Parse(&private); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &Config{Public: public, Private: private}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	p := c.Public
	if p.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if p.TurnstileSiteKey == "" {
		return fmt.Errorf("turnstile_sitekey is required")
	}
	if p.UsernameDelay <= 0 || p.ProfileSearchDelay <= 0 {
		return fmt.Errorf("lookup delays must be positive")
	}
	if p.ProfileSearchLimit <= 0 {
		return fmt.Errorf("profile_search_limit must be positive")
	}
	if p.EmailRateLimit <= 0 || p.EmailRateWindow <= 0 {
		return fmt.Errorf("email rate limit must be positive")
	}
	return nil
}
