package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"JobFeed/internal/domain"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "JOBFEED_CONFIG"
	databaseDriverEnv  = "DATABASE_DRIVER"
	databaseDSNEnv     = "DATABASE_DSN"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	webhookSecretEnv   = "TELEGRAM_WEBHOOK_SECRET"
	triggerTokenEnv    = "TRIGGER_TOKEN"
	logLevelEnv        = "LOG_LEVEL"
	httpAddrEnv        = "HTTP_ADDR"
	defaultLocation    = "Remote"
	defaultTelegramAPI = "https://api.telegram.org"
	defaultSQLiteDSN   = "jobfeed.db"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("invalid configuration")

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Database      DatabaseConfig      `yaml:"database"`
	Server        ServerConfig        `yaml:"server"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Filters       domain.FilterPolicy `yaml:"filters"`
	Notifications NotificationConfig  `yaml:"notifications"`
	Sites         []SiteConfig        `yaml:"sites"`
}

// LoggingConfig selects the minimum log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the relational store. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ServerConfig configures the trigger and webhook HTTP endpoints.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	TriggerToken  string `yaml:"triggerToken"`
	WebhookSecret string `yaml:"webhookSecret"`
}

// SchedulerConfig defines when the pipeline should run on its own.
type SchedulerConfig struct {
	Enabled    bool           `yaml:"enabled"`
	Interval   time.Duration  `yaml:"interval"`
	RunOnStart bool           `yaml:"runOnStart"`
	Timezone   string         `yaml:"timezone"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// PipelineConfig bounds every stage of a run.
type PipelineConfig struct {
	Lookback          time.Duration `yaml:"lookback"`
	MaxPerSource      int           `yaml:"maxPerSource"`
	FetchTimeout      time.Duration `yaml:"fetchTimeout"`
	SourceTimeout     time.Duration `yaml:"sourceTimeout"`
	RunTimeout        time.Duration `yaml:"runTimeout"`
	SendTimeout       time.Duration `yaml:"sendTimeout"`
	RecencyWindow     time.Duration `yaml:"recencyWindow"`
	UnsentLimit       int           `yaml:"unsentLimit"`
	MaxPerUser        int           `yaml:"maxPerUser"`
	LockFile          string        `yaml:"lockFile"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken   string `yaml:"botToken"`
	APIBaseURL string `yaml:"apiBaseUrl"`
}

// SiteConfig describes a single job source with its scanner strategy.
type SiteConfig struct {
	Name             string            `yaml:"name"`
	Scanner          string            `yaml:"scanner"`
	Enabled          *bool             `yaml:"enabled"`
	LocationFallback string            `yaml:"locationFallback"`
	Boards           []BoardConfig     `yaml:"boards"`
	Options          map[string]string `yaml:"options"`
}

// IsEnabled treats a missing flag as enabled.
func (s SiteConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// BoardConfig is one endpoint crawled by a site (a company board, a feed URL, a listing page).
type BoardConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads the file named by JOBFEED_CONFIG (if set), applies environment
// overrides and validates the result.
func Load() (Config, error) {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom is Load with an explicit config path; an empty path uses defaults only.
func LoadFrom(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		problems = append(problems, "database.driver must be postgres or sqlite")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		problems = append(problems, "database.dsn is required")
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		problems = append(problems, "scheduler.interval must be > 0 when the scheduler is enabled")
	}
	if c.Pipeline.Lookback <= 0 {
		problems = append(problems, "pipeline.lookback must be > 0")
	}
	if c.Pipeline.RecencyWindow <= 0 {
		problems = append(problems, "pipeline.recencyWindow must be > 0")
	}
	if c.Pipeline.FetchTimeout < 0 || c.Pipeline.SourceTimeout < 0 || c.Pipeline.RunTimeout < 0 {
		problems = append(problems, "pipeline timeouts cannot be negative")
	}
	if c.Pipeline.SourceTimeout > 0 && c.Pipeline.SourceTimeout < c.Pipeline.FetchTimeout {
		problems = append(problems, "pipeline.sourceTimeout must not be shorter than pipeline.fetchTimeout")
	}
	if c.Pipeline.MaxPerSource < 0 || c.Pipeline.UnsentLimit < 0 || c.Pipeline.MaxPerUser < 0 {
		problems = append(problems, "pipeline caps cannot be negative")
	}

	seen := map[string]bool{}
	for i, site := range c.Sites {
		name := strings.TrimSpace(site.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("sites[%d].name is required", i))
			continue
		}
		if seen[name] {
			problems = append(problems, fmt.Sprintf("sites[%d].name %s is duplicated", i, name))
		}
		seen[name] = true
		if strings.TrimSpace(site.Scanner) == "" {
			problems = append(problems, fmt.Sprintf("sites[%d].scanner is required", i))
		}
		if len(site.Boards) == 0 {
			problems = append(problems, fmt.Sprintf("sites[%d].boards must have at least one entry", i))
		}
	}

	if len(problems) > 0 {
		return errors.Wrap(ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(webhookSecretEnv); v != "" {
		c.Server.WebhookSecret = v
	}
	if v := os.Getenv(triggerTokenEnv); v != "" {
		c.Server.TriggerToken = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return errors.Wrapf(ErrInvalid, "unknown timezone %s", tz)
	}
	c.Scheduler.location = loc
	return nil
}

// LocationFallbackOrDefault returns the location used when a site's postings omit one.
func (s SiteConfig) LocationFallbackOrDefault() string {
	if v := strings.TrimSpace(s.LocationFallback); v != "" {
		return v
	}
	return defaultLocation
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.TriggerToken != "" {
		base.Server.TriggerToken = override.Server.TriggerToken
	}
	if override.Server.WebhookSecret != "" {
		base.Server.WebhookSecret = override.Server.WebhookSecret
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.RunOnStart {
		base.Scheduler.RunOnStart = true
	}
	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	p := override.Pipeline
	if p.Lookback != 0 {
		base.Pipeline.Lookback = p.Lookback
	}
	if p.MaxPerSource != 0 {
		base.Pipeline.MaxPerSource = p.MaxPerSource
	}
	if p.FetchTimeout != 0 {
		base.Pipeline.FetchTimeout = p.FetchTimeout
	}
	if p.SourceTimeout != 0 {
		base.Pipeline.SourceTimeout = p.SourceTimeout
	}
	if p.RunTimeout != 0 {
		base.Pipeline.RunTimeout = p.RunTimeout
	}
	if p.SendTimeout != 0 {
		base.Pipeline.SendTimeout = p.SendTimeout
	}
	if p.RecencyWindow != 0 {
		base.Pipeline.RecencyWindow = p.RecencyWindow
	}
	if p.UnsentLimit != 0 {
		base.Pipeline.UnsentLimit = p.UnsentLimit
	}
	if p.MaxPerUser != 0 {
		base.Pipeline.MaxPerUser = p.MaxPerUser
	}
	if p.LockFile != "" {
		base.Pipeline.LockFile = p.LockFile
	}
	if p.RequestsPerSecond != 0 {
		base.Pipeline.RequestsPerSecond = p.RequestsPerSecond
	}

	if len(override.Filters.IncludeKeywords) > 0 {
		base.Filters.IncludeKeywords = override.Filters.IncludeKeywords
	}
	if len(override.Filters.ExcludeKeywords) > 0 {
		base.Filters.ExcludeKeywords = override.Filters.ExcludeKeywords
	}
	if len(override.Filters.Locations) > 0 {
		base.Filters.Locations = override.Filters.Locations
	}
	if len(override.Filters.Seniorities) > 0 {
		base.Filters.Seniorities = override.Filters.Seniorities
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.APIBaseURL != "" {
		base.Notifications.Telegram.APIBaseURL = override.Notifications.Telegram.APIBaseURL
	}

	if override.Sites != nil {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: defaultSQLiteDSN},
		Server:   ServerConfig{Addr: ":8080"},
		Scheduler: SchedulerConfig{
			Interval: 6 * time.Hour,
			Timezone: defaultTimezone,
			location: tz,
		},
		Pipeline: PipelineConfig{
			Lookback:          48 * time.Hour,
			MaxPerSource:      200,
			FetchTimeout:      30 * time.Second,
			SourceTimeout:     10 * time.Minute,
			RunTimeout:        time.Hour,
			SendTimeout:       10 * time.Second,
			RecencyWindow:     72 * time.Hour,
			UnsentLimit:       50,
			MaxPerUser:        20,
			RequestsPerSecond: 1,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{APIBaseURL: defaultTelegramAPI},
		},
	}
}
