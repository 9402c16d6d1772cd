package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"monthcal/internal/calendar"
	"monthcal/internal/locale"
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web host.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// WidgetConfig holds the calendar widget options.
type WidgetConfig struct {
	// StartWeekday is the first grid column, 0 (Sunday) .. 6 (Saturday).
	StartWeekday int `yaml:"start_weekday" json:"start_weekday"`

	// WeekdayType is one of "long", "long-lower", "short".
	WeekdayType string `yaml:"weekday_type" json:"weekday_type"`

	// MonthDisplayType is one of "long", "short", "narrow", "numeric", "2-digit".
	MonthDisplayType string `yaml:"month_display_type" json:"month_display_type"`

	Locale string `yaml:"locale" json:"locale"`
	Theme  string `yaml:"theme" json:"theme"`

	Color       string `yaml:"color,omitempty" json:"color,omitempty"`
	FontFamily1 string `yaml:"font_family_1,omitempty" json:"font_family_1,omitempty"`
	FontFamily2 string `yaml:"font_family_2,omitempty" json:"font_family_2,omitempty"`

	// Pointers so that an omitted key keeps the default (true).
	DropShadow *bool `yaml:"drop_shadow,omitempty" json:"drop_shadow,omitempty"`
	Border     *bool `yaml:"border,omitempty" json:"border,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the web host.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone ICS occurrences are converted into before
	// their day numbers are used.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Widget WidgetConfig `yaml:"widget" json:"widget"`

	// EventsFile is an optional JSON file with a list of events.
	EventsFile string `yaml:"events_file,omitempty" json:"events_file,omitempty"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// re-fetching ICS sources.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// CacheDir holds the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultTimezone = "Local"
	defaultRefresh  = "*/15 * * * *"
	defaultCacheDir = "./cache/ics-cache"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in missing or invalid values so that partially-filled
// configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}

	w := &c.Widget
	if w.StartWeekday < 0 || w.StartWeekday > 6 {
		// Unknown value; fall back to sunday to avoid surprising layouts.
		w.StartWeekday = 0
	}
	w.WeekdayType = string(locale.ParseWeekdayStyle(w.WeekdayType))
	w.MonthDisplayType = string(locale.ParseMonthStyle(w.MonthDisplayType))
	w.Locale = locale.New(w.Locale).Lang()
	if strings.TrimSpace(w.Theme) == "" {
		w.Theme = "default"
	}
	if w.DropShadow == nil {
		w.DropShadow = boolPtr(true)
	}
	if w.Border == nil {
		w.Border = boolPtr(true)
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// CalendarOptions maps the widget section onto calendar.Options. Events,
// callbacks and the renderer are left for the caller.
func (c *Config) CalendarOptions() calendar.Options {
	opts := calendar.DefaultOptions()
	w := c.Widget
	opts.StartWeekday = time.Weekday(w.StartWeekday)
	opts.WeekdayStyle = locale.ParseWeekdayStyle(w.WeekdayType)
	opts.MonthStyle = locale.ParseMonthStyle(w.MonthDisplayType)
	opts.Locale = w.Locale
	opts.Style = calendar.Style{
		Theme:       w.Theme,
		Color:       w.Color,
		FontFamily1: w.FontFamily1,
		FontFamily2: w.FontFamily2,
		DropShadow:  w.DropShadow == nil || *w.DropShadow,
		Border:      w.Border == nil || *w.Border,
	}
	return opts
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (creating the parent directory) and returned.
//   - Otherwise the YAML is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".monthcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

func boolPtr(b bool) *bool {
	return &b
}
