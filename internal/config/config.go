// Package config provides a typed, read-only view over the harvester's YAML
// configuration, with the defaults and recognized keys named in the design.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the parsed, validated configuration for one harvester process.
// Every field corresponds to one recognized key; unset keys take the default
// documented alongside the field.
type Settings struct {
	Crawler   Crawler
	Database  Database
	Packages  Packages
	Scheduler Scheduler
	Logging   Logging
}

// Crawler holds the crawler.* keys.
type Crawler struct {
	UserAgent    string        // crawler.user_agent, default "DocumentationHarvesterBot/1.0"
	MaxDepth     int           // crawler.max_depth, default 1
	MaxPages     int           // crawler.max_pages, default 10
	RequestDelay time.Duration // crawler.request_delay (seconds), default 1s
	UseSitemap   bool          // crawler.use_sitemap, default false
}

// Database holds the database.* keys.
type Database struct {
	Path   string // database.path, default "documentation.db"
	Driver string // database.driver, default "sqlite"; "postgres" also recognized
}

// Packages holds the packages.* keys.
type Packages struct {
	Source         string // packages.source, only "pypi" recognized
	TopPackagesURL string // packages.top_packages_url, no default
	TopN           int    // packages.top_n, default 20
}

// Scheduler holds the scheduler.* keys.
type Scheduler struct {
	IntervalMinutes int // scheduler.interval_minutes, default 60
}

// Logging holds the logging.* keys.
type Logging struct {
	Level  string // logging.level, default "info"
	Format string // logging.format, default "text"
}

// Error wraps a configuration problem. The CLI maps it to exit code 1.
type Error struct {
	msg string
}

func (e *Error) Error() string { return "config: " + e.msg }

func configError(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Load reads the YAML document at path and returns validated Settings.
// A missing file, unparseable YAML, or an invalid value is a configuration
// error, fatal at startup.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("crawler.user_agent", "DocumentationHarvesterBot/1.0")
	v.SetDefault("crawler.max_depth", 1)
	v.SetDefault("crawler.max_pages", 10)
	v.SetDefault("crawler.request_delay", 1)
	v.SetDefault("crawler.use_sitemap", false)
	v.SetDefault("database.path", "documentation.db")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("packages.source", "pypi")
	v.SetDefault("packages.top_n", 20)
	v.SetDefault("scheduler.interval_minutes", 60)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, configError("reading %s: %v", path, err)
	}

	s := Settings{
		Crawler: Crawler{
			UserAgent:    v.GetString("crawler.user_agent"),
			MaxDepth:     v.GetInt("crawler.max_depth"),
			MaxPages:     v.GetInt("crawler.max_pages"),
			RequestDelay: time.Duration(v.GetInt64("crawler.request_delay")) * time.Second,
			UseSitemap:   v.GetBool("crawler.use_sitemap"),
		},
		Database: Database{
			Path:   v.GetString("database.path"),
			Driver: strings.ToLower(v.GetString("database.driver")),
		},
		Packages: Packages{
			Source:         strings.ToLower(v.GetString("packages.source")),
			TopPackagesURL: v.GetString("packages.top_packages_url"),
			TopN:           v.GetInt("packages.top_n"),
		},
		Scheduler: Scheduler{
			IntervalMinutes: v.GetInt("scheduler.interval_minutes"),
		},
		Logging: Logging{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
	}

	return s, s.validate()
}

func (s Settings) validate() error {
	if s.Crawler.MaxDepth < 0 {
		return configError("crawler.max_depth must be >= 0, got %d", s.Crawler.MaxDepth)
	}
	if s.Crawler.MaxPages < 1 {
		return configError("crawler.max_pages must be >= 1, got %d", s.Crawler.MaxPages)
	}
	if s.Database.Driver != "sqlite" && s.Database.Driver != "postgres" {
		return configError("database.driver must be sqlite or postgres, got %q", s.Database.Driver)
	}
	if s.Packages.Source != "pypi" {
		return configError("packages.source: unsupported source %q", s.Packages.Source)
	}
	return nil
}
