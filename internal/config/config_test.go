package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
packages:
  top_packages_url: "https://pypi.org/stats/top-packages.json"
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Crawler.UserAgent != "DocumentationHarvesterBot/1.0" {
		t.Errorf("user agent default = %q", s.Crawler.UserAgent)
	}
	if s.Crawler.MaxDepth != 1 {
		t.Errorf("max depth default = %d", s.Crawler.MaxDepth)
	}
	if s.Crawler.MaxPages != 10 {
		t.Errorf("max pages default = %d", s.Crawler.MaxPages)
	}
	if s.Crawler.RequestDelay != time.Second {
		t.Errorf("request delay default = %v", s.Crawler.RequestDelay)
	}
	if s.Database.Path != "documentation.db" {
		t.Errorf("database path default = %q", s.Database.Path)
	}
	if s.Database.Driver != "sqlite" {
		t.Errorf("database driver default = %q", s.Database.Driver)
	}
	if s.Packages.TopN != 20 {
		t.Errorf("top n default = %d", s.Packages.TopN)
	}
	if s.Scheduler.IntervalMinutes != 60 {
		t.Errorf("interval default = %d", s.Scheduler.IntervalMinutes)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
crawler:
  user_agent: "CustomBot/2.0"
  max_depth: 3
  max_pages: 50
  request_delay: 2
database:
  path: "/tmp/docs.db"
  driver: postgres
packages:
  source: pypi
  top_packages_url: "https://pypi.org/stats/top-packages.json"
  top_n: 5
scheduler:
  interval_minutes: 15
logging:
  level: DEBUG
  format: JSON
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Crawler.UserAgent != "CustomBot/2.0" || s.Crawler.MaxDepth != 3 || s.Crawler.MaxPages != 50 {
		t.Errorf("crawler overrides not applied: %+v", s.Crawler)
	}
	if s.Crawler.RequestDelay != 2*time.Second {
		t.Errorf("request delay override = %v", s.Crawler.RequestDelay)
	}
	if s.Database.Driver != "postgres" {
		t.Errorf("driver override = %q", s.Database.Driver)
	}
	if s.Logging.Level != "debug" || s.Logging.Format != "json" {
		t.Errorf("logging overrides not lowercased: %+v", s.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadInvalidDriver(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: mysql
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unsupported driver")
	}
}

func TestLoadUnsupportedPackageSource(t *testing.T) {
	path := writeConfig(t, `
packages:
  source: npm
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unsupported package source")
	}
}
