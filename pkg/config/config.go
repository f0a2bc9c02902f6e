// Package config reads the application settings from the environment and the
// site file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the commands need to wire the blog.
type Config struct {
	AppURL     string
	ListenAddr string

	// CMS settings
	CMSEndpoint     string
	CMSAccessToken  string
	CMSDocumentType string
	CMSTimeout      time.Duration

	// Listing settings
	PageSize           int
	RevalidateInterval time.Duration

	SessionSecret    string
	RevalidateSecret string

	// SnapshotDB is the SQLite file for stale post pages; empty disables it.
	SnapshotDB        string
	ExportConcurrency int
	StaticDir         string

	Site Site
}

// Load reads envFile (default ".env") into the environment, then builds a
// Config from it. A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		AppURL:           getEnv("APP_URL", "http://localhost:8080"),
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		CMSEndpoint:      os.Getenv("CMS_ENDPOINT"),
		CMSAccessToken:   os.Getenv("CMS_ACCESS_TOKEN"),
		CMSDocumentType:  getEnv("CMS_DOCUMENT_TYPE", "posts"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		RevalidateSecret: os.Getenv("REVALIDATE_SECRET"),
		SnapshotDB:       os.Getenv("SNAPSHOT_DB"),
		StaticDir:        getEnv("STATIC_DIR", "./static"),
	}

	var err error
	if cfg.CMSTimeout, err = getDuration("CMS_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RevalidateInterval, err = getDuration("REVALIDATE_INTERVAL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = getInt("PAGE_SIZE", 1); err != nil {
		return nil, err
	}
	if cfg.ExportConcurrency, err = getInt("EXPORT_CONCURRENCY", 20); err != nil {
		return nil, err
	}

	if cfg.Site, err = LoadSite(getEnv("SITE_FILE", "site.yaml")); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if c.CMSEndpoint == "" {
		return errors.New("CMS_ENDPOINT is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.ExportConcurrency <= 0 {
		return fmt.Errorf("EXPORT_CONCURRENCY must be positive, got %d", c.ExportConcurrency)
	}
	if c.RevalidateInterval <= 0 {
		return fmt.Errorf("REVALIDATE_INTERVAL must be positive, got %s", c.RevalidateInterval)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
