// Package config loads command configuration from the environment.
// Flags layered on top by the commands take precedence over anything
// read here.
package config

import (
	"fmt"
	"os"
)

type Config struct {
	// Tee command
	LogName    string // Log name; the document filename is derived from it.
	LogDir     string // Directory documents are written into.
	Title      string // Document title; defaults to the log name.
	Suffix     string // Filename suffix; "timestamp" selects the default.
	PathPrefix string // Directory override for navigation links.

	// Viewer
	ViewAddr   string // Listen address for the log browser.
	ViewDir    string // Directory of documents the browser serves.
	ViewAPIKey string // Optional bearer token; empty disables auth.
}

func Load() Config {
	cfg := Config{
		LogName:    envOr("TEEHTML_LOG_NAME", "log"),
		LogDir:     envOr("TEEHTML_LOG_DIR", "."),
		Title:      os.Getenv("TEEHTML_TITLE"),
		Suffix:     envOr("TEEHTML_SUFFIX", "timestamp"),
		PathPrefix: os.Getenv("TEEHTML_PATH_PREFIX"),

		ViewAddr:   envOr("TEEHTML_VIEW_ADDR", ":8091"),
		ViewDir:    envOr("TEEHTML_VIEW_DIR", "."),
		ViewAPIKey: os.Getenv("TEEHTML_VIEW_API_KEY"),
	}

	return cfg
}

func (c Config) Validate() error {
	if c.LogName == "" {
		return fmt.Errorf("TEEHTML_LOG_NAME must not be empty")
	}
	if c.ViewDir == "" {
		return fmt.Errorf("TEEHTML_VIEW_DIR must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

