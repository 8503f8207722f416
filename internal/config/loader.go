package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".webcrawler"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .webcrawler configuration file.
// Pointer fields distinguish "not set" from an explicit zero, so the file
// only overrides what it actually mentions.
type File struct {
	// Seeds lists the starting URLs.
	Seeds []string `yaml:"seeds,omitempty"`

	// AllowedDomains is the crawl scope.
	AllowedDomains []string `yaml:"allowedDomains,omitempty"`

	// DeniedDomains are rejected even inside the allowed scope.
	DeniedDomains []string `yaml:"deniedDomains,omitempty"`

	// BlockPatterns are regular expressions matched against full URLs.
	BlockPatterns []string `yaml:"blockPatterns,omitempty"`

	// MaxDepth is the maximum link-following depth.
	MaxDepth *int `yaml:"maxDepth,omitempty"`

	// RequestTimeout is the per-request deadline, in Go duration syntax
	// (e.g. "10s").
	RequestTimeout *string `yaml:"requestTimeout,omitempty"`

	// RetryCount is how many times a failed fetch is retried.
	RetryCount *int `yaml:"retryCount,omitempty"`

	// PoliteDelay is the minimum interval between fetches, in Go duration
	// syntax (e.g. "500ms").
	PoliteDelay *string `yaml:"politeDelay,omitempty"`

	// Workers is the number of pages processed concurrently.
	Workers *int `yaml:"workers,omitempty"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent *string `yaml:"userAgent,omitempty"`

	// OutputDir is where crawl results are written.
	OutputDir *string `yaml:"outputDir,omitempty"`
}

// LoadConfigFile loads crawl configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .webcrawler in the current directory
// 3. Look for .webcrawler in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply copies the file's settings onto cfg. Only fields present in the
// file are changed; CLI flags applied afterwards still win.
func (cf *File) Apply(cfg *Config) error {
	if len(cf.Seeds) > 0 {
		cfg.Seeds = cf.Seeds
	}
	if len(cf.AllowedDomains) > 0 {
		cfg.AllowedDomains = cf.AllowedDomains
	}
	if len(cf.DeniedDomains) > 0 {
		cfg.DeniedDomains = cf.DeniedDomains
	}
	if len(cf.BlockPatterns) > 0 {
		cfg.BlockPatterns = cf.BlockPatterns
	}
	if cf.MaxDepth != nil {
		cfg.MaxDepth = *cf.MaxDepth
	}
	if cf.RequestTimeout != nil {
		d, err := time.ParseDuration(*cf.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid requestTimeout %q: %w", *cf.RequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if cf.RetryCount != nil {
		cfg.RetryCount = *cf.RetryCount
	}
	if cf.PoliteDelay != nil {
		d, err := time.ParseDuration(*cf.PoliteDelay)
		if err != nil {
			return fmt.Errorf("invalid politeDelay %q: %w", *cf.PoliteDelay, err)
		}
		cfg.PoliteDelay = d
	}
	if cf.Workers != nil {
		cfg.Workers = *cf.Workers
	}
	if cf.UserAgent != nil {
		cfg.UserAgent = *cf.UserAgent
	}
	if cf.OutputDir != nil {
		cfg.OutputDir = *cf.OutputDir
	}
	return nil
}
