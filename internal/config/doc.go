// Package config provides configuration structures and utilities for the
// crawler. It defines the crawl limits, politeness settings, domain rules,
// and output preferences, plus the YAML configuration file loader.
package config
