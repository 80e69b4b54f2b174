// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"invoice-architect/internal/paths"

	"gopkg.in/yaml.v3"
)

// Default values applied before a config file is read.
const (
	DefaultFormat         = "text"
	DefaultMaxFileSize    = 25 * 1024 * 1024
	DefaultMaxInflateSize = 64 * 1024 * 1024
	DefaultMaxQuantity    = 100000
	DefaultMaxPages       = 50
	DefaultPDFEngine      = "scan"
	DefaultCurrency       = "USD"
	DefaultWebPort        = 8080
)

// ImportConfig tunes the import pipeline.
type ImportConfig struct {
	MaxFileSize     int64    `yaml:"max_file_size"`
	MaxInflateSize  int64    `yaml:"max_inflate_size"`
	MaxPages        int      `yaml:"max_pages"`
	MaxQuantity     float64  `yaml:"max_quantity"`
	PDFEngine       string   `yaml:"pdf_engine"`
	Extended        bool     `yaml:"extended"`
	DefaultCurrency string   `yaml:"default_currency"`
	ExtraCurrencies []string `yaml:"extra_currencies"`
}

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format   string `yaml:"format"`
		Verbose  bool   `yaml:"verbose"`
		Debug    bool   `yaml:"debug"`
		NoColor  bool   `yaml:"no_color"`
		ShowText bool   `yaml:"show_text"`
	} `yaml:"defaults"`

	Import ImportConfig `yaml:"import"`

	Web struct {
		Port int `yaml:"port"`
	} `yaml:"web"`

	// Profiles for different import scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile overrides defaults for one import scenario. Nil pointers leave
// the default untouched.
type Profile struct {
	Description     string   `yaml:"description"`
	Format          string   `yaml:"format"`
	Verbose         *bool    `yaml:"verbose"`
	Debug           *bool    `yaml:"debug"`
	NoColor         *bool    `yaml:"no_color"`
	PDFEngine       string   `yaml:"pdf_engine"`
	Extended        *bool    `yaml:"extended"`
	ExtraCurrencies []string `yaml:"extra_currencies"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	applyZeroDefaults(config)

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func defaultConfig() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Format = DefaultFormat

	config.Import.MaxFileSize = DefaultMaxFileSize
	config.Import.MaxInflateSize = DefaultMaxInflateSize
	config.Import.MaxPages = DefaultMaxPages
	config.Import.MaxQuantity = DefaultMaxQuantity
	config.Import.PDFEngine = DefaultPDFEngine
	config.Import.DefaultCurrency = DefaultCurrency

	config.Web.Port = DefaultWebPort

	yes := true
	config.Profiles["gst"] = Profile{
		Description:     "Indian GST invoices: reads GSTIN, PAN, state codes and CGST/SGST/IGST treatment",
		Extended:        &yes,
		ExtraCurrencies: []string{"INR"},
	}
	config.Profiles["scanned"] = Profile{
		Description: "Machine generated PDFs that lay text out by position",
		PDFEngine:   "layout",
	}
	return config
}

// applyZeroDefaults restores defaults for numeric settings a config file
// set to zero or left empty.
func applyZeroDefaults(config *Config) {
	if config.Defaults.Format == "" {
		config.Defaults.Format = DefaultFormat
	}
	if config.Import.MaxInflateSize <= 0 {
		config.Import.MaxInflateSize = DefaultMaxInflateSize
	}
	if config.Import.MaxPages <= 0 {
		config.Import.MaxPages = DefaultMaxPages
	}
	if config.Import.MaxQuantity <= 0 {
		config.Import.MaxQuantity = DefaultMaxQuantity
	}
	if config.Import.PDFEngine == "" {
		config.Import.PDFEngine = DefaultPDFEngine
	}
	if config.Import.DefaultCurrency == "" {
		config.Import.DefaultCurrency = DefaultCurrency
	}
	if config.Web.Port == 0 {
		config.Web.Port = DefaultWebPort
	}
}

// FindConfigFile looks for a configuration file in the working directory,
// then in the user configuration directory. It returns "" when none exists.
func FindConfigFile() string {
	for _, name := range []string{"invoice-import.yaml", "invoice-import.yml", ".invoice-import.yaml", "config.yaml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); fileExists(standardConfig) {
		return standardConfig
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted.
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// Apply returns a copy of c with the profile's overrides applied.
func (c *Config) Apply(profile *Profile) *Config {
	out := *c
	out.Import.ExtraCurrencies = append([]string(nil), c.Import.ExtraCurrencies...)
	if profile == nil {
		return &out
	}
	if profile.Format != "" {
		out.Defaults.Format = profile.Format
	}
	if profile.Verbose != nil {
		out.Defaults.Verbose = *profile.Verbose
	}
	if profile.Debug != nil {
		out.Defaults.Debug = *profile.Debug
	}
	if profile.NoColor != nil {
		out.Defaults.NoColor = *profile.NoColor
	}
	if profile.PDFEngine != "" {
		out.Import.PDFEngine = profile.PDFEngine
	}
	if profile.Extended != nil {
		out.Import.Extended = *profile.Extended
	}
	out.Import.ExtraCurrencies = append(out.Import.ExtraCurrencies, profile.ExtraCurrencies...)
	return &out
}

// ValidateConfig checks settings that cannot be corrected by defaults.
func ValidateConfig(config *Config) error {
	switch strings.ToLower(config.Import.PDFEngine) {
	case "scan", "layout", "pdfcpu":
	default:
		return fmt.Errorf("import.pdf_engine %q is not one of scan, layout, pdfcpu", config.Import.PDFEngine)
	}
	if config.Import.MaxFileSize < 0 {
		return fmt.Errorf("import.max_file_size must not be negative")
	}
	if config.Web.Port < 0 || config.Web.Port > 65535 {
		return fmt.Errorf("web.port %d is out of range", config.Web.Port)
	}
	for name, profile := range config.Profiles {
		if profile.PDFEngine == "" {
			continue
		}
		switch strings.ToLower(profile.PDFEngine) {
		case "scan", "layout", "pdfcpu":
		default:
			return fmt.Errorf("profile %s: pdf_engine %q is not one of scan, layout, pdfcpu", name, profile.PDFEngine)
		}
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
// This is the shared helper used by both the CLI and the web server.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults; callers should not crash on a missing/bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}
