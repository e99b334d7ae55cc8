package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	GRPC     GRPCConfig     `toml:"grpc" yaml:"grpc"`
	Analyzer AnalyzerConfig `toml:"analyzer" yaml:"analyzer"`
	History  HistoryConfig  `toml:"history" yaml:"history"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	DataDir     string `toml:"data_dir" yaml:"data_dir"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogFormat   string `toml:"log_format" yaml:"log_format"`
}

// ServerConfig holds the HTTP API server configuration
type ServerConfig struct {
	Port         int        `toml:"port" yaml:"port"`
	Host         string     `toml:"host" yaml:"host"`
	ReadTimeout  Duration   `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration   `toml:"write_timeout" yaml:"write_timeout"`
	CORS         CORSConfig `toml:"cors" yaml:"cors"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	Enabled        bool     `toml:"enabled" yaml:"enabled"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods" yaml:"allowed_methods"`
}

// GRPCConfig holds the gRPC server configuration
type GRPCConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Port    int    `toml:"port" yaml:"port"`
	Host    string `toml:"host" yaml:"host"`
}

// AnalyzerConfig holds source analysis limits and behavior
type AnalyzerConfig struct {
	MaxSourceSize  int      `toml:"max_source_size" yaml:"max_source_size"`
	AnalyzeTimeout Duration `toml:"analyze_timeout" yaml:"analyze_timeout"`
	CacheEnabled   bool     `toml:"cache_enabled" yaml:"cache_enabled"`
	CacheTTL       Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// HistoryConfig holds the analysis history store configuration
type HistoryConfig struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	Path          string `toml:"path" yaml:"path"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days"`
	MaxEntries    int    `toml:"max_entries" yaml:"max_entries"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration string from YAML
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	var err error
	d.Duration, err = time.ParseDuration(raw)
	return err
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	return &cfg, nil
}

// LoadFromEnv loads configuration from the THUC_CONFIG environment variable,
// falling back to the default locations. THUC_HOST and THUC_PORT override
// the HTTP listen address regardless of where the file came from.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("THUC_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./configs/config.toml",
			"./config.toml",
			filepath.Join(os.Getenv("HOME"), ".config/thucompiler/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	var cfg *Config
	if path == "" {
		// No file anywhere; run on defaults
		cfg = &Config{}
		cfg.applyDefaults()
	} else {
		var err error
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies THUC_HOST and THUC_PORT to the server settings
func (c *Config) applyEnvOverrides() error {
	if host := os.Getenv("THUC_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("THUC_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("invalid THUC_PORT: %q", port)
		}
		c.Server.Port = n
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "thuCompiler"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "json"
	}

	// Server
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 60 * time.Second
	}

	// GRPC
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9090
	}
	if c.GRPC.Host == "" {
		c.GRPC.Host = "0.0.0.0"
	}

	// Analyzer
	if c.Analyzer.MaxSourceSize == 0 {
		c.Analyzer.MaxSourceSize = 1 << 20 // 1 MiB
	}
	if c.Analyzer.AnalyzeTimeout.Duration == 0 {
		c.Analyzer.AnalyzeTimeout.Duration = 10 * time.Second
	}
	if c.Analyzer.CacheTTL.Duration == 0 {
		c.Analyzer.CacheTTL.Duration = 10 * time.Minute
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.RetentionDays == 0 {
		c.History.RetentionDays = 30
	}
	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = 10000
	}
}

// expandEnvVars expands environment variables in path-valued settings
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// ServerAddress returns the listen address of the HTTP server
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddress returns the listen address of the gRPC server
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}
