package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"stringnet/internal/downloader"
	"stringnet/internal/genes"
	"stringnet/internal/paths"
)

// Config represents the stringnet configuration
type Config struct {
	DataDirectory string         `yaml:"data_directory"`
	Database      DatabaseConfig `yaml:"database"` // SQLite settings
	Download      DownloadConfig `yaml:"download"` // STRING dump retrieval
	Analysis      AnalysisConfig `yaml:"analysis"` // Network analysis settings
}

// DatabaseConfig contains SQLite database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DownloadConfig contains STRING dump retrieval settings
type DownloadConfig struct {
	BaseURL       string   `yaml:"base_url"`
	Version       string   `yaml:"version"` // STRING release, e.g. v11.0
	Species       []string `yaml:"species"` // NCBI taxonomy identifiers
	DownloadDir   string   `yaml:"download_dir"`
	RetryAttempts int      `yaml:"retry_attempts"`
}

// AnalysisConfig contains network analysis settings
type AnalysisConfig struct {
	ScoreThreshold  int    `yaml:"score_threshold"` // combined score cutoff, exclusive
	GeneColumn      string `yaml:"gene_column"`     // seed column header in workbooks
	SheetDirectory  string `yaml:"sheet_directory"`
	OutputDirectory string `yaml:"output_directory"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	p := paths.GetPaths()

	return &Config{
		DataDirectory: p.DataDir,
		Database: DatabaseConfig{
			Path: paths.GetDatabasePath(),
		},
		Download: DownloadConfig{
			BaseURL:       downloader.DefaultBaseURL,
			Version:       "v11.0",
			Species:       []string{"10090"}, // mouse
			DownloadDir:   paths.GetDownloadsPath(),
			RetryAttempts: 3,
		},
		Analysis: AnalysisConfig{
			ScoreThreshold:  400,
			GeneColumn:      genes.DefaultColumn,
			SheetDirectory:  ".",
			OutputDirectory: ".",
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Return defaults if file doesn't exist
		return config, nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate and expand paths
	config.DataDirectory = expandPath(config.DataDirectory)
	config.Database.Path = expandPath(config.Database.Path)
	config.Download.DownloadDir = expandPath(config.Download.DownloadDir)
	config.Analysis.SheetDirectory = expandPath(config.Analysis.SheetDirectory)
	config.Analysis.OutputDirectory = expandPath(config.Analysis.OutputDirectory)

	if config.Analysis.ScoreThreshold < 0 {
		return nil, fmt.Errorf("score_threshold must not be negative, got %d", config.Analysis.ScoreThreshold)
	}
	if len(config.Download.Species) == 0 {
		return nil, fmt.Errorf("at least one species must be configured")
	}

	return config, nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("STRINGNET_CONFIG"); path != "" {
		return path
	}

	// Check current directory
	if _, err := os.Stat("stringnet.yaml"); err == nil {
		return "stringnet.yaml"
	}

	// Use default location
	p := paths.GetPaths()
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// EnsureDirectories creates necessary directories
func (c *Config) EnsureDirectories() error {
	// First ensure base directories using paths package
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	// Then ensure any custom directories from config
	dirs := []string{
		c.DataDirectory,
		filepath.Dir(c.Database.Path),
		c.Download.DownloadDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}

	return path
}
