package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"stringnet/internal/config"
	"stringnet/internal/paths"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stringnet configuration",
	Long:  `Manage stringnet configuration including paths, settings, and preferences.`,
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show all active paths",
	Long: `Display all paths used by stringnet including configuration, data, and
cache directories. Also shows any environment variable overrides.`,
	RunE: runConfigPaths,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration",
	Long: `Create a default configuration file in the appropriate location.

This will create a config file at ~/.config/stringnet/config.yaml with
sensible defaults. If a config file already exists, use --force to
overwrite it.`,
	Example: `  # Create default config
  stringnet config init

  # Force overwrite existing config
  stringnet config init --force`,
	RunE: runConfigInit,
}

var (
	configForce bool
)

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing configuration")

	configCmd.AddCommand(configPathsCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigPaths(cmd *cobra.Command, args []string) error {
	p := paths.GetPaths()

	printInfo("Stringnet Paths")
	fmt.Println(colorize(colorGray, "────────────────────────────────────────"))

	// Show base paths
	fmt.Printf("%s\n", colorize(colorBold, "Base Directories:"))
	fmt.Printf("  Config:   %s\n", colorize(colorCyan, p.ConfigDir))
	fmt.Printf("  Data:     %s\n", colorize(colorCyan, p.DataDir))
	fmt.Printf("  Cache:    %s\n", colorize(colorCyan, p.CacheDir))

	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Specific Paths:"))
	fmt.Printf("  Store:     %s\n", colorize(colorCyan, paths.GetDatabasePath()))
	fmt.Printf("  Downloads: %s\n", colorize(colorCyan, paths.GetDownloadsPath()))

	// Show environment variables if set
	envVars := []struct {
		name string
		desc string
	}{
		{"STRINGNET_CONFIG_HOME", "Override config directory"},
		{"STRINGNET_DATA_HOME", "Override data directory"},
		{"STRINGNET_CACHE_HOME", "Override cache directory"},
		{"STRINGNET_DB_PATH", "Override store path"},
		{"STRINGNET_CONFIG", "Override config file path"},
	}

	hasEnv := false
	for _, env := range envVars {
		if os.Getenv(env.name) != "" {
			hasEnv = true
			break
		}
	}

	if hasEnv {
		fmt.Println()
		fmt.Printf("%s\n", colorize(colorBold, "Environment Variables:"))
		for _, env := range envVars {
			if val := os.Getenv(env.name); val != "" {
				fmt.Printf("  %s = %s\n",
					colorize(colorYellow, env.name),
					colorize(colorCyan, val))
				if verbose {
					fmt.Printf("    %s\n", colorize(colorGray, env.desc))
				}
			}
		}
	}

	// Check if paths exist
	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Path Status:"))

	pathChecks := []struct {
		name string
		path string
	}{
		{"Config Dir", p.ConfigDir},
		{"Data Dir", p.DataDir},
		{"Store", paths.GetDatabasePath()},
	}

	for _, check := range pathChecks {
		if _, err := os.Stat(check.path); err == nil {
			fmt.Printf("  %-12s %s\n", check.name+":", colorize(colorGreen, "✓ exists"))
		} else {
			fmt.Printf("  %-12s %s\n", check.name+":", colorize(colorGray, "✗ not found"))
		}
	}

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	printInfo("Configuration")
	fmt.Println(colorize(colorGray, "────────────────────────────────────────"))

	fmt.Printf("%s %s\n", colorize(colorBold, "Config File:"), configPath)

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Println(colorize(colorYellow, "  (using defaults - no config file found)"))
	}

	fmt.Println()

	// Marshal config to YAML for display
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format config: %w", err)
	}

	// Pretty print with syntax highlighting
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if line == "" {
			fmt.Println()
			continue
		}

		// Simple syntax highlighting
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			// Top-level keys
			fmt.Println(colorize(colorBold, line))
		} else if strings.Contains(line, ": ") {
			parts := strings.SplitN(line, ": ", 2)
			indent := len(line) - len(strings.TrimLeft(line, " "))
			fmt.Printf("%s%s: %s\n",
				strings.Repeat(" ", indent),
				colorize(colorCyan, strings.TrimSpace(parts[0])),
				colorize(colorGreen, parts[1]))
		} else {
			fmt.Println(line)
		}
	}

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(paths.GetPaths().ConfigDir, "config.yaml")

	// Check if config exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		printWarning("Configuration already exists at %s", configPath)
		fmt.Println("Use --force to overwrite")
		return nil
	}

	// Create default config
	cfg := config.DefaultConfig()

	// Save to file
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	printSuccess("Configuration created at %s", configPath)

	// Show the config
	fmt.Println()
	return runConfigShow(cmd, args)
}
