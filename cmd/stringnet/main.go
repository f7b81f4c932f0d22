package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stringnet/internal/config"
)

// Version info
var (
	version = "0.0.1-alpha"
	commit  = "dev"
	date    = "unknown"
)

// Global flags
var (
	noColor    bool
	quiet      bool
	verbose    bool
	debug      bool
	configFile string
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "stringnet",
	Short: "STRING protein interaction network analyzer",
	Long: `stringnet builds a local store from STRING database protein interaction
dumps and analyzes interaction networks seeded from gene lists.

It downloads the per-species interaction and alias files, loads them into
SQLite, resolves seed gene symbols to Ensembl protein identifiers, and
computes centrality metrics over the direct and one-hop-expanded networks.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Example: `  # Build the local interaction store
  stringnet build

  # Analyze networks seeded from Excel gene lists
  stringnet analyze

  # Analyze with a stricter score cutoff
  stringnet analyze --threshold 700

  # Get store statistics
  stringnet db info`,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: auto-detect)")

	// Add commands to root
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the active configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = config.GetConfigPath()
	}
	printDebug("Loading config from %s", path)
	return config.Load(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
