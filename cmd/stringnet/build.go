package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stringnet/internal/builder"
)

var (
	buildForce       bool
	buildSpecies     []string
	buildVersion     string
	buildDBPath      string
	buildDownloadDir string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch STRING dumps and build the local store",
	Long: `Download the STRING interaction and alias dump files for the configured
species and load them into the local SQLite store.

A store whose files are all loaded is left untouched. An interrupted build
is resumed: files already loaded are skipped. Use --force to discard the
existing store and rebuild from scratch.`,
	Example: `  # Build with configured defaults (mouse, v11.0)
  stringnet build

  # Build for specific species
  stringnet build --species 9606 --species 10090

  # Discard the existing store and rebuild
  stringnet build --force`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "Discard the existing store and rebuild")
	buildCmd.Flags().StringArrayVar(&buildSpecies, "species", nil, "NCBI taxonomy identifier (repeatable)")
	buildCmd.Flags().StringVar(&buildVersion, "release", "", "STRING release version (default from config)")
	buildCmd.Flags().StringVar(&buildDBPath, "db", "", "Store path (default from config)")
	buildCmd.Flags().StringVar(&buildDownloadDir, "download-dir", "", "Directory for downloaded dump files")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(buildSpecies) > 0 {
		cfg.Download.Species = buildSpecies
	}
	if buildVersion != "" {
		cfg.Download.Version = buildVersion
	}
	if buildDBPath != "" {
		cfg.Database.Path = buildDBPath
	}
	if buildDownloadDir != "" {
		cfg.Download.DownloadDir = buildDownloadDir
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := builder.New(builder.Config{
		DatabasePath:  cfg.Database.Path,
		DownloadDir:   cfg.Download.DownloadDir,
		BaseURL:       cfg.Download.BaseURL,
		Version:       cfg.Download.Version,
		Species:       cfg.Download.Species,
		RetryAttempts: cfg.Download.RetryAttempts,
		Force:         buildForce,
		ShowProgress:  !quiet && isTerminal(),
		Verbose:       verbose,
		Quiet:         quiet,
	})
	b.SetPrintFunc(printInfo)

	if err := b.Build(ctx); err != nil {
		printError("Build failed: %v", err)
		return err
	}

	printSuccess("Store ready at %s", cfg.Database.Path)
	return nil
}
