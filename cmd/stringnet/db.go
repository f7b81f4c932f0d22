package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"stringnet/internal/builder"
	"stringnet/internal/database"
	"stringnet/internal/paths"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Store management",
	Long:  `Manage the local STRING interaction store.`,
	Example: `  stringnet db info
  stringnet db status`,
}

// Store info subcommand
var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show store statistics",
	Long:  `Display information about the local STRING interaction store.`,
	RunE:  runDBInfo,
}

// Store status subcommand
var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-file build state",
	Long:  `Display the build state of each tracked dump file.`,
	RunE:  runDBStatus,
}

var dbPath string

func init() {
	dbCmd.AddCommand(dbInfoCmd)
	dbCmd.AddCommand(dbStatusCmd)

	dbCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Store path (default from config)")
}

func storePath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Database.Path != "" {
		return cfg.Database.Path, nil
	}
	return paths.GetDatabasePath(), nil
}

func runDBInfo(cmd *cobra.Command, args []string) error {
	path, err := storePath()
	if err != nil {
		return err
	}

	// Check if store exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		printError("Store not found at %s", path)
		fmt.Fprintf(os.Stderr, "\nBuild the store first:\n")
		fmt.Fprintf(os.Stderr, "  stringnet build\n")
		return fmt.Errorf("store not found")
	}

	db, err := database.Initialize(path)
	if err != nil {
		return fmt.Errorf("failed to open store: %v", err)
	}
	defer db.Close()

	stats, err := db.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get statistics: %v", err)
	}

	printInfo("Store Information")
	fmt.Println(colorize(colorGray, strings.Repeat("─", 40)))

	// File info
	fileInfo, _ := os.Stat(path)
	fmt.Printf("%s %s\n", colorize(colorBold, "Path:"), path)
	fmt.Printf("%s %.2f MB\n", colorize(colorBold, "Size:"),
		float64(fileInfo.Size())/(1024*1024))
	fmt.Printf("%s %s\n", colorize(colorBold, "Modified:"),
		fileInfo.ModTime().Format("2006-01-02 15:04:05"))

	// Table statistics
	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Tables:"))
	fmt.Printf("  proteins:     %s\n", colorize(colorCyan, fmt.Sprintf("%d", stats.Proteins)))
	fmt.Printf("  interactions: %s\n", colorize(colorCyan, fmt.Sprintf("%d", stats.Interactions)))
	fmt.Printf("  aliases:      %s\n", colorize(colorCyan, fmt.Sprintf("%d", stats.Aliases)))

	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	b := builder.New(builder.Config{
		DatabasePath: cfg.Database.Path,
		DownloadDir:  cfg.Download.DownloadDir,
		BaseURL:      cfg.Download.BaseURL,
		Version:      cfg.Download.Version,
		Species:      cfg.Download.Species,
	})

	status, err := b.Status()
	if err != nil {
		return fmt.Errorf("failed to read store status: %v", err)
	}

	printInfo("Store Status")
	fmt.Println(colorize(colorGray, strings.Repeat("─", 40)))
	fmt.Printf("%s %s\n", colorize(colorBold, "Path:"), status.Path)

	if !status.Exists {
		fmt.Println(colorize(colorYellow, "  (store not built yet)"))
		return nil
	}

	if status.Complete {
		fmt.Printf("%s %s\n", colorize(colorBold, "State:"), colorize(colorGreen, "complete"))
	} else {
		fmt.Printf("%s %s\n", colorize(colorBold, "State:"), colorize(colorYellow, "incomplete"))
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSTATE\tRECORDS\tUPDATED")
	for _, f := range status.Files {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			f.FileName, f.State, f.Records, f.UpdatedAt.Format("2006-01-02 15:04:05"))
		if f.ErrorMessage != "" && verbose {
			fmt.Fprintf(w, "\t%s\t\t\n", f.ErrorMessage)
		}
	}
	return w.Flush()
}
