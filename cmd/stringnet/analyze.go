package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stringnet/internal/database"
	"stringnet/internal/genes"
	"stringnet/internal/network"
)

var (
	analyzeThreshold int
	analyzeNoExport  bool
	analyzeSheetDir  string
	analyzeOutputDir string
	analyzeColumn    string
	analyzeGenesFile string
	analyzeDBPath    string
	analyzeMetrics   []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze interaction networks seeded from gene lists",
	Long: `Resolve seed gene symbols to Ensembl protein identifiers and compute
centrality metrics over two undirected interaction networks:

  direct    both interaction partners are seed proteins
  expanded  one interaction partner is a seed protein (one-hop neighborhood)

Seed symbols come from the Mouse_gene column of the .xlsx workbooks in the
sheet directory, or from a plain text file given with --genes. Each metric
is written to its own timestamped listing file, sorted by value.`,
	Example: `  # Analyze using workbook gene lists in the current directory
  stringnet analyze

  # Use a plain gene list and a stricter cutoff
  stringnet analyze --genes seeds.txt --threshold 700

  # Compute only the degree metrics
  stringnet analyze --metrics average-degree,degree-centrality

  # Print results without writing output files
  stringnet analyze --no-export`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVarP(&analyzeThreshold, "threshold", "t", 0, "Combined score cutoff, exclusive (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoExport, "no-export", false, "Print result summaries instead of writing files")
	analyzeCmd.Flags().StringVar(&analyzeSheetDir, "sheets", "", "Directory holding seed .xlsx workbooks")
	analyzeCmd.Flags().StringVarP(&analyzeOutputDir, "output", "o", "", "Directory for metric listing files")
	analyzeCmd.Flags().StringVar(&analyzeColumn, "column", "", "Workbook column holding gene symbols")
	analyzeCmd.Flags().StringVar(&analyzeGenesFile, "genes", "", "Plain text gene list, one symbol per line")
	analyzeCmd.Flags().StringVar(&analyzeDBPath, "db", "", "Store path (default from config)")
	analyzeCmd.Flags().StringSliceVar(&analyzeMetrics, "metrics", nil, "Metrics to compute, e.g. degree-centrality (default all)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("threshold") {
		cfg.Analysis.ScoreThreshold = analyzeThreshold
	}
	if analyzeSheetDir != "" {
		cfg.Analysis.SheetDirectory = analyzeSheetDir
	}
	if analyzeOutputDir != "" {
		cfg.Analysis.OutputDirectory = analyzeOutputDir
	}
	if analyzeColumn != "" {
		cfg.Analysis.GeneColumn = analyzeColumn
	}
	if analyzeDBPath != "" {
		cfg.Database.Path = analyzeDBPath
	}
	if cfg.Analysis.ScoreThreshold < 0 {
		return fmt.Errorf("threshold must not be negative")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Check if store exists
	if _, err := os.Stat(cfg.Database.Path); os.IsNotExist(err) {
		printError("Store not found at %s", cfg.Database.Path)
		fmt.Fprintf(os.Stderr, "\nBuild the store first:\n")
		fmt.Fprintf(os.Stderr, "  stringnet build\n")
		return fmt.Errorf("store not found")
	}

	db, err := database.Initialize(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %v", err)
	}
	defer db.Close()

	symbols, err := collectSymbols(cfg.Analysis.SheetDirectory, cfg.Analysis.GeneColumn)
	if err != nil {
		return err
	}
	printInfo("Seed symbols: %d", len(symbols))

	ids, err := db.ResolveAliases(symbols)
	if err != nil {
		return fmt.Errorf("failed to resolve gene symbols: %v", err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no seed symbols resolved to proteins")
	}
	printInfo("Resolved proteins: %d", len(ids))

	directLinks, err := db.DirectInteractions(ids, cfg.Analysis.ScoreThreshold)
	if err != nil {
		return fmt.Errorf("failed to query direct interactions: %v", err)
	}
	expandedLinks, err := db.ExpandedInteractions(ids, cfg.Analysis.ScoreThreshold)
	if err != nil {
		return fmt.Errorf("failed to query expanded interactions: %v", err)
	}

	networks := []struct {
		tag   string
		graph *network.Graph
	}{
		{"direct", network.FromLinks(directLinks)},
		{"expanded", network.FromLinks(expandedLinks)},
	}

	metrics, err := network.ParseMetrics(analyzeMetrics)
	if err != nil {
		return err
	}

	exporter := network.NewExporter(cfg.Analysis.OutputDirectory)
	printDebug("Run timestamp: %s", exporter.Timestamp())

	for _, nw := range networks {
		printInfo("Network %s: %d proteins, %d interactions (score > %d)",
			nw.tag, nw.graph.Order(), nw.graph.Size(), cfg.Analysis.ScoreThreshold)
		printInfo("  seed proteins in network: %d of %d", seedsPresent(nw.graph, ids), len(ids))

		for _, m := range metrics {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := analyzeMetric(exporter, nw.tag, nw.graph, m); err != nil {
				return err
			}
		}
	}

	printSuccess("Analysis complete")
	return nil
}

// seedsPresent counts the resolved seed proteins that appear in the graph.
// Seeds with no interaction above the cutoff never become nodes.
func seedsPresent(g *network.Graph, ids []string) int {
	present := 0
	for _, id := range ids {
		if g.HasNode(id) {
			present++
		}
	}
	return present
}

func collectSymbols(sheetDir, column string) ([]string, error) {
	if analyzeGenesFile != "" {
		symbols, err := readSymbolFile(analyzeGenesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read gene list: %v", err)
		}
		return symbols, nil
	}
	return genes.Collect(sheetDir, column)
}

func analyzeMetric(exporter *network.Exporter, tag string, g *network.Graph, m network.Metric) error {
	res, err := network.Compute(g, m)
	if err != nil {
		return fmt.Errorf("failed to compute %s on %s network: %v", m, tag, err)
	}

	if analyzeNoExport {
		printMetricSummary(tag, res)
		return nil
	}

	path, err := exporter.Export(tag, res)
	if err != nil {
		return err
	}
	printSuccess("Wrote %s", path)
	return nil
}

func printMetricSummary(tag string, res *network.Result) {
	switch res.Kind {
	case network.ResultScalar:
		printInfo("  %s/%s: %g", tag, res.Metric, res.Scalar)
	case network.ResultPerNode:
		printInfo("  %s/%s: %d nodes", tag, res.Metric, len(res.Nodes))
	case network.ResultPerEdge:
		printInfo("  %s/%s: %d edges", tag, res.Metric, len(res.Edges))
	}
}
