package network

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const timestampLayout = "20060102T150405"

// Exporter writes metric results to timestamped listing files. All exports
// from one Exporter share a single timestamp so a run's outputs group
// together.
type Exporter struct {
	outputDir string
	timestamp string
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(outputDir string) *Exporter {
	return &Exporter{
		outputDir: outputDir,
		timestamp: time.Now().Format(timestampLayout),
	}
}

// Timestamp returns the run timestamp shared by all files this exporter
// writes.
func (e *Exporter) Timestamp() string {
	return e.timestamp
}

// FileName returns the output file name for one metric of one network.
func (e *Exporter) FileName(networkTag string, m Metric) string {
	return fmt.Sprintf("output-%s-%s-%s.txt", networkTag, m, e.timestamp)
}

type entry struct {
	label string
	value float64
}

// Export writes a result as a descending listing. One line per node or edge,
// highest value first, ties broken by label. Scalar results are a single
// line. Existing files are never overwritten.
func (e *Exporter) Export(networkTag string, res *Result) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.outputDir, e.FileName(networkTag, res.Metric))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeListing(w, res); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func writeListing(w *bufio.Writer, res *Result) error {
	switch res.Kind {
	case ResultScalar:
		_, err := fmt.Fprintf(w, "%s\n", formatValue(res.Scalar))
		return err
	case ResultPerNode:
		return writeEntries(w, nodeEntries(res.Nodes))
	case ResultPerEdge:
		return writeEntries(w, edgeEntries(res.Edges))
	default:
		return fmt.Errorf("unknown result kind %d", int(res.Kind))
	}
}

func nodeEntries(nodes map[string]float64) []entry {
	entries := make([]entry, 0, len(nodes))
	for name, v := range nodes {
		entries = append(entries, entry{label: name, value: v})
	}
	return entries
}

func edgeEntries(edges map[EdgeKey]float64) []entry {
	entries := make([]entry, 0, len(edges))
	for key, v := range edges {
		entries = append(entries, entry{label: key.A + " " + key.B, value: v})
	}
	return entries
}

func writeEntries(w *bufio.Writer, entries []entry) error {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].label < entries[j].label
	})
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %s\n", e.label, formatValue(e.value)); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
