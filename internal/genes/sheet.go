// Package genes reads seed gene symbols from Excel workbooks.
package genes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultColumn is the header of the column holding gene symbols.
const DefaultColumn = "Mouse_gene"

// Prefixes of workbook names that are never seed inputs. Exported analysis
// results and scratch copies share the directory with the real sheets.
var skipPrefixes = []string{"output", "temp"}

// ErrColumnNotFound is returned when a workbook has no gene column.
var ErrColumnNotFound = fmt.Errorf("gene column not found")

// ListSheets returns the seed workbook paths in a directory, skipping
// generated and temporary files.
func ListSheets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
			continue
		}
		if skipName(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

func skipName(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ReadSymbols extracts the gene symbols from one workbook. Symbols come from
// the named column of the first sheet, trimmed, with empty cells dropped.
func ReadSymbols(path string, column string) ([]string, error) {
	if column == "" {
		column = DefaultColumn
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %s: empty sheet", ErrColumnNotFound, path)
	}

	colIdx := -1
	for i, header := range rows[0] {
		if strings.TrimSpace(header) == column {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return nil, fmt.Errorf("%w: no column %q in %s", ErrColumnNotFound, column, path)
	}

	var symbols []string
	for _, row := range rows[1:] {
		if colIdx >= len(row) {
			continue
		}
		symbol := strings.TrimSpace(row[colIdx])
		if symbol == "" {
			continue
		}
		symbols = append(symbols, symbol)
	}
	return symbols, nil
}

// Collect reads every seed workbook in a directory and returns the combined
// symbol list in directory order. Duplicates are preserved.
func Collect(dir string, column string) ([]string, error) {
	paths, err := ListSheets(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no seed workbooks found in %s", dir)
	}

	var symbols []string
	for _, path := range paths {
		s, err := ReadSymbols(path, column)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, s...)
	}
	return symbols, nil
}
