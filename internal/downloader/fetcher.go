// Package downloader retrieves STRING-DB dump files from the static
// download mirror.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// DefaultBaseURL is the STRING-DB static download mirror.
const DefaultBaseURL = "https://stringdb-static.org/download/"

// Config holds configuration for the fetcher.
type Config struct {
	BaseURL       string
	OutputDir     string
	RetryAttempts int
	ShowProgress  bool
	Verbose       bool
}

// Fetcher downloads dump files by name if they are absent locally.
type Fetcher struct {
	config     Config
	httpClient *http.Client
}

// NewFetcher creates a new fetcher.
func NewFetcher(config Config) *Fetcher {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 3
	}

	return &Fetcher{
		config: config,
		httpClient: &http.Client{
			Timeout: 0, // No timeout for large downloads
		},
	}
}

// DownloadURL composes the remote URL for a dump filename. Species-prefixed
// filenames (leading numeric dot-segment) live under a sub-path named after
// the un-prefixed base, e.g. protein.links.detailed.v11.0/ for
// 10090.protein.links.detailed.v11.0.txt.gz.
func (f *Fetcher) DownloadURL(filename string) string {
	base := strings.TrimSuffix(f.config.BaseURL, "/") + "/"

	parts := strings.Split(filename, ".")
	if len(parts) > 2 && isNumeric(parts[0]) {
		sub := strings.Join(parts[1:len(parts)-2], ".")
		return base + sub + "/" + filename
	}
	return base + filename
}

// Fetch downloads the named file into the output directory unless it already
// exists there, and returns the local path. Transfers go to a .tmp file
// first so a failed download never leaves a partial file at the destination.
func (f *Fetcher) Fetch(ctx context.Context, filename string) (string, error) {
	outputPath := filepath.Join(f.config.OutputDir, filename)

	if stat, err := os.Stat(outputPath); err == nil {
		if f.config.Verbose {
			fmt.Printf("File already exists: %s (%.2f MB)\n",
				outputPath, float64(stat.Size())/(1024*1024))
		}
		return outputPath, nil
	}

	if err := os.MkdirAll(f.config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	url := f.DownloadURL(filename)

	var lastErr error
	for attempt := 1; attempt <= f.config.RetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		lastErr = f.fetchOnce(ctx, url, outputPath)
		if lastErr == nil {
			return outputPath, nil
		}
		if attempt < f.config.RetryAttempts {
			if f.config.Verbose {
				fmt.Printf("Download attempt %d failed: %v, retrying...\n", attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return "", fmt.Errorf("failed to download %s after %d attempts: %w",
		filename, f.config.RetryAttempts, lastErr)
}

// fetchOnce performs a single download attempt.
func (f *Fetcher) fetchOnce(ctx context.Context, url, outputPath string) error {
	tmpPath := outputPath + ".tmp"

	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer out.Close()
	defer os.Remove(tmpPath)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	// The mirror rejects default Go user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var w io.Writer = out
	if f.config.ShowProgress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+filepath.Base(outputPath))
		defer bar.Close()
		w = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, outputPath)
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
