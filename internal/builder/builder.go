// Package builder orchestrates the construction of a local STRING protein
// interaction store: it fetches the gzipped dump files for each configured
// species, classifies them, and loads them into the SQLite store, tracking
// per-file state so interrupted builds resume where they stopped.
package builder

import (
	"compress/gzip"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stringnet/internal/database"
	"stringnet/internal/downloader"
	"stringnet/internal/progress"
	"stringnet/internal/stringdb"
)

const (
	interactionsBase = "protein.links.detailed"
	aliasesBase      = "protein.aliases"
)

// Config holds builder settings.
type Config struct {
	DatabasePath  string
	DownloadDir   string
	BaseURL       string
	Version       string
	Species       []string
	RetryAttempts int
	Force         bool
	ShowProgress  bool
	Verbose       bool
	Quiet         bool
}

// Builder coordinates fetching and loading of STRING dump files.
type Builder struct {
	config  Config
	fetcher *downloader.Fetcher
	printFn func(format string, args ...interface{})
}

// New creates a builder with the given configuration.
func New(config Config) *Builder {
	if config.Version == "" {
		config.Version = "v11.0"
	}
	fetcher := downloader.NewFetcher(downloader.Config{
		BaseURL:       config.BaseURL,
		OutputDir:     config.DownloadDir,
		RetryAttempts: config.RetryAttempts,
		ShowProgress:  config.ShowProgress,
		Verbose:       config.Verbose,
	})
	return &Builder{
		config:  config,
		fetcher: fetcher,
		printFn: func(format string, args ...interface{}) {},
	}
}

// SetPrintFunc sets the function used for operator-facing status lines.
func (b *Builder) SetPrintFunc(fn func(format string, args ...interface{})) {
	if fn != nil {
		b.printFn = fn
	}
}

// FileNames returns the dump file names for one species, interactions file
// first. Load order matters: the aliases loader references proteins that the
// interactions loader inserts.
func (b *Builder) FileNames(species string) []string {
	return []string{
		joinDotted(species, interactionsBase, b.config.Version, "txt.gz"),
		joinDotted(species, aliasesBase, b.config.Version, "txt.gz"),
	}
}

func joinDotted(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

func (b *Builder) allFileNames() []string {
	var names []string
	for _, species := range b.config.Species {
		names = append(names, b.FileNames(species)...)
	}
	return names
}

// Build ensures a complete store exists at the configured path. A store whose
// tracked files are all loaded is left untouched unless Force is set, in which
// case it is removed and rebuilt. An incomplete store is resumed: files
// already loaded are skipped, everything else is fetched and loaded again.
func (b *Builder) Build(ctx context.Context) error {
	if b.config.Force {
		if err := b.removeStore(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(b.config.DatabasePath); err == nil {
		complete, err := b.storeComplete()
		if err != nil {
			return err
		}
		if complete {
			b.printFn("Store is up to date: %s", b.config.DatabasePath)
			return nil
		}
		b.printFn("Resuming incomplete store: %s", b.config.DatabasePath)
	}

	db, err := database.Initialize(b.config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	tracker, err := progress.NewTracker(db.DB)
	if err != nil {
		return err
	}

	loader := stringdb.NewLoader(db)
	if !b.config.Quiet {
		loader.SetProgressFunc(func(p stringdb.Progress) {
			b.printFn("  %s: %d lines, %d records", p.Kind, p.Lines, p.Records)
		})
	}

	for _, name := range b.allFileNames() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.buildFile(ctx, tracker, loader, name); err != nil {
			return err
		}
	}

	b.printFn("Store build complete: %s", b.config.DatabasePath)
	return nil
}

func (b *Builder) buildFile(ctx context.Context, tracker *progress.Tracker, loader *stringdb.Loader, name string) error {
	if err := tracker.Register(name); err != nil {
		return err
	}

	fp, err := tracker.Get(name)
	if err != nil {
		return err
	}
	if fp.State == progress.StateLoaded {
		b.printFn("Already loaded: %s (%d records)", name, fp.Records)
		return nil
	}

	b.printFn("Fetching %s", name)
	if err := tracker.SetState(name, progress.StateFetching); err != nil {
		return err
	}
	path, err := b.fetcher.Fetch(ctx, name)
	if err != nil {
		tracker.SetFailed(name, err.Error())
		return fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	if err := tracker.SetState(name, progress.StateFetched); err != nil {
		return err
	}

	b.printFn("Loading %s", name)
	if err := tracker.SetState(name, progress.StateLoading); err != nil {
		return err
	}
	// The loaded state must commit with the rows: a crash after the rows land
	// but before the state flips would otherwise leave a file that resume
	// re-inserts into a half-populated store.
	loader.SetFinishFunc(func(tx *sql.Tx, kind stringdb.FileKind, records int64) error {
		return tracker.SetLoadedTx(tx, name, records)
	})
	records, err := b.loadFile(ctx, loader, path)
	if err != nil {
		tracker.SetFailed(name, err.Error())
		return fmt.Errorf("failed to load %s: %w", name, err)
	}

	b.printFn("Loaded %s: %d records", name, records)
	return nil
}

func (b *Builder) loadFile(ctx context.Context, loader *stringdb.Loader, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	_, records, err := loader.Load(ctx, gz)
	return records, err
}

// storeComplete reports whether the existing store has every configured file
// in the loaded state. It opens the store read-only in the sense that it only
// queries the tracking table.
func (b *Builder) storeComplete() (bool, error) {
	db, err := database.Initialize(b.config.DatabasePath)
	if err != nil {
		return false, err
	}
	defer db.Close()

	tracker, err := progress.NewTracker(db.DB)
	if err != nil {
		return false, err
	}
	return tracker.Complete(b.allFileNames())
}

func (b *Builder) removeStore() error {
	if err := os.Remove(b.config.DatabasePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove store: %w", err)
	}
	// WAL sidecar files go with the store.
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(b.config.DatabasePath + suffix)
	}
	return nil
}

// StoreStatus summarizes the store for the operator.
type StoreStatus struct {
	Path     string                  `json:"path"`
	Exists   bool                    `json:"exists"`
	Complete bool                    `json:"complete"`
	Files    []progress.FileProgress `json:"files"`
	Stats    *database.StoreStats    `json:"stats,omitempty"`
}

// Status reports the current state of the store without modifying it.
func (b *Builder) Status() (*StoreStatus, error) {
	status := &StoreStatus{Path: b.config.DatabasePath}

	if _, err := os.Stat(b.config.DatabasePath); err != nil {
		if os.IsNotExist(err) {
			return status, nil
		}
		return nil, err
	}
	status.Exists = true

	db, err := database.Initialize(b.config.DatabasePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tracker, err := progress.NewTracker(db.DB)
	if err != nil {
		return nil, err
	}

	status.Files, err = tracker.All()
	if err != nil {
		return nil, err
	}
	status.Complete, err = tracker.Complete(b.allFileNames())
	if err != nil {
		return nil, err
	}
	status.Stats, err = db.GetStats()
	if err != nil {
		return nil, err
	}

	return status, nil
}

// EnsureDirs creates the download and store directories if missing.
func (b *Builder) EnsureDirs() error {
	for _, dir := range []string{b.config.DownloadDir, filepath.Dir(b.config.DatabasePath)} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
