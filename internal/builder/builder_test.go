package builder

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"stringnet/internal/database"
	"stringnet/internal/progress"
)

func gzipContent(t *testing.T, lines ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(strings.Join(lines, "\n"))); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}
	return buf.Bytes()
}

// dumpServer serves the two mouse dump files the way the mirror lays them out
func dumpServer(t *testing.T, requests *int) *httptest.Server {
	t.Helper()

	links := gzipContent(t,
		"protein1 protein2 neighborhood fusion cooccurence coexpression experimental database textmining combined_score",
		"10090.ENSMUSP001 10090.ENSMUSP002 0 0 0 0 0 0 0 800",
		"10090.ENSMUSP002 10090.ENSMUSP003 0 0 0 0 0 0 0 500",
	)
	aliases := gzipContent(t,
		"## string_protein_id ## alias ## source ##",
		"10090.ENSMUSP001\tTrp53\tBLAST_UniProt_GN",
		"10090.ENSMUSP002\tMdm2\tEnsembl_gene",
	)

	files := map[string][]byte{
		"/protein.links.detailed.v11.0/10090.protein.links.detailed.v11.0.txt.gz": links,
		"/protein.aliases.v11.0/10090.protein.aliases.v11.0.txt.gz":               aliases,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		content, ok := files[r.URL.Path]
		if !ok {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Write(content)
	}))
	t.Cleanup(server.Close)
	return server
}

func testBuilder(t *testing.T, baseURL string) *Builder {
	t.Helper()

	dir := t.TempDir()
	return New(Config{
		DatabasePath: filepath.Join(dir, "string.db"),
		DownloadDir:  filepath.Join(dir, "downloads"),
		BaseURL:      baseURL,
		Version:      "v11.0",
		Species:      []string{"10090"},
		Quiet:        true,
	})
}

func TestFileNames(t *testing.T) {
	b := testBuilder(t, "http://unused/")

	// Interactions before aliases: alias rows reference proteins that the
	// interactions load inserts
	want := []string{
		"10090.protein.links.detailed.v11.0.txt.gz",
		"10090.protein.aliases.v11.0.txt.gz",
	}
	if got := b.FileNames("10090"); !reflect.DeepEqual(got, want) {
		t.Errorf("FileNames = %v, want %v", got, want)
	}
}

func TestJoinDotted(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"10090", "protein.aliases", "v11.0", "txt.gz"}, "10090.protein.aliases.v11.0.txt.gz"},
		{[]string{"", "protein.aliases", "", "txt.gz"}, "protein.aliases.txt.gz"},
		{[]string{"one"}, "one"},
	}
	for _, tt := range tests {
		if got := joinDotted(tt.parts...); got != tt.want {
			t.Errorf("joinDotted(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	var requests int
	server := dumpServer(t, &requests)
	b := testBuilder(t, server.URL+"/")

	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if requests != 2 {
		t.Errorf("Expected 2 downloads, server saw %d", requests)
	}

	db, err := database.Initialize(b.config.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Proteins != 3 || stats.Interactions != 2 || stats.Aliases != 2 {
		t.Errorf("Unexpected store contents: %+v", stats)
	}

	ids, err := db.ResolveAliases([]string{"Trp53"})
	if err != nil {
		t.Fatalf("ResolveAliases failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "ENSMUSP001" {
		t.Errorf("Unexpected resolution: %v", ids)
	}
}

func TestBuildIdempotent(t *testing.T) {
	var requests int
	server := dumpServer(t, &requests)
	b := testBuilder(t, server.URL+"/")

	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("First build failed: %v", err)
	}
	after := requests

	// A complete store short-circuits the whole build
	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Second build failed: %v", err)
	}
	if requests != after {
		t.Errorf("Second build hit the server: %d requests", requests-after)
	}

	db, err := database.Initialize(b.config.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	// No duplicated rows either
	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Interactions != 2 {
		t.Errorf("Expected 2 interactions, got %d", stats.Interactions)
	}
}

func TestBuildResume(t *testing.T) {
	var requests int
	server := dumpServer(t, &requests)
	b := testBuilder(t, server.URL+"/")

	// Simulate an interrupted build: the interactions file is loaded, the
	// aliases file never started
	db, err := database.Initialize(b.config.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	tracker, err := progress.NewTracker(db.DB)
	if err != nil {
		t.Fatalf("Failed to create tracker: %v", err)
	}
	linksFile := "10090.protein.links.detailed.v11.0.txt.gz"
	if err := tracker.Register(linksFile); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	tx, err := db.DB.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := tracker.SetLoadedTx(tx, linksFile, 5); err != nil {
		t.Fatalf("SetLoadedTx failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	db.Close()

	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Resume build failed: %v", err)
	}

	// Only the aliases file is fetched
	if requests != 1 {
		t.Errorf("Expected 1 download on resume, server saw %d", requests)
	}
}

func TestBuildResumeAfterPartialLoad(t *testing.T) {
	linksFile := "10090.protein.links.detailed.v11.0.txt.gz"
	aliasesFile := "10090.protein.aliases.v11.0.txt.gz"

	links := gzipContent(t,
		"protein1 protein2 neighborhood fusion cooccurence coexpression experimental database textmining combined_score",
		"10090.ENSMUSP001 10090.ENSMUSP002 0 0 0 0 0 0 0 800",
		"10090.ENSMUSP002 10090.ENSMUSP003 0 0 0 0 0 0 0 500",
	)
	// Truncated alias record: the aliases load fails after the interactions
	// file has already committed
	badAliases := gzipContent(t,
		"## string_protein_id ## alias ## source ##",
		"10090.ENSMUSP001",
	)
	goodAliases := gzipContent(t,
		"## string_protein_id ## alias ## source ##",
		"10090.ENSMUSP001\tTrp53\tBLAST_UniProt_GN",
		"10090.ENSMUSP002\tMdm2\tEnsembl_gene",
	)

	linksRequests := 0
	aliases := badAliases
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/protein.links.detailed.v11.0/" + linksFile:
			linksRequests++
			w.Write(links)
		case "/protein.aliases.v11.0/" + aliasesFile:
			w.Write(aliases)
		default:
			t.Errorf("Unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	b := testBuilder(t, server.URL+"/")
	if err := b.Build(context.Background()); err == nil {
		t.Fatal("Expected build to fail on the malformed aliases file")
	}

	// The interactions rows and the loaded state committed together, so the
	// interruption leaves the links file cleanly loaded
	db, err := database.Initialize(b.config.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	tracker, err := progress.NewTracker(db.DB)
	if err != nil {
		t.Fatalf("Failed to create tracker: %v", err)
	}
	fp, err := tracker.Get(linksFile)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fp.State != progress.StateLoaded {
		t.Errorf("Links file in state %s after interrupted build", fp.State)
	}
	db.Close()

	// Replace the bad dump and resume
	aliases = goodAliases
	if err := os.Remove(filepath.Join(b.config.DownloadDir, aliasesFile)); err != nil {
		t.Fatalf("Failed to remove cached dump: %v", err)
	}
	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Resume build failed: %v", err)
	}

	// Resume must skip the links file entirely: no second fetch, no
	// duplicate inserts
	if linksRequests != 1 {
		t.Errorf("Expected 1 links download, server saw %d", linksRequests)
	}

	db, err = database.Initialize(b.config.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Proteins != 3 || stats.Interactions != 2 || stats.Aliases != 2 {
		t.Errorf("Unexpected store contents after resume: %+v", stats)
	}
}

func TestBuildForce(t *testing.T) {
	var requests int
	server := dumpServer(t, &requests)
	b := testBuilder(t, server.URL+"/")

	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("First build failed: %v", err)
	}

	b.config.Force = true
	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Forced rebuild failed: %v", err)
	}

	// Downloads short-circuit on cached dump files, but the store itself
	// is rebuilt from them
	db, err := database.Initialize(b.config.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Interactions != 2 {
		t.Errorf("Expected 2 interactions after rebuild, got %d", stats.Interactions)
	}
}

func TestStatus(t *testing.T) {
	var requests int
	server := dumpServer(t, &requests)
	b := testBuilder(t, server.URL+"/")

	status, err := b.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Exists || status.Complete {
		t.Errorf("Unbuilt store reported as existing: %+v", status)
	}

	if err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	status, err = b.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.Exists || !status.Complete {
		t.Errorf("Built store reported incomplete: %+v", status)
	}
	if len(status.Files) != 2 {
		t.Errorf("Expected 2 tracked files, got %d", len(status.Files))
	}
	for _, f := range status.Files {
		if f.State != progress.StateLoaded {
			t.Errorf("File %s in state %s", f.FileName, f.State)
		}
	}
}

func TestBuildCancelled(t *testing.T) {
	var requests int
	server := dumpServer(t, &requests)
	b := testBuilder(t, server.URL+"/")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Build(ctx); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}
