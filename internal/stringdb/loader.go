package stringdb

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"stringnet/internal/database"
)

// progressEvery is the line interval between progress callbacks.
const progressEvery = 10000

// Progress contains information about the current load progress.
type Progress struct {
	Kind    FileKind
	Lines   int64
	Records int64
}

// ProgressFunc is called periodically while a file loads.
type ProgressFunc func(p Progress)

// FinishFunc runs on the open ingest transaction after all rows are staged
// and before commit, so bookkeeping updates land atomically with the rows.
// A non-nil error aborts the commit.
type FinishFunc func(tx *sql.Tx, kind FileKind, records int64) error

// Loader streams decompressed STRING dump files into the store. Each file
// loads inside a single transaction: a failed load inserts nothing.
type Loader struct {
	db           *database.DB
	progressFunc ProgressFunc
	finishFunc   FinishFunc
}

// NewLoader creates a loader writing to the given store.
func NewLoader(db *database.DB) *Loader {
	return &Loader{db: db}
}

// SetProgressFunc sets the progress callback function.
func (l *Loader) SetProgressFunc(f ProgressFunc) {
	l.progressFunc = f
}

// SetFinishFunc sets the pre-commit callback function.
func (l *Loader) SetFinishFunc(f FinishFunc) {
	l.finishFunc = f
}

// tab-runs delimit alias records; the alias column itself may contain spaces.
var tabRuns = regexp.MustCompile(`\t+`)

// Load reads the header line from r, classifies the file, and streams the
// remaining lines into the store according to the detected schema. It returns
// the detected kind and the number of rows inserted. Malformed lines are
// fatal for the whole file; nothing is committed on error.
func (l *Loader) Load(ctx context.Context, r io.Reader) (FileKind, int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return KindUnknown, 0, fmt.Errorf("failed to read header: %w", err)
		}
		return KindUnknown, 0, fmt.Errorf("parse error: %w: empty file", ErrUnknownHeader)
	}

	kind, err := ClassifyHeader(scanner.Text())
	if err != nil {
		return KindUnknown, 0, err
	}

	tx, err := l.db.BeginIngest()
	if err != nil {
		return kind, 0, fmt.Errorf("failed to begin ingest: %w", err)
	}
	defer tx.Rollback()

	var records int64
	switch kind {
	case KindInteractions:
		records, err = l.loadInteractions(ctx, scanner, tx)
	case KindAliases:
		records, err = l.loadAliases(ctx, scanner, tx)
	}
	if err != nil {
		return kind, 0, err
	}

	if err := scanner.Err(); err != nil {
		return kind, 0, fmt.Errorf("read failed: %w", err)
	}

	if l.finishFunc != nil {
		if err := l.finishFunc(tx.Tx(), kind, records); err != nil {
			return kind, 0, fmt.Errorf("ingest bookkeeping failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return kind, 0, fmt.Errorf("failed to commit ingest: %w", err)
	}

	return kind, records, nil
}

// loadInteractions parses whitespace-delimited link lines. Columns 0 and 1
// are species-prefixed identifiers, column 9 the integer combined score. The
// full prefixed identifiers are accumulated and flushed as protein rows once
// all lines are read, so the proteins table covers every endpoint seen.
func (l *Loader) loadInteractions(ctx context.Context, scanner *bufio.Scanner, tx *database.IngestTx) (int64, error) {
	proteins := make(map[string]bool)

	var lineNum int64 = 1 // header consumed
	var records int64

	for scanner.Scan() {
		lineNum++
		if lineNum%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			l.reportProgress(KindInteractions, lineNum, records)
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 10 {
			return 0, fmt.Errorf("parse error: line %d: expected at least 10 columns, got %d", lineNum, len(fields))
		}

		_, protein1, err := splitPrefixed(fields[0])
		if err != nil {
			return 0, fmt.Errorf("parse error: line %d: %w", lineNum, err)
		}
		_, protein2, err := splitPrefixed(fields[1])
		if err != nil {
			return 0, fmt.Errorf("parse error: line %d: %w", lineNum, err)
		}

		score, err := strconv.Atoi(fields[9])
		if err != nil {
			return 0, fmt.Errorf("parse error: line %d: invalid combined score %q", lineNum, fields[9])
		}

		if err := tx.AddInteraction(protein1, protein2, score); err != nil {
			return 0, fmt.Errorf("insert failed: line %d: %w", lineNum, err)
		}
		records++

		proteins[fields[0]] = true
		proteins[fields[1]] = true
	}

	for prefixed := range proteins {
		species, ensemblID, err := splitPrefixed(prefixed)
		if err != nil {
			return 0, err
		}
		if err := tx.AddProtein(ensemblID, species); err != nil {
			return 0, fmt.Errorf("insert failed: protein %s: %w", ensemblID, err)
		}
		records++
	}

	l.reportProgress(KindInteractions, lineNum, records)
	return records, nil
}

// loadAliases parses tab-run-delimited alias lines. Column 0 is a
// species-prefixed identifier (only the identifier part is kept), columns 1
// and 2 the alias string and its source tag.
func (l *Loader) loadAliases(ctx context.Context, scanner *bufio.Scanner, tx *database.IngestTx) (int64, error) {
	var lineNum int64 = 1
	var records int64

	for scanner.Scan() {
		lineNum++
		if lineNum%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			l.reportProgress(KindAliases, lineNum, records)
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := tabRuns.Split(line, -1)
		if len(fields) < 3 {
			return 0, fmt.Errorf("parse error: line %d: expected at least 3 columns, got %d", lineNum, len(fields))
		}

		_, ensemblID, err := splitPrefixed(fields[0])
		if err != nil {
			return 0, fmt.Errorf("parse error: line %d: %w", lineNum, err)
		}

		if err := tx.AddAlias(ensemblID, fields[1], fields[2]); err != nil {
			return 0, fmt.Errorf("insert failed: line %d: %w", lineNum, err)
		}
		records++
	}

	l.reportProgress(KindAliases, lineNum, records)
	return records, nil
}

func (l *Loader) reportProgress(kind FileKind, lines, records int64) {
	if l.progressFunc != nil {
		l.progressFunc(Progress{Kind: kind, Lines: lines, Records: records})
	}
}

// splitPrefixed splits a species-prefixed identifier of the form
// <species>.<id> into its parts. The identifier part may itself contain
// dots, so only the first dot splits.
func splitPrefixed(s string) (species, id string, err error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("identifier %q is not species-prefixed", s)
	}
	return parts[0], parts[1], nil
}
