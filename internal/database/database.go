// Package database provides SQLite-backed storage for STRING-DB protein,
// interaction, and alias records.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
	path string
}

// Path returns the store file path the connection was opened with.
func (db *DB) Path() string {
	return db.path
}

// Initialize creates and configures the database connection, creating the
// schema if it does not exist yet. Calling it against an already-initialized
// store is a no-op beyond opening the connection.
func Initialize(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_sync=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 10000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA foreign_keys = OFF", // referential integrity declared, not enforced during import
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{
		DB:   db,
		path: path,
	}, nil
}

func createTables(db *sql.DB) error {
	// The proteins table holds Ensembl IDs with their species code. The
	// pp_links table holds scored protein-protein interactions. The p_aliases
	// table associates external symbols from multiple sources with an
	// Ensembl ID.
	schema := `
	CREATE TABLE IF NOT EXISTS proteins (
		ensembl_id TEXT NOT NULL UNIQUE,
		species    TEXT NOT NULL,
		PRIMARY KEY (ensembl_id)
	);

	CREATE TABLE IF NOT EXISTS pp_links (
		ensembl_id_1   TEXT    NOT NULL,
		ensembl_id_2   TEXT    NOT NULL,
		combined_score INTEGER NOT NULL,
		PRIMARY KEY (ensembl_id_1, ensembl_id_2),
		FOREIGN KEY (ensembl_id_1)
			REFERENCES proteins (ensembl_id)
	);

	CREATE TABLE IF NOT EXISTS p_aliases (
		ensembl_id TEXT NOT NULL,
		alias      TEXT NOT NULL,
		sources    TEXT NOT NULL,
		PRIMARY KEY (ensembl_id, alias, sources),
		FOREIGN KEY (ensembl_id)
			REFERENCES proteins (ensembl_id)
	);

	CREATE INDEX IF NOT EXISTS idx_aliases_alias ON p_aliases(alias);
	CREATE INDEX IF NOT EXISTS idx_links_score ON pp_links(combined_score);
	`

	_, err := db.Exec(schema)
	return err
}

// InsertProtein inserts a protein record in the database.
func (db *DB) InsertProtein(p *Protein) error {
	_, err := db.Exec(
		"INSERT INTO proteins (ensembl_id, species) VALUES (?, ?)",
		p.EnsemblID, p.Species)
	return err
}

// InsertInteraction inserts an interaction record in the database.
func (db *DB) InsertInteraction(in *Interaction) error {
	_, err := db.Exec(
		"INSERT INTO pp_links (ensembl_id_1, ensembl_id_2, combined_score) VALUES (?, ?, ?)",
		in.EnsemblID1, in.EnsemblID2, in.CombinedScore)
	return err
}

// InsertAlias inserts an alias record in the database.
func (db *DB) InsertAlias(a *Alias) error {
	_, err := db.Exec(
		"INSERT INTO p_aliases (ensembl_id, alias, sources) VALUES (?, ?, ?)",
		a.EnsemblID, a.Alias, a.Sources)
	return err
}

// GetProtein retrieves a protein by its Ensembl ID.
// Returns an error if the protein is not found.
func (db *DB) GetProtein(ensemblID string) (*Protein, error) {
	p := &Protein{}
	err := db.QueryRow(
		"SELECT ensembl_id, species FROM proteins WHERE ensembl_id = ?",
		ensemblID).Scan(&p.EnsemblID, &p.Species)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("protein not found: %s", ensemblID)
	}
	return p, err
}

// IngestTx wraps a transaction with prepared statements for the three ingest
// tables. One file loads inside one IngestTx, so an interrupted load leaves
// no rows behind.
type IngestTx struct {
	tx           *sql.Tx
	interactions *sql.Stmt
	proteins     *sql.Stmt
	aliases      *sql.Stmt
}

// BeginIngest starts an ingest transaction.
func (db *DB) BeginIngest() (*IngestTx, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	it := &IngestTx{tx: tx}
	it.interactions, err = tx.Prepare(
		"INSERT INTO pp_links (ensembl_id_1, ensembl_id_2, combined_score) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	it.proteins, err = tx.Prepare(
		"INSERT INTO proteins (ensembl_id, species) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	it.aliases, err = tx.Prepare(
		"INSERT INTO p_aliases (ensembl_id, alias, sources) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return it, nil
}

// AddInteraction inserts an interaction row within the transaction.
func (it *IngestTx) AddInteraction(ensemblID1, ensemblID2 string, combinedScore int) error {
	_, err := it.interactions.Exec(ensemblID1, ensemblID2, combinedScore)
	return err
}

// AddProtein inserts a protein row within the transaction.
func (it *IngestTx) AddProtein(ensemblID, species string) error {
	_, err := it.proteins.Exec(ensemblID, species)
	return err
}

// AddAlias inserts an alias row within the transaction.
func (it *IngestTx) AddAlias(ensemblID, alias, sources string) error {
	_, err := it.aliases.Exec(ensemblID, alias, sources)
	return err
}

// Tx exposes the underlying transaction for bookkeeping updates that must
// commit atomically with the ingested rows.
func (it *IngestTx) Tx() *sql.Tx {
	return it.tx
}

// Commit commits the transaction.
func (it *IngestTx) Commit() error {
	return it.tx.Commit()
}

// Rollback aborts the transaction. Safe to call after Commit.
func (it *IngestTx) Rollback() error {
	return it.tx.Rollback()
}

// ResolveAliases maps external gene symbols to Ensembl IDs via the alias
// table. Symbols are trimmed of surrounding whitespace; empty symbols are
// dropped. The result is a flattened list of the IDs of matching alias rows:
// unmatched symbols are silently dropped and no correspondence between input
// order and output order is guaranteed.
func (db *DB) ResolveAliases(symbols []string) ([]string, error) {
	trimmed := make([]interface{}, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s != "" {
			trimmed = append(trimmed, s)
		}
	}
	if len(trimmed) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT ensembl_id FROM p_aliases WHERE alias IN (%s)",
		placeholders(len(trimmed)))

	rows, err := db.Query(query, trimmed...)
	if err != nil {
		return nil, fmt.Errorf("alias lookup failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// DirectInteractions returns interactions where both endpoints are in the
// given identifier set and the combined score exceeds the threshold.
func (db *DB) DirectInteractions(ids []string, threshold int) ([]Link, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	seq := placeholders(len(ids))
	query := fmt.Sprintf(`
		SELECT ensembl_id_1, ensembl_id_2
		FROM pp_links
		WHERE ensembl_id_1 IN (%s)
		  AND ensembl_id_2 IN (%s)
		  AND combined_score > ?
	`, seq, seq)

	args := make([]interface{}, 0, 2*len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, threshold)

	return db.queryLinks(query, args...)
}

// ExpandedInteractions returns interactions where the first endpoint is in
// the given identifier set and the combined score exceeds the threshold. The
// second endpoint may lie outside the set, yielding the one-hop neighbourhood.
func (db *DB) ExpandedInteractions(ids []string, threshold int) ([]Link, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT ensembl_id_1, ensembl_id_2
		FROM pp_links
		WHERE ensembl_id_1 IN (%s)
		  AND combined_score > ?
	`, placeholders(len(ids)))

	args := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, threshold)

	return db.queryLinks(query, args...)
}

func (db *DB) queryLinks(query string, args ...interface{}) ([]Link, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("interaction query failed: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.EnsemblID1, &l.EnsemblID2); err != nil {
			return nil, err
		}
		links = append(links, l)
	}

	return links, rows.Err()
}

// StoreStats holds aggregate counts for the core tables.
type StoreStats struct {
	Proteins     int64
	Interactions int64
	Aliases      int64
	Size         int64
}

// GetStats returns live row counts for the core tables and the store file
// size.
func (db *DB) GetStats() (*StoreStats, error) {
	stats := &StoreStats{}

	if err := db.QueryRow("SELECT COUNT(*) FROM proteins").Scan(&stats.Proteins); err != nil {
		return nil, fmt.Errorf("failed to count proteins: %w", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM pp_links").Scan(&stats.Interactions); err != nil {
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM p_aliases").Scan(&stats.Aliases); err != nil {
		return nil, fmt.Errorf("failed to count aliases: %w", err)
	}

	if db.path != "" {
		if stat, err := os.Stat(db.path); err == nil {
			stats.Size = stat.Size()
		}
	}

	return stats, nil
}

// CountTable counts rows in a table.
// The table name is validated against the AllowedTables whitelist
// to prevent SQL injection.
func (db *DB) CountTable(table string) (int64, error) {
	safeTable, err := SafeTableName(table)
	if err != nil {
		return 0, fmt.Errorf("CountTable: %w", err)
	}

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", safeTable)
	err = db.QueryRow(query).Scan(&count)
	return count, err
}

// placeholders returns n comma-joined SQL parameter placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
