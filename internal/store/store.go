// Package store persists classified effects in a DuckDB database so that
// cohort-level runs can be cached and queried with SQL.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/openvax/varcode-go/internal/effect"
)

// Store manages a DuckDB connection holding classified effects.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS effects (
		contig VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		build VARCHAR,
		transcript_id VARCHAR,
		transcript_name VARCHAR,
		gene_id VARCHAR,
		gene_name VARCHAR,
		category VARCHAR,
		severity INTEGER,
		description VARCHAR,
		aa_pos BIGINT,
		PRIMARY KEY (contig, pos, ref, alt, build, transcript_id)
	)`)
	return err
}

// SaveEffects appends effects to the store, replacing earlier rows for the
// same (variant, transcript) pair.
func (s *Store) SaveEffects(effects []*effect.Effect) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO effects
		(contig, pos, ref, alt, build, transcript_id, transcript_name,
		 gene_id, gene_name, category, severity, description, aa_pos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range effects {
		v := e.Variant
		if _, err := stmt.Exec(
			v.Contig, v.Pos, v.Ref, v.Alt, v.Build,
			e.TranscriptID, e.TranscriptName,
			e.GeneID, e.GeneName,
			e.Category.String(), effect.Severity(e.Category),
			e.Description, e.AAPos,
		); err != nil {
			return fmt.Errorf("insert effect for %s: %w", v.Description(), err)
		}
	}

	return tx.Commit()
}

// EffectCount returns the number of stored effects.
func (s *Store) EffectCount() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM effects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count effects: %w", err)
	}
	return n, nil
}

// GeneCounts returns the number of stored effects per gene name.
func (s *Store) GeneCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT gene_name, COUNT(*) FROM effects
		WHERE gene_name <> '' GROUP BY gene_name`)
	if err != nil {
		return nil, fmt.Errorf("query gene counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan gene count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// CategoryCounts returns the number of stored effects per category.
func (s *Store) CategoryCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT category, COUNT(*) FROM effects GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[category] = n
	}
	return counts, rows.Err()
}
