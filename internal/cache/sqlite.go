package cache

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tendant/simple-ocr/internal/extract"
)

// SQLite is a persistent cache backend. It implements the same Store
// contract as Memory but survives restarts, at the cost of a disk write
// per store. TTL expiry is applied on lookup; expired rows are deleted
// lazily.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLite opens (or creates) the cache database at path. A zero ttl
// disables time-based expiry.
func NewSQLite(path string, ttl time.Duration) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Concurrent lookups and stores come from all in-flight requests.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLite{db: db, ttl: ttl}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS ocr_cache (
			fingerprint TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			confidence REAL NOT NULL,
			created_at INTEGER NOT NULL
		)
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create ocr_cache table: %w", err)
	}
	return nil
}

// Lookup returns the cached result for fp, if present and fresh.
func (s *SQLite) Lookup(fp Fingerprint) (extract.Result, bool) {
	var result extract.Result
	var createdAt int64

	err := s.db.QueryRow(
		"SELECT text, confidence, created_at FROM ocr_cache WHERE fingerprint = ?",
		string(fp),
	).Scan(&result.Text, &result.Confidence, &createdAt)
	if err == sql.ErrNoRows {
		return extract.Result{}, false
	}
	if err != nil {
		log.Printf("cache lookup failed for %s: %v", fp, err)
		return extract.Result{}, false
	}

	if s.ttl > 0 && time.Since(time.UnixMilli(createdAt)) > s.ttl {
		if _, err := s.db.Exec("DELETE FROM ocr_cache WHERE fingerprint = ?", string(fp)); err != nil {
			log.Printf("cache expiry delete failed for %s: %v", fp, err)
		}
		return extract.Result{}, false
	}

	return result, true
}

// Store upserts the entry for fp.
func (s *SQLite) Store(fp Fingerprint, result extract.Result) {
	query := `
		INSERT INTO ocr_cache (fingerprint, text, confidence, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO UPDATE
		SET text = excluded.text,
		    confidence = excluded.confidence,
		    created_at = excluded.created_at
	`
	if _, err := s.db.Exec(query, string(fp), result.Text, result.Confidence, time.Now().UnixMilli()); err != nil {
		log.Printf("cache store failed for %s: %v", fp, err)
	}
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
