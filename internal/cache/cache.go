// Package cache maps content fingerprints of uploaded images to previously
// computed extraction results, so byte-identical uploads never hit the OCR
// engine twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/tendant/simple-ocr/internal/extract"
)

// Fingerprint is the hex-encoded SHA-256 digest of an image's bytes, used
// as the sole cache key. Identical bytes always produce identical
// fingerprints; collisions are treated as negligible.
type Fingerprint string

// FingerprintOf computes the fingerprint for the given bytes. Pure and
// deterministic.
func FingerprintOf(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Store is a concurrency-safe fingerprint-to-result cache. Lookups never
// block on OCR work. A lookup racing a store for the same fingerprint may
// observe either a miss or the new value, never a partial one.
//
// Store does not coalesce concurrent identical in-flight requests
// (single-flight); two concurrent uploads of the same uncached image may
// both reach the extractor, and the second write wins with an identical
// value. That tradeoff is deliberate.
type Store interface {
	// Lookup returns the cached result for fp, if present and fresh.
	Lookup(fp Fingerprint) (extract.Result, bool)

	// Store inserts or overwrites the entry for fp.
	Store(fp Fingerprint, result extract.Result)
}

// Entry is a cached extraction result with its insertion time.
type Entry struct {
	Fingerprint Fingerprint
	Result      extract.Result
	CreatedAt   time.Time
}
