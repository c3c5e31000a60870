// Package ledger records what was last published to each remote document so
// unchanged sources can be skipped on the next run.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrEntryNotFound indicates that a document has no recorded publish.
var ErrEntryNotFound = errors.New("ledger: entry not found")

// ErrDocumentIDRequired indicates that ledger operations require a document id.
var ErrDocumentIDRequired = errors.New("ledger: document id is required")

// Entry is the last successful publish of one document.
type Entry struct {
	DocumentID  string    `json:"document_id"`
	SourcePath  string    `json:"source_path,omitempty"`
	Checksum    string    `json:"checksum"`
	RunID       string    `json:"run_id"`
	Phase1      int       `json:"phase1_requests"`
	Phase2      int       `json:"phase2_requests"`
	Tables      int       `json:"tables"`
	PublishedAt time.Time `json:"published_at"`
}

// Repository persists publish entries keyed by document id.
type Repository interface {
	Get(ctx context.Context, documentID string) (*Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Record(ctx context.Context, entry Entry) (*Entry, error)
}

// Checksum fingerprints markdown for change detection.
func Checksum(markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return hex.EncodeToString(sum[:])
}

// Unchanged reports whether documentID was last published from markdown with
// the given checksum.
func Unchanged(ctx context.Context, repo Repository, documentID, checksum string) (bool, error) {
	if repo == nil || checksum == "" {
		return false, nil
	}
	entry, err := repo.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}
	return entry.Checksum == checksum, nil
}
