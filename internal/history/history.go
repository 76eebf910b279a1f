// Package history implements an optional sqlite-backed spill for a
// Document's undo journal: when an in-memory historyTree grows past a
// host's retention budget, older entries can be persisted here and dropped
// from memory without losing the ability to undo past them.
//
// Entries are keyed by (document id, version) and stored as serialized
// ChangeSet deltas in a small SQLite journal table.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/xonecas/editorcore/internal/change"
)

const schema = `
CREATE TABLE IF NOT EXISTS undo_journal (
	document_id TEXT NOT NULL,
	version     INTEGER NOT NULL,
	forward_ops TEXT NOT NULL,
	inverse_ops TEXT NOT NULL,
	PRIMARY KEY (document_id, version)
);
`

// entryRow is the JSON-serializable form of a ChangeSet's op list, the
// shape persisted in forward_ops/inverse_ops.
type entryRow struct {
	Ops []change.Op `json:"ops"`
}

// Journal is a SQLite-backed store of (document id, version) -> (forward,
// inverse) ChangeSet pairs, used to spill a Document's in-memory history
// tree once it exceeds a retention budget.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens a journal database at dbPath.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", dbPath, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}

// Record persists one undo-journal entry for docID at version, storing both
// the forward changeset (for redo after a spill) and its inverse (for
// undo).
func (j *Journal) Record(docID uuid.UUID, version uint64, forward, inverse *change.ChangeSet) error {
	fwdJSON, err := json.Marshal(entryRow{Ops: forward.Ops()})
	if err != nil {
		return fmt.Errorf("history: marshal forward ops: %w", err)
	}
	invJSON, err := json.Marshal(entryRow{Ops: inverse.Ops()})
	if err != nil {
		return fmt.Errorf("history: marshal inverse ops: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.db.Exec(
		`INSERT OR REPLACE INTO undo_journal (document_id, version, forward_ops, inverse_ops) VALUES (?, ?, ?, ?)`,
		docID.String(), version, string(fwdJSON), string(invJSON),
	)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Entry is one row retrieved from the journal, with ops decoded back into
// Op slices a caller can replay directly against a rope via
// ChangeSet.Apply-equivalent logic. Package change exports no constructor
// that builds a ChangeSet from an Op slice.
type Entry struct {
	Version    uint64
	ForwardOps []change.Op
	InverseOps []change.Op
}

// Load retrieves every persisted entry for docID in ascending version
// order, for replaying into a fresh in-memory historyTree after reopening a
// document.
func (j *Journal) Load(docID uuid.UUID) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT version, forward_ops, inverse_ops FROM undo_journal WHERE document_id = ? ORDER BY version ASC`,
		docID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var version uint64
		var fwdJSON, invJSON string
		if err := rows.Scan(&version, &fwdJSON, &invJSON); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		var fwd, inv entryRow
		if err := json.Unmarshal([]byte(fwdJSON), &fwd); err != nil {
			return nil, fmt.Errorf("history: unmarshal forward ops: %w", err)
		}
		if err := json.Unmarshal([]byte(invJSON), &inv); err != nil {
			return nil, fmt.Errorf("history: unmarshal inverse ops: %w", err)
		}
		out = append(out, Entry{Version: version, ForwardOps: fwd.Ops, InverseOps: inv.Ops})
	}
	return out, rows.Err()
}

// Prune deletes every persisted entry for docID at or below keepAbove,
// called after a host confirms it no longer needs to undo past that point
// (e.g. the document was closed and reopened with a fresh baseline).
func (j *Journal) Prune(docID uuid.UUID, keepAbove uint64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(
		`DELETE FROM undo_journal WHERE document_id = ? AND version <= ?`,
		docID.String(), keepAbove,
	)
	if err != nil {
		return fmt.Errorf("history: prune: %w", err)
	}
	return nil
}
