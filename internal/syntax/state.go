package syntax

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// shortParseBudget is the millisecond budget TryUpdateShortDeadline gives an
// inline reparse before giving up on it.
const shortParseBudget = 3 * time.Millisecond

// State is the version-tracked wrapper around Syntax that coordinates
// synchronous interpolation with background reparse and swap-in. The zero value is not usable; construct with
// NewState.
//
// Invariants (enforced by construction, never by external mutation):
// parsedVersion <= interpolatedVersion; IsAccurate() iff they are equal.
// Only Interpolate bumps interpolatedVersion; only a successful ApplyParsed
// or TryUpdateShortDeadline bumps parsedVersion.
type State struct {
	mu                 sync.Mutex
	syntax             *Syntax
	interpolatedVersion uint64
	parsedVersion       uint64
	parsePending        bool
}

// NewState wraps an initial, fully-parsed Syntax at version 1.
func NewState(initial *Syntax) *State {
	return &State{syntax: initial, interpolatedVersion: 1, parsedVersion: 1}
}

// Interpolate locks the syntax, applies the edits to every layer's tree,
// and bumps interpolatedVersion. Returns the version stamp the caller
// should attach to the resulting offsets.
func (st *State) Interpolate(edits []InputEdit) uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.syntax.Interpolate(edits)
	st.interpolatedVersion++
	return st.interpolatedVersion
}

// Snapshot is an immutable handle to a cloned Syntax plus the source bytes
// and interpolated-version stamp a background parse should run against.
type Snapshot struct {
	Syntax  *Syntax
	Source  []byte
	Version uint64
}

// TakeSnapshot clones the current syntax (cheap — layer trees are
// reference-counted) for a background worker to reparse against source.
func (st *State) TakeSnapshot(source []byte) Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.parsePending = true
	return Snapshot{
		Syntax:  st.syntax.Clone(),
		Source:  append([]byte(nil), source...),
		Version: st.interpolatedVersion,
	}
}

// ParseInBackground runs snap's reparse outside the lock, for a caller
// that wants to launch it on its own goroutine/worker-pool slot. It returns a snapshot ready for ApplyParsed.
func ParseInBackground(ctx context.Context, snap Snapshot, edits []InputEdit) (Snapshot, error) {
	parsed, err := snap.Syntax.UpdateWithEdits(ctx, snap.Source, edits)
	if err != nil {
		// A failed parse is not applied: the error is logged and returned,
		// and the interpolated tree continues to serve offsets.
		log.Warn().Err(err).Msg("syntax: background reparse failed")
		return Snapshot{}, err
	}
	return Snapshot{Syntax: parsed, Source: snap.Source, Version: snap.Version}, nil
}

// ApplyParsed swaps in snap's parsed tree iff no newer edit has arrived
// since the snapshot was taken. Returns false —
// "stale" — if interpolatedVersion has moved on; the caller should then
// check NeedsReparse and may launch a fresh snapshot.
func (st *State) ApplyParsed(snap Snapshot) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if snap.Version != st.interpolatedVersion {
		return false
	}
	old := st.syntax
	st.syntax = snap.Syntax
	st.parsedVersion = snap.Version
	st.parsePending = false
	if old != nil {
		old.closeTreesOnly()
	}
	return true
}

// NeedsReparse reports interpolatedVersion > parsedVersion.
func (st *State) NeedsReparse() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.interpolatedVersion > st.parsedVersion
}

// IsAccurate reports parsedVersion == interpolatedVersion.
func (st *State) IsAccurate() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.parsedVersion == st.interpolatedVersion
}

// ParsePending reports whether a background parse has been dispatched and
// not yet resolved via ApplyParsed.
func (st *State) ParsePending() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.parsePending
}

// Versions returns (parsedVersion, interpolatedVersion) atomically.
func (st *State) Versions() (parsed, interpolated uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.parsedVersion, st.interpolatedVersion
}

// Current returns the Syntax currently installed (either the last
// interpolated-only tree or the last successfully swapped-in reparse).
func (st *State) Current() *Syntax {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.syntax
}

// TryUpdateShortDeadline runs Update with a short budget inline, returning
// completed=false on timeout so the caller falls back to async parsing. On
// success it applies the result directly without going through the
// snapshot/ApplyParsed race window, since it ran synchronously under the
// edit path.
func (st *State) TryUpdateShortDeadline(newSrc []byte) (completed bool) {
	st.mu.Lock()
	syn := st.syntax
	version := st.interpolatedVersion
	st.mu.Unlock()

	result, ok := syn.TryUpdateWithShortTimeout(newSrc, shortParseBudget)
	if !ok {
		return false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if version != st.interpolatedVersion {
		// A newer edit arrived while we were parsing; discard.
		result.closeTreesOnly()
		return false
	}
	old := st.syntax
	st.syntax = result
	st.parsedVersion = version
	if old != nil {
		old.closeTreesOnly()
	}
	return true
}
