package history

import (
	"testing"

	"github.com/google/uuid"

	"github.com/xonecas/editorcore/internal/change"
	"github.com/xonecas/editorcore/internal/rope"
)

func TestRecordAndLoadRoundTrips(t *testing.T) {
	j, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	r := rope.New("hello")
	fwd, err := change.FromEdits(r.LenChars(), []change.Edit{{From: 5, To: 5, Replacement: " world"}})
	if err != nil {
		t.Fatalf("FromEdits: %v", err)
	}
	inv := fwd.Invert(r)

	docID := uuid.New()
	if err := j.Record(docID, 1, fwd, inv); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := j.Load(docID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Version != 1 {
		t.Fatalf("Version = %d, want 1", entries[0].Version)
	}
	if len(entries[0].ForwardOps) == 0 {
		t.Fatal("ForwardOps is empty, want the recorded ops")
	}
}

func TestPruneRemovesOldEntries(t *testing.T) {
	j, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	r := rope.New("ab")
	cs, _ := change.FromEdits(r.LenChars(), []change.Edit{{From: 2, To: 2, Replacement: "c"}})
	inv := cs.Invert(r)
	docID := uuid.New()
	for v := uint64(1); v <= 3; v++ {
		if err := j.Record(docID, v, cs, inv); err != nil {
			t.Fatalf("Record(%d): %v", v, err)
		}
	}

	if err := j.Prune(docID, 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	entries, err := j.Load(docID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 || entries[0].Version != 3 {
		t.Fatalf("entries = %+v, want only version 3 remaining", entries)
	}
}
