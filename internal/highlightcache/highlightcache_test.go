package highlightcache

import "testing"

func TestGetServesOverlapAtMatchingVersion(t *testing.T) {
	c := New()
	spans := []Span{{Highlight: "kw", Start: 0, End: 5}, {Highlight: "str", Start: 5, End: 10}}
	c.Update(ByteRange{Start: 0, End: 10}, spans, 1, 1, false)

	got := c.Get(ByteRange{Start: 3, End: 7}, 1, 1)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].Start != 3 || got[0].End != 5 {
		t.Fatalf("got[0] = %+v, want clipped to [3,5)", got[0])
	}
	if got[1].Start != 5 || got[1].End != 7 {
		t.Fatalf("got[1] = %+v, want clipped to [5,7)", got[1])
	}
}

func TestGetDropsMismatchedVersion(t *testing.T) {
	c := New()
	c.Update(ByteRange{Start: 0, End: 10}, []Span{{Highlight: "kw", Start: 0, End: 10}}, 1, 1, false)

	got := c.Get(ByteRange{Start: 0, End: 10}, 2, 1)
	if len(got) != 0 {
		t.Fatalf("len(got) = %d, want 0 for mismatched doc_version", len(got))
	}
}

func TestUpdateReplacesOverlappingEntries(t *testing.T) {
	c := New()
	c.Update(ByteRange{Start: 0, End: 10}, []Span{{Highlight: "old", Start: 0, End: 10}}, 1, 1, false)
	c.Update(ByteRange{Start: 5, End: 15}, []Span{{Highlight: "new", Start: 5, End: 15}}, 2, 2, false)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after overlapping update evicts the old entry", c.Len())
	}
	if got := c.Get(ByteRange{Start: 0, End: 10}, 1, 1); len(got) != 0 {
		t.Fatalf("stale entry should have been evicted, got %v", got)
	}
}

func TestClearEmptiesCache(t *testing.T) {
	c := New()
	c.Update(ByteRange{Start: 0, End: 10}, []Span{{Highlight: "kw", Start: 0, End: 10}}, 1, 1, false)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", c.Len())
	}
}

func TestUnparsedUpdateRefusedBeyondTolerance(t *testing.T) {
	c := New()
	c.SetTolerance(0)
	c.NoteInterpolation()
	c.Update(ByteRange{Start: 0, End: 5}, []Span{{Highlight: "kw", Start: 0, End: 5}}, 1, 1, true)
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0: unparsed update beyond tolerance should be refused", c.Len())
	}

	c.NoteParseCompleted()
	c.Update(ByteRange{Start: 0, End: 5}, []Span{{Highlight: "kw", Start: 0, End: 5}}, 1, 1, true)
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after NoteParseCompleted resets tolerance window", c.Len())
	}
}
