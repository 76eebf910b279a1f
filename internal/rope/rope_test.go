package rope

import (
	"strings"
	"testing"
)

func TestNewAndString(t *testing.T) {
	r := New("hello world")
	if r.String() != "hello world" {
		t.Fatalf("String() = %q", r.String())
	}
	if r.LenChars() != 11 || r.LenBytes() != 11 {
		t.Fatalf("LenChars/LenBytes = %d/%d, want 11/11", r.LenChars(), r.LenBytes())
	}
}

func TestLenCharsCountsRunesNotBytes(t *testing.T) {
	r := New("héllo")
	if r.LenChars() != 5 {
		t.Fatalf("LenChars() = %d, want 5", r.LenChars())
	}
	if r.LenBytes() != len("héllo") {
		t.Fatalf("LenBytes() = %d, want %d", r.LenBytes(), len("héllo"))
	}
}

func TestSliceReturnsCharRange(t *testing.T) {
	r := New("hello world")
	if got := r.Slice(0, 5); got != "hello" {
		t.Fatalf("Slice(0,5) = %q, want hello", got)
	}
	if got := r.Slice(6, 11); got != "world" {
		t.Fatalf("Slice(6,11) = %q, want world", got)
	}
}

func TestSliceClampsOutOfRange(t *testing.T) {
	r := New("abc")
	if got := r.Slice(-5, 100); got != "abc" {
		t.Fatalf("Slice(-5,100) = %q, want abc", got)
	}
	if got := r.Slice(2, 1); got != "" {
		t.Fatalf("Slice(2,1) = %q, want empty", got)
	}
}

func TestInsertAndRemove(t *testing.T) {
	r := New("hello world")
	r2 := r.Insert(5, ",")
	if r2.String() != "hello, world" {
		t.Fatalf("Insert = %q", r2.String())
	}
	// original is untouched (immutable snapshot).
	if r.String() != "hello world" {
		t.Fatalf("original rope mutated: %q", r.String())
	}

	r3 := r2.Remove(5, 6)
	if r3.String() != "hello world" {
		t.Fatalf("Remove = %q", r3.String())
	}
}

func TestLineToCharAndCharToLine(t *testing.T) {
	r := New("one\ntwo\nthree")
	if r.LenLines() != 3 {
		t.Fatalf("LenLines() = %d, want 3", r.LenLines())
	}
	if got := r.LineToChar(1); got != 4 {
		t.Fatalf("LineToChar(1) = %d, want 4", got)
	}
	if got := r.LineToChar(2); got != 8 {
		t.Fatalf("LineToChar(2) = %d, want 8", got)
	}
	if got := r.CharToLine(9); got != 2 {
		t.Fatalf("CharToLine(9) = %d, want 2", got)
	}
}

func TestLineStripsTrailingNewline(t *testing.T) {
	r := New("one\ntwo\nthree")
	if got := r.Line(0); got != "one" {
		t.Fatalf("Line(0) = %q, want one", got)
	}
	if got := r.Line(1); got != "two" {
		t.Fatalf("Line(1) = %q, want two", got)
	}
	if got := r.Line(2); got != "three" {
		t.Fatalf("Line(2) = %q, want three", got)
	}
}

func TestCharToByteAndByteToCharRoundTripMultibyte(t *testing.T) {
	r := New("héllo")
	b := r.CharToByte(2) // past the 2-byte 'é'
	if got := r.ByteToChar(b); got != 2 {
		t.Fatalf("ByteToChar(CharToByte(2)) = %d, want 2", got)
	}
}

func TestBuildSplitsLongStringsAcrossInnerNodes(t *testing.T) {
	long := strings.Repeat("a", splitThreshold*3)
	r := New(long)
	if r.LenBytes() != len(long) {
		t.Fatalf("LenBytes() = %d, want %d", r.LenBytes(), len(long))
	}
	if r.String() != long {
		t.Fatal("String() did not round-trip a multi-leaf rope")
	}
}

func TestCloneReturnsEqualValue(t *testing.T) {
	r := New("abc")
	c := r.Clone()
	if c.String() != r.String() {
		t.Fatalf("Clone() = %q, want %q", c.String(), r.String())
	}
}
