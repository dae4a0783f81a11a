package codes

import (
	"strings"
	"testing"
)

func set(codes ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func TestSequentialNext(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]struct{}
		prefix   string
		want     string
	}{
		{
			name:     "continues from highest suffix",
			existing: set("ROLL10005", "ROLL10002"),
			prefix:   "ROLL",
			want:     "ROLL10006",
		},
		{
			name:     "empty set starts at default",
			existing: set(),
			prefix:   "ROLL",
			want:     "ROLL10000",
		},
		{
			name:     "ignores codes from other groups",
			existing: set("VERT10009", "ROLL10001"),
			prefix:   "ROLL",
			want:     "ROLL10002",
		},
		{
			name:     "matching is case-insensitive",
			existing: set("roll10007"),
			prefix:   "ROLL",
			want:     "ROLL10008",
		},
		{
			name:     "ignores non-numeric suffixes",
			existing: set("ROLLX", "ROLL10A01"),
			prefix:   "ROLL",
			want:     "ROLL10000",
		},
	}

	alloc := NewSequential()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := alloc.Next(tt.existing, tt.prefix); got != tt.want {
				t.Errorf("Next() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSequentialNextCustomStart(t *testing.T) {
	alloc := &Sequential{Start: 500}
	if got := alloc.Next(set(), "ROLL"); got != "ROLL500" {
		t.Errorf("Next() = %q, want ROLL500", got)
	}
}

func TestSequentialNextTruncation(t *testing.T) {
	prefix := strings.Repeat("A", 18)
	alloc := NewSequential()

	got := alloc.Next(set(), prefix)
	if len(got) != 20 {
		t.Errorf("expected 20-character code, got %d characters: %q", len(got), got)
	}
	if !strings.HasPrefix(got, prefix) {
		t.Errorf("expected code to keep prefix, got %q", got)
	}
}

func TestSequentialNextMonotonic(t *testing.T) {
	// Allocating repeatedly while feeding codes back never collides.
	alloc := NewSequential()
	existing := set("ROLL10000")

	seen := make(map[string]struct{})
	for i := 0; i < 25; i++ {
		code := alloc.Next(existing, "ROLL")
		if _, dup := seen[code]; dup {
			t.Fatalf("allocator returned duplicate code %q", code)
		}
		if _, dup := existing[code]; dup {
			t.Fatalf("allocator returned existing code %q", code)
		}
		seen[code] = struct{}{}
		existing[code] = struct{}{}
	}
}
