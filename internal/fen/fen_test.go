// ABOUTME: Tests for position key normalisation
// ABOUTME: Covers key truncation, side detection and FEN expansion

package fen

import (
	"testing"

	"github.com/harper/repertoire/internal/models"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full fen", StartPosition, StartKey},
		{"already a key", StartKey, StartKey},
		{"en passant dropped", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq"},
		{"extra whitespace", "  8/8/8/8/8/8/8/K6k   w  -  - 12 40 ", "8/8/8/8/8/8/8/K6k w -"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.in); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKey_ClockFieldsIgnored(t *testing.T) {
	a := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"
	b := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 4 9"
	if !Equal(a, b) {
		t.Error("positions differing only in clocks and en passant should share a key")
	}
}

func TestSideToMove(t *testing.T) {
	if got := SideToMove(StartKey); got != models.White {
		t.Errorf("expected white, got %s", got)
	}
	if got := SideToMove("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq"); got != models.Black {
		t.Errorf("expected black, got %s", got)
	}
	if got := SideToMove("garbage"); got != models.White {
		t.Errorf("expected white fallback, got %s", got)
	}
}

func TestExpand(t *testing.T) {
	if got := Expand(StartKey); got != StartPosition {
		t.Errorf("Expand(StartKey) = %q, want %q", got, StartPosition)
	}
	full := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if got := Expand(full); got != full {
		t.Errorf("Expand should leave full FEN untouched, got %q", got)
	}
}
