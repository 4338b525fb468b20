// ABOUTME: Position key normalisation for FEN strings
// ABOUTME: Strips clock and en-passant fields so transposed positions compare equal

package fen

import (
	"strings"

	"github.com/harper/repertoire/internal/models"
)

// StartPosition is the standard initial position as a full FEN string.
const StartPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// StartKey is the normalised key of StartPosition.
const StartKey = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq"

// keyFields is the number of FEN fields kept in a key: board, side to move, castling.
const keyFields = 3

// Key reduces a position string to its comparison key.
// Keys are idempotent: Key(Key(p)) == Key(p).
func Key(position string) string {
	fields := strings.Fields(position)
	if len(fields) > keyFields {
		fields = fields[:keyFields]
	}
	return strings.Join(fields, " ")
}

// SideToMove returns the side to move encoded in a position or key.
// A malformed position reports white.
func SideToMove(position string) models.Side {
	fields := strings.Fields(position)
	if len(fields) >= 2 && fields[1] == string(models.Black) {
		return models.Black
	}
	return models.White
}

// Expand pads a key (or any truncated FEN) back to the six fields
// expected by a rules engine, using no en-passant square and fresh clocks.
// A position expanded from a key therefore never allows en passant; pass the
// full FEN when that capture may be legal.
func Expand(position string) string {
	fields := strings.Fields(position)
	defaults := []string{"", "w", "-", "-", "0", "1"}
	for len(fields) < len(defaults) {
		fields = append(fields, defaults[len(fields)])
	}
	return strings.Join(fields, " ")
}

// Equal reports whether two position strings share a key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
