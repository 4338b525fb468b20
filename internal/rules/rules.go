// ABOUTME: Chess rules adapter that applies SAN moves to FEN positions
// ABOUTME: Wraps github.com/notnil/chess behind a small Engine interface

package rules

import (
	"errors"
	"fmt"

	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/models"
	"github.com/notnil/chess"
)

// ErrIllegalMove is returned when a notation is not a legal move in the position.
var ErrIllegalMove = errors.New("illegal move")

// ErrInvalidPosition is returned when a position string cannot be parsed.
var ErrInvalidPosition = errors.New("invalid position")

// Engine applies a move in standard algebraic notation to a position.
type Engine interface {
	ApplyMove(position, notation string) (models.MoveResult, error)
}

// Standard implements Engine with full chess rules.
type Standard struct{}

// Compile-time check that Standard implements Engine.
var _ Engine = Standard{}

// NewStandard returns the default rules engine.
func NewStandard() Standard {
	return Standard{}
}

// ApplyMove plays notation from position. Positions may be keys or full FEN
// strings, but only a full FEN carries the en-passant square.
func (Standard) ApplyMove(position, notation string) (models.MoveResult, error) {
	pos, err := decodePosition(position)
	if err != nil {
		return models.MoveResult{}, err
	}

	move, err := chess.AlgebraicNotation{}.Decode(pos, notation)
	if err != nil {
		return models.MoveResult{}, fmt.Errorf("%w: %s in %s", ErrIllegalMove, notation, fen.Key(position))
	}

	after := pos.Update(move)
	return models.MoveResult{
		Side:           sideOf(pos.Turn()),
		From:           move.S1().String(),
		To:             move.S2().String(),
		Promotion:      promotionLetter(move.Promo()),
		Notation:       chess.AlgebraicNotation{}.Encode(pos, move),
		LongNotation:   chess.UCINotation{}.Encode(pos, move),
		PositionBefore: pos.String(),
		PositionAfter:  after.String(),
	}, nil
}

func decodePosition(position string) (*chess.Position, error) {
	opt, err := chess.FEN(fen.Expand(position))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return chess.NewGame(opt).Position(), nil
}

func sideOf(c chess.Color) models.Side {
	if c == chess.Black {
		return models.Black
	}
	return models.White
}

func promotionLetter(p chess.PieceType) string {
	switch p {
	case chess.Queen:
		return "q"
	case chess.Rook:
		return "r"
	case chess.Bishop:
		return "b"
	case chess.Knight:
		return "n"
	default:
		return ""
	}
}
