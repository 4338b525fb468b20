// ABOUTME: Annotated replay log of the positions visited in one playthrough
// ABOUTME: Supports append, idempotent replay and overwrite-with-truncate

package history

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/models"
)

// ErrIndexOutOfRange is returned by lookups past the end of the history.
var ErrIndexOutOfRange = errors.New("history index out of range")

// Side tags accepted by PositionIndex.
const (
	TagWhite = "w"
	TagBlack = "b"
	TagSelf  = "s"
)

// AnnotatedPosition is one entry of the history.
type AnnotatedPosition struct {
	FEN         string              `json:"fen" yaml:"fen"`
	Annotations []models.Annotation `json:"annotations" yaml:"annotations"`
	MovePlayed  *models.MoveResult  `json:"move_played,omitempty" yaml:"move_played,omitempty"`
}

// Key returns the normalised position key of the entry.
func (p AnnotatedPosition) Key() string {
	return fen.Key(p.FEN)
}

// History is an ordered log of positions. Index 0 is always the start
// position; even indexes have white to move.
type History struct {
	positions []AnnotatedPosition
	logger    *slog.Logger
}

// Option configures a History.
type Option func(*History)

// WithLogger sets the logger used to report bad side tags.
func WithLogger(l *slog.Logger) Option {
	return func(h *History) {
		h.logger = l
	}
}

// New creates a history holding only the start position.
func New(opts ...Option) *History {
	h := &History{logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	h.Clear()
	return h
}

// Clear resets the history to the start position.
func (h *History) Clear() {
	h.positions = []AnnotatedPosition{{FEN: fen.StartPosition}}
}

// Len returns the number of positions.
func (h *History) Len() int {
	return len(h.positions)
}

// LatestIndex returns the index of the last position.
func (h *History) LatestIndex() int {
	return len(h.positions) - 1
}

// LatestPosition returns the last position.
func (h *History) LatestPosition() AnnotatedPosition {
	return clonePosition(h.positions[len(h.positions)-1])
}

// PositionByIndex returns the position stored at a raw index.
func (h *History) PositionByIndex(idx int) (AnnotatedPosition, error) {
	if idx < 0 || idx >= len(h.positions) {
		return AnnotatedPosition{}, fmt.Errorf("position %d of %d: %w", idx, len(h.positions), ErrIndexOutOfRange)
	}
	return clonePosition(h.positions[idx]), nil
}

// Positions returns a copy of every entry.
func (h *History) Positions() []AnnotatedPosition {
	out := make([]AnnotatedPosition, len(h.positions))
	for i, p := range h.positions {
		out[i] = clonePosition(p)
	}
	return out
}

// PushMove records move without annotations on the new position.
func (h *History) PushMove(move models.MoveResult, atIndex int) {
	h.PushAnnotatedMove(move, nil, atIndex)
}

// PushAnnotatedMove records move as played from the position at atIndex.
// An index of -1 or the last index appends. An earlier index replaces the
// continuation only when move leads somewhere other than the stored next
// position; replaying the stored continuation leaves the history untouched.
func (h *History) PushAnnotatedMove(move models.MoveResult, annotations []models.Annotation, atIndex int) {
	before := h.LatestIndex()
	if atIndex >= 0 && atIndex < h.LatestIndex() {
		if fen.Equal(move.PositionAfter, h.positions[atIndex+1].FEN) {
			return
		}
		h.positions = h.positions[:atIndex+1]
		before = atIndex
	}

	last := &h.positions[before]
	last.Annotations = slices.DeleteFunc(last.Annotations, func(a models.Annotation) bool {
		return a.Type == models.Played
	})
	last.Annotations = append(last.Annotations, models.NewAnnotation(models.Played, move.From, move.To))
	played := move
	last.MovePlayed = &played

	h.positions = append(h.positions, AnnotatedPosition{
		FEN:         move.PositionAfter,
		Annotations: slices.Clone(annotations),
	})
}

// PositionIndex maps a move number and side tag to a history index.
// Unknown tags are logged and treated as white.
func (h *History) PositionIndex(ply int, tag string) int {
	offset := 0
	switch tag {
	case TagWhite, TagSelf:
	case TagBlack:
		offset = 1
	default:
		h.logger.Warn("unknown side tag, using white offset", "tag", tag, "ply", ply)
	}
	return ply*2 + offset
}

// PositionAt returns the position where side tag is to play move number ply.
func (h *History) PositionAt(ply int, tag string) (AnnotatedPosition, error) {
	return h.PositionByIndex(h.PositionIndex(ply, tag))
}

// PositionAfter returns the position reached after side tag played move number ply.
func (h *History) PositionAfter(ply int, tag string) (AnnotatedPosition, error) {
	return h.PositionByIndex(h.PositionIndex(ply, tag) + 1)
}

// Annotations returns the annotations of the position at ply and tag.
func (h *History) Annotations(ply int, tag string) ([]models.Annotation, error) {
	p, err := h.PositionAt(ply, tag)
	if err != nil {
		return nil, err
	}
	return p.Annotations, nil
}

// PlayerToMove returns the side to move at the last position.
func (h *History) PlayerToMove() models.Side {
	return h.PlayerToMoveAt(h.LatestIndex())
}

// PlayerToMoveAt returns the side to move at index idx.
func (h *History) PlayerToMoveAt(idx int) models.Side {
	if idx%2 == 0 {
		return models.White
	}
	return models.Black
}

// Moves returns the display notation of every played move in order.
func (h *History) Moves() []string {
	var out []string
	for _, p := range h.positions {
		if p.MovePlayed != nil {
			out = append(out, p.MovePlayed.Notation)
		}
	}
	return out
}

func clonePosition(p AnnotatedPosition) AnnotatedPosition {
	p.Annotations = slices.Clone(p.Annotations)
	if p.MovePlayed != nil {
		m := *p.MovePlayed
		p.MovePlayed = &m
	}
	return p
}
