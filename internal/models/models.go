// ABOUTME: Core data models shared by the repertoire, history and drill packages
// ABOUTME: Provides sides, move results, annotation vocabulary and drill records

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Side identifies a colour by its FEN letter.
type Side string

const (
	White Side = "w"
	Black Side = "b"
)

// ParseSide accepts "w", "b", "white" or "black" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	default:
		return "", fmt.Errorf("unknown side %q (use white or black)", s)
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// Name returns the long colour name.
func (s Side) Name() string {
	if s == Black {
		return "black"
	}
	return "white"
}

// MoveResult is what the rules engine reports after applying a move.
type MoveResult struct {
	Side           Side   `json:"color" yaml:"color"`
	From           string `json:"from" yaml:"from"`
	To             string `json:"to" yaml:"to"`
	Promotion      string `json:"promotion,omitempty" yaml:"promotion,omitempty"`
	Notation       string `json:"san" yaml:"san"`
	LongNotation   string `json:"lan" yaml:"lan"`
	PositionBefore string `json:"before" yaml:"before"`
	PositionAfter  string `json:"after" yaml:"after"`
}

// AnnotationType classifies a move or a board marker.
type AnnotationType int

const (
	Played AnnotationType = iota + 1
	BreaksRepertoire
	EngineGood
	EngineInaccuracy
	EngineMistake
	EngineBlunder
	RepertoireMatch
	RepertoireAlternative
	RepertoireOpponentMove
	BreaksOpponentRepertoire
	NotFound
)

var annotationNames = map[AnnotationType]string{
	Played:                   "played",
	BreaksRepertoire:         "breaks-repertoire",
	EngineGood:               "engine-good",
	EngineInaccuracy:         "engine-inaccuracy",
	EngineMistake:            "engine-mistake",
	EngineBlunder:            "engine-blunder",
	RepertoireMatch:          "repertoire-match",
	RepertoireAlternative:    "repertoire-alternative",
	RepertoireOpponentMove:   "repertoire-opponent-move",
	BreaksOpponentRepertoire: "breaks-opponent-repertoire",
	NotFound:                 "not-found",
}

func (a AnnotationType) String() string {
	if name, ok := annotationNames[a]; ok {
		return name
	}
	return fmt.Sprintf("annotation(%d)", int(a))
}

// IsRepertoire reports whether the classification keeps the line inside the repertoire.
func (a AnnotationType) IsRepertoire() bool {
	return a == RepertoireMatch || a == RepertoireAlternative || a == RepertoireOpponentMove
}

// Annotation marks a move arrow (from, to) with a classification.
type Annotation struct {
	Type AnnotationType `json:"type" yaml:"type"`
	From string         `json:"from" yaml:"from"`
	To   string         `json:"to" yaml:"to"`
}

// NewAnnotation creates an annotation for a move between two squares.
func NewAnnotation(t AnnotationType, from, to string) Annotation {
	return Annotation{Type: t, From: from, To: to}
}

// ValidateBookName checks if a repertoire name is valid (non-empty, within length limits).
func ValidateBookName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("book name cannot be empty or whitespace")
	}
	if len(name) > 255 {
		return fmt.Errorf("book name too long (max 255 characters)")
	}
	if strings.ContainsAny(name, ":/") {
		return fmt.Errorf("book name cannot contain ':' or '/'")
	}
	return nil
}

// DrillRecord is the stored outcome of one drilled line.
type DrillRecord struct {
	ID       uuid.UUID `json:"id"`
	Book     string    `json:"book"`
	Side     Side      `json:"side"`
	Outcome  string    `json:"outcome"`
	Streak   int       `json:"streak"`
	Line     []string  `json:"line"`
	PlayedAt time.Time `json:"played_at"`
}

// NewDrillRecord creates a drill record with generated UUID and current timestamp.
func NewDrillRecord(book string, side Side, outcome string, streak int, line []string) *DrillRecord {
	return &DrillRecord{
		ID:       uuid.New(),
		Book:     book,
		Side:     side,
		Outcome:  outcome,
		Streak:   streak,
		Line:     append([]string(nil), line...),
		PlayedAt: time.Now(),
	}
}

// Succeeded reports whether the drilled line ended without breaking the repertoire.
func (d *DrillRecord) Succeeded() bool {
	return d.Streak > 0
}
