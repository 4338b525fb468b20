// ABOUTME: Per-side drill statistics keyed by position
// ABOUTME: Computes shallow scores, depth-decayed completeness and test option sets

package results

import (
	"errors"
	"fmt"

	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/history"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/selector"
)

// ErrInvariantViolation means a scoring term left its [0, 1] range.
var ErrInvariantViolation = errors.New("results invariant violation")

// Option set names produced by a Summary.
const (
	SourceRepertoire = selector.DefaultSource
	SourceCoverage   = "coverage"
)

// Result is one finished drill line.
type Result struct {
	History   *history.History
	Outcome   string
	FinalMove models.MoveResult
	Streak    int
	Tested    models.Side
}

// Tree is the repertoire topology walked by completeness.
type Tree interface {
	ChildPositions(position string, side models.Side, depth int) map[int][]string
	OpponentMoves(position string) []repertoire.Option
}

var _ Tree = (*repertoire.Repertoire)(nil)

// Summary aggregates position records for each side under test.
type Summary struct {
	white map[string]*PositionRecord
	black map[string]*PositionRecord
	cfg   Config
}

// New creates an empty summary.
func New(cfg Config) *Summary {
	return &Summary{
		white: make(map[string]*PositionRecord),
		black: make(map[string]*PositionRecord),
		cfg:   cfg,
	}
}

// Config returns the scoring configuration.
func (s *Summary) Config() Config {
	return s.cfg
}

func (s *Summary) records(side models.Side) map[string]*PositionRecord {
	if side == models.Black {
		return s.black
	}
	return s.white
}

// Record returns the record for position and side, if any.
func (s *Summary) Record(position string, side models.Side) (*PositionRecord, bool) {
	r, ok := s.records(side)[fen.Key(position)]
	return r, ok
}

func (s *Summary) recordFor(key string, side models.Side) *PositionRecord {
	m := s.records(side)
	r, ok := m[key]
	if !ok {
		r = NewPositionRecord(s.cfg.HistoryLength)
		m[key] = r
	}
	return r
}

// AddResult scores every position of the line where side was to move.
// The first such position receives the streak and each later one moves a
// step closer to zero, so positions near the start of the line weigh most.
func (s *Summary) AddResult(result Result, side models.Side) {
	if result.History == nil {
		return
	}
	positions := result.History.Positions()
	step := float64(sign(result.Streak))
	score := float64(result.Streak)
	for i := 0; i < len(positions)-1; i++ {
		if result.History.PlayerToMoveAt(i) != side {
			continue
		}
		s.recordFor(positions[i].Key(), side).PushScore(score)
		score -= step
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// ResultsFor returns the recorded scores of position for side.
func (s *Summary) ResultsFor(position string, side models.Side) []float64 {
	r, ok := s.Record(position, side)
	if !ok {
		return []float64{}
	}
	return r.Scores()
}

// ShallowScore blends how much of the window was visited with how often the
// position was answered correctly.
func (s *Summary) ShallowScore(position string, side models.Side) (float64, error) {
	r, ok := s.Record(position, side)
	if !ok {
		r = NewPositionRecord(s.cfg.HistoryLength)
	}
	visit := r.VisitScore()
	correct := r.CorrectPercentage()
	if visit > 1 || correct > 1 {
		return 0, fmt.Errorf("shallow score of %s: visit %.4f correct %.4f: %w", fen.Key(position), visit, correct, ErrInvariantViolation)
	}
	return visit*(1-s.cfg.ScoreFactor) + correct*s.cfg.ScoreFactor, nil
}

// Completeness aggregates shallow scores layer by layer below position. Each
// layer takes LayerFactor of the remaining weight, so shallow layers dominate.
// Returns 0 when no position of side exists below position.
func (s *Summary) Completeness(position string, side models.Side, tree Tree, depth int) (float64, error) {
	layers := tree.ChildPositions(position, side, depth)

	remaining := 1.0
	total := 0.0
	for layer := 0; layer <= depth; layer++ {
		keys := layers[layer]
		if len(keys) == 0 {
			continue
		}
		var sum float64
		for _, key := range keys {
			shallow, err := s.ShallowScore(key, side)
			if err != nil {
				return 0, err
			}
			sum += shallow
		}
		consumed := remaining * s.cfg.LayerFactor
		total += consumed * (sum / float64(len(keys)))
		remaining -= consumed
	}

	if remaining == 1 {
		return 0, nil
	}
	return total / (1 - remaining), nil
}

// TestOptionSet weights every recorded move at position by the completeness
// of the branch it leads to. Branches at or above CompleteThreshold get zero.
func (s *Summary) TestOptionSet(position string, side models.Side, tree Tree) (selector.OptionSet, error) {
	moves, err := s.branchMoves(position, side, tree, func(c float64) float64 { return c })
	if err != nil {
		return selector.OptionSet{}, err
	}
	return selector.NewOptionSet(position, s.cfg.TestSupport, moves), nil
}

// CoverageOptionSet weights every incomplete branch at position by how much
// of it is left to drill. Fresh branches get full weight.
func (s *Summary) CoverageOptionSet(position string, side models.Side, tree Tree) (selector.OptionSet, error) {
	moves, err := s.branchMoves(position, side, tree, func(c float64) float64 { return 1 - c })
	if err != nil {
		return selector.OptionSet{}, err
	}
	return selector.NewOptionSet(position, s.cfg.CoverageSupport, moves), nil
}

func (s *Summary) branchMoves(position string, side models.Side, tree Tree, weight func(float64) float64) ([]selector.ProbabilisticMove, error) {
	options := tree.OpponentMoves(position)
	moves := make([]selector.ProbabilisticMove, 0, len(options))
	for _, o := range options {
		c, err := s.Completeness(o.ResultingKey, side, tree, s.cfg.TestDepth)
		if err != nil {
			return nil, fmt.Errorf("completeness after %s: %w", o.DisplayNotation, err)
		}
		p := 0.0
		if c < s.cfg.CompleteThreshold {
			p = weight(c)
		}
		moves = append(moves, selector.ProbabilisticMove{SAN: o.DisplayNotation, Probability: p})
	}
	return moves, nil
}
