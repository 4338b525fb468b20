// ABOUTME: Weighted random move selection over named probability sources
// ABOUTME: Gates on source readiness and supports a priority filter

package selector

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/harper/repertoire/internal/fen"
)

// DefaultSource is the option set required when none is configured.
const DefaultSource = "repertoire"

var (
	// ErrInvariantViolation means a move weight exceeded its set's support.
	ErrInvariantViolation = errors.New("selector invariant violation")
	// ErrNotReady means a required option set is missing or stale.
	ErrNotReady = errors.New("selector not ready")
	// ErrNoCandidates means no move carries positive weight.
	ErrNoCandidates = errors.New("no candidate moves")
)

// ProbabilisticMove is a move with an unnormalised weight.
type ProbabilisticMove struct {
	SAN         string  `json:"san" yaml:"san"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// WeightedMove is a move with its share of a set's support.
type WeightedMove struct {
	SAN    string
	Weight float64
}

// OptionSet is one named source's view of the candidate moves at a position.
type OptionSet struct {
	Position string              `json:"position" yaml:"position"`
	Support  float64             `json:"support" yaml:"support"`
	Moves    []ProbabilisticMove `json:"moves" yaml:"moves"`
}

// NewOptionSet creates an option set for position.
func NewOptionSet(position string, support float64, moves []ProbabilisticMove) OptionSet {
	return OptionSet{Position: fen.Key(position), Support: support, Moves: moves}
}

// SANs returns the notation of every move in the set.
func (o OptionSet) SANs() []string {
	out := make([]string, len(o.Moves))
	for i, m := range o.Moves {
		out[i] = m.SAN
	}
	return out
}

// SupportedMoves distributes the set's support over the moves in allowed,
// scaled by the share of probability those moves carry. A nil allowed list
// keeps every move. Returns no moves when the kept probability is zero.
func (o OptionSet) SupportedMoves(allowed []string) ([]WeightedMove, error) {
	var total, filtered float64
	var kept []ProbabilisticMove
	for _, m := range o.Moves {
		total += m.Probability
		if allowed == nil || slices.Contains(allowed, m.SAN) {
			kept = append(kept, m)
			filtered += m.Probability
		}
	}
	if filtered == 0 {
		return nil, nil
	}

	adjusted := o.Support * (filtered / total)
	out := make([]WeightedMove, 0, len(kept))
	for _, m := range kept {
		w := m.Probability / filtered * adjusted
		if w > o.Support {
			return nil, fmt.Errorf("move %s weight %.4f above support %.4f: %w", m.SAN, w, o.Support, ErrInvariantViolation)
		}
		out = append(out, WeightedMove{SAN: m.SAN, Weight: w})
	}
	return out, nil
}

// RandomSource supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Selector picks moves by sampling the merged weights of its required sets.
type Selector struct {
	required []string
	sets     map[string]OptionSet
	priority string
	rand     RandomSource
}

// Option configures a Selector.
type Option func(*Selector)

// WithRequired sets the names of the option sets that must be present.
func WithRequired(names ...string) Option {
	return func(s *Selector) {
		s.required = slices.Clone(names)
	}
}

// WithRandom sets the source of draws.
func WithRandom(r RandomSource) Option {
	return func(s *Selector) {
		s.rand = r
	}
}

// New creates a selector requiring the repertoire source by default.
func New(opts ...Option) *Selector {
	s := &Selector{
		required: []string{DefaultSource},
		sets:     make(map[string]OptionSet),
		rand:     globalSource{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PushOptions stores or replaces the named option set.
func (s *Selector) PushOptions(name string, set OptionSet) {
	set.Position = fen.Key(set.Position)
	s.sets[name] = set
}

// SetPrioritySource restricts candidates to the moves of the named set.
// An empty name removes the restriction.
func (s *Selector) SetPrioritySource(name string) {
	s.priority = name
}

// Clear drops every stored option set.
func (s *Selector) Clear() {
	clear(s.sets)
}

// IsReady reports whether every required set has been pushed for position.
func (s *Selector) IsReady(position string) bool {
	key := fen.Key(position)
	for _, name := range s.required {
		set, ok := s.sets[name]
		if !ok || set.Position != key {
			return false
		}
	}
	return true
}

// Weights returns the merged weighted moves of the required sets for position.
func (s *Selector) Weights(position string) ([]WeightedMove, error) {
	if !s.IsReady(position) {
		return nil, fmt.Errorf("position %s: %w", fen.Key(position), ErrNotReady)
	}

	var allowed []string
	if s.priority != "" {
		if set, ok := s.sets[s.priority]; ok {
			allowed = set.SANs()
		}
	}

	var weights []WeightedMove
	for _, name := range s.required {
		moves, err := s.sets[name].SupportedMoves(allowed)
		if err != nil {
			return nil, fmt.Errorf("option set %s: %w", name, err)
		}
		weights = append(weights, moves...)
	}
	return weights, nil
}

// Move draws one move for position. It consumes exactly one random draw
// once candidates exist.
func (s *Selector) Move(position string) (string, error) {
	weights, err := s.Weights(position)
	if err != nil {
		return "", err
	}

	var total float64
	for _, w := range weights {
		total += w.Weight
	}
	if len(weights) == 0 || total <= 0 {
		return "", ErrNoCandidates
	}

	selection := total * s.rand.Float64()
	current := 0.0
	idx := 0
	for steps := 0; current+weights[idx].Weight <= selection; steps++ {
		if steps >= 2*len(weights) {
			break
		}
		current += weights[idx].Weight
		idx = (idx + 1) % len(weights)
	}
	return weights[idx].SAN, nil
}
