// ABOUTME: Opponent reply suggestions outside an interactive drill
// ABOUTME: Feeds the selector from the results summary for a single position

package drill

import (
	"fmt"

	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/results"
	"github.com/harper/repertoire/internal/selector"
)

// Suggestion is the reply a drill would pick at a position.
type Suggestion struct {
	Position string
	Move     string
	Weights  []selector.WeightedMove
}

// pushSources loads the test and coverage option sets of position into sel.
func pushSources(sel *selector.Selector, book *repertoire.Repertoire, summary *results.Summary, side models.Side, position string) error {
	test, err := summary.TestOptionSet(position, side, book)
	if err != nil {
		return fmt.Errorf("test options: %w", err)
	}
	coverage, err := summary.CoverageOptionSet(position, side, book)
	if err != nil {
		return fmt.Errorf("coverage options: %w", err)
	}
	sel.PushOptions(results.SourceRepertoire, test)
	sel.PushOptions(results.SourceCoverage, coverage)
	return nil
}

// Suggest picks the opponent reply a drill of side would play at position.
// It returns selector.ErrNoCandidates when every branch is complete.
func Suggest(book *repertoire.Repertoire, summary *results.Summary, side models.Side, position string, r selector.RandomSource) (*Suggestion, error) {
	var opts []selector.Option
	if r != nil {
		opts = append(opts, selector.WithRandom(r))
	}
	sel := newSelector(opts...)
	if err := pushSources(sel, book, summary, side, position); err != nil {
		return nil, err
	}

	weights, err := sel.Weights(position)
	if err != nil {
		return nil, err
	}
	move, err := sel.Move(position)
	if err != nil {
		return nil, err
	}
	return &Suggestion{Position: fen.Key(position), Move: move, Weights: weights}, nil
}
