// ABOUTME: Tests for single-position reply suggestions
// ABOUTME: Checks coverage weighting of fresh branches and exhausted positions

package drill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/results"
	"github.com/harper/repertoire/internal/selector"
)

func TestSuggest_FreshBranchesShareCoverage(t *testing.T) {
	book := repertoire.New()
	require.NoError(t, book.PushLine([]string{"e4", "e5", "Nf3"}, models.White))
	require.NoError(t, book.PushLine([]string{"e4", "c5", "Nf3"}, models.White))
	summary := results.New(results.DefaultConfig())

	s, err := Suggest(book, summary, models.White, postE4, fixed(0))
	require.NoError(t, err)
	assert.Equal(t, "e5", s.Move)
	assert.Equal(t, postE4, s.Position)

	require.Len(t, s.Weights, 2)
	assert.Equal(t, selector.WeightedMove{SAN: "e5", Weight: 5}, s.Weights[0])
	assert.Equal(t, selector.WeightedMove{SAN: "c5", Weight: 5}, s.Weights[1])

	s, err = Suggest(book, summary, models.White, postE4, fixed(0.75))
	require.NoError(t, err)
	assert.Equal(t, "c5", s.Move)
}

func TestSuggest_NoOpponentMoves(t *testing.T) {
	book := repertoire.New()
	require.NoError(t, book.PushLine([]string{"e4", "e5"}, models.White))

	_, err := Suggest(book, results.New(results.DefaultConfig()), models.White, postE4E5, nil)
	assert.ErrorIs(t, err, selector.ErrNoCandidates)
}
