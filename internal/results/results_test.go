// ABOUTME: Tests for drill statistics and scoring
// ABOUTME: Covers record metrics, result attribution, completeness and option sets

package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/history"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/rules"
)

const (
	startPosition     = fen.StartKey
	postE4            = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq"
	postE4E5          = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq"
	postE4E5Nf3       = "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq"
	postE4E5Nf3Nc6    = "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq"
	postE4E5Nf3Nc6Bc4 = "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq"
)

var drilledLine = []string{"e4", "a5", "Nc3", "b5", "a3", "f5", "g4"}

// line plays sans into a fresh history and wraps it as a result.
func line(t *testing.T, streak int, sans ...string) Result {
	t.Helper()
	h := history.New()
	engine := rules.NewStandard()
	var last models.MoveResult
	for _, san := range sans {
		m, err := engine.ApplyMove(h.LatestPosition().FEN, san)
		require.NoError(t, err, "apply %s", san)
		h.PushMove(m, -1)
		last = m
	}
	return Result{History: h, Outcome: "player deviated", FinalMove: last, Streak: streak}
}

func book(t *testing.T, side models.Side, lines ...[]string) *repertoire.Repertoire {
	t.Helper()
	r := repertoire.New()
	for _, l := range lines {
		require.NoError(t, r.PushLine(l, side))
	}
	return r
}

func TestPositionRecord_Score(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"one success", []float64{3}, 0},
		{"many successes", []float64{12, 7, 2, 5, 2}, 0},
		{"one failure", []float64{-1}, 1},
		{"two failures", []float64{-1, -3}, 0.5},
		{"mixed", []float64{-2, -2, 3}, 1.0 / 3},
		{"alternating", []float64{-2, 1, -2, 3}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewPositionRecord(5)
			for _, s := range tt.scores {
				r.PushScore(s)
			}
			assert.InDelta(t, tt.want, r.Score(), 1e-9)
		})
	}
}

func TestPositionRecord_WindowEviction(t *testing.T) {
	r := NewPositionRecord(10)
	for _, s := range []float64{-2, 1, -2, 3} {
		r.PushScore(s)
	}
	assert.InDelta(t, 0.25, r.Score(), 1e-9)

	for i := 0; i < 10; i++ {
		r.PushScore(1)
	}
	assert.InDelta(t, 0, r.Score(), 1e-9)
	assert.Len(t, r.Scores(), r.Capacity())
}

func TestPositionRecord_VisitScore(t *testing.T) {
	r := NewPositionRecord(10)
	assert.InDelta(t, 0, r.VisitScore(), 1e-9)
	for i := 1; i <= 14; i++ {
		r.PushScore(1)
		want := min(float64(i)/10, 1)
		assert.InDelta(t, want, r.VisitScore(), 1e-9, "after %d pushes", i)
	}
}

func TestPositionRecord_Support(t *testing.T) {
	r := NewPositionRecord(10)
	assert.InDelta(t, 0, r.Support(), 1e-9)

	for i := 0; i < 10; i++ {
		r.PushScore(1)
	}
	assert.InDelta(t, 0, r.Support(), 1e-9)

	failing := NewPositionRecord(10)
	for i := 0; i < 10; i++ {
		failing.PushScore(-1)
	}
	assert.InDelta(t, 1, failing.Support(), 1e-9)

	mixed := NewPositionRecord(8)
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			mixed.PushScore(-1)
		} else {
			mixed.PushScore(1)
		}
	}
	assert.InDelta(t, 0.5, mixed.Support(), 1e-9)
}

func TestPositionRecord_CorrectPercentage(t *testing.T) {
	r := NewPositionRecord(5)
	assert.InDelta(t, 0, r.CorrectPercentage(), 1e-9)
	for _, s := range []float64{1, -1, -2, 3} {
		r.PushScore(s)
	}
	assert.InDelta(t, 0.75, r.CorrectPercentage(), 1e-9)
}

func TestAddResult_Empty(t *testing.T) {
	s := New(DefaultConfig())
	assert.Equal(t, []float64{}, s.ResultsFor(startPosition, models.White))
}

func TestAddResult_SinglePosition(t *testing.T) {
	s := New(DefaultConfig())
	s.AddResult(line(t, 1, "e4"), models.White)
	assert.Equal(t, []float64{1}, s.ResultsFor(startPosition, models.White))
	assert.Empty(t, s.ResultsFor(startPosition, models.Black))

	s.AddResult(line(t, -1, "c4"), models.White)
	assert.Equal(t, []float64{1, -1}, s.ResultsFor(startPosition, models.White))
}

func TestAddResult_Line(t *testing.T) {
	s := New(DefaultConfig())
	s.AddResult(line(t, -3, "e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5"), models.Black)

	for _, key := range []string{startPosition, postE4, postE4E5, postE4E5Nf3, postE4E5Nf3Nc6, postE4E5Nf3Nc6Bc4} {
		assert.Empty(t, s.ResultsFor(key, models.White), key)
	}
	assert.Empty(t, s.ResultsFor(startPosition, models.Black))
	assert.Equal(t, []float64{-3}, s.ResultsFor(postE4, models.Black))
	assert.Empty(t, s.ResultsFor(postE4E5, models.Black))
	assert.Equal(t, []float64{-2}, s.ResultsFor(postE4E5Nf3, models.Black))
	assert.Empty(t, s.ResultsFor(postE4E5Nf3Nc6, models.Black))
	assert.Equal(t, []float64{-1}, s.ResultsFor(postE4E5Nf3Nc6Bc4, models.Black))
}

func populated(t *testing.T) *Summary {
	t.Helper()
	s := New(DefaultConfig())
	s.AddResult(line(t, -3, "e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5"), models.Black)
	s.AddResult(line(t, -3, "e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5"), models.Black)
	s.AddResult(line(t, -2, "e4", "e5", "Nf3", "Nf6"), models.Black)
	s.AddResult(line(t, 3, "e4", "e5", "Nf3", "Nc6", "Bc4", "Nf6"), models.Black)
	return s
}

func TestAddResult_Multiple(t *testing.T) {
	s := populated(t)
	assert.Equal(t, []float64{-3, -3, -2, 3}, s.ResultsFor(postE4, models.Black))
	assert.Equal(t, []float64{-2, -2, -1, 2}, s.ResultsFor(postE4E5Nf3, models.Black))
	assert.Equal(t, []float64{-1, -1, 1}, s.ResultsFor(postE4E5Nf3Nc6Bc4, models.Black))
}

func TestAddResult_NilHistory(t *testing.T) {
	s := New(DefaultConfig())
	s.AddResult(Result{Streak: 2}, models.White)
	assert.Empty(t, s.ResultsFor(startPosition, models.White))
}

func TestExportLoad_Empty(t *testing.T) {
	s := Load(New(DefaultConfig()).Export(), DefaultConfig())
	assert.Empty(t, s.ResultsFor(startPosition, models.White))
	assert.Empty(t, s.ResultsFor(postE4E5Nf3, models.Black))
}

func TestExportLoad_Populated(t *testing.T) {
	data, err := populated(t).MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"positionMapWhite"`)
	assert.Contains(t, string(data), `"_testHistory"`)
	assert.Contains(t, string(data), `"historyLength":5`)

	s, err := FromJSON(data, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []float64{-3, -3, -2, 3}, s.ResultsFor(postE4, models.Black))
	assert.Equal(t, []float64{-2, -2, -1, 2}, s.ResultsFor(postE4E5Nf3, models.Black))
	assert.Equal(t, []float64{-1, -1, 1}, s.ResultsFor(postE4E5Nf3Nc6Bc4, models.Black))
}

func TestExportLoad_DeepCompleteness(t *testing.T) {
	rep := book(t, models.White, drilledLine)
	pre := New(DefaultConfig())
	for i := 0; i < pre.Config().HistoryLength; i++ {
		pre.AddResult(line(t, 4, drilledLine...), models.White)
	}

	s := Load(pre.Export(), DefaultConfig())
	c, err := s.Completeness(startPosition, models.White, rep, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1, c, 1e-9)
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte("nope"), DefaultConfig())
	assert.Error(t, err)
}

func TestShallowScore(t *testing.T) {
	cfg := DefaultConfig()
	s := New(cfg)
	for i := 0; i < cfg.HistoryLength-1; i++ {
		s.AddResult(line(t, 1, "e4"), models.White)
	}
	got, err := s.ShallowScore(startPosition, models.White)
	require.NoError(t, err)
	want := cfg.ScoreFactor + (1-cfg.ScoreFactor)*float64(cfg.HistoryLength-1)/float64(cfg.HistoryLength)
	assert.InDelta(t, want, got, 1e-9)

	empty, err := s.ShallowScore(postE4, models.White)
	require.NoError(t, err)
	assert.InDelta(t, 0, empty, 1e-9)
}

func TestCompleteness_EmptyHistory(t *testing.T) {
	c, err := New(DefaultConfig()).Completeness(startPosition, models.White, repertoire.New(), 4)
	require.NoError(t, err)
	assert.InDelta(t, 0, c, 1e-9)
}

func TestCompleteness_NoLayers(t *testing.T) {
	c, err := New(DefaultConfig()).Completeness(postE4, models.White, repertoire.New(), 4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c)
}

func TestCompleteness_Leaf(t *testing.T) {
	cfg := DefaultConfig()

	partial := New(cfg)
	for i := 0; i < cfg.HistoryLength-1; i++ {
		partial.AddResult(line(t, 1, "e4"), models.White)
	}
	c, err := partial.Completeness(startPosition, models.White, repertoire.New(), cfg.TestDepth)
	require.NoError(t, err)
	assert.InDelta(t, cfg.ScoreFactor+(1-cfg.ScoreFactor)*float64(cfg.HistoryLength-1)/float64(cfg.HistoryLength), c, 1e-9)

	full := New(cfg)
	for i := 0; i < cfg.HistoryLength; i++ {
		full.AddResult(line(t, 1, "e4"), models.White)
	}
	c, err = full.Completeness(startPosition, models.White, repertoire.New(), cfg.TestDepth)
	require.NoError(t, err)
	assert.InDelta(t, 1, c, 1e-9)
}

func TestCompleteness_Mixed(t *testing.T) {
	cfg := DefaultConfig()
	s := New(cfg)
	for i := 0; i < cfg.HistoryLength; i++ {
		streak := 1
		if i%2 == 1 {
			streak = -1
		}
		s.AddResult(line(t, streak, "e4"), models.White)
	}
	c, err := s.Completeness(startPosition, models.White, repertoire.New(), cfg.TestDepth)
	require.NoError(t, err)
	assert.InDelta(t, (1-cfg.ScoreFactor)+cfg.ScoreFactor*0.6, c, 1e-9)
}

func TestCompleteness_Depth(t *testing.T) {
	rep := book(t, models.White,
		[]string{"e4", "a5", "Nc3", "b5", "a3", "f5", "g4"},
		[]string{"e4", "a5", "Nc3", "c5", "a3", "f5", "g4"},
		[]string{"e4", "h5", "Nc3", "g5", "a3", "a5", "g4"},
		[]string{"e4", "h5", "Nc3", "g5", "a3", "b5", "g4"},
		[]string{"e4", "h5", "Nc3", "f5", "a3", "c5", "g4"},
		[]string{"e4", "h5", "Nc3", "f5", "a3", "d5", "g4"},
	)

	s := New(DefaultConfig())
	for i := 0; i < s.Config().HistoryLength; i++ {
		s.AddResult(line(t, 4, drilledLine...), models.White)
	}

	completeness := func(depth int) float64 {
		c, err := s.Completeness(startPosition, models.White, rep, depth)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
		return c
	}

	c0, c1, c2 := completeness(0), completeness(1), completeness(2)
	assert.InDelta(t, 1, c0, 1e-9)
	assert.Less(t, c1, c0)
	assert.Less(t, c2, c1)

	for i := 0; i < s.Config().HistoryLength; i++ {
		s.AddResult(line(t, 4, "e4", "h5", "Nc3", "b5", "a3", "f5", "g4"), models.White)
	}

	assert.InDelta(t, c0, completeness(0), 1e-9)
	assert.Greater(t, completeness(1), c1)
	assert.Greater(t, completeness(2), c2)
}

func TestTestOptionSet_FirstMove(t *testing.T) {
	rep := repertoire.New()
	for _, san := range []string{"e4", "d4"} {
		m, err := rules.NewStandard().ApplyMove(startPosition, san)
		require.NoError(t, err)
		rep.AddMove(startPosition, m, models.White)
	}

	s := New(DefaultConfig())
	s.AddResult(line(t, -1, "e4", "e5"), models.Black)
	s.AddResult(line(t, -1, "e4", "e5"), models.Black)

	set, err := s.TestOptionSet(startPosition, models.Black, rep)
	require.NoError(t, err)
	require.Len(t, set.Moves, 2)
	assert.Equal(t, "e4", set.Moves[0].SAN)
	assert.InDelta(t, 0.4*0.7, set.Moves[0].Probability, 1e-9)
	assert.Equal(t, "d4", set.Moves[1].SAN)
	assert.Equal(t, 0.0, set.Moves[1].Probability)
	assert.Equal(t, 20.0, set.Support)
	assert.Equal(t, startPosition, set.Position)
}

func TestTestOptionSet_AfterStart(t *testing.T) {
	rep := book(t, models.White, []string{"e4", "e5", "Nf3", "Nc6", "Bc4"})

	s := New(DefaultConfig())
	s.AddResult(line(t, -3, "e4", "e5", "Nf3", "Nc6", "Be2"), models.White)
	s.AddResult(line(t, -3, "e4", "e5", "Nf3", "Nc6", "Be2"), models.White)

	set, err := s.TestOptionSet(postE4E5Nf3, models.White, rep)
	require.NoError(t, err)
	require.Len(t, set.Moves, 1)
	assert.Equal(t, "Nc6", set.Moves[0].SAN)
	assert.GreaterOrEqual(t, set.Moves[0].Probability, 0.0)
	assert.LessOrEqual(t, set.Moves[0].Probability, 1.0)
}

func TestTestOptionSet_BlackBook(t *testing.T) {
	rep := book(t, models.Black, []string{"e4", "e5", "Nf3", "Nc6", "Bc4"})

	s := New(DefaultConfig())
	s.AddResult(line(t, -2, "e4", "e5", "Nf3", "Nc6"), models.Black)
	s.AddResult(line(t, -2, "e4", "e5", "Nf3", "Nc6"), models.Black)

	set, err := s.TestOptionSet(postE4E5, models.Black, rep)
	require.NoError(t, err)
	require.Len(t, set.Moves, 1)
	assert.Equal(t, "Nf3", set.Moves[0].SAN)
	assert.GreaterOrEqual(t, set.Moves[0].Probability, 0.0)
	assert.LessOrEqual(t, set.Moves[0].Probability, 1.0)
}

func TestTestOptionSet_GrowsWithPractice(t *testing.T) {
	rep := book(t, models.White, drilledLine)
	s := New(DefaultConfig())

	previous := 0.0
	for i := 0; i < s.Config().HistoryLength-1; i++ {
		s.AddResult(line(t, 4, drilledLine...), models.White)
		set, err := s.TestOptionSet(startPosition, models.White, rep)
		require.NoError(t, err)
		require.Len(t, set.Moves, 1)
		assert.Greater(t, set.Moves[0].Probability, previous)
		previous = set.Moves[0].Probability
	}
}

func TestTestOptionSet_DrilledLineExcluded(t *testing.T) {
	rep := book(t, models.White, drilledLine)
	s := New(DefaultConfig())
	for i := 0; i < s.Config().HistoryLength; i++ {
		s.AddResult(line(t, 4, drilledLine...), models.White)
	}

	set, err := s.TestOptionSet(startPosition, models.White, rep)
	require.NoError(t, err)
	require.Len(t, set.Moves, 1)
	assert.Equal(t, 0.0, set.Moves[0].Probability)

	coverage, err := s.CoverageOptionSet(startPosition, models.White, rep)
	require.NoError(t, err)
	require.Len(t, coverage.Moves, 1)
	assert.Equal(t, 0.0, coverage.Moves[0].Probability)
}

func TestCoverageOptionSet_FreshBranch(t *testing.T) {
	rep := book(t, models.White, []string{"e4", "e5"}, []string{"e4", "c5"})
	s := New(DefaultConfig())

	set, err := s.CoverageOptionSet(postE4, models.White, rep)
	require.NoError(t, err)
	require.Len(t, set.Moves, 2)
	for _, m := range set.Moves {
		assert.InDelta(t, 1, m.Probability, 1e-9, m.SAN)
	}
	assert.Equal(t, DefaultConfig().CoverageSupport, set.Support)
}
