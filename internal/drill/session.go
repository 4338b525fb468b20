// ABOUTME: Interactive drill over a repertoire
// ABOUTME: Plays weighted opponent replies, classifies player moves and scores finished lines

package drill

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/harper/repertoire/internal/history"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/results"
	"github.com/harper/repertoire/internal/rules"
	"github.com/harper/repertoire/internal/selector"
)

// Outcome labels of finished lines.
const (
	OutcomeDeviated  = "player deviated"
	OutcomeComplete  = "line complete"
	OutcomeEndOfBook = "end of repertoire"
)

var (
	// ErrFinished is returned when moves are played after the line ended.
	ErrFinished = errors.New("drill line finished")
	// ErrNotPlayerTurn is returned when the opponent is to move.
	ErrNotPlayerTurn = errors.New("not the player's turn")
)

// Turn describes what happened after a call to Start or Play.
type Turn struct {
	Move       *models.MoveResult
	Annotation models.AnnotationType
	Reply      *models.MoveResult
	Result     *results.Result
}

// Session drills one side of a repertoire, one line at a time.
type Session struct {
	book     *repertoire.Repertoire
	summary  *results.Summary
	side     models.Side
	engine   rules.Engine
	selector *selector.Selector
	logger   *slog.Logger

	history     *history.History
	playerMoves int
	result      *results.Result
}

// Option configures a Session.
type Option func(*Session)

// WithRandom sets the random source used to pick opponent replies.
func WithRandom(r selector.RandomSource) Option {
	return func(s *Session) {
		s.selector = newSelector(selector.WithRandom(r))
	}
}

// WithEngine replaces the rules engine.
func WithEngine(e rules.Engine) Option {
	return func(s *Session) {
		s.engine = e
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

func newSelector(opts ...selector.Option) *selector.Selector {
	opts = append([]selector.Option{selector.WithRequired(results.SourceRepertoire, results.SourceCoverage)}, opts...)
	return selector.New(opts...)
}

// NewSession creates a drill of side over book that records into summary.
func NewSession(book *repertoire.Repertoire, summary *results.Summary, side models.Side, opts ...Option) *Session {
	s := &Session{
		book:     book,
		summary:  summary,
		side:     side,
		engine:   rules.NewStandard(),
		selector: newSelector(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = history.New(history.WithLogger(s.logger))
	return s
}

// Side returns the side being drilled.
func (s *Session) Side() models.Side {
	return s.side
}

// Summary returns the statistics the session records into.
func (s *Session) Summary() *results.Summary {
	return s.summary
}

// History returns the log of the current line.
func (s *Session) History() *history.History {
	return s.history
}

// Position returns the current position.
func (s *Session) Position() string {
	return s.history.LatestPosition().FEN
}

// Done reports whether the current line has finished.
func (s *Session) Done() bool {
	return s.result != nil
}

// Result returns the finished line, if any.
func (s *Session) Result() *results.Result {
	return s.result
}

// Start begins a new line. When the opponent moves first its reply is played.
func (s *Session) Start() (*Turn, error) {
	s.history = history.New(history.WithLogger(s.logger))
	s.selector.Clear()
	s.playerMoves = 0
	s.result = nil

	turn := &Turn{}
	if err := s.advance(turn); err != nil {
		return nil, err
	}
	return turn, nil
}

// Play applies the player's move. Illegal moves return an error and leave
// the line untouched.
func (s *Session) Play(san string) (*Turn, error) {
	if s.Done() {
		return nil, ErrFinished
	}
	if s.history.PlayerToMove() != s.side {
		return nil, ErrNotPlayerTurn
	}

	position := s.Position()
	move, err := s.engine.ApplyMove(position, san)
	if err != nil {
		return nil, fmt.Errorf("play %s: %w", san, err)
	}

	ann := s.book.Evaluate(position, move.Notation, s.side)
	s.history.PushAnnotatedMove(move, []models.Annotation{models.NewAnnotation(ann, move.From, move.To)}, -1)
	s.playerMoves++

	turn := &Turn{Move: &move, Annotation: ann}
	if ann == models.BreaksRepertoire || ann == models.NotFound {
		s.finish(turn, -s.playerMoves, OutcomeDeviated, move)
		return turn, nil
	}
	if err := s.advance(turn); err != nil {
		return nil, err
	}
	return turn, nil
}

// Hint returns the repertoire moves expected at the current position.
func (s *Session) Hint() []string {
	var out []string
	for _, o := range s.book.PlayerMoves(s.Position()) {
		out = append(out, o.DisplayNotation)
	}
	return out
}

// advance plays the opponent's reply if it is their turn and finishes the
// line when the player has nothing left to answer.
func (s *Session) advance(turn *Turn) error {
	var last models.MoveResult
	if turn.Move != nil {
		last = *turn.Move
	}

	if s.history.PlayerToMove() != s.side {
		position := s.Position()
		reply, err := s.pickReply(position)
		if errors.Is(err, selector.ErrNoCandidates) {
			s.finish(turn, s.playerMoves, OutcomeComplete, last)
			return nil
		}
		if err != nil {
			return err
		}

		ann := s.book.Evaluate(position, reply.Notation, s.side)
		s.history.PushAnnotatedMove(reply, []models.Annotation{models.NewAnnotation(ann, reply.From, reply.To)}, -1)
		turn.Reply = &reply
		last = reply
		s.logger.Debug("opponent reply", "move", reply.Notation, "annotation", ann)
	}

	if !s.book.HasPlayerMove(s.Position()) {
		s.finish(turn, s.playerMoves, OutcomeEndOfBook, last)
	}
	return nil
}

func (s *Session) pickReply(position string) (models.MoveResult, error) {
	if err := pushSources(s.selector, s.book, s.summary, s.side, position); err != nil {
		return models.MoveResult{}, err
	}

	san, err := s.selector.Move(position)
	if err != nil {
		return models.MoveResult{}, err
	}
	return s.engine.ApplyMove(position, san)
}

// finish closes the line and records it. Lines without a player move test
// nothing and are not recorded.
func (s *Session) finish(turn *Turn, streak int, outcome string, last models.MoveResult) {
	s.result = &results.Result{
		History:   s.history,
		Outcome:   outcome,
		FinalMove: last,
		Streak:    streak,
		Tested:    s.side,
	}
	if streak != 0 {
		s.summary.AddResult(*s.result, s.side)
	}
	turn.Result = s.result
	s.logger.Debug("line finished", "outcome", outcome, "streak", streak, "moves", s.history.Moves())
}
