// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Lets AI agents grow a repertoire, check lines and plan drills

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/repertoire/internal/drill"
	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/history"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/repertoire"
	"github.com/harper/repertoire/internal/selector"
	"github.com/harper/repertoire/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	s.registerAddLineTool()
	s.registerCheckLineTool()
	s.registerGetCompletenessTool()
	s.registerNextTestMoveTool()
}

// jsonResult renders output as the tool's text content.
func jsonResult(output any) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

var bookProperty = map[string]interface{}{
	"type":        "string",
	"description": "Repertoire name (defaults to the server's book)",
}

var movesProperty = map[string]interface{}{
	"type":        "array",
	"items":       map[string]interface{}{"type": "string"},
	"description": "Moves in SAN from the starting position (e.g., ['e4', 'e5', 'Nf3'])",
}

// AddLineInput defines input for add_line tool.
type AddLineInput struct {
	Book  string   `json:"book,omitempty"`
	Side  string   `json:"side,omitempty"`
	Moves []string `json:"moves"`
}

// BookOutput summarises a book after a change.
type BookOutput struct {
	Book      string `json:"book"`
	Side      string `json:"side"`
	Positions int    `json:"positions"`
	Added     int    `json:"added"`
}

func (s *Server) registerAddLineTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_line",
		Description: "Add a line of moves to a repertoire (creates the book if needed). The first new move of the repertoire side in each position becomes its main move.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"book":  bookProperty,
				"moves": movesProperty,
				"side": map[string]interface{}{
					"type":        "string",
					"description": "Side the book is built for when creating it: 'white' or 'black'",
				},
			},
			"required": []string{"moves"},
		},
	}, s.handleAddLine)
}

func (s *Server) handleAddLine(_ context.Context, _ *mcp.CallToolRequest, input AddLineInput) (*mcp.CallToolResult, BookOutput, error) {
	if len(input.Moves) == 0 {
		return nil, BookOutput{}, fmt.Errorf("moves are required")
	}
	name := s.bookName(input.Book)
	if err := models.ValidateBookName(name); err != nil {
		return nil, BookOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	side := models.White
	r := repertoire.New()
	book, err := s.repo.LoadRepertoire(name)
	switch {
	case err == nil:
		side = book.Side
		r = book.Repertoire()
	case errors.Is(err, storage.ErrNotFound):
		if input.Side != "" {
			if side, err = models.ParseSide(input.Side); err != nil {
				return nil, BookOutput{}, err
			}
		}
	default:
		return nil, BookOutput{}, fmt.Errorf("failed to load book: %w", err)
	}

	before := len(r.Positions())
	if err := r.PushLine(input.Moves, side); err != nil {
		return nil, BookOutput{}, err
	}
	if err := s.repo.SaveRepertoire(storage.NewBook(name, side, r)); err != nil {
		return nil, BookOutput{}, fmt.Errorf("failed to save book: %w", err)
	}

	output := BookOutput{
		Book:      name,
		Side:      side.Name(),
		Positions: len(r.Positions()),
		Added:     len(r.Positions()) - before,
	}
	s.logger.Debug("line added", "book", name, "moves", input.Moves, "added", output.Added)
	return jsonResult(output), output, nil
}

// CheckLineInput defines input for check_line tool.
type CheckLineInput struct {
	Book  string   `json:"book,omitempty"`
	Moves []string `json:"moves"`
}

// CheckedMove is the classification of one move of a line.
type CheckedMove struct {
	Ply          int    `json:"ply"`
	Move         string `json:"move"`
	Side         string `json:"side"`
	Annotation   string `json:"annotation"`
	InRepertoire bool   `json:"in_repertoire"`
}

// CheckLineOutput defines output for check_line tool.
type CheckLineOutput struct {
	Book          string        `json:"book"`
	Moves         []CheckedMove `json:"moves"`
	FinalPosition string        `json:"final_position"`
	// FirstDeviation is the ply of the first move that leaves the repertoire, or 0.
	FirstDeviation int `json:"first_deviation"`
}

func (s *Server) registerCheckLineTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "check_line",
		Description: "Classify each move of a line against a repertoire: main move, alternative, known opponent move, or a move that breaks the repertoire.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"book":  bookProperty,
				"moves": movesProperty,
			},
			"required": []string{"moves"},
		},
	}, s.handleCheckLine)
}

func (s *Server) handleCheckLine(_ context.Context, _ *mcp.CallToolRequest, input CheckLineInput) (*mcp.CallToolResult, CheckLineOutput, error) {
	name := s.bookName(input.Book)
	book, err := s.loadBook(name)
	if err != nil {
		return nil, CheckLineOutput{}, err
	}
	r := book.Repertoire()

	h := history.New(history.WithLogger(s.logger))
	output := CheckLineOutput{Book: name, Moves: make([]CheckedMove, 0, len(input.Moves))}
	for i, san := range input.Moves {
		position := h.LatestPosition().FEN
		move, err := s.engine.ApplyMove(position, san)
		if err != nil {
			return nil, CheckLineOutput{}, fmt.Errorf("move %d (%s): %w", i+1, san, err)
		}
		ann := r.Evaluate(position, move.Notation, book.Side)
		h.PushAnnotatedMove(move, []models.Annotation{models.NewAnnotation(ann, move.From, move.To)}, -1)

		output.Moves = append(output.Moves, CheckedMove{
			Ply:          i + 1,
			Move:         move.Notation,
			Side:         move.Side.Name(),
			Annotation:   ann.String(),
			InRepertoire: ann.IsRepertoire(),
		})
		if !ann.IsRepertoire() && output.FirstDeviation == 0 {
			output.FirstDeviation = i + 1
		}
	}
	output.FinalPosition = h.LatestPosition().FEN

	return jsonResult(output), output, nil
}

// PositionInput names a position of a book.
type PositionInput struct {
	Book     string `json:"book,omitempty"`
	Position string `json:"position,omitempty"`
}

// BranchOutput is the completeness of one opponent reply.
type BranchOutput struct {
	Move         string  `json:"move"`
	Completeness float64 `json:"completeness"`
}

// CompletenessOutput defines output for get_completeness tool.
type CompletenessOutput struct {
	Book         string         `json:"book"`
	Position     string         `json:"position"`
	Completeness float64        `json:"completeness"`
	Branches     []BranchOutput `json:"branches"`
}

func positionSchema(required bool) map[string]interface{} {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"book": bookProperty,
			"position": map[string]interface{}{
				"type":        "string",
				"description": "Position in FEN (full or first three fields); defaults to the starting position",
			},
		},
	}
	if required {
		schema["required"] = []string{"position"}
	}
	return schema
}

func (s *Server) registerGetCompletenessTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_completeness",
		Description: "Get how thoroughly the subtree below a position has been drilled (0 to 1), overall and per recorded move out of it.",
		InputSchema: positionSchema(false),
	}, s.handleGetCompleteness)
}

func (s *Server) handleGetCompleteness(_ context.Context, _ *mcp.CallToolRequest, input PositionInput) (*mcp.CallToolResult, CompletenessOutput, error) {
	name := s.bookName(input.Book)
	book, err := s.loadBook(name)
	if err != nil {
		return nil, CompletenessOutput{}, err
	}
	summary, err := s.loadSummary(name)
	if err != nil {
		return nil, CompletenessOutput{}, err
	}
	r := book.Repertoire()

	position := fen.StartKey
	if input.Position != "" {
		position = fen.Key(input.Position)
	}
	if !r.ContainsPosition(position) {
		return nil, CompletenessOutput{}, fmt.Errorf("position not in book '%s'", name)
	}

	depth := summary.Config().TestDepth
	total, err := summary.Completeness(position, book.Side, r, depth)
	if err != nil {
		return nil, CompletenessOutput{}, err
	}

	output := CompletenessOutput{Book: name, Position: position, Completeness: total, Branches: []BranchOutput{}}
	for _, o := range r.OpponentMoves(position) {
		c, err := summary.Completeness(o.ResultingKey, book.Side, r, depth)
		if err != nil {
			return nil, CompletenessOutput{}, err
		}
		output.Branches = append(output.Branches, BranchOutput{Move: o.DisplayNotation, Completeness: c})
	}

	return jsonResult(output), output, nil
}

// NextMoveOutput defines output for next_test_move tool.
type NextMoveOutput struct {
	Book     string                  `json:"book"`
	Position string                  `json:"position"`
	Move     string                  `json:"move"`
	Weights  []selector.WeightedMove `json:"weights"`
}

func (s *Server) registerNextTestMoveTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "next_test_move",
		Description: "Pick the opponent reply a drill would play at a position, favouring branches that are least drilled. Returns the sampling weights too.",
		InputSchema: positionSchema(true),
	}, s.handleNextTestMove)
}

func (s *Server) handleNextTestMove(_ context.Context, _ *mcp.CallToolRequest, input PositionInput) (*mcp.CallToolResult, NextMoveOutput, error) {
	if input.Position == "" {
		return nil, NextMoveOutput{}, fmt.Errorf("position is required")
	}
	name := s.bookName(input.Book)
	book, err := s.loadBook(name)
	if err != nil {
		return nil, NextMoveOutput{}, err
	}
	summary, err := s.loadSummary(name)
	if err != nil {
		return nil, NextMoveOutput{}, err
	}

	suggestion, err := drill.Suggest(book.Repertoire(), summary, book.Side, input.Position, nil)
	if errors.Is(err, selector.ErrNoCandidates) {
		return nil, NextMoveOutput{}, fmt.Errorf("no reply left to test at this position")
	}
	if err != nil {
		return nil, NextMoveOutput{}, err
	}

	output := NextMoveOutput{
		Book:     name,
		Position: suggestion.Position,
		Move:     suggestion.Move,
		Weights:  suggestion.Weights,
	}
	return jsonResult(output), output, nil
}
