// ABOUTME: Opening repertoire tree keyed by normalised position
// ABOUTME: Maintains main and alternative move selections with promotion on removal

package repertoire

import (
	"fmt"
	"slices"

	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/models"
	"github.com/harper/repertoire/internal/rules"
)

// Option is a known move out of a position.
type Option struct {
	From            string `json:"from" yaml:"from"`
	To              string `json:"to" yaml:"to"`
	Promotion       string `json:"promotion" yaml:"promotion"`
	Notation        string `json:"notation" yaml:"notation"`
	ResultingKey    string `json:"fen_after" yaml:"fen_after"`
	DisplayNotation string `json:"friendly_notation" yaml:"friendly_notation"`
	SideToMove      string `json:"turn" yaml:"turn"`
}

// NewOption builds an option from a rules engine result.
func NewOption(move models.MoveResult) Option {
	return Option{
		From:            move.From,
		To:              move.To,
		Promotion:       move.Promotion,
		Notation:        move.LongNotation,
		ResultingKey:    fen.Key(move.PositionAfter),
		DisplayNotation: move.Notation,
		SideToMove:      string(move.Side),
	}
}

// PositionNode holds the recorded moves of a single position.
// Selections refer to options by display notation; the options list owns the data.
type PositionNode struct {
	options      []Option
	main         string
	alternatives []string
	notes        string
}

func (n *PositionNode) option(notation string) (Option, bool) {
	for _, o := range n.options {
		if o.DisplayNotation == notation {
			return o, true
		}
	}
	return Option{}, false
}

func (n *PositionNode) hasOption(notation string) bool {
	_, ok := n.option(notation)
	return ok
}

// promoteOrClear picks the first alternative other than the current main,
// clearing every selection when none is left.
func (n *PositionNode) promoteOrClear() {
	for _, alt := range n.alternatives {
		if alt != n.main {
			n.main = alt
			return
		}
	}
	n.main = ""
	n.alternatives = nil
}

// Repertoire maps position keys to nodes. It always contains the start position.
type Repertoire struct {
	positions map[string]*PositionNode
	order     []string
	engine    rules.Engine
}

// New creates an empty repertoire holding only the start position.
func New() *Repertoire {
	r := &Repertoire{engine: rules.NewStandard()}
	r.Reset()
	return r
}

// SetEngine replaces the rules engine used by PushLine.
func (r *Repertoire) SetEngine(e rules.Engine) {
	r.engine = e
}

// Reset drops every position except a fresh start node.
func (r *Repertoire) Reset() {
	r.positions = make(map[string]*PositionNode)
	r.order = nil
	r.addPosition(fen.StartKey)
}

func (r *Repertoire) addPosition(key string) *PositionNode {
	node := &PositionNode{}
	r.positions[key] = node
	r.order = append(r.order, key)
	return node
}

func (r *Repertoire) node(position string) *PositionNode {
	return r.positions[fen.Key(position)]
}

// Positions returns all known keys in insertion order.
func (r *Repertoire) Positions() []string {
	return slices.Clone(r.order)
}

// ContainsPosition reports whether the position has a node.
func (r *Repertoire) ContainsPosition(position string) bool {
	return r.node(position) != nil
}

// AddMove records move out of from. The move becomes the main move when the
// position has none and the move is played by the side the book is built for.
// Recording the same notation twice never duplicates the option.
func (r *Repertoire) AddMove(from string, move models.MoveResult, builtFor models.Side) {
	node := r.node(from)
	if node == nil {
		return
	}

	if !node.hasOption(move.Notation) {
		node.options = append(node.options, NewOption(move))
	}

	if node.main == "" && builtFor == move.Side {
		r.SetMainMove(from, move.Notation)
	}

	after := fen.Key(move.PositionAfter)
	if _, ok := r.positions[after]; !ok {
		r.addPosition(after)
	}
}

// PushLine replays sans from the start position, recording every move.
func (r *Repertoire) PushLine(sans []string, builtFor models.Side) error {
	position := fen.StartPosition
	for i, san := range sans {
		move, err := r.engine.ApplyMove(position, san)
		if err != nil {
			return fmt.Errorf("move %d (%s): %w", i+1, san, err)
		}
		r.AddMove(position, move, builtFor)
		position = move.PositionAfter
	}
	return nil
}

// ImportLines pushes every line and returns how many were recorded.
// It stops at the first illegal line.
func (r *Repertoire) ImportLines(lines [][]string, builtFor models.Side) (int, error) {
	for i, line := range lines {
		if err := r.PushLine(line, builtFor); err != nil {
			return i, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return len(lines), nil
}

// SetMainMove selects notation as the main move. An empty notation unsets it.
func (r *Repertoire) SetMainMove(position, notation string) {
	if notation == "" {
		r.UnsetMainMove(position)
		return
	}
	node := r.node(position)
	if node == nil || !node.hasOption(notation) {
		return
	}

	node.main = notation
	switch {
	case len(node.alternatives) <= 1:
		node.alternatives = []string{notation}
	case !slices.Contains(node.alternatives, notation):
		node.alternatives = append(node.alternatives, notation)
	}
}

// UnsetMainMove clears the main move, promoting another alternative when one remains.
func (r *Repertoire) UnsetMainMove(position string) {
	node := r.node(position)
	if node == nil {
		return
	}
	node.promoteOrClear()
}

// AddAlternative marks a recorded move as repertoire-consistent.
func (r *Repertoire) AddAlternative(position, notation string) {
	node := r.node(position)
	if node == nil || slices.Contains(node.alternatives, notation) || !node.hasOption(notation) {
		return
	}
	node.alternatives = append(node.alternatives, notation)
	if node.main == "" {
		node.main = notation
	}
}

// RemoveAlternative drops a move from the repertoire set, keeping it as an option.
func (r *Repertoire) RemoveAlternative(position, notation string) {
	node := r.node(position)
	if node == nil || !slices.Contains(node.alternatives, notation) {
		return
	}
	wasMain := node.main == notation
	node.alternatives = slices.DeleteFunc(node.alternatives, func(a string) bool { return a == notation })
	if wasMain {
		node.promoteOrClear()
	}
}

// DeleteMove forgets a move entirely.
func (r *Repertoire) DeleteMove(position, notation string) {
	node := r.node(position)
	if node == nil {
		return
	}
	node.options = slices.DeleteFunc(node.options, func(o Option) bool { return o.DisplayNotation == notation })
	node.alternatives = slices.DeleteFunc(node.alternatives, func(a string) bool { return a == notation })
	if node.main == notation {
		node.promoteOrClear()
	}
}

// IsMainMove reports whether notation is the main move of position.
func (r *Repertoire) IsMainMove(position, notation string) bool {
	node := r.node(position)
	return node != nil && node.main != "" && node.main == notation
}

// IsRepertoireMove reports whether notation is one of the position's alternatives.
func (r *Repertoire) IsRepertoireMove(position, notation string) bool {
	node := r.node(position)
	return node != nil && slices.Contains(node.alternatives, notation)
}

// IsOpponentMove reports whether notation has been recorded at position.
func (r *Repertoire) IsOpponentMove(position, notation string) bool {
	node := r.node(position)
	return node != nil && node.hasOption(notation)
}

// MainMove returns the main move of position.
func (r *Repertoire) MainMove(position string) (Option, bool) {
	node := r.node(position)
	if node == nil || node.main == "" {
		return Option{}, false
	}
	return node.option(node.main)
}

// PlayerMoves returns the repertoire moves of position, main move first.
func (r *Repertoire) PlayerMoves(position string) []Option {
	node := r.node(position)
	if node == nil || node.main == "" {
		return nil
	}
	out := make([]Option, 0, len(node.alternatives))
	if o, ok := node.option(node.main); ok {
		out = append(out, o)
	}
	for _, alt := range node.alternatives {
		if alt == node.main {
			continue
		}
		if o, ok := node.option(alt); ok {
			out = append(out, o)
		}
	}
	return out
}

// HasPlayerMove reports whether position has a main move.
func (r *Repertoire) HasPlayerMove(position string) bool {
	node := r.node(position)
	return node != nil && node.main != ""
}

// OpponentMoves returns every recorded move of position in insertion order.
func (r *Repertoire) OpponentMoves(position string) []Option {
	node := r.node(position)
	if node == nil {
		return nil
	}
	return slices.Clone(node.options)
}

// HasOpponentMove reports whether position has any recorded move.
func (r *Repertoire) HasOpponentMove(position string) bool {
	node := r.node(position)
	return node != nil && len(node.options) > 0
}

// Alternatives returns the display notations of the repertoire moves of position.
func (r *Repertoire) Alternatives(position string) []string {
	node := r.node(position)
	if node == nil {
		return nil
	}
	return slices.Clone(node.alternatives)
}

// Notes returns the free-text notes of position.
func (r *Repertoire) Notes(position string) string {
	node := r.node(position)
	if node == nil {
		return ""
	}
	return node.notes
}

// SetNotes replaces the notes of position.
func (r *Repertoire) SetNotes(position, notes string) {
	if node := r.node(position); node != nil {
		node.notes = notes
	}
}
