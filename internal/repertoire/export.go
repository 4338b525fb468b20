// ABOUTME: Flat export and import of a repertoire
// ABOUTME: Converts nodes to plain objects and repairs selections on load

package repertoire

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/harper/repertoire/internal/fen"
)

// ExportedPosition is the serialised form of a PositionNode.
type ExportedPosition struct {
	Options               []Option `json:"options" yaml:"options"`
	Selection             *Option  `json:"selection" yaml:"selection"`
	AlternativeSelections []Option `json:"alternative_selections" yaml:"alternative_selections"`
	Notes                 string   `json:"notes" yaml:"notes"`
}

// Export maps position keys to exported positions.
type Export map[string]ExportedPosition

// Export converts the repertoire into its flat object form.
func (r *Repertoire) Export() Export {
	out := make(Export, len(r.positions))
	for key, node := range r.positions {
		exp := ExportedPosition{
			Options:               slices.Clone(node.options),
			AlternativeSelections: make([]Option, 0, len(node.alternatives)),
			Notes:                 node.notes,
		}
		if exp.Options == nil {
			exp.Options = []Option{}
		}
		if o, ok := node.option(node.main); ok && node.main != "" {
			exp.Selection = &o
		}
		for _, alt := range node.alternatives {
			if o, ok := node.option(alt); ok {
				exp.AlternativeSelections = append(exp.AlternativeSelections, o)
			}
		}
		out[key] = exp
	}
	return out
}

// Load rebuilds a repertoire from an export. Keys are normalised, the start
// position is added when missing and selections are repaired so that the
// main move is always an alternative and every alternative is an option.
func Load(data Export) *Repertoire {
	r := New()
	r.positions = make(map[string]*PositionNode, len(data))
	r.order = nil

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	r.addPosition(fen.StartKey)
	for _, key := range keys {
		r.loadPosition(fen.Key(key), data[key])
	}
	return r
}

func (r *Repertoire) loadPosition(key string, exp ExportedPosition) {
	node, ok := r.positions[key]
	if !ok {
		node = r.addPosition(key)
	}

	for _, o := range exp.Options {
		if !node.hasOption(o.DisplayNotation) {
			node.options = append(node.options, o)
		}
	}
	for _, o := range exp.AlternativeSelections {
		if !node.hasOption(o.DisplayNotation) {
			node.options = append(node.options, o)
		}
		if !slices.Contains(node.alternatives, o.DisplayNotation) {
			node.alternatives = append(node.alternatives, o.DisplayNotation)
		}
	}
	if exp.Selection != nil && exp.Selection.DisplayNotation != "" {
		sel := *exp.Selection
		if !node.hasOption(sel.DisplayNotation) {
			node.options = append(node.options, sel)
		}
		if !slices.Contains(node.alternatives, sel.DisplayNotation) {
			node.alternatives = append(node.alternatives, sel.DisplayNotation)
		}
		node.main = sel.DisplayNotation
	}
	node.notes = exp.Notes
}

// MarshalJSON encodes the repertoire as its export object.
func (r *Repertoire) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Export())
}

// FromJSON decodes an exported repertoire.
func FromJSON(data []byte) (*Repertoire, error) {
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("decode repertoire: %w", err)
	}
	return Load(exp), nil
}
