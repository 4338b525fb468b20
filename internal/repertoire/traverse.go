// ABOUTME: Move classification and layered subtree traversal
// ABOUTME: Classifies played moves against the book and enumerates positions by depth

package repertoire

import (
	"slices"

	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/models"
)

// Evaluate classifies notation played at position when drilling tested.
func (r *Repertoire) Evaluate(position, notation string, tested models.Side) models.AnnotationType {
	node := r.node(position)
	if node == nil {
		return models.NotFound
	}

	if fen.SideToMove(position) != tested {
		if node.hasOption(notation) {
			return models.RepertoireOpponentMove
		}
		return models.BreaksOpponentRepertoire
	}

	switch {
	case node.main == "":
		return models.NotFound
	case node.main == notation:
		return models.RepertoireMatch
	case slices.Contains(node.alternatives, notation):
		return models.RepertoireAlternative
	default:
		return models.BreaksRepertoire
	}
}

// ChildPositions walks the subtree under position and groups the positions
// where side is to move by layer, starting at layer 0. At side's own turns
// only repertoire moves are followed; at the opponent's turns every recorded
// reply is. Positions reached by transposition appear once per path.
func (r *Repertoire) ChildPositions(position string, side models.Side, depth int) map[int][]string {
	layers := make(map[int][]string)
	r.collectChildren(fen.Key(position), side, depth, 0, layers)
	return layers
}

func (r *Repertoire) collectChildren(key string, side models.Side, depth, layer int, layers map[int][]string) {
	if layer > depth {
		return
	}
	node := r.positions[key]
	if node == nil {
		return
	}

	if fen.SideToMove(key) == side {
		layers[layer] = append(layers[layer], key)
		layer++
		for _, alt := range node.alternatives {
			if o, ok := node.option(alt); ok {
				r.collectChildren(o.ResultingKey, side, depth, layer, layers)
			}
		}
		return
	}

	for _, o := range node.options {
		r.collectChildren(o.ResultingKey, side, depth, layer, layers)
	}
}
