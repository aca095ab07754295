package level

import (
	"github.com/zyedidia/generic/mapset"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/models"
)

// Solution is the outcome of the solvability search.
type Solution struct {
	Moves int      // Minimum number of moves that wins the level
	Path  []string // One winning sequence of directions
}

// searchKey identifies a search state: a room plus the bitmask of required
// items collected on the way there.
type searchKey struct {
	room string
	mask uint64
}

type searchNode struct {
	key       searchKey
	dist      int
	parent    int // index into the node list, -1 for the start
	direction string
}

// Solve runs a breadth-first search over (room, collected required items)
// and returns the shortest winning route. A route wins when a move enters
// the villain's room holding every required item. Entering the villain's
// room ends the game, so the search never expands past it.
//
// The state space is rooms x 2^len(required); each state is expanded once.
func Solve(g *models.MapGraph, start string, required []string) (Solution, error) {
	required = uniqueSorted(required)
	if len(required) > maxRequiredItems {
		return Solution{}, apperrors.New(apperrors.CodeValidation, "too many required items")
	}
	bits := make(map[string]uint64, len(required))
	for i, name := range required {
		bits[name] = 1 << uint(i)
	}
	var full uint64
	if len(required) > 0 {
		full = ^uint64(0) >> uint(64-len(required))
	}

	collect := func(room string, mask uint64) uint64 {
		r, ok := g.Room(room)
		if !ok {
			return mask
		}
		if item, ok := r.Item(); ok && item.Kind == models.ItemRelic {
			mask |= bits[item.Name]
		}
		return mask
	}

	if !g.Has(start) {
		return Solution{}, apperrors.New(apperrors.CodeValidation, "start room does not exist")
	}

	seen := mapset.New[searchKey]()
	nodes := []searchNode{{key: searchKey{room: start, mask: collect(start, 0)}, parent: -1}}
	// Standing in the villain's room at the start decides nothing, so coming
	// back to it later with the same items is still a new state.
	if startRoom, _ := g.Room(start); !startRoom.HasVillain() {
		seen.Put(nodes[0].key)
	}

	for head := 0; head < len(nodes); head++ {
		node := nodes[head]
		room, _ := g.Room(node.key.room)
		if node.dist > 0 && room.HasVillain() {
			if node.key.mask == full {
				return Solution{Moves: node.dist, Path: pathTo(nodes, head)}, nil
			}
			continue
		}
		for _, dir := range room.Directions() {
			next, _ := room.Exit(dir)
			key := searchKey{room: next, mask: collect(next, node.key.mask)}
			if seen.Has(key) {
				continue
			}
			seen.Put(key)
			nodes = append(nodes, searchNode{key: key, dist: node.dist + 1, parent: head, direction: dir})
		}
	}

	return Solution{}, apperrors.New(apperrors.CodeValidation, "level is not solvable")
}

func pathTo(nodes []searchNode, i int) []string {
	path := make([]string, nodes[i].dist)
	for ; nodes[i].parent >= 0; i = nodes[i].parent {
		path[nodes[i].dist-1] = nodes[i].direction
	}
	return path
}
