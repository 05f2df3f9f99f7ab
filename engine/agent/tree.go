package agent

import (
	"math"

	engine "github.com/charlesbvll/Javass/engine"
)

// noChild marks a child slot that has not been expanded.
const noChild int32 = -1

// node is one TurnState of the search tree. Child slot i belongs to the
// i-th card of candidates in packed order.
type node struct {
	state      engine.TurnState
	candidates engine.CardSet
	untried    engine.CardSet
	// team credited with the playout scores through this node: the team of
	// the player whose card produced it.
	team      engine.TeamID
	firstSlot int
	slotCount int
	filled    int
	visits    int
	points    int
}

func (n *node) hasEmptySlot() bool { return n.filled < n.slotCount }

// tree stores nodes in one slice and child indices in another so a search
// allocates nothing once both have grown to size. Indices stay valid across
// appends; pointers into nodes do not.
type tree struct {
	nodes []node
	slots []int32
}

func (t *tree) reset() {
	t.nodes = t.nodes[:0]
	t.slots = t.slots[:0]
}

// add appends a node with one empty slot per candidate and returns its index.
func (t *tree) add(state engine.TurnState, candidates engine.CardSet, team engine.TeamID) int32 {
	idx := int32(len(t.nodes))
	n := node{
		state:      state,
		candidates: candidates,
		untried:    candidates,
		team:       team,
		firstSlot:  len(t.slots),
		slotCount:  candidates.Size(),
	}
	t.nodes = append(t.nodes, n)
	for i := 0; i < n.slotCount; i++ {
		t.slots = append(t.slots, noChild)
	}
	return idx
}

func (t *tree) child(n int32, slot int) int32 {
	return t.slots[t.nodes[n].firstSlot+slot]
}

func (t *tree) setChild(n int32, slot int, child int32) {
	t.slots[t.nodes[n].firstSlot+slot] = child
	t.nodes[n].filled++
}

// bestSlot returns the first empty or unvisited slot of n if there is one,
// otherwise the slot with the highest UCB1 value for exploration constant c.
// Ties go to the lowest slot.
func (t *tree) bestSlot(n int32, c float64) int {
	parent := &t.nodes[n]
	logN := math.Log(float64(parent.visits + 1))
	best, bestV := 0, math.Inf(-1)
	for i := 0; i < parent.slotCount; i++ {
		ch := t.child(n, i)
		if ch == noChild || t.nodes[ch].visits == 0 {
			return i
		}
		cn := &t.nodes[ch]
		v := float64(cn.points)/float64(cn.visits) + c*math.Sqrt(logN/float64(cn.visits))
		if v > bestV {
			best, bestV = i, v
		}
	}
	return best
}

// slotOf returns the slot index of card within candidates.
func slotOf(candidates engine.CardSet, card engine.Card) int {
	below := engine.CardSet(uint64(engine.Singleton(card)) - 1)
	return candidates.Intersection(below).Size()
}
