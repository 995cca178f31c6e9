package rankstore

import (
	"math/rand"
	"time"
)

const (
	maxLevel = 32
	pFactor  = 0.25
)

type slLevel struct {
	forward *slNode
	span    int64
}

type slNode struct {
	id       string
	score    float64
	backward *slNode
	levels   []slLevel
}

// skiplist keeps entries ordered by score descending, id ascending on ties.
// Spans on each level link give O(log n) rank computation, same trick as a
// redis zset. Not goroutine safe; Memory wraps it with a lock.
type skiplist struct {
	header *slNode
	tail   *slNode
	length int64
	level  int
	rnd    *rand.Rand
}

func newSkiplist() *skiplist {
	return &skiplist{
		header: &slNode{levels: make([]slLevel, maxLevel)},
		level:  1,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (sl *skiplist) randomLevel() int {
	level := 1
	for level < maxLevel && sl.rnd.Float64() < pFactor {
		level++
	}
	return level
}

// precedes reports whether node n sorts strictly before (score, id).
func precedes(n *slNode, score float64, id string) bool {
	if n.score != score {
		return n.score > score
	}
	return n.id < id
}

// insert adds a node for (id, score). The caller guarantees id is absent.
func (sl *skiplist) insert(id string, score float64) *slNode {
	var update [maxLevel]*slNode
	var rank [maxLevel]int64

	x := sl.header
	for i := sl.level - 1; i >= 0; i-- {
		if i == sl.level-1 {
			rank[i] = 0
		} else {
			rank[i] = rank[i+1]
		}
		for x.levels[i].forward != nil && precedes(x.levels[i].forward, score, id) {
			rank[i] += x.levels[i].span
			x = x.levels[i].forward
		}
		update[i] = x
	}

	level := sl.randomLevel()
	if level > sl.level {
		for i := sl.level; i < level; i++ {
			rank[i] = 0
			update[i] = sl.header
			update[i].levels[i].span = sl.length
		}
		sl.level = level
	}

	x = &slNode{id: id, score: score, levels: make([]slLevel, level)}
	for i := 0; i < level; i++ {
		x.levels[i].forward = update[i].levels[i].forward
		update[i].levels[i].forward = x

		x.levels[i].span = update[i].levels[i].span - (rank[0] - rank[i])
		update[i].levels[i].span = (rank[0] - rank[i]) + 1
	}

	for i := level; i < sl.level; i++ {
		update[i].levels[i].span++
	}

	if update[0] != sl.header {
		x.backward = update[0]
	}
	if x.levels[0].forward != nil {
		x.levels[0].forward.backward = x
	} else {
		sl.tail = x
	}
	sl.length++
	return x
}

// remove unlinks the node for (id, score) if present.
func (sl *skiplist) remove(id string, score float64) {
	var update [maxLevel]*slNode

	x := sl.header
	for i := sl.level - 1; i >= 0; i-- {
		for x.levels[i].forward != nil && precedes(x.levels[i].forward, score, id) {
			x = x.levels[i].forward
		}
		update[i] = x
	}

	x = x.levels[0].forward
	if x == nil || x.score != score || x.id != id {
		return
	}

	for i := 0; i < sl.level; i++ {
		if update[i].levels[i].forward == x {
			update[i].levels[i].span += x.levels[i].span - 1
			update[i].levels[i].forward = x.levels[i].forward
		} else {
			update[i].levels[i].span--
		}
	}

	if x.levels[0].forward != nil {
		x.levels[0].forward.backward = x.backward
	} else {
		sl.tail = x.backward
	}
	for sl.level > 1 && sl.header.levels[sl.level-1].forward == nil {
		sl.level--
	}
	sl.length--
}

// rankOf returns the 1-based rank of (id, score), 0 if not found.
func (sl *skiplist) rankOf(id string, score float64) int64 {
	var rank int64
	x := sl.header
	for i := sl.level - 1; i >= 0; i-- {
		for x.levels[i].forward != nil &&
			(precedes(x.levels[i].forward, score, id) ||
				(x.levels[i].forward.score == score && x.levels[i].forward.id == id)) {
			rank += x.levels[i].span
			x = x.levels[i].forward
		}
		if x != sl.header && x.score == score && x.id == id {
			return rank
		}
	}
	return 0
}

// byRank returns the node at 1-based rank, nil if out of range.
func (sl *skiplist) byRank(rank int64) *slNode {
	if rank < 1 || rank > sl.length {
		return nil
	}
	var traversed int64
	x := sl.header
	for i := sl.level - 1; i >= 0; i-- {
		for x.levels[i].forward != nil && traversed+x.levels[i].span <= rank {
			traversed += x.levels[i].span
			x = x.levels[i].forward
		}
		if traversed == rank {
			return x
		}
	}
	return nil
}
