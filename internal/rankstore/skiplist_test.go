package rankstore

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkiplistInsertRemoveRank(t *testing.T) {
	sl := newSkiplist()

	sl.insert("a", 30)
	sl.insert("b", 20)
	sl.insert("c", 10)

	assert.Equal(t, int64(1), sl.rankOf("a", 30))
	assert.Equal(t, int64(2), sl.rankOf("b", 20))
	assert.Equal(t, int64(3), sl.rankOf("c", 10))

	sl.remove("b", 20)
	assert.Equal(t, int64(2), sl.length)
	assert.Equal(t, int64(0), sl.rankOf("b", 20))
	assert.Equal(t, int64(2), sl.rankOf("c", 10))
}

func TestSkiplistByRank(t *testing.T) {
	sl := newSkiplist()
	sl.insert("x", 5)
	sl.insert("y", 15)

	require.NotNil(t, sl.byRank(1))
	assert.Equal(t, "y", sl.byRank(1).id)
	assert.Equal(t, "x", sl.byRank(2).id)
	assert.Nil(t, sl.byRank(0))
	assert.Nil(t, sl.byRank(3))
}

func TestSkiplistSpansUnderChurn(t *testing.T) {
	sl := newSkiplist()
	rnd := rand.New(rand.NewSource(1))

	scores := make(map[string]float64)
	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("n%03d", rnd.Intn(150))
		score := float64(rnd.Intn(40))

		if old, ok := scores[id]; ok {
			sl.remove(id, old)
		}
		sl.insert(id, score)
		scores[id] = score
	}

	require.Equal(t, int64(len(scores)), sl.length)

	// walking level 0 must agree with span-based rank for every node
	node := sl.header.levels[0].forward
	for i := int64(1); node != nil; i++ {
		assert.Equal(t, i, sl.rankOf(node.id, node.score), "node %s", node.id)
		assert.Equal(t, node, sl.byRank(i))
		node = node.levels[0].forward
	}
}
