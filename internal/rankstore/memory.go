package rankstore

import (
	"context"
	"sync"
)

// Memory is the embedded Store: a span skiplist with a by-id index, made
// durable by an append-only log replayed on construction. Ties are broken
// by id ascending, fixed for the life of the instance.
type Memory struct {
	mu    sync.RWMutex
	sl    *skiplist
	nodes map[string]*slNode
	aof   *aofLog
}

// NewMemory builds the store, replaying aofPath if it has prior state.
// An empty aofPath disables persistence.
func NewMemory(aofPath string) (*Memory, error) {
	m := &Memory{
		sl:    newSkiplist(),
		nodes: make(map[string]*slNode),
	}

	if aofPath == "" {
		return m, nil
	}

	err := replayAOF(aofPath, func(id string, score float64) {
		m.set(id, score)
	})
	if err != nil {
		return nil, err
	}

	m.aof, err = openAOF(aofPath)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// set writes an absolute score under the caller's lock (or during replay,
// before the store is shared).
func (m *Memory) set(id string, score float64) {
	if node, ok := m.nodes[id]; ok {
		if node.score == score {
			return
		}
		m.sl.remove(id, node.score)
	}
	m.nodes[id] = m.sl.insert(id, score)
}

func (m *Memory) persist(id string, score float64) error {
	if m.aof == nil {
		return nil
	}
	return m.aof.logSet(id, score)
}

func (m *Memory) Upsert(_ context.Context, id string, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	score := delta
	if node, ok := m.nodes[id]; ok {
		score = node.score + delta
	}
	m.set(id, score)
	return score, m.persist(id, score)
}

func (m *Memory) SetScore(_ context.Context, id string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.set(id, score)
	return m.persist(id, score)
}

func (m *Memory) EnsureEntry(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[id]; ok {
		return false, nil
	}
	m.set(id, 0)
	return true, m.persist(id, 0)
}

func (m *Memory) Rank(_ context.Context, id string) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[id]
	if !ok {
		return 0, false, nil
	}
	return m.sl.rankOf(id, node.score) - 1, true, nil
}

func (m *Memory) ScoreOf(_ context.Context, id string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[id]
	if !ok {
		return 0, false, nil
	}
	return node.score, true, nil
}

func (m *Memory) TopRange(_ context.Context, offset, limit int64) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry, 0, limit)
	if limit <= 0 || offset < 0 {
		return entries, nil
	}

	node := m.sl.byRank(offset + 1)
	for i := int64(0); i < limit && node != nil; i++ {
		entries = append(entries, Entry{PlayerID: node.id, Score: node.score})
		node = node.levels[0].forward
	}
	return entries, nil
}

func (m *Memory) Card(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sl.length, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.aof == nil {
		return nil
	}
	err := m.aof.Close()
	m.aof = nil
	return err
}
