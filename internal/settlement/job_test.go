package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rankboard/internal/db"
	"rankboard/internal/event"
	"rankboard/internal/prizepool"
	"rankboard/internal/rankstore"
)

type fixture struct {
	db    *sql.DB
	ranks rankstore.Store
	pool  *prizepool.Accumulator
}

func newFixture(t *testing.T) (*fixture, *Job) {
	t.Helper()

	database, err := db.Init(filepath.Join(t.TempDir(), "settlement.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	ranks, err := rankstore.NewMemory("")
	require.NoError(t, err)

	f := &fixture{db: database, ranks: ranks, pool: prizepool.New(database)}
	return f, New(database, ranks, f.pool, event.NewBus(), zap.NewNop(), time.Hour)
}

func TestDistributesTiersToTopTwo(t *testing.T) {
	ctx := context.Background()
	f, job := newFixture(t)

	require.NoError(t, f.ranks.SetScore(ctx, "first", 500))
	require.NoError(t, f.ranks.SetScore(ctx, "second", 300))
	require.NoError(t, f.pool.Add(ctx, 100))

	require.NoError(t, job.Run(ctx))

	score, _, err := f.ranks.ScoreOf(ctx, "first")
	require.NoError(t, err)
	assert.InDelta(t, 520, score, 1e-9)

	score, _, err = f.ranks.ScoreOf(ctx, "second")
	require.NoError(t, err)
	assert.InDelta(t, 315, score, 1e-9)

	balance, err := f.pool.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

// With a full field of 100+ entries the payout follows the closed form:
// 45% to the top three, then a geometric decay over the remainder.
func TestDistributionMatchesClosedForm(t *testing.T) {
	ctx := context.Background()
	f, job := newFixture(t)

	const pool = 1000.0
	const entrants = 120

	before := make(map[string]float64, entrants)
	for i := 0; i < entrants; i++ {
		id := fmt.Sprintf("p%03d", i)
		score := float64(100000 - i*100)
		before[id] = score
		require.NoError(t, f.ranks.SetScore(ctx, id, score))
	}
	require.NoError(t, f.pool.Add(ctx, pool))

	require.NoError(t, job.Run(ctx))

	var distributed float64
	for id, old := range before {
		score, _, err := f.ranks.ScoreOf(ctx, id)
		require.NoError(t, err)
		distributed += score - old
	}

	// ranks 1-3 take 20/15/10 percent of the full pool; each of ranks
	// 4-100 takes 0.00567 of what remains at its turn
	postTiers := pool * (1 - 0.20 - 0.15 - 0.10)
	expected := pool - postTiers*math.Pow(1-0.00567, 97)
	assert.InDelta(t, expected, distributed, 1e-6)

	// rank 101 and beyond get nothing
	score, _, err := f.ranks.ScoreOf(ctx, "p100")
	require.NoError(t, err)
	assert.Equal(t, before["p100"], score)
}

func TestRewardsFollowRankOrder(t *testing.T) {
	ctx := context.Background()
	f, job := newFixture(t)

	require.NoError(t, f.ranks.SetScore(ctx, "a", 3000))
	require.NoError(t, f.ranks.SetScore(ctx, "b", 2000))
	require.NoError(t, f.ranks.SetScore(ctx, "c", 1000))
	require.NoError(t, f.ranks.SetScore(ctx, "d", 500))
	require.NoError(t, f.ranks.SetScore(ctx, "e", 400))
	require.NoError(t, f.pool.Add(ctx, 200))

	require.NoError(t, job.Run(ctx))

	expect := map[string]float64{
		"a": 3000 + 200*0.20,
		"b": 2000 + 200*0.15,
		"c": 1000 + 200*0.10,
		"d": 500 + 200*0.55*0.00567,
		"e": 400 + 200*0.55*(1-0.00567)*0.00567,
	}
	for id, want := range expect {
		score, _, err := f.ranks.ScoreOf(ctx, id)
		require.NoError(t, err)
		assert.InDelta(t, want, score, 1e-9, "player %s", id)
	}
}

func TestEmptyPoolCompletesWithoutRewards(t *testing.T) {
	ctx := context.Background()
	f, job := newFixture(t)

	require.NoError(t, f.ranks.SetScore(ctx, "only", 100))
	require.NoError(t, job.Run(ctx))

	score, _, err := f.ranks.ScoreOf(ctx, "only")
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)

	var status string
	err = f.db.QueryRow(`SELECT status FROM settlement_runs`).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "completed", status)
}

func TestRunRecordsOutcome(t *testing.T) {
	ctx := context.Background()
	f, job := newFixture(t)

	require.NoError(t, f.ranks.SetScore(ctx, "first", 500))
	require.NoError(t, f.pool.Add(ctx, 100))
	require.NoError(t, job.Run(ctx))

	var status string
	var drained, distributed float64
	var winners int
	err := f.db.QueryRow(`
	SELECT status, drained, distributed, winners FROM settlement_runs
	`).Scan(&status, &drained, &distributed, &winners)
	require.NoError(t, err)

	assert.Equal(t, "completed", status)
	assert.InDelta(t, 100, drained, 1e-9)
	assert.InDelta(t, 20, distributed, 1e-9)
	assert.Equal(t, 1, winners)
}

// blockingStore stalls TopRange so a second Run can be attempted while the
// first is mid-flight.
type blockingStore struct {
	rankstore.Store
	gate    chan struct{}
	reached chan struct{}
}

func (b *blockingStore) TopRange(ctx context.Context, offset, limit int64) ([]rankstore.Entry, error) {
	close(b.reached)
	<-b.gate
	return b.Store.TopRange(ctx, offset, limit)
}

func TestOverlappingRunsArePrevented(t *testing.T) {
	ctx := context.Background()

	database, err := db.Init(filepath.Join(t.TempDir(), "overlap.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	inner, err := rankstore.NewMemory("")
	require.NoError(t, err)
	blocked := &blockingStore{
		Store:   inner,
		gate:    make(chan struct{}),
		reached: make(chan struct{}),
	}

	pool := prizepool.New(database)
	require.NoError(t, inner.SetScore(ctx, "first", 500))
	require.NoError(t, pool.Add(ctx, 100))

	job := New(database, blocked, pool, event.NewBus(), zap.NewNop(), time.Hour)

	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()
	<-blocked.reached

	// second invocation during the stall must bail out untouched
	require.NoError(t, job.Run(ctx))

	close(blocked.gate)
	require.NoError(t, <-done)

	score, _, err := inner.ScoreOf(ctx, "first")
	require.NoError(t, err)
	assert.InDelta(t, 520, score, 1e-9, "pool must be distributed exactly once")
}
