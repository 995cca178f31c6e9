package settlement

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rankboard/internal/event"
	"rankboard/internal/monitoring"
	"rankboard/internal/prizepool"
	"rankboard/internal/rankstore"
)

// tierRates are the pre-distribution pool shares for ranks 1-3. Every rank
// after that takes bandRate of whatever remains after all prior allocations,
// so later winners in the 4-100 band receive progressively less.
var tierRates = [3]float64{0.20, 0.15, 0.10}

const (
	bandRate   = 0.00567
	topWinners = 100
)

// Job drains the prize pool on a fixed interval and folds it back into the
// winners' scores. Runs are mutually exclusive; a tick that lands while a
// run is still in progress is skipped, never stacked.
//
// Reward application is not transactional across winners: a mid-run store
// error aborts the run and leaves already-applied rewards in place. The run
// row records what was drained so the partial payout can be reconciled
// offline; re-running does not deduplicate.
type Job struct {
	db    *sql.DB
	ranks rankstore.Store
	pool  *prizepool.Accumulator
	bus   *event.Bus
	log   *zap.Logger
	every time.Duration

	running atomic.Bool
}

func New(db *sql.DB, ranks rankstore.Store, pool *prizepool.Accumulator,
	bus *event.Bus, log *zap.Logger, every time.Duration) *Job {

	return &Job{
		db:    db,
		ranks: ranks,
		pool:  pool,
		bus:   bus,
		log:   log,
		every: every,
	}
}

// Start runs the settlement schedule until ctx is done.
func (j *Job) Start(ctx context.Context) {
	ticker := time.NewTicker(j.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.log.Error("settlement run failed", zap.Error(err))
			}
		}
	}
}

// Run executes one settlement cycle: drain the pool, distribute across the
// current top 100, record the run. Returns nil without touching anything if
// another run is already in progress.
func (j *Job) Run(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		j.log.Warn("settlement tick skipped, run already in progress")
		monitoring.SettlementRuns.WithLabelValues("skipped").Inc()
		return nil
	}
	defer j.running.Store(false)

	runID := uuid.New().String()
	startedAt := time.Now().Unix()
	j.recordStart(ctx, runID, startedAt)

	// Drain first: earnings arriving mid-run contribute to the next cycle
	// instead of being distributed twice.
	drained, err := j.pool.DrainToZero(ctx)
	if err != nil {
		j.recordFinish(ctx, runID, "failed", 0, 0, 0)
		monitoring.SettlementRuns.WithLabelValues("failed").Inc()
		return err
	}

	if drained == 0 {
		j.recordFinish(ctx, runID, "completed", 0, 0, 0)
		monitoring.SettlementRuns.WithLabelValues("completed").Inc()
		return nil
	}

	winners, err := j.ranks.TopRange(ctx, 0, topWinners)
	if err != nil {
		j.recordFinish(ctx, runID, "failed", drained, 0, 0)
		monitoring.SettlementRuns.WithLabelValues("failed").Inc()
		return err
	}

	var distributed float64
	remaining := drained

	for i, w := range winners {
		var reward float64
		if i < len(tierRates) {
			reward = drained * tierRates[i]
		} else {
			reward = remaining * bandRate
		}

		if _, err := j.ranks.Upsert(ctx, w.PlayerID, reward); err != nil {
			j.log.Error("reward application failed mid-run",
				zap.String("run_id", runID),
				zap.String("player_id", w.PlayerID),
				zap.Int("position", i+1),
				zap.Float64("reward", reward),
				zap.Float64("drained", drained),
				zap.Float64("distributed", distributed),
				zap.Error(err))
			j.recordFinish(ctx, runID, "failed", drained, distributed, i)
			monitoring.SettlementRuns.WithLabelValues("failed").Inc()
			return err
		}

		remaining -= reward
		distributed += reward
	}

	j.recordFinish(ctx, runID, "completed", drained, distributed, len(winners))
	monitoring.SettlementRuns.WithLabelValues("completed").Inc()

	j.log.Info("settlement completed",
		zap.String("run_id", runID),
		zap.Float64("drained", drained),
		zap.Float64("distributed", distributed),
		zap.Int("winners", len(winners)))

	j.bus.Publish(event.EventSettlementCompleted, event.SettlementCompleted{
		RunID:       runID,
		Drained:     drained,
		Distributed: distributed,
		Winners:     len(winners),
	})
	return nil
}

func (j *Job) recordStart(ctx context.Context, runID string, startedAt int64) {
	_, err := j.db.ExecContext(ctx, `
	INSERT INTO settlement_runs(id, status, drained, distributed, winners, started_at)
	VALUES (?, 'running', 0, 0, 0, ?)
	`, runID, startedAt)
	if err != nil {
		j.log.Warn("settlement run record failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func (j *Job) recordFinish(ctx context.Context, runID, status string, drained, distributed float64, winners int) {
	_, err := j.db.ExecContext(ctx, `
	UPDATE settlement_runs
	SET status = ?, drained = ?, distributed = ?, winners = ?, finished_at = ?
	WHERE id = ?
	`, status, drained, distributed, winners, time.Now().Unix(), runID)
	if err != nil {
		j.log.Warn("settlement run record failed", zap.String("run_id", runID), zap.Error(err))
	}
}
