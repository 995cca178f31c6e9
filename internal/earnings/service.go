package earnings

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rankboard/internal/apperr"
	"rankboard/internal/event"
	"rankboard/internal/monitoring"
	"rankboard/internal/player"
	"rankboard/internal/prizepool"
	"rankboard/internal/rankstore"
)

// Service applies earning events to the rank store and the prize pool.
// The two writes are independent and not transactionally coupled: a pool
// failure after a successful rank write is reported as a partial failure,
// never swallowed.
type Service struct {
	db      *sql.DB
	players *player.Service
	ranks   rankstore.Store
	pool    *prizepool.Accumulator
	bus     *event.Bus
	log     *zap.Logger

	rate             float64
	allowCorrections bool
}

func New(db *sql.DB, players *player.Service, ranks rankstore.Store,
	pool *prizepool.Accumulator, bus *event.Bus, log *zap.Logger,
	rate float64, allowCorrections bool) *Service {

	return &Service{
		db:               db,
		players:          players,
		ranks:            ranks,
		pool:             pool,
		bus:              bus,
		log:              log,
		rate:             rate,
		allowCorrections: allowCorrections,
	}
}

// Record validates the event, adds amount to the player's score and credits
// the pool with amount * rate. Returns the player's resulting score.
func (s *Service) Record(ctx context.Context, playerID string, amount float64) (float64, error) {
	if playerID == "" {
		return 0, apperr.InvalidInput("earnings.record", "player_id is required")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, apperr.InvalidInput("earnings.record", "amount must be a finite number")
	}
	if !s.allowCorrections && amount <= 0 {
		return 0, apperr.InvalidInput("earnings.record", "amount must be positive")
	}

	_, found, err := s.players.FindByID(ctx, playerID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, apperr.NotFound("earnings.record", playerID)
	}

	score, err := s.ranks.Upsert(ctx, playerID, amount)
	if err != nil {
		return 0, apperr.StoreUnavailable("earnings.record", "rank", err)
	}

	cut := amount * s.rate
	if err := s.pool.Add(ctx, cut); err != nil {
		s.log.Error("pool contribution failed after rank upsert",
			zap.String("player_id", playerID),
			zap.Float64("amount", amount),
			zap.Float64("pool_cut", cut),
			zap.Error(err))
		monitoring.PoolContributionFailures.Inc()

		return score, &apperr.Error{
			Kind:     apperr.KindPartialFailure,
			Op:       "earnings.record",
			PlayerID: playerID,
			Store:    "pool",
			Msg:      "score applied but pool contribution failed",
			Err:      err,
		}
	}

	ref := s.journal(ctx, playerID, amount, cut)
	monitoring.EarningsApplied.Inc()
	s.bus.Publish(event.EventEarningRecorded, event.EarningRecorded{
		Ref:      ref,
		PlayerID: playerID,
		Amount:   amount,
		PoolCut:  cut,
	})

	return score, nil
}

// journal records the applied event for offline reconciliation. Best effort:
// a journal miss is logged, not surfaced.
func (s *Service) journal(ctx context.Context, playerID string, amount, cut float64) string {
	ref := uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO earnings_journal(ref, player_id, amount, pool_cut, ts)
	VALUES (?, ?, ?, ?, ?)
	`, ref, playerID, amount, cut, time.Now().Unix())

	if err != nil {
		s.log.Warn("earnings journal write failed",
			zap.String("ref", ref),
			zap.String("player_id", playerID),
			zap.Error(err))
	}
	return ref
}
