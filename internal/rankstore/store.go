package rankstore

import "context"

// Entry is one ranked row: a player id and its cumulative score.
type Entry struct {
	PlayerID string  `json:"player_id"`
	Score    float64 `json:"score"`
}

// Store is the ordered score structure backing the leaderboard.
//
// Ordering is descending by score with a stable tie-break that is fixed for
// the lifetime of a store instance. Rank is 0-based; absence of an entry is
// reported separately from rank 0. Upsert is accumulative, so replaying a
// write double-counts; reads are safe to retry.
type Store interface {
	// Upsert adds delta to the player's score, initializing the entry at
	// delta if absent. Returns the resulting score.
	Upsert(ctx context.Context, id string, delta float64) (float64, error)

	// SetScore writes an absolute score, creating the entry if needed.
	SetScore(ctx context.Context, id string, score float64) error

	// EnsureEntry inserts a zero-score entry if the player has none.
	// Reports whether an entry was created. Never touches an existing score.
	EnsureEntry(ctx context.Context, id string) (bool, error)

	// Rank returns the 0-based descending rank, or ok=false if unranked.
	Rank(ctx context.Context, id string) (rank int64, ok bool, err error)

	// ScoreOf returns the current score, or ok=false if unranked.
	ScoreOf(ctx context.Context, id string) (score float64, ok bool, err error)

	// TopRange returns up to limit entries starting at the given 0-based
	// rank offset, best score first, same tie-break as Rank.
	TopRange(ctx context.Context, offset, limit int64) ([]Entry, error)

	// Card returns the number of ranked entries.
	Card(ctx context.Context) (int64, error)

	Close() error
}
