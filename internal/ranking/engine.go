package ranking

import (
	"context"

	"go.uber.org/zap"

	"rankboard/internal/apperr"
	"rankboard/internal/event"
	"rankboard/internal/monitoring"
	"rankboard/internal/player"
	"rankboard/internal/rankstore"
)

// Window half-widths around a matched player's rank: up to 3 better-ranked
// and 2 worse-ranked entries.
const (
	windowAbove = 3
	windowBelow = 2
)

// Engine joins the rank store's ordering with identity profiles and owns
// the read-side consistency rules: null-profile leniency in the top view,
// drop-and-log in neighborhoods, zero-score self-heal on search misses.
type Engine struct {
	players *player.Service
	ranks   rankstore.Store
	bus     *event.Bus
	log     *zap.Logger
	topN    int64
}

func New(players *player.Service, ranks rankstore.Store, bus *event.Bus,
	log *zap.Logger, topN int) *Engine {

	return &Engine{
		players: players,
		ranks:   ranks,
		bus:     bus,
		log:     log,
		topN:    int64(topN),
	}
}

// TopN returns the board's first page joined with profiles.
func (e *Engine) TopN(ctx context.Context) ([]Row, error) {
	view, err := e.Combined(ctx, "")
	if err != nil {
		return nil, err
	}
	return view.Leaderboard, nil
}

// Combined returns the top-N view and, when q is non-empty, search hits
// with their rank neighborhoods. A player id appears at most once across
// the top-N list and all neighborhoods of one response.
func (e *Engine) Combined(ctx context.Context, q string) (*CombinedView, error) {
	seen := make(map[string]struct{})

	entries, err := e.ranks.TopRange(ctx, 0, e.topN)
	if err != nil {
		return nil, apperr.StoreUnavailable("ranking.top", "rank", err)
	}

	view := &CombinedView{Leaderboard: make([]Row, 0, len(entries))}
	for i, entry := range entries {
		row := Row{
			Rank:     int64(i) + 1,
			PlayerID: entry.PlayerID,
			Score:    entry.Score,
		}

		p, found, err := e.players.FindByID(ctx, entry.PlayerID)
		if err != nil {
			return nil, err
		}
		if found {
			row.Name = &p.Name
			row.Country = &p.Country
			row.CountryCode = &p.CountryCode
		} else {
			e.reportAnomaly(entry.PlayerID, "identity", "ranked_without_profile")
		}

		seen[entry.PlayerID] = struct{}{}
		view.Leaderboard = append(view.Leaderboard, row)
	}

	if q == "" {
		return view, nil
	}

	matches, err := e.players.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	view.Search = make([]SearchHit, 0, len(matches))
	for _, p := range matches {
		hit, err := e.searchHit(ctx, p, seen)
		if err != nil {
			return nil, err
		}
		view.Search = append(view.Search, hit)
	}

	return view, nil
}

func (e *Engine) searchHit(ctx context.Context, p player.Player, seen map[string]struct{}) (SearchHit, error) {
	hit := SearchHit{
		PlayerID:     p.ID,
		Name:         p.Name,
		Country:      p.Country,
		CountryCode:  p.CountryCode,
		BetterRanked: []Row{},
		WorseRanked:  []Row{},
	}

	rank, ranked, err := e.ranks.Rank(ctx, p.ID)
	if err != nil {
		return hit, apperr.StoreUnavailable("ranking.search", "rank", err)
	}

	if !ranked {
		// Identity record with no score entry: restore the invariant with a
		// zero-score insert and report the hit as unranked.
		created, err := e.ranks.EnsureEntry(ctx, p.ID)
		if err != nil {
			return hit, apperr.StoreUnavailable("ranking.search", "rank", err)
		}
		if created {
			monitoring.SelfHeals.Inc()
		}
		e.reportAnomaly(p.ID, "rank", "profile_without_rank")
		return hit, nil
	}

	score, _, err := e.ranks.ScoreOf(ctx, p.ID)
	if err != nil {
		return hit, apperr.StoreUnavailable("ranking.search", "rank", err)
	}

	displayRank := rank + 1
	hit.Rank = &displayRank
	hit.Score = score

	if err := e.fillNeighborhood(ctx, &hit, p.ID, rank, seen); err != nil {
		return hit, err
	}
	return hit, nil
}

// fillNeighborhood loads the contiguous rank window around rank R and
// partitions it relative to the matched player. Window ids with no identity
// profile are dropped (logged as corruption); ids already included
// elsewhere in the response are skipped.
func (e *Engine) fillNeighborhood(ctx context.Context, hit *SearchHit, id string, rank int64, seen map[string]struct{}) error {
	start := rank - windowAbove
	if start < 0 {
		start = 0
	}
	limit := (rank + windowBelow) - start + 1

	entries, err := e.ranks.TopRange(ctx, start, limit)
	if err != nil {
		return apperr.StoreUnavailable("ranking.neighborhood", "rank", err)
	}

	for i, entry := range entries {
		entryRank := start + int64(i)
		if entry.PlayerID == id {
			continue
		}
		if _, dup := seen[entry.PlayerID]; dup {
			continue
		}

		p, found, err := e.players.FindByID(ctx, entry.PlayerID)
		if err != nil {
			return err
		}
		if !found {
			e.reportAnomaly(entry.PlayerID, "identity", "ranked_without_profile")
			continue
		}

		row := Row{
			Rank:        entryRank + 1,
			PlayerID:    entry.PlayerID,
			Name:        &p.Name,
			Country:     &p.Country,
			CountryCode: &p.CountryCode,
			Score:       entry.Score,
		}
		seen[entry.PlayerID] = struct{}{}

		if entryRank < rank {
			hit.BetterRanked = append(hit.BetterRanked, row)
		} else {
			hit.WorseRanked = append(hit.WorseRanked, row)
		}
	}
	return nil
}

func (e *Engine) reportAnomaly(playerID, store, direction string) {
	e.log.Warn("consistency anomaly",
		zap.String("player_id", playerID),
		zap.String("missing_from", store),
		zap.String("direction", direction))
	monitoring.ConsistencyAnomalies.WithLabelValues(direction).Inc()
	e.bus.Publish(event.EventAnomalyDetected, event.AnomalyDetected{
		PlayerID:  playerID,
		Store:     store,
		Direction: direction,
	})
}
