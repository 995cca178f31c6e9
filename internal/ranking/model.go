package ranking

// Row is one leaderboard line. Rank is 1-based. Profile fields are pointers
// because a ranked id with no identity record renders with null fields
// instead of failing the view.
type Row struct {
	Rank        int64   `json:"rank"`
	PlayerID    string  `json:"id"`
	Name        *string `json:"name"`
	Country     *string `json:"country"`
	CountryCode *string `json:"country_code"`
	Score       float64 `json:"score"`
}

// SearchHit is one identity match with its ranking context. Rank is null
// when the player had no score entry at query time (the entry is
// self-healed to zero in the same call).
type SearchHit struct {
	Rank         *int64  `json:"rank"`
	PlayerID     string  `json:"id"`
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	CountryCode  string  `json:"country_code"`
	Score        float64 `json:"score"`
	BetterRanked []Row   `json:"better_ranked"`
	WorseRanked  []Row   `json:"worse_ranked"`
}

// CombinedView is the full query response: the top-N board plus, when a
// query string was given, search hits with their neighborhoods.
type CombinedView struct {
	Leaderboard []Row       `json:"leaderboard"`
	Search      []SearchHit `json:"search,omitempty"`
}
