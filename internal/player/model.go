package player

// Player is a registered participant's identity record. Immutable after
// registration.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}
