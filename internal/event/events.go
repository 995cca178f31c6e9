package event

const (
	EventPlayerRegistered    = "player.registered"
	EventEarningRecorded     = "earning.recorded"
	EventSettlementCompleted = "settlement.completed"
	EventAnomalyDetected     = "anomaly.detected"
)

type PlayerRegistered struct {
	PlayerID string
}

type EarningRecorded struct {
	Ref      string
	PlayerID string
	Amount   float64
	PoolCut  float64
}

type SettlementCompleted struct {
	RunID       string
	Drained     float64
	Distributed float64
	Winners     int
}

// AnomalyDetected reports an identity/rank membership mismatch for a player:
// Store names the store the record was missing from, Direction how it was
// observed (e.g. "ranked_without_profile", "profile_without_rank").
type AnomalyDetected struct {
	PlayerID  string
	Store     string
	Direction string
}
