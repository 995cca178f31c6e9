package audit

import (
	"database/sql"
	"fmt"
	"time"

	"rankboard/internal/event"
)

// Service persists the reconciliation trail: every detected consistency
// anomaly and every completed settlement run lands in audit_log with the
// player id, store and direction offline tooling needs.
type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Listen attaches the audit trail to the domain event bus.
func (s *Service) Listen(bus *event.Bus) {
	bus.Subscribe(event.EventAnomalyDetected, func(payload interface{}) {
		a, ok := payload.(event.AnomalyDetected)
		if !ok {
			return
		}
		s.Log(a.PlayerID, "consistency_anomaly",
			fmt.Sprintf("missing_from=%s direction=%s", a.Store, a.Direction))
	})

	bus.Subscribe(event.EventSettlementCompleted, func(payload interface{}) {
		sc, ok := payload.(event.SettlementCompleted)
		if !ok {
			return
		}
		s.Log("", "settlement_completed",
			fmt.Sprintf("run=%s drained=%.6f distributed=%.6f winners=%d",
				sc.RunID, sc.Drained, sc.Distributed, sc.Winners))
	})
}

func (s *Service) Log(playerID, action, metadata string) {

	s.db.Exec(`
	INSERT INTO audit_log(player_id, action, metadata, created_at)
	VALUES (?, ?, ?, ?)
	`, playerID, action, metadata, time.Now().Unix())
}
