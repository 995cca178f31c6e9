package player

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"rankboard/internal/apperr"
)

// Service is the Identity Store: durable player profiles in sqlite.
type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Register creates a profile and returns its new id. An identical
// name/country/code triple is a Conflict.
func (s *Service) Register(ctx context.Context, name, country, countryCode string) (string, error) {
	name = strings.TrimSpace(name)
	country = strings.TrimSpace(country)
	countryCode = strings.TrimSpace(countryCode)

	if name == "" || country == "" || countryCode == "" {
		return "", apperr.InvalidInput("player.register", "name, country and country_code are required")
	}

	exists, err := s.ExistsExact(ctx, name, country, countryCode)
	if err != nil {
		return "", err
	}
	if exists {
		return "", apperr.Conflict("player.register", "player already registered")
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO players(id, name, country, country_code, created_at)
	VALUES (?, ?, ?, ?, ?)
	`, id, name, country, countryCode, time.Now().Unix())
	if err != nil {
		return "", apperr.StoreUnavailable("player.register", "identity", err)
	}

	return id, nil
}

// FindByID returns the profile, or ok=false if no record exists.
func (s *Service) FindByID(ctx context.Context, id string) (*Player, bool, error) {
	var p Player
	err := s.db.QueryRowContext(ctx, `
	SELECT id, name, country, country_code FROM players WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Country, &p.CountryCode)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.StoreUnavailable("player.find", "identity", err)
	}
	return &p, true, nil
}

// Search matches q as a case-insensitive substring of name or country.
func (s *Service) Search(ctx context.Context, q string) ([]Player, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, name, country, country_code FROM players
	WHERE LOWER(name) LIKE ? OR LOWER(country) LIKE ?
	ORDER BY name
	`, pattern, pattern)
	if err != nil {
		return nil, apperr.StoreUnavailable("player.search", "identity", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Country, &p.CountryCode); err != nil {
			return nil, apperr.StoreUnavailable("player.search", "identity", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreUnavailable("player.search", "identity", err)
	}
	return players, nil
}

func (s *Service) ExistsExact(ctx context.Context, name, country, countryCode string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
	SELECT COUNT(1) FROM players WHERE name = ? AND country = ? AND country_code = ?
	`, name, country, countryCode).Scan(&n)
	if err != nil {
		return false, apperr.StoreUnavailable("player.exists", "identity", err)
	}
	return n > 0, nil
}
