package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/askdocs/askdocs/internal/db"
)

// Location is the optional user location used for prompt context.
type Location struct {
	Country string `json:"country"`
	State   string `json:"state"`
}

// Store manages user profile persistence.
type Store struct {
	db *db.DB
}

// NewStore creates a new user store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// GetLocation returns the stored location for a user. Unknown users and
// users without a location both yield an empty Location.
func (s *Store) GetLocation(ctx context.Context, userID string) (Location, error) {
	var country, state sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT country, state FROM users WHERE id = ?`, userID,
	).Scan(&country, &state)
	if err == sql.ErrNoRows {
		return Location{}, nil
	}
	if err != nil {
		return Location{}, fmt.Errorf("getting user location: %w", err)
	}
	return Location{Country: country.String, State: state.String}, nil
}

// SetLocation updates a user's location, creating the profile row if the
// identity provider hasn't synced it yet.
func (s *Store) SetLocation(ctx context.Context, userID string, loc Location) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET country = ?, state = ? WHERE id = ?`,
		nullable(loc.Country), nullable(loc.State), userID,
	)
	if err != nil {
		return fmt.Errorf("updating user location: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating user location: %w", err)
	}
	if n == 0 {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO users (id, email, country, state, created_at) VALUES (?, ?, ?, ?, ?)`,
			userID, userID, nullable(loc.Country), nullable(loc.State), time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("creating user profile: %w", err)
		}
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
