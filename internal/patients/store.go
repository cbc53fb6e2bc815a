package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a patient id does not exist.
var ErrNotFound = errors.New("patients: not found")

// Contact is the minimal patient projection the scheduling core needs:
// who to notify and which phone number the reminder call targets.
type Contact struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

// DB abstracts the pgx query interface for testing.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides read access to patient contact details.
type Store struct {
	db DB
}

// NewStore creates a patient contact store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// GetContact loads a patient's name and phone.
func (s *Store) GetContact(ctx context.Context, id uuid.UUID) (*Contact, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, phone FROM patients WHERE id = $1`, id)

	var c Contact
	if err := row.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patients: get contact: %w", err)
	}
	return &c, nil
}
