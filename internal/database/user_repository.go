package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/voyago/booking-backend/internal/models"
)

// UserRepository reads the user profile slice that receipts and
// notifications need; account management lives in a separate service.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by id. Returns nil when no user exists.
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, phone, email, first_name, last_name, created_at
		FROM users WHERE id = $1`

	err := r.db.Get(&user, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
