package repositories

import "quickbuy/internal/models"

// PreferenceUpdate computes a user's next preference window from the current one.
type PreferenceUpdate func(current []string) []string

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// UpdatePreferences applies fn to the stored window and persists the result
	// atomically with respect to other UpdatePreferences calls for the same user.
	UpdatePreferences(id string, fn PreferenceUpdate) ([]string, error)
}
