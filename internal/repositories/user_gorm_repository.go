package repositories

import (
	"errors"
	"fmt"

	"quickbuy/internal/apperror"
	"quickbuy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxPreferenceAttempts bounds the compare-and-swap loop of UpdatePreferences.
const maxPreferenceAttempts = 5

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Preferences == nil {
		user.Preferences = models.Keywords{}
	}
	if err := r.db.Create(user).Error; err != nil {
		return apperror.Internal("failed to create user", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user with email %s not found", email)
		}
		return nil, apperror.Internal("failed to get user by email "+email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user with ID %s not found", id)
		}
		return nil, apperror.Internal("failed to get user by ID "+id, err)
	}
	return &user, nil
}

// UpdatePreferences reads the window, applies fn and writes it back only if no
// other writer bumped preferences_version in between; a lost race is retried.
func (r *GORMUserRepository) UpdatePreferences(id string, fn PreferenceUpdate) ([]string, error) {
	for attempt := 0; attempt < maxPreferenceAttempts; attempt++ {
		var user models.User
		err := r.db.Select("id", "preferences", "preferences_version").First(&user, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("user with ID %s not found", id)
			}
			return nil, apperror.Internal("failed to load preferences", err)
		}

		current := append([]string(nil), user.Preferences...)
		next := models.Keywords(fn(current))

		res := r.db.Model(&models.User{}).
			Where("id = ? AND preferences_version = ?", id, user.PreferencesVersion).
			Updates(map[string]interface{}{
				"preferences":         next,
				"preferences_version": gorm.Expr("preferences_version + 1"),
			})
		if res.Error != nil {
			return nil, apperror.Internal("failed to store preferences", res.Error)
		}
		if res.RowsAffected == 1 {
			return []string(next), nil
		}
	}
	return nil, apperror.Internal("failed to store preferences",
		fmt.Errorf("user %s: preference window changed concurrently %d times", id, maxPreferenceAttempts))
}
