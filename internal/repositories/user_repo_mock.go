package repositories

import (
	"errors"
	"sync"
	"time"

	"quickbuy/internal/apperror"
	"quickbuy/internal/models"

	"github.com/google/uuid"
)

var errDuplicateEmail = errors.New("email already registered")

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.Mutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.Internal("failed to create user", errDuplicateEmail)
		}
	}
	if user.Preferences == nil {
		user.Preferences = models.Keywords{}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user with email %s not found", email)
}

// GetByID returns a user by ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user with ID %s not found", id)
	}
	return &u, nil
}

// UpdatePreferences applies fn while holding the repository lock.
func (r *MockUserRepository) UpdatePreferences(id string, fn PreferenceUpdate) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user with ID %s not found", id)
	}
	next := fn(append([]string(nil), u.Preferences...))
	u.Preferences = models.Keywords(next)
	u.PreferencesVersion++
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return next, nil
}
