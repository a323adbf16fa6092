package services

import (
	"fmt"
	"strings"
	"time"

	"quickbuy/internal/apperror"
	"quickbuy/internal/models"
	"quickbuy/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
	validate   *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
		validate:   newValidator(),
	}
}

// RegisterUser validates the account, hashes the password and saves it.
// New accounts always get the user role.
func (s *AuthService) RegisterUser(user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := validateStruct(s.validate, user); err != nil {
		return err
	}

	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		return apperror.Conflict("email '%s' already registered", user.Email)
	} else if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("failed to check email %s: %w", user.Email, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Internal("failed to hash password", err)
	}
	user.Password = string(hashedPassword)
	// Identity, timestamps and the preference version are server-owned.
	user.ID = ""
	user.CreatedAt = time.Time{}
	user.UpdatedAt = time.Time{}
	user.PreferencesVersion = 0
	user.Role = models.RoleUser
	user.Preferences = models.Keywords{}

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// EnsureAdmin creates an administrator account unless the email is already registered.
func (s *AuthService) EnsureAdmin(name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.userRepo.GetByEmail(email); err == nil {
		return existing, nil
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}
	admin := &models.User{
		Name:        name,
		Email:       email,
		Password:    string(hashedPassword),
		Role:        models.RoleAdmin,
		Preferences: models.Keywords{},
	}
	if err := s.userRepo.Create(admin); err != nil {
		return nil, fmt.Errorf("failed to create admin %s: %w", email, err)
	}
	return admin, nil
}

// LoginUser authenticates by email and returns a signed JWT with the user.
func (s *AuthService) LoginUser(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !apperror.IsNotFound(err) {
			return "", nil, err
		}
		return "", nil, apperror.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperror.Internal("failed to generate token", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		zap.S().Debugf("Token validation error: %v", err)
		return nil, apperror.Unauthorized("invalid token: %v", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperror.Unauthorized("invalid token")
}
