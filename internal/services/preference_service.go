package services

import (
	"fmt"
	"strings"
	"time"

	"quickbuy/internal/apperror"
	"quickbuy/internal/events"
	"quickbuy/internal/metrics"
	"quickbuy/internal/recommend"
	"quickbuy/internal/repositories"
)

// PreferenceWindowSize is the number of recent keywords kept per user.
const PreferenceWindowSize = 6

// PreferenceService tracks the recent interest keywords of each user.
type PreferenceService struct {
	users  repositories.UserRepository
	events events.Publisher
}

// NewPreferenceService creates a new PreferenceService. publisher may be nil.
func NewPreferenceService(users repositories.UserRepository, publisher events.Publisher) *PreferenceService {
	return &PreferenceService{users: users, events: publisher}
}

// RecordKeyword appends keyword to the user's window, evicting the oldest
// entries beyond PreferenceWindowSize, and returns the new window.
func (s *PreferenceService) RecordKeyword(userID, keyword string) ([]string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		metrics.PreferenceWrites.WithLabelValues("rejected").Inc()
		return nil, apperror.Validation("keyword is required")
	}

	window, err := s.users.UpdatePreferences(userID, func(current []string) []string {
		return recommend.PushKeyword(current, keyword, PreferenceWindowSize)
	})
	if err != nil {
		metrics.PreferenceWrites.WithLabelValues("error").Inc()
		if apperror.KindOf(err) != apperror.KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record preference for user %s: %w", userID, err)
	}
	metrics.PreferenceWrites.WithLabelValues("ok").Inc()

	events.Emit(s.events, events.PreferenceRecorded, events.PreferenceEvent{
		UserID:      userID,
		Keyword:     keyword,
		Preferences: window,
		OccurredAt:  time.Now().UTC(),
	})
	return window, nil
}

// Preferences returns the user's current window, oldest first.
func (s *PreferenceService) Preferences(userID string) ([]string, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Preferences == nil {
		return []string{}, nil
	}
	return []string(user.Preferences), nil
}
