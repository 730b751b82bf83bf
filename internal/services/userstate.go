package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"xui-vpn-bot/internal/constants"
	"xui-vpn-bot/internal/models"
)

// UserStateService manages admin conversation states
type UserStateService struct {
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewUserStateService creates a new user state service
func NewUserStateService(logger *logrus.Logger) *UserStateService {
	return &UserStateService{
		cache:  cache.New(constants.StateCacheExpiration*time.Minute, constants.StateCacheCleanup*time.Minute),
		logger: logger,
	}
}

// GetState gets a user's conversation state
func (s *UserStateService) GetState(userID int64) *models.UserState {
	if data, found := s.cache.Get(stateKey(userID)); found {
		if state, ok := data.(*models.UserState); ok {
			return state
		}
	}
	return &models.UserState{State: models.Default}
}

// SetState sets a user's conversation state
func (s *UserStateService) SetState(userID int64, state *models.UserState) {
	s.logger.Debugf("Setting state for user %d: %d", userID, state.State)
	s.cache.Set(stateKey(userID), state, cache.DefaultExpiration)
}

// ClearState resets a user's conversation state
func (s *UserStateService) ClearState(userID int64) {
	s.cache.Delete(stateKey(userID))
}

func stateKey(userID int64) string {
	return fmt.Sprintf("user_state_%d", userID)
}
