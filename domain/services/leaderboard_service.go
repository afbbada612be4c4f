package services

import (
	"context"
	"fmt"
	"sync"

	"vnclub/domain/entities"
	"vnclub/domain/interfaces"
	"vnclub/events"
)

type guildLeaderboardKey struct {
	guildID int64
	limit   int
}

// leaderboardService implements the LeaderboardService interface.
// Results are cached per query until a points_changed event invalidates
// them, so repeated leaderboard views between ledger writes cost no
// database round trips.
type leaderboardService struct {
	repo interfaces.LeaderboardRepository

	mu          sync.RWMutex
	guildCache  map[guildLeaderboardKey][]entities.LeaderboardEntry
	globalCache map[int][]entities.LeaderboardEntry
}

// NewLeaderboardService creates a new leaderboard service subscribed to
// ledger change events for cache invalidation
func NewLeaderboardService(repo interfaces.LeaderboardRepository, bus *events.Bus) interfaces.LeaderboardService {
	s := &leaderboardService{
		repo:        repo,
		guildCache:  make(map[guildLeaderboardKey][]entities.LeaderboardEntry),
		globalCache: make(map[int][]entities.LeaderboardEntry),
	}

	bus.Subscribe(events.EventTypePointsChanged, func(ctx context.Context, event events.Event) {
		s.invalidate()
	})

	return s
}

// GuildLeaderboard returns the top members of one guild, descending by
// total, ties broken by ascending user id
func (s *leaderboardService) GuildLeaderboard(ctx context.Context, guildID int64, limit int) ([]entities.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, entities.NewValidationError("limit", "must be positive")
	}

	key := guildLeaderboardKey{guildID: guildID, limit: limit}

	s.mu.RLock()
	cached, ok := s.guildCache[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	entries, err := s.repo.GuildLeaderboard(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute guild leaderboard: %w", err)
	}

	s.mu.Lock()
	s.guildCache[key] = entries
	s.mu.Unlock()

	return entries, nil
}

// GlobalLeaderboard returns the top users across all guilds
func (s *leaderboardService) GlobalLeaderboard(ctx context.Context, limit int) ([]entities.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, entities.NewValidationError("limit", "must be positive")
	}

	s.mu.RLock()
	cached, ok := s.globalCache[limit]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	entries, err := s.repo.GlobalLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute global leaderboard: %w", err)
	}

	s.mu.Lock()
	s.globalCache[limit] = entries
	s.mu.Unlock()

	return entries, nil
}

// invalidate drops all cached views; called on every append/tombstone
func (s *leaderboardService) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guildCache = make(map[guildLeaderboardKey][]entities.LeaderboardEntry)
	s.globalCache = make(map[int][]entities.LeaderboardEntry)
}
