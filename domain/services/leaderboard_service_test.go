package services

import (
	"context"
	"testing"
	"time"

	"vnclub/domain/entities"
	"vnclub/domain/testhelpers"
	"vnclub/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardService_GuildLeaderboard_CachesBetweenWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	entries := []entities.LeaderboardEntry{
		{Rank: 1, UserID: 10, Total: 30},
		{Rank: 2, UserID: 30, Total: 30},
	}

	mockRepo := new(testhelpers.MockLeaderboardRepository)
	mockRepo.On("GuildLeaderboard", mock.Anything, int64(1), 10).Return(entries, nil).Once()

	service := NewLeaderboardService(mockRepo, events.NewBus())

	first, err := service.GuildLeaderboard(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entries, first)

	// Second call is served from cache; the repository expectation above
	// allows exactly one call
	second, err := service.GuildLeaderboard(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entries, second)

	mockRepo.AssertExpectations(t)
}

func TestLeaderboardService_PointsChangedInvalidatesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bus := events.NewBus()

	mockRepo := new(testhelpers.MockLeaderboardRepository)
	mockRepo.On("GuildLeaderboard", mock.Anything, int64(1), 10).
		Return([]entities.LeaderboardEntry{{Rank: 1, UserID: 10, Total: 5}}, nil)

	service := NewLeaderboardService(mockRepo, bus)

	_, err := service.GuildLeaderboard(ctx, 1, 10)
	require.NoError(t, err)

	bus.Emit(ctx, events.PointsChangedEvent{GuildID: 1, UserID: 10, Amount: 5, NewTotal: 10})

	// Invalidation runs on a handler goroutine; wait for the second fetch
	// to fall through to the repository again
	require.Eventually(t, func() bool {
		_, err := service.GuildLeaderboard(ctx, 1, 10)
		if err != nil {
			return false
		}
		return len(mockRepo.Calls) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLeaderboardService_RejectsNonPositiveLimit(t *testing.T) {
	t.Parallel()

	service := NewLeaderboardService(new(testhelpers.MockLeaderboardRepository), events.NewBus())

	_, err := service.GuildLeaderboard(context.Background(), 1, 0)
	require.Error(t, err)
	var validationErr *entities.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.GlobalLeaderboard(context.Background(), -1)
	require.Error(t, err)
	assert.ErrorAs(t, err, &validationErr)
}

func TestLeaderboardService_GlobalLeaderboard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	entries := []entities.LeaderboardEntry{
		{Rank: 1, UserID: 7, Total: 100},
	}

	mockRepo := new(testhelpers.MockLeaderboardRepository)
	mockRepo.On("GlobalLeaderboard", mock.Anything, 5).Return(entries, nil).Once()

	service := NewLeaderboardService(mockRepo, events.NewBus())

	got, err := service.GlobalLeaderboard(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	// Cached
	got, err = service.GlobalLeaderboard(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	mockRepo.AssertExpectations(t)
}
