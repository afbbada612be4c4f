package repository

import (
	"context"
	"testing"

	"vnclub/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardRepository_GuildLeaderboard(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	eventRepo := NewPointEventRepository(testDB.DB)
	repo := NewLeaderboardRepository(testDB.DB)
	ctx := context.Background()

	_, err := eventRepo.Append(ctx, testutil.CreateTestGrant(1, 10, 30))
	require.NoError(t, err)
	_, err = eventRepo.Append(ctx, testutil.CreateTestGrant(1, 20, 10))
	require.NoError(t, err)
	_, err = eventRepo.Append(ctx, testutil.CreateTestGrant(1, 30, 30))
	require.NoError(t, err)

	t.Run("ties broken by lower user id", func(t *testing.T) {
		entries, err := repo.GuildLeaderboard(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, 1, entries[0].Rank)
		assert.Equal(t, int64(10), entries[0].UserID)
		assert.Equal(t, int64(30), entries[0].Total)

		assert.Equal(t, 2, entries[1].Rank)
		assert.Equal(t, int64(30), entries[1].UserID)
		assert.Equal(t, int64(30), entries[1].Total)
	})

	t.Run("members at zero or below are excluded", func(t *testing.T) {
		id, err := eventRepo.Append(ctx, testutil.CreateTestGrant(1, 40, 5))
		require.NoError(t, err)
		require.NoError(t, eventRepo.Tombstone(ctx, id))

		entries, err := repo.GuildLeaderboard(ctx, 1, 10)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("empty guild", func(t *testing.T) {
		entries, err := repo.GuildLeaderboard(ctx, 99, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestLeaderboardRepository_GlobalLeaderboard(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	eventRepo := NewPointEventRepository(testDB.DB)
	repo := NewLeaderboardRepository(testDB.DB)
	ctx := context.Background()

	// User 10 reads in two guilds; user 20 in one
	_, err := eventRepo.Append(ctx, testutil.CreateTestGrant(1, 10, 10))
	require.NoError(t, err)
	_, err = eventRepo.Append(ctx, testutil.CreateTestGrant(2, 10, 15))
	require.NoError(t, err)
	_, err = eventRepo.Append(ctx, testutil.CreateTestGrant(1, 20, 20))
	require.NoError(t, err)

	entries, err := repo.GlobalLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(10), entries[0].UserID)
	assert.Equal(t, int64(25), entries[0].Total)
	assert.Equal(t, int64(20), entries[1].UserID)
	assert.Equal(t, int64(20), entries[1].Total)
}
