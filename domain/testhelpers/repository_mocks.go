package testhelpers

import (
	"context"

	"vnclub/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockPointEventRepository is a mock implementation of PointEventRepository
type MockPointEventRepository struct {
	mock.Mock
}

func (m *MockPointEventRepository) Append(ctx context.Context, event *entities.PointEvent) (int64, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointEventRepository) GetByID(ctx context.Context, eventID int64) (*entities.PointEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PointEvent), args.Error(1)
}

func (m *MockPointEventRepository) Tombstone(ctx context.Context, eventID int64) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockPointEventRepository) EventsFor(ctx context.Context, guildID, userID int64, limit int) ([]*entities.PointEvent, error) {
	args := m.Called(ctx, guildID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PointEvent), args.Error(1)
}

func (m *MockPointEventRepository) HasReference(ctx context.Context, guildID, userID int64, reference string) (bool, error) {
	args := m.Called(ctx, guildID, userID, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockPointEventRepository) Total(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointEventRepository) TotalGlobal(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointEventRepository) RecomputeTotal(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointEventRepository) MembersWithPoints(ctx context.Context, guildID int64) ([]entities.MemberTotal, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.MemberTotal), args.Error(1)
}

// MockRewardTierRepository is a mock implementation of RewardTierRepository
type MockRewardTierRepository struct {
	mock.Mock
}

func (m *MockRewardTierRepository) TiersFor(ctx context.Context, guildID int64) ([]*entities.RewardTier, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RewardTier), args.Error(1)
}

func (m *MockRewardTierRepository) Insert(ctx context.Context, tier *entities.RewardTier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *MockRewardTierRepository) Delete(ctx context.Context, guildID, threshold int64) error {
	args := m.Called(ctx, guildID, threshold)
	return args.Error(0)
}

func (m *MockRewardTierRepository) GuildIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockLeaderboardRepository is a mock implementation of LeaderboardRepository
type MockLeaderboardRepository struct {
	mock.Mock
}

func (m *MockLeaderboardRepository) GuildLeaderboard(ctx context.Context, guildID int64, limit int) ([]entities.LeaderboardEntry, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardRepository) GlobalLeaderboard(ctx context.Context, limit int) ([]entities.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.LeaderboardEntry), args.Error(1)
}
