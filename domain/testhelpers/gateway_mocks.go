package testhelpers

import (
	"context"

	"vnclub/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockRoleGateway is a mock implementation of RoleGateway
type MockRoleGateway struct {
	mock.Mock
}

func (m *MockRoleGateway) AddRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockRoleGateway) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockRoleGateway) CurrentRewardRoles(ctx context.Context, guildID, userID int64, candidateRoleIDs []int64) ([]int64, error) {
	args := m.Called(ctx, guildID, userID, candidateRoleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockVNCatalog is a mock implementation of VNCatalog
type MockVNCatalog struct {
	mock.Mock
}

func (m *MockVNCatalog) Lookup(ctx context.Context, vndbID string) (*entities.VNInfo, error) {
	args := m.Called(ctx, vndbID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VNInfo), args.Error(1)
}
