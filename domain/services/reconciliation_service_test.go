package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"vnclub/domain/entities"
	"vnclub/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func reconcileTestTiers() []*entities.RewardTier {
	return []*entities.RewardTier{
		{GuildID: 1, Threshold: 1, RoleID: 100},
		{GuildID: 1, Threshold: 50, RoleID: 200},
		{GuildID: 1, Threshold: 100, RoleID: 300},
	}
}

// recordingRoleGateway records every role mutation in order. Used to
// assert removals happen before additions.
type recordingRoleGateway struct {
	mu      sync.Mutex
	held    map[int64][]int64 // userID -> held reward role ids
	actions []string
}

func newRecordingRoleGateway() *recordingRoleGateway {
	return &recordingRoleGateway{held: make(map[int64][]int64)}
}

func (g *recordingRoleGateway) setHeld(userID int64, roleIDs ...int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held[userID] = roleIDs
}

func (g *recordingRoleGateway) AddRole(ctx context.Context, guildID, userID, roleID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actions = append(g.actions, fmt.Sprintf("add:%d:%d", userID, roleID))
	g.held[userID] = append(g.held[userID], roleID)
	return nil
}

func (g *recordingRoleGateway) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actions = append(g.actions, fmt.Sprintf("remove:%d:%d", userID, roleID))
	var remaining []int64
	for _, id := range g.held[userID] {
		if id != roleID {
			remaining = append(remaining, id)
		}
	}
	g.held[userID] = remaining
	return nil
}

func (g *recordingRoleGateway) CurrentRewardRoles(ctx context.Context, guildID, userID int64, candidateRoleIDs []int64) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	candidates := make(map[int64]bool, len(candidateRoleIDs))
	for _, id := range candidateRoleIDs {
		candidates[id] = true
	}
	var result []int64
	for _, id := range g.held[userID] {
		if candidates[id] {
			result = append(result, id)
		}
	}
	return result, nil
}

func (g *recordingRoleGateway) recordedActions() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.actions...)
}

func TestReconciliationService_ConvergedMemberMakesNoAPICalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	eventRepo := new(testhelpers.MockPointEventRepository)
	eventRepo.On("MembersWithPoints", mock.Anything, int64(1)).
		Return([]entities.MemberTotal{{GuildID: 1, UserID: 42, Total: 60}}, nil)

	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("TiersFor", mock.Anything, int64(1)).Return(reconcileTestTiers(), nil)

	gateway := new(testhelpers.MockRoleGateway)
	gateway.On("CurrentRewardRoles", mock.Anything, int64(1), int64(42), mock.Anything).
		Return([]int64{200}, nil)

	service := NewReconciliationService(eventRepo, tierRepo, gateway, 4)

	report, err := service.ReconcileGuild(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, report.MembersChecked)
	assert.Equal(t, 0, report.RolesAdded)
	assert.Equal(t, 0, report.RolesRemoved)
	assert.Equal(t, 0, report.MemberFailures)
	gateway.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	gateway.AssertNotCalled(t, "RemoveRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciliationService_ReAddsManuallyRemovedRole(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	eventRepo := new(testhelpers.MockPointEventRepository)
	eventRepo.On("MembersWithPoints", mock.Anything, int64(1)).
		Return([]entities.MemberTotal{{GuildID: 1, UserID: 42, Total: 60}}, nil)

	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("TiersFor", mock.Anything, int64(1)).Return(reconcileTestTiers(), nil)

	// The member earned the 50-point tier but someone stripped the role
	gateway := newRecordingRoleGateway()
	gateway.setHeld(42)

	service := NewReconciliationService(eventRepo, tierRepo, gateway, 4)

	report, err := service.ReconcileGuild(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, report.RolesAdded)
	assert.Equal(t, []string{"add:42:200"}, gateway.recordedActions())
}

func TestReconciliationService_RemovesBeforeAdding(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	eventRepo := new(testhelpers.MockPointEventRepository)
	eventRepo.On("MembersWithPoints", mock.Anything, int64(1)).
		Return([]entities.MemberTotal{{GuildID: 1, UserID: 42, Total: 120}}, nil)

	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("TiersFor", mock.Anything, int64(1)).Return(reconcileTestTiers(), nil)

	// The member crossed into the top tier while still holding the
	// previous one
	gateway := newRecordingRoleGateway()
	gateway.setHeld(42, 200)

	service := NewReconciliationService(eventRepo, tierRepo, gateway, 4)

	report, err := service.ReconcileGuild(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, report.RolesAdded)
	assert.Equal(t, 1, report.RolesRemoved)
	assert.Equal(t, []string{"remove:42:200", "add:42:300"}, gateway.recordedActions())
	assert.Equal(t, []int64{300}, gateway.held[42])
}

func TestReconciliationService_StripsRolesBelowLowestThreshold(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Corrections drove the total negative; no tier applies anymore
	eventRepo := new(testhelpers.MockPointEventRepository)
	eventRepo.On("MembersWithPoints", mock.Anything, int64(1)).
		Return([]entities.MemberTotal{{GuildID: 1, UserID: 42, Total: -5}}, nil)

	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("TiersFor", mock.Anything, int64(1)).Return(reconcileTestTiers(), nil)

	gateway := newRecordingRoleGateway()
	gateway.setHeld(42, 100)

	service := NewReconciliationService(eventRepo, tierRepo, gateway, 4)

	report, err := service.ReconcileGuild(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, report.RolesAdded)
	assert.Equal(t, 1, report.RolesRemoved)
	assert.Empty(t, gateway.held[42])
}

func TestReconciliationService_MemberFailureDoesNotAbortPass(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	eventRepo := new(testhelpers.MockPointEventRepository)
	eventRepo.On("MembersWithPoints", mock.Anything, int64(1)).
		Return([]entities.MemberTotal{
			{GuildID: 1, UserID: 42, Total: 60},
			{GuildID: 1, UserID: 43, Total: 5},
		}, nil)

	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("TiersFor", mock.Anything, int64(1)).Return(reconcileTestTiers(), nil)

	gateway := new(testhelpers.MockRoleGateway)
	gateway.On("CurrentRewardRoles", mock.Anything, int64(1), int64(42), mock.Anything).
		Return(nil, &entities.TransientError{Op: "read roles", Attempts: 3, Err: fmt.Errorf("rate limited")})
	gateway.On("CurrentRewardRoles", mock.Anything, int64(1), int64(43), mock.Anything).
		Return([]int64{}, nil)
	gateway.On("AddRole", mock.Anything, int64(1), int64(43), int64(100)).Return(nil)

	service := NewReconciliationService(eventRepo, tierRepo, gateway, 4)

	report, err := service.ReconcileGuild(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, report.MembersChecked)
	assert.Equal(t, 1, report.MemberFailures)
	assert.Equal(t, 1, report.RolesAdded)
	gateway.AssertExpectations(t)
}

func TestReconciliationService_SkipsGuildWithoutTiers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	eventRepo := new(testhelpers.MockPointEventRepository)
	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("TiersFor", mock.Anything, int64(1)).Return([]*entities.RewardTier{}, nil)

	gateway := new(testhelpers.MockRoleGateway)

	service := NewReconciliationService(eventRepo, tierRepo, gateway, 4)

	report, err := service.ReconcileGuild(ctx, 1)
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	eventRepo.AssertNotCalled(t, "MembersWithPoints", mock.Anything, mock.Anything)
}

func TestReconciliationService_GuildLevelFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	eventRepo := new(testhelpers.MockPointEventRepository)
	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("TiersFor", mock.Anything, int64(1)).
		Return(nil, fmt.Errorf("connection refused"))

	service := NewReconciliationService(eventRepo, tierRepo, new(testhelpers.MockRoleGateway), 4)

	_, err := service.ReconcileGuild(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reward tiers")
}

func TestReconciliationService_PassIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	eventRepo := new(testhelpers.MockPointEventRepository)
	eventRepo.On("MembersWithPoints", mock.Anything, int64(1)).
		Return([]entities.MemberTotal{{GuildID: 1, UserID: 42, Total: 60}}, nil)

	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("TiersFor", mock.Anything, int64(1)).Return(reconcileTestTiers(), nil)

	gateway := newRecordingRoleGateway()
	gateway.setHeld(42, 100)

	service := NewReconciliationService(eventRepo, tierRepo, gateway, 4)

	first, err := service.ReconcileGuild(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.RolesAdded)
	assert.Equal(t, 1, first.RolesRemoved)

	// Running again on converged state touches nothing
	second, err := service.ReconcileGuild(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, second.RolesAdded)
	assert.Equal(t, 0, second.RolesRemoved)
	assert.Equal(t, []string{"remove:42:100", "add:42:200"}, gateway.recordedActions())
}
