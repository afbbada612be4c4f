package services

import (
	"context"
	"fmt"
	"sync"

	"vnclub/domain/entities"
	"vnclub/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// reconciliationService implements the ReconciliationService interface.
// Each pass converges every point-holding member's externally visible
// role state to the tier implied by their current total. Passes are
// idempotent: the diff is computed against the actual roles read from
// the external API, never against remembered state, so manual role
// edits and missed cycles self-heal on the next pass.
type reconciliationService struct {
	eventRepo     interfaces.PointEventRepository
	tierRepo      interfaces.RewardTierRepository
	roles         interfaces.RoleGateway
	cache         *RoleStateCache
	maxConcurrent int
}

// NewReconciliationService creates a new reconciliation service.
// maxConcurrent bounds parallel role API calls within one guild.
func NewReconciliationService(
	eventRepo interfaces.PointEventRepository,
	tierRepo interfaces.RewardTierRepository,
	roles interfaces.RoleGateway,
	maxConcurrent int,
) interfaces.ReconciliationService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &reconciliationService{
		eventRepo:     eventRepo,
		tierRepo:      tierRepo,
		roles:         roles,
		cache:         NewRoleStateCache(),
		maxConcurrent: maxConcurrent,
	}
}

// ReconcileGuild runs one reconciliation pass for a guild. Per-member
// failures are logged and counted but never abort the pass; only
// guild-level failures (tier config or ledger unreadable) return an
// error, and the caller retries the whole guild next cycle.
func (s *reconciliationService) ReconcileGuild(ctx context.Context, guildID int64) (*interfaces.ReconcileReport, error) {
	tiers, err := s.tierRepo.TiersFor(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reward tiers for guild %d: %w", guildID, err)
	}

	report := &interfaces.ReconcileReport{GuildID: guildID}

	if len(tiers) == 0 {
		report.Skipped = true
		return report, nil
	}

	// Enumerate via the ledger, not the guild member list, so work is
	// bounded to members who have ever earned points
	members, err := s.eventRepo.MembersWithPoints(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members with points for guild %d: %w", guildID, err)
	}

	candidateRoles := entities.TierRoleIDs(tiers)

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, member := range members {
		wg.Add(1)
		sem <- struct{}{}

		go func(m entities.MemberTotal) {
			defer wg.Done()
			defer func() { <-sem }()

			added, removed, err := s.reconcileMember(ctx, guildID, m, tiers, candidateRoles)

			mu.Lock()
			defer mu.Unlock()
			report.MembersChecked++
			report.RolesAdded += added
			report.RolesRemoved += removed
			if err != nil {
				report.MemberFailures++
				s.logMemberFailure(guildID, m.UserID, err)
			}
		}(member)
	}

	wg.Wait()

	return report, nil
}

// reconcileMember converges one member's role state. Returns the number
// of roles added and removed; a non-nil error means the member is left
// for the next cycle.
func (s *reconciliationService) reconcileMember(
	ctx context.Context,
	guildID int64,
	member entities.MemberTotal,
	tiers []*entities.RewardTier,
	candidateRoles []int64,
) (added, removed int, err error) {
	desired := entities.HighestQualifyingTier(tiers, member.Total)

	var desiredRole int64
	if desired != nil {
		desiredRole = desired.RoleID
	}

	// The external API is the authority, never the cache
	held, err := s.roles.CurrentRewardRoles(ctx, guildID, member.UserID, candidateRoles)
	if err != nil {
		return 0, 0, err
	}

	holdsDesired := false
	for _, roleID := range held {
		if roleID == desiredRole {
			holdsDesired = true
			continue
		}
		// Removes go first so a member is never left holding two tiers
		// longer than one API call's worth of time
		if removeErr := s.roles.RemoveRole(ctx, guildID, member.UserID, roleID); removeErr != nil {
			return added, removed, removeErr
		}
		removed++
	}

	if desiredRole != 0 && !holdsDesired {
		if addErr := s.roles.AddRole(ctx, guildID, member.UserID, desiredRole); addErr != nil {
			return added, removed, addErr
		}
		added++
	}

	// Best-effort bookkeeping; divergence self-heals next pass
	s.cache.Set(guildID, member.UserID, desiredRole)

	return added, removed, nil
}

func (s *reconciliationService) logMemberFailure(guildID, userID int64, err error) {
	fields := log.Fields{
		"guild_id": guildID,
		"user_id":  userID,
		"error":    err,
	}

	switch {
	case entities.IsPermanent(err):
		log.WithFields(fields).Error("Role update rejected permanently, operator attention needed")
	case entities.IsTransient(err):
		log.WithFields(fields).Warn("Role update failed transiently, will retry next cycle")
	default:
		log.WithFields(fields).Warn("Member reconciliation failed, will retry next cycle")
	}
}
