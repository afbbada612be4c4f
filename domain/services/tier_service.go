package services

import (
	"context"
	"fmt"
	"sort"

	"vnclub/domain/entities"
	"vnclub/domain/interfaces"
	"vnclub/events"
)

// tierService implements the TierService interface
type tierService struct {
	tierRepo interfaces.RewardTierRepository
	bus      *events.Bus
}

// NewTierService creates a new tier service
func NewTierService(tierRepo interfaces.RewardTierRepository, bus *events.Bus) interfaces.TierService {
	return &tierService{
		tierRepo: tierRepo,
		bus:      bus,
	}
}

// TiersFor returns a guild's tiers sorted ascending by threshold
func (s *tierService) TiersFor(ctx context.Context, guildID int64) ([]*entities.RewardTier, error) {
	return s.tierRepo.TiersFor(ctx, guildID)
}

// AddTier validates the tier against the guild's existing family and
// persists it. Thresholds must stay strictly increasing and role ids
// unique; violations are ConfigErrors.
func (s *tierService) AddTier(ctx context.Context, tier *entities.RewardTier) error {
	if err := tier.Validate(); err != nil {
		return err
	}

	existing, err := s.tierRepo.TiersFor(ctx, tier.GuildID)
	if err != nil {
		return fmt.Errorf("failed to get existing tiers for guild %d: %w", tier.GuildID, err)
	}

	candidate := make([]*entities.RewardTier, 0, len(existing)+1)
	candidate = append(candidate, existing...)
	candidate = append(candidate, tier)
	sort.Slice(candidate, func(i, j int) bool {
		return candidate[i].Threshold < candidate[j].Threshold
	})

	if err := entities.ValidateTierFamily(candidate); err != nil {
		return err
	}

	if err := s.tierRepo.Insert(ctx, tier); err != nil {
		return fmt.Errorf("failed to add tier for guild %d: %w", tier.GuildID, err)
	}

	s.bus.Emit(ctx, events.TiersChangedEvent{GuildID: tier.GuildID})

	return nil
}

// RemoveTier deletes the tier at the given threshold
func (s *tierService) RemoveTier(ctx context.Context, guildID, threshold int64) error {
	if err := s.tierRepo.Delete(ctx, guildID, threshold); err != nil {
		return err
	}

	s.bus.Emit(ctx, events.TiersChangedEvent{GuildID: guildID})

	return nil
}
