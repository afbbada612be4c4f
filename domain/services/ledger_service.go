package services

import (
	"context"
	"fmt"

	"vnclub/domain/entities"
	"vnclub/domain/interfaces"
	"vnclub/events"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	eventRepo interfaces.PointEventRepository
	bus       *events.Bus
}

// NewLedgerService creates a new ledger service
func NewLedgerService(eventRepo interfaces.PointEventRepository, bus *events.Bus) interfaces.LedgerService {
	return &ledgerService{
		eventRepo: eventRepo,
		bus:       bus,
	}
}

// Append validates and records a point event. The event and the cached
// total are persisted atomically by the repository; a points_changed
// event is emitted only after the write committed.
func (s *ledgerService) Append(ctx context.Context, event *entities.PointEvent) (int64, error) {
	if err := event.Validate(); err != nil {
		return 0, err
	}

	eventID, err := s.eventRepo.Append(ctx, event)
	if err != nil {
		return 0, fmt.Errorf("failed to append point event: %w", err)
	}

	newTotal, err := s.eventRepo.Total(ctx, event.GuildID, event.UserID)
	if err != nil {
		// The append itself succeeded; the total is only for the event payload
		newTotal = 0
	}

	s.bus.Emit(ctx, events.PointsChangedEvent{
		EventID:  eventID,
		GuildID:  event.GuildID,
		UserID:   event.UserID,
		Amount:   event.Amount,
		NewTotal: newTotal,
		Category: string(event.Category),
	})

	return eventID, nil
}

// Tombstone excludes an event from aggregation. Tombstoning an already
// tombstoned event is a no-op; a nonexistent id is a NotFoundError.
func (s *ledgerService) Tombstone(ctx context.Context, eventID int64) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	if event.Tombstoned {
		return nil
	}

	if err := s.eventRepo.Tombstone(ctx, eventID); err != nil {
		return fmt.Errorf("failed to tombstone point event %d: %w", eventID, err)
	}

	newTotal, err := s.eventRepo.Total(ctx, event.GuildID, event.UserID)
	if err != nil {
		newTotal = 0
	}

	s.bus.Emit(ctx, events.PointsChangedEvent{
		EventID:  eventID,
		GuildID:  event.GuildID,
		UserID:   event.UserID,
		Amount:   -event.Amount,
		NewTotal: newTotal,
		Category: string(entities.CategoryCorrection),
	})

	return nil
}

// Total returns the member's current point total in a guild
func (s *ledgerService) Total(ctx context.Context, guildID, userID int64) (int64, error) {
	return s.eventRepo.Total(ctx, guildID, userID)
}

// TotalGlobal returns the user's point total across all guilds
func (s *ledgerService) TotalGlobal(ctx context.Context, userID int64) (int64, error) {
	return s.eventRepo.TotalGlobal(ctx, userID)
}

// EventsFor lists a member's events in a guild, newest first
func (s *ledgerService) EventsFor(ctx context.Context, guildID, userID int64, limit int) ([]*entities.PointEvent, error) {
	return s.eventRepo.EventsFor(ctx, guildID, userID, limit)
}

// HasLogged reports whether the member already has a live event for the
// given reference
func (s *ledgerService) HasLogged(ctx context.Context, guildID, userID int64, reference string) (bool, error) {
	return s.eventRepo.HasReference(ctx, guildID, userID, reference)
}

// VerifyTotal recomputes the member's total from the full event history
// and reports whether it matched the cached value. The recomputation
// also repairs the cache when they disagree.
func (s *ledgerService) VerifyTotal(ctx context.Context, guildID, userID int64) (bool, error) {
	cached, err := s.eventRepo.Total(ctx, guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to read cached total: %w", err)
	}

	recomputed, err := s.eventRepo.RecomputeTotal(ctx, guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to recompute total: %w", err)
	}

	return cached == recomputed, nil
}
