package interfaces

import (
	"context"

	"vnclub/domain/entities"
	"vnclub/events"
)

// EventPublisher publishes domain events to external consumers
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// LedgerService owns the append-only points ledger and derived totals
type LedgerService interface {
	// Append validates and records a point event, returning its id
	Append(ctx context.Context, event *entities.PointEvent) (int64, error)

	// Tombstone excludes an event from totals; idempotent on repeat
	Tombstone(ctx context.Context, eventID int64) error

	// Total returns the member's current point total in a guild
	Total(ctx context.Context, guildID, userID int64) (int64, error)

	// TotalGlobal returns the user's point total across all guilds
	TotalGlobal(ctx context.Context, userID int64) (int64, error)

	// EventsFor lists a member's events in a guild, newest first
	EventsFor(ctx context.Context, guildID, userID int64, limit int) ([]*entities.PointEvent, error)

	// HasLogged reports whether the member already has a live event for
	// the reference (e.g. a VN already marked finished)
	HasLogged(ctx context.Context, guildID, userID int64, reference string) (bool, error)

	// VerifyTotal recomputes the total from history and reports whether
	// it matched the cached value, repairing the cache if not
	VerifyTotal(ctx context.Context, guildID, userID int64) (bool, error)
}

// TierService owns per-guild reward tier configuration
type TierService interface {
	TiersFor(ctx context.Context, guildID int64) ([]*entities.RewardTier, error)
	AddTier(ctx context.Context, tier *entities.RewardTier) error
	RemoveTier(ctx context.Context, guildID, threshold int64) error
}

// LeaderboardService computes read-side leaderboard views
type LeaderboardService interface {
	GuildLeaderboard(ctx context.Context, guildID int64, limit int) ([]entities.LeaderboardEntry, error)
	GlobalLeaderboard(ctx context.Context, limit int) ([]entities.LeaderboardEntry, error)
}

// ReconcileReport summarizes one reconciliation pass over a guild
type ReconcileReport struct {
	GuildID        int64
	MembersChecked int
	RolesAdded     int
	RolesRemoved   int
	MemberFailures int
	Skipped        bool
}

// ReconciliationService converges each member's externally visible role
// state to the state implied by their current point total
type ReconciliationService interface {
	// ReconcileGuild runs one reconciliation pass for a guild.
	// Per-member failures are contained and counted in the report;
	// only guild-level failures (e.g. tier config unreadable) error.
	ReconcileGuild(ctx context.Context, guildID int64) (*ReconcileReport, error)
}
