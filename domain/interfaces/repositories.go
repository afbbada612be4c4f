package interfaces

import (
	"context"

	"vnclub/domain/entities"
)

// PointEventRepository defines the persistence contract for the points
// ledger: an append-only event log plus cached per-member totals.
type PointEventRepository interface {
	// Append persists the event and atomically updates the cached total
	// for the affected (guild, user). Returns the assigned event id.
	Append(ctx context.Context, event *entities.PointEvent) (int64, error)

	// GetByID retrieves a single event, tombstoned or not
	GetByID(ctx context.Context, eventID int64) (*entities.PointEvent, error)

	// Tombstone excludes an event from aggregation without deleting it.
	// Idempotent when the event is already tombstoned; returns a
	// NotFoundError when the id does not exist.
	Tombstone(ctx context.Context, eventID int64) error

	// EventsFor returns a member's events in a guild, newest first
	EventsFor(ctx context.Context, guildID, userID int64, limit int) ([]*entities.PointEvent, error)

	// HasReference reports whether the member already has a live
	// (non-tombstoned) event carrying the given reference
	HasReference(ctx context.Context, guildID, userID int64, reference string) (bool, error)

	// Total returns the cached point total, 0 for unknown members
	Total(ctx context.Context, guildID, userID int64) (int64, error)

	// TotalGlobal returns the sum of a user's totals across all guilds
	TotalGlobal(ctx context.Context, userID int64) (int64, error)

	// RecomputeTotal rebuilds the cached total from the full
	// non-tombstoned event history and returns the recomputed value
	RecomputeTotal(ctx context.Context, guildID, userID int64) (int64, error)

	// MembersWithPoints returns every member of the guild with a
	// non-zero cached total
	MembersWithPoints(ctx context.Context, guildID int64) ([]entities.MemberTotal, error)
}

// RewardTierRepository defines persistence for per-guild tier families
type RewardTierRepository interface {
	// TiersFor returns a guild's tiers sorted ascending by threshold
	TiersFor(ctx context.Context, guildID int64) ([]*entities.RewardTier, error)

	// Insert adds a tier; the caller is responsible for family-level
	// validation before calling
	Insert(ctx context.Context, tier *entities.RewardTier) error

	// Delete removes the tier at the given threshold; returns a
	// NotFoundError when no such tier exists
	Delete(ctx context.Context, guildID, threshold int64) error

	// GuildIDs returns every guild that has at least one tier configured
	GuildIDs(ctx context.Context) ([]int64, error)
}

// LeaderboardRepository defines the read-side leaderboard queries.
// Ordering is descending by total with ties broken by ascending user id,
// which keeps results deterministic without extra bookkeeping.
type LeaderboardRepository interface {
	GuildLeaderboard(ctx context.Context, guildID int64, limit int) ([]entities.LeaderboardEntry, error)
	GlobalLeaderboard(ctx context.Context, limit int) ([]entities.LeaderboardEntry, error)
}
