package entities

import (
	"time"
)

// EventCategory represents the origin of a point-granting event
type EventCategory string

const (
	CategoryVNCompletion EventCategory = "vn_completion"
	CategoryManualReward EventCategory = "manual_reward"
	CategoryCorrection   EventCategory = "correction"
)

// IsValid returns true if the category is one of the known event categories
func (c EventCategory) IsValid() bool {
	switch c {
	case CategoryVNCompletion, CategoryManualReward, CategoryCorrection:
		return true
	}
	return false
}

// PointEvent represents a single immutable entry in the points ledger.
// Events are never mutated in place; a deletion is a tombstone that
// excludes the event from aggregation while keeping it in history.
type PointEvent struct {
	ID         int64         `db:"id"`
	GuildID    int64         `db:"guild_id"`
	UserID     int64         `db:"user_id"`
	Amount     int64         `db:"amount"`
	Category   EventCategory `db:"category"`
	Reference  *string       `db:"reference"`
	Tombstoned bool          `db:"tombstoned"`
	CreatedAt  time.Time     `db:"created_at"`
}

// Validate checks the event is acceptable for appending to the ledger
func (e *PointEvent) Validate() error {
	if e.GuildID == 0 {
		return NewValidationError("guild_id", "must be present")
	}
	if e.UserID == 0 {
		return NewValidationError("user_id", "must be present")
	}
	if e.Amount == 0 {
		return NewValidationError("amount", "must be non-zero")
	}
	if !e.Category.IsValid() {
		return NewValidationError("category", "unknown event category")
	}
	return nil
}

// IsGrant returns true if the event adds points
func (e *PointEvent) IsGrant() bool {
	return e.Amount > 0
}

// IsCorrection returns true if the event subtracts points
func (e *PointEvent) IsCorrection() bool {
	return e.Amount < 0
}

// MemberTotal pairs a member with their current point total in one guild
type MemberTotal struct {
	GuildID int64 `db:"guild_id"`
	UserID  int64 `db:"user_id"`
	Total   int64 `db:"total"`
}
