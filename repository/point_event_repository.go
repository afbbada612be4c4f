package repository

import (
	"context"
	"fmt"

	"vnclub/database"
	"vnclub/domain/entities"

	"github.com/jackc/pgx/v5"
)

const defaultEventsLimit = 50

// PointEventRepository implements the PointEventRepository interface.
// Append and Tombstone update the event log and the cached totals in a
// single transaction, so the cache can never drift from committed
// history under concurrent writers.
type PointEventRepository struct {
	db *database.DB
}

// NewPointEventRepository creates a new point event repository
func NewPointEventRepository(db *database.DB) *PointEventRepository {
	return &PointEventRepository{db: db}
}

// Append persists the event and updates the cached member total atomically
func (r *PointEventRepository) Append(ctx context.Context, event *entities.PointEvent) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO point_events (guild_id, user_id, amount, category, reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		event.GuildID,
		event.UserID,
		event.Amount,
		event.Category,
		event.Reference,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert point event for user %d in guild %d: %w", event.UserID, event.GuildID, err)
	}

	// The additive upsert keeps concurrent appends safe: each transaction
	// adds its own delta instead of writing a read-modify-write total.
	totalQuery := `
		INSERT INTO point_totals (guild_id, user_id, total)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, user_id)
		DO UPDATE SET total = point_totals.total + EXCLUDED.total, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, totalQuery, event.GuildID, event.UserID, event.Amount); err != nil {
		return 0, fmt.Errorf("failed to update cached total for user %d in guild %d: %w", event.UserID, event.GuildID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit point event: %w", err)
	}

	return event.ID, nil
}

// GetByID retrieves a single event by id, tombstoned or not
func (r *PointEventRepository) GetByID(ctx context.Context, eventID int64) (*entities.PointEvent, error) {
	query := `
		SELECT id, guild_id, user_id, amount, category, reference, tombstoned, created_at
		FROM point_events
		WHERE id = $1
	`

	var event entities.PointEvent
	err := r.db.QueryRow(ctx, query, eventID).Scan(
		&event.ID,
		&event.GuildID,
		&event.UserID,
		&event.Amount,
		&event.Category,
		&event.Reference,
		&event.Tombstoned,
		&event.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, &entities.NotFoundError{Resource: "point event", ID: eventID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get point event %d: %w", eventID, err)
	}

	return &event, nil
}

// Tombstone marks an event as excluded from aggregation and subtracts its
// amount from the cached total. A second tombstone of the same event is a
// no-op; a nonexistent id is a NotFoundError.
func (r *PointEventRepository) Tombstone(ctx context.Context, eventID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	markQuery := `
		UPDATE point_events
		SET tombstoned = TRUE
		WHERE id = $1 AND NOT tombstoned
		RETURNING guild_id, user_id, amount
	`

	var guildID, userID, amount int64
	err = tx.QueryRow(ctx, markQuery, eventID).Scan(&guildID, &userID, &amount)
	if err == pgx.ErrNoRows {
		// Either already tombstoned (idempotent no-op) or missing
		var exists bool
		checkQuery := `SELECT EXISTS (SELECT 1 FROM point_events WHERE id = $1)`
		if err := tx.QueryRow(ctx, checkQuery, eventID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check point event %d: %w", eventID, err)
		}
		if !exists {
			return &entities.NotFoundError{Resource: "point event", ID: eventID}
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to tombstone point event %d: %w", eventID, err)
	}

	totalQuery := `
		UPDATE point_totals
		SET total = total - $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
	`
	if _, err := tx.Exec(ctx, totalQuery, guildID, userID, amount); err != nil {
		return fmt.Errorf("failed to update cached total for user %d in guild %d: %w", userID, guildID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tombstone: %w", err)
	}

	return nil
}

// EventsFor returns a member's events in a guild, newest first
func (r *PointEventRepository) EventsFor(ctx context.Context, guildID, userID int64, limit int) ([]*entities.PointEvent, error) {
	if limit <= 0 {
		limit = defaultEventsLimit
	}

	query := `
		SELECT id, guild_id, user_id, amount, category, reference, tombstoned, created_at
		FROM point_events
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for user %d in guild %d: %w", userID, guildID, err)
	}
	defer rows.Close()

	var events []*entities.PointEvent
	for rows.Next() {
		var event entities.PointEvent
		err := rows.Scan(
			&event.ID,
			&event.GuildID,
			&event.UserID,
			&event.Amount,
			&event.Category,
			&event.Reference,
			&event.Tombstoned,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan point event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate point events: %w", err)
	}

	return events, nil
}

// HasReference reports whether the member already has a live event with
// the given reference. Backs the duplicate-completion guard.
func (r *PointEventRepository) HasReference(ctx context.Context, guildID, userID int64, reference string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM point_events
			WHERE guild_id = $1 AND user_id = $2 AND reference = $3 AND NOT tombstoned
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, guildID, userID, reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reference %q for user %d in guild %d: %w", reference, userID, guildID, err)
	}

	return exists, nil
}

// Total returns the cached point total; unknown members have 0 points
func (r *PointEventRepository) Total(ctx context.Context, guildID, userID int64) (int64, error) {
	query := `SELECT total FROM point_totals WHERE guild_id = $1 AND user_id = $2`

	var total int64
	err := r.db.QueryRow(ctx, query, guildID, userID).Scan(&total)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get total for user %d in guild %d: %w", userID, guildID, err)
	}

	return total, nil
}

// TotalGlobal returns the sum of a user's totals across all guilds
func (r *PointEventRepository) TotalGlobal(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(total), 0) FROM point_totals WHERE user_id = $1`

	var total int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get global total for user %d: %w", userID, err)
	}

	return total, nil
}

// RecomputeTotal rebuilds the cached total from the full non-tombstoned
// event history. Used as the consistency check and repair path.
func (r *PointEventRepository) RecomputeTotal(ctx context.Context, guildID, userID int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sumQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM point_events
		WHERE guild_id = $1 AND user_id = $2 AND NOT tombstoned
	`

	var total int64
	if err := tx.QueryRow(ctx, sumQuery, guildID, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to recompute total for user %d in guild %d: %w", userID, guildID, err)
	}

	upsertQuery := `
		INSERT INTO point_totals (guild_id, user_id, total)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, user_id)
		DO UPDATE SET total = EXCLUDED.total, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, upsertQuery, guildID, userID, total); err != nil {
		return 0, fmt.Errorf("failed to store recomputed total for user %d in guild %d: %w", userID, guildID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit recomputed total: %w", err)
	}

	return total, nil
}

// MembersWithPoints returns every member of the guild with a non-zero
// cached total, highest first
func (r *PointEventRepository) MembersWithPoints(ctx context.Context, guildID int64) ([]entities.MemberTotal, error) {
	query := `
		SELECT guild_id, user_id, total
		FROM point_totals
		WHERE guild_id = $1 AND total != 0
		ORDER BY total DESC, user_id ASC
	`

	rows, err := r.db.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members with points in guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var members []entities.MemberTotal
	for rows.Next() {
		var member entities.MemberTotal
		if err := rows.Scan(&member.GuildID, &member.UserID, &member.Total); err != nil {
			return nil, fmt.Errorf("failed to scan member total: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate member totals: %w", err)
	}

	return members, nil
}
