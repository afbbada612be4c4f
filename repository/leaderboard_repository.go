package repository

import (
	"context"
	"fmt"

	"vnclub/database"
	"vnclub/domain/entities"
)

// LeaderboardRepository implements the LeaderboardRepository interface.
// Both views read the cached totals; ordering is descending by total with
// ties broken by ascending user id so results are deterministic.
type LeaderboardRepository struct {
	q Queryable
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository(db *database.DB) *LeaderboardRepository {
	return &LeaderboardRepository{q: db.Pool}
}

// GuildLeaderboard returns the top members of one guild by point total
func (r *LeaderboardRepository) GuildLeaderboard(ctx context.Context, guildID int64, limit int) ([]entities.LeaderboardEntry, error) {
	query := `
		SELECT user_id, total
		FROM point_totals
		WHERE guild_id = $1 AND total > 0
		ORDER BY total DESC, user_id ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	return scanLeaderboard(rows)
}

// GlobalLeaderboard returns the top users by total across all guilds
func (r *LeaderboardRepository) GlobalLeaderboard(ctx context.Context, limit int) ([]entities.LeaderboardEntry, error) {
	query := `
		SELECT user_id, SUM(total) AS total
		FROM point_totals
		GROUP BY user_id
		HAVING SUM(total) > 0
		ORDER BY total DESC, user_id ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get global leaderboard: %w", err)
	}
	defer rows.Close()

	return scanLeaderboard(rows)
}

type leaderboardRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLeaderboard(rows leaderboardRows) ([]entities.LeaderboardEntry, error) {
	var entries []entities.LeaderboardEntry
	rank := 1
	for rows.Next() {
		var entry entities.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Total); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Rank = rank
		rank++
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard entries: %w", err)
	}

	return entries, nil
}
