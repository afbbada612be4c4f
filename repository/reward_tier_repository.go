package repository

import (
	"context"
	"fmt"

	"vnclub/database"
	"vnclub/domain/entities"
)

// RewardTierRepository implements the RewardTierRepository interface
type RewardTierRepository struct {
	q Queryable
}

// NewRewardTierRepository creates a new reward tier repository
func NewRewardTierRepository(db *database.DB) *RewardTierRepository {
	return &RewardTierRepository{q: db.Pool}
}

// TiersFor returns a guild's tiers sorted ascending by threshold
func (r *RewardTierRepository) TiersFor(ctx context.Context, guildID int64) ([]*entities.RewardTier, error) {
	query := `
		SELECT guild_id, threshold, role_id
		FROM reward_tiers
		WHERE guild_id = $1
		ORDER BY threshold ASC
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reward tiers for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var tiers []*entities.RewardTier
	for rows.Next() {
		var tier entities.RewardTier
		if err := rows.Scan(&tier.GuildID, &tier.Threshold, &tier.RoleID); err != nil {
			return nil, fmt.Errorf("failed to scan reward tier: %w", err)
		}
		tiers = append(tiers, &tier)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reward tiers: %w", err)
	}

	return tiers, nil
}

// Insert adds a tier to a guild's family
func (r *RewardTierRepository) Insert(ctx context.Context, tier *entities.RewardTier) error {
	query := `
		INSERT INTO reward_tiers (guild_id, threshold, role_id)
		VALUES ($1, $2, $3)
	`

	if _, err := r.q.Exec(ctx, query, tier.GuildID, tier.Threshold, tier.RoleID); err != nil {
		return fmt.Errorf("failed to insert reward tier (guild %d, threshold %d): %w", tier.GuildID, tier.Threshold, err)
	}

	return nil
}

// Delete removes the tier at the given threshold
func (r *RewardTierRepository) Delete(ctx context.Context, guildID, threshold int64) error {
	query := `DELETE FROM reward_tiers WHERE guild_id = $1 AND threshold = $2`

	result, err := r.q.Exec(ctx, query, guildID, threshold)
	if err != nil {
		return fmt.Errorf("failed to delete reward tier (guild %d, threshold %d): %w", guildID, threshold, err)
	}

	if result.RowsAffected() == 0 {
		return &entities.NotFoundError{Resource: "reward tier", ID: threshold}
	}

	return nil
}

// GuildIDs returns every guild with at least one tier configured
func (r *RewardTierRepository) GuildIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT guild_id FROM reward_tiers ORDER BY guild_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get guilds with reward tiers: %w", err)
	}
	defer rows.Close()

	var guildIDs []int64
	for rows.Next() {
		var guildID int64
		if err := rows.Scan(&guildID); err != nil {
			return nil, fmt.Errorf("failed to scan guild id: %w", err)
		}
		guildIDs = append(guildIDs, guildID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guild ids: %w", err)
	}

	return guildIDs, nil
}
