package testutil

import (
	"vnclub/domain/entities"
)

// CreateTestGrant creates a VN-completion point event with default values
func CreateTestGrant(guildID, userID, amount int64) *entities.PointEvent {
	reference := "v17"
	return &entities.PointEvent{
		GuildID:   guildID,
		UserID:    userID,
		Amount:    amount,
		Category:  entities.CategoryVNCompletion,
		Reference: &reference,
	}
}

// CreateTestReward creates a manual reward point event
func CreateTestReward(guildID, userID, amount int64) *entities.PointEvent {
	return &entities.PointEvent{
		GuildID:  guildID,
		UserID:   userID,
		Amount:   amount,
		Category: entities.CategoryManualReward,
	}
}

// CreateTestTier creates a reward tier
func CreateTestTier(guildID, threshold, roleID int64) *entities.RewardTier {
	return &entities.RewardTier{
		GuildID:   guildID,
		Threshold: threshold,
		RoleID:    roleID,
	}
}
