package entities

// RewardTier maps a point threshold to a Discord role within one guild.
// A guild's tiers form an ordered family; a member holds at most one
// tier role at a time, the highest whose threshold they have reached.
type RewardTier struct {
	GuildID   int64 `db:"guild_id"`
	Threshold int64 `db:"threshold"`
	RoleID    int64 `db:"role_id"`
}

// Validate checks the tier is well-formed on its own
func (t *RewardTier) Validate() error {
	if t.GuildID == 0 {
		return NewValidationError("guild_id", "must be present")
	}
	if t.Threshold < 1 {
		return &ConfigError{Reason: "threshold must be >= 1"}
	}
	if t.RoleID == 0 {
		return &ConfigError{Reason: "role_id must be present"}
	}
	return nil
}

// HighestQualifyingTier returns the tier with the greatest threshold that
// total meets or exceeds, or nil if total is below the lowest threshold.
// Tiers must be sorted ascending by threshold.
func HighestQualifyingTier(tiers []*RewardTier, total int64) *RewardTier {
	var qualified *RewardTier
	for _, tier := range tiers {
		if total >= tier.Threshold {
			qualified = tier
		} else {
			break
		}
	}
	return qualified
}

// TierRoleIDs returns the role ids of all tiers in the family, in
// threshold order. Used to restrict role reads to the reward family.
func TierRoleIDs(tiers []*RewardTier) []int64 {
	ids := make([]int64, 0, len(tiers))
	for _, tier := range tiers {
		ids = append(ids, tier.RoleID)
	}
	return ids
}

// ValidateTierFamily checks a guild's full tier list for strictly
// increasing thresholds and unique role ids.
func ValidateTierFamily(tiers []*RewardTier) error {
	seenRoles := make(map[int64]bool, len(tiers))
	var prevThreshold int64
	for i, tier := range tiers {
		if err := tier.Validate(); err != nil {
			return err
		}
		if i > 0 && tier.Threshold <= prevThreshold {
			return &ConfigError{Reason: "thresholds must be strictly increasing"}
		}
		if seenRoles[tier.RoleID] {
			return &ConfigError{Reason: "role ids must be unique within a guild"}
		}
		seenRoles[tier.RoleID] = true
		prevThreshold = tier.Threshold
	}
	return nil
}
