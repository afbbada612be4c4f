package interfaces

import (
	"context"

	"vnclub/domain/entities"
)

// RoleGateway wraps the external role-management API. Implementations
// own retry semantics: transient failures (rate limits, network errors)
// are retried with backoff and surface as TransientError once exhausted;
// permission and unknown-role rejections surface as PermanentError.
type RoleGateway interface {
	AddRole(ctx context.Context, guildID, userID, roleID int64) error
	RemoveRole(ctx context.Context, guildID, userID, roleID int64) error

	// CurrentRewardRoles returns the subset of candidateRoleIDs the
	// member actually holds right now. This is the authoritative read
	// the reconciler diffs against.
	CurrentRewardRoles(ctx context.Context, guildID, userID int64, candidateRoleIDs []int64) ([]int64, error)
}

// VNCatalog resolves visual novel metadata from the external catalog.
// Lookup returns nil when the id is unknown.
type VNCatalog interface {
	Lookup(ctx context.Context, vndbID string) (*entities.VNInfo, error)
}
