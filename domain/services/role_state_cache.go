package services

import "sync"

// RoleStateCache remembers the last reward role the reconciler applied
// per (guild, member). It is an in-memory optimization only: the
// external API's actual role list is always the authority, and the
// reconciler re-reads it before mutating. Losing this cache (process
// restart) costs nothing but a few redundant reads on the next pass.
//
// Lifecycle: created once per process, populated as passes complete,
// entries overwritten on every pass that touches the member.
type RoleStateCache struct {
	mu sync.RWMutex
	// guild -> member -> last applied reward role id (0 = no tier role)
	held map[int64]map[int64]int64
}

// NewRoleStateCache creates an empty role state cache
func NewRoleStateCache() *RoleStateCache {
	return &RoleStateCache{
		held: make(map[int64]map[int64]int64),
	}
}

// Get returns the last applied role id for a member and whether the
// cache holds an entry for them
func (c *RoleStateCache) Get(guildID, userID int64) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	members, ok := c.held[guildID]
	if !ok {
		return 0, false
	}
	roleID, ok := members[userID]
	return roleID, ok
}

// Set records the role the reconciler last applied for a member
func (c *RoleStateCache) Set(guildID, userID, roleID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	members, ok := c.held[guildID]
	if !ok {
		members = make(map[int64]int64)
		c.held[guildID] = members
	}
	members[userID] = roleID
}

// InvalidateGuild drops all cached state for one guild
func (c *RoleStateCache) InvalidateGuild(guildID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.held, guildID)
}
