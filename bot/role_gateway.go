package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vnclub/domain/entities"
	"vnclub/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	roleMaxAttempts = 3
	roleBaseDelay   = 500 * time.Millisecond
)

// discordRoleGateway implements the RoleGateway interface against the
// Discord REST API. Rate limits and network hiccups are retried with
// exponential backoff; permission and unknown-entity rejections are not,
// since retrying cannot fix them.
type discordRoleGateway struct {
	session *discordgo.Session
}

// NewRoleGateway creates a RoleGateway backed by a Discord session
func NewRoleGateway(session *discordgo.Session) interfaces.RoleGateway {
	return &discordRoleGateway{session: session}
}

func (g *discordRoleGateway) AddRole(ctx context.Context, guildID, userID, roleID int64) error {
	op := fmt.Sprintf("add role %d to user %d in guild %d", roleID, userID, guildID)
	return g.withRetry(ctx, op, func() error {
		return g.session.GuildMemberRoleAdd(
			strconv.FormatInt(guildID, 10),
			strconv.FormatInt(userID, 10),
			strconv.FormatInt(roleID, 10),
		)
	})
}

func (g *discordRoleGateway) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	op := fmt.Sprintf("remove role %d from user %d in guild %d", roleID, userID, guildID)
	return g.withRetry(ctx, op, func() error {
		return g.session.GuildMemberRoleRemove(
			strconv.FormatInt(guildID, 10),
			strconv.FormatInt(userID, 10),
			strconv.FormatInt(roleID, 10),
		)
	})
}

func (g *discordRoleGateway) CurrentRewardRoles(ctx context.Context, guildID, userID int64, candidateRoleIDs []int64) ([]int64, error) {
	op := fmt.Sprintf("read roles of user %d in guild %d", userID, guildID)

	var member *discordgo.Member
	err := g.withRetry(ctx, op, func() error {
		var fetchErr error
		member, fetchErr = g.session.GuildMember(
			strconv.FormatInt(guildID, 10),
			strconv.FormatInt(userID, 10),
		)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	candidates := make(map[int64]bool, len(candidateRoleIDs))
	for _, id := range candidateRoleIDs {
		candidates[id] = true
	}

	var held []int64
	for _, roleStr := range member.Roles {
		roleID, parseErr := strconv.ParseInt(roleStr, 10, 64)
		if parseErr != nil {
			continue
		}
		if candidates[roleID] {
			held = append(held, roleID)
		}
	}

	return held, nil
}

// withRetry runs fn, retrying transient failures with exponential
// backoff. Returns PermanentError for rejections retrying cannot fix
// and TransientError once attempts are exhausted.
func (g *discordRoleGateway) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= roleMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return &entities.TransientError{Op: op, Attempts: attempt - 1, Err: err}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if isPermanentRejection(lastErr) {
			return &entities.PermanentError{Op: op, Err: lastErr}
		}

		if attempt < roleMaxAttempts {
			delay := roleBaseDelay * time.Duration(1<<(attempt-1))
			log.WithFields(log.Fields{
				"op":      op,
				"attempt": attempt,
				"error":   lastErr,
			}).Debugf("Role API call failed, retrying in %v", delay)

			select {
			case <-ctx.Done():
				return &entities.TransientError{Op: op, Attempts: attempt, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}
	}

	return &entities.TransientError{Op: op, Attempts: roleMaxAttempts, Err: lastErr}
}

// isPermanentRejection classifies Discord API errors. Forbidden means
// the bot lacks permission or role hierarchy position; NotFound means
// the role or member no longer exists. Everything else (rate limits,
// server errors, network failures) is worth retrying.
func isPermanentRejection(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden, http.StatusNotFound:
			return true
		}
	}
	return false
}
