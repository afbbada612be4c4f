package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "finish_vn",
			Description: "Log a finished visual novel and earn points based on its length",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "vndb_id",
					Description: "VNDB ID of the visual novel (e.g. v17)",
					Required:    true,
				},
			},
		},
		{
			Name:        "reward_points",
			Description: "Reward points to a member (managers only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to reward",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Points to grant (negative to deduct)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why the points are being rewarded",
					Required:    false,
				},
			},
		},
		{
			Name:        "delete_log",
			Description: "Delete a reading log entry (managers only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "Log entry ID to delete",
					Required:    true,
				},
			},
		},
		{
			Name:        "user_logs",
			Description: "Show a member's reading log and point total",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to look up (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "vn_leaderboard",
			Description: "Show the reading points leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Number of entries to show (default 10)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "global",
					Description: "Rank across all servers instead of this one",
					Required:    false,
				},
			},
		},
		{
			Name:        "tier",
			Description: "Manage point-threshold reward tiers",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a reward tier (managers only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "threshold",
							Description: "Point total required to earn the role",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role granted at this threshold",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a reward tier (managers only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "threshold",
							Description: "Threshold of the tier to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List this server's reward tiers",
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
