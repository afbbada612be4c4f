package leaderboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"vnclub/bot/common"
	"vnclub/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLimit = 10
	maxLimit     = 25
)

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	limit := defaultLimit
	global := false
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "limit":
			limit = int(opt.IntValue())
		case "global":
			global = opt.BoolValue()
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var entries []entities.LeaderboardEntry
	var title string
	var err error

	if global {
		title = "🌐 Global Reading Leaderboard"
		entries, err = f.leaderboards.GlobalLeaderboard(ctx, limit)
	} else {
		guildID, parseErr := strconv.ParseInt(i.GuildID, 10, 64)
		if parseErr != nil {
			log.Errorf("Error parsing guild ID %s: %v", i.GuildID, parseErr)
			common.RespondWithError(s, i, "Unable to process request. Please try again.")
			return
		}
		title = "📚 Reading Leaderboard"
		entries, err = f.leaderboards.GuildLeaderboard(ctx, guildID, limit)
	}

	if err != nil {
		log.Errorf("Error fetching leaderboard: %v", err)
		common.RespondWithError(s, i, "Failed to fetch the leaderboard. Please try again.")
		return
	}

	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "%s %s — **%s**\n",
			rankMarker(entry.Rank), common.FormatUserMention(entry.UserID),
			common.FormatPoints(entry.Total))
	}
	if len(entries) == 0 {
		b.WriteString("Nobody has earned points yet. Finish a VN!")
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: b.String(),
		Color:       0x5865F2,
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	}); err != nil {
		log.Errorf("Error responding to vn_leaderboard command: %v", err)
	}
}

func rankMarker(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("`#%d`", rank)
}
