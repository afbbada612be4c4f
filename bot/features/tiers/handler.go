package tiers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vnclub/bot/common"
	"vnclub/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	callerID, guildID, err := parseInteractionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if !f.isManager(callerID) {
		common.RespondWithError(s, i, "Only club managers can configure reward tiers.")
		return
	}

	var threshold int64
	var role *discordgo.Role
	for _, opt := range sub.Options {
		switch opt.Name {
		case "threshold":
			threshold = opt.IntValue()
		case "role":
			role = opt.RoleValue(s, i.GuildID)
		}
	}

	if role == nil {
		common.RespondWithError(s, i, "Invalid role.")
		return
	}

	roleID, err := strconv.ParseInt(role.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing role ID %s: %v", role.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	tier := &entities.RewardTier{
		GuildID:   guildID,
		Threshold: threshold,
		RoleID:    roleID,
	}

	if err := f.tiers.AddTier(ctx, tier); err != nil {
		var validationErr *entities.ValidationError
		var configErr *entities.ConfigError
		switch {
		case errors.As(err, &validationErr):
			common.RespondWithError(s, i, validationErr.Error())
		case errors.As(err, &configErr):
			common.RespondWithError(s, i, configErr.Error())
		default:
			log.Errorf("Error adding tier (guild %d, threshold %d): %v", guildID, threshold, err)
			common.RespondWithError(s, i, "Failed to add the tier. Please try again.")
		}
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("✅ Tier added: **%s** → %s. Roles converge on the next reconciliation pass.",
				common.FormatPointsWord(threshold), common.FormatRoleMention(roleID)),
		},
	}); err != nil {
		log.Errorf("Error responding to tier add command: %v", err)
	}
}

func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	callerID, guildID, err := parseInteractionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if !f.isManager(callerID) {
		common.RespondWithError(s, i, "Only club managers can configure reward tiers.")
		return
	}

	var threshold int64
	for _, opt := range sub.Options {
		if opt.Name == "threshold" {
			threshold = opt.IntValue()
		}
	}

	if err := f.tiers.RemoveTier(ctx, guildID, threshold); err != nil {
		if entities.IsNotFound(err) {
			common.RespondWithError(s, i, fmt.Sprintf("No tier with threshold %d.", threshold))
			return
		}
		log.Errorf("Error removing tier (guild %d, threshold %d): %v", guildID, threshold, err)
		common.RespondWithError(s, i, "Failed to remove the tier. Please try again.")
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("🗑️ Tier at **%s** removed. Roles converge on the next reconciliation pass.",
				common.FormatPointsWord(threshold)),
		},
	}); err != nil {
		log.Errorf("Error responding to tier remove command: %v", err)
	}
}

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	tiers, err := f.tiers.TiersFor(ctx, guildID)
	if err != nil {
		log.Errorf("Error listing tiers for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Failed to fetch the tiers. Please try again.")
		return
	}

	var b strings.Builder
	for _, tier := range tiers {
		fmt.Fprintf(&b, "**%s** → %s\n",
			common.FormatPointsWord(tier.Threshold), common.FormatRoleMention(tier.RoleID))
	}
	if len(tiers) == 0 {
		b.WriteString("No reward tiers configured for this server.")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏅 Reward Tiers",
		Description: b.String(),
		Color:       0x5865F2,
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	}); err != nil {
		log.Errorf("Error responding to tier list command: %v", err)
	}
}

func parseInteractionIDs(i *discordgo.InteractionCreate) (userID, guildID int64, err error) {
	if i.Member == nil || i.Member.User == nil {
		return 0, 0, fmt.Errorf("interaction has no member (used outside a guild?)")
	}
	userID, err = strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user ID %s: %w", i.Member.User.ID, err)
	}
	guildID, err = strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid guild ID %s: %w", i.GuildID, err)
	}
	return userID, guildID, nil
}
