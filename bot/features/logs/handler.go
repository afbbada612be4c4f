package logs

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

const userLogsLimit = 10

func (f *Feature) handleFinishVN(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options
	var vndbID string
	for _, opt := range options {
		if opt.Name == "vndb_id" {
			vndbID = strings.TrimSpace(opt.StringValue())
		}
	}

	if vndbID == "" {
		common.RespondWithError(s, i, "Please provide a VNDB ID (e.g. v17).")
		return
	}

	userID, guildID, err := parseInteractionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Defer: the catalog lookup goes out to the network
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		log.Errorf("Error deferring finish_vn response: %v", err)
		return
	}

	alreadyLogged, err := f.ledger.HasLogged(ctx, guildID, userID, vndbID)
	if err != nil {
		log.Errorf("Error checking existing logs for user %d: %v", userID, err)
		common.FollowUpWithError(s, i, "Failed to check your reading log. Please try again.")
		return
	}
	if alreadyLogged {
		common.FollowUpWithError(s, i, fmt.Sprintf("You already logged `%s` as finished.", vndbID))
		return
	}

	vn, err := f.catalog.Lookup(ctx, vndbID)
	if err != nil {
		log.Errorf("Error looking up VN %s: %v", vndbID, err)
		common.FollowUpWithError(s, i, "Could not reach the VN catalog. Please try again later.")
		return
	}
	if vn == nil {
		common.FollowUpWithError(s, i, fmt.Sprintf("No visual novel found for ID `%s`.", vndbID))
		return
	}

	points := vn.DefaultPoints()
	reference := vn.ID
	event := &entities.PointEvent{
		GuildID:   guildID,
		UserID:    userID,
		Amount:    points,
		Category:  entities.CategoryVNCompletion,
		Reference: &reference,
	}

	if _, err := f.ledger.Append(ctx, event); err != nil {
		log.Errorf("Error appending VN completion for user %d: %v", userID, err)
		common.FollowUpWithError(s, i, "Failed to record your completion. Please try again.")
		return
	}

	total, err := f.ledger.Total(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error fetching total for user %d: %v", userID, err)
	}

	title := vn.Title
	if vn.TitleEN != "" {
		title = vn.TitleEN
	}

	content := fmt.Sprintf("📖 %s finished **%s** (%s) and earned **%s**! Total: **%s**",
		common.FormatUserMention(userID), title, common.FormatReadingLength(vn.LengthMinutes),
		common.FormatPointsWord(points), common.FormatPoints(total))

	if _, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: content,
	}); err != nil {
		log.Errorf("Error responding to finish_vn command: %v", err)
	}
}

func (f *Feature) handleRewardPoints(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	callerID, guildID, err := parseInteractionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if !f.isManager(callerID) {
		common.RespondWithError(s, i, "Only club managers can reward points.")
		return
	}

	var amount int64
	var reason string
	var targetUser *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			targetUser = opt.UserValue(s)
		case "amount":
			amount = opt.IntValue()
		case "reason":
			reason = strings.TrimSpace(opt.StringValue())
		}
	}

	if targetUser == nil {
		common.RespondWithError(s, i, "Invalid user.")
		return
	}
	if amount == 0 {
		common.RespondWithError(s, i, "Amount must be non-zero.")
		return
	}

	targetID, err := strconv.ParseInt(targetUser.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing target Discord ID %s: %v", targetUser.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	event := &entities.PointEvent{
		GuildID:  guildID,
		UserID:   targetID,
		Amount:   amount,
		Category: entities.CategoryManualReward,
	}
	if reason != "" {
		event.Reference = &reason
	}

	if _, err := f.ledger.Append(ctx, event); err != nil {
		log.Errorf("Error rewarding %d points to user %d: %v", amount, targetID, err)
		common.RespondWithError(s, i, "Failed to record the reward. Please try again.")
		return
	}

	total, err := f.ledger.Total(ctx, guildID, targetID)
	if err != nil {
		log.Errorf("Error fetching total for user %d: %v", targetID, err)
	}

	content := fmt.Sprintf("✅ Rewarded **%s** to %s. New total: **%s**",
		common.FormatPointsWord(amount), common.FormatUserMention(targetID), common.FormatPoints(total))
	if reason != "" {
		content += fmt.Sprintf("\n> %s", reason)
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	}); err != nil {
		log.Errorf("Error responding to reward_points command: %v", err)
	}
}

func (f *Feature) handleDeleteLog(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	callerID, _, err := parseInteractionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if !f.isManager(callerID) {
		common.RespondWithError(s, i, "Only club managers can delete log entries.")
		return
	}

	var eventID int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "id" {
			eventID = opt.IntValue()
		}
	}

	if eventID <= 0 {
		common.RespondWithError(s, i, "Please provide a valid log entry ID.")
		return
	}

	if err := f.ledger.Tombstone(ctx, eventID); err != nil {
		if entities.IsNotFound(err) {
			common.RespondWithError(s, i, fmt.Sprintf("No log entry with ID %d.", eventID))
			return
		}
		log.Errorf("Error deleting log entry %d: %v", eventID, err)
		common.RespondWithError(s, i, "Failed to delete the log entry. Please try again.")
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("🗑️ Log entry **#%d** deleted. Totals have been adjusted.", eventID),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		log.Errorf("Error responding to delete_log command: %v", err)
	}
}

func (f *Feature) handleUserLogs(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	callerID, guildID, err := parseInteractionIDs(i)
	if err != nil {
		log.Errorf("Error parsing interaction IDs: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	targetID := callerID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			if u := opt.UserValue(s); u != nil {
				if id, parseErr := strconv.ParseInt(u.ID, 10, 64); parseErr == nil {
					targetID = id
				}
			}
		}
	}

	logs, err := f.ledger.EventsFor(ctx, guildID, targetID, userLogsLimit)
	if err != nil {
		log.Errorf("Error fetching logs for user %d: %v", targetID, err)
		common.RespondWithError(s, i, "Failed to fetch reading logs. Please try again.")
		return
	}

	total, err := f.ledger.Total(ctx, guildID, targetID)
	if err != nil {
		log.Errorf("Error fetching total for user %d: %v", targetID, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Reading log for %s** — total **%s**\n",
		common.FormatUserMention(targetID), common.FormatPoints(total))

	if len(logs) == 0 {
		b.WriteString("No log entries yet.")
	}
	for _, entry := range logs {
		line := fmt.Sprintf("`#%d` %+d — %s", entry.ID, entry.Amount, entry.Category)
		if entry.Reference != nil {
			line += fmt.Sprintf(" (%s)", *entry.Reference)
		}
		line += " — " + common.FormatDiscordTimestamp(entry.CreatedAt, "d")
		if entry.Tombstoned {
			line = "~~" + line + "~~"
		}
		b.WriteString(line + "\n")
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: b.String(),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		log.Errorf("Error responding to user_logs command: %v", err)
	}
}

// parseInteractionIDs extracts the invoking member and guild IDs
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
