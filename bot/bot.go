package bot

import (
	"fmt"

	"vnclub/bot/features/leaderboard"
	"vnclub/bot/features/logs"
	"vnclub/bot/features/tiers"
	"vnclub/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

// Bot manages the Discord bot and all feature modules
type Bot struct {
	config  Config
	session *discordgo.Session

	// Feature modules
	logs        *logs.Feature
	leaderboard *leaderboard.Feature
	tiers       *tiers.Feature
}

// New creates a new bot instance with all features
func New(
	config Config,
	ledger interfaces.LedgerService,
	tierService interfaces.TierService,
	leaderboards interfaces.LeaderboardService,
	catalog interfaces.VNCatalog,
	managerIDs []int64,
) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	bot := &Bot{
		config:  config,
		session: dg,
	}

	// Create feature modules
	bot.logs = logs.New(ledger, catalog, managerIDs)
	bot.leaderboard = leaderboard.New(leaderboards)
	bot.tiers = tiers.New(tierService, managerIDs)

	// Register handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleGuildCreate)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

// RoleGateway returns a RoleGateway backed by this bot's session
func (b *Bot) RoleGateway() interfaces.RoleGateway {
	return NewRoleGateway(b.session)
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "finish_vn", "reward_points", "delete_log", "user_logs":
		b.logs.HandleCommand(s, i)
	case "vn_leaderboard":
		b.leaderboard.HandleCommand(s, i)
	case "tier":
		b.tiers.HandleCommand(s, i)
	}
}

// handleGuildCreate handles when the bot joins a new guild
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Infof("Bot joined guild: %s (ID: %s)", g.Name, g.ID)
}
