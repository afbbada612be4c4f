package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"vnclub/application"
	"vnclub/bot"
	"vnclub/config"
	"vnclub/database"
	"vnclub/domain/interfaces"
	"vnclub/domain/services"
	"vnclub/events"
	"vnclub/infrastructure"
	"vnclub/repository"
	"vnclub/vndb"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting vnclub bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize repositories
	eventRepo := repository.NewPointEventRepository(db)
	tierRepo := repository.NewRewardTierRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)

	// Initialize external event publishing. When NATS is not configured,
	// ledger events stay in-process.
	var natsClient *infrastructure.NATSClient
	var publisher interfaces.EventPublisher = infrastructure.NewNoopEventPublisher()
	if cfg.NATSServers != "" {
		log.Printf("Connecting to NATS at %s...", cfg.NATSServers)
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = infrastructure.NewNATSEventPublisher(natsClient)
	}
	forwardToPublisher(eventBus, publisher)

	// Initialize domain services
	ledgerService := services.NewLedgerService(eventRepo, eventBus)
	tierService := services.NewTierService(tierRepo, eventBus)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, eventBus)

	// Initialize VN catalog client
	catalog := vndb.NewClient(cfg.VNDBBaseURL)

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.GuildID,
	}
	discordBot, err := bot.New(botConfig, ledgerService, tierService, leaderboardService, catalog, cfg.ManagerDiscordIDs)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Start the reconciler worker against the live role gateway
	reconciler := services.NewReconciliationService(
		eventRepo, tierRepo, discordBot.RoleGateway(), cfg.ReconcileConcurrency)
	worker := application.NewReconcilerWorker(reconciler, tierRepo, cfg.ReconcileInterval)
	stopWorker := worker.Start(ctx)

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")
	stopWorker()

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	if natsClient != nil {
		natsClient.Close()
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}

// forwardToPublisher bridges in-process ledger events to the external
// publisher. Publishing is best effort; failures never block writers.
func forwardToPublisher(bus *events.Bus, publisher interfaces.EventPublisher) {
	forward := func(ctx context.Context, event events.Event) {
		if err := publisher.Publish(ctx, event); err != nil {
			log.Printf("Error publishing %s event: %v", event.Type(), err)
		}
	}
	bus.Subscribe(events.EventTypePointsChanged, forward)
	bus.Subscribe(events.EventTypeTiersChanged, forward)
}
