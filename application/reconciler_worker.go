package application

import (
	"context"
	"sync"
	"time"

	"vnclub/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ReconcilerWorker drives role-reward reconciliation on a fixed cadence.
// Every tick it dispatches one reconciliation pass per configured guild;
// guilds run concurrently and independently, and a per-guild running
// guard keeps a slow pass from overlapping the next tick for the same
// guild. The timer loop itself never fails: all errors are contained to
// the pass that produced them.
type ReconcilerWorker struct {
	reconciler interfaces.ReconciliationService
	tierRepo   interfaces.RewardTierRepository
	interval   time.Duration

	mu      sync.Mutex
	running map[int64]bool
	wg      sync.WaitGroup
}

// NewReconcilerWorker creates a new reconciler worker
func NewReconcilerWorker(
	reconciler interfaces.ReconciliationService,
	tierRepo interfaces.RewardTierRepository,
	interval time.Duration,
) *ReconcilerWorker {
	return &ReconcilerWorker{
		reconciler: reconciler,
		tierRepo:   tierRepo,
		interval:   interval,
		running:    make(map[int64]bool),
	}
}

// Start begins the periodic reconciliation loop.
// Returns a cleanup function to stop the worker gracefully.
func (w *ReconcilerWorker) Start(ctx context.Context) func() {
	ticker := time.NewTicker(w.interval)
	stopChan := make(chan struct{})

	go func() {
		log.Infof("Reconciler worker started, interval %v", w.interval)

		// Run immediately on startup
		w.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info("Reconciler worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Reconciler worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()

	// Return cleanup function
	return func() {
		ticker.Stop()
		close(stopChan)
	}
}

// RunOnce dispatches one reconciliation pass per guild with configured
// tiers and returns without waiting for the passes to finish. A guild
// whose previous pass is still running is skipped this tick.
func (w *ReconcilerWorker) RunOnce(ctx context.Context) {
	guildIDs, err := w.tierRepo.GuildIDs(ctx)
	if err != nil {
		log.Errorf("Error getting guilds with reward tiers: %v", err)
		return
	}

	for _, guildID := range guildIDs {
		if !w.tryStart(guildID) {
			log.WithField("guild_id", guildID).Warn("Previous reconciliation pass still running, skipping this tick")
			continue
		}

		w.wg.Add(1)
		go func(guildID int64) {
			defer w.wg.Done()
			defer w.finish(guildID)
			w.reconcileGuild(ctx, guildID)
		}(guildID)
	}
}

// Wait blocks until all in-flight passes have finished. Used by tests
// and during shutdown diagnostics; abandoning passes is also safe since
// the next process start reconciles from authoritative state.
func (w *ReconcilerWorker) Wait() {
	w.wg.Wait()
}

func (w *ReconcilerWorker) reconcileGuild(ctx context.Context, guildID int64) {
	passID := uuid.New().String()
	start := time.Now()

	report, err := w.reconciler.ReconcileGuild(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{
			"pass_id":  passID,
			"guild_id": guildID,
			"error":    err,
		}).Error("Reconciliation pass failed, guild will be retried next cycle")
		return
	}

	if report.Skipped {
		log.WithFields(log.Fields{
			"pass_id":  passID,
			"guild_id": guildID,
		}).Debug("Guild has no reward tiers configured, skipped")
		return
	}

	log.WithFields(log.Fields{
		"pass_id":         passID,
		"guild_id":        guildID,
		"members_checked": report.MembersChecked,
		"roles_added":     report.RolesAdded,
		"roles_removed":   report.RolesRemoved,
		"member_failures": report.MemberFailures,
		"duration":        time.Since(start).Round(time.Millisecond),
	}).Info("Reconciliation pass completed")
}

func (w *ReconcilerWorker) tryStart(guildID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running[guildID] {
		return false
	}
	w.running[guildID] = true
	return true
}

func (w *ReconcilerWorker) finish(guildID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.running, guildID)
}
