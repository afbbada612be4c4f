package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"vnclub/domain/interfaces"
	"vnclub/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubReconciler counts passes per guild and can block to simulate a
// slow pass
type stubReconciler struct {
	mu      sync.Mutex
	calls   map[int64]int
	release chan struct{} // when non-nil, passes block until closed
}

func newStubReconciler() *stubReconciler {
	return &stubReconciler{calls: make(map[int64]int)}
}

func (s *stubReconciler) ReconcileGuild(ctx context.Context, guildID int64) (*interfaces.ReconcileReport, error) {
	s.mu.Lock()
	s.calls[guildID]++
	release := s.release
	s.mu.Unlock()

	if release != nil {
		<-release
	}

	return &interfaces.ReconcileReport{GuildID: guildID, MembersChecked: 1}, nil
}

func (s *stubReconciler) callCount(guildID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[guildID]
}

func TestReconcilerWorker_RunOnceDispatchesEveryGuild(t *testing.T) {
	t.Parallel()

	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("GuildIDs", mock.Anything).Return([]int64{1, 2, 3}, nil)

	reconciler := newStubReconciler()
	worker := NewReconcilerWorker(reconciler, tierRepo, time.Hour)

	worker.RunOnce(context.Background())
	worker.Wait()

	assert.Equal(t, 1, reconciler.callCount(1))
	assert.Equal(t, 1, reconciler.callCount(2))
	assert.Equal(t, 1, reconciler.callCount(3))
}

func TestReconcilerWorker_SkipsGuildStillRunning(t *testing.T) {
	t.Parallel()

	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("GuildIDs", mock.Anything).Return([]int64{1}, nil)

	reconciler := newStubReconciler()
	reconciler.release = make(chan struct{})

	worker := NewReconcilerWorker(reconciler, tierRepo, time.Hour)

	worker.RunOnce(context.Background())

	// Wait until the slow pass has actually started
	require.Eventually(t, func() bool {
		return reconciler.callCount(1) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// The next tick arrives while the pass is still in flight
	worker.RunOnce(context.Background())

	close(reconciler.release)
	worker.Wait()

	assert.Equal(t, 1, reconciler.callCount(1), "overlapping pass must be skipped")

	// Once finished, the guild is eligible again
	reconciler.release = nil
	worker.RunOnce(context.Background())
	worker.Wait()
	assert.Equal(t, 2, reconciler.callCount(1))
}

func TestReconcilerWorker_StartAndStop(t *testing.T) {
	t.Parallel()

	tierRepo := new(testhelpers.MockRewardTierRepository)
	tierRepo.On("GuildIDs", mock.Anything).Return([]int64{7}, nil)

	reconciler := newStubReconciler()
	worker := NewReconcilerWorker(reconciler, tierRepo, time.Hour)

	cleanup := worker.Start(context.Background())

	// The worker runs a pass immediately on startup
	require.Eventually(t, func() bool {
		return reconciler.callCount(7) == 1
	}, 2*time.Second, 5*time.Millisecond)

	cleanup()
	worker.Wait()
}
