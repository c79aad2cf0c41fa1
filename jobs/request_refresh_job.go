// File: /jobs/request_refresh_job.go
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"serenity-api/models"
	"serenity-api/services"
)

// RequestRefreshJob polls the pending friend-request inbox for one
// user on a fixed interval. It is bound to the consuming component's
// lifetime: Start begins polling and Stop must be called on teardown
// so the ticker does not leak.
type RequestRefreshJob struct {
	friends  *services.FriendService
	sessions *services.SessionManager
	interval time.Duration

	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once

	mu      sync.RWMutex
	pending []*models.FriendRequestWithSender
}

func NewRequestRefreshJob(friends *services.FriendService, sessions *services.SessionManager, interval time.Duration) *RequestRefreshJob {
	return &RequestRefreshJob{
		friends:  friends,
		sessions: sessions,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the refresh loop. The first refresh runs immediately.
func (j *RequestRefreshJob) Start(ctx context.Context) {
	j.ticker = time.NewTicker(j.interval)

	logrus.WithFields(logrus.Fields{
		"interval": j.interval,
	}).Info("request refresh job started")

	go func() {
		j.refresh(ctx)

		for {
			select {
			case <-j.ticker.C:
				j.refresh(ctx)
			case <-j.done:
				logrus.Info("request refresh job stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the loop and releases the ticker. Safe to call more
// than once.
func (j *RequestRefreshJob) Stop() {
	j.once.Do(func() {
		if j.ticker != nil {
			j.ticker.Stop()
		}
		close(j.done)
	})
}

// Pending returns the inbox from the most recent successful refresh.
func (j *RequestRefreshJob) Pending() []*models.FriendRequestWithSender {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.pending
}

func (j *RequestRefreshJob) refresh(ctx context.Context) {
	user := j.sessions.CurrentUser()
	if user == nil {
		j.mu.Lock()
		j.pending = nil
		j.mu.Unlock()
		return
	}

	pending, err := j.friends.ListPendingFor(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).Warn("request refresh failed")
		return
	}

	j.mu.Lock()
	j.pending = pending
	j.mu.Unlock()
}
