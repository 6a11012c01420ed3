// Package scheduler wires up the cron job that periodically rebuilds every
// board's tag cloud cache.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mahesh-singh/hasjob/internal/model"
)

// BoardLister lists the boards to refresh; *store.Store satisfies it.
type BoardLister interface {
	Boards(ctx context.Context) ([]model.Board, error)
}

// Refresher rebuilds cached data for one board; *tagcache.Cache satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, board *model.Board) error
}

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron      *cron.Cron
	boards    BoardLister
	refresher Refresher
	spec      string // cron spec, e.g. "@every 15m"
	wg        sync.WaitGroup
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(boards BoardLister, refresher Refresher, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		boards:    boards,
		refresher: refresher,
		spec:      fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. It also refreshes once
// immediately so the cache is warm without waiting for the first tick. The
// startup run and the ticks share one job, so they never overlap.
func (s *Scheduler) Start(ctx context.Context) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).
		Then(cron.FuncJob(func() { s.RunOnce(ctx) }))
	if _, err := s.cron.AddJob(s.spec, job); err != nil {
		return fmt.Errorf("cron.AddJob: %w", err)
	}

	s.cron.Start()
	logrus.WithField("spec", s.spec).Info("tag refresh scheduler started")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.Run()
	}()
	return nil
}

// Stop stops the scheduler and waits for any running refresh, including
// the startup one, to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	logrus.Info("tag refresh scheduler stopped")
}

// RunOnce refreshes every board. Failures are logged per board and do not
// stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	boards, err := s.boards.Boards(ctx)
	if err != nil {
		logrus.WithError(err).Error("list boards for tag refresh")
		return
	}

	refreshed := 0
	for i := range boards {
		if err := s.refresher.Refresh(ctx, &boards[i]); err != nil {
			logrus.WithError(err).WithField("board", boards[i].Name).Warn("tag refresh failed")
			continue
		}
		refreshed++
	}
	logrus.WithFields(logrus.Fields{"boards": len(boards), "refreshed": refreshed}).Debug("tag refresh cycle complete")
}
