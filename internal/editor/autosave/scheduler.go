package autosave

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper runs one autosave pass over every open session.
type Sweeper interface {
	SweepAutosave(ctx context.Context)
}

// Scheduler drives periodic autosave sweeps. The default interval matches the
// editor's 120-second autosave cadence.
type Scheduler struct {
	c *cron.Cron
}

func NewScheduler(interval time.Duration, sweeper Sweeper) (*Scheduler, error) {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sweeper.SweepAutosave(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule autosave: %w", err)
	}
	return &Scheduler{c: c}, nil
}

func (s *Scheduler) Start() {
	log.Println("autosave scheduler started")
	s.c.Start()
}

// Stop cancels the autosave timer. Called on shutdown so a sweep never runs
// against torn-down sessions.
func (s *Scheduler) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
}
