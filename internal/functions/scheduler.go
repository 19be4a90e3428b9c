// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package functions

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/robfig/cron/v3"
)

// Scheduler runs notification generation on a cron schedule.
type Scheduler struct {
	c *cron.Cron
}

// NewScheduler schedules generate_event_notifications at spec
// (standard cron or a descriptor such as "@every 15m"). An empty spec
// disables scheduling.
func NewScheduler(spec string, procs Procedures, m *Metrics, log *pterm.Logger) (*Scheduler, error) {
	c := cron.New()
	if spec != "" {
		_, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := procs.GenerateEventNotifications(ctx)
			m.notificationRun("schedule", err)
			if err != nil {
				log.Error("scheduled notification run failed", log.Args("error", err))
				return
			}
			log.Debug("scheduled notification run finished")
		})
		if err != nil {
			return nil, fmt.Errorf("notification schedule %q: %w", spec, err)
		}
	}
	return &Scheduler{c: c}, nil
}

func (s *Scheduler) Start() { s.c.Start() }

// Stop stops scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
	}
}
