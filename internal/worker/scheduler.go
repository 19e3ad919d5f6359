package worker

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler fires the periodic housekeeping job on a fixed interval. Missed
// ticks while the process is down are simply skipped; the archive job is
// idempotent so running it late is harmless.
type Scheduler struct {
	queue    *JobQueue
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(queue *JobQueue, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{queue: queue, interval: interval}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.queue.Enqueue(QueueReports, JobTypeArchiveOldTasks, nil); err != nil {
					log.Printf("Failed to schedule archive job: %v", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
