package admin

import (
	"context"
	"sync"
	"time"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

// Scheduler polls for due publish schedules and runs build + publish for
// each. One minute of granularity is plenty for publication dates.
type Scheduler struct {
	service  *Service
	interval time.Duration
	log      logger.Logger
	stop     chan struct{}
	mu       sync.Mutex
	running  bool
}

func NewScheduler(service *Service, log logger.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		interval: time.Minute,
		log:      log,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.stop = make(chan struct{})
	s.running = true
	go s.run(ctx)
	s.log.Infof("Scheduler: started with interval %s", s.interval)
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	close(s.stop)
	s.running = false
	s.log.Info("Scheduler: stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick processes every due schedule. A failing schedule is marked failed
// and does not block later ones.
func (s *Scheduler) tick(ctx context.Context) {
	due, err := s.service.store.DueSchedules(ctx, time.Now())
	if err != nil {
		s.log.Errorf("Scheduler: cannot query due schedules: %v", err)
		return
	}

	for _, schedule := range due {
		s.log.Infof("Scheduler: running schedule %s", schedule.ShortID)

		if _, err := s.service.TriggerBuild(ctx, TriggerSchedule); err != nil {
			s.fail(ctx, schedule, err)
			continue
		}
		if _, err := s.service.Publish(ctx, schedule.CommitMessage); err != nil {
			s.fail(ctx, schedule, err)
			continue
		}

		if err := s.service.store.UpdateScheduleStatus(ctx, schedule.ID, ScheduleDone, ""); err != nil {
			s.log.Errorf("Scheduler: cannot mark schedule %s done: %v", schedule.ShortID, err)
		}
	}
}

func (s *Scheduler) fail(ctx context.Context, schedule *PublishSchedule, cause error) {
	s.log.Errorf("Scheduler: schedule %s failed: %v", schedule.ShortID, cause)
	if err := s.service.store.UpdateScheduleStatus(ctx, schedule.ID, ScheduleFailed, cause.Error()); err != nil {
		s.log.Errorf("Scheduler: cannot mark schedule %s failed: %v", schedule.ShortID, err)
	}
}
