package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	promoSchedule  string
	log            *slog.Logger
}

// NewScheduler builds a Scheduler that enqueues the promotional reset on the
// given cron schedule.
func NewScheduler(redisOpt asynq.RedisConnOpt, promoSchedule string, log *slog.Logger) Scheduler {
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		promoSchedule:  promoSchedule,
		log:            log,
	}
}

func (s *scheduler) RegisterTasks() error {
	task, err := NewPromoResetTask("scheduled promotion")
	if err != nil {
		return err
	}

	if _, err := s.asynqScheduler.Register(s.promoSchedule, task); err != nil {
		return err
	}

	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: registered promo reset task", "schedule", s.promoSchedule)
	}

	return nil
}

func (s *scheduler) Run() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: starting")
	}

	go func() {
		if err := s.asynqScheduler.Run(); err != nil && s.log != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", "error", err)
		}
	}()
}

func (s *scheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
