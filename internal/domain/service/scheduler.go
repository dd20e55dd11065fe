package service

import (
	"context"
	"sync"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"go.uber.org/zap"
)

type scheduler struct {
	reminders   contract.ReminderService
	attendance  contract.AttendanceService
	logger      *zap.Logger
	loc         *time.Location
	summaryMode domain.SummaryMode
	now         func() time.Time

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newScheduler(reminders contract.ReminderService, attendance contract.AttendanceService, logger *zap.Logger, loc *time.Location, mode domain.SummaryMode, now func() time.Time) *scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &scheduler{
		reminders:   reminders,
		attendance:  attendance,
		logger:      logger,
		loc:         loc,
		summaryMode: mode,
		now:         now,
	}
}

// Start launches the reminder loop and, in midnight mode, the rollover loop.
// The loops stop when ctx is cancelled or Stop is called.
func (s *scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.logger.Info("Scheduler starting...", zap.String("summary_mode", string(s.summaryMode)))

	s.wg.Add(1)
	go s.reminderLoop(ctx, s.stopChan)

	if s.summaryMode == domain.SummaryMidnight {
		s.wg.Add(1)
		go s.midnightLoop(ctx, s.stopChan)
	}
}

// Stop signals the loops and waits for them to return.
func (s *scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.logger.Info("Scheduler stopping...")
	close(s.stopChan)
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *scheduler) reminderLoop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	for {
		next := nextMinute(s.now())
		if !s.sleepUntil(ctx, stop, next) {
			return
		}

		batch := s.reminders.Tick(ctx, s.now())
		if len(batch) > 0 {
			s.logger.Debug("Reminder tick sent notifications", zap.Int("count", len(batch)))
		}
	}
}

func (s *scheduler) midnightLoop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	for {
		next := nextMidnight(s.now(), s.loc)
		s.logger.Info("Next attendance rollover scheduled", zap.Time("at", next))
		if !s.sleepUntil(ctx, stop, next) {
			return
		}

		if err := s.attendance.MidnightRollover(ctx, s.now()); err != nil {
			s.logger.Error("Attendance rollover failed", zap.Error(err))
		}
	}
}

// sleepUntil waits for at and reports false when the loop should exit instead.
func (s *scheduler) sleepUntil(ctx context.Context, stop <-chan struct{}, at time.Time) bool {
	wait := at.Sub(s.now())
	if wait < 0 {
		wait = 0
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-stop:
		return false
	case <-ctx.Done():
		return false
	}
}

// nextMinute returns the next whole-minute boundary strictly after now.
func nextMinute(now time.Time) time.Time {
	return now.Truncate(time.Minute).Add(time.Minute)
}

// nextMidnight returns the next local midnight strictly after now. Computing it from the
// calendar keeps it correct on days that are not 24 hours long.
func nextMidnight(now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
}
