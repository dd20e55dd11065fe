package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"go.uber.org/zap"
)

// Options configures the services built by NewInstance.
type Options struct {
	Attendance AttendanceConfig
	Reminder   ReminderConfig
	// Now is the clock used by the reminder service and the scheduler; time.Now when nil.
	Now func() time.Time
}

type Instance struct {
	Attendance *attendanceService
	Reminder   *reminderService
	Scheduler  *scheduler
}

func NewInstance(attendanceStore contract.AttendanceStore, reminderStore contract.ReminderStore, notifier contract.Notifier, logger *zap.Logger, opts Options) *Instance {
	attendance := newAttendance(attendanceStore, notifier, logger.Named("attendance"), opts.Attendance)
	reminder := newReminder(reminderStore, notifier, logger.Named("reminder"), opts.Reminder, opts.Now)

	return &Instance{
		Attendance: attendance,
		Reminder:   reminder,
		Scheduler: newScheduler(reminder, attendance, logger.Named("scheduler"),
			attendance.cfg.Location, attendance.cfg.SummaryMode, opts.Now),
	}
}

// Load restores both services from their stores.
func (i *Instance) Load(ctx context.Context, now time.Time) error {
	if err := i.Attendance.Load(ctx, now); err != nil {
		return fmt.Errorf("attendance: %w", err)
	}
	if err := i.Reminder.Load(ctx); err != nil {
		return fmt.Errorf("reminders: %w", err)
	}
	return nil
}
