package contract

//go:generate mockgen -source=service.go -destination=../../../mocks/service.go -package=mocks

import (
	"context"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
)

type AttendanceService interface {
	OnPresenceTransition(ctx context.Context, ev entity.PresenceTransition) error
	MidnightRollover(ctx context.Context, now time.Time) error
	TrackedUserIDs() []string
}

type ReminderService interface {
	Schedule(ctx context.Context, req entity.ScheduleRequest) (*entity.Reminder, error)
	Acknowledge(ctx context.Context, userID string) (*entity.Acknowledgment, error)
	Cancel(ctx context.Context, creatorID, which string) ([]*entity.Reminder, error)
	List(creatorID string) []entity.ListedReminder
	Tick(ctx context.Context, now time.Time) []entity.Notification
	Tiers() []int
	Location() *time.Location
}

// Notifier delivers notifications; delivery is best effort
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification)
}
