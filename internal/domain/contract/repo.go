package contract

//go:generate mockgen -source=repo.go -destination=../../../mocks/repo.go -package=mocks

import (
	"context"

	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	TrackedUser() TrackedUserRepo
	Reminder() ReminderRepo
}

// TrackedUserRepo defines the contract for the attendance record repository
type TrackedUserRepo interface {
	List(ctx context.Context) ([]*entity.TrackedUser, error)
	Upsert(ctx context.Context, user *entity.TrackedUser) error
	DeleteAll(ctx context.Context) error
}

// ReminderRepo defines the contract for the reminder repository
type ReminderRepo interface {
	List(ctx context.Context) ([]*entity.Reminder, error)
	Create(ctx context.Context, position int, reminder *entity.Reminder) error
	DeleteAll(ctx context.Context) error
}

// AttendanceStore persists the whole attendance document
type AttendanceStore interface {
	Load(ctx context.Context) (map[string]*entity.TrackedUser, error)
	Save(ctx context.Context, users map[string]*entity.TrackedUser) error
}

// ReminderStore persists the ordered reminder list
type ReminderStore interface {
	Load(ctx context.Context) ([]*entity.Reminder, error)
	Save(ctx context.Context, reminders []*entity.Reminder) error
}
