package database

import (
	"context"

	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
)

// NewAttendanceStore persists the attendance document in the tracked_users table.
func NewAttendanceStore(dm contract.DataManager) contract.AttendanceStore {
	return &attendanceStore{dm: dm}
}

// NewReminderStore persists the reminder list in the reminders table.
func NewReminderStore(dm contract.DataManager) contract.ReminderStore {
	return &reminderStore{dm: dm}
}

type attendanceStore struct {
	dm contract.DataManager
}

func (s *attendanceStore) Load(ctx context.Context) (map[string]*entity.TrackedUser, error) {
	users, err := s.dm.TrackedUser().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*entity.TrackedUser, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// Save replaces every stored record with users in a single transaction.
func (s *attendanceStore) Save(ctx context.Context, users map[string]*entity.TrackedUser) error {
	return s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		if err := tx.TrackedUser().DeleteAll(ctx); err != nil {
			return err
		}
		for _, u := range users {
			if err := tx.TrackedUser().Upsert(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

type reminderStore struct {
	dm contract.DataManager
}

func (s *reminderStore) Load(ctx context.Context) ([]*entity.Reminder, error) {
	return s.dm.Reminder().List(ctx)
}

// Save replaces the stored list with reminders, keeping their order.
func (s *reminderStore) Save(ctx context.Context, reminders []*entity.Reminder) error {
	return s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		if err := tx.Reminder().DeleteAll(ctx); err != nil {
			return err
		}
		for i, r := range reminders {
			if err := tx.Reminder().Create(ctx, i, r); err != nil {
				return err
			}
		}
		return nil
	})
}
