package jsonfile

import (
	"context"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
)

type attendanceStore struct {
	file file
}

// NewAttendanceStore stores the attendance map, keyed by user id, at path.
func NewAttendanceStore(path string) contract.AttendanceStore {
	return &attendanceStore{file: file{path: path}}
}

func (s *attendanceStore) Load(_ context.Context) (map[string]*entity.TrackedUser, error) {
	users := map[string]*entity.TrackedUser{}
	if _, err := s.file.read(&users); err != nil {
		return map[string]*entity.TrackedUser{}, err
	}

	for id, u := range users {
		if u == nil {
			delete(users, id)
			continue
		}
		if u.ID == "" {
			u.ID = id
		}
	}
	return users, nil
}

func (s *attendanceStore) Save(_ context.Context, users map[string]*entity.TrackedUser) error {
	if users == nil {
		users = map[string]*entity.TrackedUser{}
	}
	return s.file.write(users)
}

type reminderStore struct {
	file file
}

// NewReminderStore stores the ordered reminder list at path.
func NewReminderStore(path string) contract.ReminderStore {
	return &reminderStore{file: file{path: path}}
}

func (s *reminderStore) Load(_ context.Context) ([]*entity.Reminder, error) {
	var reminders []*entity.Reminder
	if _, err := s.file.read(&reminders); err != nil {
		return nil, err
	}

	out := reminders[:0]
	for _, r := range reminders {
		if r == nil {
			continue
		}
		if r.AcknowledgedBy == nil {
			r.AcknowledgedBy = map[string]time.Time{}
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *reminderStore) Save(_ context.Context, reminders []*entity.Reminder) error {
	if reminders == nil {
		reminders = []*entity.Reminder{}
	}
	return s.file.write(reminders)
}
