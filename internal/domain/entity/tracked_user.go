package entity

import (
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
)

// TrackedUser is the per-day attendance record of a tracked user.
type TrackedUser struct {
	ID                       string     `json:"id"`
	LastResetDay             string     `json:"last_reset_day"`
	SessionStartedAt         *time.Time `json:"session_started_at"`
	FirstActiveAt            *time.Time `json:"first_active_at"`
	LastInactiveAt           *time.Time `json:"last_inactive_at"`
	AccumulatedActiveSeconds float64    `json:"accumulated_active_seconds"`
	DailyNotificationSent    bool       `json:"daily_notification_sent"`
	DailySummarySent         bool       `json:"daily_summary_sent"`
}

// NewTrackedUser returns a fresh record for the given day.
func NewTrackedUser(id, day string) *TrackedUser {
	return &TrackedUser{ID: id, LastResetDay: day}
}

// Active reports whether a session is currently open.
func (u *TrackedUser) Active() bool {
	return u.SessionStartedAt != nil
}

// Accumulated returns the total active time recorded for the day.
func (u *TrackedUser) Accumulated() time.Duration {
	return time.Duration(u.AccumulatedActiveSeconds * float64(time.Second))
}

// AddActive adds d to the day's total.
func (u *TrackedUser) AddActive(d time.Duration) {
	if d > 0 {
		u.AccumulatedActiveSeconds += d.Seconds()
	}
}

// Reset clears the record for day. An open session is carried over and restarted at
// since, so that the active/inactive pairing is preserved across midnight.
// Resetting twice for the same day is a no-op.
func (u *TrackedUser) Reset(day string, since time.Time) {
	if u.LastResetDay == day {
		return
	}
	carried := u.SessionStartedAt != nil

	*u = TrackedUser{ID: u.ID, LastResetDay: day}
	if carried {
		start := since
		first := since
		u.SessionStartedAt = &start
		u.FirstActiveAt = &first
	}
}

// InLocation converts the recorded instants to loc.
func (u *TrackedUser) InLocation(loc *time.Location) {
	for _, t := range []**time.Time{&u.SessionStartedAt, &u.FirstActiveAt, &u.LastInactiveAt} {
		if *t != nil {
			local := (*t).In(loc)
			*t = &local
		}
	}
}

// Day returns the calendar day of t in loc, formatted as LastResetDay.
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(domain.DayLayout)
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// PresenceTransition is one observed status change of a user.
type PresenceTransition struct {
	UserID string
	Old    domain.Status
	New    domain.Status
	At     time.Time
}
