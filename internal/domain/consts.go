package domain

import "time"

// Status is a presence status as reported by the chat platform, normalized.
type Status string

const (
	StatusOnline  Status = "online"
	StatusIdle    Status = "idle"
	StatusBusy    Status = "busy"
	StatusOffline Status = "offline"
)

// DefaultActiveStatuses are the statuses that count as "at work".
var DefaultActiveStatuses = []Status{StatusOnline, StatusIdle, StatusBusy}

// ParseStatus maps a configured status name to a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusOnline, StatusIdle, StatusBusy, StatusOffline:
		return Status(s), true
	case "dnd":
		return StatusBusy, true
	}
	return "", false
}

// DefaultScheduleKey is the schedule entry used when no weekday entry exists.
const DefaultScheduleKey = "default"

// WeekdayNames maps Go weekdays to the schedule keys used in configuration
var WeekdayNames = map[time.Weekday]string{
	time.Monday:    "Monday",
	time.Tuesday:   "Tuesday",
	time.Wednesday: "Wednesday",
	time.Thursday:  "Thursday",
	time.Friday:    "Friday",
	time.Saturday:  "Saturday",
	time.Sunday:    "Sunday",
}

// DayLayout is the format of TrackedUser.LastResetDay.
const DayLayout = "2006-01-02"

// Tolerance around a scheduled instant inside which a user is considered on time.
const Tolerance = 60 * time.Second

// SummaryMode selects when the end-of-day attendance summary is posted.
type SummaryMode string

const (
	// SummaryImmediate posts the summary when the user goes fully offline.
	SummaryImmediate SummaryMode = "immediate"
	// SummaryMidnight defers the summary to the midnight rollover.
	SummaryMidnight SummaryMode = "midnight"
)

// DefaultReminderTiers are the minutes-before-meeting at which reminders are sent.
var DefaultReminderTiers = []int{15, 10, 2}

// MinimumLeadTime is the minimum distance between now and a new reminder.
const MinimumLeadTime = time.Minute

// DefaultTopic is used when a reminder is scheduled without a topic.
const DefaultTopic = "Untitled Meeting"

// CommandName is the slash command the bot answers to.
const CommandName = "/meeting"
