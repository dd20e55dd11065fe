package service

import (
	"fmt"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
)

// FormatElapsed renders a non-negative duration as "H hours and M minutes".
func FormatElapsed(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = -total
	}
	hours := total / 3600
	minutes := (total % 3600) / 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%s and %s", plural(hours, "hour"), plural(minutes, "minute"))
	case hours > 0:
		return plural(hours, "hour")
	case minutes > 0:
		return plural(minutes, "minute")
	default:
		return "less than a minute"
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Punctuality is the classification of a first activation against the scheduled in time.
type Punctuality int

const (
	OnTime Punctuality = iota
	Late
	Early
)

// ClassifyLateness compares now against the scheduled instant with a 60s tolerance.
func ClassifyLateness(now, scheduled time.Time) (Punctuality, time.Duration) {
	lateness := now.Sub(scheduled)
	switch {
	case lateness > domain.Tolerance:
		return Late, lateness
	case lateness < -domain.Tolerance:
		return Early, -lateness
	default:
		return OnTime, lateness
	}
}

// Balance is the classification of a day's span against the scheduled window.
type Balance int

const (
	AsScheduled Balance = iota
	ExtraTime
	MissingTime
)

// ClassifyBalance compares the elapsed span of a day against its scheduled window.
func ClassifyBalance(elapsed, window time.Duration) (Balance, time.Duration) {
	diff := elapsed - window
	switch {
	case diff > domain.Tolerance:
		return ExtraTime, diff
	case diff < -domain.Tolerance:
		return MissingTime, -diff
	default:
		return AsScheduled, diff
	}
}

// formatClock renders t as a 12-hour clock with the zone abbreviation.
func formatClock(t time.Time) string {
	return t.Format("03:04:05 PM MST")
}

func formatMeetingTime(t time.Time) string {
	return t.Format("2006-01-02 03:04 PM MST")
}

func mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}
