package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
)

// DaySchedule is the expected working window of a day, as HH:MM wall-clock times.
type DaySchedule struct {
	In  string `json:"in"`
	Out string `json:"out,omitempty"`
}

// WeeklySchedule maps weekday names (or "default") to a DaySchedule.
type WeeklySchedule map[string]DaySchedule

// For returns the schedule for the given weekday, falling back to the default entry.
func (w WeeklySchedule) For(day time.Weekday) (DaySchedule, bool) {
	if s, ok := w[domain.WeekdayNames[day]]; ok {
		return s, true
	}
	if s, ok := w[domain.DefaultScheduleKey]; ok {
		return s, true
	}
	return DaySchedule{}, false
}

// Validate checks that every entry has a parseable in time and, when set, out time.
func (w WeeklySchedule) Validate() error {
	for key, day := range w {
		if key != domain.DefaultScheduleKey && !isWeekdayName(key) {
			return fmt.Errorf("unknown schedule key %q", key)
		}
		if _, _, err := ParseClock(day.In); err != nil {
			return fmt.Errorf("schedule %s: invalid in time: %w", key, err)
		}
		if day.Out != "" {
			if _, _, err := ParseClock(day.Out); err != nil {
				return fmt.Errorf("schedule %s: invalid out time: %w", key, err)
			}
		}
	}
	return nil
}

// InOn returns the scheduled in instant on the calendar day of ref, in ref's location.
func (d DaySchedule) InOn(ref time.Time) (time.Time, error) {
	return clockOn(d.In, ref)
}

// Window returns the length of the working window. A window whose out time is not
// after its in time is taken to end on the following day.
func (d DaySchedule) Window() (time.Duration, bool) {
	if d.Out == "" {
		return 0, false
	}
	inH, inM, err := ParseClock(d.In)
	if err != nil {
		return 0, false
	}
	outH, outM, err := ParseClock(d.Out)
	if err != nil {
		return 0, false
	}
	window := time.Duration((outH*60+outM)-(inH*60+inM)) * time.Minute
	if window <= 0 {
		window += 24 * time.Hour
	}
	return window, true
}

// ParseClock parses a 24-hour HH:MM string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

func clockOn(clock string, ref time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location()), nil
}

func isWeekdayName(key string) bool {
	for _, name := range domain.WeekdayNames {
		if name == key {
			return true
		}
	}
	return false
}
