// Package meetingtime resolves the free-form time argument of the schedule command.
package meetingtime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
)

var (
	fullRe     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})\s+(\d{1,2}):(\d{1,2})(?:\s*([AaPp][Mm]))?$`)
	timeOnlyRe = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?:\s*([AaPp][Mm]))?$`)
)

// Matches reports whether text has one of the accepted shapes, without resolving it.
func Matches(text string) bool {
	text = normalize(text)
	return fullRe.MatchString(text) || timeOnlyRe.MatchString(text)
}

// Parse resolves text against now. The shapes are tried in order:
//
//	YYYY-MM-DD HH:MM [AM|PM]   absolute
//	HH:MM AM|PM                today, or tomorrow when not after now
//	HH:MM                      PM today, else AM tomorrow; 24-hour when the
//	                           hour has no 12-hour reading
//
// The result is in now's location with seconds truncated.
func Parse(text string, now time.Time) (time.Time, error) {
	text = normalize(text)
	now = now.Truncate(time.Minute)

	if m := fullRe.FindStringSubmatch(text); m != nil {
		return parseFull(m, now.Location())
	}

	m := timeOnlyRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, domain.ErrInvalidTimeFormat
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return time.Time{}, domain.ErrInvalidTimeFormat
	}

	if meridiem := strings.ToUpper(m[3]); meridiem != "" {
		h, ok := to24(hour, meridiem)
		if !ok {
			return time.Time{}, domain.ErrInvalidTimeFormat
		}
		return nextOccurrence(now, h, minute), nil
	}

	if hour >= 1 && hour <= 23 {
		h12 := hour
		if h12 > 12 {
			h12 -= 12
		}
		pm, _ := to24(h12, "PM")
		if t := on(now, 0, pm, minute); t.After(now) {
			return t, nil
		}
		am, _ := to24(h12, "AM")
		return on(now, 1, am, minute), nil
	}

	if hour > 23 {
		return time.Time{}, domain.ErrInvalidTimeFormat
	}
	return nextOccurrence(now, hour, minute), nil
}

func parseFull(m []string, loc *time.Location) (time.Time, error) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	if minute > 59 {
		return time.Time{}, domain.ErrInvalidTimeFormat
	}
	if meridiem := strings.ToUpper(m[6]); meridiem != "" {
		h, ok := to24(hour, meridiem)
		if !ok {
			return time.Time{}, domain.ErrInvalidTimeFormat
		}
		hour = h
	} else if hour > 23 {
		return time.Time{}, domain.ErrInvalidTimeFormat
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, domain.ErrInvalidTimeFormat
	}
	return t, nil
}

// to24 converts a 12-hour clock hour (1-12) to a 24-hour one.
func to24(hour int, meridiem string) (int, bool) {
	if hour < 1 || hour > 12 {
		return 0, false
	}
	hour %= 12
	if meridiem == "PM" {
		hour += 12
	}
	return hour, true
}

func nextOccurrence(now time.Time, hour, minute int) time.Time {
	t := on(now, 0, hour, minute)
	if !t.After(now) {
		t = on(now, 1, hour, minute)
	}
	return t
}

// on returns hour:minute on the day offset days after now's calendar day.
func on(now time.Time, offset, hour, minute int) time.Time {
	d := now.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, now.Location())
}

func normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'“”")
	return strings.Join(strings.Fields(text), " ")
}
