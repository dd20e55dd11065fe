package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "Should render zero as less than a minute", d: 0, want: "less than a minute"},
		{name: "Should render 59 seconds as less than a minute", d: 59 * time.Second, want: "less than a minute"},
		{name: "Should use singular minute", d: time.Minute, want: "1 minute"},
		{name: "Should use plural minutes", d: 45 * time.Minute, want: "45 minutes"},
		{name: "Should omit zero minutes", d: 2 * time.Hour, want: "2 hours"},
		{name: "Should use singular hour", d: time.Hour, want: "1 hour"},
		{name: "Should join hours and minutes", d: 2*time.Hour + 5*time.Minute, want: "2 hours and 5 minutes"},
		{name: "Should use singular for both parts", d: time.Hour + time.Minute + 30*time.Second, want: "1 hour and 1 minute"},
		{name: "Should truncate sub-second parts", d: 3599*time.Second + 999*time.Millisecond, want: "59 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.d))
		})
	}
}

func TestClassifyLateness(t *testing.T) {
	scheduled := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		want     Punctuality
		wantDiff time.Duration
	}{
		{name: "Should be on time at the scheduled instant", now: scheduled, want: OnTime},
		{name: "Should be on time exactly 60s late", now: scheduled.Add(60 * time.Second), want: OnTime, wantDiff: 60 * time.Second},
		{name: "Should be late at 61s", now: scheduled.Add(61 * time.Second), want: Late, wantDiff: 61 * time.Second},
		{name: "Should be on time exactly 60s early", now: scheduled.Add(-60 * time.Second), want: OnTime, wantDiff: -60 * time.Second},
		{name: "Should be early at 61s before", now: scheduled.Add(-61 * time.Second), want: Early, wantDiff: 61 * time.Second},
		{name: "Should report lateness in hours", now: scheduled.Add(2*time.Hour + 5*time.Minute), want: Late, wantDiff: 2*time.Hour + 5*time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diff := ClassifyLateness(tt.now, scheduled)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDiff, diff)
		})
	}
}

func TestClassifyBalance(t *testing.T) {
	window := 8 * time.Hour

	tests := []struct {
		name     string
		elapsed  time.Duration
		want     Balance
		wantDiff time.Duration
	}{
		{name: "Should match the window", elapsed: window, want: AsScheduled},
		{name: "Should tolerate 60s extra", elapsed: window + time.Minute, want: AsScheduled, wantDiff: time.Minute},
		{name: "Should report extra time", elapsed: window + 30*time.Minute, want: ExtraTime, wantDiff: 30 * time.Minute},
		{name: "Should report missing time", elapsed: window - 90*time.Minute, want: MissingTime, wantDiff: 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diff := ClassifyBalance(tt.elapsed, window)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDiff, diff)
		})
	}
}

func Test_formatClock(t *testing.T) {
	loc := time.FixedZone("BDT", 6*60*60)
	assert.Equal(t, "02:05:09 PM BDT", formatClock(time.Date(2025, 6, 2, 14, 5, 9, 0, loc)))
	assert.Equal(t, "2025-06-02 09:30 AM BDT", formatMeetingTime(time.Date(2025, 6, 2, 9, 30, 0, 0, loc)))
}
