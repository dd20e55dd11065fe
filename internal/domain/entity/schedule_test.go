package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklySchedule_For(t *testing.T) {
	schedule := WeeklySchedule{
		"Monday":  {In: "09:00", Out: "17:00"},
		"default": {In: "10:00", Out: "18:00"},
	}

	tests := []struct {
		name     string
		schedule WeeklySchedule
		day      time.Weekday
		want     DaySchedule
		wantOK   bool
	}{
		{name: "Should use the weekday entry", schedule: schedule, day: time.Monday, want: DaySchedule{In: "09:00", Out: "17:00"}, wantOK: true},
		{name: "Should fall back to default", schedule: schedule, day: time.Sunday, want: DaySchedule{In: "10:00", Out: "18:00"}, wantOK: true},
		{name: "Should report no schedule", schedule: WeeklySchedule{"Friday": {In: "08:00"}}, day: time.Monday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.schedule.For(tt.day)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeeklySchedule_Validate(t *testing.T) {
	require.NoError(t, WeeklySchedule{"Monday": {In: "09:00", Out: "17:00"}, "default": {In: "10:00"}}.Validate())
	require.Error(t, WeeklySchedule{"Funday": {In: "09:00"}}.Validate())
	require.Error(t, WeeklySchedule{"Monday": {In: "9am"}}.Validate())
	require.Error(t, WeeklySchedule{"Monday": {In: "09:00", Out: "25:00"}}.Validate())
}

func TestDaySchedule_Window(t *testing.T) {
	tests := []struct {
		name   string
		day    DaySchedule
		want   time.Duration
		wantOK bool
	}{
		{name: "Should compute a day window", day: DaySchedule{In: "09:00", Out: "17:30"}, want: 8*time.Hour + 30*time.Minute, wantOK: true},
		{name: "Should wrap an overnight window", day: DaySchedule{In: "22:00", Out: "06:00"}, want: 8 * time.Hour, wantOK: true},
		{name: "Should need an out time", day: DaySchedule{In: "09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.day.Window()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaySchedule_InOn(t *testing.T) {
	zone := time.FixedZone("BDT", 6*60*60)
	ref := time.Date(2025, 6, 2, 15, 4, 5, 0, zone)

	got, err := DaySchedule{In: "09:30"}.InOn(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 30, 0, 0, zone), got)

	_, err = DaySchedule{In: "late"}.InOn(ref)
	require.Error(t, err)
}
