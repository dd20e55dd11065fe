package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Should load an empty map when the file is missing", func(t *testing.T) {
		store := NewAttendanceStore(filepath.Join(t.TempDir(), "schedule_data.json"))

		users, err := store.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("Should round trip records", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "schedule_data.json")
		store := NewAttendanceStore(path)

		zone := time.FixedZone("BDT", 6*60*60)
		start := time.Date(2025, 6, 2, 9, 0, 30, 0, zone)
		user := entity.NewTrackedUser("U1", "2025-06-02")
		user.SessionStartedAt = &start
		user.FirstActiveAt = &start
		user.AccumulatedActiveSeconds = 90
		user.DailyNotificationSent = true

		require.NoError(t, store.Save(ctx, map[string]*entity.TrackedUser{"U1": user}))

		users, err := store.Load(ctx)
		require.NoError(t, err)
		require.Contains(t, users, "U1")

		got := users["U1"]
		assert.Equal(t, "2025-06-02", got.LastResetDay)
		require.NotNil(t, got.SessionStartedAt)
		assert.True(t, start.Equal(*got.SessionStartedAt))
		assert.Nil(t, got.LastInactiveAt)
		assert.Equal(t, 90.0, got.AccumulatedActiveSeconds)
		assert.True(t, got.DailyNotificationSent)

		// no temp files are left behind
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Should fill ids from the map keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schedule_data.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"U9":{"last_reset_day":"2025-06-02"}}`), 0o644))

		users, err := NewAttendanceStore(path).Load(ctx)
		require.NoError(t, err)
		require.Contains(t, users, "U9")
		assert.Equal(t, "U9", users["U9"].ID)
	})

	t.Run("Should report a corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schedule_data.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

		_, err := NewAttendanceStore(path).Load(ctx)
		require.ErrorIs(t, err, domain.ErrStoreCorrupt)
	})
}

func TestReminderStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Should load nothing when the file is missing", func(t *testing.T) {
		reminders, err := NewReminderStore(filepath.Join(t.TempDir(), "reminders.json")).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, reminders)
	})

	t.Run("Should keep the order", func(t *testing.T) {
		store := NewReminderStore(filepath.Join(t.TempDir(), "reminders.json"))

		at := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
		require.NoError(t, store.Save(ctx, []*entity.Reminder{
			{ID: "r2", ScheduledAt: at.Add(time.Hour), Participants: []string{"U1"}, Topic: "Later",
				AcknowledgedBy: map[string]time.Time{"U1": at}},
			{ID: "r1", ScheduledAt: at, Participants: []string{"U1"}, Topic: "Sooner"},
		}))

		reminders, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, reminders, 2)
		assert.Equal(t, "r2", reminders[0].ID)
		assert.Equal(t, "r1", reminders[1].ID)
		assert.True(t, at.Equal(reminders[0].AcknowledgedBy["U1"]))
		assert.NotNil(t, reminders[1].AcknowledgedBy)
	})

	t.Run("Should write an empty list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reminders.json")
		require.NoError(t, NewReminderStore(path).Save(ctx, nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("Should report a corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reminders.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"id":`), 0o644))

		_, err := NewReminderStore(path).Load(ctx)
		require.ErrorIs(t, err, domain.ErrStoreCorrupt)
	})
}
