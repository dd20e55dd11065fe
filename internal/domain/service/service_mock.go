package service

import (
	"testing"
	"time"

	"github.com/diegoclair/slack-attendance-bot/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type allMocks struct {
	mockNotifier        *mocks.MockNotifier
	mockAttendanceStore *mocks.MockAttendanceStore
	mockReminderStore   *mocks.MockReminderStore
}

func newServiceTestMock(t *testing.T) (m allMocks, ctrl *gomock.Controller) {
	t.Helper()

	ctrl = gomock.NewController(t)

	m = allMocks{
		mockNotifier:        mocks.NewMockNotifier(ctrl),
		mockAttendanceStore: mocks.NewMockAttendanceStore(ctrl),
		mockReminderStore:   mocks.NewMockReminderStore(ctrl),
	}

	// validate service creation
	instance := NewInstance(m.mockAttendanceStore, m.mockReminderStore, m.mockNotifier, zap.NewNop(), Options{})
	require.NotNil(t, instance)
	require.NotNil(t, instance.Attendance)
	require.NotNil(t, instance.Reminder)
	require.NotNil(t, instance.Scheduler)

	return
}

// fixedClock returns a clock that always reads *now; tests move it by assigning to *now.
func fixedClock(now *time.Time) func() time.Time {
	return func() time.Time { return *now }
}
