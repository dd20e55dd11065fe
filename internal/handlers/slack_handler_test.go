package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
	"github.com/diegoclair/slack-attendance-bot/internal/handlers"
	"github.com/diegoclair/slack-attendance-bot/internal/handlers/test"
	"github.com/diegoclair/slack-attendance-bot/mocks"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const (
	testChannelID = "C123456789"
	testUserID    = "U987654321"
)

type testCase struct {
	name          string
	text          string
	buildMocks    func(ctx context.Context, m test.ServiceMocks)
	checkResponse func(t *testing.T, resp *httptest.ResponseRecorder)
}

func runCases(t *testing.T, tests []testCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, handler, ctrl := test.GetHandlerTest(t)
			defer ctrl.Finish()

			if tt.buildMocks != nil {
				tt.buildMocks(context.Background(), m)
			}

			recorder := test.CreateTestRecorder()
			req := test.CreateSlackRequest(t, domain.CommandName, tt.text, testChannelID, testUserID, test.SigningSecret)

			handler.HandleSlashCommand(recorder, req)

			if tt.checkResponse != nil {
				tt.checkResponse(t, recorder)
			}
		})
	}
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) slack.Msg {
	t.Helper()

	require.Equal(t, http.StatusOK, resp.Code)

	var response slack.Msg
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	require.NoError(t, err)
	return response
}

func TestSlackHandler_HandleSlashCommand_Schedule(t *testing.T) {
	meeting := time.Date(2025, 12, 31, 14, 30, 0, 0, time.UTC)

	runCases(t, []testCase{
		{
			name: "Should schedule a meeting with a quoted time",
			text: `schedule "2025-12-31 02:30 PM" <@U123456789|bob> Year end`,
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Schedule(gomock.Any(), entity.ScheduleRequest{
						CreatorID:  testUserID,
						ChannelID:  testChannelID,
						WhenText:   `"2025-12-31 02:30 PM"`,
						MentionIDs: []string{"U123456789"},
						Topic:      "Year end",
					}).
					Return(&entity.Reminder{
						ID:           "r1",
						ScheduledAt:  meeting,
						Participants: []string{"U123456789", testUserID},
						Topic:        "Year end",
						CreatorID:    testUserID,
						ChannelID:    testChannelID,
					}, nil).Times(1)
				m.ReminderServiceMock.EXPECT().Tiers().Return([]int{15, 10, 2}).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeInChannel, response.ResponseType)
				assert.Contains(t, response.Text, "✅ *Meeting scheduled!*")
				assert.Contains(t, response.Text, "*Topic:* Year end")
				assert.Contains(t, response.Text, "*Time:* 2025-12-31 02:30 PM UTC")
				assert.Contains(t, response.Text, "<@U123456789>, <@U987654321>")
				assert.Contains(t, response.Text, "15, 10, 2 minutes before")
			},
		},
		{
			name: "Should pass a bare time through",
			text: "schedule 14:30 Standup",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Schedule(gomock.Any(), entity.ScheduleRequest{
						CreatorID: testUserID,
						ChannelID: testChannelID,
						WhenText:  "14:30",
						Topic:     "Standup",
					}).
					Return(&entity.Reminder{ScheduledAt: meeting, Participants: []string{testUserID}, Topic: "Standup"}, nil).Times(1)
				m.ReminderServiceMock.EXPECT().Tiers().Return([]int{15, 10, 2}).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeInChannel, response.ResponseType)
			},
		},
		{
			name: "Should return usage when no arguments are given",
			text: "schedule",
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "❌ Usage: `/meeting schedule")
			},
		},
		{
			name: "Should reject an unrecognized time before calling the service",
			text: "schedule tomorrow <@U123456789> Sync",
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "❌ Invalid time format")
			},
		},
		{
			name: "Should explain a time in the past",
			text: "schedule 2020-01-01 10:00 Sync",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Schedule(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrPastOrImmediate).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "at least one minute in the future")
			},
		},
		{
			name: "Should explain a missing participant list",
			text: "schedule 14:30",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Schedule(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrNoParticipants).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Contains(t, response.Text, "mention at least one participant")
			},
		},
		{
			name: "Should hide internal errors",
			text: "schedule 14:30 Sync",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Schedule(gomock.Any(), gomock.Any()).
					Return(nil, assert.AnError).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Equal(t, "❌ Failed to schedule the meeting. Please try again.", response.Text)
			},
		},
	})
}

func TestSlackHandler_HandleSlashCommand_OK(t *testing.T) {
	meeting := time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC)

	runCases(t, []testCase{
		{
			name: "Should confirm and list the skipped tiers",
			text: "ok",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Acknowledge(gomock.Any(), testUserID).
					Return(&entity.Acknowledgment{
						Reminder:         &entity.Reminder{Topic: "Planning", ScheduledAt: meeting},
						MinutesRemaining: 20,
						SuppressedTiers:  []int{15, 10},
					}, nil).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeInChannel, response.ResponseType)
				assert.Contains(t, response.Text, "<@U987654321> confirmed *'Planning'* at 09:20 AM UTC (20 minutes left)")
				assert.Contains(t, response.Text, "The 15, 10 minute reminders will be skipped.")
			},
		},
		{
			name: "Should confirm late acknowledgments",
			text: "ok",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Acknowledge(gomock.Any(), testUserID).
					Return(&entity.Acknowledgment{
						Reminder:         &entity.Reminder{Topic: "Planning", ScheduledAt: meeting},
						MinutesRemaining: 1,
					}, nil).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Contains(t, response.Text, "No earlier reminders are left to skip.")
			},
		},
		{
			name: "Should report nothing to confirm",
			text: "ok",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Acknowledge(gomock.Any(), testUserID).
					Return(nil, domain.ErrNothingToConfirm).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Equal(t, "ℹ️ You have no upcoming meetings to confirm.", response.Text)
			},
		},
		{
			name: "Should report a repeated confirmation",
			text: "ok",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Acknowledge(gomock.Any(), testUserID).
					Return(nil, fmt.Errorf("%w: 'Planning'", domain.ErrAlreadyAcknowledged)).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, "ℹ️ You have already confirmed your next meeting.", response.Text)
			},
		},
	})
}

func TestSlackHandler_HandleSlashCommand_List(t *testing.T) {
	runCases(t, []testCase{
		{
			name: "Should list the caller's meetings",
			text: "list",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					List(testUserID).
					Return([]entity.ListedReminder{
						{
							Index:     1,
							Reminder:  &entity.Reminder{Topic: "Planning", ScheduledAt: time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC)},
							Attendees: []string{"U1", "U2"},
							AckCount:  1,
							Total:     3,
						},
						{
							Index:    2,
							Reminder: &entity.Reminder{Topic: "Focus", ScheduledAt: time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)},
							Total:    1,
						},
					}).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "1. *Planning* at `2025-06-02 09:20 AM UTC` with <@U1>, <@U2> (1/3 confirmed)")
				assert.Contains(t, response.Text, "2. *Focus* at `2025-06-02 03:00 PM UTC` with just you (0/1 confirmed)")
			},
		},
		{
			name: "Should explain an empty list",
			text: "ls",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().List(testUserID).Return(nil).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "You have no scheduled meetings.")
			},
		},
	})
}

func TestSlackHandler_HandleSlashCommand_Cancel(t *testing.T) {
	runCases(t, []testCase{
		{
			name: "Should cancel all meetings",
			text: "cancel all",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Cancel(gomock.Any(), testUserID, "all").
					Return([]*entity.Reminder{{Topic: "One"}, {Topic: "Two"}}, nil).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeInChannel, response.ResponseType)
				assert.Equal(t, "🗑️ <@U987654321> cancelled 2 meetings: 'One', 'Two'", response.Text)
			},
		},
		{
			name: "Should cancel by number",
			text: "cancel 1",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Cancel(gomock.Any(), testUserID, "1").
					Return([]*entity.Reminder{{Topic: "One"}}, nil).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, "🗑️ <@U987654321> cancelled 1 meeting: 'One'", response.Text)
			},
		},
		{
			name: "Should report nothing to cancel",
			text: "cancel .",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Cancel(gomock.Any(), testUserID, ".").
					Return(nil, nil).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Equal(t, "ℹ️ You have no scheduled meetings to cancel.", response.Text)
			},
		},
		{
			name: "Should reject an invalid number",
			text: "cancel 7",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().
					Cancel(gomock.Any(), testUserID, "7").
					Return(nil, domain.ErrInvalidReference).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Contains(t, response.Text, "❌ Invalid meeting number.")
			},
		},
		{
			name: "Should return usage without a reference",
			text: "cancel",
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Contains(t, response.Text, "❌ Usage: `/meeting cancel N`")
			},
		},
	})
}

func TestSlackHandler_HandleSlashCommand_Help(t *testing.T) {
	runCases(t, []testCase{
		{
			name: "Should show help for empty text",
			text: "",
			buildMocks: func(ctx context.Context, m test.ServiceMocks) {
				m.ReminderServiceMock.EXPECT().Tiers().Return([]int{15, 10, 2}).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "*Available Commands:*")
				assert.Contains(t, response.Text, "15, 10, 2 minutes before")
			},
		},
		{
			name: "Should reject unknown commands",
			text: "dance",
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decode(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "❌ unknown command: dance")
			},
		},
	})
}

func TestSlackHandler_HandleSlashCommand_Signature(t *testing.T) {
	_, handler, ctrl := test.GetHandlerTest(t)
	defer ctrl.Finish()

	recorder := test.CreateTestRecorder()
	req := test.CreateSlackRequest(t, domain.CommandName, "list", testChannelID, testUserID, "wrong-secret")

	handler.HandleSlashCommand(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestSlackHandler_HandleHealth(t *testing.T) {
	_, handler, ctrl := test.GetHandlerTest(t)
	defer ctrl.Finish()

	recorder := test.CreateTestRecorder()
	handler.HandleHealth(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())
}

func TestSlackHandler_HandleSlashCommand_ConfiguredZone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	zone := time.FixedZone("BDT", 6*60*60)
	reminders := mocks.NewMockReminderService(ctrl)
	reminders.EXPECT().Location().Return(zone).AnyTimes()
	reminders.EXPECT().List(testUserID).Return([]entity.ListedReminder{
		{
			Index:    1,
			Reminder: &entity.Reminder{Topic: "Standup", ScheduledAt: time.Date(2025, 6, 2, 3, 30, 0, 0, time.UTC)},
			AckCount: 0,
			Total:    1,
		},
	}).Times(1)

	handler := handlers.New(reminders, test.SigningSecret, zap.NewNop())

	recorder := test.CreateTestRecorder()
	req := test.CreateSlackRequest(t, domain.CommandName, "list", testChannelID, testUserID, test.SigningSecret)
	handler.HandleSlashCommand(recorder, req)

	response := decode(t, recorder)
	assert.Contains(t, response.Text, "*Standup* at `2025-06-02 09:30 AM BDT`")
}
