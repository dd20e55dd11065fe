package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
	slackcmd "github.com/diegoclair/slack-attendance-bot/internal/domain/slack"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type SlackHandler struct {
	reminderService contract.ReminderService
	signingSecret   string
	logger          *zap.Logger
}

func New(reminderService contract.ReminderService, signingSecret string, logger *zap.Logger) *SlackHandler {
	return &SlackHandler{
		reminderService: reminderService,
		signingSecret:   signingSecret,
		logger:          logger,
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	// Verify request from Slack
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		h.logger.Warn("Rejected unsigned slash command", zap.Error(err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	cmd, err := slackcmd.ParseCommand(s.Text)
	if err != nil {
		h.respondWithError(w, fmt.Sprintf("%s. Use `%s help` to see the available commands.", err.Error(), domain.CommandName))
		return
	}

	response := h.handleCommand(r, cmd, &s)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode slash command response", zap.Error(err))
	}
}

// HandleHealth reports that the process is serving requests.
func (h *SlackHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *SlackHandler) handleCommand(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	switch cmd.Type {
	case slackcmd.CmdSchedule:
		return h.handleSchedule(r, cmd, slashCmd)
	case slackcmd.CmdOK:
		return h.handleAcknowledge(r, slashCmd)
	case slackcmd.CmdList:
		return h.handleList(slashCmd)
	case slackcmd.CmdCancel:
		return h.handleCancel(r, cmd, slashCmd)
	case slackcmd.CmdHelp:
		return h.handleHelp()
	default:
		return h.createErrorResponse("Command not recognized")
	}
}

func (h *SlackHandler) handleSchedule(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	usage := fmt.Sprintf("Usage: `%s schedule \"YYYY-MM-DD HH:MM AM/PM\" @user1 @user2 Topic`", domain.CommandName)
	if len(cmd.Args) == 0 {
		return h.createErrorResponse(usage)
	}

	args, err := slackcmd.ParseSchedule(cmd.Args)
	if err != nil {
		return h.createErrorResponse(invalidTimeMessage)
	}

	reminder, err := h.reminderService.Schedule(r.Context(), entity.ScheduleRequest{
		CreatorID:  slashCmd.UserID,
		ChannelID:  slashCmd.ChannelID,
		WhenText:   args.When,
		MentionIDs: args.Mentions,
		Topic:      args.Topic,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidTimeFormat):
		return h.createErrorResponse(invalidTimeMessage)
	case errors.Is(err, domain.ErrPastOrImmediate):
		return h.createErrorResponse("The meeting time must be at least one minute in the future.")
	case errors.Is(err, domain.ErrNoParticipants):
		return h.createErrorResponse("Please mention at least one participant or give the meeting a topic. " + usage)
	case err != nil:
		h.logger.Error("Failed to schedule meeting", zap.String("user_id", slashCmd.UserID), zap.Error(err))
		return h.createErrorResponse("Failed to schedule the meeting. Please try again.")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text: fmt.Sprintf("✅ *Meeting scheduled!*\n*Topic:* %s\n*Time:* %s\n*Participants:* %s\nReminders will be sent %s minutes before the meeting.",
			reminder.Topic,
			h.localTime(reminder.ScheduledAt).Format("2006-01-02 03:04 PM MST"),
			mentionList(reminder.Participants),
			joinInts(h.reminderService.Tiers()),
		),
	}
}

func (h *SlackHandler) handleAcknowledge(r *http.Request, slashCmd *slack.SlashCommand) *slack.Msg {
	ack, err := h.reminderService.Acknowledge(r.Context(), slashCmd.UserID)
	switch {
	case errors.Is(err, domain.ErrNothingToConfirm):
		return h.createInfoResponse("You have no upcoming meetings to confirm.")
	case errors.Is(err, domain.ErrAlreadyAcknowledged):
		return h.createInfoResponse("You have already confirmed your next meeting.")
	case err != nil:
		h.logger.Error("Failed to acknowledge meeting", zap.String("user_id", slashCmd.UserID), zap.Error(err))
		return h.createErrorResponse("Failed to confirm the meeting. Please try again.")
	}

	skipped := "No earlier reminders are left to skip."
	if len(ack.SuppressedTiers) > 0 {
		skipped = fmt.Sprintf("The %s minute reminders will be skipped.", joinInts(ack.SuppressedTiers))
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text: fmt.Sprintf("👍 <@%s> confirmed *'%s'* at %s (%d minutes left). %s",
			slashCmd.UserID,
			ack.Reminder.Topic,
			h.localTime(ack.Reminder.ScheduledAt).Format("03:04 PM MST"),
			ack.MinutesRemaining,
			skipped,
		),
	}
}

func (h *SlackHandler) handleList(slashCmd *slack.SlashCommand) *slack.Msg {
	listed := h.reminderService.List(slashCmd.UserID)
	if len(listed) == 0 {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         fmt.Sprintf("You have no scheduled meetings. Use `%s schedule` to create one.", domain.CommandName),
		}
	}

	var list strings.Builder
	list.WriteString("*Your scheduled meetings:*\n")
	for _, l := range listed {
		attendees := "just you"
		if len(l.Attendees) > 0 {
			attendees = mentionList(l.Attendees)
		}
		list.WriteString(fmt.Sprintf("%d. *%s* at `%s` with %s (%d/%d confirmed)\n",
			l.Index, l.Reminder.Topic, h.localTime(l.Reminder.ScheduledAt).Format("2006-01-02 03:04 PM MST"), attendees, l.AckCount, l.Total))
	}
	list.WriteString(fmt.Sprintf("Use `%s cancel N` or `%s cancel all` to cancel.", domain.CommandName, domain.CommandName))

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         list.String(),
	}
}

func (h *SlackHandler) handleCancel(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.createErrorResponse(fmt.Sprintf("Usage: `%s cancel N` or `%s cancel all`", domain.CommandName, domain.CommandName))
	}

	removed, err := h.reminderService.Cancel(r.Context(), slashCmd.UserID, cmd.Args[0])
	switch {
	case errors.Is(err, domain.ErrInvalidReference):
		return h.createErrorResponse(fmt.Sprintf("Invalid meeting number. Use `%s list` to see your meetings.", domain.CommandName))
	case err != nil:
		h.logger.Error("Failed to cancel meetings", zap.String("user_id", slashCmd.UserID), zap.Error(err))
		return h.createErrorResponse("Failed to cancel. Please try again.")
	}

	if len(removed) == 0 {
		return h.createInfoResponse("You have no scheduled meetings to cancel.")
	}

	topics := make([]string, 0, len(removed))
	for _, rem := range removed {
		topics = append(topics, fmt.Sprintf("'%s'", rem.Topic))
	}
	noun := "meeting"
	if len(removed) != 1 {
		noun = "meetings"
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         fmt.Sprintf("🗑️ <@%s> cancelled %d %s: %s", slashCmd.UserID, len(removed), noun, strings.Join(topics, ", ")),
	}
}

func (h *SlackHandler) handleHelp() *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         slackcmd.GetHelpText(h.reminderService.Tiers()),
	}
}

// localTime shows t in the bot's configured timezone.
func (h *SlackHandler) localTime(t time.Time) time.Time {
	if loc := h.reminderService.Location(); loc != nil {
		return t.In(loc)
	}
	return t
}

const invalidTimeMessage = "Invalid time format. Use `YYYY-MM-DD HH:MM AM/PM`, `HH:MM AM/PM` or `HH:MM`."

func (h *SlackHandler) createErrorResponse(message string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("❌ %s", message),
	}
}

func (h *SlackHandler) createInfoResponse(message string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("ℹ️ %s", message),
	}
}

func (h *SlackHandler) respondWithError(w http.ResponseWriter, message string) {
	response := h.createErrorResponse(message)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func mentionList(ids []string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("<@%s>", id))
	}
	return strings.Join(parts, ", ")
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%d", v))
	}
	return strings.Join(parts, ", ")
}
