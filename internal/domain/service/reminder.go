package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/meetingtime"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReminderConfig holds the reminder settings that do not change at runtime.
type ReminderConfig struct {
	Location *time.Location
	Tiers    []int
	Policy   AckPolicy
}

type reminderService struct {
	mu        sync.Mutex
	store     contract.ReminderStore
	notifier  contract.Notifier
	logger    *zap.Logger
	cfg       ReminderConfig
	now       func() time.Time
	reminders []*entity.Reminder

	lastTick  time.Time
	lastBatch []entity.Notification
}

func newReminder(store contract.ReminderStore, notifier contract.Notifier, logger *zap.Logger, cfg ReminderConfig, now func() time.Time) *reminderService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = domain.DefaultReminderTiers
	}
	if cfg.Policy == nil {
		cfg.Policy = lastTierPolicy{}
	}
	if now == nil {
		now = time.Now
	}

	return &reminderService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		now:      now,
	}
}

func (s *reminderService) Tiers() []int {
	return slices.Clone(s.cfg.Tiers)
}

func (s *reminderService) Location() *time.Location {
	return s.cfg.Location
}

// Load restores the reminder list. Reminders that expired while the bot was offline are
// announced once and dropped; the store is rewritten when that happens.
func (s *reminderService) Load(ctx context.Context) error {
	reminders, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrStoreCorrupt) {
		s.logger.Warn("Reminder store is corrupt, starting empty", zap.Error(err))
		reminders, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("failed to load reminder store: %w", err)
	}

	now := s.localNow().Truncate(time.Minute)

	var active []*entity.Reminder
	var notes []entity.Notification
	for _, r := range reminders {
		r.ScheduledAt = r.ScheduledAt.In(s.cfg.Location).Truncate(time.Minute)
		if r.AcknowledgedBy == nil {
			r.AcknowledgedBy = make(map[string]time.Time)
		}
		if r.ScheduledAt.Before(now) {
			notes = append(notes, missedNotification(r))
			continue
		}
		active = append(active, r)
	}

	s.mu.Lock()
	s.reminders = active
	if len(notes) > 0 {
		err = s.save(ctx)
	}
	s.mu.Unlock()

	s.logger.Info("Loaded reminders",
		zap.Int("active", len(active)),
		zap.Int("expired", len(notes)),
	)
	s.send(ctx, notes)
	return err
}

func (s *reminderService) Schedule(ctx context.Context, req entity.ScheduleRequest) (*entity.Reminder, error) {
	now := s.localNow()

	at, err := meetingtime.Parse(req.WhenText, now)
	if err != nil {
		return nil, err
	}
	if at.Before(now.Truncate(time.Minute).Add(domain.MinimumLeadTime)) {
		return nil, domain.ErrPastOrImmediate
	}

	var participants []string
	for _, id := range req.MentionIDs {
		if id != "" && !slices.Contains(participants, id) {
			participants = append(participants, id)
		}
	}
	if req.CreatorID != "" && !slices.Contains(participants, req.CreatorID) {
		participants = append(participants, req.CreatorID)
	}

	topic := strings.TrimSpace(req.Topic)
	if len(participants) == 0 && topic == "" {
		return nil, domain.ErrNoParticipants
	}
	if topic == "" {
		topic = domain.DefaultTopic
	}

	reminder := &entity.Reminder{
		ID:             uuid.NewString(),
		ScheduledAt:    at,
		Participants:   participants,
		Topic:          topic,
		CreatorID:      req.CreatorID,
		ChannelID:      req.ChannelID,
		AcknowledgedBy: make(map[string]time.Time),
		CreatedAt:      now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminders = append(s.reminders, reminder)
	if err := s.save(ctx); err != nil {
		s.reminders = s.reminders[:len(s.reminders)-1]
		return nil, err
	}

	s.logger.Info("Reminder scheduled",
		zap.String("reminder_id", reminder.ID),
		zap.String("creator_id", reminder.CreatorID),
		zap.Time("scheduled_at", reminder.ScheduledAt),
		zap.Int("participants", len(participants)),
	)
	return reminder.Clone(), nil
}

// Acknowledge records userID's acknowledgment of their next upcoming meeting.
func (s *reminderService) Acknowledge(ctx context.Context, userID string) (*entity.Acknowledgment, error) {
	now := s.localNow()

	s.mu.Lock()
	defer s.mu.Unlock()

	var next *entity.Reminder
	for _, r := range s.reminders {
		if !r.HasParticipant(userID) || !r.ScheduledAt.After(now) {
			continue
		}
		if next == nil || r.ScheduledAt.Before(next.ScheduledAt) {
			next = r
		}
	}
	if next == nil {
		return nil, domain.ErrNothingToConfirm
	}
	if next.Acknowledged(userID) {
		return nil, fmt.Errorf("%w: '%s'", domain.ErrAlreadyAcknowledged, next.Topic)
	}

	if next.AcknowledgedBy == nil {
		next.AcknowledgedBy = make(map[string]time.Time)
	}
	next.AcknowledgedBy[userID] = now
	if err := s.save(ctx); err != nil {
		delete(next.AcknowledgedBy, userID)
		return nil, err
	}

	minutes := int(next.ScheduledAt.Sub(now) / time.Minute)
	return &entity.Acknowledgment{
		Reminder:         next.Clone(),
		MinutesRemaining: minutes,
		SuppressedTiers:  s.cfg.Policy.Suppressed(s.cfg.Tiers, minutes),
	}, nil
}

// Tick emits the notifications due at now's minute and retires reminders whose time has
// come. Calling it again within the same minute returns the same batch without sending it.
func (s *reminderService) Tick(ctx context.Context, now time.Time) []entity.Notification {
	now = now.In(s.cfg.Location).Truncate(time.Minute)

	s.mu.Lock()
	if now.Equal(s.lastTick) {
		batch := s.lastBatch
		s.mu.Unlock()
		return batch
	}

	var batch []entity.Notification
	remaining := make([]*entity.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		minutes := minutesUntil(r.ScheduledAt, now)
		if minutes <= 0 {
			batch = append(batch, finalNotification(r))
			continue
		}
		remaining = append(remaining, r)

		if !slices.Contains(s.cfg.Tiers, minutes) {
			continue
		}
		if n, ok := s.tierNotification(r, minutes); ok {
			batch = append(batch, n)
		}
	}

	retired := len(s.reminders) - len(remaining)
	s.reminders = remaining
	s.lastTick, s.lastBatch = now, batch
	if retired > 0 {
		s.logger.Info("Removed finished reminders", zap.Int("count", retired))
		// the failure is already logged; the next mutation rewrites the whole list
		_ = s.save(ctx)
	}
	s.mu.Unlock()

	s.send(ctx, batch)
	return batch
}

// Cancel removes one of creatorID's reminders by its 1-based listing index, or all of them
// for "all" and ".". Cancelling all with nothing scheduled is not an error.
func (s *reminderService) Cancel(ctx context.Context, creatorID, which string) ([]*entity.Reminder, error) {
	which = strings.ToLower(strings.TrimSpace(which))

	s.mu.Lock()
	defer s.mu.Unlock()

	var own []*entity.Reminder
	for _, r := range s.reminders {
		if r.CreatorID == creatorID {
			own = append(own, r)
		}
	}

	var remove []*entity.Reminder
	switch which {
	case "all", ".":
		remove = own
	default:
		idx, err := strconv.Atoi(which)
		if err != nil || idx < 1 || idx > len(own) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidReference, which)
		}
		remove = own[idx-1 : idx]
	}
	if len(remove) == 0 {
		return nil, nil
	}

	previous := s.reminders
	s.reminders = slices.DeleteFunc(slices.Clone(s.reminders), func(r *entity.Reminder) bool {
		return slices.Contains(remove, r)
	})
	if err := s.save(ctx); err != nil {
		s.reminders = previous
		return nil, err
	}

	out := make([]*entity.Reminder, 0, len(remove))
	for _, r := range remove {
		out = append(out, r.Clone())
	}
	s.logger.Info("Reminders cancelled", zap.String("creator_id", creatorID), zap.Int("count", len(out)))
	return out, nil
}

// List returns creatorID's reminders in creation order with ephemeral 1-based indexes.
func (s *reminderService) List(creatorID string) []entity.ListedReminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.ListedReminder
	for _, r := range s.reminders {
		if r.CreatorID != creatorID {
			continue
		}
		var attendees []string
		for _, p := range r.Participants {
			if p != creatorID {
				attendees = append(attendees, p)
			}
		}
		out = append(out, entity.ListedReminder{
			Index:     len(out) + 1,
			Reminder:  r.Clone(),
			Attendees: attendees,
			AckCount:  len(r.AcknowledgedBy),
			Total:     len(r.Participants),
		})
	}
	return out
}

// Reminders returns a copy of the active reminders in insertion order.
func (s *reminderService) Reminders() []*entity.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, r.Clone())
	}
	return out
}

func (s *reminderService) tierNotification(r *entity.Reminder, minutes int) (entity.Notification, bool) {
	var recipients []string
	for _, p := range r.Participants {
		ackAt, acked := r.AcknowledgedBy[p]
		if !acked || s.cfg.Policy.Admit(minutes, s.cfg.Tiers, ackAt, r.ScheduledAt) {
			recipients = append(recipients, p)
		}
	}
	if len(recipients) == 0 {
		return entity.Notification{}, false
	}

	text := fmt.Sprintf(":alarm_clock: *MEETING REMINDER!* :loudspeaker:\n"+
		"%s, you have a meeting scheduled by %s:\n"+
		"*Topic:* %s\n"+
		"*Time:* %s\n"+
		"Meeting starts in *%d minutes!*\n"+
		"Reply with `%s ok` to silence the next reminder.",
		mentions(recipients), mention(r.CreatorID), r.Topic, formatMeetingTime(r.ScheduledAt), minutes, domain.CommandName)
	return entity.Notification{ChannelID: r.ChannelID, Text: text}, true
}

func finalNotification(r *entity.Reminder) entity.Notification {
	text := fmt.Sprintf(":alarm_clock: *MEETING TIME IS NOW!* :bell:\n%s, your meeting *'%s'* is starting now.",
		mentions(r.Participants), r.Topic)
	return entity.Notification{ChannelID: r.ChannelID, Text: text}
}

func missedNotification(r *entity.Reminder) entity.Notification {
	text := fmt.Sprintf(":warning: *MISSED MEETING ALERT - Bot Restarted* :warning:\n"+
		"The meeting *'%s'* scheduled for `%s` was missed while the bot was offline.\n"+
		"*Participants:* %s\n"+
		"This schedule has been automatically removed.",
		r.Topic, formatMeetingTime(r.ScheduledAt), mentions(r.Participants))
	return entity.Notification{ChannelID: r.ChannelID, Text: text}
}

// minutesUntil is floor((at - now) / 1m).
func minutesUntil(at, now time.Time) int {
	d := at.Sub(now)
	m := int(d / time.Minute)
	if d%time.Minute < 0 {
		m--
	}
	return m
}

func mentions(ids []string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, mention(id))
	}
	return strings.Join(parts, " ")
}

func (s *reminderService) localNow() time.Time {
	return s.now().In(s.cfg.Location)
}

// save must be called with s.mu held.
func (s *reminderService) save(ctx context.Context) error {
	err := retrySave(ctx, func(ctx context.Context) error {
		return s.store.Save(ctx, s.reminders)
	})
	if err != nil {
		s.logger.Error("Failed to persist reminders", zap.Error(err))
		return fmt.Errorf("failed to save reminders: %w", err)
	}
	return nil
}

func (s *reminderService) send(ctx context.Context, notes []entity.Notification) {
	for _, n := range notes {
		s.notifier.Notify(ctx, n)
	}
}
