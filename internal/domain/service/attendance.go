package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
	"go.uber.org/zap"
)

// AttendanceConfig holds the attendance settings that do not change at runtime.
type AttendanceConfig struct {
	Location       *time.Location
	ChannelID      string
	Schedules      map[string]entity.WeeklySchedule
	ExtraUsers     []string
	ActiveStatuses []domain.Status
	SummaryMode    domain.SummaryMode
}

type attendanceService struct {
	mu       sync.Mutex
	store    contract.AttendanceStore
	notifier contract.Notifier
	logger   *zap.Logger
	cfg      AttendanceConfig
	tracked  map[string]bool
	users    map[string]*entity.TrackedUser
}

func newAttendance(store contract.AttendanceStore, notifier contract.Notifier, logger *zap.Logger, cfg AttendanceConfig) *attendanceService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if len(cfg.ActiveStatuses) == 0 {
		cfg.ActiveStatuses = domain.DefaultActiveStatuses
	}
	if cfg.SummaryMode == "" {
		cfg.SummaryMode = domain.SummaryMidnight
	}

	tracked := make(map[string]bool)
	for id := range cfg.Schedules {
		tracked[id] = true
	}
	for _, id := range cfg.ExtraUsers {
		tracked[id] = true
	}

	return &attendanceService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		tracked:  tracked,
		users:    make(map[string]*entity.TrackedUser),
	}
}

// Load restores the attendance document and settles records left over from earlier days.
// A corrupt store is logged and replaced by an empty one.
func (s *attendanceService) Load(ctx context.Context, now time.Time) error {
	users, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrStoreCorrupt) {
		s.logger.Warn("Attendance store is corrupt, starting empty", zap.Error(err))
		users, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("failed to load attendance store: %w", err)
	}

	s.mu.Lock()
	if users == nil {
		users = make(map[string]*entity.TrackedUser)
	}
	for _, u := range users {
		u.InLocation(s.cfg.Location)
	}
	s.users = users
	s.mu.Unlock()

	s.logger.Info("Loaded attendance records", zap.Int("count", len(users)))
	return s.MidnightRollover(ctx, now)
}

// TrackedUserIDs returns the tracked user ids in a stable order.
func (s *attendanceService) TrackedUserIDs() []string {
	ids := make([]string, 0, len(s.tracked))
	for id := range s.tracked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Record returns a copy of the stored record of userID.
func (s *attendanceService) Record(userID string) (entity.TrackedUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return entity.TrackedUser{}, false
	}
	return *u, true
}

func (s *attendanceService) OnPresenceTransition(ctx context.Context, ev entity.PresenceTransition) error {
	if !s.tracked[ev.UserID] {
		return nil
	}
	wasActive, isActive := s.isActive(ev.Old), s.isActive(ev.New)
	firstSeen := ev.Old == ""
	if wasActive == isActive && !firstSeen {
		return nil
	}

	at := ev.At.In(s.cfg.Location)

	s.mu.Lock()
	if firstSeen {
		// nothing observed since start: the stored record holds the last known state
		if u, ok := s.users[ev.UserID]; ok {
			wasActive = u.Active()
		}
	}
	if wasActive == isActive {
		s.mu.Unlock()
		return nil
	}

	user, notes, changed := s.record(ev.UserID, at)
	if isActive {
		notes = append(notes, s.becameActive(user, at)...)
		changed = true
	} else if user.Active() {
		notes = append(notes, s.becameInactive(user, ev.New, at)...)
		changed = true
	}

	var err error
	if changed {
		err = s.save(ctx)
	}
	s.mu.Unlock()

	s.send(ctx, notes)
	return err
}

// MidnightRollover settles every tracked record whose day is over: in midnight mode it
// posts the deferred daily summary, then it resets the record for the current day.
// Records already on the current day are left untouched.
func (s *attendanceService) MidnightRollover(ctx context.Context, now time.Time) error {
	now = now.In(s.cfg.Location)
	today := entity.Day(now, s.cfg.Location)

	s.mu.Lock()
	var notes []entity.Notification
	changed := false
	for _, id := range s.TrackedUserIDs() {
		user, ok := s.users[id]
		if !ok {
			s.users[id] = entity.NewTrackedUser(id, today)
			changed = true
			continue
		}
		if user.LastResetDay == today {
			continue
		}
		notes = append(notes, s.rollover(user, now)...)
		changed = true
	}

	var err error
	if changed {
		err = s.save(ctx)
	}
	s.mu.Unlock()

	if changed {
		s.logger.Info("Attendance rollover completed",
			zap.String("day", today),
			zap.Int("summaries", len(notes)),
		)
	}
	s.send(ctx, notes)
	return err
}

// record returns the record of userID for the day of at, creating or lazily resetting it.
func (s *attendanceService) record(userID string, at time.Time) (*entity.TrackedUser, []entity.Notification, bool) {
	today := entity.Day(at, s.cfg.Location)

	user, ok := s.users[userID]
	if !ok {
		user = entity.NewTrackedUser(userID, today)
		s.users[userID] = user
		return user, nil, true
	}
	if user.LastResetDay == today {
		return user, nil, false
	}

	s.logger.Debug("Resetting attendance record", zap.String("user_id", userID), zap.String("day", today))
	return user, s.rollover(user, at), true
}

func (s *attendanceService) rollover(user *entity.TrackedUser, now time.Time) []entity.Notification {
	todayStart := entity.StartOfDay(now, s.cfg.Location)

	var notes []entity.Notification
	if s.cfg.SummaryMode == domain.SummaryMidnight && user.FirstActiveAt != nil {
		dayEnd := todayStart
		if day, err := time.ParseInLocation(domain.DayLayout, user.LastResetDay, s.cfg.Location); err == nil {
			dayEnd = day.AddDate(0, 0, 1)
		}
		notes = append(notes, s.dailySummary(user, dayEnd))
	}

	user.Reset(entity.Day(now, s.cfg.Location), todayStart)
	return notes
}

func (s *attendanceService) becameActive(user *entity.TrackedUser, at time.Time) []entity.Notification {
	if user.SessionStartedAt == nil {
		start := at
		user.SessionStartedAt = &start
	}
	if user.FirstActiveAt == nil {
		first := at
		user.FirstActiveAt = &first
	}

	if user.DailyNotificationSent {
		return nil
	}
	user.DailyNotificationSent = true
	return []entity.Notification{s.notification(s.arrivalText(user.ID, at))}
}

func (s *attendanceService) becameInactive(user *entity.TrackedUser, status domain.Status, at time.Time) []entity.Notification {
	user.AddActive(at.Sub(*user.SessionStartedAt))
	user.SessionStartedAt = nil
	last := at
	user.LastInactiveAt = &last

	if s.cfg.SummaryMode != domain.SummaryImmediate || status != domain.StatusOffline || user.DailySummarySent {
		return nil
	}
	user.DailySummarySent = true

	text := fmt.Sprintf(":octagonal_sign: *DAILY REPORT FOR %s* :octagonal_sign:\n---\n"+
		"*Last Status:* Went *OFFLINE* at *%s*.\n"+
		"*Total Time Online Today:* *%s*.",
		mention(user.ID), formatClock(at), FormatElapsed(user.Accumulated()))
	return []entity.Notification{s.notification(text)}
}

func (s *attendanceService) arrivalText(userID string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":large_green_circle: *ATTENTION!* %s has just come *ONLINE* at *%s*.\n---\n", mention(userID), formatClock(at))

	day, ok := s.scheduleFor(userID, at.Weekday())
	if !ok || day.In == "" {
		s.logger.Info("No schedule for tracked user",
			zap.String("user_id", userID),
			zap.Error(domain.ErrNoScheduleForUser),
		)
		b.WriteString(":warning: *NO SCHEDULE:* Could not determine scheduled IN time.")
		return b.String()
	}

	scheduled, err := day.InOn(at)
	if err != nil {
		fmt.Fprintf(&b, ":warning: *SCHEDULE ERROR:* Scheduled time '%s' is invalid.", day.In)
		return b.String()
	}

	tz := at.Format("MST")
	switch p, d := ClassifyLateness(at, scheduled); p {
	case Late:
		fmt.Fprintf(&b, ":alarm_clock: *LATE:* They were *%s* late for their scheduled *IN* time of *%s %s*.", FormatElapsed(d), day.In, tz)
	case Early:
		fmt.Fprintf(&b, ":warning: *EARLY:* They came *%s* early for their scheduled *IN* time of *%s %s*.", FormatElapsed(d), day.In, tz)
	default:
		fmt.Fprintf(&b, ":white_check_mark: *ON TIME:* They were on time for their scheduled *IN* time of *%s %s*.", day.In, tz)
	}
	return b.String()
}

// dailySummary reports the span between first activity and the last inactive instant of
// the record's day. A user still active at dayEnd, or one who never went inactive, is
// measured up to dayEnd.
func (s *attendanceService) dailySummary(user *entity.TrackedUser, dayEnd time.Time) entity.Notification {
	end := dayEnd
	if !user.Active() && user.LastInactiveAt != nil {
		end = *user.LastInactiveAt
	}
	elapsed := end.Sub(*user.FirstActiveAt)

	total := user.Accumulated()
	if user.Active() {
		total += dayEnd.Sub(*user.SessionStartedAt)
	}

	day := dayEnd.AddDate(0, 0, -1)
	var b strings.Builder
	fmt.Fprintf(&b, ":bar_chart: *DAILY SUMMARY FOR %s* (%s %s)\n---\n", mention(user.ID), day.Weekday(), user.LastResetDay)
	fmt.Fprintf(&b, "*First active:* %s\n", formatClock(user.FirstActiveAt.In(s.cfg.Location)))
	if end.Equal(dayEnd) {
		b.WriteString("*Last inactive:* still active at midnight\n")
	} else {
		fmt.Fprintf(&b, "*Last inactive:* %s\n", formatClock(end.In(s.cfg.Location)))
	}
	fmt.Fprintf(&b, "*Time on duty:* %s\n", FormatElapsed(elapsed))
	fmt.Fprintf(&b, "*Total active time:* %s\n", FormatElapsed(total))

	schedule, ok := s.scheduleFor(user.ID, day.Weekday())
	window, hasWindow := schedule.Window()
	if !ok || !hasWindow {
		b.WriteString(":warning: *NO SCHEDULE:* Could not compare against a scheduled window.")
		return s.notification(b.String())
	}

	span := fmt.Sprintf("%s–%s", schedule.In, schedule.Out)
	switch bal, d := ClassifyBalance(elapsed, window); bal {
	case ExtraTime:
		fmt.Fprintf(&b, ":heavy_plus_sign: *EXTRA TIME:* They stayed *%s* longer than their scheduled *%s* window.", FormatElapsed(d), span)
	case MissingTime:
		fmt.Fprintf(&b, ":heavy_minus_sign: *MISSING TIME:* They were *%s* short of their scheduled *%s* window.", FormatElapsed(d), span)
	default:
		fmt.Fprintf(&b, ":white_check_mark: *ON SCHEDULE:* They matched their scheduled *%s* window.", span)
	}
	return s.notification(b.String())
}

func (s *attendanceService) scheduleFor(userID string, day time.Weekday) (entity.DaySchedule, bool) {
	schedule, ok := s.cfg.Schedules[userID]
	if !ok {
		return entity.DaySchedule{}, false
	}
	return schedule.For(day)
}

func (s *attendanceService) isActive(status domain.Status) bool {
	return slices.Contains(s.cfg.ActiveStatuses, status)
}

func (s *attendanceService) notification(text string) entity.Notification {
	return entity.Notification{ChannelID: s.cfg.ChannelID, Text: text}
}

// save must be called with s.mu held.
func (s *attendanceService) save(ctx context.Context) error {
	err := retrySave(ctx, func(ctx context.Context) error {
		return s.store.Save(ctx, s.users)
	})
	if err != nil {
		s.logger.Error("Failed to persist attendance records", zap.Error(err))
		return fmt.Errorf("failed to save attendance records: %w", err)
	}
	return nil
}

func (s *attendanceService) send(ctx context.Context, notes []entity.Notification) {
	for _, n := range notes {
		s.notifier.Notify(ctx, n)
	}
}
