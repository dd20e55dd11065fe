// Package presence turns periodic Slack presence lookups into status transitions.
package presence

import (
	"context"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type Poller struct {
	client   contract.SlackClient
	tracker  contract.AttendanceService
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	// last observed status per user; a user not yet seen has no entry
	last map[string]domain.Status
}

func NewPoller(client contract.SlackClient, tracker contract.AttendanceService, logger *zap.Logger, interval time.Duration) *Poller {
	return &Poller{
		client:   client,
		tracker:  tracker,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		last:     make(map[string]domain.Status),
	}
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Presence poller started", zap.Duration("interval", p.interval))
	for {
		p.poll(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("Presence poller stopped")
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	for _, userID := range p.tracker.TrackedUserIDs() {
		if ctx.Err() != nil {
			return
		}

		presence, err := p.client.GetUserPresence(userID)
		if err != nil {
			p.logger.Warn("Failed to get user presence", zap.String("user_id", userID), zap.Error(err))
			continue
		}

		status := MapPresence(presence)
		old, seen := p.last[userID]
		if seen && old == status {
			continue
		}
		p.last[userID] = status

		ev := entity.PresenceTransition{UserID: userID, Old: old, New: status, At: p.now()}
		p.logger.Debug("Presence changed",
			zap.String("user_id", userID),
			zap.String("old", string(old)),
			zap.String("new", string(status)),
		)
		if err := p.tracker.OnPresenceTransition(ctx, ev); err != nil {
			p.logger.Error("Failed to record presence transition", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// MapPresence normalizes a Slack presence: manually away or disconnected is offline,
// auto-away is idle and anything else is online.
func MapPresence(p *slack.UserPresence) domain.Status {
	switch {
	case p == nil, p.ManualAway:
		return domain.StatusOffline
	case p.AutoAway:
		return domain.StatusIdle
	case p.Online, p.Presence == "active":
		return domain.StatusOnline
	default:
		return domain.StatusOffline
	}
}
