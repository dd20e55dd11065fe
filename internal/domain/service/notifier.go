package service

import (
	"context"

	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type slackNotifier struct {
	slackClient contract.SlackClient
	logger      *zap.Logger
}

// NewSlackNotifier posts notifications with the bot identity. Failures are logged only.
func NewSlackNotifier(slackClient contract.SlackClient, logger *zap.Logger) contract.Notifier {
	return &slackNotifier{slackClient: slackClient, logger: logger}
}

func (n *slackNotifier) Notify(ctx context.Context, msg entity.Notification) {
	if msg.ChannelID == "" {
		n.logger.Warn("Notification channel not configured, dropping message")
		return
	}

	_, _, err := n.slackClient.PostMessage(
		msg.ChannelID,
		slack.MsgOptionText(msg.Text, false),
		slack.MsgOptionAsUser(false),
	)
	if err != nil {
		n.logger.Error("Failed to send Slack message",
			zap.String("channel_id", msg.ChannelID),
			zap.Error(err),
		)
	}
}
