package contract

//go:generate mockgen -source=slack.go -destination=../../../mocks/slack.go -package=mocks

import "github.com/slack-go/slack"

// SlackClient defines the interface for Slack operations
// This allows mocking in tests while keeping the real implementation simple
type SlackClient interface {
	// GetUserPresence retrieves the current presence of a user
	GetUserPresence(userID string) (*slack.UserPresence, error)

	// PostMessage sends a message to a Slack channel
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}
