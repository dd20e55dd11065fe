package entity

import (
	"slices"
	"time"
)

// Reminder is a scheduled meeting and its acknowledgment state.
type Reminder struct {
	ID             string               `json:"id"`
	ScheduledAt    time.Time            `json:"scheduled_at"`
	Participants   []string             `json:"participants"`
	Topic          string               `json:"topic"`
	CreatorID      string               `json:"creator_id"`
	ChannelID      string               `json:"channel_id"`
	AcknowledgedBy map[string]time.Time `json:"acknowledged_by"`
	CreatedAt      time.Time            `json:"created_at"`
}

// HasParticipant reports whether userID is one of the participants.
func (r *Reminder) HasParticipant(userID string) bool {
	return slices.Contains(r.Participants, userID)
}

// Acknowledged reports whether userID already acknowledged the reminder.
func (r *Reminder) Acknowledged(userID string) bool {
	_, ok := r.AcknowledgedBy[userID]
	return ok
}

// ScheduleRequest carries an already tokenized schedule command.
type ScheduleRequest struct {
	CreatorID  string
	ChannelID  string
	WhenText   string
	MentionIDs []string
	Topic      string
}

// Acknowledgment is the result of a successful acknowledgment.
type Acknowledgment struct {
	Reminder         *Reminder
	MinutesRemaining int
	SuppressedTiers  []int
}

// ListedReminder is one line of a creator's reminder listing.
type ListedReminder struct {
	Index     int
	Reminder  *Reminder
	Attendees []string
	AckCount  int
	Total     int
}

// Notification is a message to post to a channel.
type Notification struct {
	ChannelID string
	Text      string
}

// Clone returns a deep copy of r.
func (r *Reminder) Clone() *Reminder {
	c := *r
	c.Participants = slices.Clone(r.Participants)
	c.AcknowledgedBy = make(map[string]time.Time, len(r.AcknowledgedBy))
	for k, v := range r.AcknowledgedBy {
		c.AcknowledgedBy[k] = v
	}
	return &c
}
