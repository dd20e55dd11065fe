package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
)

type reminderRepository struct {
	db dbConn
}

func newReminderRepo(db dbConn) contract.ReminderRepo {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) List(ctx context.Context) ([]*entity.Reminder, error) {
	query := `
		SELECT id, scheduled_at, participants, topic, creator_id, channel_id,
			acknowledged_by, created_at
		FROM reminders
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*entity.Reminder
	for rows.Next() {
		reminder := &entity.Reminder{}
		var scheduledAt, createdAt, participantsJSON, ackJSON string

		err := rows.Scan(
			&reminder.ID,
			&scheduledAt,
			&participantsJSON,
			&reminder.Topic,
			&reminder.CreatorID,
			&reminder.ChannelID,
			&ackJSON,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}

		if reminder.ScheduledAt, err = parseTime(scheduledAt); err != nil {
			return nil, err
		}
		if reminder.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(participantsJSON), &reminder.Participants); err != nil {
			return nil, fmt.Errorf("%w: reminder %s participants: %v", domain.ErrStoreCorrupt, reminder.ID, err)
		}

		var acks map[string]string
		if err := json.Unmarshal([]byte(ackJSON), &acks); err != nil {
			return nil, fmt.Errorf("%w: reminder %s acknowledgments: %v", domain.ErrStoreCorrupt, reminder.ID, err)
		}
		reminder.AcknowledgedBy = make(map[string]time.Time, len(acks))
		for userID, at := range acks {
			if reminder.AcknowledgedBy[userID], err = parseTime(at); err != nil {
				return nil, err
			}
		}

		reminders = append(reminders, reminder)
	}

	return reminders, rows.Err()
}

func (r *reminderRepository) Create(ctx context.Context, position int, reminder *entity.Reminder) error {
	query := `
		INSERT INTO reminders (id, position, scheduled_at, participants, topic, creator_id,
			channel_id, acknowledged_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	participants := reminder.Participants
	if participants == nil {
		participants = []string{}
	}
	participantsJSON, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	acks := make(map[string]string, len(reminder.AcknowledgedBy))
	for userID, at := range reminder.AcknowledgedBy {
		acks[userID] = formatTime(at)
	}
	ackJSON, err := json.Marshal(acks)
	if err != nil {
		return fmt.Errorf("failed to marshal acknowledgments: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		reminder.ID,
		position,
		formatTime(reminder.ScheduledAt),
		string(participantsJSON),
		reminder.Topic,
		reminder.CreatorID,
		reminder.ChannelID,
		string(ackJSON),
		formatTime(reminder.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	return nil
}

func (r *reminderRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reminders`); err != nil {
		return fmt.Errorf("failed to delete reminders: %w", err)
	}
	return nil
}
