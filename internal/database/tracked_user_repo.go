package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
)

type trackedUserRepository struct {
	db dbConn
}

func newTrackedUserRepo(db dbConn) contract.TrackedUserRepo {
	return &trackedUserRepository{db: db}
}

func (r *trackedUserRepository) List(ctx context.Context) ([]*entity.TrackedUser, error) {
	query := `
		SELECT id, last_reset_day, session_started_at, first_active_at, last_inactive_at,
			accumulated_active_seconds, daily_notification_sent, daily_summary_sent
		FROM tracked_users
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked users: %w", err)
	}
	defer rows.Close()

	var users []*entity.TrackedUser
	for rows.Next() {
		user := &entity.TrackedUser{}
		var sessionStartedAt, firstActiveAt, lastInactiveAt sql.NullString

		err := rows.Scan(
			&user.ID,
			&user.LastResetDay,
			&sessionStartedAt,
			&firstActiveAt,
			&lastInactiveAt,
			&user.AccumulatedActiveSeconds,
			&user.DailyNotificationSent,
			&user.DailySummarySent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked user: %w", err)
		}

		if user.SessionStartedAt, err = timePtr(sessionStartedAt); err != nil {
			return nil, err
		}
		if user.FirstActiveAt, err = timePtr(firstActiveAt); err != nil {
			return nil, err
		}
		if user.LastInactiveAt, err = timePtr(lastInactiveAt); err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *trackedUserRepository) Upsert(ctx context.Context, user *entity.TrackedUser) error {
	query := `
		INSERT INTO tracked_users (id, last_reset_day, session_started_at, first_active_at,
			last_inactive_at, accumulated_active_seconds, daily_notification_sent, daily_summary_sent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_reset_day = excluded.last_reset_day,
			session_started_at = excluded.session_started_at,
			first_active_at = excluded.first_active_at,
			last_inactive_at = excluded.last_inactive_at,
			accumulated_active_seconds = excluded.accumulated_active_seconds,
			daily_notification_sent = excluded.daily_notification_sent,
			daily_summary_sent = excluded.daily_summary_sent,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.LastResetDay,
		nullTime(user.SessionStartedAt),
		nullTime(user.FirstActiveAt),
		nullTime(user.LastInactiveAt),
		user.AccumulatedActiveSeconds,
		user.DailyNotificationSent,
		user.DailySummarySent,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert tracked user: %w", err)
	}

	return nil
}

func (r *trackedUserRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tracked_users`); err != nil {
		return fmt.Errorf("failed to delete tracked users: %w", err)
	}
	return nil
}
