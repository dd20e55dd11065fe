package database

import (
	"context"
	"fmt"

	"github.com/diegoclair/slack-attendance-bot/internal/domain/contract"
)

// instance implements DataManager interface
type instance struct {
	db              *DB
	trackedUserRepo contract.TrackedUserRepo
	reminderRepo    contract.ReminderRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	instance := repoInstancesWithConn(db.conn)
	instance.db = db
	return instance
}

// repoInstancesWithConn creates repository instances with custom dbConn
func repoInstancesWithConn(db dbConn) *instance {
	return &instance{
		trackedUserRepo: newTrackedUserRepo(db),
		reminderRepo:    newReminderRepo(db),
	}
}

func (i *instance) TrackedUser() contract.TrackedUserRepo {
	return i.trackedUserRepo
}

func (i *instance) Reminder() contract.ReminderRepo {
	return i.reminderRepo
}

// WithTransaction executes a function within a database transaction
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	if i.db == nil {
		// already inside a transaction
		return fn(i)
	}

	tx, err := i.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txInstance := repoInstancesWithConn(tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
