package service

import (
	"context"
	"log"
	"time"

	"github.com/krishibondhu/krishi-ledger/internal/notify"
	"github.com/krishibondhu/krishi-ledger/internal/repository"
)

// ReminderChecker is the periodic due-today scan. It is a pure read
// over the reminder store: it fires a notification for every matching
// reminder and completes none of them, so a reminder re-fires on each
// poll of its due day.
type ReminderChecker struct {
	reminders repository.ReminderStore
	notifier  notify.Notifier
	now       func() time.Time
}

func NewReminderChecker(reminders repository.ReminderStore, notifier notify.Notifier, now func() time.Time) *ReminderChecker {
	return &ReminderChecker{
		reminders: reminders,
		notifier:  notifier,
		now:       now,
	}
}

// RunOnce scans for reminders due today and notifies each. Returns
// the number of reminders notified.
func (c *ReminderChecker) RunOnce(ctx context.Context) (int, error) {
	due, err := c.reminders.DueToday(ctx, c.now())
	if err != nil {
		return 0, err
	}

	for _, r := range due {
		if err := c.notifier.Notify(ctx, r.Title, r.Body); err != nil {
			log.Printf("failed to deliver reminder %s: %v", r.ID, err)
		}
	}

	return len(due), nil
}
