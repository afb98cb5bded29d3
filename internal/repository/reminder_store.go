package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/krishibondhu/krishi-ledger/internal/domain"
	"github.com/krishibondhu/krishi-ledger/internal/storage"
	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
	"github.com/krishibondhu/krishi-ledger/pkg/utils"
)

type reminderStore struct {
	kv storage.KVStore
}

func NewReminderStore(kv storage.KVStore) ReminderStore {
	return &reminderStore{kv: kv}
}

func (s *reminderStore) load(ctx context.Context) ([]domain.Reminder, error) {
	blob, err := s.kv.Get(ctx, RemindersKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []domain.Reminder{}, nil
	}
	if err != nil {
		return nil, apperrors.WrapStorageError(err)
	}

	var reminders []domain.Reminder
	if err := json.Unmarshal(blob, &reminders); err != nil {
		return nil, apperrors.WrapStorageError(err)
	}
	return reminders, nil
}

func (s *reminderStore) Save(ctx context.Context, reminder *domain.Reminder) error {
	if reminder.Date == "" || !utils.IsValidISODate(reminder.Date) {
		return apperrors.WrapValidation("reminder date must be a YYYY-MM-DD calendar day")
	}

	reminders, err := s.load(ctx)
	if err != nil {
		return err
	}

	reminders = append(reminders, *reminder)

	blob, err := json.Marshal(reminders)
	if err != nil {
		return apperrors.WrapStorageError(err)
	}
	if err := s.kv.Set(ctx, RemindersKey, blob); err != nil {
		return apperrors.WrapStorageError(err)
	}
	return nil
}

func (s *reminderStore) List(ctx context.Context) ([]domain.Reminder, error) {
	return s.load(ctx)
}

// DueToday matches by exact calendar-day equality. It does not mark
// returned reminders completed, so a reminder re-fires on every poll
// of its due day. At-least-once delivery is the documented contract.
func (s *reminderStore) DueToday(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	reminders, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	due := make([]domain.Reminder, 0)
	for _, r := range reminders {
		if !r.IsCompleted && utils.SameDay(r.Date, now) {
			due = append(due, r)
		}
	}
	return due, nil
}
