package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/krishibondhu/krishi-ledger/internal/domain"
	"github.com/krishibondhu/krishi-ledger/internal/repository"
	"github.com/krishibondhu/krishi-ledger/internal/storage"
)

func TestReminderChecker_RunOnce(t *testing.T) {
	store := repository.NewReminderStore(storage.NewMemoryStore())
	ctx := context.Background()
	now := func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	seed := []domain.Reminder{
		{ID: "due-loan", Title: "Loan Due", Body: "Lender: Grameen Bank, Amount: 5000", Date: "2025-06-01", Type: domain.ReminderTypeLoan},
		{ID: "due-crop", Title: "Fertilizer for Boro Rice", Body: "Type: Urea", Date: "2025-06-01", Type: domain.ReminderTypeFertilizer},
		{ID: "future", Title: "Later", Date: "2025-06-05", Type: domain.ReminderTypeGeneral},
	}
	for i := range seed {
		require.NoError(t, store.Save(ctx, &seed[i]))
	}

	notifier := &MockNotifier{}
	notifier.On("Notify", mock.Anything, "Loan Due", "Lender: Grameen Bank, Amount: 5000").Return(nil)
	notifier.On("Notify", mock.Anything, "Fertilizer for Boro Rice", "Type: Urea").Return(nil)

	checker := NewReminderChecker(store, notifier, now)

	count, err := checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	notifier.AssertExpectations(t)

	// The check completes nothing, so the next poll re-fires
	count, err = checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReminderChecker_NothingDue(t *testing.T) {
	store := repository.NewReminderStore(storage.NewMemoryStore())
	notifier := &MockNotifier{}
	now := func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	checker := NewReminderChecker(store, notifier, now)

	count, err := checker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}
