package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/krishibondhu/krishi-ledger/internal/domain"
)

// Storage keys owned by the core collections
const (
	LoansKey     = "kb_loans"
	RemindersKey = "kb_reminders"
)

// LoanRepository owns the durable loan collection. It is a pure data
// store: rules that span entities (no editing a settled loan, payment
// preconditions) live in the service layer.
type LoanRepository interface {
	// Create validates the draft and prepends a fresh active loan
	Create(ctx context.Context, draft domain.LoanDraft) (*domain.Loan, error)

	// Update patches only the supplied fields; status is never touched
	Update(ctx context.Context, id string, patch domain.LoanPatch) (*domain.Loan, error)

	// SetStatus sets the loan status; idempotent for repeated sets
	SetStatus(ctx context.Context, id string, status string) (*domain.Loan, error)

	// Delete removes a loan; a second delete of the same id fails
	Delete(ctx context.Context, id string) error

	// GetByID retrieves a single loan
	GetByID(ctx context.Context, id string) (*domain.Loan, error)

	// List returns all loans in repository order (recency-first inserts)
	List(ctx context.Context) ([]domain.Loan, error)

	// Derived projections, recomputed on every read
	ActiveLoans(ctx context.Context) ([]domain.Loan, error)
	PaidLoans(ctx context.Context) ([]domain.Loan, error)
	TotalActiveDebt(ctx context.Context) (decimal.Decimal, error)
	TotalPaid(ctx context.Context) (decimal.Decimal, error)
}

// ReminderStore owns the append-only reminder collection
type ReminderStore interface {
	// Save appends a reminder; repeated requests for the same related
	// entity produce independent records
	Save(ctx context.Context, reminder *domain.Reminder) error

	// List returns all reminders
	List(ctx context.Context) ([]domain.Reminder, error)

	// DueToday returns uncompleted reminders whose date equals now's
	// calendar day. Pure read: it never marks anything completed.
	DueToday(ctx context.Context, now time.Time) ([]domain.Reminder, error)
}
