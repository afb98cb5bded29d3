package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/krishibondhu/krishi-ledger/internal/domain"
	"github.com/krishibondhu/krishi-ledger/internal/notify"
	"github.com/krishibondhu/krishi-ledger/internal/payment"
	"github.com/krishibondhu/krishi-ledger/internal/repository"
	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
	"github.com/krishibondhu/krishi-ledger/pkg/utils"
)

// LoanService is the loan lifecycle composition root: it orchestrates
// the loan repository, the single payment session and the reminder
// store, and exposes the operations the presentation layer calls.
type LoanService struct {
	loans      repository.LoanRepository
	reminders  repository.ReminderStore
	notifier   notify.Notifier
	paymentCfg payment.Config

	mu      sync.Mutex
	session *payment.Flow
}

func NewLoanService(
	loans repository.LoanRepository,
	reminders repository.ReminderStore,
	notifier notify.Notifier,
	paymentCfg payment.Config,
) *LoanService {
	return &LoanService{
		loans:      loans,
		reminders:  reminders,
		notifier:   notifier,
		paymentCfg: paymentCfg,
	}
}

// AddLoan validates and records a new loan
func (s *LoanService) AddLoan(ctx context.Context, draft domain.LoanDraft) (*domain.Loan, error) {
	return s.loans.Create(ctx, draft)
}

// EditLoan patches an active loan. A settled loan is a historical
// record and cannot be edited; this rule lives here, the repository
// stays a pure data store.
func (s *LoanService) EditLoan(ctx context.Context, id string, patch domain.LoanPatch) (*domain.Loan, error) {
	loan, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status == domain.LoanStatusPaid {
		return nil, apperrors.WrapPrecondition("a settled loan cannot be edited")
	}
	return s.loans.Update(ctx, id, patch)
}

// DeleteLoan removes a loan and closes any payment session that
// references it.
func (s *LoanService) DeleteLoan(ctx context.Context, id string) error {
	if err := s.loans.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.session != nil && s.session.LoanID() == id {
		s.session.Close()
		s.session = nil
	}
	s.mu.Unlock()
	return nil
}

// ToggleStatus flips a loan between active and paid
func (s *LoanService) ToggleStatus(ctx context.Context, id string) (*domain.Loan, error) {
	loan, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := domain.LoanStatusPaid
	if loan.Status == domain.LoanStatusPaid {
		next = domain.LoanStatusActive
	}
	return s.loans.SetStatus(ctx, id, next)
}

// OpenPayment starts a payment session for a loan. Only one session
// exists at a time; opening a new one abandons the previous session.
func (s *LoanService) OpenPayment(ctx context.Context, id string) (*payment.Flow, error) {
	loan, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	flow, err := payment.Open(s.loans, *loan, s.paymentCfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.session != nil {
		s.session.Close()
	}
	s.session = flow
	s.mu.Unlock()
	return flow, nil
}

func (s *LoanService) currentSession() (*payment.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, apperrors.WrapInvalidTransition("payment command", "no session")
	}
	return s.session, nil
}

// ChoosePaymentMethod advances the active session from select to input
func (s *LoanService) ChoosePaymentMethod(method string) error {
	flow, err := s.currentSession()
	if err != nil {
		return err
	}
	return flow.ChooseMethod(method)
}

// SubmitPayment submits credentials to the active session
func (s *LoanService) SubmitPayment(ctx context.Context, creds domain.PaymentCredentials) error {
	flow, err := s.currentSession()
	if err != nil {
		return err
	}
	return flow.Submit(ctx, creds)
}

// RetryPayment returns the active session from failure to input
func (s *LoanService) RetryPayment() error {
	flow, err := s.currentSession()
	if err != nil {
		return err
	}
	return flow.Retry()
}

// ClosePayment abandons the active session and returns the step it
// had reached, so the caller can cascade view closes after success.
func (s *LoanService) ClosePayment() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return "", apperrors.WrapInvalidTransition("closing", "no session")
	}

	step := s.session.Close()
	s.session = nil
	return step, nil
}

// PaymentState snapshots the active session
func (s *LoanService) PaymentState() (*domain.PaymentState, error) {
	flow, err := s.currentSession()
	if err != nil {
		return nil, err
	}
	state := flow.State()
	return &state, nil
}

// RequestReminder creates a due-date reminder for a loan. The loan
// must have a due date, and the notifier must grant permission; on a
// denial nothing is persisted and the caller may re-request later.
func (s *LoanService) RequestReminder(ctx context.Context, id string) (*domain.Reminder, error) {
	loan, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.DueDate == "" {
		return nil, apperrors.WrapMissingDueDate(id)
	}

	granted, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, apperrors.WrapPermissionDenied("notification permission was not granted")
	}

	reminder := &domain.Reminder{
		ID:          utils.NewReminderID(),
		Title:       "Loan Due",
		Body:        fmt.Sprintf("Lender: %s, Amount: %s", loan.LenderName, loan.Amount.String()),
		Date:        loan.DueDate,
		Type:        domain.ReminderTypeLoan,
		RelatedID:   loan.ID,
		IsCompleted: false,
	}

	if err := s.reminders.Save(ctx, reminder); err != nil {
		return nil, err
	}

	// Immediate confirmation, separate from the due-day notification
	_ = s.notifier.Notify(ctx, "Reminder Set", fmt.Sprintf("Loan due on %s", loan.DueDate))

	return reminder, nil
}

// Read projections

func (s *LoanService) Loans(ctx context.Context) ([]domain.Loan, error) {
	return s.loans.List(ctx)
}

func (s *LoanService) Reminders(ctx context.Context) ([]domain.Reminder, error) {
	return s.reminders.List(ctx)
}

// Summary recomputes the active/paid partitions and their totals
func (s *LoanService) Summary(ctx context.Context) (*domain.LoanSummary, error) {
	active, err := s.loans.ActiveLoans(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := s.loans.PaidLoans(ctx)
	if err != nil {
		return nil, err
	}
	totalDebt, err := s.loans.TotalActiveDebt(ctx)
	if err != nil {
		return nil, err
	}
	totalPaid, err := s.loans.TotalPaid(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.LoanSummary{
		ActiveLoans:     active,
		PaidLoans:       paid,
		TotalActiveDebt: totalDebt,
		TotalPaid:       totalPaid,
	}, nil
}
