// Package payment implements the simulated settlement flow for a
// single loan: method selection, credential input, a delayed
// processing step and a terminal success or failure.
package payment

import (
	"context"
	"sync"
	"time"

	"github.com/krishibondhu/krishi-ledger/internal/domain"
	"github.com/krishibondhu/krishi-ledger/internal/repository"
	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
)

// Config controls the simulated settlement behavior
type Config struct {
	// SentinelPIN deterministically declines a wallet submission with
	// "insufficient funds". Every other well-formed submission settles.
	SentinelPIN string

	// ProcessingDelay models network latency during processing
	ProcessingDelay time.Duration
}

// Flow is one ephemeral payment session over a selected loan. It is
// never persisted; discarding it abandons the attempt with no side
// effect on the loan. On reaching success it marks the loan paid in
// the repository exactly once.
type Flow struct {
	mu    sync.Mutex
	loans repository.LoanRepository
	cfg   Config

	loan       domain.Loan
	method     string
	step       string
	failReason string
	closed     bool

	// done receives the terminal step of each settlement so observers
	// can await the asynchronous outcome
	done chan string
}

// Open starts a session at the select step. Payment is only offered
// for active loans.
func Open(loans repository.LoanRepository, loan domain.Loan, cfg Config) (*Flow, error) {
	if loan.Status != domain.LoanStatusActive {
		return nil, apperrors.WrapPrecondition("payment can only be opened for an active loan")
	}

	return &Flow{
		loans: loans,
		cfg:   cfg,
		loan:  loan,
		step:  domain.StepSelect,
		done:  make(chan string, 4),
	}, nil
}

// ChooseMethod sets the payment method and advances select → input
func (f *Flow) ChooseMethod(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return apperrors.WrapInvalidTransition("choosing a method", "closed")
	}
	if f.step != domain.StepSelect {
		return apperrors.WrapInvalidTransition("choosing a method", f.step)
	}
	if !domain.IsValidMethod(method) {
		return apperrors.WrapValidation("unknown payment method")
	}

	f.method = method
	f.step = domain.StepInput
	return nil
}

// Submit validates the credentials, advances input → processing
// synchronously and settles asynchronously after the configured delay.
// Processing is a closed gate: no further commands are accepted until
// the settlement resolves, and the settlement itself cannot be
// interrupted.
func (f *Flow) Submit(ctx context.Context, creds domain.PaymentCredentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return apperrors.WrapInvalidTransition("submitting", "closed")
	}
	if f.step != domain.StepInput {
		return apperrors.WrapInvalidTransition("submitting", f.step)
	}
	if err := creds.Validate(f.method); err != nil {
		return err
	}

	f.step = domain.StepProcessing
	go f.settle(creds)
	return nil
}

func (f *Flow) settle(creds domain.PaymentCredentials) {
	time.Sleep(f.cfg.ProcessingDelay)

	declined := f.method == domain.MethodMobileWallet && creds.PIN == f.cfg.SentinelPIN

	f.mu.Lock()
	defer f.mu.Unlock()

	// The session was abandoned mid-processing: suppress the
	// settlement side effect, the loan stays active.
	if f.closed {
		f.publish("closed")
		return
	}

	if declined {
		f.step = domain.StepFailure
		f.failReason = domain.FailureReasonInsufficientFunds
		f.publish(f.step)
		return
	}

	// The repository mutation happens here, independent of whether a
	// presentation layer is still observing the session. The submit
	// context is long gone, so settlement runs on its own.
	if _, err := f.loans.SetStatus(context.Background(), f.loan.ID, domain.LoanStatusPaid); err != nil {
		f.step = domain.StepFailure
		f.failReason = err.Error()
		f.publish(f.step)
		return
	}

	f.step = domain.StepSuccess
	f.publish(f.step)
}

func (f *Flow) publish(step string) {
	select {
	case f.done <- step:
	default:
	}
}

// Retry returns failure → input, preserving the chosen method. The
// session never retains credentials, so the next submission starts
// from blank fields.
func (f *Flow) Retry() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return apperrors.WrapInvalidTransition("retrying", "closed")
	}
	if f.step != domain.StepFailure {
		return apperrors.WrapInvalidTransition("retrying", f.step)
	}

	f.step = domain.StepInput
	f.failReason = ""
	return nil
}

// Close abandons the session from any state and returns the step it
// was at, so the caller can tell which terminal state was reached.
// Closing during processing does not stop the in-flight settlement
// but suppresses its repository side effect.
func (f *Flow) Close() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return f.step
}

// Closed reports whether the session has been abandoned
func (f *Flow) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// LoanID returns the id of the loan under payment
func (f *Flow) LoanID() string {
	return f.loan.ID
}

// State snapshots the observable session state
func (f *Flow) State() domain.PaymentState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return domain.PaymentState{
		LoanID:        f.loan.ID,
		Method:        f.method,
		Step:          f.step,
		FailureReason: f.failReason,
	}
}

// Done delivers the terminal step of each settlement attempt
func (f *Flow) Done() <-chan string {
	return f.done
}
