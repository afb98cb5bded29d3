package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishibondhu/krishi-ledger/internal/domain"
	"github.com/krishibondhu/krishi-ledger/internal/repository"
	"github.com/krishibondhu/krishi-ledger/internal/storage"
	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
)

var testCfg = Config{SentinelPIN: "0000", ProcessingDelay: time.Millisecond}

func newTestLoan(t *testing.T) (repository.LoanRepository, domain.Loan) {
	t.Helper()

	repo := repository.NewLoanRepository(storage.NewMemoryStore(), time.Now)
	loan, err := repo.Create(context.Background(), domain.LoanDraft{
		LenderName: "Grameen Bank",
		Amount:     decimal.NewFromInt(5000),
		DueDate:    "2025-06-01",
	})
	require.NoError(t, err)
	return repo, *loan
}

func awaitSettlement(t *testing.T, flow *Flow) string {
	t.Helper()

	select {
	case step := <-flow.Done():
		return step
	case <-time.After(2 * time.Second):
		t.Fatal("settlement did not resolve")
		return ""
	}
}

func TestOpen_RejectsPaidLoan(t *testing.T) {
	repo, loan := newTestLoan(t)
	_, err := repo.SetStatus(context.Background(), loan.ID, domain.LoanStatusPaid)
	require.NoError(t, err)
	loan.Status = domain.LoanStatusPaid

	flow, err := Open(repo, loan, testCfg)

	assert.ErrorIs(t, err, apperrors.ErrPrecondition)
	assert.Nil(t, flow)
}

func TestOpen_StartsAtSelectStep(t *testing.T) {
	repo, loan := newTestLoan(t)

	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)

	state := flow.State()
	assert.Equal(t, domain.StepSelect, state.Step)
	assert.Empty(t, state.Method)
	assert.Equal(t, loan.ID, state.LoanID)
}

func TestChooseMethod(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		expectedError error
		expectedStep  string
	}{
		{name: "mobile wallet", method: domain.MethodMobileWallet, expectedStep: domain.StepInput},
		{name: "bank transfer", method: domain.MethodBankTransfer, expectedStep: domain.StepInput},
		{name: "unknown method rejected", method: "cash", expectedError: apperrors.ErrValidation, expectedStep: domain.StepSelect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, loan := newTestLoan(t)
			flow, err := Open(repo, loan, testCfg)
			require.NoError(t, err)

			err = flow.ChooseMethod(tt.method)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedStep, flow.State().Step)
		})
	}
}

func TestChooseMethod_OnlyFromSelect(t *testing.T) {
	repo, loan := newTestLoan(t)
	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)
	require.NoError(t, flow.ChooseMethod(domain.MethodMobileWallet))

	err = flow.ChooseMethod(domain.MethodBankTransfer)

	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestSubmit_NotReachableFromSelect(t *testing.T) {
	repo, loan := newTestLoan(t)
	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)

	err = flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "1234"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestSubmit_RejectsMalformedCredentialsBeforeProcessing(t *testing.T) {
	tests := []struct {
		name   string
		method string
		creds  domain.PaymentCredentials
	}{
		{name: "empty PIN", method: domain.MethodMobileWallet, creds: domain.PaymentCredentials{}},
		{name: "short PIN", method: domain.MethodMobileWallet, creds: domain.PaymentCredentials{PIN: "12"}},
		{name: "missing bank name", method: domain.MethodBankTransfer, creds: domain.PaymentCredentials{AccountNumber: "12345"}},
		{name: "missing account number", method: domain.MethodBankTransfer, creds: domain.PaymentCredentials{BankName: "Sonali Bank"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, loan := newTestLoan(t)
			flow, err := Open(repo, loan, testCfg)
			require.NoError(t, err)
			require.NoError(t, flow.ChooseMethod(tt.method))

			err = flow.Submit(context.Background(), tt.creds)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			// A shape error never enters processing
			assert.Equal(t, domain.StepInput, flow.State().Step)
		})
	}
}

func TestSubmit_WalletSuccessMarksLoanPaid(t *testing.T) {
	repo, loan := newTestLoan(t)
	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)
	require.NoError(t, flow.ChooseMethod(domain.MethodMobileWallet))

	require.NoError(t, flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "1234"}))

	assert.Equal(t, domain.StepSuccess, awaitSettlement(t, flow))
	assert.Equal(t, domain.StepSuccess, flow.State().Step)

	settled, err := repo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPaid, settled.Status)
}

func TestSubmit_BankTransferSuccess(t *testing.T) {
	repo, loan := newTestLoan(t)
	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)
	require.NoError(t, flow.ChooseMethod(domain.MethodBankTransfer))

	creds := domain.PaymentCredentials{BankName: "Sonali Bank", AccountNumber: "0123456789"}
	require.NoError(t, flow.Submit(context.Background(), creds))

	assert.Equal(t, domain.StepSuccess, awaitSettlement(t, flow))

	settled, err := repo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPaid, settled.Status)
}

func TestSubmit_SentinelPINFailsThenRetrySucceeds(t *testing.T) {
	repo, loan := newTestLoan(t)
	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)
	require.NoError(t, flow.ChooseMethod(domain.MethodMobileWallet))

	require.NoError(t, flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "0000"}))

	assert.Equal(t, domain.StepFailure, awaitSettlement(t, flow))
	state := flow.State()
	assert.Equal(t, domain.StepFailure, state.Step)
	assert.Equal(t, domain.FailureReasonInsufficientFunds, state.FailureReason)

	// A declined payment leaves the loan untouched
	declined, err := repo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusActive, declined.Status)

	// Retry preserves the method and returns to input
	require.NoError(t, flow.Retry())
	state = flow.State()
	assert.Equal(t, domain.StepInput, state.Step)
	assert.Equal(t, domain.MethodMobileWallet, state.Method)
	assert.Empty(t, state.FailureReason)

	require.NoError(t, flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "1234"}))
	assert.Equal(t, domain.StepSuccess, awaitSettlement(t, flow))

	settled, err := repo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPaid, settled.Status)
}

func TestRetry_OnlyFromFailure(t *testing.T) {
	repo, loan := newTestLoan(t)
	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)

	assert.ErrorIs(t, flow.Retry(), apperrors.ErrInvalidTransition)
}

func TestSubmit_NotValidAfterSuccess(t *testing.T) {
	repo, loan := newTestLoan(t)
	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)
	require.NoError(t, flow.ChooseMethod(domain.MethodMobileWallet))
	require.NoError(t, flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "1234"}))
	require.Equal(t, domain.StepSuccess, awaitSettlement(t, flow))

	err = flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "1234"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestSubmit_NotValidWhileProcessing(t *testing.T) {
	repo, loan := newTestLoan(t)
	cfg := Config{SentinelPIN: "0000", ProcessingDelay: 100 * time.Millisecond}
	flow, err := Open(repo, loan, cfg)
	require.NoError(t, err)
	require.NoError(t, flow.ChooseMethod(domain.MethodMobileWallet))
	require.NoError(t, flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "1234"}))

	// Processing is a closed gate
	err = flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	awaitSettlement(t, flow)
}

func TestClose_ReturnsStepReached(t *testing.T) {
	repo, loan := newTestLoan(t)
	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)
	require.NoError(t, flow.ChooseMethod(domain.MethodMobileWallet))
	require.NoError(t, flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "1234"}))
	require.Equal(t, domain.StepSuccess, awaitSettlement(t, flow))

	assert.Equal(t, domain.StepSuccess, flow.Close())
	assert.True(t, flow.Closed())
}

func TestClose_AbandonsWithoutLoanMutation(t *testing.T) {
	repo, loan := newTestLoan(t)
	flow, err := Open(repo, loan, testCfg)
	require.NoError(t, err)
	require.NoError(t, flow.ChooseMethod(domain.MethodMobileWallet))

	assert.Equal(t, domain.StepInput, flow.Close())

	got, err := repo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusActive, got.Status)

	// A closed session accepts no further commands
	assert.ErrorIs(t, flow.ChooseMethod(domain.MethodBankTransfer), apperrors.ErrInvalidTransition)
}

func TestClose_DuringProcessingSuppressesSettlement(t *testing.T) {
	repo, loan := newTestLoan(t)
	cfg := Config{SentinelPIN: "0000", ProcessingDelay: 50 * time.Millisecond}
	flow, err := Open(repo, loan, cfg)
	require.NoError(t, err)
	require.NoError(t, flow.ChooseMethod(domain.MethodMobileWallet))
	require.NoError(t, flow.Submit(context.Background(), domain.PaymentCredentials{PIN: "1234"}))

	assert.Equal(t, domain.StepProcessing, flow.Close())

	// The in-flight settlement still resolves, but its repository
	// side effect is suppressed: the loan stays active.
	assert.Equal(t, "closed", awaitSettlement(t, flow))

	got, err := repo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusActive, got.Status)
}
