package domain

import (
	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
)

// Payment methods offered by the simulated settlement flow
const (
	MethodMobileWallet = "mobile-wallet"
	MethodBankTransfer = "bank-transfer"
)

// Payment session steps
const (
	StepSelect     = "select"
	StepInput      = "input"
	StepProcessing = "processing"
	StepSuccess    = "success"
	StepFailure    = "failure"
)

// FailureReasonInsufficientFunds is the only simulated decline reason
const FailureReasonInsufficientFunds = "insufficient funds"

// IsValidMethod reports whether m is an offered payment method
func IsValidMethod(m string) bool {
	return m == MethodMobileWallet || m == MethodBankTransfer
}

// PaymentCredentials holds the transient input for one submission.
// Credentials are never retained by the session; a retry after failure
// starts from blank fields.
type PaymentCredentials struct {
	PIN           string `json:"pin,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	Reference     string `json:"reference,omitempty"`
}

// Validate checks the credential shape for the chosen method. Shape
// errors are rejected before the session enters processing; they are
// distinct from the simulated "insufficient funds" decline, which is a
// terminal state rather than an error.
func (c PaymentCredentials) Validate(method string) error {
	switch method {
	case MethodMobileWallet:
		if c.PIN == "" {
			return apperrors.WrapValidation("wallet PIN is required")
		}
		if len(c.PIN) < 4 {
			return apperrors.WrapValidation("wallet PIN must be at least 4 digits")
		}
	case MethodBankTransfer:
		if c.BankName == "" {
			return apperrors.WrapValidation("bank name is required")
		}
		if c.AccountNumber == "" {
			return apperrors.WrapValidation("account number is required")
		}
	default:
		return apperrors.WrapValidation("unknown payment method")
	}
	return nil
}

// PaymentState is the observable snapshot of the active session
type PaymentState struct {
	LoanID        string `json:"loanId"`
	Method        string `json:"method,omitempty"`
	Step          string `json:"step"`
	FailureReason string `json:"failureReason,omitempty"`
}
