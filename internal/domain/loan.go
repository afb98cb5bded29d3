package domain

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
	"github.com/krishibondhu/krishi-ledger/pkg/utils"
)

const (
	LoanStatusActive = "active"
	LoanStatusPaid   = "paid"
)

// Loan represents a tracked debt obligation. Dates are calendar-day
// strings (YYYY-MM-DD); DueDate may be empty meaning "no due date".
// The JSON shape matches the kb_loans collection the mobile client
// persists.
type Loan struct {
	ID         string          `json:"id"`
	LenderName string          `json:"lenderName"`
	Amount     decimal.Decimal `json:"amount"`
	StartDate  string          `json:"startDate"`
	DueDate    string          `json:"dueDate"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
}

// IsValidLoanStatus reports whether s is one of the two loan states
func IsValidLoanStatus(s string) bool {
	return s == LoanStatusActive || s == LoanStatusPaid
}

// LoanDraft is the unvalidated form input for creating a loan.
// Validation happens once, when the draft is submitted to the
// repository, never inside the presentation layer.
type LoanDraft struct {
	LenderName string          `json:"lenderName" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	DueDate    string          `json:"dueDate"`
	Notes      string          `json:"notes"`
}

// Validate checks the draft against the loan invariants
func (d LoanDraft) Validate() error {
	if d.LenderName == "" {
		return apperrors.WrapValidation("lender name is required")
	}
	if !d.Amount.IsPositive() {
		return apperrors.WrapValidation("amount must be a positive number")
	}
	if d.DueDate != "" && !utils.IsValidISODate(d.DueDate) {
		return apperrors.WrapValidation("due date must be a YYYY-MM-DD calendar day")
	}
	return nil
}

// LoanPatch mutates only the fields present. Status is never changed
// through a patch; it moves via SetStatus or payment settlement.
type LoanPatch struct {
	LenderName *string          `json:"lenderName,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	DueDate    *string          `json:"dueDate,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

// Validate checks the supplied patch fields against the loan invariants
func (p LoanPatch) Validate() error {
	if p.LenderName != nil && *p.LenderName == "" {
		return apperrors.WrapValidation("lender name cannot be cleared")
	}
	if p.Amount != nil && !p.Amount.IsPositive() {
		return apperrors.WrapValidation("amount must be a positive number")
	}
	if p.DueDate != nil && *p.DueDate != "" && !utils.IsValidISODate(*p.DueDate) {
		return apperrors.WrapValidation("due date must be a YYYY-MM-DD calendar day")
	}
	return nil
}

// LoanSummary is the read projection the loan screen renders: the two
// partitions plus their totals, recomputed on every read.
type LoanSummary struct {
	ActiveLoans     []Loan          `json:"activeLoans"`
	PaidLoans       []Loan          `json:"paidLoans"`
	TotalActiveDebt decimal.Decimal `json:"totalActiveDebt"`
	TotalPaid       decimal.Decimal `json:"totalPaid"`
}
