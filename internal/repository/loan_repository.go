package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/krishibondhu/krishi-ledger/internal/domain"
	"github.com/krishibondhu/krishi-ledger/internal/storage"
	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
	"github.com/krishibondhu/krishi-ledger/pkg/utils"
)

type loanRepository struct {
	kv  storage.KVStore
	now func() time.Time
}

func NewLoanRepository(kv storage.KVStore, now func() time.Time) LoanRepository {
	return &loanRepository{kv: kv, now: now}
}

func (r *loanRepository) load(ctx context.Context) ([]domain.Loan, error) {
	blob, err := r.kv.Get(ctx, LoansKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []domain.Loan{}, nil
	}
	if err != nil {
		return nil, apperrors.WrapStorageError(err)
	}

	var loans []domain.Loan
	if err := json.Unmarshal(blob, &loans); err != nil {
		return nil, apperrors.WrapStorageError(err)
	}
	return loans, nil
}

// persist durable-writes the full collection before the mutating call
// returns, so observable state survives a process restart.
func (r *loanRepository) persist(ctx context.Context, loans []domain.Loan) error {
	blob, err := json.Marshal(loans)
	if err != nil {
		return apperrors.WrapStorageError(err)
	}
	if err := r.kv.Set(ctx, LoansKey, blob); err != nil {
		return apperrors.WrapStorageError(err)
	}
	return nil
}

func (r *loanRepository) Create(ctx context.Context, draft domain.LoanDraft) (*domain.Loan, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	loans, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	loan := domain.Loan{
		ID:         utils.NewLoanID(now),
		LenderName: draft.LenderName,
		Amount:     draft.Amount,
		StartDate:  utils.ISODate(now),
		DueDate:    draft.DueDate,
		Status:     domain.LoanStatusActive,
		Notes:      draft.Notes,
	}

	// Most-recent-first is the display invariant
	loans = append([]domain.Loan{loan}, loans...)

	if err := r.persist(ctx, loans); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, id string, patch domain.LoanPatch) (*domain.Loan, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	loans, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range loans {
		if loans[i].ID != id {
			continue
		}

		if patch.LenderName != nil {
			loans[i].LenderName = *patch.LenderName
		}
		if patch.Amount != nil {
			loans[i].Amount = *patch.Amount
		}
		if patch.DueDate != nil {
			loans[i].DueDate = *patch.DueDate
		}
		if patch.Notes != nil {
			loans[i].Notes = *patch.Notes
		}

		if err := r.persist(ctx, loans); err != nil {
			return nil, err
		}
		updated := loans[i]
		return &updated, nil
	}

	return nil, apperrors.WrapLoanNotFound(id)
}

func (r *loanRepository) SetStatus(ctx context.Context, id string, status string) (*domain.Loan, error) {
	if !domain.IsValidLoanStatus(status) {
		return nil, apperrors.WrapValidation("status must be active or paid")
	}

	loans, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range loans {
		if loans[i].ID != id {
			continue
		}

		// Re-marking a loan with its current status is a no-op
		if loans[i].Status != status {
			loans[i].Status = status
			if err := r.persist(ctx, loans); err != nil {
				return nil, err
			}
		}
		updated := loans[i]
		return &updated, nil
	}

	return nil, apperrors.WrapLoanNotFound(id)
}

func (r *loanRepository) Delete(ctx context.Context, id string) error {
	loans, err := r.load(ctx)
	if err != nil {
		return err
	}

	remaining := make([]domain.Loan, 0, len(loans))
	found := false
	for _, loan := range loans {
		if loan.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, loan)
	}

	if !found {
		return apperrors.WrapLoanNotFound(id)
	}

	return r.persist(ctx, remaining)
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	loans, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, loan := range loans {
		if loan.ID == id {
			found := loan
			return &found, nil
		}
	}

	return nil, apperrors.WrapLoanNotFound(id)
}

func (r *loanRepository) List(ctx context.Context) ([]domain.Loan, error) {
	return r.load(ctx)
}

func (r *loanRepository) ActiveLoans(ctx context.Context) ([]domain.Loan, error) {
	return r.filterByStatus(ctx, domain.LoanStatusActive)
}

func (r *loanRepository) PaidLoans(ctx context.Context) ([]domain.Loan, error) {
	return r.filterByStatus(ctx, domain.LoanStatusPaid)
}

func (r *loanRepository) TotalActiveDebt(ctx context.Context) (decimal.Decimal, error) {
	return r.sumByStatus(ctx, domain.LoanStatusActive)
}

func (r *loanRepository) TotalPaid(ctx context.Context) (decimal.Decimal, error) {
	return r.sumByStatus(ctx, domain.LoanStatusPaid)
}

func (r *loanRepository) filterByStatus(ctx context.Context, status string) ([]domain.Loan, error) {
	loans, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Loan, 0, len(loans))
	for _, loan := range loans {
		if loan.Status == status {
			filtered = append(filtered, loan)
		}
	}
	return filtered, nil
}

func (r *loanRepository) sumByStatus(ctx context.Context, status string) (decimal.Decimal, error) {
	loans, err := r.filterByStatus(ctx, status)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, loan := range loans {
		total = total.Add(loan.Amount)
	}
	return total, nil
}
