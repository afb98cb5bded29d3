package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/krishibondhu/krishi-ledger/internal/domain"
	"github.com/krishibondhu/krishi-ledger/internal/service"
	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
	"github.com/krishibondhu/krishi-ledger/pkg/response"
)

// LoanHandler exposes the loan lifecycle and payment session over HTTP
type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

// writeDomainError maps the error taxonomy to HTTP status codes
func writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *apperrors.DomainError
	code := apperrors.ErrCodeStorageError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrMissingDueDate):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrPrecondition),
		errors.Is(err, apperrors.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrPermissionDenied):
		status = http.StatusForbidden
	}

	response.Error(w, status, code, "request failed", err)
}

// ListLoans returns all loans plus the recomputed summary projection
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.Loans(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"loans":   loans,
		"summary": summary,
	})
}

// CreateLoan records a new loan
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var draft domain.LoanDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(draft); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}

	loan, err := h.service.AddLoan(r.Context(), draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Created(w, loan)
}

// UpdateLoan patches an active loan
func (h *LoanHandler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["loanId"]

	var patch domain.LoanPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}

	loan, err := h.service.EditLoan(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, loan)
}

// DeleteLoan removes a loan
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["loanId"]

	if err := h.service.DeleteLoan(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, map[string]string{"deleted": id})
}

// ToggleStatus flips a loan between active and paid
func (h *LoanHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["loanId"]

	loan, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, loan)
}

// OpenPayment starts a payment session for a loan
func (h *LoanHandler) OpenPayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["loanId"]

	flow, err := h.service.OpenPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Created(w, flow.State())
}

type chooseMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

// ChooseMethod selects the payment method for the active session
func (h *LoanHandler) ChooseMethod(w http.ResponseWriter, r *http.Request) {
	var req chooseMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}

	if err := h.service.ChoosePaymentMethod(req.Method); err != nil {
		writeDomainError(w, err)
		return
	}

	state, err := h.service.PaymentState()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, state)
}

// SubmitPayment submits credentials; settlement resolves
// asynchronously and is observable via GET /payment.
func (h *LoanHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var creds domain.PaymentCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}

	if err := h.service.SubmitPayment(r.Context(), creds); err != nil {
		writeDomainError(w, err)
		return
	}

	state, err := h.service.PaymentState()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, state)
}

// RetryPayment returns a failed session to credential input
func (h *LoanHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RetryPayment(); err != nil {
		writeDomainError(w, err)
		return
	}

	state, err := h.service.PaymentState()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, state)
}

// ClosePayment abandons the session, reporting the step it had reached
func (h *LoanHandler) ClosePayment(w http.ResponseWriter, r *http.Request) {
	step, err := h.service.ClosePayment()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, map[string]string{"closedAt": step})
}

// PaymentState snapshots the active session
func (h *LoanHandler) PaymentState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.PaymentState()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, state)
}

// RequestReminder creates a due-date reminder for a loan
func (h *LoanHandler) RequestReminder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["loanId"]

	reminder, err := h.service.RequestReminder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Created(w, reminder)
}

// ListReminders returns the reminder collection
func (h *LoanHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.service.Reminders(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, reminders)
}
