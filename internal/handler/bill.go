package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/contaflow/contaflow/internal/auth"
	"github.com/contaflow/contaflow/internal/domain"
	"github.com/contaflow/contaflow/internal/logging"
	"github.com/contaflow/contaflow/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type billService interface {
	Create(ctx context.Context, userID uuid.UUID, input service.BillInput) (*domain.Bill, error)
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, input service.BillInput) (*domain.Bill, error)
	Pay(ctx context.Context, id uuid.UUID, paid decimal.Decimal) (decimal.Decimal, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Bill, error)
	List(ctx context.Context, limit, offset int) ([]domain.Bill, int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bill, error)
}

type ledgerService interface {
	TotalPaid(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	PendingInRange(ctx context.Context, start, end time.Time) ([]domain.Bill, error)
}

type BillHandler struct {
	bills  billService
	ledger ledgerService
}

func NewBillHandler(bills billService, ledger ledgerService) *BillHandler {
	return &BillHandler{bills: bills, ledger: ledger}
}

type billRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Note        *string          `json:"note"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     string           `json:"due_date"`
	PaymentDate string           `json:"payment_date"`
	Situation   string           `json:"situation"`
}

func (r billRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "required"})
	}
	if r.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	if r.DueDate == "" {
		errs = append(errs, FieldError{Field: "due_date", Message: "required"})
	} else if _, err := time.Parse(time.DateOnly, r.DueDate); err != nil {
		errs = append(errs, FieldError{Field: "due_date", Message: "must be a valid YYYY-MM-DD date"})
	}
	if r.PaymentDate != "" {
		if _, err := time.Parse(time.DateOnly, r.PaymentDate); err != nil {
			errs = append(errs, FieldError{Field: "payment_date", Message: "must be a valid YYYY-MM-DD date"})
		}
	}
	if r.Situation != "" && !domain.Situation(r.Situation).IsValid() {
		errs = append(errs, FieldError{Field: "situation", Message: "must be PENDING or PAID"})
	}
	return errs
}

// toInput assumes Validate passed; the date strings parse cleanly here.
func (r billRequest) toInput() service.BillInput {
	due, _ := time.Parse(time.DateOnly, r.DueDate)
	input := service.BillInput{
		Name:        r.Name,
		Description: r.Description,
		Note:        r.Note,
		Amount:      *r.Amount,
		DueDate:     due,
		Situation:   domain.Situation(r.Situation),
	}
	if r.PaymentDate != "" {
		pd, _ := time.Parse(time.DateOnly, r.PaymentDate)
		input.PaymentDate = &pd
	}
	return input
}

type billDTO struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Note        *string         `json:"note"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"`
	PaymentDate *string         `json:"payment_date"`
	Situation   string          `json:"situation"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toBillDTO(b *domain.Bill) billDTO {
	dto := billDTO{
		ID:          b.ID,
		UserID:      b.UserID,
		Name:        b.Name,
		Description: b.Description,
		Note:        b.Note,
		Amount:      b.Amount,
		DueDate:     b.DueDate.Format(time.DateOnly),
		Situation:   string(b.Situation),
		CreatedAt:   b.CreatedAt,
	}
	if b.PaymentDate != nil {
		pd := b.PaymentDate.Format(time.DateOnly)
		dto.PaymentDate = &pd
	}
	return dto
}

func toBillDTOs(bills []domain.Bill) []billDTO {
	dtos := make([]billDTO, len(bills))
	for i := range bills {
		dtos[i] = toBillDTO(&bills[i])
	}
	return dtos
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req billRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	bill, err := h.bills.Create(r.Context(), userID, req.toInput())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create bill", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toBillDTO(bill))
}

func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	billID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrBillNotFound, nil)
		return
	}

	var req billRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	bill, err := h.bills.Update(r.Context(), billID, userID, req.toInput())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update bill", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toBillDTO(bill))
}

type payRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (r payRequest) Validate() []FieldError {
	if r.Amount == nil {
		return []FieldError{{Field: "amount", Message: "required"}}
	}
	return nil
}

type payResponse struct {
	Change decimal.Decimal `json:"change"`
}

func (h *BillHandler) Pay(w http.ResponseWriter, r *http.Request) {
	billID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrBillNotFound, nil)
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	change, err := h.bills.Pay(r.Context(), billID, *req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to pay bill", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, payResponse{Change: change})
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	billID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrBillNotFound, nil)
		return
	}

	bill, err := h.bills.Get(r.Context(), billID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toBillDTO(bill))
}

type billPage struct {
	Bills  []billDTO `json:"bills"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	bills, total, err := h.bills.List(r.Context(), limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list bills", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, billPage{
		Bills:  toBillDTOs(bills),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	billID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrBillNotFound, nil)
		return
	}

	if err := h.bills.Delete(r.Context(), billID); err != nil {
		logging.FromContext(r.Context()).Error("failed to delete bill", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BillHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	bills, err := h.bills.ListByUser(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list user bills", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toBillDTOs(bills))
}

type totalPaidResponse struct {
	TotalPaid decimal.Decimal `json:"total_paid"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
}

func (h *BillHandler) TotalPaid(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := dateRangeFromQuery(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	total, err := h.ledger.TotalPaid(r.Context(), start, end)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute total paid", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, totalPaidResponse{
		TotalPaid: total,
		StartDate: start.Format(time.DateOnly),
		EndDate:   end.Format(time.DateOnly),
	})
}

func (h *BillHandler) Pending(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := dateRangeFromQuery(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	bills, err := h.ledger.PendingInRange(r.Context(), start, end)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list pending bills", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toBillDTOs(bills))
}

func dateRangeFromQuery(r *http.Request) (time.Time, time.Time, *AppError) {
	q := r.URL.Query()

	start, err := time.Parse(time.DateOnly, q.Get("start_date"))
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateFormat
	}
	end, err := time.Parse(time.DateOnly, q.Get("end_date"))
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateFormat
	}
	return start, end, nil
}
