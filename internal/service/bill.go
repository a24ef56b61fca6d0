package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/contaflow/contaflow/internal/domain"
	"github.com/contaflow/contaflow/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type billRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.Bill, int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bill, error)
	Create(ctx context.Context, bill *domain.Bill) error
	Update(ctx context.Context, bill *domain.Bill) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Bill, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, id uuid.UUID, paymentDate time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// BillInput carries the caller-supplied bill attributes for Create and
// Update. Situation left empty means "engine decides": PENDING on create,
// the stored value on update. A non-empty Situation is a low-level
// override that bypasses the Pay transition.
type BillInput struct {
	Name        string
	Description string
	Note        *string
	Amount      decimal.Decimal
	DueDate     time.Time
	PaymentDate *time.Time
	Situation   domain.Situation
}

type BillService struct {
	bills billRepo
	users userChecker
	db    *sql.DB
}

func NewBillService(bills billRepo, users userChecker, db *sql.DB) *BillService {
	return &BillService{bills: bills, users: users, db: db}
}

func (s *BillService) Create(ctx context.Context, userID uuid.UUID, input BillInput) (*domain.Bill, error) {
	log := logging.FromContext(ctx)

	if err := s.validateInput(ctx, userID, &input); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	if input.Situation == "" {
		input.Situation = domain.SituationPending
	}

	if (input.Situation == domain.SituationPaid) != (input.PaymentDate != nil) {
		return nil, fmt.Errorf("Create: %w", domain.ErrPaymentDateMismatch)
	}

	now := time.Now().UTC()
	bill := &domain.Bill{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Note:        input.Note,
		Amount:      input.Amount,
		DueDate:     domain.DateOnly(input.DueDate),
		PaymentDate: datePtr(input.PaymentDate),
		Situation:   input.Situation,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.bills.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	log.Info("bill created",
		"bill_id", bill.ID,
		"user_id", userID,
		"amount", bill.Amount,
		"due_date", bill.DueDate.Format(time.DateOnly),
	)
	return bill, nil
}

// Update replaces every caller-mutable attribute of the bill. The path id
// wins over anything in the body, and an unset situation carries the
// stored one forward instead of resetting to PENDING. A PAID situation
// must come with a payment date and a payment date with PAID, so an
// update can never strand a paid bill without its payment date.
func (s *BillService) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, input BillInput) (*domain.Bill, error) {
	existing, err := s.bills.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Update: %w", domain.ErrBillNotFound)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}

	if err := s.validateInput(ctx, userID, &input); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	if input.Situation == "" {
		input.Situation = existing.Situation
	}

	if (input.Situation == domain.SituationPaid) != (input.PaymentDate != nil) {
		return nil, fmt.Errorf("Update: %w", domain.ErrPaymentDateMismatch)
	}

	bill := &domain.Bill{
		ID:          existing.ID,
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Note:        input.Note,
		Amount:      input.Amount,
		DueDate:     domain.DateOnly(input.DueDate),
		PaymentDate: datePtr(input.PaymentDate),
		Situation:   input.Situation,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.bills.Update(ctx, bill); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Update: %w", domain.ErrBillNotFound)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}
	return bill, nil
}

// Pay settles a bill: records today as the payment date, moves the
// situation to PAID and returns the change (paid minus the bill amount).
// Paying less than the bill amount fails, as does re-paying a bill that
// is already PAID. The row lock plus single transaction keeps the
// situation/payment_date pair consistent even when a Pay aborts.
func (s *BillService) Pay(ctx context.Context, id uuid.UUID, paid decimal.Decimal) (decimal.Decimal, error) {
	log := logging.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Pay: begin: %w", err)
	}
	defer tx.Rollback()

	bill, err := s.bills.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("Pay: %w", domain.ErrBillNotFound)
		}
		return decimal.Zero, fmt.Errorf("Pay: %w", err)
	}

	if bill.Situation == domain.SituationPaid {
		return decimal.Zero, fmt.Errorf("Pay: %w", domain.ErrBillAlreadyPaid)
	}

	if bill.Amount.GreaterThan(paid) {
		return decimal.Zero, fmt.Errorf("Pay: %w", domain.ErrInvalidPaymentAmount)
	}

	today := domain.Today()
	if err := s.bills.MarkPaid(ctx, tx, id, today); err != nil {
		return decimal.Zero, fmt.Errorf("Pay: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("Pay: commit: %w", err)
	}

	change := paid.Sub(bill.Amount)
	log.Info("bill paid",
		"bill_id", id,
		"amount", bill.Amount,
		"paid", paid,
		"change", change,
		"payment_date", today.Format(time.DateOnly),
	)
	return change, nil
}

func (s *BillService) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := s.bills.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if !exists {
		return fmt.Errorf("Delete: %w", domain.ErrBillNotFound)
	}

	if err := s.bills.Delete(ctx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	logging.FromContext(ctx).Info("bill deleted", "bill_id", id)
	return nil
}

func (s *BillService) Get(ctx context.Context, id uuid.UUID) (*domain.Bill, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Get: %w", domain.ErrBillNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return bill, nil
}

func (s *BillService) List(ctx context.Context, limit, offset int) ([]domain.Bill, int, error) {
	bills, total, err := s.bills.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return bills, total, nil
}

func (s *BillService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bill, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("ListByUser: %w", domain.ErrUserNotFound)
	}

	bills, err := s.bills.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	return bills, nil
}

func (s *BillService) validateInput(ctx context.Context, userID uuid.UUID, input *BillInput) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	if !input.Amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	if input.Situation != "" && !input.Situation.IsValid() {
		return domain.ErrInvalidSituation
	}
	return nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.DateOnly(*t)
	return &d
}
