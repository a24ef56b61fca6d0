package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/contaflow/contaflow/internal/domain"
	"github.com/google/uuid"
)

const billColumns = `id, user_id, name, description, note, amount,
	due_date, payment_date, situation, created_at, updated_at`

type BillRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1`, id,
	)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return b, nil
}

func (r *BillRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bills WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return exists, nil
}

func (r *BillRepository) List(ctx context.Context, limit, offset int) ([]domain.Bill, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills
		ORDER BY due_date, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	bills, err := collectBills(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return bills, total, nil
}

// ListAll returns every bill. The ledger queries filter in memory over the
// full set, so there is no WHERE pushdown here.
func (r *BillRepository) ListAll(ctx context.Context) ([]domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills ORDER BY due_date, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	defer rows.Close()

	bills, err := collectBills(rows)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return bills, nil
}

func (r *BillRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills
		WHERE user_id = $1 ORDER BY due_date, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()

	bills, err := collectBills(rows)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	return bills, nil
}

func (r *BillRepository) Create(ctx context.Context, bill *domain.Bill) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bills (
			id, user_id, name, description, note, amount,
			due_date, payment_date, situation, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		bill.ID, bill.UserID, bill.Name, bill.Description, bill.Note,
		bill.Amount, bill.DueDate, bill.PaymentDate, bill.Situation,
		bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Update is a full replace of every mutable column, keyed by bill.ID.
func (r *BillRepository) Update(ctx context.Context, bill *domain.Bill) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET
			user_id = $1, name = $2, description = $3, note = $4, amount = $5,
			due_date = $6, payment_date = $7, situation = $8, updated_at = $9
		WHERE id = $10`,
		bill.UserID, bill.Name, bill.Description, bill.Note, bill.Amount,
		bill.DueDate, bill.PaymentDate, bill.Situation, bill.UpdatedAt,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *BillRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Bill, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1 FOR UPDATE`, id,
	)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return b, nil
}

// MarkPaid flips the settlement pair inside the caller's transaction so
// situation and payment_date always commit together.
func (r *BillRepository) MarkPaid(ctx context.Context, tx *sql.Tx, id uuid.UUID, paymentDate time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET payment_date = $1, situation = $2, updated_at = now()
		WHERE id = $3`,
		paymentDate, domain.SituationPaid, id,
	)
	if err != nil {
		return fmt.Errorf("MarkPaid: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkPaid: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("MarkPaid: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *BillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func collectBills(rows *sql.Rows) ([]domain.Bill, error) {
	var bills []domain.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		bills = append(bills, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return bills, nil
}

func scanBill(s scanner) (*domain.Bill, error) {
	var b domain.Bill
	err := s.Scan(
		&b.ID, &b.UserID, &b.Name, &b.Description, &b.Note, &b.Amount,
		&b.DueDate, &b.PaymentDate, &b.Situation, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.DueDate = domain.DateOnly(b.DueDate)
	if b.PaymentDate != nil {
		pd := domain.DateOnly(*b.PaymentDate)
		b.PaymentDate = &pd
	}
	return &b, nil
}
