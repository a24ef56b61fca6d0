package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/contaflow/contaflow/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func SeedTestUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Status, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

// SeedTestBill inserts a pending bill owed by userID, due on dueDate
// (YYYY-MM-DD), with the given decimal amount string.
func SeedTestBill(t *testing.T, db *sql.DB, userID uuid.UUID, name, amount, dueDate string) *domain.Bill {
	t.Helper()

	due, err := time.Parse(time.DateOnly, dueDate)
	if err != nil {
		t.Fatalf("parse due date %q: %v", dueDate, err)
	}

	now := time.Now().UTC()
	b := &domain.Bill{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: name + " description",
		Amount:      decimal.RequireFromString(amount),
		DueDate:     due,
		Situation:   domain.SituationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = db.Exec(
		`INSERT INTO bills (id, user_id, name, description, note, amount,
			due_date, payment_date, situation, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		b.ID, b.UserID, b.Name, b.Description, b.Note, b.Amount,
		b.DueDate, b.PaymentDate, b.Situation, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed test bill %s: %v", name, err)
	}
	return b
}

// SeedPaidBill inserts a bill already settled on paymentDate (YYYY-MM-DD).
func SeedPaidBill(t *testing.T, db *sql.DB, userID uuid.UUID, name, amount, dueDate, paymentDate string) *domain.Bill {
	t.Helper()

	b := SeedTestBill(t, db, userID, name, amount, dueDate)

	paid, err := time.Parse(time.DateOnly, paymentDate)
	if err != nil {
		t.Fatalf("parse payment date %q: %v", paymentDate, err)
	}

	_, err = db.Exec(
		`UPDATE bills SET payment_date = $1, situation = $2 WHERE id = $3`,
		paid, domain.SituationPaid, b.ID,
	)
	if err != nil {
		t.Fatalf("mark bill %s paid: %v", name, err)
	}
	b.PaymentDate = &paid
	b.Situation = domain.SituationPaid
	return b
}

func GetBill(t *testing.T, db *sql.DB, id uuid.UUID) *domain.Bill {
	t.Helper()

	var b domain.Bill
	err := db.QueryRow(
		`SELECT id, user_id, name, description, note, amount,
			due_date, payment_date, situation, created_at, updated_at
		 FROM bills WHERE id = $1`, id,
	).Scan(
		&b.ID, &b.UserID, &b.Name, &b.Description, &b.Note, &b.Amount,
		&b.DueDate, &b.PaymentDate, &b.Situation, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("get bill %s: %v", id, err)
	}
	return &b
}

func CountBills(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM bills`).Scan(&count); err != nil {
		t.Fatalf("count bills: %v", err)
	}
	return count
}
