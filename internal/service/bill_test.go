package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/domain"
	"github.com/contaflow/contaflow/internal/repository"
	"github.com/contaflow/contaflow/internal/testutil"
)

func newBillService(db *sql.DB) *BillService {
	return NewBillService(
		repository.NewBillRepository(db),
		repository.NewUserRepository(db),
		db,
	)
}

func pendingInput(name, amount, dueDate string) BillInput {
	due, _ := time.Parse(time.DateOnly, dueDate)
	return BillInput{
		Name:        name,
		Description: name + " description",
		Amount:      decimal.RequireFromString(amount),
		DueDate:     due,
	}
}

func TestBillService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newBillService(db)
	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")

	t.Run("defaults situation to pending", func(t *testing.T) {
		bill, err := svc.Create(ctx, owner.ID, pendingInput("Aluguel", "1000.00", "2024-01-10"))
		require.NoError(t, err)

		assert.Equal(t, domain.SituationPending, bill.Situation)
		assert.Nil(t, bill.PaymentDate)
		assert.NotEqual(t, uuid.Nil, bill.ID)
		assert.Equal(t, owner.ID, bill.UserID)

		stored := testutil.GetBill(t, db, bill.ID)
		assert.Equal(t, domain.SituationPending, stored.Situation)
		assert.Nil(t, stored.PaymentDate)
		assert.True(t, stored.Amount.Equal(decimal.RequireFromString("1000.00")))
	})

	t.Run("explicit situation is kept", func(t *testing.T) {
		pd := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
		input := pendingInput("Luz", "120.50", "2024-01-15")
		input.Situation = domain.SituationPaid
		input.PaymentDate = &pd

		bill, err := svc.Create(ctx, owner.ID, input)
		require.NoError(t, err)
		assert.Equal(t, domain.SituationPaid, bill.Situation)
		require.NotNil(t, bill.PaymentDate)
		assert.True(t, bill.PaymentDate.Equal(pd))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		for _, amount := range []string{"0", "-5.00"} {
			_, err := svc.Create(ctx, owner.ID, pendingInput("Agua", amount, "2024-01-20"))
			require.ErrorIs(t, err, domain.ErrInvalidAmount)
		}
	})

	t.Run("rejects unknown owner", func(t *testing.T) {
		_, err := svc.Create(ctx, uuid.New(), pendingInput("Internet", "99.90", "2024-01-25"))
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("rejects bogus situation", func(t *testing.T) {
		input := pendingInput("Gas", "80.00", "2024-01-28")
		input.Situation = domain.Situation("OVERDUE")
		_, err := svc.Create(ctx, owner.ID, input)
		require.ErrorIs(t, err, domain.ErrInvalidSituation)
	})

	t.Run("rejects paid situation without payment date", func(t *testing.T) {
		input := pendingInput("Seguro", "300.00", "2024-02-01")
		input.Situation = domain.SituationPaid

		_, err := svc.Create(ctx, owner.ID, input)
		require.ErrorIs(t, err, domain.ErrPaymentDateMismatch)
	})

	t.Run("rejects payment date without paid situation", func(t *testing.T) {
		pd := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
		input := pendingInput("IPTU", "210.00", "2024-02-05")
		input.PaymentDate = &pd

		_, err := svc.Create(ctx, owner.ID, input)
		require.ErrorIs(t, err, domain.ErrPaymentDateMismatch)
	})
}

func TestBillService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newBillService(db)
	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), owner.ID, pendingInput("Aluguel", "1000.00", "2024-01-10"))
		require.ErrorIs(t, err, domain.ErrBillNotFound)
	})

	t.Run("carries over situation when unset", func(t *testing.T) {
		paid := testutil.SeedPaidBill(t, db, owner.ID, "Condominio", "450.00", "2024-01-10", "2024-01-08")

		input := pendingInput("Condominio", "475.00", "2024-02-10")
		pd := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
		input.PaymentDate = &pd

		updated, err := svc.Update(ctx, paid.ID, owner.ID, input)
		require.NoError(t, err)

		assert.Equal(t, paid.ID, updated.ID)
		assert.Equal(t, domain.SituationPaid, updated.Situation, "unset situation must not reset the stored one")
		assert.True(t, updated.Amount.Equal(decimal.RequireFromString("475.00")))
	})

	t.Run("cannot strand a paid bill without its payment date", func(t *testing.T) {
		paid := testutil.SeedPaidBill(t, db, owner.ID, "Telefone", "89.90", "2024-01-20", "2024-01-18")

		// Situation unset carries PAID forward; omitting the payment
		// date too must fail rather than persist PAID with no date.
		_, err := svc.Update(ctx, paid.ID, owner.ID, pendingInput("Telefone", "89.90", "2024-01-20"))
		require.ErrorIs(t, err, domain.ErrPaymentDateMismatch)

		stored := testutil.GetBill(t, db, paid.ID)
		assert.Equal(t, domain.SituationPaid, stored.Situation)
		require.NotNil(t, stored.PaymentDate)
	})

	t.Run("id is stable across updates", func(t *testing.T) {
		bill := testutil.SeedTestBill(t, db, owner.ID, "Internet", "99.90", "2024-03-01")

		updated, err := svc.Update(ctx, bill.ID, owner.ID, pendingInput("Internet fibra", "119.90", "2024-03-05"))
		require.NoError(t, err)
		assert.Equal(t, bill.ID, updated.ID)

		stored := testutil.GetBill(t, db, bill.ID)
		assert.Equal(t, "Internet fibra", stored.Name)
	})

	t.Run("rejects unknown owner", func(t *testing.T) {
		bill := testutil.SeedTestBill(t, db, owner.ID, "Luz", "130.00", "2024-03-10")
		_, err := svc.Update(ctx, bill.ID, uuid.New(), pendingInput("Luz", "130.00", "2024-03-10"))
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestBillService_Pay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newBillService(db)
	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")

	t.Run("exact payment yields zero change", func(t *testing.T) {
		bill := testutil.SeedTestBill(t, db, owner.ID, "Aluguel", "1000.00", "2024-01-10")

		change, err := svc.Pay(ctx, bill.ID, decimal.RequireFromString("1000.00"))
		require.NoError(t, err)
		assert.True(t, change.IsZero(), "change: got %s, want 0", change)

		stored := testutil.GetBill(t, db, bill.ID)
		assert.Equal(t, domain.SituationPaid, stored.Situation)
		require.NotNil(t, stored.PaymentDate)
		assert.True(t, domain.DateOnly(*stored.PaymentDate).Equal(domain.Today()))
	})

	t.Run("overpayment returns the difference", func(t *testing.T) {
		bill := testutil.SeedTestBill(t, db, owner.ID, "Luz", "120.50", "2024-01-15")

		change, err := svc.Pay(ctx, bill.ID, decimal.RequireFromString("150.00"))
		require.NoError(t, err)
		assert.True(t, change.Equal(decimal.RequireFromString("29.50")),
			"change: got %s, want 29.50", change)
	})

	t.Run("insufficient payment leaves the bill untouched", func(t *testing.T) {
		bill := testutil.SeedTestBill(t, db, owner.ID, "Agua", "75.00", "2024-01-20")

		_, err := svc.Pay(ctx, bill.ID, decimal.RequireFromString("74.99"))
		require.ErrorIs(t, err, domain.ErrInvalidPaymentAmount)

		stored := testutil.GetBill(t, db, bill.ID)
		assert.Equal(t, domain.SituationPending, stored.Situation)
		assert.Nil(t, stored.PaymentDate)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Pay(ctx, uuid.New(), decimal.RequireFromString("10.00"))
		require.ErrorIs(t, err, domain.ErrBillNotFound)
	})

	t.Run("re-payment is rejected", func(t *testing.T) {
		bill := testutil.SeedTestBill(t, db, owner.ID, "Internet", "99.90", "2024-01-25")

		_, err := svc.Pay(ctx, bill.ID, decimal.RequireFromString("99.90"))
		require.NoError(t, err)

		first := testutil.GetBill(t, db, bill.ID)
		require.NotNil(t, first.PaymentDate)

		_, err = svc.Pay(ctx, bill.ID, decimal.RequireFromString("500.00"))
		require.ErrorIs(t, err, domain.ErrBillAlreadyPaid)

		second := testutil.GetBill(t, db, bill.ID)
		assert.True(t, first.PaymentDate.Equal(*second.PaymentDate),
			"payment date must not be overwritten by a rejected re-payment")
	})
}

func TestBillService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newBillService(db)
	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")

	t.Run("unknown id", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, uuid.New()), domain.ErrBillNotFound)
	})

	t.Run("removes the bill", func(t *testing.T) {
		bill := testutil.SeedTestBill(t, db, owner.ID, "Aluguel", "1000.00", "2024-01-10")
		before := testutil.CountBills(t, db)

		require.NoError(t, svc.Delete(ctx, bill.ID))
		assert.Equal(t, before-1, testutil.CountBills(t, db))

		// A second delete of the same id fails regardless of history.
		require.ErrorIs(t, svc.Delete(ctx, bill.ID), domain.ErrBillNotFound)
	})
}

func TestBillService_ListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newBillService(db)

	alice := testutil.SeedTestUser(t, db, "alice@test.com", "Alice")
	bob := testutil.SeedTestUser(t, db, "bob@test.com", "Bob")

	testutil.SeedTestBill(t, db, alice.ID, "Aluguel", "1000.00", "2024-01-10")
	testutil.SeedTestBill(t, db, alice.ID, "Luz", "120.50", "2024-01-15")
	testutil.SeedTestBill(t, db, bob.ID, "Internet", "99.90", "2024-01-20")

	t.Run("filters by owner", func(t *testing.T) {
		bills, err := svc.ListByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, bills, 2)
		for _, b := range bills {
			assert.Equal(t, alice.ID, b.UserID)
		}
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := svc.ListByUser(ctx, uuid.New())
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
