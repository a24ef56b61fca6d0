package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/contaflow/contaflow/internal/domain"
	"github.com/shopspring/decimal"
)

type billScanner interface {
	ListAll(ctx context.Context) ([]domain.Bill, error)
}

// LedgerService answers the two aggregate questions over the bill set:
// how much was paid in a window, and which bills are still pending in a
// window. Both scan the full set and filter in memory.
type LedgerService struct {
	bills billScanner
}

func NewLedgerService(bills billScanner) *LedgerService {
	return &LedgerService{bills: bills}
}

// TotalPaid sums the amounts of bills paid between start and end,
// inclusive on both ends. Accumulation is exact decimal; an empty match
// set yields decimal zero.
func (s *LedgerService) TotalPaid(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	bills, err := s.bills.ListAll(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("TotalPaid: %w", err)
	}

	start = domain.DateOnly(start)
	end = domain.DateOnly(end)

	total := decimal.Zero
	for _, b := range bills {
		if b.PaymentDate == nil || b.Situation != domain.SituationPaid {
			continue
		}
		if !domain.InRange(*b.PaymentDate, start, end) {
			continue
		}
		total = total.Add(b.Amount)
	}
	return total, nil
}

// PendingInRange returns the bills still pending whose due date falls
// between start and end, inclusive on both ends. A bill with a payment
// date is never included. Order is ascending due date, then id.
func (s *LedgerService) PendingInRange(ctx context.Context, start, end time.Time) ([]domain.Bill, error) {
	bills, err := s.bills.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("PendingInRange: %w", err)
	}

	start = domain.DateOnly(start)
	end = domain.DateOnly(end)

	var pending []domain.Bill
	for _, b := range bills {
		if b.PaymentDate != nil || b.Situation != domain.SituationPending {
			continue
		}
		if !domain.InRange(b.DueDate, start, end) {
			continue
		}
		pending = append(pending, b)
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].DueDate.Equal(pending[j].DueDate) {
			return pending[i].DueDate.Before(pending[j].DueDate)
		}
		return pending[i].ID.String() < pending[j].ID.String()
	})
	return pending, nil
}
