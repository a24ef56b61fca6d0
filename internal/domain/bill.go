package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Situation string

const (
	SituationPending Situation = "PENDING"
	SituationPaid    Situation = "PAID"
)

func (s Situation) IsValid() bool {
	return s == SituationPending || s == SituationPaid
}

// Bill is one payable bill. PaymentDate is nil until the bill is settled
// and is never cleared afterwards; Situation is PAID exactly when
// PaymentDate is set.
type Bill struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	Note        *string
	Amount      decimal.Decimal
	DueDate     time.Time
	PaymentDate *time.Time
	Situation   Situation
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DateOnly truncates t to a UTC calendar date. Due and payment dates are
// compared at day granularity, so everything that touches them goes
// through here.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return DateOnly(time.Now().UTC())
}

// InRange reports whether d falls within [start, end], inclusive on both
// ends. All three are expected to be calendar dates.
func InRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}
