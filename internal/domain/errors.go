package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrBillNotFound         = errors.New("bill not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidPaymentAmount = errors.New("paid amount is less than the bill amount")
	ErrBillAlreadyPaid      = errors.New("bill already paid")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidSituation     = errors.New("invalid situation")
	ErrPaymentDateMismatch  = errors.New("situation PAID and payment date must be set together")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidRequest       = errors.New("invalid request")
)
