package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrBillNotFound         = &AppError{http.StatusNotFound, "BILL_NOT_FOUND", "Bill not found"}
	ErrUserNotFound         = &AppError{http.StatusNotFound, "USER_NOT_FOUND", "User not found"}
	ErrInvalidPaymentAmount = &AppError{http.StatusBadRequest, "INVALID_PAYMENT_AMOUNT", "Paid amount is less than the bill amount"}
	ErrBillAlreadyPaid      = &AppError{http.StatusConflict, "BILL_ALREADY_PAID", "Bill has already been paid"}
	ErrInvalidAmount        = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrInvalidSituation     = &AppError{http.StatusBadRequest, "INVALID_SITUATION", "Situation must be PENDING or PAID"}
	ErrPaymentDateMismatch  = &AppError{http.StatusBadRequest, "PAYMENT_DATE_MISMATCH", "Situation PAID and payment date must be set together"}
	ErrInvalidDateFormat    = &AppError{http.StatusBadRequest, "INVALID_DATE_FORMAT", "Dates must use the YYYY-MM-DD format"}
	ErrEmailTaken           = &AppError{http.StatusConflict, "EMAIL_ALREADY_REGISTERED", "Email already registered"}
)
