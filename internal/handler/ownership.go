package handler

import (
	"net/http"
	"strconv"

	"github.com/contaflow/contaflow/internal/auth"
	"github.com/google/uuid"
)

// ownerFromPath resolves the {id} path segment and requires it to match
// the authenticated user. A mismatch reads the same as a missing
// resource so the endpoint does not leak which user ids exist.
func ownerFromPath(r *http.Request) (uuid.UUID, *AppError) {
	authUserID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}

	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}

	if userID != authUserID {
		return uuid.Nil, ErrResourceNotFound
	}

	return userID, nil
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	offset = 0

	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxPageLimit)
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
