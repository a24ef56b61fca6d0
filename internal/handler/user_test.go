package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/domain"
)

type mockUserService struct {
	user       *domain.User
	users      []domain.User
	err        error
	lastLimit  int
	lastOffset int
}

func (m *mockUserService) Register(_ context.Context, _, _, _ string) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockUserService) Update(_ context.Context, _ uuid.UUID, _, _, _ string) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockUserService) Delete(_ context.Context, _ uuid.UUID) error {
	return m.err
}

func (m *mockUserService) Get(_ context.Context, _ uuid.UUID) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockUserService) List(_ context.Context, limit, offset int) ([]domain.User, int, error) {
	m.lastLimit = limit
	m.lastOffset = offset
	return m.users, len(m.users), m.err
}

func sampleUser(email, name string) domain.User {
	return domain.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Status:    domain.UserStatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

func TestUserHandler_List(t *testing.T) {
	t.Run("returns a page of users", func(t *testing.T) {
		mock := &mockUserService{users: []domain.User{
			sampleUser("alice@test.com", "Alice"),
			sampleUser("bob@test.com", "Bob"),
		}}
		h := NewUserHandler(mock)

		req := authedRequest(http.MethodGet, "/api/v1/users?limit=2&offset=4", "", uuid.New())
		rec := httptest.NewRecorder()
		h.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, mock.lastLimit)
		assert.Equal(t, 4, mock.lastOffset)

		resp := decodeResponse(t, rec)
		require.True(t, resp.Success)

		page := resp.Data.(map[string]any)
		assert.Equal(t, float64(2), page["total"])
		assert.Equal(t, float64(2), page["limit"])
		assert.Equal(t, float64(4), page["offset"])

		users := page["users"].([]any)
		require.Len(t, users, 2)
		first := users[0].(map[string]any)
		assert.Equal(t, "alice@test.com", first["email"])
		assert.NotContains(t, first, "password_hash")
	})

	t.Run("caps the page size", func(t *testing.T) {
		mock := &mockUserService{}
		h := NewUserHandler(mock)

		req := authedRequest(http.MethodGet, "/api/v1/users?limit=500", "", uuid.New())
		h.List(httptest.NewRecorder(), req)

		assert.Equal(t, maxPageLimit, mock.lastLimit)
	})

	t.Run("empty page", func(t *testing.T) {
		h := NewUserHandler(&mockUserService{})

		rec := httptest.NewRecorder()
		h.List(rec, authedRequest(http.MethodGet, "/api/v1/users", "", uuid.New()))

		require.Equal(t, http.StatusOK, rec.Code)
		page := decodeResponse(t, rec).Data.(map[string]any)
		assert.Equal(t, float64(0), page["total"])
		require.Len(t, page["users"].([]any), 0)
	})
}
