package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"SoberTrack/internal/config"
	"SoberTrack/internal/middleware"
	"SoberTrack/internal/model"
	"SoberTrack/internal/repo"
	"SoberTrack/internal/service"
)

const testSecret = "test-secret"

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRecordRepo struct{ mock.Mock }

func (m *mockRecordRepo) UpsertJournalEntry(ctx context.Context, e *model.JournalEntry) (string, error) {
	args := m.Called(ctx, e)
	return args.String(0), args.Error(1)
}

func (m *mockRecordRepo) UpsertStepAnswer(ctx context.Context, a *model.StepAnswer) (string, error) {
	args := m.Called(ctx, a)
	return args.String(0), args.Error(1)
}

func (m *mockRecordRepo) UpsertCheckIn(ctx context.Context, c *model.CheckIn) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *mockRecordRepo) DeleteJournalEntry(ctx context.Context, userID int64, clientID string) (bool, error) {
	args := m.Called(ctx, userID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordRepo) DeleteStepAnswer(ctx context.Context, userID int64, clientID string) (bool, error) {
	args := m.Called(ctx, userID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordRepo) DeleteCheckIn(ctx context.Context, userID int64, clientID string) (bool, error) {
	args := m.Called(ctx, userID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordRepo) ListJournalEntries(ctx context.Context, userID int64) ([]model.JournalEntry, error) {
	args := m.Called(ctx, userID)
	if l, ok := args.Get(0).([]model.JournalEntry); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	_ repo.UserRepository   = (*mockUserRepo)(nil)
	_ repo.RecordRepository = (*mockRecordRepo)(nil)
)

// newTestHandler собирает полный роутер поверх моков репозиториев.
func newTestHandler(userRepo repo.UserRepository, recordRepo repo.RecordRepository) *Handler {
	log := zap.NewNop().Sugar()
	cfg := &config.Config{AuthSecret: testSecret}
	return NewHandler(
		service.NewUserService(userRepo),
		service.NewRecordService(recordRepo, log),
		log,
		cfg,
	)
}

// addAuthCookie подписывает auth_token для userID и вешает его на запрос.
func addAuthCookie(t *testing.T, req *http.Request, userID int64) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, middleware.SetLoginCookie(rr, userID, testSecret))
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	req.AddCookie(cookies[0])
}

func authCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" {
			return c
		}
	}
	return nil
}
