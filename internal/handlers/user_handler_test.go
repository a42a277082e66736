package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"SoberTrack/internal/model"
)

func TestRegisterHandler(t *testing.T) {
	t.Run("registers and sets auth cookie", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetUserByLogin", mock.Anything, "alice").Return((*model.User)(nil), nil).Once()
		users.On("CreateUser", mock.Anything, mock.Anything).Return(&model.User{ID: 1, Login: "alice"}, nil).Once()
		h := newTestHandler(users, new(mockRecordRepo))

		req := httptest.NewRequest(http.MethodPost, "/api/user/register",
			strings.NewReader(`{"login":"alice","password":"secret"}`))
		rr := httptest.NewRecorder()
		h.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"registered"`)
		cookie := authCookie(rr.Result())
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		users.AssertExpectations(t)
	})

	t.Run("conflict when login taken", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetUserByLogin", mock.Anything, "alice").Return(&model.User{ID: 1, Login: "alice"}, nil).Once()
		h := newTestHandler(users, new(mockRecordRepo))

		req := httptest.NewRequest(http.MethodPost, "/api/user/register",
			strings.NewReader(`{"login":"alice","password":"secret"}`))
		rr := httptest.NewRecorder()
		h.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Nil(t, authCookie(rr.Result()))
	})

	t.Run("empty credentials rejected", func(t *testing.T) {
		h := newTestHandler(new(mockUserRepo), new(mockRecordRepo))

		req := httptest.NewRequest(http.MethodPost, "/api/user/register",
			strings.NewReader(`{"login":"","password":""}`))
		rr := httptest.NewRecorder()
		h.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	stored := &model.User{ID: 2, Login: "alice", Password: string(hash)}

	t.Run("ok with valid credentials", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetUserByLogin", mock.Anything, "alice").Return(stored, nil).Once()
		h := newTestHandler(users, new(mockRecordRepo))

		req := httptest.NewRequest(http.MethodPost, "/api/user/login",
			strings.NewReader(`{"login":"alice","password":"secret"}`))
		rr := httptest.NewRecorder()
		h.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, authCookie(rr.Result()))
	})

	t.Run("unauthorized on wrong password", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetUserByLogin", mock.Anything, "alice").Return(stored, nil).Once()
		h := newTestHandler(users, new(mockRecordRepo))

		req := httptest.NewRequest(http.MethodPost, "/api/user/login",
			strings.NewReader(`{"login":"alice","password":"wrong"}`))
		rr := httptest.NewRecorder()
		h.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, authCookie(rr.Result()))
	})
}

func TestStatusHandler(t *testing.T) {
	h := newTestHandler(new(mockUserRepo), new(mockRecordRepo))

	t.Run("anonymous gets 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/user/test", nil)
		rr := httptest.NewRecorder()
		h.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("authenticated gets ok", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/user/test", nil)
		addAuthCookie(t, req, 2)
		rr := httptest.NewRecorder()
		h.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"ok"`)
	})
}

func TestLogoutHandler(t *testing.T) {
	h := newTestHandler(new(mockUserRepo), new(mockRecordRepo))

	req := httptest.NewRequest(http.MethodPost, "/api/user/logout", nil)
	addAuthCookie(t, req, 2)
	rr := httptest.NewRecorder()
	h.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	cookie := authCookie(rr.Result())
	require.NotNil(t, cookie)
	assert.Equal(t, "", cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestHealthHandler(t *testing.T) {
	h := newTestHandler(new(mockUserRepo), new(mockRecordRepo))

	for _, method := range []string{http.MethodHead, http.MethodGet} {
		req := httptest.NewRequest(method, "/api/health", nil)
		rr := httptest.NewRecorder()
		h.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}
