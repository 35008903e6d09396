package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-board/internal/session"
)

var secret = []byte("web-test-secret")

type failure struct {
	status int
	msg    string
}

func recordFailure(got *failure) ErrorFunc {
	return func(w http.ResponseWriter, r *http.Request, status int, msg string) {
		*got = failure{status: status, msg: msg}
		w.WriteHeader(status)
	}
}

func TestAuth(t *testing.T) {
	var got failure
	var subject string
	h := Auth(secret, recordFailure(&got))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		require.True(t, ok)
		subject = s.Subject
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, failure{http.StatusUnauthorized, "用户未登录"}, got)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, failure{http.StatusUnauthorized, "无效的令牌"}, got)

	token, err := session.Issue("manager-1", session.RoleManager, secret, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "manager-1", subject)
}

func TestRecoverer(t *testing.T) {
	var got failure
	h := Logger(Recoverer(recordFailure(&got))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, failure{http.StatusInternalServerError, "服务器内部错误"}, got)
}

func TestMessage(t *testing.T) {
	validate, trans, err := NewValidator()
	require.NoError(t, err)

	var req struct {
		Role string `validate:"required"`
	}
	assert.Equal(t, "Role is a required field", Message(validate.Struct(req), trans))
	assert.Equal(t, "bad json", Message(errors.New("bad json"), trans))
}
