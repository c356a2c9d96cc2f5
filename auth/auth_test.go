package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, hasher.Compare(hash, "hunter22"))
	assert.Error(t, hasher.Compare(hash, "hunter23"))

	again, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func requestWithCookies(cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestSessionManager_RoundTrip(t *testing.T) {
	sessions := NewSessionManager("0123456789abcdef-test-secret", false)
	accountID := uuid.New()

	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Issue(rec, accountID))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	got, err := sessions.AccountID(requestWithCookies(cookies))
	require.NoError(t, err)
	assert.Equal(t, accountID, got)
}

func TestSessionManager_Rejections(t *testing.T) {
	sessions := NewSessionManager("0123456789abcdef-test-secret", true)
	accountID := uuid.New()

	t.Run("missing cookie", func(t *testing.T) {
		_, err := sessions.AccountID(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := NewSessionManager("another-secret-of-enough-length", true)
		token, err := other.GenerateToken(accountID)
		require.NoError(t, err)

		_, err = sessions.AccountID(requestWithCookies([]*http.Cookie{{Name: CookieName, Value: token}}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewSessionManager("0123456789abcdef-test-secret", true)
		past.now = func() time.Time { return time.Now().Add(-2 * TokenExpiration) }
		token, err := past.GenerateToken(accountID)
		require.NoError(t, err)

		_, err = sessions.AccountID(requestWithCookies([]*http.Cookie{{Name: CookieName, Value: token}}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := sessions.AccountID(requestWithCookies([]*http.Cookie{{Name: CookieName, Value: "not-a-jwt"}}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSessionManager_Clear(t *testing.T) {
	sessions := NewSessionManager("0123456789abcdef-test-secret", true)

	rec := httptest.NewRecorder()
	sessions.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
	assert.True(t, cookies[0].Secure)
}
