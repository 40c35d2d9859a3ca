package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("secret124", hash))
	assert.False(t, CheckPassword("secret123", "not-a-hash"))
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", 7*24*time.Hour, time.Hour)
	id := Identity{UserID: "u-1", Email: "sam@example.com", Username: "sam"}

	token, err := svc.IssueSessionToken(id)
	require.NoError(t, err)

	got, err := svc.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestSessionTokenRejections(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewTokenService("test-secret", 7*24*time.Hour, time.Hour)
	svc.now = func() time.Time { return issued }

	valid, err := svc.IssueSessionToken(Identity{UserID: "u-1"})
	require.NoError(t, err)

	other := NewTokenService("other-secret", time.Hour, time.Hour)
	forged, err := other.IssueSessionToken(Identity{UserID: "u-1"})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": "u-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		at      time.Time
		wantErr error
	}{
		{name: "missing", token: "", at: issued, wantErr: ErrTokenMissing},
		{name: "garbage", token: "abc.def.ghi", at: issued, wantErr: ErrTokenInvalid},
		{name: "wrong secret", token: forged, at: issued, wantErr: ErrTokenInvalid},
		{name: "alg none", token: none, at: issued, wantErr: ErrTokenInvalid},
		{name: "expired", token: valid, at: issued.Add(8 * 24 * time.Hour), wantErr: ErrTokenInvalid},
		{name: "still valid on day six", token: valid, at: issued.Add(6 * 24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			svc.now = func() time.Time { return at }
			_, err := svc.VerifySessionToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIssueResetToken(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	svc := NewTokenService("s", time.Hour, time.Hour)
	svc.now = func() time.Time { return now }

	plain, hash, expires, err := svc.IssueResetToken()
	require.NoError(t, err)
	assert.Len(t, plain, 64)
	assert.Equal(t, HashResetToken(plain), hash)
	assert.NotEqual(t, plain, hash)
	assert.Equal(t, now.Add(time.Hour), expires)

	again, _, _, err := svc.IssueResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, again)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limits are per client")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"), "bucket refills after the window")

	now = now.Add(5 * time.Minute)
	rl.sweep()
	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send().Code)
	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.True(t, strings.Contains(rec.Body.String(), "Too many requests"))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.168.1.10:4242", want: "192.168.1.10"},
		{name: "forwarded header ignored", remoteAddr: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, want: "10.0.0.1"},
		{name: "real ip header ignored", remoteAddr: "10.0.0.1:1", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, want: "10.0.0.1"},
		{name: "no port", remoteAddr: "192.168.1.10", want: "192.168.1.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
