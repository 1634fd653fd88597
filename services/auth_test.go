package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BetterNetworks-web/interview-preview/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "no header", header: "", expected: ""},
		{name: "bearer token", header: "Bearer abc123", expected: "abc123"},
		{name: "bearer with extra whitespace", header: "Bearer  abc123 ", expected: "abc123"},
		{name: "wrong scheme", header: "Basic abc123", expected: ""},
		{name: "bare token without scheme", header: "abc123", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.expected, GetBearerToken(req))
		})
	}
}

func TestHashTokenIsDeterministicAndOpaque(t *testing.T) {
	service := NewAuthService(nil, "test-secret")

	h1 := service.hashToken("refresh-token-value")
	h2 := service.hashToken("refresh-token-value")
	h3 := service.hashToken("different-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.NotContains(t, h1, "refresh-token-value")
	assert.Len(t, h1, 64) // hex-encoded SHA256
}

func TestGenerateAccessTokenClaims(t *testing.T) {
	service := NewAuthService(nil, "test-secret")
	user := &models.User{ID: "user-1", Email: "demo@example.com"}

	token, err := service.generateAccessToken(user)
	require.NoError(t, err)

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "demo@example.com", claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestGenerateAccessTokenRejectsWrongSecret(t *testing.T) {
	service := NewAuthService(nil, "test-secret")
	token, err := service.generateAccessToken(&models.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(token, &SessionClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}

func TestSetAndClearAuthCookies(t *testing.T) {
	service := NewAuthService(nil, "test-secret")

	rec := httptest.NewRecorder()
	service.SetAuthCookies(rec, "access-value", "refresh-value")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	access := byName["access_token"]
	require.NotNil(t, access)
	assert.Equal(t, "access-value", access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)

	refresh := byName["refresh_token"]
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-value", refresh.Value)
	assert.Greater(t, refresh.MaxAge, access.MaxAge)

	rec = httptest.NewRecorder()
	service.ClearAuthCookies(rec)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
}

func TestUserFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/auth/me", nil)

	_, ok := UserFromContext(req.Context())
	assert.False(t, ok)

	user := &models.User{ID: "user-1"}
	got, ok := UserFromContext(withTestUser(req).Context())
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)
}
