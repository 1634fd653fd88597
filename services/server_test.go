package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BetterNetworks-web/interview-preview/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty config",
			input:    "",
			expected: nil,
		},
		{
			name:     "single origin",
			input:    "http://localhost:5173",
			expected: []string{"http://localhost:5173"},
		},
		{
			name:     "multiple origins",
			input:    "http://localhost:5173,https://interviewpreview.com",
			expected: []string{"http://localhost:5173", "https://interviewpreview.com"},
		},
		{
			name:     "whitespace around entries",
			input:    " http://localhost:5173 , https://interviewpreview.com ",
			expected: []string{"http://localhost:5173", "https://interviewpreview.com"},
		},
		{
			name:     "trailing comma",
			input:    "http://localhost:5173,",
			expected: []string{"http://localhost:5173"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitOrigins(tt.input))
		})
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, http.StatusTeapot, "nope")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
}

func TestHealthHandlerWithoutDatabase(t *testing.T) {
	server := NewServer(&Config{})

	rec := httptest.NewRecorder()
	server.healthHandler(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"not configured"}`, rec.Body.String())
}

func TestSetupRoutesRegistersPublicEndpoints(t *testing.T) {
	config := &Config{
		Email: EmailConfig{
			ResendAPIKey: "re_test_key",
			ContactFrom:  "noreply@interviewpreview.com",
			ContactTo:    "team@interviewpreview.com",
		},
	}
	server := NewServer(config)
	require.NoError(t, server.InitializeServices())

	router := server.SetupRoutes()

	t.Run("health responds", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("contact route is wired", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/contact", nil)
		router.ServeHTTP(rec, req)
		// Bad body, but the route exists and answers with JSON.
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown route is a 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSetupRoutesInterviewIsPublic(t *testing.T) {
	config := &Config{
		AI:  AIConfig{GeminiAPIKey: "test-key"},
		JWT: JWTConfig{Secret: "test-secret"},
	}
	server := NewServer(config)
	server.SetDatabase(repository.NewGORMRepository(nil), nil)
	require.NoError(t, server.InitializeServices())

	router := server.SetupRoutes()

	t.Run("no session needed to reach the handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/interview", strings.NewReader(`{"action":"bogus"}`))
		router.ServeHTTP(rec, req)

		// The wizard runs pre-login: validation answers, not the auth gate.
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid action"}`, rec.Body.String())
	})

	t.Run("saving still requires a session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/scorecard", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
