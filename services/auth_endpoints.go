package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/BetterNetworks-web/interview-preview/models"
	"github.com/go-chi/chi/v5"
)

type AuthEndpoints struct {
	authService *AuthService
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func NewAuthEndpoints(authService *AuthService) *AuthEndpoints {
	return &AuthEndpoints{
		authService: authService,
	}
}

func (e *AuthEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", e.LoginHandler)
		r.Post("/signup", e.SignupHandler)
		r.Post("/refresh", e.RefreshHandler)
		r.Post("/logout", e.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(e.authService.Middleware)
			r.Get("/me", e.MeHandler)
		})
	})
}

func (e *AuthEndpoints) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	authResponse, err := e.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Error("Login failed", "error", err, "email", req.Email)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, authResponse.RefreshToken)

	// Return user info plus the access token for bearer-style API clients
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]interface{}{
			"id":        authResponse.User.ID,
			"email":     authResponse.User.Email,
			"full_name": authResponse.User.FullName,
		},
		"access_token": authResponse.AccessToken,
	})

	slog.Info("User logged in", "user_id", authResponse.User.ID, "email", authResponse.User.Email)
}

func (e *AuthEndpoints) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	authResponse, err := e.authService.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		slog.Error("Signup failed", "error", err, "email", req.Email)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, authResponse.RefreshToken)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user": map[string]interface{}{
			"id":        authResponse.User.ID,
			"email":     authResponse.User.Email,
			"full_name": authResponse.User.FullName,
		},
		"access_token": authResponse.AccessToken,
	})

	slog.Info("User signed up", "user_id", authResponse.User.ID, "email", authResponse.User.Email)
}

func (e *AuthEndpoints) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	refreshToken := e.authService.GetTokenFromCookie(r, "refresh_token")
	if refreshToken == "" {
		respondError(w, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	authResponse, err := e.authService.RefreshToken(r.Context(), refreshToken)
	if err != nil {
		slog.Error("Token refresh failed", "error", err)
		respondError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, "")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": authResponse.AccessToken,
	})

	slog.Info("Token refreshed", "user_id", authResponse.User.ID)
}

// LogoutHandler revokes the caller's refresh tokens when the session is
// still identifiable and clears the cookies either way, so logout always
// succeeds client-side.
func (e *AuthEndpoints) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	user := e.identifyCaller(r)
	if user != nil {
		if err := e.authService.Logout(r.Context(), user.ID); err != nil {
			slog.Error("Failed to revoke tokens on logout", "error", err, "user_id", user.ID)
		}
	}

	e.authService.ClearAuthCookies(w)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (e *AuthEndpoints) identifyCaller(r *http.Request) *models.User {
	if user, ok := UserFromContext(r.Context()); ok {
		return user
	}

	token := GetBearerToken(r)
	if token == "" {
		token = e.authService.GetTokenFromCookie(r, "access_token")
	}
	if token == "" {
		return nil
	}

	user, err := e.authService.VerifyAccessToken(r.Context(), token)
	if err != nil {
		return nil
	}
	return user
}

func (e *AuthEndpoints) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]interface{}{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
		},
	})
}
