package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// EmailSender is satisfied by ResendService; tests swap in a recorder.
type EmailSender interface {
	SendEmail(ctx context.Context, email ResendEmailRequest) error
}

// ContactEndpoints forwards contact-form submissions to the team inbox.
type ContactEndpoints struct {
	sender EmailSender
	from   string
	to     string
}

func NewContactEndpoints(sender EmailSender, from, to string) *ContactEndpoints {
	return &ContactEndpoints{
		sender: sender,
		from:   from,
		to:     to,
	}
}

func (e *ContactEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/contact", e.ContactHandler)
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (e *ContactEndpoints) ContactHandler(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	email := ResendEmailRequest{
		From:    e.from,
		To:      []string{e.to},
		ReplyTo: req.Email,
		Subject: "Contact form: " + req.Name,
		Text:    req.Message,
	}

	if err := e.sender.SendEmail(r.Context(), email); err != nil {
		slog.Error("Contact email failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
