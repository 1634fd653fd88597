package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const resendEmailsURL = "https://api.resend.com/emails"

type ResendService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func NewResendService(apiKey string) *ResendService {
	return &ResendService{
		apiKey:  apiKey,
		baseURL: resendEmailsURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *ResendService) SendEmail(ctx context.Context, email ResendEmailRequest) error {
	jsonData, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API error: %d - %s", resp.StatusCode, string(body))
	}

	slog.Info("Contact email sent", "subject", email.Subject)
	return nil
}
