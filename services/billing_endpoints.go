package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/BetterNetworks-web/interview-preview/models"
	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v82"
)

// SubscriptionStore is the slice of the repository the billing endpoints
// need. Webhook tests substitute a fake to assert no writes happen on a
// bad signature.
type SubscriptionStore interface {
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error
	UpdateSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID, plan, status string) error
}

// BillingEndpoints handles checkout, the billing portal, plan lookups
// and the Stripe webhook.
type BillingEndpoints struct {
	stripeService *StripeService
	repo          SubscriptionStore
}

func NewBillingEndpoints(stripeService *StripeService, repo SubscriptionStore) *BillingEndpoints {
	return &BillingEndpoints{
		stripeService: stripeService,
		repo:          repo,
	}
}

// RegisterRoutes registers the session-protected billing routes. The
// caller applies the auth middleware to the router group.
func (e *BillingEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/stripe/checkout", e.CheckoutHandler)
	r.Post("/stripe/portal", e.PortalHandler)
	r.Get("/subscription", e.SubscriptionHandler)
}

// RegisterWebhookRoutes registers the public webhook route; Stripe
// authenticates with a signature header instead of a session.
func (e *BillingEndpoints) RegisterWebhookRoutes(r chi.Router) {
	r.Post("/stripe/webhook", e.WebhookHandler)
}

// CheckoutHandler creates (or reuses) the Stripe customer for the caller
// and opens a subscription checkout session for the pro plan.
func (e *BillingEndpoints) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := e.repo.GetSubscription(r.Context(), user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up subscription")
		return
	}

	customerID, err := e.stripeService.EnsureCustomer(user, sub)
	if err != nil {
		slog.Error("Checkout customer setup failed", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to start checkout")
		return
	}

	url, err := e.stripeService.CreateCheckoutSession(customerID, user.ID)
	if err != nil {
		slog.Error("Checkout session failed", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to start checkout")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// PortalHandler opens the Stripe billing portal for callers that already
// have a customer on file.
func (e *BillingEndpoints) PortalHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := e.repo.GetSubscription(r.Context(), user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up subscription")
		return
	}
	if sub == nil || sub.StripeCustomerID == "" {
		respondError(w, http.StatusNotFound, "No active subscription found")
		return
	}

	url, err := e.stripeService.CreatePortalSession(sub.StripeCustomerID)
	if err != nil {
		slog.Error("Portal session failed", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to open billing portal")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// SubscriptionHandler reports the caller's plan and status for UI gating.
// Users with no subscription row are on the free plan.
func (e *BillingEndpoints) SubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := e.repo.GetSubscription(r.Context(), user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to look up subscription")
		return
	}

	if sub == nil {
		respondJSON(w, http.StatusOK, map[string]string{
			"plan":   models.PlanFree,
			"status": models.StatusActive,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"plan":   sub.Plan,
		"status": sub.Status,
	})
}

// WebhookHandler verifies the Stripe signature and maps subscription
// lifecycle events onto the local subscription table. Events we do not
// subscribe to are acknowledged without action.
func (e *BillingEndpoints) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := e.stripeService.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		slog.Warn("Webhook signature verification failed", "error", err)
		respondError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		err = e.handleCheckoutCompleted(r.Context(), event)
	case "customer.subscription.updated":
		err = e.handleSubscriptionUpdated(r.Context(), event)
	case "customer.subscription.deleted":
		err = e.handleSubscriptionDeleted(r.Context(), event)
	default:
		slog.Debug("Ignoring webhook event", "type", event.Type)
	}

	if err != nil {
		slog.Error("Webhook handling failed", "type", event.Type, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to process event")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (e *BillingEndpoints) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return err
	}

	userID := session.Metadata["user_id"]
	if userID == "" {
		slog.Warn("Checkout completed without user_id metadata", "session_id", session.ID)
		return nil
	}

	sub := &models.Subscription{
		UserID: userID,
		Plan:   models.PlanPro,
		Status: models.StatusActive,
	}
	if session.Customer != nil {
		sub.StripeCustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		sub.StripeSubscriptionID = session.Subscription.ID
	}

	if err := e.repo.UpsertSubscription(ctx, sub); err != nil {
		return err
	}

	slog.Info("Subscription activated", "user_id", userID)
	return nil
}

func (e *BillingEndpoints) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}

	plan, status := models.PlanFree, models.StatusCancelled
	if sub.Status == stripe.SubscriptionStatusActive {
		plan, status = models.PlanPro, models.StatusActive
	}

	return e.repo.UpdateSubscriptionByStripeID(ctx, sub.ID, plan, status)
}

func (e *BillingEndpoints) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}

	return e.repo.UpdateSubscriptionByStripeID(ctx, sub.ID, models.PlanFree, models.StatusCancelled)
}
