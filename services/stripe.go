package services

import (
	"fmt"
	"log/slog"

	"github.com/BetterNetworks-web/interview-preview/models"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	proPlanName        = "InterviewPreview Pro"
	proPlanDescription = "Unlimited interviews, CV-personalised questions, full history"
	proPlanUnitAmount  = 999 // $9.99/mo in cents
)

// StripeService wraps the payments provider: customer creation, checkout
// and billing-portal sessions, and webhook signature verification.
type StripeService struct {
	api           *client.API
	webhookSecret string
	appBaseURL    string
}

func NewStripeService(secretKey, webhookSecret, appBaseURL string) *StripeService {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeService{
		api:           api,
		webhookSecret: webhookSecret,
		appBaseURL:    appBaseURL,
	}
}

// EnsureCustomer returns the user's Stripe customer id, creating the
// customer when no subscription row has one on file yet.
func (s *StripeService) EnsureCustomer(user *models.User, sub *models.Subscription) (string, error) {
	if sub != nil && sub.StripeCustomerID != "" {
		return sub.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
	}
	params.AddMetadata("user_id", user.ID)

	customer, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	slog.Info("Stripe customer created", "user_id", user.ID, "customer_id", customer.ID)
	return customer.ID, nil
}

// CreateCheckoutSession opens a subscription checkout for the pro plan and
// returns the hosted page URL.
func (s *StripeService) CreateCheckoutSession(customerID, userID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(proPlanName),
						Description: stripe.String(proPlanDescription),
					},
					UnitAmount: stripe.Int64(proPlanUnitAmount),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.appBaseURL + "/dashboard?upgraded=true"),
		CancelURL:  stripe.String(s.appBaseURL + "/pricing"),
	}
	params.AddMetadata("user_id", userID)

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	slog.Info("Checkout session created", "user_id", userID, "customer_id", customerID)
	return session.URL, nil
}

// CreatePortalSession opens the billing portal for an existing customer.
func (s *StripeService) CreatePortalSession(customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.appBaseURL + "/dashboard"),
	}

	session, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}

	slog.Info("Billing portal session created", "customer_id", customerID)
	return session.URL, nil
}

// VerifyWebhook checks the Stripe signature header against the configured
// webhook secret and returns the decoded event.
func (s *StripeService) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, s.webhookSecret)
}
