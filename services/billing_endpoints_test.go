package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BetterNetworks-web/interview-preview/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

const testWebhookSecret = "whsec_test_secret"

// fakeSubscriptionStore records subscription writes so webhook tests can
// assert on them.
type fakeSubscriptionStore struct {
	subscription *models.Subscription
	upserted     []*models.Subscription
	updated      []string
}

func (f *fakeSubscriptionStore) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return f.subscription, nil
}

func (f *fakeSubscriptionStore) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	f.upserted = append(f.upserted, sub)
	return nil
}

func (f *fakeSubscriptionStore) UpdateSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID, plan, status string) error {
	f.updated = append(f.updated, fmt.Sprintf("%s:%s:%s", stripeSubscriptionID, plan, status))
	return nil
}

func newBillingFixture(store *fakeSubscriptionStore) *BillingEndpoints {
	stripeService := NewStripeService("sk_test_key", testWebhookSecret, "https://interviewpreview.com")
	return NewBillingEndpoints(stripeService, store)
}

// signWebhookPayload produces a Stripe-Signature header the verifier
// accepts: an HMAC-SHA256 of "{timestamp}.{payload}".
func signWebhookPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, object string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_test_1","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object,
	))
}

func postWebhook(endpoints *BillingEndpoints, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/stripe/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	endpoints.WebhookHandler(rec, req)
	return rec
}

func TestWebhookHandlerRejectsBadSignature(t *testing.T) {
	store := &fakeSubscriptionStore{}
	endpoints := newBillingFixture(store)

	payload := eventPayload("checkout.session.completed", `{"id":"cs_1","metadata":{"user_id":"user-1"}}`)

	t.Run("missing header", func(t *testing.T) {
		rec := postWebhook(endpoints, payload, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("forged signature", func(t *testing.T) {
		rec := postWebhook(endpoints, payload, signWebhookPayload(payload, "whsec_wrong_secret"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("tampered payload", func(t *testing.T) {
		signature := signWebhookPayload(payload, testWebhookSecret)
		tampered := eventPayload("checkout.session.completed", `{"id":"cs_1","metadata":{"user_id":"attacker"}}`)
		rec := postWebhook(endpoints, tampered, signature)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	// No mutation may reach the store on any rejected request.
	assert.Empty(t, store.upserted)
	assert.Empty(t, store.updated)
}

func TestWebhookHandlerCheckoutCompleted(t *testing.T) {
	store := &fakeSubscriptionStore{}
	endpoints := newBillingFixture(store)

	payload := eventPayload("checkout.session.completed",
		`{"id":"cs_1","customer":"cus_1","subscription":"sub_1","metadata":{"user_id":"user-1"}}`)
	rec := postWebhook(endpoints, payload, signWebhookPayload(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["received"])

	require.Len(t, store.upserted, 1)
	sub := store.upserted[0]
	assert.Equal(t, "user-1", sub.UserID)
	assert.Equal(t, "cus_1", sub.StripeCustomerID)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionID)
	assert.Equal(t, models.PlanPro, sub.Plan)
	assert.Equal(t, models.StatusActive, sub.Status)
}

func TestWebhookHandlerCheckoutWithoutUserMetadata(t *testing.T) {
	store := &fakeSubscriptionStore{}
	endpoints := newBillingFixture(store)

	payload := eventPayload("checkout.session.completed", `{"id":"cs_1","metadata":{}}`)
	rec := postWebhook(endpoints, payload, signWebhookPayload(payload, testWebhookSecret))

	// Acknowledged so Stripe stops retrying, but nothing is written.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.upserted)
}

func TestWebhookHandlerSubscriptionLifecycle(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		object    string
		expected  string
	}{
		{
			name:      "active update keeps pro",
			eventType: "customer.subscription.updated",
			object:    `{"id":"sub_1","status":"active"}`,
			expected:  "sub_1:pro:active",
		},
		{
			name:      "past_due update downgrades",
			eventType: "customer.subscription.updated",
			object:    `{"id":"sub_1","status":"past_due"}`,
			expected:  "sub_1:free:cancelled",
		},
		{
			name:      "deletion downgrades",
			eventType: "customer.subscription.deleted",
			object:    `{"id":"sub_1","status":"canceled"}`,
			expected:  "sub_1:free:cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSubscriptionStore{}
			endpoints := newBillingFixture(store)

			payload := eventPayload(tt.eventType, tt.object)
			rec := postWebhook(endpoints, payload, signWebhookPayload(payload, testWebhookSecret))

			require.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, store.updated, 1)
			assert.Equal(t, tt.expected, store.updated[0])
		})
	}
}

func TestWebhookHandlerIgnoresUnknownEvents(t *testing.T) {
	store := &fakeSubscriptionStore{}
	endpoints := newBillingFixture(store)

	payload := eventPayload("invoice.paid", `{"id":"in_1"}`)
	rec := postWebhook(endpoints, payload, signWebhookPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.upserted)
	assert.Empty(t, store.updated)
}

func TestPortalHandlerWithoutCustomer(t *testing.T) {
	tests := []struct {
		name         string
		subscription *models.Subscription
	}{
		{name: "no subscription row", subscription: nil},
		{name: "row without customer id", subscription: &models.Subscription{UserID: "user-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSubscriptionStore{subscription: tt.subscription}
			endpoints := newBillingFixture(store)

			req := withTestUser(httptest.NewRequest("POST", "/api/stripe/portal", nil))
			rec := httptest.NewRecorder()
			endpoints.PortalHandler(rec, req)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "No active subscription found", errorBody(t, rec))
		})
	}
}

func TestSubscriptionHandler(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		endpoints := newBillingFixture(&fakeSubscriptionStore{})
		rec := httptest.NewRecorder()
		endpoints.SubscriptionHandler(rec, httptest.NewRequest("GET", "/api/subscription", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("defaults to the free plan", func(t *testing.T) {
		endpoints := newBillingFixture(&fakeSubscriptionStore{})
		req := withTestUser(httptest.NewRequest("GET", "/api/subscription", nil))
		rec := httptest.NewRecorder()
		endpoints.SubscriptionHandler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, models.PlanFree, body["plan"])
	})

	t.Run("reports the stored plan", func(t *testing.T) {
		store := &fakeSubscriptionStore{
			subscription: &models.Subscription{Plan: models.PlanPro, Status: models.StatusActive},
		}
		endpoints := newBillingFixture(store)
		req := withTestUser(httptest.NewRequest("GET", "/api/subscription", nil))
		rec := httptest.NewRecorder()
		endpoints.SubscriptionHandler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, models.PlanPro, body["plan"])
		assert.Equal(t, models.StatusActive, body["status"])
	})
}
