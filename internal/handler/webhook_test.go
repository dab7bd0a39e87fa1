package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/mintkit/hub/internal/database"
	"github.com/mintkit/hub/internal/model"
	"github.com/mintkit/hub/internal/store"
	hubstripe "github.com/mintkit/hub/internal/stripe"
)

const testWebhookSecret = "whsec_test"

func setupWebhookHandler(t *testing.T) (*WebhookHandler, *store.SubscriptionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	profiles := store.NewProfileStore(db)
	plans := store.NewPlanStore(db)
	subs := store.NewSubscriptionStore(db)

	u, err := users.Create("owner@example.com", "hash", "Rosie")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	p, err := profiles.Create(u.ID, "Rosie's Bakery", "owner@example.com")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	plan, err := plans.GetByCode("basic")
	if err != nil || plan == nil {
		t.Fatalf("seeded basic plan missing: %v", err)
	}

	end := time.Now().UTC().Add(30 * 24 * time.Hour)
	if _, err := subs.UpsertFromStripe(p.ID, plan.ID, "sub_123", "cus_1", model.StatusActive, &end); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc := hubstripe.NewClient(hubstripe.Config{WebhookSecret: testWebhookSecret})
	return NewWebhookHandler(sc, plans, subs, logger), subs
}

// signStripePayload builds a Stripe-Signature header the verifier accepts.
func signStripePayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(h *WebhookHandler, payload, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	h.HandleStripeWebhook(rec, req)
	return rec
}

func subscriptionEvent(eventType, status string, periodEnd int64) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": %q,
		"data": {
			"object": {
				"id": "sub_123",
				"object": "subscription",
				"status": %q,
				"items": {"data": [{"current_period_end": %d}]}
			}
		}
	}`, stripe.APIVersion, eventType, status, periodEnd)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h, _ := setupWebhookHandler(t)

	payload := subscriptionEvent("customer.subscription.updated", "past_due", 0)
	rec := postWebhook(h, payload, "t=1,v1=deadbeef")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestWebhookSubscriptionUpdated(t *testing.T) {
	h, subs := setupWebhookHandler(t)

	end := time.Now().UTC().Add(45 * 24 * time.Hour).Truncate(time.Second)
	payload := subscriptionEvent("customer.subscription.updated", "past_due", end.Unix())
	rec := postWebhook(h, payload, signStripePayload([]byte(payload), testWebhookSecret, time.Now()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	sub, err := subs.GetByStripeID("sub_123")
	if err != nil || sub == nil {
		t.Fatalf("get subscription: %v", err)
	}
	if sub.Status != model.StatusPastDue {
		t.Errorf("status = %q, want %q", sub.Status, model.StatusPastDue)
	}
	if sub.CurrentPeriodEnd == nil || !sub.CurrentPeriodEnd.Equal(end) {
		t.Errorf("period end = %v, want %v", sub.CurrentPeriodEnd, end)
	}
}

func TestWebhookSubscriptionDeleted(t *testing.T) {
	h, subs := setupWebhookHandler(t)

	payload := subscriptionEvent("customer.subscription.deleted", "canceled", 0)
	rec := postWebhook(h, payload, signStripePayload([]byte(payload), testWebhookSecret, time.Now()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	sub, err := subs.GetByStripeID("sub_123")
	if err != nil || sub == nil {
		t.Fatalf("get subscription: %v", err)
	}
	if sub.Status != model.StatusCanceled {
		t.Errorf("status = %q, want %q", sub.Status, model.StatusCanceled)
	}
}

func TestWebhookUnknownEventAccepted(t *testing.T) {
	h, subs := setupWebhookHandler(t)

	payload := subscriptionEvent("customer.subscription.paused", "paused", 0)
	rec := postWebhook(h, payload, signStripePayload([]byte(payload), testWebhookSecret, time.Now()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Unhandled event types change nothing.
	sub, _ := subs.GetByStripeID("sub_123")
	if sub.Status != model.StatusActive {
		t.Errorf("status = %q, want %q", sub.Status, model.StatusActive)
	}
}
