package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/mintkit/hub/internal/access"
	"github.com/mintkit/hub/internal/model"
	"github.com/mintkit/hub/internal/store"
	hubstripe "github.com/mintkit/hub/internal/stripe"
)

type WebhookHandler struct {
	stripeClient      *hubstripe.Client
	planStore         *store.PlanStore
	subscriptionStore *store.SubscriptionStore
	logger            *slog.Logger
}

func NewWebhookHandler(
	sc *hubstripe.Client,
	plans *store.PlanStore,
	subs *store.SubscriptionStore,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		stripeClient:      sc,
		planStore:         plans,
		subscriptionStore: subs,
		logger:            logger,
	}
}

// HandleStripeWebhook verifies and dispatches Stripe events. Always
// answers 200 for verified events, even when handling fails, so Stripe
// does not retry events we cannot use.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	event, err := h.stripeClient.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(event)
	case "invoice.paid":
		h.handleInvoicePaid(event)
	case "invoice.payment_failed":
		h.handleInvoicePaymentFailed(event)
	case "customer.subscription.updated":
		h.handleSubscriptionUpdated(event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(event)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.logger.Error("unmarshal checkout session", "error", err)
		return
	}

	profileRef := sess.Metadata["profile_id"]
	if profileRef == "" {
		profileRef = sess.ClientReferenceID
	}
	profileID, err := strconv.ParseInt(profileRef, 10, 64)
	if err != nil || profileID == 0 {
		h.logger.Warn("checkout session has no profile reference", "session", sess.ID)
		return
	}

	plan, err := h.planStore.GetByCode(sess.Metadata["plan_code"])
	if err != nil || plan == nil {
		h.logger.Error("plan for checkout session missing", "code", sess.Metadata["plan_code"], "error", err)
		return
	}

	if sess.Subscription == nil {
		h.logger.Warn("checkout session without subscription", "session", sess.ID)
		return
	}

	// The event payload carries only the subscription ID. Fetch the full
	// object for status and period end.
	stripeSub, err := h.stripeClient.GetSubscription(sess.Subscription.ID)
	if err != nil {
		h.logger.Error("get subscription for checkout event", "error", err)
		return
	}

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}

	status := access.MapStripeStatus(string(stripeSub.Status))
	periodEnd := hubstripe.PeriodEnd(stripeSub)

	if _, err := h.subscriptionStore.UpsertFromStripe(profileID, plan.ID, stripeSub.ID, customerID, status, periodEnd); err != nil {
		h.logger.Error("sync subscription from checkout event", "profile_id", profileID, "error", err)
		return
	}

	if err := h.subscriptionStore.CancelLocalTrials(profileID); err != nil {
		h.logger.Error("cancel local trials", "profile_id", profileID, "error", err)
	}

	h.logger.Info("webhook: checkout completed", "profile_id", profileID, "plan", plan.Code)
}

// subscriptionIDFromInvoice extracts the subscription ID from an invoice's
// parent.
func subscriptionIDFromInvoice(invoice stripe.Invoice) string {
	if invoice.Parent != nil &&
		invoice.Parent.SubscriptionDetails != nil &&
		invoice.Parent.SubscriptionDetails.Subscription != nil {
		return invoice.Parent.SubscriptionDetails.Subscription.ID
	}
	return ""
}

func (h *WebhookHandler) handleInvoicePaid(event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("unmarshal invoice", "error", err)
		return
	}

	subID := subscriptionIDFromInvoice(invoice)
	if subID == "" {
		return
	}

	sub, err := h.subscriptionStore.GetByStripeID(subID)
	if err != nil || sub == nil {
		return
	}

	if err := h.subscriptionStore.UpdateStatus(sub.ID, model.StatusActive); err != nil {
		h.logger.Error("update subscription status", "subscription_id", sub.ID, "error", err)
	}
	if invoice.PeriodEnd > 0 {
		if err := h.subscriptionStore.UpdatePeriodEnd(sub.ID, time.Unix(invoice.PeriodEnd, 0).UTC()); err != nil {
			h.logger.Error("update subscription period end", "subscription_id", sub.ID, "error", err)
		}
	}
}

func (h *WebhookHandler) handleInvoicePaymentFailed(event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("unmarshal invoice", "error", err)
		return
	}

	subID := subscriptionIDFromInvoice(invoice)
	if subID == "" {
		return
	}

	sub, err := h.subscriptionStore.GetByStripeID(subID)
	if err != nil || sub == nil {
		return
	}

	if err := h.subscriptionStore.UpdateStatus(sub.ID, model.StatusPastDue); err != nil {
		h.logger.Error("update subscription status to past_due", "subscription_id", sub.ID, "error", err)
	}
}

func (h *WebhookHandler) handleSubscriptionUpdated(event stripe.Event) {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		h.logger.Error("unmarshal subscription", "error", err)
		return
	}

	sub, err := h.subscriptionStore.GetByStripeID(stripeSub.ID)
	if err != nil || sub == nil {
		return
	}

	status := access.MapStripeStatus(string(stripeSub.Status))
	if err := h.subscriptionStore.UpdateStatus(sub.ID, status); err != nil {
		h.logger.Error("update subscription status", "subscription_id", sub.ID, "error", err)
	}

	if periodEnd := hubstripe.PeriodEnd(&stripeSub); periodEnd != nil {
		if err := h.subscriptionStore.UpdatePeriodEnd(sub.ID, *periodEnd); err != nil {
			h.logger.Error("update subscription period end", "subscription_id", sub.ID, "error", err)
		}
	}
}

func (h *WebhookHandler) handleSubscriptionDeleted(event stripe.Event) {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		h.logger.Error("unmarshal subscription", "error", err)
		return
	}

	sub, err := h.subscriptionStore.GetByStripeID(stripeSub.ID)
	if err != nil || sub == nil {
		return
	}

	if err := h.subscriptionStore.UpdateStatus(sub.ID, model.StatusCanceled); err != nil {
		h.logger.Error("update subscription status to canceled", "subscription_id", sub.ID, "error", err)
	}
}
