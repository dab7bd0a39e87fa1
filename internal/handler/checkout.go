package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mintkit/hub/internal/access"
	"github.com/mintkit/hub/internal/auth"
	"github.com/mintkit/hub/internal/email"
	"github.com/mintkit/hub/internal/store"
	hubstripe "github.com/mintkit/hub/internal/stripe"
)

type CheckoutHandler struct {
	stripeClient      *hubstripe.Client
	profileStore      *store.ProfileStore
	planStore         *store.PlanStore
	subscriptionStore *store.SubscriptionStore
	emailClient       *email.Client
	baseURL           string
	logger            *slog.Logger
}

func NewCheckoutHandler(
	sc *hubstripe.Client,
	ps *store.ProfileStore,
	plans *store.PlanStore,
	subs *store.SubscriptionStore,
	ec *email.Client,
	baseURL string,
	logger *slog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		stripeClient:      sc,
		profileStore:      ps,
		planStore:         plans,
		subscriptionStore: subs,
		emailClient:       ec,
		baseURL:           baseURL,
		logger:            logger,
	}
}

// Start creates a Stripe Checkout session for the plan in the path and
// redirects to the hosted payment page. Refuses when an active paid
// subscription already exists.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileStore.GetByID(auth.ProfileID(r.Context()))
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	existing, err := h.subscriptionStore.GetActivePaidByProfileID(profile.ID)
	if err != nil {
		h.logger.Error("check existing subscription", "profile_id", profile.ID, "error", err)
	}
	if existing != nil {
		// Manage the existing subscription instead of paying twice.
		http.Redirect(w, r, "/billing-portal", http.StatusSeeOther)
		return
	}

	planCode := r.PathValue("plan")
	plan, err := h.planStore.GetByCode(planCode)
	if err != nil {
		h.logger.Error("get plan", "code", planCode, "error", err)
	}
	if plan == nil || !plan.IsActive || plan.Code == "trial" {
		http.NotFound(w, r)
		return
	}

	priceID := h.stripeClient.PriceIDForPlan(plan.Code, plan.StripePriceID)
	if priceID == "" {
		h.logger.Error("no stripe price configured", "plan", plan.Code)
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	url, err := h.stripeClient.CreateCheckoutSession(profile.ContactEmail, priceID, profile.ID, plan.Code)
	if err != nil {
		h.logger.Error("create checkout session", "profile_id", profile.ID, "error", err)
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Success is where Stripe sends the browser after payment. The webhook is
// the source of truth; syncing here as well fixes the dashboard
// immediately without waiting for event delivery.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileStore.GetByID(auth.ProfileID(r.Context()))
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	sess, err := h.stripeClient.GetCheckoutSession(sessionID)
	if err != nil {
		h.logger.Error("get checkout session", "error", err)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	// Ownership check: the session must have been created for this profile.
	sessionProfileID := sess.Metadata["profile_id"]
	if sessionProfileID == "" {
		sessionProfileID = sess.ClientReferenceID
	}
	if sessionProfileID != strconv.FormatInt(profile.ID, 10) {
		h.logger.Warn("checkout session profile mismatch", "profile_id", profile.ID, "session_profile", sessionProfileID)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	planCode := sess.Metadata["plan_code"]
	plan, err := h.planStore.GetByCode(planCode)
	if err != nil || plan == nil {
		h.logger.Error("plan for checkout session missing", "code", planCode, "error", err)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	if sess.Subscription == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	stripeSub, err := h.stripeClient.GetSubscription(sess.Subscription.ID)
	if err != nil {
		h.logger.Error("get stripe subscription", "error", err)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}

	status := access.MapStripeStatus(string(stripeSub.Status))
	periodEnd := hubstripe.PeriodEnd(stripeSub)

	if _, err := h.subscriptionStore.UpsertFromStripe(profile.ID, plan.ID, stripeSub.ID, customerID, status, periodEnd); err != nil {
		h.logger.Error("sync subscription", "profile_id", profile.ID, "error", err)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	// Close out the local trial so the dashboard stops showing it.
	if err := h.subscriptionStore.CancelLocalTrials(profile.ID); err != nil {
		h.logger.Error("cancel local trials", "profile_id", profile.ID, "error", err)
	}

	if h.emailClient != nil && h.emailClient.Configured() && profile.ContactEmail != "" {
		if err := h.emailClient.SendSubscriptionConfirmed(profile.ContactEmail, plan.Name); err != nil {
			h.logger.Error("send confirmation email", "profile_id", profile.ID, "error", err)
		}
	}

	h.logger.Info("checkout completed", "profile_id", profile.ID, "plan", plan.Code)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Cancel returns the user to pricing after an abandoned checkout.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/pricing", http.StatusSeeOther)
}

// BillingPortal redirects to the Stripe billing portal for the profile's
// customer.
func (h *CheckoutHandler) BillingPortal(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileStore.GetByID(auth.ProfileID(r.Context()))
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	sub, err := h.subscriptionStore.GetActivePaidByProfileID(profile.ID)
	if err != nil {
		h.logger.Error("get subscription", "profile_id", profile.ID, "error", err)
	}
	if sub == nil || sub.StripeCustomerID == "" {
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	url, err := h.stripeClient.CreateBillingPortalSession(sub.StripeCustomerID, h.baseURL+"/dashboard")
	if err != nil {
		h.logger.Error("create billing portal session", "profile_id", profile.ID, "error", err)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}
