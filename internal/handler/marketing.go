package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mintkit/hub/internal/access"
	"github.com/mintkit/hub/internal/store"
)

type MarketingHandler struct {
	sessionStore      *store.SessionStore
	profileStore      *store.ProfileStore
	storefrontStore   *store.StorefrontStore
	planStore         *store.PlanStore
	subscriptionStore *store.SubscriptionStore
	renderer          *Renderer
	logger            *slog.Logger
}

func NewMarketingHandler(
	ss *store.SessionStore,
	ps *store.ProfileStore,
	sfs *store.StorefrontStore,
	plans *store.PlanStore,
	subs *store.SubscriptionStore,
	rd *Renderer,
	logger *slog.Logger,
) *MarketingHandler {
	return &MarketingHandler{
		sessionStore:      ss,
		profileStore:      ps,
		storefrontStore:   sfs,
		planStore:         plans,
		subscriptionStore: subs,
		renderer:          rd,
		logger:            logger,
	}
}

// Home renders the landing page with a few recently published storefronts.
func (h *MarketingHandler) Home(w http.ResponseWriter, r *http.Request) {
	storefronts, err := h.storefrontStore.ListActive("newest", 3, 0)
	if err != nil {
		h.logger.Error("list storefronts", "error", err)
	}

	h.renderer.Render(w, "index.html", map[string]any{
		"Storefronts": storefronts,
		"LoggedIn":    h.currentProfileID(r) != 0,
		"ActiveNav":   "home",
	})
}

// Pricing renders the plan list. For a signed-in visitor it also reports
// trial and subscription state so the page can disable the right buttons.
func (h *MarketingHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	plans, err := h.planStore.ListActive()
	if err != nil {
		h.logger.Error("list plans", "error", err)
		http.Error(w, "pricing unavailable", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Plans":     plans,
		"TrialUsed": r.URL.Query().Get("trial") == "used",
		"ActiveNav": "pricing",
	}

	if profileID := h.currentProfileID(r); profileID != 0 {
		data["LoggedIn"] = true

		sub, err := h.subscriptionStore.GetLatestByProfileID(profileID)
		if err != nil {
			h.logger.Error("get subscription", "profile_id", profileID, "error", err)
		}
		state := access.ForSubscription(sub, time.Now().UTC())
		data["TrialActive"] = state == access.TrialActive
		if sub != nil {
			data["TrialUsed"] = true
		}

		paid, err := h.subscriptionStore.GetActivePaidByProfileID(profileID)
		if err != nil {
			h.logger.Error("get paid subscription", "profile_id", profileID, "error", err)
		}
		data["HasActivePaid"] = paid != nil
	}

	h.renderer.Render(w, "pricing.html", data)
}

// Health responds to load balancer probes.
func (h *MarketingHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// currentProfileID resolves the session cookie on public pages where auth
// is optional. Returns 0 when not signed in.
func (h *MarketingHandler) currentProfileID(r *http.Request) int64 {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return 0
	}
	session, err := h.sessionStore.GetByToken(cookie.Value)
	if err != nil || session == nil {
		return 0
	}
	profile, err := h.profileStore.GetByUserID(session.UserID)
	if err != nil || profile == nil {
		return 0
	}
	return profile.ID
}
