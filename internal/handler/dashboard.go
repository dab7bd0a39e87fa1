package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mintkit/hub/internal/access"
	"github.com/mintkit/hub/internal/auth"
	"github.com/mintkit/hub/internal/store"
)

type DashboardHandler struct {
	profileStore      *store.ProfileStore
	storefrontStore   *store.StorefrontStore
	subscriptionStore *store.SubscriptionStore
	planStore         *store.PlanStore
	renderer          *Renderer
	logger            *slog.Logger
}

func NewDashboardHandler(
	ps *store.ProfileStore,
	sfs *store.StorefrontStore,
	subs *store.SubscriptionStore,
	plans *store.PlanStore,
	rd *Renderer,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		profileStore:      ps,
		storefrontStore:   sfs,
		subscriptionStore: subs,
		planStore:         plans,
		renderer:          rd,
		logger:            logger,
	}
}

// Dashboard renders the owner's overview: profile, storefront, subscription
// and the computed access state gating the Studio link.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileID(r.Context())

	profile, err := h.profileStore.GetByID(profileID)
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	storefront, err := h.storefrontStore.GetByProfileID(profileID)
	if err != nil {
		h.logger.Error("get storefront", "profile_id", profileID, "error", err)
	}

	sub, err := h.subscriptionStore.GetLatestByProfileID(profileID)
	if err != nil {
		h.logger.Error("get subscription", "profile_id", profileID, "error", err)
	}

	state := access.ForSubscription(sub, time.Now().UTC())

	data := map[string]any{
		"Profile":       profile,
		"Storefront":    storefront,
		"Subscription":  sub,
		"AccessState":   string(state),
		"StudioGranted": state.Granted(),
		"ActiveNav":     "dashboard",
	}
	if sub != nil {
		if plan, err := h.planStore.GetByID(sub.PlanID); err == nil && plan != nil {
			data["Plan"] = plan
		}
	}
	h.renderer.Render(w, "dashboard.html", data)
}
