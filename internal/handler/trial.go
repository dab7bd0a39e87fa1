package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mintkit/hub/internal/access"
	"github.com/mintkit/hub/internal/auth"
	"github.com/mintkit/hub/internal/store"
)

// TrialDays is the free trial length, anchored at the moment the trial
// starts.
const TrialDays = 14

type TrialHandler struct {
	subscriptionStore *store.SubscriptionStore
	planStore         *store.PlanStore
	logger            *slog.Logger
}

func NewTrialHandler(subs *store.SubscriptionStore, plans *store.PlanStore, logger *slog.Logger) *TrialHandler {
	return &TrialHandler{
		subscriptionStore: subs,
		planStore:         plans,
		logger:            logger,
	}
}

// Start begins the 14-day trial. Any existing subscription row, trial or
// paid, means the trial was already used.
func (h *TrialHandler) Start(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileID(r.Context())
	now := time.Now().UTC()

	existing, err := h.subscriptionStore.GetLatestByProfileID(profileID)
	if err != nil {
		h.logger.Error("get subscription", "profile_id", profileID, "error", err)
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	if existing != nil && access.ForSubscription(existing, now) == access.TrialActive {
		// Trial already running; nothing to do.
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if existing != nil {
		http.Redirect(w, r, "/pricing?trial=used", http.StatusSeeOther)
		return
	}

	plan, err := h.planStore.GetByCode("trial")
	if err != nil || plan == nil {
		h.logger.Error("trial plan missing", "error", err)
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	end := now.Add(TrialDays * 24 * time.Hour)
	if _, err := h.subscriptionStore.CreateTrial(profileID, plan.ID, end); err != nil {
		h.logger.Error("create trial", "profile_id", profileID, "error", err)
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	h.logger.Info("trial started", "profile_id", profileID, "ends", end)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
