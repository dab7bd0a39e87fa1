package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mintkit/hub/internal/access"
	"github.com/mintkit/hub/internal/auth"
	"github.com/mintkit/hub/internal/store"
)

type StudioHandler struct {
	subscriptionStore *store.SubscriptionStore
	studioAccessStore *store.StudioAccessStore
	studioURL         string
	logger            *slog.Logger
}

func NewStudioHandler(
	subs *store.SubscriptionStore,
	sas *store.StudioAccessStore,
	studioURL string,
	logger *slog.Logger,
) *StudioHandler {
	return &StudioHandler{
		subscriptionStore: subs,
		studioAccessStore: sas,
		studioURL:         studioURL,
		logger:            logger,
	}
}

// Enter is the gate in front of the external Studio. Access is evaluated
// on every request from the latest subscription row; there is no cached
// grant to go stale.
func (h *StudioHandler) Enter(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileID(r.Context())
	now := time.Now().UTC()

	sub, err := h.subscriptionStore.GetLatestByProfileID(profileID)
	if err != nil {
		h.logger.Error("get subscription", "profile_id", profileID, "error", err)
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	state := access.ForSubscription(sub, now)
	if !state.Granted() {
		h.logger.Info("studio access denied", "profile_id", profileID, "state", string(state))
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	// Bookkeeping only; never blocks entry.
	if err := h.studioAccessStore.TouchLastAccessed(profileID, now); err != nil {
		h.logger.Error("touch studio access", "profile_id", profileID, "error", err)
	}

	h.logger.Info("studio access granted", "profile_id", profileID, "state", string(state))
	http.Redirect(w, r, h.studioURL, http.StatusSeeOther)
}

// SetPrincipal stores the Studio-side principal ID reported for this
// profile.
func (h *StudioHandler) SetPrincipal(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileID(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	principalID := strings.TrimSpace(r.FormValue("principal_id"))
	if principalID == "" {
		http.Error(w, "principal_id is required", http.StatusBadRequest)
		return
	}

	if _, err := h.studioAccessStore.SetPrincipalID(profileID, principalID); err != nil {
		h.logger.Error("set principal id", "profile_id", profileID, "error", err)
		http.Error(w, "unable to save principal", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
