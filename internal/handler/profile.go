package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/mintkit/hub/internal/auth"
	"github.com/mintkit/hub/internal/store"
)

type ProfileHandler struct {
	profileStore *store.ProfileStore
	renderer     *Renderer
	logger       *slog.Logger
}

func NewProfileHandler(ps *store.ProfileStore, rd *Renderer, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileStore: ps,
		renderer:     rd,
		logger:       logger,
	}
}

// EditPage renders the business profile form.
func (h *ProfileHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileStore.GetByID(auth.ProfileID(r.Context()))
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, "edit_profile.html", map[string]any{
		"Profile":   profile,
		"ActiveNav": "profile",
	})
}

// Update saves business name and contact email.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileStore.GetByID(auth.ProfileID(r.Context()))
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, "edit_profile.html", map[string]any{"Profile": profile, "Error": "Invalid form data"})
		return
	}

	businessName := strings.TrimSpace(r.FormValue("business_name"))
	contactEmail := strings.TrimSpace(r.FormValue("contact_email"))

	if businessName == "" {
		h.renderer.Render(w, "edit_profile.html", map[string]any{"Profile": profile, "Error": "Business name is required"})
		return
	}
	if contactEmail != "" {
		if _, err := mail.ParseAddress(contactEmail); err != nil {
			h.renderer.Render(w, "edit_profile.html", map[string]any{"Profile": profile, "Error": "Contact email is not valid"})
			return
		}
	}

	if _, err := h.profileStore.Update(profile.ID, businessName, contactEmail); err != nil {
		h.logger.Error("update profile", "profile_id", profile.ID, "error", err)
		h.renderer.Render(w, "edit_profile.html", map[string]any{"Profile": profile, "Error": "Unable to save profile"})
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
