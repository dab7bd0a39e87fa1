package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mintkit/hub/internal/auth"
	"github.com/mintkit/hub/internal/store"
)

const explorePerPage = 10

type StorefrontHandler struct {
	profileStore    *store.ProfileStore
	storefrontStore *store.StorefrontStore
	renderer        *Renderer
	logger          *slog.Logger
}

func NewStorefrontHandler(
	ps *store.ProfileStore,
	sfs *store.StorefrontStore,
	rd *Renderer,
	logger *slog.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		profileStore:    ps,
		storefrontStore: sfs,
		renderer:        rd,
		logger:          logger,
	}
}

// EditorPage renders the owner's storefront editor, creating an unlisted
// storefront on first visit.
func (h *StorefrontHandler) EditorPage(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileStore.GetByID(auth.ProfileID(r.Context()))
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	storefront, err := h.storefrontStore.GetOrCreate(profile.ID, profile.BusinessName, profile.BusinessName, profile.ContactEmail)
	if err != nil {
		h.logger.Error("get or create storefront", "profile_id", profile.ID, "error", err)
		http.Error(w, "storefront unavailable", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "storefront_edit.html", map[string]any{
		"Storefront": storefront,
		"PublicURL":  h.renderer.BaseURL() + "/s/" + storefront.Slug,
		"ActiveNav":  "storefront",
	})
}

// Update saves the storefront content fields. The slug never changes after
// creation so shared links stay valid.
func (h *StorefrontHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileStore.GetByID(auth.ProfileID(r.Context()))
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	storefront, err := h.storefrontStore.GetOrCreate(profile.ID, profile.BusinessName, profile.BusinessName, profile.ContactEmail)
	if err != nil {
		h.logger.Error("get or create storefront", "profile_id", profile.ID, "error", err)
		http.Error(w, "storefront unavailable", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, "storefront_edit.html", map[string]any{"Storefront": storefront, "Error": "Invalid form data"})
		return
	}

	headline := strings.TrimSpace(r.FormValue("headline"))
	if headline == "" {
		h.renderer.Render(w, "storefront_edit.html", map[string]any{"Storefront": storefront, "Error": "Headline is required"})
		return
	}
	description := r.FormValue("description")
	contactDetails := r.FormValue("contact_details")

	if _, err := h.storefrontStore.Update(storefront.ID, headline, description, contactDetails); err != nil {
		h.logger.Error("update storefront", "storefront_id", storefront.ID, "error", err)
		h.renderer.Render(w, "storefront_edit.html", map[string]any{"Storefront": storefront, "Error": "Unable to save storefront"})
		return
	}

	http.Redirect(w, r, "/storefront", http.StatusSeeOther)
}

// TogglePublish flips the explore listing flag.
func (h *StorefrontHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileID(r.Context())

	storefront, err := h.storefrontStore.GetByProfileID(profileID)
	if err != nil || storefront == nil {
		http.Redirect(w, r, "/storefront", http.StatusSeeOther)
		return
	}

	if err := h.storefrontStore.SetActive(storefront.ID, !storefront.IsActive); err != nil {
		h.logger.Error("toggle storefront", "storefront_id", storefront.ID, "error", err)
	}

	http.Redirect(w, r, "/storefront", http.StatusSeeOther)
}

// Explore lists published storefronts with sorting and pagination.
func (h *StorefrontHandler) Explore(w http.ResponseWriter, r *http.Request) {
	sort := r.URL.Query().Get("sort")
	if sort != "name" {
		sort = "newest"
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * explorePerPage

	storefronts, err := h.storefrontStore.ListActive(sort, explorePerPage, offset)
	if err != nil {
		h.logger.Error("list storefronts", "error", err)
		http.Error(w, "explore unavailable", http.StatusInternalServerError)
		return
	}
	total, err := h.storefrontStore.CountActive()
	if err != nil {
		h.logger.Error("count storefronts", "error", err)
	}

	totalPages := (total + explorePerPage - 1) / explorePerPage
	if totalPages < 1 {
		totalPages = 1
	}

	h.renderer.Render(w, "explore.html", map[string]any{
		"Storefronts": storefronts,
		"Sort":        sort,
		"Page":        page,
		"TotalPages":  totalPages,
		"Total":       total,
		"HasPrev":     page > 1,
		"HasNext":     page < totalPages,
		"PrevPage":    page - 1,
		"NextPage":    page + 1,
		"ActiveNav":   "explore",
	})
}

// Detail renders the public storefront page. The listing flag only hides a
// storefront from explore; anyone with the link can still view it.
func (h *StorefrontHandler) Detail(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	storefront, err := h.storefrontStore.GetBySlug(slug)
	if err != nil {
		h.logger.Error("get storefront by slug", "slug", slug, "error", err)
	}
	if storefront == nil {
		http.NotFound(w, r)
		return
	}

	var businessName string
	if profile, err := h.profileStore.GetByID(storefront.ProfileID); err == nil && profile != nil {
		businessName = profile.BusinessName
	}

	h.renderer.Render(w, "storefront_detail.html", map[string]any{
		"Storefront":   storefront,
		"BusinessName": businessName,
	})
}
