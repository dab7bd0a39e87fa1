package handler

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mintkit/hub/internal/email"
	"github.com/mintkit/hub/internal/store"
)

// StudioKeyHeader carries the shared secret Studio sends when calling the
// card-link API.
const StudioKeyHeader = "X-Studio-Key"

type CardLinkHandler struct {
	cardLinkStore *store.CardLinkStore
	emailClient   *email.Client
	renderer      *Renderer
	apiKey        string
	allowedHosts  []string
	logger        *slog.Logger
}

func NewCardLinkHandler(
	cls *store.CardLinkStore,
	ec *email.Client,
	rd *Renderer,
	apiKey string,
	allowedHosts []string,
	logger *slog.Logger,
) *CardLinkHandler {
	return &CardLinkHandler{
		cardLinkStore: cls,
		emailClient:   ec,
		renderer:      rd,
		apiKey:        strings.TrimSpace(apiKey),
		allowedHosts:  allowedHosts,
		logger:        logger,
	}
}

type createCardLinkRequest struct {
	NFTID          string `json:"nft_id"`
	OpenURL        string `json:"open_url"`
	ImageURL       string `json:"image_url"`
	RecipientEmail string `json:"recipient_email"`
}

type createCardLinkResponse struct {
	Token     string `json:"token"`
	ViewerURL string `json:"viewer_url"`
}

// Create mints a shareable viewer link for a Studio card. Only Studio may
// call this: the request must carry the shared key, and an unset key
// disables the endpoint rather than opening it. The open URL must point at
// an allowlisted host so the viewer page never forwards to an arbitrary
// destination.
func (h *CardLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	provided := strings.TrimSpace(r.Header.Get(StudioKeyHeader))
	if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.apiKey)) != 1 {
		h.logger.Warn("card link request rejected", "remote", r.RemoteAddr)
		writeJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req createCardLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.NFTID = strings.TrimSpace(req.NFTID)
	req.OpenURL = strings.TrimSpace(req.OpenURL)
	if req.NFTID == "" || req.OpenURL == "" {
		writeJSONError(w, http.StatusBadRequest, "nft_id and open_url are required")
		return
	}

	if !h.hostAllowed(req.OpenURL) {
		h.logger.Warn("card link open_url rejected", "url", req.OpenURL)
		writeJSONError(w, http.StatusBadRequest, "open_url host is not allowed")
		return
	}

	link, err := h.cardLinkStore.Create(req.NFTID, req.OpenURL, req.ImageURL, req.RecipientEmail)
	if err != nil {
		h.logger.Error("create card link", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create card link")
		return
	}

	viewerURL := h.renderer.BaseURL() + "/cards/" + link.Token

	if req.RecipientEmail != "" && h.emailClient != nil && h.emailClient.Configured() {
		if err := h.emailClient.SendCardReceived(req.RecipientEmail, viewerURL); err != nil {
			h.logger.Error("send card email", "error", err)
		}
	}

	h.logger.Info("card link created", "nft_id", req.NFTID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createCardLinkResponse{
		Token:     link.Token,
		ViewerURL: viewerURL,
	})
}

// View renders the public card viewer page for a token.
func (h *CardLinkHandler) View(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	link, err := h.cardLinkStore.GetByToken(token)
	if err != nil {
		h.logger.Error("get card link", "error", err)
	}
	if link == nil {
		http.NotFound(w, r)
		return
	}

	h.renderer.Render(w, "card_viewer.html", map[string]any{
		"CardLink":   link,
		"ManualCode": "MANUAL-" + link.NFTID,
	})
}

// hostAllowed checks the open URL against the configured host allowlist.
// Requires https and an exact host match.
func (h *CardLinkHandler) hostAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range h.allowedHosts {
		if host == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
