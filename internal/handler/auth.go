package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mintkit/hub/internal/email"
	"github.com/mintkit/hub/internal/store"
)

const sessionCookieName = "hub_session"

type AuthHandler struct {
	userStore    *store.UserStore
	profileStore *store.ProfileStore
	sessionStore *store.SessionStore
	emailClient  *email.Client
	renderer     *Renderer
	logger       *slog.Logger
}

func NewAuthHandler(
	us *store.UserStore,
	ps *store.ProfileStore,
	ss *store.SessionStore,
	ec *email.Client,
	rd *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		profileStore: ps,
		sessionStore: ss,
		emailClient:  ec,
		renderer:     rd,
		logger:       logger,
	}
}

// RegisterPage renders the registration form.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "register.html", nil)
}

// Register creates a user and a matching profile. Welcome email failures
// must never block registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, "register.html", map[string]any{"Error": "Invalid form data"})
		return
	}

	addr := strings.TrimSpace(r.FormValue("email"))
	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")

	if _, err := mail.ParseAddress(addr); err != nil {
		h.renderer.Render(w, "register.html", map[string]any{"Error": "A valid email is required", "Name": name})
		return
	}
	if len(password) < 8 {
		h.renderer.Render(w, "register.html", map[string]any{"Error": "Password must be at least 8 characters", "Email": addr, "Name": name})
		return
	}

	existing, err := h.userStore.GetByEmail(addr)
	if err != nil {
		h.logger.Error("get user", "error", err)
		h.renderer.Render(w, "register.html", map[string]any{"Error": "Unable to process request"})
		return
	}
	if existing != nil {
		h.renderer.Render(w, "register.html", map[string]any{"Error": "An account with that email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		h.renderer.Render(w, "register.html", map[string]any{"Error": "Unable to process request"})
		return
	}

	user, err := h.userStore.Create(addr, string(hash), name)
	if err != nil {
		h.logger.Error("create user", "error", err)
		h.renderer.Render(w, "register.html", map[string]any{"Error": "Unable to process request"})
		return
	}

	if _, err := h.profileStore.Create(user.ID, name, addr); err != nil {
		h.logger.Error("create profile", "user_id", user.ID, "error", err)
	}

	if h.emailClient != nil && h.emailClient.Configured() {
		if err := h.emailClient.SendWelcome(addr, name); err != nil {
			h.logger.Error("send welcome email", "user_id", user.ID, "error", err)
		}
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if r.URL.Query().Get("registered") == "1" {
		data["Notice"] = "Your account has been created. You can now log in."
	}
	h.renderer.Render(w, "login.html", data)
}

// Login verifies credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, "login.html", map[string]any{"Error": "Invalid form data"})
		return
	}

	addr := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	user, err := h.userStore.GetByEmail(addr)
	if err != nil {
		h.logger.Error("get user", "error", err)
	}
	// Same message for unknown email and wrong password.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		h.renderer.Render(w, "login.html", map[string]any{"Error": "Invalid email or password", "Email": addr})
		return
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "user_id", user.ID, "error", err)
		h.renderer.Render(w, "login.html", map[string]any{"Error": "Unable to process request"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(store.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout destroys the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		sess, err := h.sessionStore.GetByToken(cookie.Value)
		if err == nil && sess != nil {
			h.sessionStore.Delete(sess.ID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
