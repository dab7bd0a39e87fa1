package middleware

import (
	"net/http"

	"github.com/mintkit/hub/internal/auth"
	"github.com/mintkit/hub/internal/store"
)

const sessionCookieName = "hub_session"

// SessionCookieName is the cookie carrying the login session token.
func SessionCookieName() string { return sessionCookieName }

// RequireAuth validates the session cookie, resolves the user's profile
// (creating one for accounts that predate profiles), and populates the
// AuthContext.
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore, profileStore *store.ProfileStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				redirectToLogin(w, r)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				redirectToLogin(w, r)
				return
			}

			user, err := userStore.GetByID(sess.UserID)
			if err != nil || user == nil {
				redirectToLogin(w, r)
				return
			}

			profile, err := profileStore.GetOrCreate(user.ID, user.Name, user.Email)
			if err != nil || profile == nil {
				redirectToLogin(w, r)
				return
			}

			ac := auth.AuthContext{
				UserID:    user.ID,
				ProfileID: profile.ID,
				SessionID: sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
