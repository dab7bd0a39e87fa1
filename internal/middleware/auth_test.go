package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mintkit/hub/internal/auth"
	"github.com/mintkit/hub/internal/database"
	"github.com/mintkit/hub/internal/store"
)

func setupAuthMiddlewareDB(t *testing.T) (*store.SessionStore, *store.UserStore, *store.ProfileStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewUserStore(db), store.NewProfileStore(db)
}

func TestRequireAuthNoCookie(t *testing.T) {
	ss, us, ps := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, us, ps)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ss, us, ps := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, us, ps)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	ss, us, ps := setupAuthMiddlewareDB(t)

	u, err := us.Create("rosie@example.com", "hash", "Rosie")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var got auth.AuthContext
	handler := RequireAuth(ss, us, ps)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got.UserID != u.ID {
		t.Errorf("UserID = %d, want %d", got.UserID, u.ID)
	}
	if got.SessionID != sess.ID {
		t.Errorf("SessionID = %d, want %d", got.SessionID, sess.ID)
	}

	// The middleware lazily creates the profile.
	profile, err := ps.GetByUserID(u.ID)
	if err != nil || profile == nil {
		t.Fatalf("expected profile after auth: %v", err)
	}
	if got.ProfileID != profile.ID {
		t.Errorf("ProfileID = %d, want %d", got.ProfileID, profile.ID)
	}
}
