package store

import (
	"testing"
	"time"

	"github.com/mintkit/hub/internal/database"
)

func setupStudioAccessTestDB(t *testing.T) (*StudioAccessStore, *ProfileStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStudioAccessStore(db), NewProfileStore(db), NewUserStore(db)
}

func TestStudioAccessSetPrincipalID(t *testing.T) {
	sas, ps, us := setupStudioAccessTestDB(t)

	u, _ := us.Create("rosie@example.com", "hash", "")
	p, _ := ps.Create(u.ID, "Rosie", "")

	sa, err := sas.SetPrincipalID(p.ID, "principal-abc")
	if err != nil {
		t.Fatalf("set principal: %v", err)
	}
	if sa.PrincipalID != "principal-abc" {
		t.Errorf("principal = %q, want %q", sa.PrincipalID, "principal-abc")
	}

	// Setting again replaces, not duplicates.
	again, err := sas.SetPrincipalID(p.ID, "principal-def")
	if err != nil {
		t.Fatalf("set principal again: %v", err)
	}
	if again.ID != sa.ID {
		t.Errorf("expected same row, got %d and %d", sa.ID, again.ID)
	}
	if again.PrincipalID != "principal-def" {
		t.Errorf("principal = %q, want %q", again.PrincipalID, "principal-def")
	}
}

func TestStudioAccessTouchLastAccessed(t *testing.T) {
	sas, ps, us := setupStudioAccessTestDB(t)

	u, _ := us.Create("rosie@example.com", "hash", "")
	p, _ := ps.Create(u.ID, "Rosie", "")

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := sas.TouchLastAccessed(p.ID, at); err != nil {
		t.Fatalf("touch: %v", err)
	}

	sa, err := sas.GetByProfileID(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sa == nil {
		t.Fatal("expected row created by touch")
	}
	if sa.LastAccessedAt == nil || !sa.LastAccessedAt.Equal(at) {
		t.Errorf("last accessed = %v, want %v", sa.LastAccessedAt, at)
	}

	// Touch on an existing row keeps the principal.
	sas.SetPrincipalID(p.ID, "principal-abc")
	later := at.Add(time.Hour)
	if err := sas.TouchLastAccessed(p.ID, later); err != nil {
		t.Fatalf("touch again: %v", err)
	}
	sa, _ = sas.GetByProfileID(p.ID)
	if sa.PrincipalID != "principal-abc" {
		t.Errorf("principal = %q, want preserved", sa.PrincipalID)
	}
	if sa.LastAccessedAt == nil || !sa.LastAccessedAt.Equal(later) {
		t.Errorf("last accessed = %v, want %v", sa.LastAccessedAt, later)
	}
}

func TestStudioAccessGetMissing(t *testing.T) {
	sas, _, _ := setupStudioAccessTestDB(t)

	sa, err := sas.GetByProfileID(999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sa != nil {
		t.Error("expected nil for unknown profile")
	}
}
