package store

import (
	"testing"

	"github.com/mintkit/hub/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("rosie@example.com", "hash", "Rosie")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "rosie@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "rosie@example.com")
	}
	if u.Name != "Rosie" {
		t.Errorf("name = %q, want %q", u.Name, "Rosie")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("rosie@example.com", "hash", "Rosie"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("rosie@example.com", "hash2", "Other"); err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestUserGetByEmail(t *testing.T) {
	us := setupUserTestDB(t)

	created, _ := us.Create("rosie@example.com", "hash", "Rosie")

	u, err := us.GetByEmail("rosie@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.ID != created.ID {
		t.Errorf("id = %d, want %d", u.ID, created.ID)
	}
	if u.PasswordHash != "hash" {
		t.Errorf("password hash = %q, want %q", u.PasswordHash, "hash")
	}
}

func TestUserGetByEmailNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserDelete(t *testing.T) {
	us := setupUserTestDB(t)

	created, _ := us.Create("rosie@example.com", "hash", "Rosie")
	if err := us.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	u, err := us.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if u != nil {
		t.Error("expected nil after delete")
	}
}
