package store

import (
	"testing"

	"github.com/mintkit/hub/internal/database"
)

func setupStorefrontTestDB(t *testing.T) (*StorefrontStore, *ProfileStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStorefrontStore(db), NewProfileStore(db), NewUserStore(db)
}

func storefrontFixtureProfile(t *testing.T, ps *ProfileStore, us *UserStore, email, business string) int64 {
	t.Helper()
	u, err := us.Create(email, "hash", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	p, err := ps.Create(u.ID, business, email)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p.ID
}

func TestStorefrontCreateGeneratesSlug(t *testing.T) {
	ss, ps, us := setupStorefrontTestDB(t)

	profileID := storefrontFixtureProfile(t, ps, us, "rosie@example.com", "Rosie's Bakery")
	sf, err := ss.Create(profileID, "Rosie's Bakery", "Fresh bread daily", "rosie@example.com")
	if err != nil {
		t.Fatalf("create storefront: %v", err)
	}
	if sf.Slug != "rosie-s-bakery" {
		t.Errorf("slug = %q, want %q", sf.Slug, "rosie-s-bakery")
	}
	if sf.IsActive {
		t.Error("new storefront should start unlisted")
	}
}

func TestStorefrontSlugCollision(t *testing.T) {
	ss, ps, us := setupStorefrontTestDB(t)

	first := storefrontFixtureProfile(t, ps, us, "a@example.com", "Corner Shop")
	second := storefrontFixtureProfile(t, ps, us, "b@example.com", "Corner Shop")

	a, err := ss.Create(first, "Corner Shop", "", "")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	b, err := ss.Create(second, "Corner Shop", "", "")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if a.Slug != "corner-shop" {
		t.Errorf("first slug = %q, want %q", a.Slug, "corner-shop")
	}
	if b.Slug != "corner-shop-2" {
		t.Errorf("second slug = %q, want %q", b.Slug, "corner-shop-2")
	}
}

func TestStorefrontCreateRetriesRacedSlug(t *testing.T) {
	ss, ps, us := setupStorefrontTestDB(t)

	winner := storefrontFixtureProfile(t, ps, us, "a@example.com", "Corner Shop")
	loser := storefrontFixtureProfile(t, ps, us, "b@example.com", "Corner Shop")

	// Another request claimed the slug between Make and the insert.
	if _, err := ss.db.Exec(
		`INSERT INTO storefronts (profile_id, slug, headline, contact_details) VALUES (?, ?, '', '')`,
		winner, "corner-shop",
	); err != nil {
		t.Fatalf("seed raced slug: %v", err)
	}

	sf, err := ss.Create(loser, "Corner Shop", "", "")
	if err != nil {
		t.Fatalf("create after race: %v", err)
	}
	if sf.Slug != "corner-shop-2" {
		t.Errorf("slug = %q, want %q", sf.Slug, "corner-shop-2")
	}
}

func TestStorefrontCreateDuplicateProfileNotRetried(t *testing.T) {
	ss, ps, us := setupStorefrontTestDB(t)

	profileID := storefrontFixtureProfile(t, ps, us, "a@example.com", "Corner Shop")
	if _, err := ss.Create(profileID, "Corner Shop", "", ""); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := ss.Create(profileID, "Another Name", "", ""); err == nil {
		t.Error("expected error for second storefront on the same profile")
	}
}

func TestStorefrontGetOrCreate(t *testing.T) {
	ss, ps, us := setupStorefrontTestDB(t)

	profileID := storefrontFixtureProfile(t, ps, us, "rosie@example.com", "Rosie's Bakery")

	first, err := ss.GetOrCreate(profileID, "Rosie's Bakery", "", "")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	second, err := ss.GetOrCreate(profileID, "different", "", "")
	if err != nil {
		t.Fatalf("get or create again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same storefront, got %d and %d", first.ID, second.ID)
	}
}

func TestStorefrontGetBySlug(t *testing.T) {
	ss, ps, us := setupStorefrontTestDB(t)

	profileID := storefrontFixtureProfile(t, ps, us, "rosie@example.com", "Rosie's Bakery")
	created, _ := ss.Create(profileID, "Rosie's Bakery", "", "")

	sf, err := ss.GetBySlug(created.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if sf == nil {
		t.Fatal("expected storefront, got nil")
	}
	if sf.ID != created.ID {
		t.Errorf("id = %d, want %d", sf.ID, created.ID)
	}
}

func TestStorefrontUpdate(t *testing.T) {
	ss, ps, us := setupStorefrontTestDB(t)

	profileID := storefrontFixtureProfile(t, ps, us, "rosie@example.com", "Rosie's Bakery")
	created, _ := ss.Create(profileID, "Rosie's Bakery", "", "")

	sf, err := ss.Update(created.ID, "New headline", "About us", "01234 567890")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if sf.Headline != "New headline" {
		t.Errorf("headline = %q, want %q", sf.Headline, "New headline")
	}
	if sf.Slug != created.Slug {
		t.Errorf("slug changed on update: %q -> %q", created.Slug, sf.Slug)
	}
}

func TestStorefrontListActive(t *testing.T) {
	ss, ps, us := setupStorefrontTestDB(t)

	listed := storefrontFixtureProfile(t, ps, us, "a@example.com", "Alpha")
	unlisted := storefrontFixtureProfile(t, ps, us, "b@example.com", "Beta")

	a, _ := ss.Create(listed, "Alpha", "", "")
	ss.Create(unlisted, "Beta", "", "")
	if err := ss.SetActive(a.ID, true); err != nil {
		t.Fatalf("set active: %v", err)
	}

	got, err := ss.ListActive("newest", 10, 0)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != a.ID {
		t.Errorf("listed id = %d, want %d", got[0].ID, a.ID)
	}

	n, err := ss.CountActive()
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestStorefrontListActiveSortByName(t *testing.T) {
	ss, ps, us := setupStorefrontTestDB(t)

	p1 := storefrontFixtureProfile(t, ps, us, "a@example.com", "Zebra Crafts")
	p2 := storefrontFixtureProfile(t, ps, us, "b@example.com", "Apple Press")

	a, _ := ss.Create(p1, "Zebra Crafts", "Zebra Crafts", "")
	b, _ := ss.Create(p2, "Apple Press", "Apple Press", "")
	ss.SetActive(a.ID, true)
	ss.SetActive(b.ID, true)

	got, err := ss.ListActive("name", 10, 0)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != b.ID {
		t.Errorf("first = %d (%q), want Apple Press first", got[0].ID, got[0].Headline)
	}
}
