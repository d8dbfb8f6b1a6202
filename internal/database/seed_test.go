package database

import (
	"testing"

	"inkwell/internal/component"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed creates data only when the demo blog is missing, so calling it
	// twice must not fail or duplicate rows.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var blogs int
	if err := db.QueryRow("SELECT COUNT(*) FROM blogs WHERE slug = $1", DemoBlogSlug).Scan(&blogs); err != nil {
		t.Fatalf("count blogs: %v", err)
	}
	if blogs != 1 {
		t.Errorf("expected exactly 1 demo blog, got %d", blogs)
	}

	var comps int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM components c
		JOIN pages p ON p.id = c.page_id
		JOIN blogs b ON b.id = p.blog_id
		WHERE b.slug = $1 AND p.slug = 'home'
	`, DemoBlogSlug).Scan(&comps)
	if err != nil {
		t.Fatalf("count components: %v", err)
	}
	if comps != len(homeComponents()) {
		t.Errorf("home components: got %d, want %d", comps, len(homeComponents()))
	}
}

func TestHomeComponentsAreValid(t *testing.T) {
	for _, p := range homeComponents() {
		if err := component.Validate(p); err != nil {
			t.Errorf("seeded %s is invalid: %v", p.Kind(), err)
		}
	}
}
