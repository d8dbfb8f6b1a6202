// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"inkwell/internal/component"
)

// DemoOwnerID owns the seeded demo blog. Development sessions can be issued
// for this id to edit it.
var DemoOwnerID = uuid.MustParse("00000000-0000-7000-8000-000000000001")

// DemoBlogSlug is the tenant slug of the seeded blog.
const DemoBlogSlug = "demo"

// Seed populates the database with a demo blog for development. It does
// nothing if the demo blog already exists.
func Seed(db *sql.DB) error {
	var exists bool
	if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM blogs WHERE slug = $1)", DemoBlogSlug).Scan(&exists); err != nil {
		return fmt.Errorf("seed check blog: %w", err)
	}
	if exists {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var blogID uuid.UUID
	err = tx.QueryRow(`
		INSERT INTO blogs (owner_id, slug, name, description, background_color, font_family)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, DemoOwnerID, DemoBlogSlug, "Demo Blog", "A sample site built with the page builder.", "#f8fafc", "inter").Scan(&blogID)
	if err != nil {
		return fmt.Errorf("seed insert blog: %w", err)
	}

	pages := []struct {
		name, slug string
		comps      []component.Payload
	}{
		{"Home", "home", homeComponents()},
		{"About", "about", []component.Payload{
			component.Hero{Title: "About us", Layout: "centered", Align: "center", Height: 320},
		}},
	}

	for i, p := range pages {
		var pageID uuid.UUID
		err := tx.QueryRow(`
			INSERT INTO pages (blog_id, name, slug, sort_order) VALUES ($1, $2, $3, $4)
			RETURNING id
		`, blogID, p.name, p.slug, i).Scan(&pageID)
		if err != nil {
			return fmt.Errorf("seed insert page %s: %w", p.slug, err)
		}

		for order, payload := range p.comps {
			typ, data, err := component.Encode(payload)
			if err != nil {
				return fmt.Errorf("seed encode component: %w", err)
			}
			if _, err := tx.Exec(`
				INSERT INTO components (id, page_id, type, sort_order, data) VALUES ($1, $2, $3, $4, $5)
			`, component.NewID(), pageID, typ, order, []byte(data)); err != nil {
				return fmt.Errorf("seed insert component: %w", err)
			}
		}
	}

	posts := []struct{ title, slug, body string }{
		{"Hello, world", "hello-world", "Welcome to the **demo blog**.\n\nThis post was created by the seeder."},
		{"Building pages", "building-pages", "Pages are composed from components:\n\n- navbar\n- hero\n- grid\n- form\n- carousel\n- footer"},
	}
	for _, p := range posts {
		if _, err := tx.Exec(`
			INSERT INTO posts (blog_id, author_id, title, slug, body, status, published_at)
			VALUES ($1, $2, $3, $4, $5, 'published', NOW())
		`, blogID, DemoOwnerID, p.title, p.slug, p.body); err != nil {
			return fmt.Errorf("seed insert post %s: %w", p.slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo blog", "slug", DemoBlogSlug, "owner_id", DemoOwnerID)
	return nil
}

func homeComponents() []component.Payload {
	return []component.Payload{
		component.Navbar{
			Title: "Demo Blog", TitleType: "text", Layout: "split",
			Links: []component.NavLink{
				{Text: "Home", Href: "/"},
				{Text: "About", Href: "/about"},
				{Text: "More", Href: "#", DropdownItems: []component.DropdownLink{
					{Text: "Archive", Href: "/archive"},
				}},
			},
		},
		component.Hero{
			Title: "Write. Build. Publish.", Subtitle: "A page built from components.",
			Layout: "centered", Align: "center", Height: 480,
			Buttons: []component.HeroButton{{Text: "Read the blog", Href: "#latest", Variant: "primary"}},
		},
		component.GridDynamic{Title: "Latest posts", Columns: 3, Template: "card", Limit: 6},
		component.Form{
			Title: "Stay in touch", SubmitText: "Subscribe", SuccessMessage: "Thanks!",
			Fields: []component.FormField{{Name: "email", Label: "Email", Type: "email", Required: true}},
		},
		component.Footer{Copyright: "© 2026 Demo Blog", Layout: "simple"},
	}
}
