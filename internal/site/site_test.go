package site

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/component"
	"inkwell/internal/models"
)

type fakeLoader map[string]*models.BlogTree

func (f fakeLoader) LoadForDisplay(_ context.Context, slug string) (*models.BlogTree, error) {
	if slug == "broken" {
		return nil, errors.New("connection refused")
	}
	return f[slug], nil
}

func row(order int, typ, data string) models.ComponentRow {
	return models.ComponentRow{ID: uuid.New(), Type: typ, Order: order, Data: json.RawMessage(data)}
}

func newTestResolver() *Resolver {
	return NewResolver(fakeLoader{
		"acme": {
			Blog: models.Blog{Slug: "acme", Name: "Acme"},
			Pages: []models.PageTree{
				{
					Page: models.Page{Slug: "home"},
					Components: []models.ComponentRow{
						row(0, "navbar", `{"title":"Acme","titleType":"text","layout":"left","links":[]}`),
						row(1, "unknown-type-xyz", `{"a":1}`),
					},
				},
				{Page: models.Page{Slug: "empty", Order: 1}, Components: []models.ComponentRow{}},
			},
		},
		"bare":    {Blog: models.Blog{Slug: "bare"}, Pages: []models.PageTree{}},
		"no-home": {Blog: models.Blog{Slug: "no-home"}, Pages: []models.PageTree{{Page: models.Page{Slug: "about"}}}},
	})
}

func TestResolve(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	tests := []struct {
		name     string
		tenant   string
		path     string
		wantErr  error
		wantPage string
		wantLen  int
	}{
		{name: "unknown tenant", tenant: "nonexistent-tenant", path: "home", wantErr: ErrNotFound},
		{name: "unknown page of existing tenant", tenant: "acme", path: "nonexistent-page", wantErr: ErrNotFound},
		{name: "root path is home", tenant: "acme", path: "/", wantPage: "home", wantLen: 2},
		{name: "explicit page", tenant: "acme", path: "/empty/", wantPage: "empty", wantLen: 0},
		{name: "blog without pages has no home", tenant: "bare", path: "", wantErr: ErrNotFound},
		{name: "home falls back to first page", tenant: "no-home", path: "", wantPage: "about"},
		{name: "empty tenant", tenant: "", path: "", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := r.Resolve(ctx, tt.tenant, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if page.Page.Slug != tt.wantPage {
				t.Errorf("page: got %q, want %q", page.Page.Slug, tt.wantPage)
			}
			if len(page.Components) != tt.wantLen {
				t.Errorf("components: got %d, want %d", len(page.Components), tt.wantLen)
			}
			if page.Components == nil {
				t.Error("components should never be nil")
			}
		})
	}
}

func TestResolveDecodesUnknownAsRaw(t *testing.T) {
	page, err := newTestResolver().Resolve(context.Background(), "acme", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := page.Components[0].Payload.(component.Navbar); !ok {
		t.Errorf("first component: got %T, want Navbar", page.Components[0].Payload)
	}
	if _, ok := page.Components[1].Payload.(component.Raw); !ok {
		t.Errorf("second component: got %T, want Raw", page.Components[1].Payload)
	}
}

func TestLoadEmptyBlog(t *testing.T) {
	tree, err := newTestResolver().Load(context.Background(), "bare")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tree.Pages == nil || len(tree.Pages) != 0 {
		t.Errorf("expected empty page list, got %#v", tree.Pages)
	}
}

func TestResolveStorageErrorIsNotNotFound(t *testing.T) {
	_, err := newTestResolver().Resolve(context.Background(), "broken", "")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("storage failure should surface as a plain error, got %v", err)
	}
}
