// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure: an in-memory
// implementation of every repository the handlers use, a miniredis-backed
// page cache and request helpers.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/builder"
	"inkwell/internal/cache"
	"inkwell/internal/component"
	"inkwell/internal/engine"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/site"
	"inkwell/internal/store"
)

// memory is the shared state behind the fake repositories.
type memory struct {
	mu          sync.Mutex
	blogs       []models.Blog
	pages       []models.Page
	posts       []models.Post
	submissions []models.FormSubmission
	assets      []models.Asset
	subs        map[uuid.UUID]*models.Subscription
	components  map[uuid.UUID][]component.Component

	// saveHook, when set, runs before every component save.
	saveHook func(ctx context.Context) error
	// loadHook, when set, runs before a blog tree is loaded for display.
	loadHook func()
}

func newMemory() *memory {
	return &memory{
		subs:       make(map[uuid.UUID]*models.Subscription),
		components: make(map[uuid.UUID][]component.Component),
	}
}

// --- blogs ---

type fakeBlogs struct{ m *memory }

func (f fakeBlogs) Create(_ context.Context, b *models.Blog) (*models.Blog, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, existing := range f.m.blogs {
		if existing.Slug == b.Slug {
			return nil, store.ErrConflict
		}
	}
	out := *b
	out.ID = uuid.New()
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	f.m.blogs = append(f.m.blogs, out)
	return &out, nil
}

func (f fakeBlogs) FindBySlug(_ context.Context, slug string) (*models.Blog, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, b := range f.m.blogs {
		if b.Slug == slug {
			return &b, nil
		}
	}
	return nil, nil
}

func (f fakeBlogs) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Blog, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Blog
	for _, b := range f.m.blogs {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f fakeBlogs) Owned(ctx context.Context, slug string, ownerID uuid.UUID) (*models.Blog, error) {
	b, err := f.FindBySlug(ctx, slug)
	if err != nil || b == nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, store.ErrForbidden
	}
	return b, nil
}

func (f fakeBlogs) UpdateSettings(_ context.Context, b *models.Blog) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for i := range f.m.blogs {
		if f.m.blogs[i].ID == b.ID {
			f.m.blogs[i] = *b
		}
	}
	return nil
}

// --- pages ---

type fakePages struct{ m *memory }

func (f fakePages) Create(_ context.Context, p *models.Page) (*models.Page, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	order := 0
	for _, existing := range f.m.pages {
		if existing.BlogID != p.BlogID {
			continue
		}
		if existing.Slug == p.Slug {
			return nil, store.ErrConflict
		}
		order++
	}
	out := *p
	out.ID = uuid.New()
	out.Order = order
	f.m.pages = append(f.m.pages, out)
	return &out, nil
}

func (f fakePages) ListByBlog(_ context.Context, blogID uuid.UUID) ([]models.Page, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Page
	for _, p := range f.m.pages {
		if p.BlogID == blogID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePages) FindBySlug(_ context.Context, blogID uuid.UUID, slug string) (*models.Page, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, p := range f.m.pages {
		if p.BlogID == blogID && p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (f fakePages) Count(ctx context.Context, blogID uuid.UUID) (int, error) {
	pages, err := f.ListByBlog(ctx, blogID)
	return len(pages), err
}

func (f fakePages) Delete(_ context.Context, blogID, id uuid.UUID) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.pages = slices.DeleteFunc(f.m.pages, func(p models.Page) bool {
		return p.BlogID == blogID && p.ID == id
	})
	delete(f.m.components, id)
	return nil
}

// --- posts ---

type fakePosts struct{ m *memory }

func (f fakePosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, existing := range f.m.posts {
		if existing.BlogID == p.BlogID && existing.Slug == p.Slug {
			return nil, store.ErrConflict
		}
	}
	out := *p
	out.ID = uuid.New()
	out.CreatedAt = time.Now()
	f.m.posts = append(f.m.posts, out)
	return &out, nil
}

func (f fakePosts) ListByBlog(_ context.Context, blogID uuid.UUID) ([]models.Post, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Post
	for _, p := range f.m.posts {
		if p.BlogID == blogID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePosts) RecentPublished(_ context.Context, blogSlug string, limit int) ([]models.Post, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var blogID uuid.UUID
	for _, b := range f.m.blogs {
		if b.Slug == blogSlug {
			blogID = b.ID
		}
	}
	var out []models.Post
	for _, p := range f.m.posts {
		if p.BlogID == blogID && p.IsPublished() && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePosts) FindPublished(_ context.Context, blogID uuid.UUID, slug string) (*models.Post, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, p := range f.m.posts {
		if p.BlogID == blogID && p.Slug == slug && p.IsPublished() {
			return &p, nil
		}
	}
	return nil, nil
}

func (f fakePosts) Publish(_ context.Context, blogID, id uuid.UUID) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for i := range f.m.posts {
		if f.m.posts[i].BlogID == blogID && f.m.posts[i].ID == id {
			now := time.Now()
			f.m.posts[i].Status = models.PostStatusPublished
			f.m.posts[i].PublishedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f fakePosts) Delete(_ context.Context, blogID, id uuid.UUID) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	n := len(f.m.posts)
	f.m.posts = slices.DeleteFunc(f.m.posts, func(p models.Post) bool {
		return p.BlogID == blogID && p.ID == id
	})
	return len(f.m.posts) < n, nil
}

func (f fakePosts) CountSince(_ context.Context, blogID uuid.UUID, since time.Time) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	n := 0
	for _, p := range f.m.posts {
		if p.BlogID == blogID && !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// --- submissions ---

type fakeSubmissions struct{ m *memory }

func (f fakeSubmissions) Create(_ context.Context, sub *models.FormSubmission) (*models.FormSubmission, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	out := *sub
	out.ID = uuid.New()
	out.CreatedAt = time.Now()
	f.m.submissions = append(f.m.submissions, out)
	return &out, nil
}

func (f fakeSubmissions) ListByBlog(_ context.Context, blogID uuid.UUID, limit, offset int) ([]models.FormSubmission, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.FormSubmission
	for _, s := range f.m.submissions {
		if s.BlogID == blogID {
			out = append(out, s)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	return out[:min(limit, len(out))], nil
}

// --- assets ---

type fakeAssets struct {
	m   *memory
	err error
}

func (f fakeAssets) Create(_ context.Context, a *models.Asset) (*models.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	out := *a
	out.ID = uuid.New()
	f.m.assets = append(f.m.assets, out)
	return &out, nil
}

func (f fakeAssets) ListByBlog(_ context.Context, blogID uuid.UUID, limit, offset int) ([]models.Asset, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var out []models.Asset
	for _, a := range f.m.assets {
		if a.BlogID == blogID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeAssets) Delete(_ context.Context, blogID, id uuid.UUID) (*models.Asset, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for i, a := range f.m.assets {
		if a.BlogID == blogID && a.ID == id {
			f.m.assets = slices.Delete(f.m.assets, i, i+1)
			return &a, nil
		}
	}
	return nil, nil
}

// --- subscriptions ---

type fakeSubscriptions struct{ m *memory }

func (f fakeSubscriptions) FindByUser(_ context.Context, userID uuid.UUID) (*models.Subscription, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return f.m.subs[userID], nil
}

// --- components ---

// fakeComponents is the component store: the builder's persistence, the
// form lookup and the public tree loader.
type fakeComponents struct{ m *memory }

func (f fakeComponents) Save(ctx context.Context, pageID uuid.UUID, c component.Component) error {
	if f.m.saveHook != nil {
		if err := f.m.saveHook(ctx); err != nil {
			return err
		}
	}
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.components[pageID] = append(f.m.components[pageID], c)
	return nil
}

func (f fakeComponents) Delete(_ context.Context, pageID, id uuid.UUID, ids []uuid.UUID) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.components[pageID] = slices.DeleteFunc(f.m.components[pageID], func(c component.Component) bool {
		return c.ID == id
	})
	f.apply(pageID, ids)
	return nil
}

func (f fakeComponents) ReplaceOrder(_ context.Context, pageID uuid.UUID, ids []uuid.UUID) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.apply(pageID, ids)
	return nil
}

func (f fakeComponents) apply(pageID uuid.UUID, ids []uuid.UUID) {
	list := f.m.components[pageID]
	for i := range list {
		list[i].Order = slices.Index(ids, list[i].ID)
	}
	slices.SortFunc(list, func(a, b component.Component) int { return a.Order - b.Order })
}

func (f fakeComponents) ListByPage(_ context.Context, pageID uuid.UUID) ([]component.Component, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return slices.Clone(f.m.components[pageID]), nil
}

func (f fakeComponents) FindWithBlog(_ context.Context, id uuid.UUID) (uuid.UUID, *models.ComponentRow, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for pageID, list := range f.m.components {
		for _, c := range list {
			if c.ID != id {
				continue
			}
			typ, data, err := component.Encode(c.Payload)
			if err != nil {
				return uuid.Nil, nil, err
			}
			for _, p := range f.m.pages {
				if p.ID == pageID {
					return p.BlogID, &models.ComponentRow{ID: c.ID, PageID: pageID, Type: typ, Order: c.Order, Data: data}, nil
				}
			}
		}
	}
	return uuid.Nil, nil, nil
}

func (f fakeComponents) LoadForDisplay(_ context.Context, blogSlug string) (*models.BlogTree, error) {
	if f.m.loadHook != nil {
		f.m.loadHook()
	}
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, b := range f.m.blogs {
		if b.Slug != blogSlug {
			continue
		}
		tree := &models.BlogTree{Blog: b, Pages: []models.PageTree{}}
		for _, p := range f.m.pages {
			if p.BlogID != b.ID {
				continue
			}
			pt := models.PageTree{Page: p, Components: []models.ComponentRow{}}
			for _, c := range f.m.components[p.ID] {
				typ, data, err := component.Encode(c.Payload)
				if err != nil {
					return nil, err
				}
				pt.Components = append(pt.Components, models.ComponentRow{ID: c.ID, PageID: p.ID, Type: typ, Order: c.Order, Data: data})
			}
			tree.Pages = append(tree.Pages, pt)
		}
		return tree, nil
	}
	return nil, nil
}

// --- object storage ---

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// --- environment ---

// testEnv wires the handlers to the in-memory repositories. It is seeded
// with one blog "acme" that owner owns, holding a "home" page.
type testEnv struct {
	mem     *memory
	mr      *miniredis.Miniredis
	cache   *cache.PageCache
	storage *fakeStorage
	admin   *Admin
	public  *Public
	forms   *Forms
	owner   *session.Data
	blog    models.Blog
	home    models.Page
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := newMemory()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	pageCache := cache.NewPageCache(client, time.Minute)

	eng, err := engine.New(fakePosts{mem})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	comps := fakeComponents{mem}
	objects := newFakeStorage()

	env := &testEnv{
		mem:     mem,
		mr:      mr,
		cache:   pageCache,
		storage: objects,
		owner:   &session.Data{UserID: uuid.New(), Email: "owner@example.com"},
	}
	env.admin = NewAdmin(AdminDeps{
		Blogs:         fakeBlogs{mem},
		Pages:         fakePages{mem},
		Posts:         fakePosts{mem},
		Submissions:   fakeSubmissions{mem},
		Assets:        fakeAssets{m: mem},
		Subscriptions: fakeSubscriptions{mem},
		Builder:       builder.NewManager(comps, time.Second),
		Engine:        eng,
		Cache:         pageCache,
		Storage:       objects,
	})
	env.public = NewPublic(site.NewResolver(comps), eng, fakeBlogs{mem}, fakePosts{mem}, pageCache)
	env.forms = NewForms(comps, fakeSubmissions{mem})

	ctx := context.Background()
	blog, err := fakeBlogs{mem}.Create(ctx, &models.Blog{
		OwnerID: env.owner.UserID, Slug: "acme", Name: "Acme Journal",
		BackgroundColor: "#fafafa", FontFamily: "georgia",
	})
	if err != nil {
		t.Fatalf("seed blog: %v", err)
	}
	home, err := fakePages{mem}.Create(ctx, &models.Page{BlogID: blog.ID, Name: "Home", Slug: "home"})
	if err != nil {
		t.Fatalf("seed page: %v", err)
	}
	env.blog, env.home = *blog, *home
	return env
}

// place stores a component on a page directly, bypassing the builder.
func (e *testEnv) place(t *testing.T, pageID uuid.UUID, p component.Payload) component.Component {
	t.Helper()
	e.mem.mu.Lock()
	defer e.mem.mu.Unlock()
	c := component.Component{ID: component.NewID(), Order: len(e.mem.components[pageID]), Payload: p}
	e.mem.components[pageID] = append(e.mem.components[pageID], c)
	return c
}

// ctxWithSession injects session data into a context for testing.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return middleware.WithSession(ctx, data)
}

// withChiURLParams adds chi URL parameters to a request.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// call runs h against a request carrying sess (which may be nil) and the
// given URL parameters.
func call(h http.HandlerFunc, method, target string, body any, sess *session.Data, params map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	if sess != nil {
		req = req.WithContext(ctxWithSession(req.Context(), sess))
	}
	req = withChiURLParams(req, params)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// decode unmarshals a JSON response body.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}
