package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/component"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// hostRequest builds a request for a tenant's own host.
func hostRequest(tenant, path string, params map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithTenant(req.Context(), tenant))
	return withChiURLParams(req, params)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestPublicPageOnTenantHost(t *testing.T) {
	env := newTestEnv(t)
	env.place(t, env.home.ID, component.Hero{Title: "Welcome to Acme", Layout: "centered", Align: "center", Height: 400})

	rec := serve(env.public.Page, hostRequest("acme", "/", map[string]string{"*": ""}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{`<base href="/">`, "Welcome to Acme", "background-color: #fafafa"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "data-preview") {
		t.Error("public pages are not previews")
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first request X-Cache = %q, want MISS", got)
	}

	rec = serve(env.public.Page, hostRequest("acme", "/", map[string]string{"*": ""}))
	if got := rec.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second request X-Cache = %q, want HIT", got)
	}
	if rec.Body.String() != body {
		t.Error("cached body differs from the rendered one")
	}
}

func TestPublicPageUnderSitesPath(t *testing.T) {
	env := newTestEnv(t)
	about, _ := fakePages{env.mem}.Create(context.Background(), &models.Page{BlogID: env.blog.ID, Name: "About", Slug: "about"})
	env.place(t, about.ID, component.Footer{Layout: "simple", Copyright: "Acme Ltd"})

	req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/sites/acme/about", nil), map[string]string{"tenant": "acme", "*": "about"})
	rec := serve(env.public.Page, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<base href="/sites/acme/">`) || !strings.Contains(body, "Acme Ltd") {
		t.Errorf("unexpected body: %s", body)
	}
	if !strings.Contains(body, `data-page="about"`) {
		t.Error("document should carry the page slug")
	}
}

func TestPublicPageNotFound(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		tenant string
		path   string
	}{
		{"unknown tenant", "ghost", ""},
		{"unknown page", "acme", "pricing"},
		{"no tenant", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(env.public.Page, hostRequest(tt.tenant, "/"+tt.path, map[string]string{"*": tt.path}))
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
		})
	}
}

func TestPublicPageIsReRenderedAfterBuilderCommit(t *testing.T) {
	env := newTestEnv(t)
	params := map[string]string{"*": ""}
	serve(env.public.Page, hostRequest("acme", "/", params))

	call(env.admin.DraftUpdate, http.MethodPatch, "/", `{"title":"Fresh hero"}`, env.owner, builderParams("kind", "hero"))
	if rec := call(env.admin.DraftCommit, http.MethodPost, "/", nil, env.owner, builderParams("kind", "hero")); rec.Code != http.StatusCreated {
		t.Fatalf("commit: status = %d", rec.Code)
	}

	rec := serve(env.public.Page, hostRequest("acme", "/", params))
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Error("commit should evict the cached page")
	}
	if !strings.Contains(rec.Body.String(), "Fresh hero") {
		t.Error("page should show the committed component")
	}
}

func TestPublicPageRenderRacingAnEditIsNotCached(t *testing.T) {
	env := newTestEnv(t)
	params := map[string]string{"*": ""}

	// The page is edited while its render is loading data.
	var once sync.Once
	env.mem.loadHook = func() {
		once.Do(func() { env.cache.InvalidateTenant(context.Background(), "acme") })
	}

	if rec := serve(env.public.Page, hostRequest("acme", "/", params)); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec := serve(env.public.Page, hostRequest("acme", "/", params))
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("render that raced an edit was cached: X-Cache = %q", got)
	}
	rec = serve(env.public.Page, hostRequest("acme", "/", params))
	if got := rec.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("undisturbed render should be cached: X-Cache = %q", got)
	}
}

func TestPublicPageCacheExpires(t *testing.T) {
	env := newTestEnv(t)
	params := map[string]string{"*": ""}
	serve(env.public.Page, hostRequest("acme", "/", params))
	env.mr.FastForward(2 * time.Minute)

	rec := serve(env.public.Page, hostRequest("acme", "/", params))
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Error("expired entry should be re-rendered")
	}
}

func TestPublicPageWithoutCache(t *testing.T) {
	env := newTestEnv(t)
	env.public.cache = nil
	for range 2 {
		rec := serve(env.public.Page, hostRequest("acme", "/", map[string]string{"*": ""}))
		if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "MISS" {
			t.Fatalf("status = %d, X-Cache = %q", rec.Code, rec.Header().Get("X-Cache"))
		}
	}
}

func TestPublicPageConcurrentMisses(t *testing.T) {
	env := newTestEnv(t)
	env.place(t, env.home.ID, component.Navbar{Title: "Acme", TitleType: "text", Layout: "left"})

	var wg sync.WaitGroup
	codes := make([]int, 8)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = serve(env.public.Page, hostRequest("acme", "/", map[string]string{"*": ""})).Code
		}()
	}
	wg.Wait()
	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("request %d: status = %d", i, code)
		}
	}
}

func TestPublicPost(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	env.mem.posts = append(env.mem.posts,
		models.Post{ID: uuid.New(), BlogID: env.blog.ID, Title: "Launch day", Slug: "launch", Body: "We **shipped** it.<script>x()</script>", Status: models.PostStatusPublished, PublishedAt: &now},
		models.Post{ID: uuid.New(), BlogID: env.blog.ID, Title: "Secret", Slug: "secret", Status: models.PostStatusDraft},
	)

	rec := serve(env.public.Post, hostRequest("acme", "/posts/launch", map[string]string{"slug": "launch"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<strong>shipped</strong>") {
		t.Error("post body should be rendered from Markdown")
	}
	if strings.Contains(body, "<script>") {
		t.Error("post body must be sanitized")
	}

	for _, slug := range []string{"secret", "missing"} {
		rec := serve(env.public.Post, hostRequest("acme", "/posts/"+slug, map[string]string{"slug": slug}))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", slug, rec.Code)
		}
	}
}

func TestMount(t *testing.T) {
	req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/sites/Acme/", nil), map[string]string{"tenant": "Acme"})
	tenant, variant, base := mount(req)
	if tenant != "acme" || variant != variantPath || base != "/sites/acme/" {
		t.Errorf("path mount = %q %q %q", tenant, variant, base)
	}

	tenant, variant, base = mount(hostRequest("acme", "/", nil))
	if tenant != "acme" || variant != variantHost || base != "/" {
		t.Errorf("host mount = %q %q %q", tenant, variant, base)
	}
}
