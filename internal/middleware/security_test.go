package middleware

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
)

func secureResponse(t *testing.T, path string) http.Header {
	t.Helper()
	handler := SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr.Header()
}

func TestSecureHeadersOnEveryResponse(t *testing.T) {
	for _, path := range []string{"/", "/sites/acme/about", "/admin/blogs", "/health"} {
		h := secureResponse(t, path)
		if h.Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s: missing nosniff", path)
		}
		if h.Get("Referrer-Policy") != "strict-origin-when-cross-origin" {
			t.Errorf("%s: Referrer-Policy = %q", path, h.Get("Referrer-Policy"))
		}
		if h.Get("Content-Security-Policy") == "" {
			t.Errorf("%s: missing CSP", path)
		}
	}
}

func TestContentSecurityPolicy(t *testing.T) {
	h := secureResponse(t, "/admin/blogs/acme/pages/home/builder/preview")
	directives := strings.Split(h.Get("Content-Security-Policy"), "; ")

	tests := []struct {
		name      string
		directive string
	}{
		// The builder frames its preview from the same origin.
		{"preview can be framed by the editor", "frame-ancestors 'self'"},
		// Hero height and grid columns are written as style attributes.
		{"inline component styles", "style-src 'self' 'unsafe-inline'"},
		// Component images point at object storage or any HTTPS CDN.
		{"uploaded images from https", "img-src 'self' https: data:"},
		// Form components post to /forms on the same host.
		{"form posts stay on site", "form-action 'self'"},
		// Documents set <base href>, which must not leave the site.
		{"base href is same origin", "base-uri 'self'"},
		{"everything else same origin", "default-src 'self'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !slices.Contains(directives, tt.directive) {
				t.Errorf("CSP %v lacks %q", directives, tt.directive)
			}
		})
	}
	if h.Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Errorf("X-Frame-Options = %q, want SAMEORIGIN for the preview frame", h.Get("X-Frame-Options"))
	}
	if strings.Contains(h.Get("Content-Security-Policy"), "script-src") {
		t.Error("rendered pages ship no scripts; script-src should fall back to default-src")
	}
}
