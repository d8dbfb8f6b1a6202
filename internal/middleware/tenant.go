// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"inkwell/internal/slug"
)

const tenantKey contextKey = "tenant"

// Tenant resolves "{slug}.{baseDomain}" hosts to a blog slug and stores it
// in the request context. Requests to the base domain itself, or to hosts
// outside it, pass through without a tenant.
func Tenant(baseDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tenant, ok := TenantFromHost(r.Host, baseDomain); ok {
				r = r.WithContext(WithTenant(r.Context(), tenant))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TenantFromHost extracts the blog slug from a tenant host name.
func TenantFromHost(host, baseDomain string) (string, bool) {
	if baseDomain == "" {
		return "", false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	base := strings.ToLower(strings.TrimPrefix(baseDomain, "."))

	label, ok := strings.CutSuffix(host, "."+base)
	if !ok || !slug.Valid(label) || slug.Reserved(label) {
		return "", false
	}
	return label, true
}

// WithTenant returns a copy of ctx carrying the tenant slug.
func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantKey, tenant)
}

// TenantFromCtx returns the tenant resolved from the host, or "".
func TenantFromCtx(ctx context.Context) string {
	tenant, _ := ctx.Value(tenantKey).(string)
	return tenant
}
