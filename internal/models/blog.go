// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Default presentation settings applied to a new blog.
const (
	DefaultBackgroundColor = "#ffffff"
	DefaultFontFamily      = "system"
)

// FontStacks maps the selectable font keys to the CSS stacks written into
// the rendered document. Stacks avoid quotes so they pass html/template's
// CSS value filter unchanged.
var FontStacks = map[string]string{
	"system":       "system-ui, sans-serif",
	"inter":        "Inter, sans-serif",
	"georgia":      "Georgia, serif",
	"merriweather": "Merriweather, serif",
	"mono":         "ui-monospace, monospace",
}

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Blog is a tenant: it owns pages, posts and form submissions and is served
// on its own subdomain.
type Blog struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	BackgroundColor string    `json:"background_color"`
	FontFamily      string    `json:"font_family"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FontStack returns the CSS font stack for the blog, falling back to the
// system stack for unknown keys.
func (b *Blog) FontStack() string {
	if stack, ok := FontStacks[b.FontFamily]; ok {
		return stack
	}
	return FontStacks[DefaultFontFamily]
}

// Background returns the blog background colour, or the default when the
// stored value is not a hex colour.
func (b *Blog) Background() string {
	if ValidColor(b.BackgroundColor) {
		return b.BackgroundColor
	}
	return DefaultBackgroundColor
}

// ValidColor reports whether s is a #rgb or #rrggbb colour.
func ValidColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// ValidFont reports whether key is a selectable font.
func ValidFont(key string) bool {
	_, ok := FontStacks[key]
	return ok
}
