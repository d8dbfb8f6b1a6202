package handlers

import (
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
)

// Validation limits for admin inputs.
const (
	maxNameLen        = 120
	maxDescriptionLen = 500
	maxTitleLen       = 300
	maxBodyLen        = 100_000
	maxExcerptLen     = 1_000
	maxURLLen         = 2_048
)

// validateName checks a blog or page name and returns the first error found.
func validateName(what, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return what + " name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return what + " name is too long (max 120 characters)."
	}
	return ""
}

// validateSettings checks blog presentation settings.
func validateSettings(description, color, font string) string {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 500 characters)."
	}
	if !models.ValidColor(color) {
		return "Background color must be a hex colour like #ffffff."
	}
	if !models.ValidFont(font) {
		return "Unknown font family."
	}
	return ""
}

// validatePost checks post inputs and returns the first error found.
func validatePost(title, body, excerpt, coverURL string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	if len(coverURL) > maxURLLen {
		return "Cover image URL is too long."
	}
	return ""
}
