// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and the validation rules blog and page slugs must satisfy.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// validSlug is a lowercase hyphen-separated run of letters and digits.
	validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// MaxLength is the longest slug accepted. Blog slugs become DNS labels,
// which are limited to 63 octets.
const MaxLength = 63

// reserved lists blog slugs that would collide with platform hosts or
// routes when used as a subdomain.
var reserved = map[string]bool{
	"www":    true,
	"admin":  true,
	"api":    true,
	"app":    true,
	"sites":  true,
	"forms":  true,
	"static": true,
	"mail":   true,
}

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Valid reports whether s is a well-formed slug.
func Valid(s string) bool {
	return len(s) <= MaxLength && validSlug.MatchString(s)
}

// Truncate shortens s to at most MaxLength bytes without leaving a
// trailing hyphen.
func Truncate(s string) string {
	if len(s) <= MaxLength {
		return s
	}
	return strings.TrimRight(s[:MaxLength], "-")
}

// Reserved reports whether s may not be used as a blog slug.
func Reserved(s string) bool {
	return reserved[s]
}
