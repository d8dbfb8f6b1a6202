// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package builder

import (
	"bytes"
	"encoding/json"
	"fmt"

	"inkwell/internal/component"
)

// DraftKind names one sidebar draft. Grid is a single draft whose
// isDynamic flag picks the placed variant.
type DraftKind string

const (
	DraftNavbar   DraftKind = "navbar"
	DraftHero     DraftKind = "hero"
	DraftGrid     DraftKind = "grid"
	DraftForm     DraftKind = "form"
	DraftCarousel DraftKind = "carousel"
	DraftFooter   DraftKind = "footer"
)

// DraftKinds lists the drafts in sidebar order.
var DraftKinds = []DraftKind{DraftNavbar, DraftHero, DraftGrid, DraftForm, DraftCarousel, DraftFooter}

// Drafts holds one independent in-progress configuration per draft kind.
type Drafts struct {
	Navbar   component.Navbar   `json:"navbar"`
	Hero     component.Hero     `json:"hero"`
	Grid     component.Grid     `json:"grid"`
	Form     component.Form     `json:"form"`
	Carousel component.Carousel `json:"carousel"`
	Footer   component.Footer   `json:"footer"`
}

// DefaultDrafts returns the values the sidebar starts from.
func DefaultDrafts() Drafts {
	return Drafts{
		Navbar: component.Navbar{Title: "My Blog", TitleType: "text", Layout: "left", Links: []component.NavLink{}},
		Hero: component.Hero{
			Title: "Welcome", Layout: "centered", Align: "center", Height: 400,
			Buttons: []component.HeroButton{},
		},
		Grid: component.Grid{Columns: 3, Template: "card", Items: []component.GridItem{}, Limit: 6},
		Form: component.Form{
			Title: "Contact us", SubmitText: "Send", SuccessMessage: "Thanks, we'll be in touch.",
			Fields: []component.FormField{{Name: "email", Label: "Email", Type: "email", Required: true}},
		},
		Carousel: component.Carousel{Slides: []component.Slide{}, Interval: 5000, AutoPlay: true, ShowIndicators: true},
		Footer:   component.Footer{Layout: "simple", Columns: []component.FooterColumn{}},
	}
}

// get returns the current draft of kind.
func (d *Drafts) get(kind DraftKind) (any, error) {
	switch kind {
	case DraftNavbar:
		return d.Navbar, nil
	case DraftHero:
		return d.Hero, nil
	case DraftGrid:
		return d.Grid, nil
	case DraftForm:
		return d.Form, nil
	case DraftCarousel:
		return d.Carousel, nil
	case DraftFooter:
		return d.Footer, nil
	}
	return nil, fmt.Errorf("draft %q: %w", kind, ErrUnknownKind)
}

// payload returns the placeable payload the draft of kind would commit.
func (d *Drafts) payload(kind DraftKind) (component.Payload, error) {
	switch kind {
	case DraftNavbar:
		return d.Navbar, nil
	case DraftHero:
		return d.Hero, nil
	case DraftGrid:
		return d.Grid.Variant(), nil
	case DraftForm:
		return d.Form, nil
	case DraftCarousel:
		return d.Carousel, nil
	case DraftFooter:
		return d.Footer, nil
	}
	return nil, fmt.Errorf("draft %q: %w", kind, ErrUnknownKind)
}

// patch merges a JSON object into the draft of kind. Fields absent from
// the patch keep their value; lists in the patch replace the draft's list.
// Unknown fields are rejected, which also rejects dropdowns nested deeper
// than one level. The draft is unchanged when the patch fails.
func (d *Drafts) patch(kind DraftKind, data []byte) (any, error) {
	switch kind {
	case DraftNavbar:
		return mergeInto(&d.Navbar, data)
	case DraftHero:
		return mergeInto(&d.Hero, data)
	case DraftGrid:
		return mergeInto(&d.Grid, data)
	case DraftForm:
		return mergeInto(&d.Form, data)
	case DraftCarousel:
		return mergeInto(&d.Carousel, data)
	case DraftFooter:
		return mergeInto(&d.Footer, data)
	}
	return nil, fmt.Errorf("draft %q: %w", kind, ErrUnknownKind)
}

func mergeInto[T any](dst *T, data []byte) (any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: patch must be a JSON object", ErrPatch)
	}

	// Decode into a deep copy: decoding a list reuses the backing array of
	// the destination slice, which would leak a failed patch into dst.
	var next T
	cur, err := json.Marshal(dst)
	if err != nil {
		return nil, fmt.Errorf("copy draft: %w", err)
	}
	if err := json.Unmarshal(cur, &next); err != nil {
		return nil, fmt.Errorf("copy draft: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPatch, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrPatch)
	}

	*dst = next
	return next, nil
}
