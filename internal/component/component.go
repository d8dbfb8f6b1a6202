// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package component defines the closed set of page-builder blocks. Each block
// is a Component whose Payload is one arm of a sum type; the arm determines
// both the stored JSON shape and which renderer the engine dispatches to.
package component

import (
	"github.com/google/uuid"
)

// Kind is the internal discriminant of a payload. It is finer-grained than
// the stored type tag: a stored "grid" row decodes to either KindGridStatic
// or KindGridDynamic depending on its isDynamic flag.
type Kind string

const (
	KindNavbar      Kind = "navbar"
	KindHero        Kind = "hero"
	KindGridStatic  Kind = "grid-static"
	KindGridDynamic Kind = "grid-dynamic"
	KindForm        Kind = "form"
	KindCarousel    Kind = "carousel"
	KindFooter      Kind = "footer"

	// KindUnknown is carried only by Raw. It can be decoded from storage
	// but never committed from a draft.
	KindUnknown Kind = "unknown"
)

// Kinds lists every renderable kind, in palette order.
var Kinds = []Kind{
	KindNavbar, KindHero, KindGridStatic, KindGridDynamic,
	KindForm, KindCarousel, KindFooter,
}

// Payload is implemented by every component configuration arm. isPayload
// seals the set to this package.
type Payload interface {
	Kind() Kind
	isPayload()
}

// Component is one placed block on a page.
type Component struct {
	ID      uuid.UUID
	Order   int
	Payload Payload
}

// Kind returns the discriminant of the component's payload.
func (c Component) Kind() Kind {
	if c.Payload == nil {
		return KindUnknown
	}
	return c.Payload.Kind()
}

// StoredType returns the type tag written to the components table.
func (c Component) StoredType() string {
	if raw, ok := c.Payload.(Raw); ok {
		return raw.Type
	}
	return storedType(c.Kind())
}

// NewID returns a fresh component identifier. UUIDv7 keeps the
// timestamp-derived ordering of the identifier while adding enough random
// bits that two commits in the same millisecond do not collide.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// storedType maps an internal kind to the tag persisted in the type column.
func storedType(k Kind) string {
	switch k {
	case KindGridStatic, KindGridDynamic:
		return TypeGrid
	default:
		return string(k)
	}
}

// Stored type tags.
const (
	TypeNavbar   = "navbar"
	TypeHero     = "hero"
	TypeGrid     = "grid"
	TypeForm     = "form"
	TypeCarousel = "carousel"
	TypeFooter   = "footer"
)
