// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package component

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// gridRecord is the stored shape shared by both grid variants.
type gridRecord struct {
	Title     string     `json:"title"`
	Columns   int        `json:"columns"`
	Template  string     `json:"template"`
	Items     []GridItem `json:"items"`
	IsDynamic bool       `json:"isDynamic"`
	Limit     int        `json:"limit,omitempty"`
}

// Encode returns the stored type tag and JSON data for a payload.
func Encode(p Payload) (string, json.RawMessage, error) {
	var v any
	switch p := p.(type) {
	case Raw:
		return p.Type, p.Data, nil
	case GridStatic:
		items := p.Items
		if items == nil {
			items = []GridItem{}
		}
		v = gridRecord{Title: p.Title, Columns: p.Columns, Template: p.Template, Items: items}
	case GridDynamic:
		v = gridRecord{Title: p.Title, Columns: p.Columns, Template: p.Template, Items: []GridItem{}, IsDynamic: true, Limit: p.Limit}
	case nil:
		return "", nil, fmt.Errorf("encode component: nil payload")
	default:
		v = p
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", p.Kind(), err)
	}
	return storedType(p.Kind()), data, nil
}

// Decode builds a payload from a stored row. It never fails: an unknown
// tag or data that does not fit the tagged shape yields a Raw payload.
func Decode(typeTag string, data json.RawMessage) Payload {
	var (
		p   Payload
		err error
	)

	switch typeTag {
	case TypeNavbar:
		var v Navbar
		err = json.Unmarshal(data, &v)
		p = v
	case TypeHero:
		var v Hero
		err = json.Unmarshal(data, &v)
		p = v
	case TypeGrid:
		var g gridRecord
		err = json.Unmarshal(data, &g)
		if g.IsDynamic {
			p = GridDynamic{Title: g.Title, Columns: g.Columns, Template: g.Template, Limit: g.Limit}
		} else {
			p = GridStatic{Title: g.Title, Columns: g.Columns, Template: g.Template, Items: g.Items}
		}
	case TypeForm:
		var v Form
		err = json.Unmarshal(data, &v)
		p = v
	case TypeCarousel:
		var v Carousel
		err = json.Unmarshal(data, &v)
		p = v
	case TypeFooter:
		var v Footer
		err = json.Unmarshal(data, &v)
		p = v
	default:
		return Raw{Type: typeTag, Data: data, Err: "unknown component type"}
	}

	if err != nil {
		return Raw{Type: typeTag, Data: data, Err: err.Error()}
	}
	return p
}

// FromRow decodes a stored component row.
func FromRow(id uuid.UUID, order int, typeTag string, data json.RawMessage) Component {
	return Component{ID: id, Order: order, Payload: Decode(typeTag, data)}
}
