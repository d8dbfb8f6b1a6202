// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package component

import "encoding/json"

// Navbar is the top navigation bar.
type Navbar struct {
	Title     string    `json:"title" validate:"max=120"`
	TitleType string    `json:"titleType" validate:"oneof=text image"`
	LogoURL   string    `json:"logoUrl" validate:"required_if=TitleType image,omitempty,url,max=2048"`
	Layout    string    `json:"layout" validate:"oneof=left center split"`
	Links     []NavLink `json:"links" validate:"max=12,dive"`
}

// NavLink is a top-level navigation entry. It may open a one-level
// dropdown; DropdownLink has no DropdownItems so deeper menus cannot be
// built.
type NavLink struct {
	Text          string         `json:"text" validate:"required,max=80"`
	Href          string         `json:"href" validate:"required,max=2048"`
	Target        string         `json:"target" validate:"omitempty,oneof=_self _blank"`
	Variant       string         `json:"variant" validate:"omitempty,oneof=link button"`
	DropdownItems []DropdownLink `json:"dropdownItems,omitempty" validate:"max=12,dive"`
}

// DropdownLink is an entry inside a NavLink dropdown.
type DropdownLink struct {
	Text    string `json:"text" validate:"required,max=80"`
	Href    string `json:"href" validate:"required,max=2048"`
	Target  string `json:"target" validate:"omitempty,oneof=_self _blank"`
	Variant string `json:"variant" validate:"omitempty,oneof=link button"`
}

// Hero is the large banner block.
type Hero struct {
	Title    string       `json:"title" validate:"required,max=200"`
	Subtitle string       `json:"subtitle" validate:"max=600"`
	ImageURL string       `json:"imageUrl" validate:"omitempty,url,max=2048"`
	Layout   string       `json:"layout" validate:"oneof=centered split background"`
	Align    string       `json:"align" validate:"oneof=left center right"`
	Height   int          `json:"height" validate:"min=200,max=1000"`
	Buttons  []HeroButton `json:"buttons" validate:"max=3,dive"`
}

// HeroButton is a call-to-action inside a Hero.
type HeroButton struct {
	Text    string `json:"text" validate:"required,max=60"`
	Href    string `json:"href" validate:"required,max=2048"`
	Variant string `json:"variant" validate:"oneof=primary secondary"`
}

// GridItem is one static card of a grid.
type GridItem struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url,max=2048"`
	Href        string `json:"href" validate:"max=2048"`
}

// Grid is the draft shape of the grid block as edited in the sidebar. It is
// never placed on a page directly: Variant splits it into GridStatic or
// GridDynamic.
type Grid struct {
	Title     string     `json:"title"`
	Columns   int        `json:"columns"`
	Template  string     `json:"template"`
	Items     []GridItem `json:"items"`
	IsDynamic bool       `json:"isDynamic"`
	Limit     int        `json:"limit"`
}

// Variant returns the placeable arm selected by IsDynamic.
func (g Grid) Variant() Payload {
	if g.IsDynamic {
		return GridDynamic{Title: g.Title, Columns: g.Columns, Template: g.Template, Limit: g.Limit}
	}
	return GridStatic{Title: g.Title, Columns: g.Columns, Template: g.Template, Items: g.Items}
}

// GridStatic renders its own Items.
type GridStatic struct {
	Title    string     `json:"title" validate:"max=200"`
	Columns  int        `json:"columns" validate:"min=1,max=6"`
	Template string     `json:"template" validate:"oneof=card minimal overlay"`
	Items    []GridItem `json:"items" validate:"min=1,max=48,dive"`
}

// GridDynamic renders the tenant's most recent published posts instead of
// stored items.
type GridDynamic struct {
	Title    string `json:"title" validate:"max=200"`
	Columns  int    `json:"columns" validate:"min=1,max=6"`
	Template string `json:"template" validate:"oneof=card minimal overlay"`
	Limit    int    `json:"limit" validate:"min=1,max=24"`
}

// FormField is one input of a Form.
type FormField struct {
	Name        string   `json:"name" validate:"required,max=64,fieldname"`
	Label       string   `json:"label" validate:"required,max=120"`
	Type        string   `json:"type" validate:"oneof=text email textarea number checkbox select"`
	Placeholder string   `json:"placeholder" validate:"max=200"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty" validate:"required_if=Type select,max=50,dive,required,max=120"`
}

// Form is a contact/subscribe form whose submissions are captured per blog.
type Form struct {
	Title          string      `json:"title" validate:"max=200"`
	Description    string      `json:"description" validate:"max=1000"`
	SubmitText     string      `json:"submitText" validate:"required,max=60"`
	SuccessMessage string      `json:"successMessage" validate:"max=300"`
	Fields         []FormField `json:"fields" validate:"min=1,max=20,unique=Name,dive"`
}

// Slide is one carousel frame.
type Slide struct {
	ImageURL string `json:"imageUrl" validate:"required,url,max=2048"`
	Caption  string `json:"caption" validate:"max=300"`
	Href     string `json:"href" validate:"max=2048"`
}

// Carousel is a self-advancing slideshow.
type Carousel struct {
	Slides         []Slide `json:"slides" validate:"min=1,max=20,dive"`
	Interval       int     `json:"interval" validate:"min=1000,max=20000"`
	AutoPlay       bool    `json:"autoPlay"`
	ShowIndicators bool    `json:"showIndicators"`
}

// FooterLink is a single footer entry.
type FooterLink struct {
	Text string `json:"text" validate:"required,max=80"`
	Href string `json:"href" validate:"required,max=2048"`
}

// FooterColumn groups footer links under a heading.
type FooterColumn struct {
	Title string       `json:"title" validate:"max=80"`
	Links []FooterLink `json:"links" validate:"max=12,dive"`
}

// Footer is the page footer.
type Footer struct {
	Copyright string         `json:"copyright" validate:"max=200"`
	Layout    string         `json:"layout" validate:"oneof=columns simple"`
	Columns   []FooterColumn `json:"columns" validate:"max=6,dive"`
}

// Raw holds a stored row whose type tag is unknown or whose data did not
// decode into the tagged shape. It is rendered as a JSON dump.
type Raw struct {
	Type string
	Data json.RawMessage
	Err  string
}

func (Navbar) Kind() Kind      { return KindNavbar }
func (Hero) Kind() Kind        { return KindHero }
func (GridStatic) Kind() Kind  { return KindGridStatic }
func (GridDynamic) Kind() Kind { return KindGridDynamic }
func (Form) Kind() Kind        { return KindForm }
func (Carousel) Kind() Kind    { return KindCarousel }
func (Footer) Kind() Kind      { return KindFooter }
func (Raw) Kind() Kind         { return KindUnknown }

func (Navbar) isPayload()      {}
func (Hero) isPayload()        {}
func (GridStatic) isPayload()  {}
func (GridDynamic) isPayload() {}
func (Form) isPayload()        {}
func (Carousel) isPayload()    {}
func (Footer) isPayload()      {}
func (Raw) isPayload()         {}
