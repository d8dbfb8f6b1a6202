// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package component

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid component")

// fieldNameRe restricts form field names to identifiers usable as POST keys.
var fieldNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// validate is shared by all payloads; validator caches struct metadata
// internally so a single instance is reused.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so errors line up with what the sidebar sends.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("fieldname", func(fl validator.FieldLevel) bool {
		return fieldNameRe.MatchString(fl.Field().String())
	})

	return v
}

// FieldError describes one failed constraint.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError lists every constraint a payload failed.
type ValidationError struct {
	Kind   Kind
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s (%s=%s)", f.Field, f.Rule, f.Param))
		} else {
			parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
		}
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate checks a payload against its per-arm constraints. Raw payloads
// are always rejected: they exist only to render legacy rows.
func Validate(p Payload) error {
	if p == nil {
		return &ValidationError{Kind: KindUnknown, Fields: []FieldError{{Field: "payload", Rule: "required"}}}
	}
	if _, ok := p.(Raw); ok {
		return &ValidationError{Kind: KindUnknown, Fields: []FieldError{{Field: "type", Rule: "oneof"}}}
	}

	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %s: %w", p.Kind(), err)
	}

	out := &ValidationError{Kind: p.Kind()}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: trimNamespace(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// trimNamespace drops the leading struct name ("Navbar.links[0].text" ->
// "links[0].text").
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
