// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"inkwell/internal/component"
	"inkwell/internal/markdown"
	"inkwell/internal/metrics"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// Limits on public form posts.
const (
	maxFormBody  = 64 << 10
	maxFieldLen  = 5_000
	formAccepted = "accepted"
	formRejected = "rejected"
	formFailed   = "error"
)

// Forms accepts visitor submissions to form components.
type Forms struct {
	components  ComponentFinder
	submissions SubmissionRepo
	validate    *validator.Validate
}

// NewForms creates a new Forms handler group.
func NewForms(components ComponentFinder, submissions SubmissionRepo) *Forms {
	return &Forms{
		components:  components,
		submissions: submissions,
		validate:    validator.New(),
	}
}

// Submit stores a submission to the form component {component}. Only the
// fields the form declares are kept, and their values are stripped of
// markup. A browser post is redirected back to the page it came from.
func (f *Forms) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "component"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	blogID, row, err := f.components.FindWithBlog(r.Context(), id)
	if err != nil {
		metrics.FormSubmissions.WithLabelValues(formFailed).Inc()
		fail(w, r, "find form", err)
		return
	}
	if row == nil {
		http.NotFound(w, r)
		return
	}
	form, ok := component.FromRow(row.ID, row.Order, row.Type, row.Data).Payload.(component.Form)
	if !ok {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		metrics.FormSubmissions.WithLabelValues(formRejected).Inc()
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	values, problems := f.collect(form, r.PostForm)
	if len(problems) > 0 {
		metrics.FormSubmissions.WithLabelValues(formRejected).Inc()
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "submission rejected",
			"fields": problems,
		})
		return
	}

	if _, err := f.submissions.Create(r.Context(), &models.FormSubmission{
		BlogID:      blogID,
		PageID:      row.PageID,
		ComponentID: row.ID,
		Values:      values,
		RemoteAddr:  middleware.ClientIP(r),
	}); err != nil {
		metrics.FormSubmissions.WithLabelValues(formFailed).Inc()
		fail(w, r, "store submission", err)
		return
	}
	metrics.FormSubmissions.WithLabelValues(formAccepted).Inc()

	if back, ok := sameHostReferer(r); ok && !wantsJSON(r) {
		http.Redirect(w, r, back+"#c-"+row.ID.String(), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": form.SuccessMessage})
}

// collect extracts the declared fields from posted values. It returns the
// cleaned values and, per offending field, why it was rejected.
func (f *Forms) collect(form component.Form, posted url.Values) (map[string]string, map[string]string) {
	values := make(map[string]string, len(form.Fields))
	problems := make(map[string]string)
	for _, field := range form.Fields {
		raw := strings.TrimSpace(posted.Get(field.Name))
		v := raw
		if field.Type != "select" {
			v = strings.TrimSpace(markdown.StripTags(raw))
		}
		switch {
		case v == "" && field.Required:
			problems[field.Name] = "required"
		case v == "":
		case utf8.RuneCountInString(v) > maxFieldLen:
			problems[field.Name] = "too long"
		case field.Type == "email" && f.validate.Var(v, "email") != nil:
			problems[field.Name] = "invalid email"
		// Options are fixed by the form owner, so a matching value is kept
		// verbatim.
		case field.Type == "select" && !slices.Contains(field.Options, v):
			problems[field.Name] = "not an option"
		default:
			values[field.Name] = v
		}
	}
	return values, problems
}

// sameHostReferer returns the Referer path when it points at this host.
func sameHostReferer(r *http.Request) (string, bool) {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host == "" || !strings.EqualFold(ref.Host, r.Host) {
		return "", false
	}
	return ref.EscapedPath(), true
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
