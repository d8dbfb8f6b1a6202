// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/builder"
	"inkwell/internal/component"
	"inkwell/internal/engine"
	"inkwell/internal/models"
)

// builderSession opens the caller's builder session on the {page} of the
// {blog} URL parameters.
func (a *Admin) builderSession(w http.ResponseWriter, r *http.Request) (*models.Blog, *models.Page, *builder.Session, bool) {
	blog, page, sess, ok := a.ownedPage(w, r)
	if !ok {
		return nil, nil, nil, false
	}
	bs, err := a.Builder.Open(r.Context(), builder.Key{UserID: sess.UserID, PageID: page.ID})
	if err != nil {
		fail(w, r, "open builder", err)
		return nil, nil, nil, false
	}
	return blog, page, bs, true
}

// BuilderState returns the drafts and placed components of the page.
func (a *Admin) BuilderState(w http.ResponseWriter, r *http.Request) {
	_, _, bs, ok := a.builderSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, bs.Snapshot())
}

// BuilderClose discards the caller's session. Uncommitted drafts are lost.
func (a *Admin) BuilderClose(w http.ResponseWriter, r *http.Request) {
	_, page, sess, ok := a.ownedPage(w, r)
	if !ok {
		return
	}
	a.Builder.Close(builder.Key{UserID: sess.UserID, PageID: page.ID})
	w.WriteHeader(http.StatusNoContent)
}

// DraftGet returns one draft.
func (a *Admin) DraftGet(w http.ResponseWriter, r *http.Request) {
	_, _, bs, ok := a.builderSession(w, r)
	if !ok {
		return
	}
	draft, err := bs.Draft(draftKind(r))
	if err != nil {
		fail(w, r, "get draft", err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// DraftUpdate merges a partial JSON object into one draft. Nothing is
// validated until the draft is committed.
func (a *Admin) DraftUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, bs, ok := a.builderSession(w, r)
	if !ok {
		return
	}
	patch, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	draft, err := bs.UpdateDraft(draftKind(r), json.RawMessage(patch))
	if err != nil {
		fail(w, r, "update draft", err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// DraftReset restores one draft to its defaults.
func (a *Admin) DraftReset(w http.ResponseWriter, r *http.Request) {
	_, _, bs, ok := a.builderSession(w, r)
	if !ok {
		return
	}
	kind := draftKind(r)
	if err := bs.ResetDraft(kind); err != nil {
		fail(w, r, "reset draft", err)
		return
	}
	draft, err := bs.Draft(kind)
	if err != nil {
		fail(w, r, "reset draft", err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// DraftCommit validates a draft and places it at the end of the page.
// Invalid drafts answer 400 with the offending fields.
func (a *Admin) DraftCommit(w http.ResponseWriter, r *http.Request) {
	blog, _, bs, ok := a.builderSession(w, r)
	if !ok {
		return
	}
	c, err := bs.CommitDraft(r.Context(), draftKind(r))
	if err != nil {
		fail(w, r, "commit draft", err)
		return
	}
	a.invalidateTenant(r.Context(), blog.Slug)
	writeJSON(w, http.StatusCreated, viewOf(c))
}

// ComponentRemove deletes the component at {index}.
func (a *Admin) ComponentRemove(w http.ResponseWriter, r *http.Request) {
	blog, _, bs, ok := a.builderSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	removed, err := bs.Remove(r.Context(), index)
	if err != nil {
		fail(w, r, "remove component", err)
		return
	}
	if a.Engine != nil {
		a.Engine.Invalidate(removed.ID)
	}
	a.invalidateTenant(r.Context(), blog.Slug)
	writeJSON(w, http.StatusOK, bs.Snapshot().Components)
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// ComponentReorder moves one component to a new position.
func (a *Admin) ComponentReorder(w http.ResponseWriter, r *http.Request) {
	blog, _, bs, ok := a.builderSession(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.From == nil || req.To == nil {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	if err := bs.Reorder(r.Context(), *req.From, *req.To); err != nil {
		fail(w, r, "reorder components", err)
		return
	}
	a.invalidateTenant(r.Context(), blog.Slug)
	writeJSON(w, http.StatusOK, bs.Snapshot().Components)
}

// BuilderPreview renders the session's components with the same engine
// and document shell as the public site.
func (a *Admin) BuilderPreview(w http.ResponseWriter, r *http.Request) {
	blog, page, bs, ok := a.builderSession(w, r)
	if !ok {
		return
	}
	html, err := a.Engine.RenderDocument(r.Context(), engine.Document{
		Blog:       *blog,
		BaseURL:    pathBaseURL(blog.Slug),
		Title:      page.Name,
		PageSlug:   page.Slug,
		Components: bs.Components(),
		Preview:    true,
	})
	if err != nil {
		fail(w, r, "render preview", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(html)
}

func draftKind(r *http.Request) builder.DraftKind {
	return builder.DraftKind(chi.URLParam(r, "kind"))
}

// viewOf encodes a placed component the way the builder snapshot does.
func viewOf(c component.Component) builder.ComponentView {
	typ, data, err := component.Encode(c.Payload)
	if err != nil {
		typ, data = c.StoredType(), nil
	}
	return builder.ComponentView{ID: c.ID, Kind: c.Kind(), Type: typ, Order: c.Order, Data: data}
}
