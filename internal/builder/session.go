// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package builder holds the editing state of a page: one draft per
// component kind and the ordered list of placed components. Mutations are
// applied in memory first and then persisted; a failed save is rolled back
// so memory matches storage again.
package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/component"
	"inkwell/internal/metrics"
)

var (
	// ErrPersist wraps a storage failure. The in-memory change was undone.
	ErrPersist = errors.New("could not save changes")
	// ErrTimeout is returned when storage did not answer in time. The
	// in-memory change was undone.
	ErrTimeout = errors.New("saving changes timed out")
	// ErrIndex is returned for a component position outside the list.
	ErrIndex = errors.New("component index out of range")
	// ErrUnknownKind is returned for a draft kind outside DraftKinds.
	ErrUnknownKind = errors.New("unknown component kind")
	// ErrPatch is returned when a draft patch is not a valid partial draft.
	ErrPatch = errors.New("invalid draft patch")
	// ErrDiscarded is returned by a commit whose component was removed
	// from the page before it was saved. Nothing was stored.
	ErrDiscarded = errors.New("component removed before it was saved")
)

// DefaultSaveTimeout bounds each persistence call.
const DefaultSaveTimeout = 10 * time.Second

// Persister stores component changes for one page. Implementations do not
// roll anything back; the session owns rollback.
type Persister interface {
	Save(ctx context.Context, pageID uuid.UUID, c component.Component) error
	Delete(ctx context.Context, pageID, id uuid.UUID, ids []uuid.UUID) error
	ReplaceOrder(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) error
}

// Session is the builder state of one page. It is safe for concurrent use.
//
// Two locks are held: mu guards the drafts and the list and is only held
// for in-memory work; persistMu serializes calls to the Persister so a
// rollback sees storage in a known state. A commit appends under mu before
// waiting for persistMu, so rapid commits keep the order they were made in
// regardless of how their saves are scheduled.
type Session struct {
	pageID  uuid.UUID
	store   Persister
	timeout time.Duration

	mu         sync.Mutex
	drafts     Drafts
	components []component.Component
	pending    map[uuid.UUID]bool
	lastUsed   time.Time

	persistMu sync.Mutex
}

// NewSession starts a session for a page whose stored components are
// existing. Orders are normalized to list positions.
func NewSession(pageID uuid.UUID, existing []component.Component, store Persister, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	s := &Session{
		pageID:     pageID,
		store:      store,
		timeout:    timeout,
		drafts:     DefaultDrafts(),
		components: slices.Clone(existing),
		pending:    make(map[uuid.UUID]bool),
		lastUsed:   time.Now(),
	}
	renumber(s.components)
	return s
}

// PageID returns the page being edited.
func (s *Session) PageID() uuid.UUID { return s.pageID }

// Draft returns the current draft of kind.
func (s *Session) Draft(kind DraftKind) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.drafts.get(kind)
}

// UpdateDraft merges patch, a partial JSON object, into the draft of kind
// and returns the updated draft. No validation happens here beyond the
// field set; the draft is validated when committed.
func (s *Session) UpdateDraft(kind DraftKind, patch json.RawMessage) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.drafts.patch(kind, patch)
}

// ResetDraft restores the default draft of kind.
func (s *Session) ResetDraft(kind DraftKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	def := DefaultDrafts()
	switch kind {
	case DraftNavbar:
		s.drafts.Navbar = def.Navbar
	case DraftHero:
		s.drafts.Hero = def.Hero
	case DraftGrid:
		s.drafts.Grid = def.Grid
	case DraftForm:
		s.drafts.Form = def.Form
	case DraftCarousel:
		s.drafts.Carousel = def.Carousel
	case DraftFooter:
		s.drafts.Footer = def.Footer
	default:
		return fmt.Errorf("draft %q: %w", kind, ErrUnknownKind)
	}
	return nil
}

// CommitDraft validates the draft of kind and places it as a new component
// at the end of the page. The component is appended immediately with
// order equal to the list length at this moment, then saved. If the save
// fails or times out the component is removed again and the error
// returned; the draft is left as it was either way. A component removed
// while its save was queued is never stored and yields ErrDiscarded.
func (s *Session) CommitDraft(ctx context.Context, kind DraftKind) (component.Component, error) {
	s.mu.Lock()
	s.touch()
	payload, err := s.drafts.payload(kind)
	if err != nil {
		s.mu.Unlock()
		return component.Component{}, err
	}
	if err := component.Validate(payload); err != nil {
		s.mu.Unlock()
		metrics.BuilderCommits.WithLabelValues(string(kind), "invalid").Inc()
		return component.Component{}, err
	}

	c := component.Component{ID: component.NewID(), Order: len(s.components), Payload: payload}
	s.components = append(s.components, c)
	s.pending[c.ID] = true
	s.mu.Unlock()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	// A removal or reorder may have run while this commit waited.
	s.mu.Lock()
	idx := s.indexOf(c.ID)
	if idx < 0 {
		delete(s.pending, c.ID)
		s.mu.Unlock()
		metrics.BuilderCommits.WithLabelValues(string(kind), "discarded").Inc()
		return component.Component{}, fmt.Errorf("commit %s: %w", kind, ErrDiscarded)
	}
	c.Order = idx
	s.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err = s.store.Save(saveCtx, s.pageID, c)
	timedOut := errors.Is(saveCtx.Err(), context.DeadlineExceeded)
	cancel()

	if err != nil {
		s.rollbackAppend(ctx, c.ID)
		if timedOut {
			metrics.BuilderCommits.WithLabelValues(string(kind), "timeout").Inc()
			return component.Component{}, fmt.Errorf("commit %s: %w", kind, ErrTimeout)
		}
		metrics.BuilderCommits.WithLabelValues(string(kind), "persist_error").Inc()
		return component.Component{}, fmt.Errorf("commit %s: %w: %w", kind, ErrPersist, err)
	}

	s.mu.Lock()
	delete(s.pending, c.ID)
	s.mu.Unlock()
	metrics.BuilderCommits.WithLabelValues(string(kind), "ok").Inc()
	return c, nil
}

// rollbackAppend removes an optimistically appended component and deletes
// its row. A failed or timed out save may still have been applied, so the
// delete always runs; it is a no-op when nothing was written. The same
// call closes up the stored order of any components that followed it.
// Called with persistMu held.
func (s *Session) rollbackAppend(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.components = slices.Delete(s.components, idx, idx+1)
	delete(s.pending, id)
	renumber(s.components)
	ids := s.ids()
	s.mu.Unlock()

	metrics.BuilderRollbacks.Inc()
	slog.Warn("builder commit rolled back", "page_id", s.pageID, "component_id", id)

	fixCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.store.Delete(fixCtx, s.pageID, id, ids); err != nil {
		slog.Error("delete after rollback failed", "page_id", s.pageID, "component_id", id, "error", err)
	}
}

// Remove deletes the component at index and renumbers the rest. On a
// storage failure the component is put back where it was.
func (s *Session) Remove(ctx context.Context, index int) (component.Component, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.touch()
	if index < 0 || index >= len(s.components) {
		s.mu.Unlock()
		return component.Component{}, fmt.Errorf("remove %d of %d: %w", index, len(s.components), ErrIndex)
	}
	removed := s.components[index]
	s.components = slices.Delete(s.components, index, index+1)
	renumber(s.components)
	ids := s.ids()
	s.mu.Unlock()

	if err := s.persist(ctx, func(ctx context.Context) error {
		return s.store.Delete(ctx, s.pageID, removed.ID, ids)
	}); err != nil {
		s.mu.Lock()
		at := min(index, len(s.components))
		s.components = slices.Insert(s.components, at, removed)
		renumber(s.components)
		s.mu.Unlock()
		metrics.BuilderRollbacks.Inc()
		return component.Component{}, fmt.Errorf("remove component: %w", err)
	}
	return removed, nil
}

// Reorder moves the component at from to position to and renumbers the
// page. On a storage failure the move is undone.
func (s *Session) Reorder(ctx context.Context, from, to int) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.touch()
	n := len(s.components)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return fmt.Errorf("move %d to %d of %d: %w", from, to, n, ErrIndex)
	}
	if from == to {
		s.mu.Unlock()
		return nil
	}
	moved := s.components[from]
	move(s.components, from, to)
	ids := s.ids()
	s.mu.Unlock()

	if err := s.persist(ctx, func(ctx context.Context) error {
		return s.store.ReplaceOrder(ctx, s.pageID, ids)
	}); err != nil {
		s.mu.Lock()
		if i := s.indexOf(moved.ID); i >= 0 {
			move(s.components, i, min(from, len(s.components)-1))
		}
		s.mu.Unlock()
		metrics.BuilderRollbacks.Inc()
		return fmt.Errorf("reorder components: %w", err)
	}
	return nil
}

// persist runs fn under the save timeout and maps its failure to ErrTimeout
// or ErrPersist.
func (s *Session) persist(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %w", ErrPersist, err)
}

// Components returns a copy of the placed components in order.
func (s *Session) Components() []component.Component {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.components)
}

// Snapshot returns a serializable copy of the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		PageID:     s.pageID,
		Drafts:     s.drafts,
		Components: make([]ComponentView, 0, len(s.components)),
	}
	for _, c := range s.components {
		typ, data, err := component.Encode(c.Payload)
		if err != nil {
			continue
		}
		snap.Components = append(snap.Components, ComponentView{
			ID: c.ID, Kind: c.Kind(), Type: typ, Order: c.Order, Data: data, Pending: s.pending[c.ID],
		})
	}
	return snap
}

// idleSince reports when the session was last used.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// touch records use. Called with mu held.
func (s *Session) touch() { s.lastUsed = time.Now() }

// indexOf returns the position of id, or -1. Called with mu held.
func (s *Session) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.components, func(c component.Component) bool { return c.ID == id })
}

// ids returns the component ids in order. Called with mu held.
func (s *Session) ids() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.components))
	for i, c := range s.components {
		ids[i] = c.ID
	}
	return ids
}

// Snapshot is the serializable state of a Session.
type Snapshot struct {
	PageID     uuid.UUID       `json:"page_id"`
	Drafts     Drafts          `json:"drafts"`
	Components []ComponentView `json:"components"`
}

// ComponentView is a placed component as shown to the builder UI.
type ComponentView struct {
	ID      uuid.UUID       `json:"id"`
	Kind    component.Kind  `json:"kind"`
	Type    string          `json:"type"`
	Order   int             `json:"order"`
	Data    json.RawMessage `json:"data"`
	Pending bool            `json:"pending,omitempty"`
}

// renumber sets each component's order to its position.
func renumber(list []component.Component) {
	for i := range list {
		list[i].Order = i
	}
}

// move shifts the element at from to position to and renumbers.
func move(list []component.Component, from, to int) {
	c := list[from]
	if from < to {
		copy(list[from:to], list[from+1:to+1])
	} else {
		copy(list[to+1:from+1], list[to:from])
	}
	list[to] = c
	renumber(list)
}
