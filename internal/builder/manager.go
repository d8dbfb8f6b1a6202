// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package builder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/component"
)

// Store is what the Manager needs from persistence: the Persister
// operations plus a way to load a page's components.
type Store interface {
	Persister
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]component.Component, error)
}

// Key identifies a session: one user editing one page.
type Key struct {
	UserID uuid.UUID
	PageID uuid.UUID
}

// Manager keeps builder sessions in memory, loading each from storage the
// first time it is opened. Concurrent editors of the same page get
// separate sessions and the last write wins.
type Manager struct {
	store   Store
	timeout time.Duration

	mu       sync.Mutex
	sessions map[Key]*Session
}

// NewManager creates a Manager. timeout bounds every save; zero means
// DefaultSaveTimeout.
func NewManager(store Store, timeout time.Duration) *Manager {
	return &Manager{
		store:    store,
		timeout:  timeout,
		sessions: make(map[Key]*Session),
	}
}

// Open returns the session for key, loading the page's components if it
// is not open yet.
func (m *Manager) Open(ctx context.Context, key Key) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	existing, err := m.store.ListByPage(ctx, key.PageID)
	if err != nil {
		return nil, fmt.Errorf("open builder session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have opened it while we were loading.
	if s, ok := m.sessions[key]; ok {
		return s, nil
	}
	s := NewSession(key.PageID, existing, m.store, m.timeout)
	m.sessions[key] = s
	slog.Debug("builder session opened", "user_id", key.UserID, "page_id", key.PageID, "components", len(existing))
	return s, nil
}

// Close discards a session. Drafts that were never committed are lost.
func (m *Manager) Close(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// ClosePage discards every session editing pageID, used when the page is
// deleted.
func (m *Manager) ClosePage(pageID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.sessions {
		if k.PageID == pageID {
			delete(m.sessions, k)
		}
	}
}

// Sweep discards sessions unused for longer than idle and returns how many
// were dropped.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, k)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(idle); n > 0 {
				slog.Info("idle builder sessions closed", "count", n)
			}
		}
	}
}
