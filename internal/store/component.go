// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"bytes"
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"inkwell/internal/component"
	"inkwell/internal/models"
)

// ComponentStore persists page components. Every mutation that changes the
// set of components on a page rewrites the order of the whole page in the
// same transaction, so stored order values stay contiguous.
type ComponentStore struct {
	db *sql.DB
}

// NewComponentStore creates a new ComponentStore with the given database connection.
func NewComponentStore(db *sql.DB) *ComponentStore {
	return &ComponentStore{db: db}
}

// Save inserts one component row at the order it was assigned.
func (s *ComponentStore) Save(ctx context.Context, pageID uuid.UUID, c component.Component) error {
	typ, data, err := component.Encode(c.Payload)
	if err != nil {
		return fmt.Errorf("save component: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO components (id, page_id, type, sort_order, data)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, pageID, typ, c.Order, []byte(data))
	if err != nil {
		return fmt.Errorf("save component: %w", err)
	}
	return nil
}

// Delete removes a component and renumbers the page to match ids, the
// remaining components in their new order.
func (s *ComponentStore) Delete(ctx context.Context, pageID, id uuid.UUID, ids []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete component begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM components WHERE id = $1 AND page_id = $2`, id, pageID); err != nil {
		return fmt.Errorf("delete component: %w", err)
	}
	if err := replaceOrder(ctx, tx, pageID, ids); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete component commit: %w", err)
	}
	return nil
}

// ReplaceOrder renumbers a page so that ids[i] has order i.
func (s *ComponentStore) ReplaceOrder(ctx context.Context, pageID uuid.UUID, ids []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reorder begin: %w", err)
	}
	defer tx.Rollback()

	if err := replaceOrder(ctx, tx, pageID, ids); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reorder commit: %w", err)
	}
	return nil
}

// replaceOrder gives every listed component its index as order. Listed ids
// with no row yet keep their slot free. Rows the caller did not list
// (written by another session) are moved after the listed ones, keeping
// their relative order. The unique (page_id, sort_order) constraint is
// deferred, so intermediate states may collide.
func replaceOrder(ctx context.Context, tx *sql.Tx, pageID uuid.UUID, ids []uuid.UUID) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM components WHERE page_id = $1 ORDER BY sort_order, created_at, id FOR UPDATE
	`, pageID)
	if err != nil {
		return fmt.Errorf("reorder load: %w", err)
	}
	var existing []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("reorder scan: %w", err)
		}
		existing = append(existing, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reorder load: %w", err)
	}

	orders := planOrder(existing, ids)
	for _, id := range existing {
		if _, err := tx.ExecContext(ctx, `
			UPDATE components SET sort_order = $1, updated_at = NOW()
			WHERE id = $2 AND sort_order <> $1
		`, orders[id], id); err != nil {
			return fmt.Errorf("reorder update: %w", err)
		}
	}
	return nil
}

// planOrder computes the new order of every existing row: the index in
// wanted for listed rows, then len(wanted)+k for unlisted rows in their
// current order.
func planOrder(existing, wanted []uuid.UUID) map[uuid.UUID]int {
	pos := make(map[uuid.UUID]int, len(wanted))
	for i, id := range wanted {
		pos[id] = i
	}

	orders := make(map[uuid.UUID]int, len(existing))
	next := len(wanted)
	for _, id := range existing {
		if i, ok := pos[id]; ok {
			orders[id] = i
			continue
		}
		orders[id] = next
		next++
	}
	return orders
}

// ListByPage returns a page's components in ascending order.
func (s *ComponentStore) ListByPage(ctx context.Context, pageID uuid.UUID) ([]component.Component, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, type, sort_order, data, created_at, updated_at
		FROM components WHERE page_id = $1
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	var list []models.ComponentRow
	for rows.Next() {
		var r models.ComponentRow
		var data []byte
		if err := rows.Scan(&r.ID, &r.PageID, &r.Type, &r.Order, &data, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		r.Data = json.RawMessage(data)
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	sortComponentRows(list)
	out := make([]component.Component, 0, len(list))
	for _, r := range list {
		out = append(out, component.FromRow(r.ID, r.Order, r.Type, r.Data))
	}
	return out, nil
}

// FindWithBlog returns a stored component row and the id of the blog that
// owns it. A missing component yields (uuid.Nil, nil, nil).
func (s *ComponentStore) FindWithBlog(ctx context.Context, id uuid.UUID) (uuid.UUID, *models.ComponentRow, error) {
	var r models.ComponentRow
	var data []byte
	var blogID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.page_id, c.type, c.sort_order, c.data, c.created_at, c.updated_at, p.blog_id
		FROM components c JOIN pages p ON p.id = c.page_id
		WHERE c.id = $1
	`, id).Scan(&r.ID, &r.PageID, &r.Type, &r.Order, &data, &r.CreatedAt, &r.UpdatedAt, &blogID)
	if noRows(err) {
		return uuid.Nil, nil, nil
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("find component: %w", err)
	}
	r.Data = json.RawMessage(data)
	return blogID, &r, nil
}

// displayRow is one row of the blog -> pages -> components left join.
// Page and component columns are null for pages without components and
// for blogs without pages.
type displayRow struct {
	page      *models.Page
	component *models.ComponentRow
}

// LoadForDisplay loads a blog with all of its pages and components. An
// unknown slug yields (nil, nil). A blog with no pages yields a tree with
// an empty page list.
func (s *ComponentStore) LoadForDisplay(ctx context.Context, blogSlug string) (*models.BlogTree, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.owner_id, b.slug, b.name, b.description, b.background_color,
		       b.font_family, b.created_at, b.updated_at,
		       p.id, p.name, p.slug, p.sort_order, p.created_at, p.updated_at,
		       c.id, c.type, c.sort_order, c.data, c.created_at, c.updated_at
		FROM blogs b
		LEFT JOIN pages p ON p.blog_id = b.id
		LEFT JOIN components c ON c.page_id = p.id
		WHERE b.slug = $1
	`, blogSlug)
	if err != nil {
		return nil, fmt.Errorf("load for display: %w", err)
	}
	defer rows.Close()

	var (
		blog *models.Blog
		out  []displayRow
	)
	for rows.Next() {
		var (
			b                                                  models.Blog
			pageID, compID                                     uuid.NullUUID
			pageName, pageSlug, compType                       sql.NullString
			pageOrder, compOrder                               sql.NullInt64
			pageCreated, pageUpdated, compCreated, compUpdated sql.NullTime
			data                                               []byte
		)
		if err := rows.Scan(
			&b.ID, &b.OwnerID, &b.Slug, &b.Name, &b.Description, &b.BackgroundColor,
			&b.FontFamily, &b.CreatedAt, &b.UpdatedAt,
			&pageID, &pageName, &pageSlug, &pageOrder, &pageCreated, &pageUpdated,
			&compID, &compType, &compOrder, &data, &compCreated, &compUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan display row: %w", err)
		}
		if blog == nil {
			blog = &b
		}

		var dr displayRow
		if pageID.Valid {
			dr.page = &models.Page{
				ID: pageID.UUID, BlogID: b.ID, Name: pageName.String, Slug: pageSlug.String,
				Order: int(pageOrder.Int64), CreatedAt: pageCreated.Time, UpdatedAt: pageUpdated.Time,
			}
		}
		if compID.Valid && pageID.Valid {
			dr.component = &models.ComponentRow{
				ID: compID.UUID, PageID: pageID.UUID, Type: compType.String,
				Order: int(compOrder.Int64), Data: json.RawMessage(bytes.Clone(data)),
				CreatedAt: compCreated.Time, UpdatedAt: compUpdated.Time,
			}
		}
		out = append(out, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load for display: %w", err)
	}

	if blog == nil {
		return nil, nil
	}
	return assembleTree(*blog, out), nil
}

// assembleTree groups flat join rows into pages keyed by page id. Pages are
// sorted by (order, slug) and components by (order, created_at, id), so the
// result does not depend on the order the rows arrived in.
func assembleTree(blog models.Blog, rows []displayRow) *models.BlogTree {
	tree := &models.BlogTree{Blog: blog, Pages: []models.PageTree{}}
	index := make(map[uuid.UUID]int)

	for _, r := range rows {
		if r.page == nil {
			continue
		}
		i, ok := index[r.page.ID]
		if !ok {
			i = len(tree.Pages)
			index[r.page.ID] = i
			tree.Pages = append(tree.Pages, models.PageTree{Page: *r.page, Components: []models.ComponentRow{}})
		}
		if r.component != nil {
			tree.Pages[i].Components = append(tree.Pages[i].Components, *r.component)
		}
	}

	slices.SortStableFunc(tree.Pages, func(a, b models.PageTree) int {
		if c := cmp.Compare(a.Page.Order, b.Page.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.Page.Slug, b.Page.Slug)
	})
	for i := range tree.Pages {
		sortComponentRows(tree.Pages[i].Components)
	}
	return tree
}

func sortComponentRows(rows []models.ComponentRow) {
	slices.SortFunc(rows, func(a, b models.ComponentRow) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}
