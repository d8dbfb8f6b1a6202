// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// AssetStore records uploaded files. The bytes live in object storage;
// only the key and public URL are kept here.
type AssetStore struct {
	db *sql.DB
}

// NewAssetStore creates a new AssetStore with the given database connection.
func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

// assetColumns lists the columns selected in asset queries.
const assetColumns = `id, blog_id, filename, content_type, size_bytes, s3_key, url, uploader_id, created_at`

func scanAsset(s scanner) (*models.Asset, error) {
	var a models.Asset
	err := s.Scan(&a.ID, &a.BlogID, &a.Filename, &a.ContentType, &a.SizeBytes,
		&a.S3Key, &a.URL, &a.UploaderID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new asset record and returns it with the generated ID.
func (s *AssetStore) Create(ctx context.Context, a *models.Asset) (*models.Asset, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO assets (blog_id, filename, content_type, size_bytes, s3_key, url, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+assetColumns,
		a.BlogID, a.Filename, a.ContentType, a.SizeBytes, a.S3Key, a.URL, a.UploaderID)
	created, err := scanAsset(row)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return created, nil
}

// ListByBlog returns a blog's assets, newest first, with pagination.
func (s *AssetStore) ListByBlog(ctx context.Context, blogID uuid.UUID, limit, offset int) ([]models.Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE blog_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, blogID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	items := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Delete removes an asset record and returns it so the caller can delete
// the stored object. A missing asset yields (nil, nil).
func (s *AssetStore) Delete(ctx context.Context, blogID, id uuid.UUID) (*models.Asset, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM assets WHERE id = $1 AND blog_id = $2
		RETURNING `+assetColumns, id, blogID)
	a, err := scanAsset(row)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete asset: %w", err)
	}
	return a, nil
}
