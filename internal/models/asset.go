// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Asset records a file a blog owner uploaded to object storage. Components
// only ever hold the asset's public URL; this row lets the owner list and
// reuse earlier uploads.
type Asset struct {
	ID          uuid.UUID `json:"id"`
	BlogID      uuid.UUID `json:"blog_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	S3Key       string    `json:"s3_key"`
	URL         string    `json:"url"`
	UploaderID  uuid.UUID `json:"uploader_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsImage returns true if the asset is an image type.
func (a *Asset) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// HumanSize returns a human-readable file size string.
func (a *Asset) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case a.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(a.SizeBytes)/float64(mb))
	case a.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(a.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", a.SizeBytes)
	}
}
