// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"inkwell/internal/models"
	"inkwell/internal/storage"
)

// maxUploadSize is the largest accepted upload (10 MB).
const maxUploadSize = 10 << 20

// allowedUploadTypes are the image types components may reference. SVG
// is excluded because it can carry script.
var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/avif": true,
}

// Upload stores an image in object storage and records it as an asset of
// the blog. The response carries the public URL components should use.
func (a *Admin) Upload(w http.ResponseWriter, r *http.Request) {
	blog, sess, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	if a.Storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10 MB.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()
	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10 MB.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}

	// The declared type is ignored; only the sniffed one counts.
	mt := mimetype.Detect(data)
	contentType, _, _ := strings.Cut(mt.String(), ";")
	if !allowedUploadTypes[contentType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File type %q is not allowed.", contentType))
		return
	}

	key := storage.ObjectKey(blog.ID, "upload"+mt.Extension())
	url, err := a.Storage.Upload(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "Failed to upload file.")
		return
	}

	asset, err := a.Assets.Create(r.Context(), &models.Asset{
		BlogID:      blog.ID,
		Filename:    header.Filename,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		S3Key:       key,
		URL:         url,
		UploaderID:  sess.UserID,
	})
	if err != nil {
		// Do not leave an orphaned object behind.
		if delErr := a.Storage.Delete(r.Context(), key); delErr != nil {
			slog.Warn("orphaned upload not removed", "error", delErr, "key", key)
		}
		fail(w, r, "record asset", err)
		return
	}

	slog.Info("asset uploaded", "blog", blog.Slug, "key", key, "size", asset.SizeBytes)
	writeJSON(w, http.StatusCreated, asset)
}

// AssetsList returns the blog's uploads, newest first.
func (a *Admin) AssetsList(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	assets, err := a.Assets.ListByBlog(r.Context(), blog.ID, limit, offset)
	if err != nil {
		fail(w, r, "list assets", err)
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

// AssetDelete removes an upload and its stored object. Components that
// still reference the URL keep it; their image simply stops loading.
func (a *Admin) AssetDelete(w http.ResponseWriter, r *http.Request) {
	blog, _, ok := a.ownedBlog(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	asset, err := a.Assets.Delete(r.Context(), blog.ID, id)
	if err != nil {
		fail(w, r, "delete asset", err)
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if a.Storage != nil {
		if err := a.Storage.Delete(r.Context(), asset.S3Key); err != nil {
			slog.Warn("s3 delete failed", "error", err, "key", asset.S3Key)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
