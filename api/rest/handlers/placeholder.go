package handlers

import (
	"encoding/hex"
	"net/http"

	"furniture-editor/core/placeholder"
)

// PlaceholderImage handles GET /api/placeholder-image
func PlaceholderImage(w http.ResponseWriter, r *http.Request) {
	digest := placeholder.Digest()
	etag := `"` + hex.EncodeToString(digest[:8]) + `"`

	w.Header().Set("Content-Type", placeholder.ContentType)
	w.Header().Set("Cache-Control", placeholder.CacheControl)
	w.Header().Set("ETag", etag)

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(placeholder.SVG())
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
