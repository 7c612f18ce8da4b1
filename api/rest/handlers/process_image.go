package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"furniture-editor/core/placeholder"

	"github.com/pkg/errors"
)

// RoomDescriber sends a furniture description and a room photo to a model
type RoomDescriber interface {
	DescribeRoom(ctx context.Context, description, mimeType string, image []byte) (string, error)
}

// ProcessImageRequest represents the request to process one room photo
type ProcessImageRequest struct {
	Image    string `json:"image"` // base64, no data-URL prefix
	Prompt   string `json:"prompt"`
	MimeType string `json:"mimeType"`
}

// ProcessImageResponse represents the response after processing a photo
type ProcessImageResponse struct {
	Success           bool   `json:"success"`
	ProcessedImageURL string `json:"processedImageUrl"`
	Description       string `json:"description"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

const processFailedMessage = "Failed to process image"

// ImageHandler handles image relay HTTP requests
type ImageHandler struct {
	describer       RoomDescriber
	maxRequestBytes int64
}

// NewImageHandler creates a new image handler
func NewImageHandler(describer RoomDescriber, maxRequestBytes int64) *ImageHandler {
	return &ImageHandler{
		describer:       describer,
		maxRequestBytes: maxRequestBytes,
	}
}

// ProcessImage handles POST /api/process-image
func (h *ImageHandler) ProcessImage(w http.ResponseWriter, r *http.Request) {
	if h.maxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	}

	var req ProcessImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "decode request", err)
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		h.fail(w, "decode image", err)
		return
	}

	// The model only answers with text; every caller gets the placeholder image
	description, err := h.describer.DescribeRoom(r.Context(), req.Prompt, req.MimeType, image)
	if err != nil {
		h.fail(w, "describe room", err)
		return
	}

	writeJSON(w, http.StatusOK, ProcessImageResponse{
		Success:           true,
		ProcessedImageURL: placeholder.URL,
		Description:       description,
	})
}

// fail logs the cause and answers with a generic 500
func (h *ImageHandler) fail(w http.ResponseWriter, step string, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		log.Printf("Error processing image: %s: body exceeds %d bytes", step, maxErr.Limit)
	} else {
		log.Printf("Error processing image: %s: %v", step, err)
	}
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: processFailedMessage})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
