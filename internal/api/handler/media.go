package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clipnest/media-service/internal/api/middleware"
	"github.com/clipnest/media-service/internal/domain/model"
	"github.com/clipnest/media-service/internal/domain/repository"
	"github.com/clipnest/media-service/internal/usecase"
)

// Request/Response types

type UploadURLRequest struct {
	ContentType string `json:"content_type"`
}

type UploadURLResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type ProcessSegmentRequest struct {
	Key          string  `json:"key"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

type ProcessSegmentResponse struct {
	Key       string `json:"key"`
	Processed bool   `json:"processed"`
}

type DeleteMediaRequest struct {
	Key string `json:"key"`
}

type DeleteMediaResponse struct {
	Success bool `json:"success"`
}

// MediaHandler handles media-related HTTP requests.
type MediaHandler struct {
	svc usecase.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(svc usecase.MediaService) *MediaHandler {
	return &MediaHandler{svc: svc}
}

// IssueUploadURL handles POST /v1/media/upload-url
func (h *MediaHandler) IssueUploadURL(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCallerID(w, r)
	if !ok {
		return
	}

	// Body is optional; a missing or malformed content type defaults to image/jpeg.
	var req UploadURLRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	ticket, err := h.svc.IssueUploadURL(r.Context(), callerID, req.ContentType)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, UploadURLResponse{URL: ticket.URL, Key: ticket.Key})
}

// IssueAvatarURL handles POST /v1/media/avatar-url
func (h *MediaHandler) IssueAvatarURL(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCallerID(w, r)
	if !ok {
		return
	}

	var req UploadURLRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	ticket, err := h.svc.IssueAvatarUploadURL(r.Context(), callerID, req.ContentType)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, UploadURLResponse{URL: ticket.URL, Key: ticket.Key})
}

// ProcessSegment handles POST /v1/media/process
func (h *MediaHandler) ProcessSegment(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCallerID(w, r)
	if !ok {
		return
	}

	var req ProcessSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	out, err := h.svc.ProcessSegment(r.Context(), usecase.ProcessSegmentInput{
		CallerID:     callerID,
		Key:          req.Key,
		StartSeconds: req.StartSeconds,
		EndSeconds:   req.EndSeconds,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, ProcessSegmentResponse{Key: out.Key, Processed: out.Processed})
}

// Delete handles DELETE /v1/media
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCallerID(w, r)
	if !ok {
		return
	}

	var req DeleteMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.svc.DeleteMedia(r.Context(), callerID, req.Key); err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, DeleteMediaResponse{Success: true})
}

func (h *MediaHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrMissingField):
		Error(w, http.StatusBadRequest, "missing_field", "A required field is missing")
	case errors.Is(err, model.ErrInvalidTimeRange):
		Error(w, http.StatusBadRequest, "invalid_time_range", "Segment time range must satisfy 0 <= start < end")
	case errors.Is(err, model.ErrForbidden):
		Error(w, http.StatusForbidden, "forbidden", "You do not own this media")
	case errors.Is(err, repository.ErrObjectNotFound):
		Error(w, http.StatusNotFound, "not_found", "Media object not found")
	case errors.Is(err, model.ErrNotConfigured):
		Error(w, http.StatusNotImplemented, "not_configured", "Media storage is not configured for this deployment")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// requireCallerID extracts the authenticated caller id set by the auth
// middleware. Requests without one are rejected before reaching the core.
func requireCallerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := middleware.GetCallerID(r.Context())
	if id == "" {
		Error(w, http.StatusUnauthorized, "unauthorized", "Missing caller identity")
		return "", false
	}
	return id, true
}
