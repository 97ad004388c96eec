package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
	"github.com/heartmarshall/featureflags-backend/internal/service/access"
)

// segmentService defines the minimal interface needed by SegmentHandler.
type segmentService interface {
	ListSegments(ctx context.Context) (domain.SearchResult[access.Record], error)
	GetSegment(ctx context.Context, id uuid.UUID) (access.Record, error)
	CreateSegment(ctx context.Context, input domain.SegmentPatch) (access.Record, error)
	UpdateSegment(ctx context.Context, id uuid.UUID, patch domain.SegmentPatch) (access.Record, error)
	RemoveSegment(ctx context.Context, id uuid.UUID) (bool, error)
}

// SegmentHandler serves the segment REST endpoints.
type SegmentHandler struct {
	svc segmentService
	log *slog.Logger
}

// NewSegmentHandler creates a SegmentHandler.
func NewSegmentHandler(svc segmentService, logger *slog.Logger) *SegmentHandler {
	return &SegmentHandler{svc: svc, log: logger.With("handler", "segment")}
}

// Routes returns the router for segment endpoints.
func (h *SegmentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// segmentRequest is the body of create and update requests. Absent fields
// are left untouched; an empty description clears it.
type segmentRequest struct {
	Key         *string   `json:"key"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Flags       *[]string `json:"flags"`
	Archived    *bool     `json:"archived"`
}

type listResponse struct {
	Data   []access.Record `json:"data"`
	Length int             `json:"length"`
	Total  int             `json:"total"`
}

// List handles GET /api/v1/segments.
func (h *SegmentHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListSegments(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: res.Data, Length: res.Length, Total: res.Total})
}

// Get handles GET /api/v1/segments/{id}.
func (h *SegmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.GetSegment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Create handles POST /api/v1/segments.
func (h *SegmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.CreateSegment(r.Context(), patch)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// Update handles PATCH /api/v1/segments/{id}.
func (h *SegmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.UpdateSegment(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/v1/segments/{id}. The segment is archived.
func (h *SegmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.RemoveSegment(r.Context(), id); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid segment id")
		return uuid.Nil, false
	}
	return id, true
}

func decodePatch(w http.ResponseWriter, r *http.Request) (domain.SegmentPatch, bool) {
	var req segmentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return domain.SegmentPatch{}, false
	}

	patch := domain.SegmentPatch{
		Key:         req.Key,
		Name:        req.Name,
		Description: req.Description,
		Archived:    req.Archived,
	}

	if req.Flags != nil {
		ids := make([]uuid.UUID, 0, len(*req.Flags))
		for _, raw := range *req.Flags {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad_request", "invalid flag id "+raw)
				return domain.SegmentPatch{}, false
			}
			ids = append(ids, id)
		}
		patch.FlagIDs = &ids
	}

	return patch, true
}
