package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dawnlightpress/pages/internal/feat/content"
	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

// Handler exposes the localhost-only CMS JSON API.
type Handler struct {
	service *Service
	log     logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func (h *Handler) Start(ctx context.Context) error {
	h.log.Info("Admin handler started")
	return nil
}

// RegisterRoutes mounts the admin API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/collections", h.HandleListCollections)
		r.Get("/collections/{collection}", h.HandleListEntries)
		r.Get("/collections/{collection}/{slug}", h.HandleGetEntry)
		r.Put("/collections/{collection}/{slug}", h.HandleSaveEntry)
		r.Delete("/collections/{collection}/{slug}", h.HandleDeleteEntry)

		r.Get("/singletons/{name}", h.HandleGetSingleton)
		r.Put("/singletons/{name}", h.HandleSaveSingleton)

		r.Post("/preview", h.HandlePreview)

		r.Post("/builds", h.HandleTriggerBuild)
		r.Get("/builds", h.HandleListBuilds)

		r.Post("/publish", h.HandlePublish)

		r.Post("/schedules", h.HandleCreateSchedule)
		r.Get("/schedules", h.HandleListSchedules)
		r.Delete("/schedules/{id}", h.HandleCancelSchedule)
	})
}

func (h *Handler) HandleListCollections(w http.ResponseWriter, r *http.Request) {
	specs := content.CollectionSpecs()
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.Name)
	}
	jsonOK(w, map[string]any{"collections": names})
}

func (h *Handler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListEntries(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	jsonOK(w, records)
}

func (h *Handler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetEntry(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "slug"))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	jsonOK(w, entry)
}

func (h *Handler) HandleSaveEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Frontmatter map[string]any `json:"frontmatter"`
		Body        string         `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Frontmatter == nil {
		req.Frontmatter = map[string]any{}
	}

	collection := chi.URLParam(r, "collection")
	slug := chi.URLParam(r, "slug")
	if err := h.service.SaveEntry(r.Context(), collection, slug, req.Frontmatter, req.Body); err != nil {
		h.serviceError(w, err)
		return
	}
	jsonOK(w, map[string]string{"collection": collection, "slug": slug})
}

func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEntry(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "slug")); err != nil {
		h.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetSingleton(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetSingleton(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	jsonOK(w, entry)
}

func (h *Handler) HandleSaveSingleton(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.service.SaveSingleton(r.Context(), name, data); err != nil {
		h.serviceError(w, err)
		return
	}
	jsonOK(w, map[string]string{"name": name})
}

func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Files      map[string]string `json:"files"`
		Collection string            `json:"collection"`
		Slug       string            `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	entry, err := h.service.Preview(r.Context(), req.Files, req.Collection, req.Slug)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	jsonOK(w, entry)
}

func (h *Handler) HandleTriggerBuild(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.TriggerBuild(r.Context(), TriggerManual)
	if err != nil {
		if run != nil {
			jsonError(w, http.StatusInternalServerError, "build_failed", err.Error())
			return
		}
		h.serviceError(w, err)
		return
	}
	jsonCreated(w, run)
}

func (h *Handler) HandleListBuilds(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.service.ListBuildRuns(r.Context(), limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if runs == nil {
		runs = []*BuildRun{}
	}
	jsonOK(w, runs)
}

func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	// body is optional
	_ = json.NewDecoder(r.Body).Decode(&req)

	hash, err := h.service.Publish(r.Context(), req.Message)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "publish_failed", err.Error())
		return
	}
	jsonOK(w, map[string]string{"commit": hash})
}

func (h *Handler) HandleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PublishAt time.Time `json:"publish_at"`
		Message   string    `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	schedule, err := h.service.CreateSchedule(r.Context(), req.PublishAt, req.Message)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_schedule", err.Error())
		return
	}
	jsonCreated(w, schedule)
}

func (h *Handler) HandleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.service.ListSchedules(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if schedules == nil {
		schedules = []*PublishSchedule{}
	}
	jsonOK(w, schedules)
}

func (h *Handler) HandleCancelSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_request", "Invalid schedule ID")
		return
	}
	if err := h.service.CancelSchedule(r.Context(), id); err != nil {
		h.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, sql.ErrNoRows):
		jsonError(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, ErrUnknownCollection):
		jsonError(w, http.StatusNotFound, "unknown_collection", "Unknown collection")
	case errors.Is(err, ErrInvalidSlug):
		jsonError(w, http.StatusBadRequest, "invalid_slug", "Invalid slug")
	default:
		h.log.Error("Admin API error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal_error", "Internal error")
	}
}

// --- JSON helpers ---

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}

func jsonCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
