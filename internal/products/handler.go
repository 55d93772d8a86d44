package products

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alima/supply/internal/batchfile"
	"github.com/alima/supply/internal/platform/httpx"
	"github.com/alima/supply/internal/shared"
)

// DefaultMaxUploadBytes bounds uploaded workbooks when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Handler exposes product endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	maxBytes int64
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{logger: logger, service: service, maxBytes: maxUploadBytes}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/template", h.template)
	r.Get("/{id}", h.get)
	r.Post("/upload", h.upload)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.Actor(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 50
	}
	filters := ListFilters{Search: q.Get("search"), Page: page, Limit: limit}
	if v := q.Get("is_active"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}
	items, total, err := h.service.ListByBusiness(r.Context(), actor.BusinessID, filters)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []Product{}
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.Actor(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	id, err := httpx.ParamUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	p, err := h.service.Get(r.Context(), actor.BusinessID, id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, p)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.Actor(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	filename, data, err := httpx.ReadUpload(w, r, h.maxBytes)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	res, err := h.service.UpsertFromFile(r.Context(), FileInput{Actor: actor, Filename: filename, Data: data})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, res)
}

func (h *Handler) template(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := batchfile.WriteTemplate(&buf, batchfile.ProductColumns, batchfile.OptionalColumns); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.WriteWorkbook(w, "plantilla_productos.xlsx", buf.Bytes())
}
