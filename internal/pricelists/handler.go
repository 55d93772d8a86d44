package pricelists

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alima/supply/internal/platform/httpx"
	"github.com/alima/supply/internal/shared"
)

// Handler exposes price list endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	maxBytes int64
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{logger: logger, service: service, maxBytes: maxUploadBytes}
}

// MountRoutes registers price list routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listCurrent)
	r.Post("/", h.create)
	r.Post("/upload", h.upload)
	r.Post("/default/prices", h.addDefaultPrice)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.edit)
	r.Post("/{id}/prices", h.addPrice)
	r.Get("/{id}/history", h.history)
	r.Get("/{id}/export", h.export)
}

type priceRequest struct {
	SupplierProductID uuid.UUID       `json:"supplier_product_id" validate:"required"`
	Price             decimal.Decimal `json:"price"`
}

type createRequest struct {
	Name      string         `json:"name" validate:"required,max=120"`
	UnitIDs   []uuid.UUID    `json:"unit_ids" validate:"required,min=1,dive,required"`
	BranchIDs []uuid.UUID    `json:"branch_ids" validate:"dive,required"`
	IsDefault bool           `json:"is_default"`
	ValidUpto *time.Time     `json:"valid_upto"`
	Prices    []priceRequest `json:"prices" validate:"required,min=1,dive"`
}

type editRequest struct {
	BranchIDs []uuid.UUID    `json:"branch_ids" validate:"dive,required"`
	IsDefault bool           `json:"is_default"`
	ValidUpto *time.Time     `json:"valid_upto"`
	Prices    []priceRequest `json:"prices" validate:"required,min=1,dive"`
}

type addPriceRequest struct {
	SupplierProductID uuid.UUID       `json:"supplier_product_id" validate:"required"`
	Price             decimal.Decimal `json:"price"`
	ValidUpto         *time.Time      `json:"valid_upto"`
}

func toInputs(in []priceRequest) []PriceInput {
	out := make([]PriceInput, len(in))
	for i, p := range in {
		out[i] = PriceInput{SupplierProductID: p.SupplierProductID, Price: p.Price}
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.RespondError(w, r, h.logger, err)
}

func (h *Handler) listCurrent(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.Actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	unitID, err := httpx.ParamUUID(r.URL.Query().Get("unit_id"), "unit_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lists, err := h.service.ListCurrent(r.Context(), actor, unitID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if lists == nil {
		lists = []PriceList{}
	}
	httpx.OK(w, http.StatusOK, lists)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.Actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req createRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.service.NewFromStructured(r.Context(), StructuredInput{
		Actor: actor,
		Meta: ListMeta{
			Name:      req.Name,
			UnitIDs:   req.UnitIDs,
			BranchIDs: req.BranchIDs,
			IsDefault: req.IsDefault,
			ValidUpto: req.ValidUpto,
		},
		Prices: toInputs(req.Prices),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, res)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.Actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	filename, data, err := httpx.ReadUpload(w, r, h.maxBytes)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	meta, err := metaFromForm(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.service.UpsertFromFile(r.Context(), FileInput{Actor: actor, Filename: filename, Data: data, Meta: meta})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, res)
}

// metaFromForm reads list metadata from multipart fields. Id lists may be
// repeated fields or comma separated.
func metaFromForm(r *http.Request) (ListMeta, error) {
	meta := ListMeta{Name: r.FormValue("name")}
	var err error
	if meta.UnitIDs, err = formUUIDs(r, "unit_ids"); err != nil {
		return ListMeta{}, err
	}
	if meta.BranchIDs, err = formUUIDs(r, "branch_ids"); err != nil {
		return ListMeta{}, err
	}
	if v := r.FormValue("is_default"); v != "" {
		if meta.IsDefault, err = strconv.ParseBool(v); err != nil {
			return ListMeta{}, fmt.Errorf("%w: is_default debe ser true o false", shared.ErrValidation)
		}
	}
	if v := r.FormValue("valid_upto"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return ListMeta{}, err
		}
		meta.ValidUpto = &t
	}
	return meta, nil
}

func formUUIDs(r *http.Request, field string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, raw := range r.MultipartForm.Value[field] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := httpx.ParamUUID(part, field)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
	}
	return out, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: valid_upto debe tener formato AAAA-MM-DD", shared.ErrValidation)
	}
	return t, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, detail)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var req editRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.service.Edit(r.Context(), EditInput{
		Actor:       actor,
		PriceListID: id,
		BranchIDs:   req.BranchIDs,
		IsDefault:   req.IsDefault,
		ValidUpto:   req.ValidUpto,
		Prices:      toInputs(req.Prices),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, res)
}

func (h *Handler) addPrice(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var req addPriceRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.service.AddPrice(r.Context(), AddPriceInput{
		Actor:             actor,
		PriceListID:       id,
		SupplierProductID: req.SupplierProductID,
		Price:             req.Price,
		ValidUpto:         req.ValidUpto,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, res)
}

func (h *Handler) addDefaultPrice(w http.ResponseWriter, r *http.Request) {
	actor, err := httpx.Actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req addPriceRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.service.AddPriceToDefaultLists(r.Context(), DefaultPriceInput{
		Actor:             actor,
		SupplierProductID: req.SupplierProductID,
		Price:             req.Price,
		ValidUpto:         req.ValidUpto,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, res)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	versions, err := h.service.History(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, versions)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), actor, id, &buf); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteWorkbook(w, fmt.Sprintf("lista_%s.xlsx", id), buf.Bytes())
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (shared.Actor, uuid.UUID, bool) {
	actor, err := httpx.Actor(r)
	if err != nil {
		h.fail(w, r, err)
		return shared.Actor{}, uuid.Nil, false
	}
	id, err := httpx.ParamUUID(chi.URLParam(r, "id"), "id")
	if err != nil {
		h.fail(w, r, err)
		return shared.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}
