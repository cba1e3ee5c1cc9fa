package properties

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/propfind/propfind/internal/platform/httpx"
	"github.com/propfind/propfind/internal/shared"
)

// Handler wires HTTP endpoints for property listings.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountPublicRoutes registers the unauthenticated search endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.handleList)
}

// MountOwnerRoutes registers the endpoints that require a caller identity.
func (h *Handler) MountOwnerRoutes(r chi.Router) {
	r.Get("/mine", h.handleMine)
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Location:     q.Get("location"),
		PropertyType: q.Get("property_type"),
	}
	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "invalid min_price")
			return
		}
		filter.MinPrice = &v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "invalid max_price")
			return
		}
		filter.MaxPrice = &v
	}

	listings, err := h.service.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("list properties", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if listings == nil {
		listings = []Listing{}
	}
	httpx.Success(w, "Properties retrieved successfully", listings)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, shared.ErrUnauthenticated.Error())
		return
	}

	props, err := h.service.Mine(r.Context(), caller)
	if err != nil {
		h.logger.Error("list own properties", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if props == nil {
		props = []Property{}
	}
	httpx.Success(w, "Properties retrieved successfully", props)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, shared.ErrUnauthenticated.Error())
		return
	}

	var req CreatePropertyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	prop, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		if !errors.Is(err, shared.ErrValidation) {
			h.logger.Error("create property", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Property added successfully", prop)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, shared.ErrUnauthenticated.Error())
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "invalid property id")
		return
	}

	var req UpdatePropertyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	prop, err := h.service.Update(r.Context(), caller, id, req)
	if err != nil {
		if !errors.Is(err, shared.ErrValidation) &&
			!errors.Is(err, shared.ErrForbidden) &&
			!errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("update property", slog.Int64("id", id), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Property updated successfully", prop)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, shared.ErrUnauthenticated.Error())
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "invalid property id")
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		if !errors.Is(err, shared.ErrForbidden) && !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("delete property", slog.Int64("id", id), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Property deleted successfully", nil)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field: " + verrs[0].Field()
	}
	return "validation failed"
}
