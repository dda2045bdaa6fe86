package handler

import (
	"net/http"

	"coupon-command/internal/model"
	"coupon-command/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AdminHandler handles coupon, command and limit management requests.
type AdminHandler struct {
	service service.CommandService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.CommandService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// Routes registers the management endpoints on r.
func (h *AdminHandler) Routes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/coupons", h.CreateCoupon)

		r.Get("/commands", h.ListCommands)
		r.Post("/commands", h.CreateCommand)
		r.Get("/commands/{id}", h.GetCommand)
		r.Put("/commands/{id}", h.UpdateCommand)
		r.Delete("/commands/{id}", h.DeleteCommand)
		r.Post("/commands/{id}/limit", h.AddLimit)
		r.Get("/commands/{id}/usage", h.CommandUsage)

		r.Patch("/limits/{id}", h.UpdateLimit)
		r.Delete("/limits/{id}", h.DeleteLimit)
		r.Post("/limits/{id}/toggle", h.ToggleLimit)

		r.Get("/users/{userId}/usage", h.UserUsage)
	})
}

// CreateCoupon handles POST /api/admin/coupons requests.
func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCouponRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	coupon, err := h.service.CreateCoupon(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, coupon)
}

// ListCommands handles GET /api/admin/commands requests.
func (h *AdminHandler) ListCommands(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.ListCommandConfigs(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// CreateCommand handles POST /api/admin/commands requests.
func (h *AdminHandler) CreateCommand(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCommandConfigRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	cfg, err := h.service.CreateCommandConfig(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, cfg)
}

// GetCommand handles GET /api/admin/commands/{id} requests.
func (h *AdminHandler) GetCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	detail, err := h.service.GetCommandConfigDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// UpdateCommand handles PUT /api/admin/commands/{id} requests.
func (h *AdminHandler) UpdateCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateCommandConfigRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	cfg, err := h.service.UpdateCommandConfig(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// DeleteCommand handles DELETE /api/admin/commands/{id} requests.
func (h *AdminHandler) DeleteCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteCommandConfig(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddLimit handles POST /api/admin/commands/{id}/limit requests.
func (h *AdminHandler) AddLimit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var input model.LimitInput
	if !decodeBody(w, r, &input, h.logger) {
		return
	}

	limit, err := h.service.AddCommandLimit(r.Context(), id, &input)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, limit)
}

// CommandUsage handles GET /api/admin/commands/{id}/usage requests.
func (h *AdminHandler) CommandUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	records, err := h.service.GetCommandUsageRecords(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// UpdateLimit handles PATCH /api/admin/limits/{id} requests.
func (h *AdminHandler) UpdateLimit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var patch model.LimitPatch
	if !decodeBody(w, r, &patch, h.logger) {
		return
	}

	limit, err := h.service.UpdateCommandLimit(r.Context(), id, &patch)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, limit)
}

// DeleteLimit handles DELETE /api/admin/limits/{id} requests.
func (h *AdminHandler) DeleteLimit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteCommandLimit(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleLimit handles POST /api/admin/limits/{id}/toggle requests.
func (h *AdminHandler) ToggleLimit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	limit, err := h.service.ToggleCommandLimitStatus(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, limit)
}

// UserUsage handles GET /api/admin/users/{userId}/usage requests.
func (h *AdminHandler) UserUsage(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.GetUserUsageRecords(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, records)
}
