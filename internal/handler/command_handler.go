package handler

import (
	"net/http"

	"coupon-command/internal/model"
	"coupon-command/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CommandHandler handles command validation and redemption requests.
type CommandHandler struct {
	service service.RedemptionService
	logger  zerolog.Logger
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(service service.RedemptionService, logger zerolog.Logger) *CommandHandler {
	return &CommandHandler{
		service: service,
		logger:  logger.With().Str("handler", "command").Logger(),
	}
}

// Routes registers the command endpoints on r.
func (h *CommandHandler) Routes(r chi.Router) {
	r.Post("/commands/validate", h.Validate)
	r.Post("/commands/use", h.Use)
}

// Validate handles POST /api/commands/validate requests.
func (h *CommandHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req model.ValidateCommandRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	result, err := h.service.ValidateCommand(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Use handles POST /api/commands/use requests. Rejected redemptions are
// still 200 responses with success=false.
func (h *CommandHandler) Use(w http.ResponseWriter, r *http.Request) {
	var req model.UseCommandRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	req.ClientIP = clientIP(r)

	result, err := h.service.UseCommand(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
