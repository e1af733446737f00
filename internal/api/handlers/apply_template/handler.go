package apply_template

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/templates"
	serviceModels "github.com/m04kA/SMC-AvailabilityService/internal/service/templates/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTemplateID  = "некорректный ID шаблона"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgTemplateNotFound   = "шаблон не найден"
	msgProfileNotFound    = "профиль не найден"
	msgForbidden          = "доступ запрещен"
	msgPastDate           = "нельзя применить шаблон к прошедшей дате"
)

// ApplyTemplateRequest HTTP request model
type ApplyTemplateRequest struct {
	ProfileID   int64  `json:"profileId"`
	Date        string `json:"date"` // "2026-09-15"
	MaxCapacity int    `json:"maxCapacity"`
}

type Handler struct {
	service TemplateService
	logger  Logger
}

func NewHandler(service TemplateService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/templates/{templateId}/apply
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	templateID, err := strconv.ParseInt(vars["templateId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /templates/{id}/apply - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /templates/{id}/apply - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ApplyTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /templates/{id}/apply - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		h.logger.Warn("POST /templates/{id}/apply - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.Apply(r.Context(), templateID, &serviceModels.ApplyTemplateRequest{
		UserID:      userID,
		ProfileID:   req.ProfileID,
		Date:        date,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		switch {
		case errors.Is(err, templates.ErrInvalidInput):
			h.logger.Warn("POST /templates/{id}/apply - Invalid input: template_id=%d, error=%v", templateID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, templates.ErrPastDate):
			h.logger.Warn("POST /templates/{id}/apply - Past date: template_id=%d, date=%s", templateID, req.Date)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, templates.ErrTemplateNotFound):
			h.logger.Warn("POST /templates/{id}/apply - Template not found: template_id=%d", templateID)
			handlers.RespondNotFound(w, msgTemplateNotFound)

		case errors.Is(err, templates.ErrProfileNotFound):
			h.logger.Warn("POST /templates/{id}/apply - Profile not found: profile_id=%d", req.ProfileID)
			handlers.RespondNotFound(w, msgProfileNotFound)

		case errors.Is(err, templates.ErrAccessDenied):
			h.logger.Warn("POST /templates/{id}/apply - Access denied: template_id=%d, user_id=%d", templateID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /templates/{id}/apply - Failed: template_id=%d, error=%v", templateID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /templates/{id}/apply - Template applied: template_id=%d, profile_id=%d, created=%d, skipped=%d",
		templateID, req.ProfileID, result.CreatedCount, result.SkippedCount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
