package bulk_apply_template

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	bulkApply "github.com/m04kA/SMC-AvailabilityService/internal/usecase/bulk_apply_template"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidProfileID   = "некорректный ID профиля"
	msgInvalidDate        = "некорректная дата, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgProfileNotFound    = "профиль не найден"
	msgTemplateNotFound   = "шаблон не найден"
	msgForbidden          = "доступ запрещен"
	msgTooManyDates       = "список дат превышает допустимый лимит"
)

type Handler struct {
	usecase BulkApplyTemplateUseCase
	logger  Logger
}

func NewHandler(usecase BulkApplyTemplateUseCase, logger Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

// Handle POST /api/v1/profiles/{profileId}/slots/bulk-apply
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	profileID, err := strconv.ParseInt(vars["profileId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /profiles/{id}/slots/bulk-apply - Invalid profile ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfileID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /profiles/{id}/slots/bulk-apply - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req BulkApplyTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /profiles/{id}/slots/bulk-apply - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest(profileID, userID)
	if err != nil {
		h.logger.Warn("POST /profiles/{id}/slots/bulk-apply - Failed to parse dates: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	resp, err := h.usecase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, bulkApply.ErrInvalidInput):
			h.logger.Warn("POST /profiles/{id}/slots/bulk-apply - Invalid input: profile_id=%d, error=%v", profileID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, bulkApply.ErrTooManyDates):
			h.logger.Warn("POST /profiles/{id}/slots/bulk-apply - Too many dates: profile_id=%d, count=%d", profileID, len(req.Dates))
			handlers.RespondBadRequest(w, msgTooManyDates)

		case errors.Is(err, bulkApply.ErrTemplateNotFound):
			h.logger.Warn("POST /profiles/{id}/slots/bulk-apply - Template not found: template_id=%d", req.TemplateID)
			handlers.RespondNotFound(w, msgTemplateNotFound)

		case errors.Is(err, bulkApply.ErrProfileNotFound):
			h.logger.Warn("POST /profiles/{id}/slots/bulk-apply - Profile not found: profile_id=%d", profileID)
			handlers.RespondNotFound(w, msgProfileNotFound)

		case errors.Is(err, bulkApply.ErrAccessDenied):
			h.logger.Warn("POST /profiles/{id}/slots/bulk-apply - Access denied: profile_id=%d, user_id=%d", profileID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /profiles/{id}/slots/bulk-apply - Failed: profile_id=%d, error=%v", profileID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /profiles/{id}/slots/bulk-apply - Applied: profile_id=%d, template_id=%d, success=%d, protected=%d, user_id=%d",
		profileID, req.TemplateID, resp.SuccessCount, len(resp.ProtectedDates), userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
