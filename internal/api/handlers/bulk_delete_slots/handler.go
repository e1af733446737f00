package bulk_delete_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	bulkDelete "github.com/m04kA/SMC-AvailabilityService/internal/usecase/bulk_delete_slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidProfileID   = "некорректный ID профиля"
	msgInvalidDate        = "некорректная дата, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgProfileNotFound    = "профиль не найден"
	msgForbidden          = "доступ запрещен"
	msgTooManyDates       = "список дат превышает допустимый лимит"
)

type Handler struct {
	usecase BulkDeleteSlotsUseCase
	logger  Logger
}

func NewHandler(usecase BulkDeleteSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

// Handle POST /api/v1/profiles/{profileId}/slots/bulk-delete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	profileID, err := strconv.ParseInt(vars["profileId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /profiles/{id}/slots/bulk-delete - Invalid profile ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfileID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /profiles/{id}/slots/bulk-delete - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req BulkDeleteSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /profiles/{id}/slots/bulk-delete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest(profileID, userID)
	if err != nil {
		h.logger.Warn("POST /profiles/{id}/slots/bulk-delete - Failed to parse dates: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	resp, err := h.usecase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, bulkDelete.ErrInvalidInput):
			h.logger.Warn("POST /profiles/{id}/slots/bulk-delete - Invalid input: profile_id=%d, error=%v", profileID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, bulkDelete.ErrTooManyDates):
			h.logger.Warn("POST /profiles/{id}/slots/bulk-delete - Too many dates: profile_id=%d, count=%d", profileID, len(req.Dates))
			handlers.RespondBadRequest(w, msgTooManyDates)

		case errors.Is(err, bulkDelete.ErrProfileNotFound):
			h.logger.Warn("POST /profiles/{id}/slots/bulk-delete - Profile not found: profile_id=%d", profileID)
			handlers.RespondNotFound(w, msgProfileNotFound)

		case errors.Is(err, bulkDelete.ErrAccessDenied):
			h.logger.Warn("POST /profiles/{id}/slots/bulk-delete - Access denied: profile_id=%d, user_id=%d", profileID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /profiles/{id}/slots/bulk-delete - Failed: profile_id=%d, error=%v", profileID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /profiles/{id}/slots/bulk-delete - Deleted: profile_id=%d, success=%d, protected=%d, deleted_slots=%d, user_id=%d",
		profileID, resp.SuccessCount, len(resp.ProtectedDates), resp.DeletedSlots, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
