package generate_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	generateSlots "github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidProfileID   = "некорректный ID профиля"
	msgInvalidDateOrTime  = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgProfileNotFound    = "профиль не найден"
	msgForbidden          = "доступ запрещен"
	msgRangeTooLarge      = "период генерации превышает допустимый лимит"
	msgEmptyWindow        = "рабочее окно не вмещает ни одного слота"
)

type Handler struct {
	usecase GenerateSlotsUseCase
	logger  Logger
}

func NewHandler(usecase GenerateSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

// Handle POST /api/v1/profiles/{profileId}/slots/generate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	profileID, err := strconv.ParseInt(vars["profileId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /profiles/{id}/slots/generate - Invalid profile ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfileID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /profiles/{id}/slots/generate - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /profiles/{id}/slots/generate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest(profileID, userID)
	if err != nil {
		h.logger.Warn("POST /profiles/{id}/slots/generate - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	resp, err := h.usecase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, generateSlots.ErrInvalidInput):
			h.logger.Warn("POST /profiles/{id}/slots/generate - Invalid input: profile_id=%d, error=%v", profileID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, generateSlots.ErrRangeTooLarge):
			h.logger.Warn("POST /profiles/{id}/slots/generate - Range too large: profile_id=%d", profileID)
			handlers.RespondBadRequest(w, msgRangeTooLarge)

		case errors.Is(err, generateSlots.ErrEmptyWindow):
			h.logger.Warn("POST /profiles/{id}/slots/generate - Empty window: profile_id=%d", profileID)
			handlers.RespondBadRequest(w, msgEmptyWindow)

		case errors.Is(err, generateSlots.ErrProfileNotFound):
			h.logger.Warn("POST /profiles/{id}/slots/generate - Profile not found: profile_id=%d", profileID)
			handlers.RespondNotFound(w, msgProfileNotFound)

		case errors.Is(err, generateSlots.ErrAccessDenied):
			h.logger.Warn("POST /profiles/{id}/slots/generate - Access denied: profile_id=%d, user_id=%d", profileID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /profiles/{id}/slots/generate - Failed: profile_id=%d, error=%v", profileID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /profiles/{id}/slots/generate - Generated: profile_id=%d, created=%d, failed=%d, user_id=%d",
		profileID, resp.CreatedSlots, resp.FailedCount, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
