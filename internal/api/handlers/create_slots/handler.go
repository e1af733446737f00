package create_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidProfileID   = "некорректный ID профиля"
	msgInvalidDateOrTime  = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgProfileNotFound    = "профиль не найден"
	msgForbidden          = "доступ запрещен"
	msgSlotExists         = "слот на это время уже существует"
	msgPastDate           = "нельзя создать слот на прошедшее время"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/profiles/{profileId}/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	profileID, err := strconv.ParseInt(vars["profileId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /profiles/{id}/slots - Invalid profile ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfileID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /profiles/{id}/slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /profiles/{id}/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(profileID, userID)
	if err != nil {
		h.logger.Warn("POST /profiles/{id}/slots - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	slotList, err := h.service.CreateSlots(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("POST /profiles/{id}/slots - Invalid input: profile_id=%d, error=%v", profileID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, slots.ErrPastDate):
			h.logger.Warn("POST /profiles/{id}/slots - Past date: profile_id=%d", profileID)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, slots.ErrProfileNotFound):
			h.logger.Warn("POST /profiles/{id}/slots - Profile not found: profile_id=%d", profileID)
			handlers.RespondNotFound(w, msgProfileNotFound)

		case errors.Is(err, slots.ErrAccessDenied):
			h.logger.Warn("POST /profiles/{id}/slots - Access denied: profile_id=%d, user_id=%d", profileID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, slots.ErrSlotAlreadyExists):
			h.logger.Warn("POST /profiles/{id}/slots - Slot already exists: profile_id=%d", profileID)
			handlers.RespondError(w, http.StatusConflict, msgSlotExists)

		default:
			h.logger.Error("POST /profiles/{id}/slots - Failed: profile_id=%d, error=%v", profileID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /profiles/{id}/slots - Slots created: profile_id=%d, count=%d, user_id=%d",
		profileID, len(slotList.Slots), userID)
	handlers.RespondJSON(w, http.StatusCreated, slotList)
}
