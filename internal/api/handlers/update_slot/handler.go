package update_slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots"
	serviceModels "github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidSlotID       = "некорректный ID слота"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgEmptyUpdate         = "укажите maxCapacity или isAvailable"
	msgSlotNotFound        = "слот не найден"
	msgProfileNotFound     = "профиль не найден"
	msgForbidden           = "доступ запрещен"
	msgCapacityBelowBooked = "вместимость меньше числа существующих бронирований"
)

// UpdateSlotRequest HTTP request model
// Оба поля опциональны, но хотя бы одно должно быть задано
type UpdateSlotRequest struct {
	MaxCapacity *int  `json:"maxCapacity,omitempty"`
	IsAvailable *bool `json:"isAvailable,omitempty"`
}

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

// Handle PATCH /api/v1/slots/{slotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	slotID, err := strconv.ParseInt(vars["slotId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /slots/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /slots/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.MaxCapacity == nil && req.IsAvailable == nil {
		h.logger.Warn("PATCH /slots/{id} - Empty update: slot_id=%d", slotID)
		handlers.RespondBadRequest(w, msgEmptyUpdate)
		return
	}

	var slot *serviceModels.SlotResponse

	if req.MaxCapacity != nil {
		slot, err = h.service.UpdateCapacity(r.Context(), slotID, &serviceModels.UpdateCapacityRequest{
			UserID:      userID,
			MaxCapacity: *req.MaxCapacity,
		})
		if err != nil {
			h.respondError(w, slotID, userID, err)
			return
		}
	}

	if req.IsAvailable != nil {
		slot, err = h.service.ToggleAvailability(r.Context(), slotID, &serviceModels.ToggleAvailabilityRequest{
			UserID:      userID,
			IsAvailable: *req.IsAvailable,
		})
		if err != nil {
			h.respondError(w, slotID, userID, err)
			return
		}
	}

	h.logger.Info("PATCH /slots/{id} - Slot updated: slot_id=%d, user_id=%d", slotID, userID)
	handlers.RespondJSON(w, http.StatusOK, slot)
}

func (h *Handler) respondError(w http.ResponseWriter, slotID, userID int64, err error) {
	switch {
	case errors.Is(err, slots.ErrInvalidInput):
		h.logger.Warn("PATCH /slots/{id} - Invalid input: slot_id=%d, error=%v", slotID, err)
		handlers.RespondBadRequest(w, err.Error())

	case errors.Is(err, slots.ErrSlotNotFound):
		h.logger.Warn("PATCH /slots/{id} - Slot not found: slot_id=%d", slotID)
		handlers.RespondNotFound(w, msgSlotNotFound)

	case errors.Is(err, slots.ErrProfileNotFound):
		h.logger.Warn("PATCH /slots/{id} - Profile not found: slot_id=%d", slotID)
		handlers.RespondNotFound(w, msgProfileNotFound)

	case errors.Is(err, slots.ErrAccessDenied):
		h.logger.Warn("PATCH /slots/{id} - Access denied: slot_id=%d, user_id=%d", slotID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, slots.ErrCapacityBelowBooked):
		h.logger.Warn("PATCH /slots/{id} - Capacity below booked: slot_id=%d", slotID)
		handlers.RespondError(w, http.StatusConflict, msgCapacityBelowBooked)

	default:
		h.logger.Error("PATCH /slots/{id} - Failed: slot_id=%d, error=%v", slotID, err)
		handlers.RespondInternalError(w)
	}
}
