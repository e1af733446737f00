package reschedule_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	rescheduleBooking "github.com/m04kA/SMC-AvailabilityService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidDateOrTime  = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgBookingNotFound    = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgCannotReschedule   = "бронирование нельзя перенести в текущем статусе"
	msgSlotNotFound       = "слот на указанное время не найден"
	msgSlotUnavailable    = "слот закрыт для записи"
	msgSlotFull           = "в слоте нет свободных мест"
	msgSameSlot           = "бронирование уже находится в этом слоте"
	msgPastSlot           = "нельзя перенести запись на прошедшее время"
)

type Handler struct {
	usecase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(usecase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest(bookingID, userID)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	resp, err := h.usecase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, rescheduleBooking.ErrPastSlot):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Past slot: booking_id=%d, date=%s", bookingID, req.NewDate)
			handlers.RespondBadRequest(w, msgPastSlot)

		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, rescheduleBooking.ErrSlotNotFound):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Target slot not found: booking_id=%d, date=%s, time=%s-%s",
				bookingID, req.NewDate, req.NewStartTime, req.NewEndTime)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, rescheduleBooking.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleBooking.ErrCannotReschedule):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Cannot reschedule: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgCannotReschedule)

		case errors.Is(err, rescheduleBooking.ErrSameSlot):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Same slot: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgSameSlot)

		case errors.Is(err, rescheduleBooking.ErrSlotUnavailable):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Target slot unavailable: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgSlotUnavailable)

		case errors.Is(err, rescheduleBooking.ErrSlotFull):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Target slot full: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgSlotFull)

		default:
			h.logger.Error("PATCH /bookings/{id}/reschedule - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/reschedule - Booking rescheduled: booking_id=%d, slot_id=%d, user_id=%d",
		bookingID, resp.SlotID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
