package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots"
)

const (
	msgInvalidProfileID = "некорректный ID профиля"
	msgInvalidDates     = "некорректные параметры start_date/end_date, ожидается YYYY-MM-DD"
	msgRangeTooLarge    = "запрошенный период слишком велик"
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

// Handle GET /api/v1/profiles/{profileId}/availability?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	profileID, err := strconv.ParseInt(vars["profileId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /profiles/{id}/availability - Invalid profile ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfileID)
		return
	}

	query := r.URL.Query()
	startDate, err := time.Parse(domain.DateFormat, query.Get("start_date"))
	if err != nil {
		h.logger.Warn("GET /profiles/{id}/availability - Invalid start_date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}
	endDate, err := time.Parse(domain.DateFormat, query.Get("end_date"))
	if err != nil {
		h.logger.Warn("GET /profiles/{id}/availability - Invalid end_date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}

	availability, err := h.service.GetAvailabilityRange(r.Context(), profileID, startDate, endDate)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("GET /profiles/{id}/availability - Invalid input: profile_id=%d, error=%v", profileID, err)
			handlers.RespondBadRequest(w, msgInvalidDates)

		case errors.Is(err, slots.ErrRangeTooLarge):
			h.logger.Warn("GET /profiles/{id}/availability - Range too large: profile_id=%d", profileID)
			handlers.RespondBadRequest(w, msgRangeTooLarge)

		default:
			h.logger.Error("GET /profiles/{id}/availability - Failed: profile_id=%d, error=%v", profileID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /profiles/{id}/availability - Availability retrieved: profile_id=%d, days=%d",
		profileID, len(availability.Days))
	handlers.RespondJSON(w, http.StatusOK, availability)
}
