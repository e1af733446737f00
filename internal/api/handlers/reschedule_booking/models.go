package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	rescheduleBooking "github.com/m04kA/SMC-AvailabilityService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewDate      string `json:"newDate"`      // "2026-09-20"
	NewStartTime string `json:"newStartTime"` // "14:00"
	NewEndTime   string `json:"newEndTime"`   // "15:00"
}

// RescheduleBookingResponse HTTP response model
type RescheduleBookingResponse struct {
	ID         int64  `json:"id"`
	BookingRef string `json:"bookingRef"`
	UserID     int64  `json:"userId"`
	ProfileID  int64  `json:"profileId"`
	SlotID     int64  `json:"slotId"`

	BookingDate string `json:"bookingDate"` // "2026-09-20"
	TimeSlot    string `json:"timeSlot"`    // "14:00-15:00"
	StartTime   string `json:"startTime"`   // "14:00"
	EndTime     string `json:"endTime"`     // "15:00"
	Status      string `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID, userID int64) (*rescheduleBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.NewDate)
	if err != nil {
		return nil, err
	}

	start, err := types.NewTimeStringFromString(r.NewStartTime)
	if err != nil {
		return nil, err
	}
	end, err := types.NewTimeStringFromString(r.NewEndTime)
	if err != nil {
		return nil, err
	}
	timeSlot, err := types.NewTimeRange(start, end)
	if err != nil {
		return nil, err
	}

	return &rescheduleBooking.Request{
		UserID:      userID,
		BookingID:   bookingID,
		NewDate:     date,
		NewTimeSlot: timeSlot,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleBookingResponse {
	return &RescheduleBookingResponse{
		ID:          resp.ID,
		BookingRef:  resp.BookingRef,
		UserID:      resp.UserID,
		ProfileID:   resp.ProfileID,
		SlotID:      resp.SlotID,
		BookingDate: resp.BookingDate.Format(domain.DateFormat),
		TimeSlot:    resp.TimeSlot.String(),
		StartTime:   resp.TimeSlot.Start().String(),
		EndTime:     resp.TimeSlot.End().String(),
		Status:      resp.Status,
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
	}
}
