package create_booking

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	createBooking "github.com/m04kA/SMC-AvailabilityService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProfileID int64   `json:"profileId"`
	ServiceID *int64  `json:"serviceId,omitempty"`
	Date      string  `json:"date"`      // "2026-09-15"
	StartTime string  `json:"startTime"` // "10:00"
	EndTime   string  `json:"endTime"`   // "11:00"
	Notes     *string `json:"notes,omitempty"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	ID         int64  `json:"id"`
	BookingRef string `json:"bookingRef"`
	UserID     int64  `json:"userId"`
	ProfileID  int64  `json:"profileId"`
	SlotID     int64  `json:"slotId"`
	ServiceID  *int64 `json:"serviceId,omitempty"`

	BookingDate string `json:"bookingDate"` // "2026-09-15"
	TimeSlot    string `json:"timeSlot"`    // "10:00-11:00"
	StartTime   string `json:"startTime"`   // "10:00"
	EndTime     string `json:"endTime"`     // "11:00"
	Status      string `json:"status"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	start, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}
	timeSlot, err := types.NewTimeRange(start, end)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:    userID,
		ProfileID: r.ProfileID,
		ServiceID: r.ServiceID,
		Date:      date,
		TimeSlot:  timeSlot,
		Notes:     r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		ID:          resp.ID,
		BookingRef:  resp.BookingRef,
		UserID:      resp.UserID,
		ProfileID:   resp.ProfileID,
		SlotID:      resp.SlotID,
		ServiceID:   resp.ServiceID,
		BookingDate: resp.BookingDate.Format(domain.DateFormat),
		TimeSlot:    resp.TimeSlot.String(),
		StartTime:   resp.TimeSlot.Start().String(),
		EndTime:     resp.TimeSlot.End().String(),
		Status:      resp.Status,
		Notes:       resp.Notes,
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
	}
}
