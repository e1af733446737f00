package domain

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// Booking бронирование одного места в конкретном слоте
// Активное бронирование удерживает единицу вместимости слота;
// счётчик слота меняет только Booking Binder (create/cancel/reschedule)
type Booking struct {
	ID         int64
	BookingRef string // короткий код для клиента, например "A3F09B"
	UserID     int64
	ProfileID  int64
	SlotID     int64
	ServiceID  *int64

	// Denormalized slot data for history: переносы меняют SlotID,
	// дата и интервал дублируются для чтения без join
	BookingDate time.Time
	TimeSlot    types.TimeRange

	Status BookingStatus
	Notes  *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still holds a spot in its slot
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the booking can be moved to another slot
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled or rejected
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled || b.Status == StatusRejected
}

// ToBookingStatus валидирует строковый статус и конвертирует его в BookingStatus
func ToBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled, StatusNoShow:
		return BookingStatus(s), true
	default:
		return "", false
	}
}
