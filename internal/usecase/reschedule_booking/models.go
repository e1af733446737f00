package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Request модель запроса на перенос бронирования
type Request struct {
	UserID      int64           // ID инициатора переноса
	BookingID   int64           // ID переносимого бронирования
	NewDate     time.Time       // Новая дата
	NewTimeSlot types.TimeRange // Новый интервал, например "14:00-15:00"
}

// Response модель ответа с перенесённым бронированием
type Response struct {
	ID         int64  // ID бронирования
	BookingRef string // Короткий код бронирования
	UserID     int64  // ID клиента
	ProfileID  int64  // ID профиля мастера
	SlotID     int64  // ID нового слота

	BookingDate time.Time       // Новая дата
	TimeSlot    types.TimeRange // Новый интервал
	Status      string          // Статус бронирования

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
