package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на перенос
	ErrAccessDenied = errors.New("reschedule_booking: access denied")

	// ErrCannotReschedule возвращается, когда бронирование нельзя перенести
	ErrCannotReschedule = errors.New("reschedule_booking: booking cannot be rescheduled")

	// ErrSlotNotFound возвращается, когда целевой слот не существует
	ErrSlotNotFound = errors.New("reschedule_booking: target slot not found")

	// ErrSlotUnavailable возвращается, когда целевой слот выключен для записи
	ErrSlotUnavailable = errors.New("reschedule_booking: target slot is not available")

	// ErrSlotFull возвращается, когда в целевом слоте нет свободных мест
	ErrSlotFull = errors.New("reschedule_booking: target slot has no free spots")

	// ErrSameSlot возвращается при попытке переноса на тот же слот
	ErrSameSlot = errors.New("reschedule_booking: booking is already on this slot")

	// ErrPastSlot возвращается при попытке переноса на прошедшее время
	ErrPastSlot = errors.New("reschedule_booking: target slot is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
