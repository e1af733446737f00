package create_booking

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот на указанные дату и время не существует
	ErrSlotNotFound = errors.New("create_booking: slot not found")

	// ErrSlotUnavailable возвращается, когда слот выключен для записи
	ErrSlotUnavailable = errors.New("create_booking: slot is not available")

	// ErrSlotFull возвращается, когда в слоте нет свободных мест
	ErrSlotFull = errors.New("create_booking: slot has no free spots")

	// ErrPastSlot возвращается при попытке записаться на прошедшее время
	ErrPastSlot = errors.New("create_booking: slot is in the past")

	// ErrRefGeneration возвращается, когда не удалось подобрать уникальный код бронирования
	ErrRefGeneration = errors.New("create_booking: failed to generate unique booking ref")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
