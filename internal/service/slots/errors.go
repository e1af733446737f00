package slots

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotAlreadyExists возвращается, когда слот на это время уже существует
	ErrSlotAlreadyExists = errors.New("slot already exists")

	// ErrSlotHasBookings возвращается при попытке удалить слот с бронированиями
	ErrSlotHasBookings = errors.New("slot has active bookings")

	// ErrCapacityBelowBooked возвращается, когда новая вместимость меньше числа бронирований
	ErrCapacityBelowBooked = errors.New("capacity below booked count")

	// ErrProfileNotFound возвращается, когда профиль мастера не найден
	ErrProfileNotFound = errors.New("profile not found")

	// ErrAccessDenied возвращается, когда пользователь не владеет профилем
	ErrAccessDenied = errors.New("access denied")

	// ErrPastDate возвращается при попытке создать слот на прошедшую дату или время
	ErrPastDate = errors.New("date is in the past")

	// ErrRangeTooLarge возвращается, когда запрошенный период превышает лимит
	ErrRangeTooLarge = errors.New("date range is too large")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
