package bulk_delete_slots

import "errors"

var (
	// ErrProfileNotFound возвращается, когда профиль мастера не найден
	ErrProfileNotFound = errors.New("bulk_delete_slots: profile not found")

	// ErrAccessDenied возвращается, когда пользователь не владеет профилем
	ErrAccessDenied = errors.New("bulk_delete_slots: access denied")

	// ErrTooManyDates возвращается, когда список дат превышает лимит
	ErrTooManyDates = errors.New("bulk_delete_slots: too many dates")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bulk_delete_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("bulk_delete_slots: internal error")
)
