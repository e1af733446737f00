package generate_slots

import "errors"

var (
	// ErrProfileNotFound возвращается, когда профиль мастера не найден
	ErrProfileNotFound = errors.New("generate_slots: profile not found")

	// ErrAccessDenied возвращается, когда пользователь не владеет профилем
	ErrAccessDenied = errors.New("generate_slots: access denied")

	// ErrRangeTooLarge возвращается, когда период генерации превышает лимит
	ErrRangeTooLarge = errors.New("generate_slots: date range is too large")

	// ErrEmptyWindow возвращается, когда рабочее окно не вмещает ни одного слота
	ErrEmptyWindow = errors.New("generate_slots: working window does not fit a single slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("generate_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("generate_slots: internal error")
)
