package bulk_apply_template

import "errors"

var (
	// ErrTemplateNotFound возвращается, когда шаблон не найден
	ErrTemplateNotFound = errors.New("bulk_apply_template: template not found")

	// ErrProfileNotFound возвращается, когда профиль мастера не найден
	ErrProfileNotFound = errors.New("bulk_apply_template: profile not found")

	// ErrAccessDenied возвращается, когда пользователь не владеет шаблоном или профилем
	ErrAccessDenied = errors.New("bulk_apply_template: access denied")

	// ErrTooManyDates возвращается, когда список дат превышает лимит
	ErrTooManyDates = errors.New("bulk_apply_template: too many dates")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bulk_apply_template: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("bulk_apply_template: internal error")
)
