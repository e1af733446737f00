package templates

import "errors"

var (
	// ErrTemplateNotFound возвращается, когда шаблон не найден
	ErrTemplateNotFound = errors.New("template not found")

	// ErrProfileNotFound возвращается, когда профиль мастера не найден
	ErrProfileNotFound = errors.New("profile not found")

	// ErrAccessDenied возвращается, когда пользователь не владеет шаблоном или профилем
	ErrAccessDenied = errors.New("access denied")

	// ErrPastDate возвращается при попытке применить шаблон к прошедшей дате
	ErrPastDate = errors.New("date is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
