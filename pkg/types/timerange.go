package types

import (
	"errors"
	"fmt"
	"strings"
)

// TimeRange интервал времени в формате HH:MM-HH:MM (например, "09:00-10:00")
// Именно в таком виде слоты хранятся в БД и отдаются клиентам
type TimeRange string

var (
	// ErrInvalidTimeRange возвращается при некорректном формате интервала
	ErrInvalidTimeRange = errors.New("types: invalid time range format")

	// ErrEmptyTimeRange возвращается, когда конец интервала не позже начала
	ErrEmptyTimeRange = errors.New("types: time range end must be after start")
)

// NewTimeRange собирает интервал из времени начала и конца
func NewTimeRange(start, end TimeString) (TimeRange, error) {
	if err := start.Validate(); err != nil {
		return "", err
	}
	if err := end.Validate(); err != nil {
		return "", err
	}
	if !end.IsAfter(start) {
		return "", fmt.Errorf("%w: %s-%s", ErrEmptyTimeRange, start, end)
	}
	return TimeRange(string(start) + "-" + string(end)), nil
}

// NewTimeRangeFromString парсит строку HH:MM-HH:MM в TimeRange
func NewTimeRangeFromString(s string) (TimeRange, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}

	start, err := NewTimeStringFromString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	end, err := NewTimeStringFromString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}

	return NewTimeRange(start, end)
}

// Validate проверяет корректность формата и что конец позже начала
func (r TimeRange) Validate() error {
	_, err := NewTimeRangeFromString(string(r))
	return err
}

// IsZero проверяет, что значение не задано
func (r TimeRange) IsZero() bool {
	return r == ""
}

// String возвращает строковое представление HH:MM-HH:MM
func (r TimeRange) String() string {
	return string(r)
}

// Start возвращает время начала интервала
// Для невалидного значения возвращает пустую TimeString
func (r TimeRange) Start() TimeString {
	parts := strings.Split(string(r), "-")
	if len(parts) != 2 {
		return ""
	}
	return TimeString(parts[0])
}

// End возвращает время конца интервала
func (r TimeRange) End() TimeString {
	parts := strings.Split(string(r), "-")
	if len(parts) != 2 {
		return ""
	}
	return TimeString(parts[1])
}

// Overlaps проверяет реальное пересечение двух интервалов
// Граничащие интервалы (конец одного равен началу другого) не пересекаются
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start().IsBefore(other.End()) && r.End().IsAfter(other.Start())
}
