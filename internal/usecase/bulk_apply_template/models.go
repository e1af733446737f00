package bulk_apply_template

import "time"

// Request модель запроса массового применения шаблона
type Request struct {
	UserID      int64       // ID владельца профиля и шаблона
	ProfileID   int64       // ID профиля мастера
	TemplateID  int64       // ID применяемого шаблона
	Dates       []time.Time // Даты применения
	MaxCapacity int         // Вместимость каждого создаваемого слота
}

// Response модель ответа массового применения шаблона
// Даты с бронированиями защищены и не перезаписываются
type Response struct {
	SuccessCount   int      // Количество успешно обработанных дат
	FailedCount    int      // Количество дат с ошибками
	FailedDates    []string // Даты с ошибками, "2026-09-15"
	ProtectedDates []string // Даты, пропущенные из-за существующих бронирований
	SkippedDates   []string // Прошедшие даты, пропущенные без применения
	CreatedSlots   int      // Всего создано слотов
}
