package generate_slots

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Request модель запроса массовой генерации слотов
type Request struct {
	UserID    int64     // ID владельца профиля
	ProfileID int64     // ID профиля мастера
	StartDate time.Time // Первая дата периода
	EndDate   time.Time // Последняя дата периода (включительно)

	DaysOfWeek []time.Weekday // Фильтр дней недели, пустой список = все дни

	StartTime           types.TimeString  // Начало рабочего окна, например "09:00"
	EndTime             types.TimeString  // Конец рабочего окна, например "18:00"
	SlotDurationMinutes int               // Длительность одного слота
	MaxCapacity         int               // Вместимость каждого слота
	BreakStart          *types.TimeString // Начало перерыва (опционально)
	BreakEnd            *types.TimeString // Конец перерыва (опционально)
}

// Response модель ответа массовой генерации
// Частичный успех - норма: упавшие даты перечислены отдельно
type Response struct {
	SuccessCount int      // Количество успешно обработанных дат
	FailedCount  int      // Количество дат с ошибками
	FailedDates  []string // Даты с ошибками, "2026-09-15"
	SkippedDates []string // Прошедшие даты, пропущенные без генерации
	CreatedSlots int      // Всего создано слотов
}
