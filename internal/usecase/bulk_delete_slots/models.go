package bulk_delete_slots

import "time"

// Request модель запроса массового удаления слотов
type Request struct {
	UserID    int64       // ID владельца профиля
	ProfileID int64       // ID профиля мастера
	Dates     []time.Time // Даты, расписание которых удаляется
}

// Response модель ответа массового удаления
// Даты с бронированиями защищены и не очищаются
type Response struct {
	SuccessCount   int      // Количество успешно очищенных дат
	FailedCount    int      // Количество дат с ошибками
	FailedDates    []string // Даты с ошибками, "2026-09-15"
	ProtectedDates []string // Даты, пропущенные из-за существующих бронирований
	DeletedSlots   int64    // Всего удалено слотов
}
