package domain

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// GenerationConfig одноразовая конфигурация массовой генерации слотов
// Не сохраняется в БД - потребляется генератором целиком
type GenerationConfig struct {
	StartDate           time.Time
	EndDate             time.Time
	DaysOfWeek          []time.Weekday // пустой список = все дни недели
	StartTime           types.TimeString
	EndTime             types.TimeString
	SlotDurationMinutes int
	MaxCapacityPerSlot  int
}

// MatchesWeekday проверяет, попадает ли дата под фильтр дней недели
func (c *GenerationConfig) MatchesWeekday(date time.Time) bool {
	if len(c.DaysOfWeek) == 0 {
		return true
	}
	for _, day := range c.DaysOfWeek {
		if date.Weekday() == day {
			return true
		}
	}
	return false
}

// BulkOperationResult единый контракт ответа любой bulk-операции
// Позволяет вызывающему отчитаться о частичном успехе без угадывания:
// сколько дат прошло, сколько упало и какие даты защищены бронированиями
type BulkOperationResult struct {
	SuccessCount   int
	FailedCount    int
	FailedDates    []string // даты в формате YYYY-MM-DD, порядок обхода сохраняется
	ProtectedDates []string // даты, пропущенные из-за существующих бронирований
}

// NewBulkOperationResult создает пустой результат bulk-операции
func NewBulkOperationResult() *BulkOperationResult {
	return &BulkOperationResult{
		FailedDates:    make([]string, 0),
		ProtectedDates: make([]string, 0),
	}
}

// AddSuccess учитывает успешно обработанную дату
func (r *BulkOperationResult) AddSuccess() {
	r.SuccessCount++
}

// AddFailed учитывает дату с ошибкой
func (r *BulkOperationResult) AddFailed(date time.Time) {
	r.FailedCount++
	r.FailedDates = append(r.FailedDates, date.Format(DateFormat))
}

// AddProtected учитывает дату, защищённую существующими бронированиями
func (r *BulkOperationResult) AddProtected(date time.Time) {
	r.ProtectedDates = append(r.ProtectedDates, date.Format(DateFormat))
}
