package domain

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Slot атомарная единица расписания: временной интервал на конкретную дату
// для конкретного профиля, с вместимостью и счётчиком бронирований
//
// Инварианты:
// - 0 <= BookedCount <= MaxCapacity
// - (ProfileID, Date, TimeSlot) уникальна
// - слот с BookedCount > 0 нельзя удалить или урезать ниже BookedCount
type Slot struct {
	ID          int64
	ProfileID   int64
	Date        time.Time // дата без времени, нормализована к полуночи
	TimeSlot    types.TimeRange
	MaxCapacity int
	BookedCount int
	IsAvailable bool // ручной переключатель видимости, не зависит от счётчиков

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFull returns true if the slot has no free spots left
func (s *Slot) IsFull() bool {
	return s.BookedCount >= s.MaxCapacity
}

// FreeSpots returns the number of spots still open for booking
func (s *Slot) FreeSpots() int {
	free := s.MaxCapacity - s.BookedCount
	if free < 0 {
		return 0
	}
	return free
}

// HasBookings returns true if at least one booking holds capacity in the slot
func (s *Slot) HasBookings() bool {
	return s.BookedCount > 0
}

// CanReduceCapacityTo проверяет, что вместимость можно уменьшить до newCapacity
// без потери существующих бронирований
func (s *Slot) CanReduceCapacityTo(newCapacity int) bool {
	return newCapacity >= s.BookedCount
}

// DateAvailability производный агрегат по всем слотам одной даты
// Никогда не хранится отдельно - всегда пересчитывается из слотов,
// чтобы не расходиться с ними
type DateAvailability struct {
	Date           time.Time
	TotalSlots     int
	AvailableSlots int // сумма свободных мест по слотам с IsAvailable
	BookedSlots    int // сумма BookedCount по всем слотам
}

// AggregateByDate группирует слоты по датам и считает агрегаты
// Единственная точка вычисления DateAvailability для сервера и тестов
func AggregateByDate(slots []*Slot) []DateAvailability {
	byDate := make(map[string]*DateAvailability)

	for _, slot := range slots {
		key := slot.Date.Format(DateFormat)
		agg, ok := byDate[key]
		if !ok {
			agg = &DateAvailability{Date: slot.Date}
			byDate[key] = agg
		}

		agg.TotalSlots++
		agg.BookedSlots += slot.BookedCount
		if slot.IsAvailable {
			agg.AvailableSlots += slot.FreeSpots()
		}
	}

	result := make([]DateAvailability, 0, len(byDate))
	for _, agg := range byDate {
		result = append(result, *agg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result
}

// IsSlotInPast проверяет, что слот уже нельзя забронировать по серверным часам
// Слот в прошлом, если его дата раньше сегодняшней, либо дата сегодняшняя
// и начало слота не позже текущего времени дня
// Клиентские часы здесь никогда не участвуют
func IsSlotInPast(date time.Time, start types.TimeString, now time.Time) bool {
	if IsDateInPast(date, now) {
		return true
	}
	if !IsSameDay(date, now) {
		return false
	}
	return !start.IsAfter(types.NewTimeString(now))
}

// IsDateInPast проверяет, что дата раньше сегодняшнего дня
func IsDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}

// IsSameDay проверяет, что две даты относятся к одному и тому же дню
func IsSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// NormalizeDate обнуляет компонент времени у даты
func NormalizeDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}
