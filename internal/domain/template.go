package domain

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// SlotTemplate именованный многоразовый шаблон генерации слотов
// У владельца может быть не больше одного шаблона с IsDefault = true
type SlotTemplate struct {
	ID        int64
	OwnerID   int64
	Name      string
	IsDefault bool
	Slots     []TemplateSlot // упорядочены по времени начала

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TemplateSlot один интервал шаблона
type TemplateSlot struct {
	StartTime types.TimeString
	EndTime   types.TimeString
}

// Range возвращает интервал в форме TimeRange (HH:MM-HH:MM)
func (t TemplateSlot) Range() (types.TimeRange, error) {
	return types.NewTimeRange(t.StartTime, t.EndTime)
}
