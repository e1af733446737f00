package domain

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

var (
	// ErrInvalidTimeWindow возвращается, когда конец окна не позже начала
	ErrInvalidTimeWindow = errors.New("domain: end time must be after start time")

	// ErrInvalidSlotDuration возвращается при неположительной длительности слота
	ErrInvalidSlotDuration = errors.New("domain: slot duration must be positive")

	// ErrInvalidBreakWindow возвращается при некорректном окне перерыва
	ErrInvalidBreakWindow = errors.New("domain: break end must be after break start")
)

// PartitionTimeRange детерминированно разбивает окно [start, end) на
// последовательные непересекающиеся интервалы фиксированной длины duration
//
// Интервал, пересекающийся с окном перерыва [breakStart, breakEnd),
// выбрасывается целиком - частично пересекающиеся интервалы не обрезаются,
// чтобы все слоты оставались одной длины. Хвостовой интервал, не влезающий
// в окно до end, тоже отбрасывается
//
// Единственная реализация разбиения: её используют и превью шаблона,
// и генератор слотов
func PartitionTimeRange(
	start, end types.TimeString,
	durationMinutes int,
	breakStart, breakEnd *types.TimeString,
) ([]TemplateSlot, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := end.Validate(); err != nil {
		return nil, err
	}
	if !end.IsAfter(start) {
		return nil, fmt.Errorf("%w: %s-%s", ErrInvalidTimeWindow, start, end)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlotDuration, durationMinutes)
	}

	hasBreak := breakStart != nil && breakEnd != nil
	if hasBreak {
		if err := breakStart.Validate(); err != nil {
			return nil, err
		}
		if err := breakEnd.Validate(); err != nil {
			return nil, err
		}
		if !breakEnd.IsAfter(*breakStart) {
			return nil, fmt.Errorf("%w: %s-%s", ErrInvalidBreakWindow, *breakStart, *breakEnd)
		}
	}

	startMin, err := start.Minutes()
	if err != nil {
		return nil, err
	}
	endMin, err := end.Minutes()
	if err != nil {
		return nil, err
	}

	var breakStartMin, breakEndMin int
	if hasBreak {
		breakStartMin, err = breakStart.Minutes()
		if err != nil {
			return nil, err
		}
		breakEndMin, err = breakEnd.Minutes()
		if err != nil {
			return nil, err
		}
	}

	slots := make([]TemplateSlot, 0)

	for cur := startMin; cur+durationMinutes <= endMin; cur += durationMinutes {
		slotEnd := cur + durationMinutes

		// Интервал, задевающий перерыв, пропускаем целиком
		if hasBreak && cur < breakEndMin && slotEnd > breakStartMin {
			continue
		}

		slotStart, err := types.NewTimeStringFromMinutes(cur)
		if err != nil {
			return nil, err
		}
		slotEndTime, err := types.NewTimeStringFromMinutes(slotEnd)
		if err != nil {
			return nil, err
		}

		slots = append(slots, TemplateSlot{
			StartTime: slotStart,
			EndTime:   slotEndTime,
		})
	}

	return slots, nil
}
