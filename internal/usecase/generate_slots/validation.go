package generate_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxCapacityLimit int) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.ProfileID <= 0 {
		return fmt.Errorf("%w: profileID must be positive", ErrInvalidInput)
	}

	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}

	if domain.NormalizeDate(req.EndDate).Before(domain.NormalizeDate(req.StartDate)) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	for _, day := range req.DaysOfWeek {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("%w: invalid day of week %d", ErrInvalidInput, day)
		}
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	if err := req.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
	}

	if req.SlotDurationMinutes < domain.MinSlotDurationMinutes || req.SlotDurationMinutes > domain.MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slotDurationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}

	if req.MaxCapacity < domain.MinSlotCapacity || req.MaxCapacity > maxCapacityLimit {
		return fmt.Errorf("%w: maxCapacity must be between %d and %d",
			ErrInvalidInput, domain.MinSlotCapacity, maxCapacityLimit)
	}

	// Перерыв задаётся только парой
	if (req.BreakStart == nil) != (req.BreakEnd == nil) {
		return fmt.Errorf("%w: breakStart and breakEnd must be set together", ErrInvalidInput)
	}

	return nil
}
