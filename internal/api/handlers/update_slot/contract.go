package update_slot

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
)

type SlotService interface {
	UpdateCapacity(ctx context.Context, slotID int64, req *models.UpdateCapacityRequest) (*models.SlotResponse, error)
	ToggleAvailability(ctx context.Context, slotID int64, req *models.ToggleAvailabilityRequest) (*models.SlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
