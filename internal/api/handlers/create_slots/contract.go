package create_slots

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
)

type SlotService interface {
	CreateSlots(ctx context.Context, req *models.CreateSlotsRequest) (*models.SlotListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
