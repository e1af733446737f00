package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
)

type SlotService interface {
	GetAvailabilityRange(ctx context.Context, profileID int64, startDate, endDate time.Time) (*models.AvailabilityRangeResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
