package bulk_delete_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	HasBookedSlots(ctx context.Context, profileID int64, date time.Time) (bool, error)
	DeleteUnbookedByDate(ctx context.Context, profileID int64, date time.Time) (int64, error)
}

// ProfileServiceClient интерфейс клиента для ProfileService
type ProfileServiceClient interface {
	GetProfile(ctx context.Context, profileID int64) (*profileservice.Profile, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
