package templates

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
)

// TemplateRepository интерфейс репозитория шаблонов расписания
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.SlotTemplate) (*domain.SlotTemplate, error)
	GetByID(ctx context.Context, id int64) (*domain.SlotTemplate, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.SlotTemplate, error)
	Update(ctx context.Context, id int64, tpl *domain.SlotTemplate) (*domain.SlotTemplate, error)
	Delete(ctx context.Context, id int64) error
	UnsetDefaultForOwner(ctx context.Context, ownerID int64) error
}

// SlotRepository интерфейс репозитория слотов (применение шаблона)
type SlotRepository interface {
	CreateIgnoreConflict(ctx context.Context, slot *domain.Slot) (bool, error)
	GetByDate(ctx context.Context, profileID int64, date time.Time) ([]*domain.Slot, error)
}

// ProfileServiceClient интерфейс клиента для ProfileService
type ProfileServiceClient interface {
	GetProfile(ctx context.Context, profileID int64) (*profileservice.Profile, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
