package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
	profileClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service сервис управления слотами доступности
type Service struct {
	slotRepo         SlotRepository
	profileClient    ProfileServiceClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	maxCapacityLimit int
	maxRangeDays     int
	logger           Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	profileClient ProfileServiceClient,
	txManager TransactionManager,
	maxCapacityLimit int,
	maxRangeDays int,
	logger Logger,
) *Service {
	if maxCapacityLimit <= 0 {
		maxCapacityLimit = domain.DefaultMaxCapacityLimit
	}
	if maxRangeDays <= 0 {
		maxRangeDays = domain.DefaultMaxRangeDays
	}

	return &Service{
		slotRepo:         slotRepo,
		profileClient:    profileClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		maxCapacityLimit: maxCapacityLimit,
		maxRangeDays:     maxRangeDays,
		logger:           logger,
	}
}

// CreateSlots создает слоты на указанную дату вручную
// Все слоты создаются в одной сериализуемой транзакции: либо все, либо ни одного
func (s *Service) CreateSlots(ctx context.Context, req *models.CreateSlotsRequest) (*models.SlotListResponse, error) {
	s.logger.Info("CreateSlots: profile=%d, date=%s, slots=%d, user=%d",
		req.ProfileID, req.Date.Format(domain.DateFormat), len(req.Slots), req.UserID)

	if err := s.validateCreateRequest(req); err != nil {
		s.logger.Warn("CreateSlots: validation failed: %v", err)
		return nil, err
	}

	if err := s.checkOwnerAccess(ctx, req.ProfileID, req.UserID); err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	date := domain.NormalizeDate(req.Date)

	// Собираем интервалы заранее, чтобы не начинать транзакцию с некорректными данными
	ranges := make([]types.TimeRange, 0, len(req.Slots))
	for _, in := range req.Slots {
		tr, err := types.NewTimeRange(in.StartTime, in.EndTime)
		if err != nil {
			s.logger.Warn("CreateSlots: invalid time range %s-%s: %v", in.StartTime, in.EndTime, err)
			return nil, fmt.Errorf("%w: invalid time range %s-%s", ErrInvalidInput, in.StartTime, in.EndTime)
		}

		if domain.IsSlotInPast(date, tr.Start(), now) {
			s.logger.Warn("CreateSlots: slot %s on %s is in the past", tr, date.Format(domain.DateFormat))
			return nil, ErrPastDate
		}

		ranges = append(ranges, tr)
	}

	var created []*domain.Slot

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Транзакция может быть повторена при конфликте сериализации
		created = make([]*domain.Slot, 0, len(ranges))
		for _, tr := range ranges {
			slot := &domain.Slot{
				ProfileID:   req.ProfileID,
				Date:        date,
				TimeSlot:    tr,
				MaxCapacity: req.MaxCapacity,
				IsAvailable: true,
			}

			result, err := s.slotRepo.Create(txCtx, slot)
			if err != nil {
				if errors.Is(err, slotRepo.ErrSlotAlreadyExists) {
					s.logger.Warn("CreateSlots: slot %s on %s already exists", tr, date.Format(domain.DateFormat))
					return fmt.Errorf("%w: %s", ErrSlotAlreadyExists, tr)
				}
				s.logger.Error("CreateSlots: repository error: %v", err)
				return fmt.Errorf("%w: CreateSlots - repository error: %v", ErrInternal, err)
			}

			created = append(created, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CreateSlots: successfully created %d slots for profile=%d on %s",
		len(created), req.ProfileID, date.Format(domain.DateFormat))
	return models.FromDomainSlotList(req.ProfileID, date, created), nil
}

// UpdateCapacity изменяет вместимость слота
// Новая вместимость не может быть меньше текущего числа бронирований
func (s *Service) UpdateCapacity(ctx context.Context, slotID int64, req *models.UpdateCapacityRequest) (*models.SlotResponse, error) {
	s.logger.Info("UpdateCapacity: slot=%d, capacity=%d, user=%d", slotID, req.MaxCapacity, req.UserID)

	if req.MaxCapacity < domain.MinSlotCapacity || req.MaxCapacity > s.maxCapacityLimit {
		s.logger.Warn("UpdateCapacity: capacity %d out of range [%d, %d]",
			req.MaxCapacity, domain.MinSlotCapacity, s.maxCapacityLimit)
		return nil, fmt.Errorf("%w: maxCapacity must be between %d and %d",
			ErrInvalidInput, domain.MinSlotCapacity, s.maxCapacityLimit)
	}

	slot, err := s.getSlotWithOwnerCheck(ctx, slotID, req.UserID, "UpdateCapacity")
	if err != nil {
		return nil, err
	}

	if err := s.slotRepo.UpdateCapacity(ctx, slotID, req.MaxCapacity); err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			return nil, ErrSlotNotFound
		case errors.Is(err, slotRepo.ErrCapacityBelowBooked):
			s.logger.Warn("UpdateCapacity: slot=%d has %d bookings, cannot reduce to %d",
				slotID, slot.BookedCount, req.MaxCapacity)
			return nil, ErrCapacityBelowBooked
		default:
			s.logger.Error("UpdateCapacity: repository error for slot=%d: %v", slotID, err)
			return nil, fmt.Errorf("%w: UpdateCapacity - repository error: %v", ErrInternal, err)
		}
	}

	updated, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		s.logger.Error("UpdateCapacity: failed to reload slot=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: UpdateCapacity - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateCapacity: slot=%d capacity updated to %d", slotID, req.MaxCapacity)
	return models.FromDomainSlot(updated), nil
}

// ToggleAvailability включает или выключает слот для записи
// Флаг не зависит от счётчиков: выключенный слот сохраняет существующие бронирования
func (s *Service) ToggleAvailability(ctx context.Context, slotID int64, req *models.ToggleAvailabilityRequest) (*models.SlotResponse, error) {
	s.logger.Info("ToggleAvailability: slot=%d, available=%t, user=%d", slotID, req.IsAvailable, req.UserID)

	if _, err := s.getSlotWithOwnerCheck(ctx, slotID, req.UserID, "ToggleAvailability"); err != nil {
		return nil, err
	}

	if err := s.slotRepo.SetAvailability(ctx, slotID, req.IsAvailable); err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("ToggleAvailability: repository error for slot=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: ToggleAvailability - repository error: %v", ErrInternal, err)
	}

	updated, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		s.logger.Error("ToggleAvailability: failed to reload slot=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: ToggleAvailability - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ToggleAvailability: slot=%d is_available=%t", slotID, req.IsAvailable)
	return models.FromDomainSlot(updated), nil
}

// Delete удаляет слот
// Слот с активными бронированиями удалить нельзя
func (s *Service) Delete(ctx context.Context, slotID int64, userID int64) error {
	s.logger.Info("Delete: slot=%d, user=%d", slotID, userID)

	if _, err := s.getSlotWithOwnerCheck(ctx, slotID, userID, "Delete"); err != nil {
		return err
	}

	if err := s.slotRepo.Delete(ctx, slotID); err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			return ErrSlotNotFound
		case errors.Is(err, slotRepo.ErrSlotHasBookings):
			s.logger.Warn("Delete: slot=%d has active bookings", slotID)
			return ErrSlotHasBookings
		default:
			s.logger.Error("Delete: repository error for slot=%d: %v", slotID, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Delete: slot=%d deleted", slotID)
	return nil
}

// GetSlotsForDate возвращает все слоты профиля на дату
// Публичная операция, проверка владения не требуется
func (s *Service) GetSlotsForDate(ctx context.Context, profileID int64, date time.Time) (*models.SlotListResponse, error) {
	s.logger.Info("GetSlotsForDate: profile=%d, date=%s", profileID, date.Format(domain.DateFormat))

	if profileID <= 0 {
		return nil, fmt.Errorf("%w: profileID must be positive", ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	normalized := domain.NormalizeDate(date)

	slots, err := s.slotRepo.GetByDate(ctx, profileID, normalized)
	if err != nil {
		s.logger.Error("GetSlotsForDate: repository error for profile=%d: %v", profileID, err)
		return nil, fmt.Errorf("%w: GetSlotsForDate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetSlotsForDate: fetched %d slots for profile=%d", len(slots), profileID)
	return models.FromDomainSlotList(profileID, normalized, slots), nil
}

// GetAvailabilityRange возвращает агрегированную доступность профиля за период
// Публичная операция, проверка владения не требуется
func (s *Service) GetAvailabilityRange(ctx context.Context, profileID int64, startDate, endDate time.Time) (*models.AvailabilityRangeResponse, error) {
	s.logger.Info("GetAvailabilityRange: profile=%d, period=%s to %s",
		profileID, startDate.Format(domain.DateFormat), endDate.Format(domain.DateFormat))

	if profileID <= 0 {
		return nil, fmt.Errorf("%w: profileID must be positive", ErrInvalidInput)
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}

	start := domain.NormalizeDate(startDate)
	end := domain.NormalizeDate(endDate)

	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > s.maxRangeDays {
		s.logger.Warn("GetAvailabilityRange: range of %d days exceeds limit %d", days, s.maxRangeDays)
		return nil, fmt.Errorf("%w: maximum range is %d days", ErrRangeTooLarge, s.maxRangeDays)
	}

	slots, err := s.slotRepo.GetByDateRange(ctx, profileID, start, end)
	if err != nil {
		s.logger.Error("GetAvailabilityRange: repository error for profile=%d: %v", profileID, err)
		return nil, fmt.Errorf("%w: GetAvailabilityRange - repository error: %v", ErrInternal, err)
	}

	availability := domain.AggregateByDate(slots)

	s.logger.Info("GetAvailabilityRange: aggregated %d days for profile=%d", len(availability), profileID)
	return models.FromDomainAvailability(profileID, start, end, availability), nil
}

// Вспомогательные методы

func (s *Service) validateCreateRequest(req *models.CreateSlotsRequest) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.ProfileID <= 0 {
		return fmt.Errorf("%w: profileID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if len(req.Slots) == 0 {
		return fmt.Errorf("%w: slots list is empty", ErrInvalidInput)
	}
	if req.MaxCapacity < domain.MinSlotCapacity || req.MaxCapacity > s.maxCapacityLimit {
		return fmt.Errorf("%w: maxCapacity must be between %d and %d",
			ErrInvalidInput, domain.MinSlotCapacity, s.maxCapacityLimit)
	}

	return nil
}

// getSlotWithOwnerCheck загружает слот и проверяет, что пользователь владеет профилем
func (s *Service) getSlotWithOwnerCheck(ctx context.Context, slotID, userID int64, method string) (*domain.Slot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("%s: slot=%d not found", method, slotID)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("%s: repository error for slot=%d: %v", method, slotID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}

	if err := s.checkOwnerAccess(ctx, slot.ProfileID, userID); err != nil {
		s.logger.Warn("%s: access denied for user=%d to slot=%d", method, userID, slotID)
		return nil, err
	}

	return slot, nil
}

// checkOwnerAccess проверяет, что пользователь является владельцем профиля
func (s *Service) checkOwnerAccess(ctx context.Context, profileID, userID int64) error {
	profile, err := s.profileClient.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, profileClient.ErrProfileNotFound) {
			s.logger.Warn("checkOwnerAccess: profile=%d not found", profileID)
			return ErrProfileNotFound
		}
		s.logger.Error("checkOwnerAccess: failed to get profile=%d: %v", profileID, err)
		return fmt.Errorf("%w: checkOwnerAccess - failed to get profile: %v", ErrInternal, err)
	}

	if profile.OwnerID != userID {
		s.logger.Warn("checkOwnerAccess: user=%d is not the owner of profile=%d", userID, profileID)
		return ErrAccessDenied
	}

	return nil
}
