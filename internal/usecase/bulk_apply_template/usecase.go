package bulk_apply_template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	templateRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/template"
	profileClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
)

// UseCase use case массового применения шаблона к списку дат
type UseCase struct {
	slotRepo         SlotRepository
	templateRepo     TemplateRepository
	profileClient    ProfileServiceClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	maxCapacityLimit int
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	templateRepo TemplateRepository,
	profileClient ProfileServiceClient,
	txManager TransactionManager,
	maxCapacityLimit int,
	logger Logger,
) *UseCase {
	if maxCapacityLimit <= 0 {
		maxCapacityLimit = domain.DefaultMaxCapacityLimit
	}

	return &UseCase{
		slotRepo:         slotRepo,
		templateRepo:     templateRepo,
		profileClient:    profileClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		maxCapacityLimit: maxCapacityLimit,
		logger:           logger,
	}
}

// Execute применяет шаблон к каждой дате из списка
// Дата с бронированиями защищена: её расписание не перезаписывается.
// На остальных датах интервалы шаблона добавляются к существующим слотам,
// совпадающие интервалы пропускаются. Каждая дата обрабатывается в
// собственной транзакции, частичный успех - норма
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BulkApplyTemplate: template=%d, profile=%d, dates=%d, user=%d",
		req.TemplateID, req.ProfileID, len(req.Dates), req.UserID)

	// 1. Валидация входных данных
	if err := uc.validateRequest(req); err != nil {
		uc.logger.Warn("BulkApplyTemplate: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем владение профилем
	if err := uc.checkOwnerAccess(ctx, req.ProfileID, req.UserID); err != nil {
		return nil, err
	}

	// 3. Загружаем шаблон и проверяем владение
	tpl, err := uc.templateRepo.GetByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, templateRepo.ErrTemplateNotFound) {
			uc.logger.Warn("BulkApplyTemplate: template=%d not found", req.TemplateID)
			return nil, ErrTemplateNotFound
		}
		uc.logger.Error("BulkApplyTemplate: failed to get template=%d: %v", req.TemplateID, err)
		return nil, fmt.Errorf("%w: failed to get template: %v", ErrInternal, err)
	}
	if tpl.OwnerID != req.UserID {
		uc.logger.Warn("BulkApplyTemplate: user=%d is not the owner of template=%d", req.UserID, req.TemplateID)
		return nil, ErrAccessDenied
	}

	now := uc.timeProvider.Now()
	result := domain.NewBulkOperationResult()
	resp := &Response{}
	seen := make(map[string]bool, len(req.Dates))

	// 4. Обходим даты в порядке запроса
	for _, raw := range req.Dates {
		date := domain.NormalizeDate(raw)
		key := date.Format(domain.DateFormat)

		// Дубликаты дат обрабатываются один раз
		if seen[key] {
			continue
		}
		seen[key] = true

		if domain.IsDateInPast(date, now) {
			resp.SkippedDates = append(resp.SkippedDates, key)
			continue
		}

		created, protected, err := uc.applyToDate(ctx, req.ProfileID, date, tpl, req.MaxCapacity)
		if err != nil {
			uc.logger.Error("BulkApplyTemplate: failed for date=%s: %v", key, err)
			result.AddFailed(date)
			continue
		}
		if protected {
			uc.logger.Info("BulkApplyTemplate: date=%s is protected by existing bookings", key)
			result.AddProtected(date)
			continue
		}

		resp.CreatedSlots += created
		result.AddSuccess()
	}

	resp.SuccessCount = result.SuccessCount
	resp.FailedCount = result.FailedCount
	resp.FailedDates = result.FailedDates
	resp.ProtectedDates = result.ProtectedDates

	uc.logger.Info("BulkApplyTemplate: profile=%d done, dates ok=%d, failed=%d, protected=%d, skipped=%d, slots created=%d",
		req.ProfileID, resp.SuccessCount, resp.FailedCount, len(resp.ProtectedDates), len(resp.SkippedDates), resp.CreatedSlots)
	return resp, nil
}

// applyToDate добавляет интервалы шаблона к дате в одной транзакции
// Существующие слоты не трогаются: совпадающий интервал пропускается.
// Проверка защиты и вставка выполняются под одной сериализуемой транзакцией,
// чтобы бронирование, появившееся между ними, не потерялось
func (uc *UseCase) applyToDate(ctx context.Context, profileID int64, date time.Time, tpl *domain.SlotTemplate, capacity int) (int, bool, error) {
	var created int
	var protected bool

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created = 0
		protected = false

		hasBooked, err := uc.slotRepo.HasBookedSlots(txCtx, profileID, date)
		if err != nil {
			return fmt.Errorf("check bookings: %v", err)
		}
		if hasBooked {
			protected = true
			return nil
		}

		for _, item := range tpl.Slots {
			tr, err := item.Range()
			if err != nil {
				return fmt.Errorf("invalid interval %s-%s: %v", item.StartTime, item.EndTime, err)
			}

			slot := &domain.Slot{
				ProfileID:   profileID,
				Date:        date,
				TimeSlot:    tr,
				MaxCapacity: capacity,
				IsAvailable: true,
			}

			inserted, err := uc.slotRepo.CreateIgnoreConflict(txCtx, slot)
			if err != nil {
				return fmt.Errorf("create slot %s: %v", tr, err)
			}
			if inserted {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	return created, protected, nil
}

func (uc *UseCase) validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.ProfileID <= 0 {
		return fmt.Errorf("%w: profileID must be positive", ErrInvalidInput)
	}
	if req.TemplateID <= 0 {
		return fmt.Errorf("%w: templateID must be positive", ErrInvalidInput)
	}
	if len(req.Dates) == 0 {
		return fmt.Errorf("%w: dates list is empty", ErrInvalidInput)
	}
	if len(req.Dates) > domain.MaxBulkDates {
		return fmt.Errorf("%w: maximum is %d dates", ErrTooManyDates, domain.MaxBulkDates)
	}
	if req.MaxCapacity < domain.MinSlotCapacity || req.MaxCapacity > uc.maxCapacityLimit {
		return fmt.Errorf("%w: maxCapacity must be between %d and %d",
			ErrInvalidInput, domain.MinSlotCapacity, uc.maxCapacityLimit)
	}

	return nil
}

// checkOwnerAccess проверяет, что пользователь является владельцем профиля
func (uc *UseCase) checkOwnerAccess(ctx context.Context, profileID, userID int64) error {
	profile, err := uc.profileClient.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, profileClient.ErrProfileNotFound) {
			uc.logger.Warn("BulkApplyTemplate: profile=%d not found", profileID)
			return ErrProfileNotFound
		}
		uc.logger.Error("BulkApplyTemplate: failed to get profile=%d: %v", profileID, err)
		return fmt.Errorf("%w: failed to get profile: %v", ErrInternal, err)
	}

	if profile.OwnerID != userID {
		uc.logger.Warn("BulkApplyTemplate: user=%d is not the owner of profile=%d", userID, profileID)
		return ErrAccessDenied
	}

	return nil
}
