package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	profileClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
)

// UseCase use case массовой генерации слотов на период
type UseCase struct {
	slotRepo         SlotRepository
	profileClient    ProfileServiceClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	maxCapacityLimit int
	maxRangeDays     int
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	profileClient ProfileServiceClient,
	txManager TransactionManager,
	maxCapacityLimit int,
	maxRangeDays int,
	logger Logger,
) *UseCase {
	if maxCapacityLimit <= 0 {
		maxCapacityLimit = domain.DefaultMaxCapacityLimit
	}
	if maxRangeDays <= 0 {
		maxRangeDays = domain.DefaultMaxRangeDays
	}

	return &UseCase{
		slotRepo:         slotRepo,
		profileClient:    profileClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		maxCapacityLimit: maxCapacityLimit,
		maxRangeDays:     maxRangeDays,
		logger:           logger,
	}
}

// Execute выполняет массовую генерацию слотов
// Ошибка на одной дате не останавливает обход: каждая дата обрабатывается
// в собственной транзакции, упавшие даты перечисляются в ответе.
// Дата с уже существующими интервалами тоже отчитывается как упавшая,
// неконфликтующие интервалы на ней при этом создаются
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GenerateSlots: profile=%d, period=%s to %s, window=%s-%s, duration=%d, user=%d",
		req.ProfileID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat),
		req.StartTime, req.EndTime, req.SlotDurationMinutes, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.maxCapacityLimit); err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	startDate := domain.NormalizeDate(req.StartDate)
	endDate := domain.NormalizeDate(req.EndDate)

	// 2. Проверяем длину периода
	days := int(endDate.Sub(startDate).Hours()/24) + 1
	if days > uc.maxRangeDays {
		uc.logger.Warn("GenerateSlots: range of %d days exceeds limit %d", days, uc.maxRangeDays)
		return nil, fmt.Errorf("%w: maximum range is %d days", ErrRangeTooLarge, uc.maxRangeDays)
	}

	// 3. Проверяем владение профилем
	if err := uc.checkOwnerAccess(ctx, req.ProfileID, req.UserID); err != nil {
		return nil, err
	}

	// 4. Нарезаем рабочее окно один раз - интервалы одинаковы для всех дат
	intervals, err := domain.PartitionTimeRange(req.StartTime, req.EndTime, req.SlotDurationMinutes, req.BreakStart, req.BreakEnd)
	if err != nil {
		uc.logger.Warn("GenerateSlots: partition failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(intervals) == 0 {
		uc.logger.Warn("GenerateSlots: window %s-%s does not fit a %d-minute slot",
			req.StartTime, req.EndTime, req.SlotDurationMinutes)
		return nil, ErrEmptyWindow
	}

	cfg := &domain.GenerationConfig{
		StartDate:           startDate,
		EndDate:             endDate,
		DaysOfWeek:          req.DaysOfWeek,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
		MaxCapacityPerSlot:  req.MaxCapacity,
	}

	now := uc.timeProvider.Now()
	result := domain.NewBulkOperationResult()
	resp := &Response{}

	// 5. Обходим период по дням
	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		if !cfg.MatchesWeekday(date) {
			continue
		}

		// Прошедшие даты пропускаются без генерации
		if domain.IsDateInPast(date, now) {
			resp.SkippedDates = append(resp.SkippedDates, date.Format(domain.DateFormat))
			continue
		}

		created, conflicts, err := uc.generateForDate(ctx, req.ProfileID, date, intervals, cfg.MaxCapacityPerSlot)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed for date=%s: %v", date.Format(domain.DateFormat), err)
			result.AddFailed(date)
			continue
		}

		resp.CreatedSlots += created

		// Дата с конфликтующими интервалами попадает в failedDates,
		// её неконфликтующие слоты при этом созданы
		if conflicts > 0 {
			uc.logger.Warn("GenerateSlots: date=%s has %d conflicting intervals, %d created",
				date.Format(domain.DateFormat), conflicts, created)
			result.AddFailed(date)
			continue
		}

		result.AddSuccess()
	}

	resp.SuccessCount = result.SuccessCount
	resp.FailedCount = result.FailedCount
	resp.FailedDates = result.FailedDates

	uc.logger.Info("GenerateSlots: profile=%d done, dates ok=%d, failed=%d, skipped=%d, slots created=%d",
		req.ProfileID, resp.SuccessCount, resp.FailedCount, len(resp.SkippedDates), resp.CreatedSlots)
	return resp, nil
}

// generateForDate создает слоты на одну дату в отдельной транзакции
// Существующие слоты не трогаются, каждый такой интервал считается конфликтом
func (uc *UseCase) generateForDate(ctx context.Context, profileID int64, date time.Time, intervals []domain.TemplateSlot, capacity int) (int, int, error) {
	var created, conflicts int

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Транзакция может быть повторена при конфликте сериализации
		created = 0
		conflicts = 0
		for _, item := range intervals {
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
			} else {
				conflicts++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return created, conflicts, nil
}

// checkOwnerAccess проверяет, что пользователь является владельцем профиля
func (uc *UseCase) checkOwnerAccess(ctx context.Context, profileID, userID int64) error {
	profile, err := uc.profileClient.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, profileClient.ErrProfileNotFound) {
			uc.logger.Warn("GenerateSlots: profile=%d not found", profileID)
			return ErrProfileNotFound
		}
		uc.logger.Error("GenerateSlots: failed to get profile=%d: %v", profileID, err)
		return fmt.Errorf("%w: failed to get profile: %v", ErrInternal, err)
	}

	if profile.OwnerID != userID {
		uc.logger.Warn("GenerateSlots: user=%d is not the owner of profile=%d", userID, profileID)
		return ErrAccessDenied
	}

	return nil
}
