package bulk_delete_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	profileClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
)

// UseCase use case массового удаления расписания по датам
type UseCase struct {
	slotRepo      SlotRepository
	profileClient ProfileServiceClient
	txManager     TransactionManager
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	profileClient ProfileServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:      slotRepo,
		profileClient: profileClient,
		txManager:     txManager,
		logger:        logger,
	}
}

// Execute удаляет свободные слоты на каждой дате из списка
// Дата с бронированиями защищена целиком: на ней не удаляется ни один слот,
// даже свободный. Каждая дата обрабатывается в собственной транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BulkDeleteSlots: profile=%d, dates=%d, user=%d", req.ProfileID, len(req.Dates), req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BulkDeleteSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем владение профилем
	if err := uc.checkOwnerAccess(ctx, req.ProfileID, req.UserID); err != nil {
		return nil, err
	}

	result := domain.NewBulkOperationResult()
	resp := &Response{}
	seen := make(map[string]bool, len(req.Dates))

	// 3. Обходим даты в порядке запроса
	for _, raw := range req.Dates {
		date := domain.NormalizeDate(raw)
		key := date.Format(domain.DateFormat)

		// Дубликаты дат обрабатываются один раз
		if seen[key] {
			continue
		}
		seen[key] = true

		deleted, protected, err := uc.deleteForDate(ctx, req.ProfileID, date)
		if err != nil {
			uc.logger.Error("BulkDeleteSlots: failed for date=%s: %v", key, err)
			result.AddFailed(date)
			continue
		}
		if protected {
			uc.logger.Info("BulkDeleteSlots: date=%s is protected by existing bookings", key)
			result.AddProtected(date)
			continue
		}

		resp.DeletedSlots += deleted
		result.AddSuccess()
	}

	resp.SuccessCount = result.SuccessCount
	resp.FailedCount = result.FailedCount
	resp.FailedDates = result.FailedDates
	resp.ProtectedDates = result.ProtectedDates

	uc.logger.Info("BulkDeleteSlots: profile=%d done, dates ok=%d, failed=%d, protected=%d, slots deleted=%d",
		req.ProfileID, resp.SuccessCount, resp.FailedCount, len(resp.ProtectedDates), resp.DeletedSlots)
	return resp, nil
}

// deleteForDate удаляет свободные слоты даты в одной транзакции
// Проверка защиты и удаление идут под одной сериализуемой транзакцией
func (uc *UseCase) deleteForDate(ctx context.Context, profileID int64, date time.Time) (int64, bool, error) {
	var deleted int64
	var protected bool

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		deleted = 0
		protected = false

		hasBooked, err := uc.slotRepo.HasBookedSlots(txCtx, profileID, date)
		if err != nil {
			return fmt.Errorf("check bookings: %v", err)
		}
		if hasBooked {
			protected = true
			return nil
		}

		count, err := uc.slotRepo.DeleteUnbookedByDate(txCtx, profileID, date)
		if err != nil {
			return fmt.Errorf("delete slots: %v", err)
		}

		deleted = count
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	return deleted, protected, nil
}

func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.ProfileID <= 0 {
		return fmt.Errorf("%w: profileID must be positive", ErrInvalidInput)
	}
	if len(req.Dates) == 0 {
		return fmt.Errorf("%w: dates list is empty", ErrInvalidInput)
	}
	if len(req.Dates) > domain.MaxBulkDates {
		return fmt.Errorf("%w: maximum is %d dates", ErrTooManyDates, domain.MaxBulkDates)
	}

	return nil
}

// checkOwnerAccess проверяет, что пользователь является владельцем профиля
func (uc *UseCase) checkOwnerAccess(ctx context.Context, profileID, userID int64) error {
	profile, err := uc.profileClient.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, profileClient.ErrProfileNotFound) {
			uc.logger.Warn("BulkDeleteSlots: profile=%d not found", profileID)
			return ErrProfileNotFound
		}
		uc.logger.Error("BulkDeleteSlots: failed to get profile=%d: %v", profileID, err)
		return fmt.Errorf("%w: failed to get profile: %v", ErrInternal, err)
	}

	if profile.OwnerID != userID {
		uc.logger.Warn("BulkDeleteSlots: user=%d is not the owner of profile=%d", userID, profileID)
		return ErrAccessDenied
	}

	return nil
}
