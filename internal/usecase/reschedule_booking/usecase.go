package reschedule_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
	profileClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
)

// UseCase use case переноса бронирования на другой слот
type UseCase struct {
	bookingRepo   BookingRepository
	slotRepo      SlotRepository
	profileClient ProfileServiceClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	profileClient ProfileServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		slotRepo:      slotRepo,
		profileClient: profileClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет перенос бронирования
// Резерв нового места, обновление бронирования и освобождение старого места
// идут в одной сериализуемой транзакции: при любой ошибке бронирование
// остаётся на прежнем слоте
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, newDate=%s, newTime=%s, user=%d",
		req.BookingID, req.NewDate.Format(domain.DateFormat), req.NewTimeSlot, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем бронирование и проверяем права
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if err := uc.checkUserAccess(ctx, booking, req.UserID); err != nil {
		uc.logger.Warn("RescheduleBooking: access denied for user=%d to booking=%d", req.UserID, req.BookingID)
		return nil, err
	}

	if !booking.CanBeRescheduled() {
		uc.logger.Warn("RescheduleBooking: booking=%d cannot be rescheduled, status=%s", req.BookingID, booking.Status)
		return nil, ErrCannotReschedule
	}

	// 3. Проверка по серверному времени: переносить можно только на будущее
	now := uc.timeProvider.Now()
	newDate := domain.NormalizeDate(req.NewDate)
	if domain.IsSlotInPast(newDate, req.NewTimeSlot.Start(), now) {
		uc.logger.Warn("RescheduleBooking: target slot %s on %s is in the past",
			req.NewTimeSlot, newDate.Format(domain.DateFormat))
		return nil, ErrPastSlot
	}

	oldSlotID := booking.SlotID
	var newSlot *domain.Slot

	// 4. Атомарный перенос
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Находим целевой слот того же профиля
		slot, err := uc.slotRepo.GetByProfileDateTime(txCtx, booking.ProfileID, newDate, req.NewTimeSlot.String())
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("RescheduleBooking: target slot %s on %s not found for profile=%d",
					req.NewTimeSlot, newDate.Format(domain.DateFormat), booking.ProfileID)
				return ErrSlotNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to get target slot: %v", err)
			return fmt.Errorf("%w: failed to get target slot: %v", ErrInternal, err)
		}

		if slot.ID == oldSlotID {
			return ErrSameSlot
		}

		if !slot.IsAvailable {
			uc.logger.Warn("RescheduleBooking: target slot id=%d is disabled", slot.ID)
			return ErrSlotUnavailable
		}

		// 4.2. Сначала занимаем новое место
		if err := uc.slotRepo.Reserve(txCtx, slot.ID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotUnavailable) {
				uc.logger.Warn("RescheduleBooking: target slot id=%d has no free spots", slot.ID)
				return ErrSlotFull
			}
			uc.logger.Error("RescheduleBooking: failed to reserve target slot id=%d: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to reserve target slot: %v", ErrInternal, err)
		}

		// 4.3. Переводим бронирование на новый слот
		if err := uc.bookingRepo.Reschedule(txCtx, booking.ID, slot); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to move booking=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to move booking: %v", ErrInternal, err)
		}

		// 4.4. Освобождаем место в старом слоте
		if err := uc.slotRepo.Release(txCtx, oldSlotID); err != nil {
			uc.logger.Error("RescheduleBooking: failed to release old slot id=%d: %v", oldSlotID, err)
			return fmt.Errorf("%w: failed to release old slot: %v", ErrInternal, err)
		}

		newSlot = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking=%d moved from slot=%d to slot=%d",
		booking.ID, oldSlotID, newSlot.ID)

	return &Response{
		ID:          booking.ID,
		BookingRef:  booking.BookingRef,
		UserID:      booking.UserID,
		ProfileID:   booking.ProfileID,
		SlotID:      newSlot.ID,
		BookingDate: newSlot.Date,
		TimeSlot:    newSlot.TimeSlot,
		Status:      string(booking.Status),
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}, nil
}

func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.NewDate.IsZero() {
		return fmt.Errorf("%w: newDate is required", ErrInvalidInput)
	}
	if req.NewTimeSlot.IsZero() {
		return fmt.Errorf("%w: newTimeSlot is required", ErrInvalidInput)
	}
	if err := req.NewTimeSlot.Validate(); err != nil {
		return fmt.Errorf("%w: invalid newTimeSlot format: %v", ErrInvalidInput, err)
	}

	return nil
}

// checkUserAccess проверяет права на перенос: клиент переносит своё бронирование,
// владелец профиля - любое бронирование своего профиля
func (uc *UseCase) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.UserID == userID {
		return nil
	}

	profile, err := uc.profileClient.GetProfile(ctx, booking.ProfileID)
	if err != nil {
		if errors.Is(err, profileClient.ErrProfileNotFound) {
			return ErrAccessDenied
		}
		uc.logger.Error("RescheduleBooking: failed to get profile=%d: %v", booking.ProfileID, err)
		return fmt.Errorf("%w: failed to get profile: %v", ErrInternal, err)
	}

	if profile.OwnerID != userID {
		return ErrAccessDenied
	}

	return nil
}
