package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
)

// maxRefAttempts предел попыток подбора уникального кода бронирования
const maxRefAttempts = 5

// UseCase use case создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Резервирование места и запись бронирования выполняются в одной сериализуемой
// транзакции: превышение вместимости слота невозможно даже при параллельных запросах
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, profile=%d, date=%s, time=%s",
		req.UserID, req.ProfileID, req.Date.Format(domain.DateFormat), req.TimeSlot)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверка по серверному времени: на прошедшее время записаться нельзя
	now := uc.timeProvider.Now()
	date := domain.NormalizeDate(req.Date)
	if domain.IsSlotInPast(date, req.TimeSlot.Start(), now) {
		uc.logger.Warn("CreateBooking: slot %s on %s is in the past", req.TimeSlot, date.Format(domain.DateFormat))
		return nil, ErrPastSlot
	}

	var result *domain.Booking

	// 3. Код бронирования генерируется заново при коллизии
	for attempt := 0; attempt < maxRefAttempts; attempt++ {
		ref := generateBookingRef()

		err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			// 3.1. Находим слот по профилю, дате и интервалу
			slot, err := uc.slotRepo.GetByProfileDateTime(txCtx, req.ProfileID, date, req.TimeSlot.String())
			if err != nil {
				if errors.Is(err, slotRepo.ErrSlotNotFound) {
					uc.logger.Warn("CreateBooking: slot %s on %s not found for profile=%d",
						req.TimeSlot, date.Format(domain.DateFormat), req.ProfileID)
					return ErrSlotNotFound
				}
				uc.logger.Error("CreateBooking: failed to get slot: %v", err)
				return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
			}

			if !slot.IsAvailable {
				uc.logger.Warn("CreateBooking: slot id=%d is disabled", slot.ID)
				return ErrSlotUnavailable
			}

			// 3.2. Атомарно занимаем место: условие в UPDATE исключает овербукинг
			if err := uc.slotRepo.Reserve(txCtx, slot.ID); err != nil {
				if errors.Is(err, slotRepo.ErrSlotUnavailable) {
					uc.logger.Warn("CreateBooking: slot id=%d has no free spots, %d/%d taken",
						slot.ID, slot.BookedCount, slot.MaxCapacity)
					return ErrSlotFull
				}
				uc.logger.Error("CreateBooking: failed to reserve slot id=%d: %v", slot.ID, err)
				return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
			}

			// 3.3. Сохраняем бронирование с денормализованными датой и интервалом
			booking := &domain.Booking{
				BookingRef:  ref,
				UserID:      req.UserID,
				ProfileID:   req.ProfileID,
				SlotID:      slot.ID,
				ServiceID:   req.ServiceID,
				BookingDate: date,
				TimeSlot:    req.TimeSlot,
				Status:      domain.StatusPending,
				Notes:       req.Notes,
			}

			created, err := uc.bookingRepo.Create(txCtx, booking)
			if err != nil {
				if errors.Is(err, bookingRepo.ErrDuplicateRef) {
					return err
				}
				uc.logger.Error("CreateBooking: failed to create booking: %v", err)
				return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
			}

			result = created
			return nil
		})

		if err != nil {
			// Коллизия кода: транзакция откатилась целиком, пробуем с новым кодом
			if errors.Is(err, bookingRepo.ErrDuplicateRef) {
				uc.logger.Warn("CreateBooking: booking ref %s collided, retrying", ref)
				continue
			}
			return nil, err
		}

		uc.logger.Info("CreateBooking: successfully created booking id=%d, ref=%s", result.ID, result.BookingRef)
		return &Response{
			ID:          result.ID,
			BookingRef:  result.BookingRef,
			UserID:      result.UserID,
			ProfileID:   result.ProfileID,
			SlotID:      result.SlotID,
			ServiceID:   result.ServiceID,
			BookingDate: result.BookingDate,
			TimeSlot:    result.TimeSlot,
			Status:      string(result.Status),
			Notes:       result.Notes,
			CreatedAt:   result.CreatedAt,
			UpdatedAt:   result.UpdatedAt,
		}, nil
	}

	uc.logger.Error("CreateBooking: exhausted %d attempts to generate a unique ref", maxRefAttempts)
	return nil, ErrRefGeneration
}

// generateBookingRef генерирует короткий код бронирования, например "A3F09B"
// Шесть шестнадцатеричных символов; уникальность гарантирует ограничение в БД
func generateBookingRef() string {
	id := uuid.New()
	return fmt.Sprintf("%X", id[0:3])
}
