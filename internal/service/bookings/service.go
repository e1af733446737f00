package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
	profileClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo   BookingRepository
	slotRepo      SlotRepository
	profileClient ProfileServiceClient
	txManager     TransactionManager
	logger        Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	profileClient ProfileServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:   bookingRepo,
		slotRepo:      slotRepo,
		profileClient: profileClient,
		txManager:     txManager,
		logger:        logger,
	}
}

// GetByID получает бронирование по ID
// Доступно клиенту, создавшему бронирование, и владельцу профиля мастера
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetByRef получает бронирование по короткому коду
// Доступно клиенту, создавшему бронирование, и владельцу профиля мастера
func (s *Service) GetByRef(ctx context.Context, ref string, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByRef: fetching booking ref=%s for user=%d", ref, userID)

	if ref == "" {
		return nil, fmt.Errorf("%w: booking ref is required", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByRef: booking ref=%s not found", ref)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByRef: repository error for booking ref=%s: %v", ref, err)
		return nil, fmt.Errorf("%w: GetByRef - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByRef: access denied for user=%d to booking ref=%s", userID, ref)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование и освобождает место в слоте
// Пользователь может отменить своё бронирование, владелец профиля — любое
// бронирование своего профиля. Обновление статуса и счётчика слота выполняются
// в одной сериализуемой транзакции
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	if len(req.CancellationReason) > domain.MaxCancelReasonLength {
		return fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrInvalidInput, domain.MaxCancelReasonLength)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, booking, req.UserID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return err
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return ErrCannotCancel
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Cancel(txCtx, bookingID, domain.StatusCancelled, req.CancellationReason); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		// Активное бронирование удерживало место — освобождаем
		if err := s.slotRepo.Release(txCtx, booking.SlotID); err != nil {
			s.logger.Error("Cancel: failed to release slot=%d: %v", booking.SlotID, err)
			return fmt.Errorf("%w: Cancel - failed to release slot: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// UpdateStatus обновляет статус бронирования
// Доступно только владельцу профиля мастера (подтверждение, отклонение, неявка).
// Для отмены используется Cancel. Переход между активным и неактивным статусом
// меняет счётчик занятости слота в той же транзакции
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.Status, req.UserID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return nil, ErrInvalidStatus
	}
	if newStatus == domain.StatusCancelled {
		s.logger.Warn("UpdateStatus: cancellation requested through status update for booking id=%d", bookingID)
		return nil, fmt.Errorf("%w: use the cancel operation instead", ErrInvalidStatus)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	// Статусы меняет только владелец профиля
	if err := s.checkProfileOwner(ctx, booking.ProfileID, req.UserID); err != nil {
		s.logger.Warn("UpdateStatus: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	wasActive := booking.IsActive()
	willBeActive := newStatus == domain.StatusPending || newStatus == domain.StatusConfirmed

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Возврат в активный статус требует свободного места
		if !wasActive && willBeActive {
			if err := s.slotRepo.Reserve(txCtx, booking.SlotID); err != nil {
				if errors.Is(err, slotRepo.ErrSlotUnavailable) {
					s.logger.Warn("UpdateStatus: slot=%d has no free spots for booking id=%d", booking.SlotID, bookingID)
					return ErrSlotFull
				}
				s.logger.Error("UpdateStatus: failed to reserve slot=%d: %v", booking.SlotID, err)
				return fmt.Errorf("%w: UpdateStatus - failed to reserve slot: %v", ErrInternal, err)
			}
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, newStatus); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}

		if wasActive && !willBeActive {
			if err := s.slotRepo.Release(txCtx, booking.SlotID); err != nil {
				s.logger.Error("UpdateStatus: failed to release slot=%d: %v", booking.SlotID, err)
				return fmt.Errorf("%w: UpdateStatus - failed to release slot: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		s.logger.Error("UpdateStatus: failed to reload booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	return models.FromDomainBooking(updated), nil
}

// Вспомогательные методы

// checkUserAccess проверяет, что пользователь имеет доступ к бронированию
// Пользователь видит своё бронирование, владелец профиля — бронирования профиля
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.UserID == userID {
		return nil
	}

	if err := s.checkProfileOwner(ctx, booking.ProfileID, userID); err != nil {
		// Ошибка уже залогирована в checkProfileOwner
		return ErrAccessDenied
	}

	return nil
}

// checkProfileOwner проверяет, что пользователь является владельцем профиля
func (s *Service) checkProfileOwner(ctx context.Context, profileID, userID int64) error {
	profile, err := s.profileClient.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, profileClient.ErrProfileNotFound) {
			s.logger.Warn("checkProfileOwner: profile=%d not found", profileID)
			return ErrProfileNotFound
		}
		s.logger.Error("checkProfileOwner: failed to get profile=%d: %v", profileID, err)
		return fmt.Errorf("%w: checkProfileOwner - failed to get profile: %v", ErrInternal, err)
	}

	if profile.OwnerID != userID {
		return ErrAccessDenied
	}

	return nil
}
