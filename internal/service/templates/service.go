package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	templateRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/template"
	profileClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/templates/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Service сервис управления шаблонами расписания
type Service struct {
	templateRepo     TemplateRepository
	slotRepo         SlotRepository
	profileClient    ProfileServiceClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	maxCapacityLimit int
	logger           Logger
}

// NewService создает новый экземпляр сервиса шаблонов
func NewService(
	templateRepo TemplateRepository,
	slotRepo SlotRepository,
	profileClient ProfileServiceClient,
	txManager TransactionManager,
	maxCapacityLimit int,
	logger Logger,
) *Service {
	if maxCapacityLimit <= 0 {
		maxCapacityLimit = domain.DefaultMaxCapacityLimit
	}

	return &Service{
		templateRepo:     templateRepo,
		slotRepo:         slotRepo,
		profileClient:    profileClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		maxCapacityLimit: maxCapacityLimit,
		logger:           logger,
	}
}

// Create создает шаблон расписания
// У владельца может быть не более одного шаблона по умолчанию: установка
// is_default снимает флаг с предыдущего шаблона в той же транзакции
func (s *Service) Create(ctx context.Context, req *models.CreateTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("Create: template name=%q, default=%t, slots=%d, user=%d",
		req.Name, req.IsDefault, len(req.Slots), req.UserID)

	if err := validateTemplateInput(req.UserID, req.Name, req.Slots); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	tpl := &domain.SlotTemplate{
		OwnerID:   req.UserID,
		Name:      strings.TrimSpace(req.Name),
		IsDefault: req.IsDefault,
		Slots:     models.ToDomainTemplateSlots(req.Slots),
	}

	var created *domain.SlotTemplate

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if tpl.IsDefault {
			if err := s.templateRepo.UnsetDefaultForOwner(txCtx, tpl.OwnerID); err != nil {
				s.logger.Error("Create: failed to unset previous default for owner=%d: %v", tpl.OwnerID, err)
				return fmt.Errorf("%w: Create - failed to unset default: %v", ErrInternal, err)
			}
		}

		result, err := s.templateRepo.Create(txCtx, tpl)
		if err != nil {
			s.logger.Error("Create: repository error: %v", err)
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}

		created = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Create: successfully created template id=%d for owner=%d", created.ID, created.OwnerID)
	return models.FromDomainTemplate(created), nil
}

// GetByID получает шаблон по ID
// Шаблоны видны только владельцу
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.TemplateResponse, error) {
	s.logger.Info("GetByID: fetching template id=%d for user=%d", id, userID)

	tpl, err := s.getOwnedTemplate(ctx, id, userID, "GetByID")
	if err != nil {
		return nil, err
	}

	return models.FromDomainTemplate(tpl), nil
}

// List возвращает все шаблоны владельца
// Шаблон по умолчанию идёт первым
func (s *Service) List(ctx context.Context, userID int64) (*models.TemplateListResponse, error) {
	s.logger.Info("List: fetching templates for user=%d", userID)

	if userID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	templates, err := s.templateRepo.ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("List: repository error for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d templates for user=%d", len(templates), userID)
	return models.FromDomainTemplateList(templates), nil
}

// Update обновляет шаблон целиком: имя, флаг по умолчанию и список интервалов
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("Update: template id=%d, name=%q, default=%t, user=%d", id, req.Name, req.IsDefault, req.UserID)

	if err := validateTemplateInput(req.UserID, req.Name, req.Slots); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	existing, err := s.getOwnedTemplate(ctx, id, req.UserID, "Update")
	if err != nil {
		return nil, err
	}

	tpl := &domain.SlotTemplate{
		OwnerID:   existing.OwnerID,
		Name:      strings.TrimSpace(req.Name),
		IsDefault: req.IsDefault,
		Slots:     models.ToDomainTemplateSlots(req.Slots),
	}

	var updated *domain.SlotTemplate

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if tpl.IsDefault && !existing.IsDefault {
			if err := s.templateRepo.UnsetDefaultForOwner(txCtx, tpl.OwnerID); err != nil {
				s.logger.Error("Update: failed to unset previous default for owner=%d: %v", tpl.OwnerID, err)
				return fmt.Errorf("%w: Update - failed to unset default: %v", ErrInternal, err)
			}
		}

		result, err := s.templateRepo.Update(txCtx, id, tpl)
		if err != nil {
			if errors.Is(err, templateRepo.ErrTemplateNotFound) {
				return ErrTemplateNotFound
			}
			s.logger.Error("Update: repository error for template id=%d: %v", id, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}

		updated = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Update: successfully updated template id=%d", id)
	return models.FromDomainTemplate(updated), nil
}

// Delete удаляет шаблон
// Ранее созданные по шаблону слоты не затрагиваются
func (s *Service) Delete(ctx context.Context, id int64, userID int64) error {
	s.logger.Info("Delete: template id=%d, user=%d", id, userID)

	if _, err := s.getOwnedTemplate(ctx, id, userID, "Delete"); err != nil {
		return err
	}

	if err := s.templateRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, templateRepo.ErrTemplateNotFound) {
			return ErrTemplateNotFound
		}
		s.logger.Error("Delete: repository error for template id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: template id=%d deleted", id)
	return nil
}

// GeneratePreview нарезает рабочее окно на интервалы без сохранения
// Используется для предпросмотра шаблона перед созданием
func (s *Service) GeneratePreview(req *models.PreviewRequest) (*models.PreviewResponse, error) {
	s.logger.Info("GeneratePreview: window=%s-%s, duration=%d", req.StartTime, req.EndTime, req.SlotDurationMinutes)

	slots, err := domain.PartitionTimeRange(req.StartTime, req.EndTime, req.SlotDurationMinutes, req.BreakStart, req.BreakEnd)
	if err != nil {
		s.logger.Warn("GeneratePreview: partition failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resp := &models.PreviewResponse{
		Slots: models.FromDomainTemplateSlots(slots),
		Count: len(slots),
	}

	s.logger.Info("GeneratePreview: generated %d slots", resp.Count)
	return resp, nil
}

// Apply применяет шаблон к дате: создает слоты по интервалам шаблона
// Операция идемпотентна: существующие слоты не трогаются и считаются пропущенными
func (s *Service) Apply(ctx context.Context, templateID int64, req *models.ApplyTemplateRequest) (*models.ApplyTemplateResponse, error) {
	s.logger.Info("Apply: template id=%d, profile=%d, date=%s, user=%d",
		templateID, req.ProfileID, req.Date.Format(domain.DateFormat), req.UserID)

	if req.ProfileID <= 0 {
		return nil, fmt.Errorf("%w: profileID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.MaxCapacity < domain.MinSlotCapacity || req.MaxCapacity > s.maxCapacityLimit {
		return nil, fmt.Errorf("%w: maxCapacity must be between %d and %d",
			ErrInvalidInput, domain.MinSlotCapacity, s.maxCapacityLimit)
	}

	tpl, err := s.getOwnedTemplate(ctx, templateID, req.UserID, "Apply")
	if err != nil {
		return nil, err
	}

	if err := s.checkProfileOwner(ctx, req.ProfileID, req.UserID); err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	date := domain.NormalizeDate(req.Date)

	if domain.IsDateInPast(date, now) {
		s.logger.Warn("Apply: date %s is in the past", date.Format(domain.DateFormat))
		return nil, ErrPastDate
	}

	resp := &models.ApplyTemplateResponse{
		ProfileID: req.ProfileID,
		Date:      date.Format(domain.DateFormat),
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Транзакция может быть повторена при конфликте сериализации
		resp.CreatedCount = 0
		resp.SkippedCount = 0
		resp.Slots = nil

		for _, item := range tpl.Slots {
			// Слоты с уже прошедшим началом не создаются
			if domain.IsSlotInPast(date, item.StartTime, now) {
				resp.SkippedCount++
				continue
			}

			tr, err := item.Range()
			if err != nil {
				s.logger.Error("Apply: template id=%d has invalid interval %s-%s: %v",
					templateID, item.StartTime, item.EndTime, err)
				return fmt.Errorf("%w: Apply - invalid template interval: %v", ErrInternal, err)
			}

			slot := &domain.Slot{
				ProfileID:   req.ProfileID,
				Date:        date,
				TimeSlot:    tr,
				MaxCapacity: req.MaxCapacity,
				IsAvailable: true,
			}

			created, err := s.slotRepo.CreateIgnoreConflict(txCtx, slot)
			if err != nil {
				s.logger.Error("Apply: repository error for slot %s: %v", tr, err)
				return fmt.Errorf("%w: Apply - repository error: %v", ErrInternal, err)
			}

			if created {
				resp.CreatedCount++
				resp.Slots = append(resp.Slots, models.TemplateSlotResponse{
					StartTime: item.StartTime.String(),
					EndTime:   item.EndTime.String(),
				})
			} else {
				resp.SkippedCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Apply: template id=%d applied to profile=%d on %s, created=%d, skipped=%d",
		templateID, req.ProfileID, resp.Date, resp.CreatedCount, resp.SkippedCount)
	return resp, nil
}

// Вспомогательные методы

// validateTemplateInput валидирует имя и интервалы шаблона
func validateTemplateInput(userID int64, name string, inputs []models.TemplateSlotInput) error {
	if userID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(trimmed) > domain.MaxTemplateNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, domain.MaxTemplateNameLength)
	}

	if len(inputs) == 0 {
		return fmt.Errorf("%w: slots list is empty", ErrInvalidInput)
	}
	if len(inputs) > domain.MaxTemplateSlots {
		return fmt.Errorf("%w: template cannot have more than %d slots", ErrInvalidInput, domain.MaxTemplateSlots)
	}

	ranges := make([]types.TimeRange, 0, len(inputs))
	for _, in := range inputs {
		tr, err := types.NewTimeRange(in.StartTime, in.EndTime)
		if err != nil {
			return fmt.Errorf("%w: invalid interval %s-%s", ErrInvalidInput, in.StartTime, in.EndTime)
		}

		// Интервалы внутри шаблона не должны пересекаться
		for _, prev := range ranges {
			if tr.Overlaps(prev) {
				return fmt.Errorf("%w: intervals %s and %s overlap", ErrInvalidInput, prev, tr)
			}
		}

		ranges = append(ranges, tr)
	}

	return nil
}

// getOwnedTemplate загружает шаблон и проверяет владение
func (s *Service) getOwnedTemplate(ctx context.Context, id, userID int64, method string) (*domain.SlotTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, templateRepo.ErrTemplateNotFound) {
			s.logger.Warn("%s: template id=%d not found", method, id)
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("%s: repository error for template id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}

	if tpl.OwnerID != userID {
		s.logger.Warn("%s: access denied for user=%d to template id=%d", method, userID, id)
		return nil, ErrAccessDenied
	}

	return tpl, nil
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
		s.logger.Warn("checkProfileOwner: user=%d is not the owner of profile=%d", userID, profileID)
		return ErrAccessDenied
	}

	return nil
}
