package models

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Request модели

// TemplateSlotInput один интервал шаблона
type TemplateSlotInput struct {
	StartTime types.TimeString `json:"startTime"` // "10:00"
	EndTime   types.TimeString `json:"endTime"`   // "11:00"
}

// CreateTemplateRequest запрос на создание шаблона
type CreateTemplateRequest struct {
	UserID    int64               `json:"userId"`
	Name      string              `json:"name"`
	IsDefault bool                `json:"isDefault"`
	Slots     []TemplateSlotInput `json:"slots"`
}

// UpdateTemplateRequest запрос на обновление шаблона
type UpdateTemplateRequest struct {
	UserID    int64               `json:"userId"`
	Name      string              `json:"name"`
	IsDefault bool                `json:"isDefault"`
	Slots     []TemplateSlotInput `json:"slots"`
}

// PreviewRequest запрос на генерацию слотов без сохранения
type PreviewRequest struct {
	StartTime           types.TimeString  `json:"startTime"`           // "09:00"
	EndTime             types.TimeString  `json:"endTime"`             // "18:00"
	SlotDurationMinutes int               `json:"slotDurationMinutes"` // 60
	BreakStart          *types.TimeString `json:"breakStart,omitempty"`
	BreakEnd            *types.TimeString `json:"breakEnd,omitempty"`
}

// ApplyTemplateRequest запрос на применение шаблона к дате
type ApplyTemplateRequest struct {
	UserID      int64     `json:"userId"`
	ProfileID   int64     `json:"profileId"`
	Date        time.Time `json:"date"`
	MaxCapacity int       `json:"maxCapacity"`
}

// Response модели

// TemplateSlotResponse один интервал шаблона в ответе
type TemplateSlotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// TemplateResponse ответ с данными шаблона
type TemplateResponse struct {
	ID        int64                  `json:"id"`
	OwnerID   int64                  `json:"ownerId"`
	Name      string                 `json:"name"`
	IsDefault bool                   `json:"isDefault"`
	Slots     []TemplateSlotResponse `json:"slots"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TemplateListResponse ответ со списком шаблонов
type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

// PreviewResponse ответ с сгенерированными интервалами
type PreviewResponse struct {
	Slots []TemplateSlotResponse `json:"slots"`
	Count int                    `json:"count"`
}

// ApplyTemplateResponse результат применения шаблона к дате
type ApplyTemplateResponse struct {
	ProfileID    int64                  `json:"profileId"`
	Date         string                 `json:"date"`
	CreatedCount int                    `json:"createdCount"`
	SkippedCount int                    `json:"skippedCount"` // уже существовавшие слоты
	Slots        []TemplateSlotResponse `json:"slots"`
}

// Методы конвертации

// FromDomainTemplate конвертирует domain модель в DTO
func FromDomainTemplate(t *domain.SlotTemplate) *TemplateResponse {
	if t == nil {
		return nil
	}

	resp := &TemplateResponse{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Name:      t.Name,
		IsDefault: t.IsDefault,
		Slots:     FromDomainTemplateSlots(t.Slots),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}

	return resp
}

// FromDomainTemplateList конвертирует список domain моделей в DTO
func FromDomainTemplateList(templates []*domain.SlotTemplate) *TemplateListResponse {
	resp := &TemplateListResponse{
		Templates: make([]TemplateResponse, 0, len(templates)),
	}

	for _, t := range templates {
		if tplResp := FromDomainTemplate(t); tplResp != nil {
			resp.Templates = append(resp.Templates, *tplResp)
		}
	}

	return resp
}

// FromDomainTemplateSlots конвертирует интервалы шаблона в DTO
func FromDomainTemplateSlots(slots []domain.TemplateSlot) []TemplateSlotResponse {
	resp := make([]TemplateSlotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, TemplateSlotResponse{
			StartTime: s.StartTime.String(),
			EndTime:   s.EndTime.String(),
		})
	}
	return resp
}

// ToDomainTemplateSlots конвертирует входные интервалы в domain модель
func ToDomainTemplateSlots(inputs []TemplateSlotInput) []domain.TemplateSlot {
	slots := make([]domain.TemplateSlot, 0, len(inputs))
	for _, in := range inputs {
		slots = append(slots, domain.TemplateSlot{
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
		})
	}
	return slots
}
