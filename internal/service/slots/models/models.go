package models

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Request модели

// SlotInput описывает один временной интервал при ручном создании слотов
type SlotInput struct {
	StartTime types.TimeString `json:"startTime"` // "10:00"
	EndTime   types.TimeString `json:"endTime"`   // "11:00"
}

// CreateSlotsRequest запрос на создание слотов на дату
type CreateSlotsRequest struct {
	UserID      int64       `json:"userId"`
	ProfileID   int64       `json:"profileId"`
	Date        time.Time   `json:"date"`
	Slots       []SlotInput `json:"slots"`
	MaxCapacity int         `json:"maxCapacity"`
}

// UpdateCapacityRequest запрос на изменение вместимости слота
type UpdateCapacityRequest struct {
	UserID      int64 `json:"userId"`
	MaxCapacity int   `json:"maxCapacity"`
}

// ToggleAvailabilityRequest запрос на включение/выключение слота
type ToggleAvailabilityRequest struct {
	UserID      int64 `json:"userId"`
	IsAvailable bool  `json:"isAvailable"`
}

// Response модели

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID          int64  `json:"id"`
	ProfileID   int64  `json:"profileId"`
	Date        string `json:"date"`      // "2026-09-15"
	TimeSlot    string `json:"timeSlot"`  // "10:00-11:00"
	StartTime   string `json:"startTime"` // "10:00"
	EndTime     string `json:"endTime"`   // "11:00"
	MaxCapacity int    `json:"maxCapacity"`
	BookedCount int    `json:"bookedCount"`
	FreeSpots   int    `json:"freeSpots"`
	IsAvailable bool   `json:"isAvailable"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SlotListResponse ответ со списком слотов на дату
type SlotListResponse struct {
	ProfileID int64          `json:"profileId"`
	Date      string         `json:"date"`
	Slots     []SlotResponse `json:"slots"`
}

// DayAvailabilityResponse агрегированная доступность на один день
type DayAvailabilityResponse struct {
	Date           string `json:"date"`
	TotalSlots     int    `json:"totalSlots"`
	AvailableSlots int    `json:"availableSlots"`
	BookedSlots    int    `json:"bookedSlots"`
}

// AvailabilityRangeResponse агрегированная доступность за период
type AvailabilityRangeResponse struct {
	ProfileID int64                     `json:"profileId"`
	StartDate string                    `json:"startDate"`
	EndDate   string                    `json:"endDate"`
	Days      []DayAvailabilityResponse `json:"days"`
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.Slot) *SlotResponse {
	if s == nil {
		return nil
	}

	return &SlotResponse{
		ID:          s.ID,
		ProfileID:   s.ProfileID,
		Date:        s.Date.Format(domain.DateFormat),
		TimeSlot:    s.TimeSlot.String(),
		StartTime:   s.TimeSlot.Start().String(),
		EndTime:     s.TimeSlot.End().String(),
		MaxCapacity: s.MaxCapacity,
		BookedCount: s.BookedCount,
		FreeSpots:   s.FreeSpots(),
		IsAvailable: s.IsAvailable,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// FromDomainSlotList конвертирует список слотов на дату в DTO
func FromDomainSlotList(profileID int64, date time.Time, slots []*domain.Slot) *SlotListResponse {
	resp := &SlotListResponse{
		ProfileID: profileID,
		Date:      date.Format(domain.DateFormat),
		Slots:     make([]SlotResponse, 0, len(slots)),
	}

	for _, s := range slots {
		if slotResp := FromDomainSlot(s); slotResp != nil {
			resp.Slots = append(resp.Slots, *slotResp)
		}
	}

	return resp
}

// FromDomainAvailability конвертирует агрегаты по датам в DTO
func FromDomainAvailability(profileID int64, startDate, endDate time.Time, days []domain.DateAvailability) *AvailabilityRangeResponse {
	resp := &AvailabilityRangeResponse{
		ProfileID: profileID,
		StartDate: startDate.Format(domain.DateFormat),
		EndDate:   endDate.Format(domain.DateFormat),
		Days:      make([]DayAvailabilityResponse, 0, len(days)),
	}

	for _, d := range days {
		resp.Days = append(resp.Days, DayAvailabilityResponse{
			Date:           d.Date.Format(domain.DateFormat),
			TotalSlots:     d.TotalSlots,
			AvailableSlots: d.AvailableSlots,
			BookedSlots:    d.BookedSlots,
		})
	}

	return resp
}
