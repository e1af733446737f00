package generate_slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	generateSlots "github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// weekdayNames соответствие имён дней недели значениям time.Weekday
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// GenerateSlotsRequest HTTP request model
type GenerateSlotsRequest struct {
	StartDate           string   `json:"startDate"`            // "2026-09-01"
	EndDate             string   `json:"endDate"`              // "2026-09-30"
	DaysOfWeek          []string `json:"daysOfWeek,omitempty"` // ["monday", "tuesday"], пусто = все дни
	StartTime           string   `json:"startTime"`            // "09:00"
	EndTime             string   `json:"endTime"`              // "18:00"
	SlotDurationMinutes int      `json:"slotDurationMinutes"`  // 60
	MaxCapacity         int      `json:"maxCapacity"`          // 1
}

// GenerateSlotsResponse HTTP response model
type GenerateSlotsResponse struct {
	SuccessCount int      `json:"successCount"`
	FailedCount  int      `json:"failedCount"`
	FailedDates  []string `json:"failedDates,omitempty"`
	SkippedDates []string `json:"skippedDates,omitempty"`
	CreatedSlots int      `json:"createdSlots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *generateSlots.Response) *GenerateSlotsResponse {
	return &GenerateSlotsResponse{
		SuccessCount: resp.SuccessCount,
		FailedCount:  resp.FailedCount,
		FailedDates:  resp.FailedDates,
		SkippedDates: resp.SkippedDates,
		CreatedSlots: resp.CreatedSlots,
	}
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *GenerateSlotsRequest) ToUseCaseRequest(profileID, userID int64) (*generateSlots.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, err
	}

	days := make([]time.Weekday, 0, len(r.DaysOfWeek))
	for _, name := range r.DaysOfWeek {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown day of week: %s", name)
		}
		days = append(days, day)
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	// Перерывы на этом слое не поддерживаются: окно нарезается целиком
	return &generateSlots.Request{
		UserID:              userID,
		ProfileID:           profileID,
		StartDate:           startDate,
		EndDate:             endDate,
		DaysOfWeek:          days,
		StartTime:           startTime,
		EndTime:             endTime,
		SlotDurationMinutes: r.SlotDurationMinutes,
		MaxCapacity:         r.MaxCapacity,
	}, nil
}
