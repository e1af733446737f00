package create_slots

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	serviceModels "github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// SlotInput HTTP модель одного интервала
type SlotInput struct {
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "11:00"
}

// CreateSlotsRequest HTTP request model
type CreateSlotsRequest struct {
	Date        string      `json:"date"` // "2026-09-15"
	Slots       []SlotInput `json:"slots"`
	MaxCapacity int         `json:"maxCapacity"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateSlotsRequest) ToServiceRequest(profileID, userID int64) (*serviceModels.CreateSlotsRequest, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	slots := make([]serviceModels.SlotInput, 0, len(r.Slots))
	for _, in := range r.Slots {
		start, err := types.NewTimeStringFromString(in.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := types.NewTimeStringFromString(in.EndTime)
		if err != nil {
			return nil, err
		}
		slots = append(slots, serviceModels.SlotInput{StartTime: start, EndTime: end})
	}

	return &serviceModels.CreateSlotsRequest{
		UserID:      userID,
		ProfileID:   profileID,
		Date:        date,
		Slots:       slots,
		MaxCapacity: r.MaxCapacity,
	}, nil
}
