package create_template

import (
	serviceModels "github.com/m04kA/SMC-AvailabilityService/internal/service/templates/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// SlotInput HTTP модель одного интервала шаблона
type SlotInput struct {
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "11:00"
}

// CreateTemplateRequest HTTP request model
type CreateTemplateRequest struct {
	Name      string      `json:"name"`
	IsDefault bool        `json:"isDefault"`
	Slots     []SlotInput `json:"slots"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateTemplateRequest) ToServiceRequest(userID int64) (*serviceModels.CreateTemplateRequest, error) {
	slots, err := toServiceSlots(r.Slots)
	if err != nil {
		return nil, err
	}

	return &serviceModels.CreateTemplateRequest{
		UserID:    userID,
		Name:      r.Name,
		IsDefault: r.IsDefault,
		Slots:     slots,
	}, nil
}

func toServiceSlots(inputs []SlotInput) ([]serviceModels.TemplateSlotInput, error) {
	slots := make([]serviceModels.TemplateSlotInput, 0, len(inputs))
	for _, in := range inputs {
		start, err := types.NewTimeStringFromString(in.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := types.NewTimeStringFromString(in.EndTime)
		if err != nil {
			return nil, err
		}
		slots = append(slots, serviceModels.TemplateSlotInput{StartTime: start, EndTime: end})
	}
	return slots, nil
}
