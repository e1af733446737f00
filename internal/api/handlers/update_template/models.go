package update_template

import (
	serviceModels "github.com/m04kA/SMC-AvailabilityService/internal/service/templates/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// SlotInput HTTP модель одного интервала шаблона
type SlotInput struct {
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "11:00"
}

// UpdateTemplateRequest HTTP request model
// Шаблон обновляется целиком: список интервалов заменяет существующий
type UpdateTemplateRequest struct {
	Name      string      `json:"name"`
	IsDefault bool        `json:"isDefault"`
	Slots     []SlotInput `json:"slots"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateTemplateRequest) ToServiceRequest(userID int64) (*serviceModels.UpdateTemplateRequest, error) {
	slots := make([]serviceModels.TemplateSlotInput, 0, len(r.Slots))
	for _, in := range r.Slots {
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

	return &serviceModels.UpdateTemplateRequest{
		UserID:    userID,
		Name:      r.Name,
		IsDefault: r.IsDefault,
		Slots:     slots,
	}, nil
}
