package preview_template

import (
	serviceModels "github.com/m04kA/SMC-AvailabilityService/internal/service/templates/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// PreviewRequest HTTP request model
type PreviewRequest struct {
	StartTime           string  `json:"startTime"`           // "09:00"
	EndTime             string  `json:"endTime"`             // "18:00"
	SlotDurationMinutes int     `json:"slotDurationMinutes"` // 60
	BreakStart          *string `json:"breakStart,omitempty"`
	BreakEnd            *string `json:"breakEnd,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *PreviewRequest) ToServiceRequest() (*serviceModels.PreviewRequest, error) {
	start, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	req := &serviceModels.PreviewRequest{
		StartTime:           start,
		EndTime:             end,
		SlotDurationMinutes: r.SlotDurationMinutes,
	}

	if r.BreakStart != nil {
		bs, err := types.NewTimeStringFromString(*r.BreakStart)
		if err != nil {
			return nil, err
		}
		req.BreakStart = &bs
	}
	if r.BreakEnd != nil {
		be, err := types.NewTimeStringFromString(*r.BreakEnd)
		if err != nil {
			return nil, err
		}
		req.BreakEnd = &be
	}

	return req, nil
}
