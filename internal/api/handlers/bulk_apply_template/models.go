package bulk_apply_template

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	bulkApply "github.com/m04kA/SMC-AvailabilityService/internal/usecase/bulk_apply_template"
)

// BulkApplyTemplateRequest HTTP request model
type BulkApplyTemplateRequest struct {
	TemplateID  int64    `json:"templateId"`
	Dates       []string `json:"dates"`       // ["2026-09-01", "2026-09-02"]
	MaxCapacity int      `json:"maxCapacity"` // 1
}

// BulkApplyTemplateResponse HTTP response model
type BulkApplyTemplateResponse struct {
	SuccessCount   int      `json:"successCount"`
	FailedCount    int      `json:"failedCount"`
	FailedDates    []string `json:"failedDates,omitempty"`
	ProtectedDates []string `json:"protectedDates,omitempty"`
	SkippedDates   []string `json:"skippedDates,omitempty"`
	CreatedSlots   int      `json:"createdSlots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BulkApplyTemplateRequest) ToUseCaseRequest(profileID, userID int64) (*bulkApply.Request, error) {
	dates := make([]time.Time, 0, len(r.Dates))
	for _, raw := range r.Dates {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}

	return &bulkApply.Request{
		UserID:      userID,
		ProfileID:   profileID,
		TemplateID:  r.TemplateID,
		Dates:       dates,
		MaxCapacity: r.MaxCapacity,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *bulkApply.Response) *BulkApplyTemplateResponse {
	return &BulkApplyTemplateResponse{
		SuccessCount:   resp.SuccessCount,
		FailedCount:    resp.FailedCount,
		FailedDates:    resp.FailedDates,
		ProtectedDates: resp.ProtectedDates,
		SkippedDates:   resp.SkippedDates,
		CreatedSlots:   resp.CreatedSlots,
	}
}
