package bulk_delete_slots

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	bulkDelete "github.com/m04kA/SMC-AvailabilityService/internal/usecase/bulk_delete_slots"
)

// BulkDeleteSlotsRequest HTTP request model
type BulkDeleteSlotsRequest struct {
	Dates []string `json:"dates"` // ["2026-09-01", "2026-09-02"]
}

// BulkDeleteSlotsResponse HTTP response model
type BulkDeleteSlotsResponse struct {
	SuccessCount   int      `json:"successCount"`
	FailedCount    int      `json:"failedCount"`
	FailedDates    []string `json:"failedDates,omitempty"`
	ProtectedDates []string `json:"protectedDates,omitempty"`
	DeletedSlots   int64    `json:"deletedSlots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BulkDeleteSlotsRequest) ToUseCaseRequest(profileID, userID int64) (*bulkDelete.Request, error) {
	dates := make([]time.Time, 0, len(r.Dates))
	for _, raw := range r.Dates {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}

	return &bulkDelete.Request{
		UserID:    userID,
		ProfileID: profileID,
		Dates:     dates,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *bulkDelete.Response) *BulkDeleteSlotsResponse {
	return &BulkDeleteSlotsResponse{
		SuccessCount:   resp.SuccessCount,
		FailedCount:    resp.FailedCount,
		FailedDates:    resp.FailedDates,
		ProtectedDates: resp.ProtectedDates,
		DeletedSlots:   resp.DeletedSlots,
	}
}
