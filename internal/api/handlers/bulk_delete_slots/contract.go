package bulk_delete_slots

import (
	"context"

	bulkDelete "github.com/m04kA/SMC-AvailabilityService/internal/usecase/bulk_delete_slots"
)

type BulkDeleteSlotsUseCase interface {
	Execute(ctx context.Context, req *bulkDelete.Request) (*bulkDelete.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
