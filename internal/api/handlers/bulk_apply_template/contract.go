package bulk_apply_template

import (
	"context"

	bulkApply "github.com/m04kA/SMC-AvailabilityService/internal/usecase/bulk_apply_template"
)

type BulkApplyTemplateUseCase interface {
	Execute(ctx context.Context, req *bulkApply.Request) (*bulkApply.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
