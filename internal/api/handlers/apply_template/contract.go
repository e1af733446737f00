package apply_template

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/templates/models"
)

type TemplateService interface {
	Apply(ctx context.Context, templateID int64, req *models.ApplyTemplateRequest) (*models.ApplyTemplateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
