package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/studio-pms-api/internal/middleware"
	appErrors "github.com/noah-isme/studio-pms-api/pkg/errors"
	"github.com/noah-isme/studio-pms-api/pkg/response"
)

// tenantFromContext returns the authenticated tenant or writes a 401.
func tenantFromContext(c *gin.Context) (string, bool) {
	tenantID := middleware.TenantID(c)
	if tenantID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return tenantID, true
}

func responseMeta(c *gin.Context, cacheHit bool) map[string]interface{} {
	return middleware.ViewMeta(c, cacheHit)
}

func bindError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// queryValidationError names the first field the validator rejected.
func queryValidationError(err error, message string) error {
	appErr := bindError(err, message)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		appErr.Field = fieldErrs[0].Field()
	}
	return appErr
}
