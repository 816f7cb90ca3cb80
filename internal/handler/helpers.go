package handler

import (
	"net/http"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps a kinded domain error to its HTTP status. Unknown errors
// become a generic 500 so internals never leak to callers.
func respondError(c *gin.Context, err error) {
	kind, ok := apierror.KindOf(err)
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case apierror.KindInvalidCredentials, apierror.KindLocationMismatch, apierror.KindUnauthorized:
		status = http.StatusUnauthorized
	case apierror.KindAccountInactive, apierror.KindForbidden:
		status = http.StatusForbidden
	case apierror.KindNotFound:
		status = http.StatusNotFound
	case apierror.KindValidation:
		status = http.StatusUnprocessableEntity
	case apierror.KindConflict:
		status = http.StatusConflict
	case apierror.KindConfiguration:
		status = http.StatusInternalServerError
	}
	c.JSON(status, apierror.New(err.Error()))
}
