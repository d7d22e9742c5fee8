package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"stallsync/internal/apierror"
	"stallsync/internal/repository"
	"stallsync/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQueryAndValidate does the same for query-string filters.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
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

// respondErr translates service and repository sentinel errors into their
// HTTP envelope. Anything unrecognized becomes an opaque 500.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.NewCoded(apierror.CodeNotFound, "Record not found"))
	case errors.Is(err, service.ErrOutOfScope):
		c.JSON(http.StatusForbidden, apierror.NewCoded(apierror.CodeOutOfScope, "Record outside your assigned scope"))
	case errors.Is(err, service.ErrSelfDelete):
		c.JSON(http.StatusForbidden, apierror.NewCoded(apierror.CodeSelfDelete, "You cannot delete your own account"))
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusConflict, apierror.NewCoded(apierror.CodeEmailExists, "Email is already registered"))
	case errors.Is(err, service.ErrBadConfirmation):
		c.JSON(http.StatusBadRequest, apierror.NewCoded(apierror.CodeBadConfirmation, "Confirmation phrase mismatch"))
	case errors.Is(err, repository.ErrInsufficientStock):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNotConnected):
		c.JSON(http.StatusConflict, apierror.New("Google account is not connected"))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
	}
}
