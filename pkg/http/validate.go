package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ReadRequest decodes the JSON body into req and applies `default` tags.
// The body is decoded regardless of the Content-Type header.
func ReadRequest(c echo.Context, req interface{}) error {
	if err := c.Echo().JSONSerializer.Deserialize(c, req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return BadRequestErrorf("Invalid request body: %v", he.Message).WithError(err)
		}
		return BadRequestErrorf("Invalid request body: %v", err).WithError(err)
	}
	if err := defaults.Set(req); err != nil {
		return InternalErrorf("apply defaults: %v", err)
	}
	return nil
}

// ValidateStruct runs `validate` tags and returns the first failure as a 400.
func ValidateStruct(ctx context.Context, req interface{}) error {
	err := validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return NewAppError("ERR_"+strings.ToUpper(fe.Tag()), fe.Field(), getErrorMessage(fe), http.StatusBadRequest)
	}
	return BadRequestError(err.Error())
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
