package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sincelove/chat-backend/internal/common"
	"github.com/sincelove/chat-backend/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("message_type", func(fl validator.FieldLevel) bool {
		return domain.MessageType(strings.ToLower(strings.TrimSpace(fl.Field().String()))).IsValid()
	})
	return v
}

// bindJSON binds and validates the request body. On failure it writes
// the 400 response and returns false.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			common.ValidationErrorResponse(c, []common.FieldError{typeFieldError(typeErr)})
		case errors.Is(err, io.EOF):
			common.ErrorResponse(c, http.StatusBadRequest, "request body is required", err)
		default:
			common.ErrorResponse(c, http.StatusBadRequest, "invalid JSON body", err)
		}
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			common.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
			return false
		}
		fields := make([]common.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, common.FieldError{Field: fe.Field(), Message: fieldMessage(fe.Field(), fe.Tag())})
		}
		common.ValidationErrorResponse(c, fields)
		return false
	}
	return true
}

func fieldMessage(field, tag string) string {
	switch tag {
	case "required", "notblank":
		return field + " is required"
	case "message_type":
		return "invalid type"
	case "min":
		return field + " must be a number and not 0"
	}
	return fmt.Sprintf("%s is invalid", field)
}

func typeFieldError(err *json.UnmarshalTypeError) common.FieldError {
	field := err.Field
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return common.FieldError{Field: field, Message: field + " must be " + jsonKind(err.Type)}
}

// jsonKind names a Go type the way a JSON client sees it
func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a number and not 0"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	}
	return "an object"
}
