package response

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/edulearn/edulearn-backend/internal/platform/apierr"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

// RespondServiceError renders taxonomy errors with their own status and code.
// Anything else is logged and surfaces as a 500.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status != 0 {
		code := ae.Code
		if code == "" {
			code = strings.ReplaceAll(strings.ToLower(http.StatusText(ae.Status)), " ", "_")
		}
		RespondError(c, ae.Status, code, ae)
		return
	}
	if log != nil {
		log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
}

// RespondValidation renders bind errors. validator failures carry one message per field.
func RespondValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonName(fe)] = fieldMessage(fe)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorEnvelope{
		Error: APIError{
			Message: "validation failed",
			Code:    "validation_failed",
			Fields:  fields,
		},
	})
}

func jsonName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	return toSnake(name)
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

var tagNameOnce sync.Once

// UseJSONFieldNames makes gin's validator report json names instead of Go field names.
func UseJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
