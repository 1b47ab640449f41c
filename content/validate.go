package content

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("post_location", func(fl validator.FieldLevel) bool {
		return models.PostLocation(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("moderation_reason", func(fl validator.FieldLevel) bool {
		return models.ModerationReason(fl.Field().String()).Valid()
	})
	return v
}

// validateInput runs struct tags and reports every failing field as one ValidationFailed error.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return errs.NewInternalErrorWithCause("validate input", err)
	}

	fields := make([]errs.FieldError, 0, len(invalid))
	for _, fe := range invalid {
		fields = append(fields, errs.FieldError{Field: fieldPath(fe), Message: describe(fe)})
	}
	return errs.NewValidationError(fields...)
}

// fieldPath drops the struct name so "PostInput.tags[1]" reads "tags[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "post_location":
		return "must be one of Top, Large, BottomLeft, BottomRight, Sponsored, Normal"
	case "moderation_reason":
		return "must be a known moderation reason"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
