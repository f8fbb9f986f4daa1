package pipeline

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// NewValidator returns a validator that reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

type bodyGate[T any] struct {
	validate *validator.Validate
}

// ValidateBody decodes the request body into T and checks its validate tags.
// The decoded *T is available to later stages through Body[T].
func ValidateBody[T any](validate *validator.Validate) Gate {
	return bodyGate[T]{validate: validate}
}

func (g bodyGate[T]) Name() string {
	var zero T
	return fmt.Sprintf("ValidateBody(%T)", zero)
}

func (g bodyGate[T]) Check(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return apperrors.NewValidationError("request body is required", nil).WithOrigin(g.Name())
	}

	dst := new(T)
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid request body", nil).WithOrigin(g.Name())
	}

	if err := g.validate.StructCtx(c.UserContext(), dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.NewValidationError("invalid request body", nil).WithOrigin(g.Name())
		}
		details := make(map[string]any, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = describeRule(fe)
		}
		return apperrors.NewValidationError("validation failed", details).WithOrigin(g.Name())
	}

	FromCtx(c).SetBody(dst)
	return nil
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag()
	}
}
