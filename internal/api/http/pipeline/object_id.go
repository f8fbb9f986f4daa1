package pipeline

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

type objectIDGate struct {
	param string
}

// ValidateObjectID rejects requests whose route parameter is not a canonical UUID.
func ValidateObjectID(param string) Gate {
	return objectIDGate{param: param}
}

func (g objectIDGate) Name() string { return "ValidateObjectID(" + g.param + ")" }

func (g objectIDGate) Check(c *fiber.Ctx) error {
	value := c.Params(g.param)
	if !IsObjectID(value) {
		return apperrors.NewMalformedID(g.param, value).WithOrigin(g.Name())
	}
	return nil
}

// IsObjectID reports whether value is a UUID in the 8-4-4-4-12 form.
func IsObjectID(value string) bool {
	if len(value) != 36 {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}
