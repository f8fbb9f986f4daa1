package pipeline

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// ExistsFunc reports whether the resource with id exists.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

type documentExistsGate struct {
	exists   ExistsFunc
	resource string
	param    string
}

// DocumentExists rejects with NotFound when the resource named by the route parameter is absent.
func DocumentExists(exists ExistsFunc, resource, param string) Gate {
	return documentExistsGate{exists: exists, resource: resource, param: param}
}

func (g documentExistsGate) Name() string { return "DocumentExists(" + g.resource + ")" }

func (g documentExistsGate) Check(c *fiber.Ctx) error {
	id := c.Params(g.param)
	ok, err := g.exists(c.UserContext(), id)
	if err != nil {
		return apperrors.ToDomainError(err).WithOrigin(g.Name())
	}
	if !ok {
		notFound := apperrors.NewNotFound(g.resource, map[string]any{"id": id})
		notFound.Message = fmt.Sprintf("%s with id %s not found", g.resource, id)
		return notFound.WithOrigin(g.Name())
	}
	return nil
}
