package pipeline

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

const privateRouteName = "PrivateRoute"

// TokenVerifier resolves a bearer token into an identity claim.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.TokenPayload, error)
}

type privateRouteGate struct {
	tokens TokenVerifier
}

// PrivateRoute requires a valid bearer token and attaches its identity claim to the request.
func PrivateRoute(tokens TokenVerifier) Gate {
	return privateRouteGate{tokens: tokens}
}

func (g privateRouteGate) Name() string { return privateRouteName }

func (g privateRouteGate) Check(c *fiber.Ctx) error {
	token, err := BearerToken(c)
	if err != nil {
		return err
	}

	claims, err := g.tokens.VerifyToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token").WithOrigin(privateRouteName)
	}

	if err := FromCtx(c).SetClaims(claims); err != nil {
		return apperrors.NewInternalError(err).WithOrigin(privateRouteName)
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", apperrors.NewUnauthorized("missing authorization header").WithOrigin(privateRouteName)
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header").WithOrigin(privateRouteName)
	}
	return strings.TrimSpace(parts[1]), nil
}
