package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/api/http/pipeline"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

const (
	usersHandlerOrigin = "UsersHandler"
	userIDParam        = "userId"
	avatarField        = "avatar"
)

var errBodyNotValidated = errors.New("request body missing from context")

// UsersDependencies bundles what UsersHandler needs.
type UsersDependencies struct {
	Users     *service.UserService
	Auth      *service.AuthService
	Config    config.Provider
	Storage   pipeline.AvatarStorage
	Validator *validator.Validate
	Limits    pipeline.UploadLimits
}

// UsersHandler exposes registration, login and avatar endpoints.
type UsersHandler struct {
	users    *service.UserService
	auth     *service.AuthService
	cfg      config.Provider
	storage  pipeline.AvatarStorage
	validate *validator.Validate
	limits   pipeline.UploadLimits
}

// NewUsersHandler constructs handler.
func NewUsersHandler(deps UsersDependencies) *UsersHandler {
	validate := deps.Validator
	if validate == nil {
		validate = pipeline.NewValidator()
	}
	return &UsersHandler{
		users:    deps.Users,
		auth:     deps.Auth,
		cfg:      deps.Config,
		storage:  deps.Storage,
		validate: validate,
		limits:   deps.Limits,
	}
}

// Routes returns the user routes with their gate chains, relative to the users root.
func (h *UsersHandler) Routes() []pipeline.Route {
	return []pipeline.Route{
		{
			Method:  http.MethodPost,
			Path:    "/register",
			Chain:   pipeline.NewChain(pipeline.ValidateBody[dto.CreateUserRequest](h.validate)),
			Handler: h.Create,
		},
		{
			Method:  http.MethodPost,
			Path:    "/login",
			Chain:   pipeline.NewChain(pipeline.ValidateBody[dto.LoginUserRequest](h.validate)),
			Handler: h.Login,
		},
		{
			Method:  http.MethodGet,
			Path:    "/login",
			Chain:   pipeline.NewChain(),
			Handler: h.CheckAuth,
		},
		{
			Method: http.MethodPost,
			Path:   "/:" + userIDParam + "/avatar",
			Chain: pipeline.NewChain(
				pipeline.PrivateRoute(h.auth),
				pipeline.ValidateObjectID(userIDParam),
				pipeline.DocumentExists(h.users.Exists, "User", userIDParam),
				pipeline.UploadFile(h.storage, avatarField, h.limits),
			),
			Handler: h.UploadAvatar,
		},
	}
}

// Create handles POST /users/register.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	req, ok := pipeline.Body[dto.CreateUserRequest](c)
	if !ok {
		return apperrors.NewInternalError(errBodyNotValidated).WithOrigin(usersHandlerOrigin)
	}

	ctx := c.UserContext()
	existing, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return service.EmailConflict(existing.Email).WithOrigin(usersHandlerOrigin)
	}

	user, err := h.users.Create(ctx, domain.UserDraft{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, h.cfg.Get("SALT"))
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Login handles POST /users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	req, ok := pipeline.Body[dto.LoginUserRequest](c)
	if !ok {
		return apperrors.NewInternalError(errBodyNotValidated).WithOrigin(usersHandlerOrigin)
	}

	user, err := h.auth.Verify(c.UserContext(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}

	token, expiresAt, err := h.auth.Authenticate(user)
	if err != nil {
		return apperrors.NewInternalError(err).WithOrigin(usersHandlerOrigin)
	}

	resp := dto.LoggedUserResponse{Token: token}
	if !expiresAt.IsZero() {
		resp.ExpiresAt = &expiresAt
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CheckAuth handles GET /users/login. The bearer token is verified here and the identity is
// resolved again, so accounts that no longer match the token are rejected.
func (h *UsersHandler) CheckAuth(c *fiber.Ctx) error {
	token, err := pipeline.BearerToken(c)
	if err != nil {
		return err
	}

	claims, err := h.auth.VerifyToken(token)
	if err != nil {
		return err
	}

	user, err := h.users.FindByEmail(c.UserContext(), claims.Email)
	if err != nil {
		return err
	}
	if user == nil || user.ID != claims.ID {
		return apperrors.NewUnauthorized("user no longer exists").WithOrigin(usersHandlerOrigin)
	}

	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UploadAvatar handles POST /users/:userId/avatar. The file is already stored by the upload gate,
// which also registered its removal for the case this handler fails.
func (h *UsersHandler) UploadAvatar(c *fiber.Ctx) error {
	upload, ok := pipeline.FromCtx(c).Upload()
	if !ok {
		return apperrors.NewInternalError(errors.New("uploaded file missing from context")).WithOrigin(usersHandlerOrigin)
	}

	userID := c.Params(userIDParam)
	if err := h.users.UpdateAvatar(c.UserContext(), userID, upload.Path); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.UploadAvatarResponse{FilePath: upload.Path}})
}
