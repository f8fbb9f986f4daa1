package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/user-service/internal/api/http/pipeline"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/repository"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

type staticConfig map[string]string

func (s staticConfig) Get(key string) string { return s[key] }

func newUsersHandler(t *testing.T, storage pipeline.AvatarStorage) *UsersHandler {
	t.Helper()
	repo := repository.NewMemoryUserRepository()
	return NewUsersHandler(UsersDependencies{
		Users:   service.NewUserService(repo, nil, zap.NewNop(), bcrypt.MinCost),
		Auth:    service.NewAuthService(repo, auth.NewTokenManager("secret", 0), "salt"),
		Config:  staticConfig{"SALT": "salt"},
		Storage: storage,
	})
}

func TestUsersHandler_RoutesOrderAndGates(t *testing.T) {
	h := newUsersHandler(t, nil)
	routes := h.Routes()
	require.Len(t, routes, 4)

	got := make([]string, 0, len(routes))
	for _, r := range routes {
		names := make([]string, 0, r.Chain.Len())
		for _, g := range r.Chain.Gates() {
			names = append(names, g.Name())
		}
		got = append(got, r.Method+" "+r.Path+" ["+strings.Join(names, ",")+"]")
	}
	assert.Equal(t, []string{
		"POST /register [ValidateBody(dto.CreateUserRequest)]",
		"POST /login [ValidateBody(dto.LoginUserRequest)]",
		"GET /login []",
		"POST /:userId/avatar [PrivateRoute,ValidateObjectID(userId),DocumentExists(User),UploadFile(avatar)]",
	}, got)
}

func TestUsersHandler_UploadAvatarRemovesFileWhenUserMissing(t *testing.T) {
	dir := t.TempDir()
	storage, err := pipeline.NewDiskStorage(dir)
	require.NoError(t, err)

	location, err := storage.Save(context.Background(), "orphan.png", strings.NewReader("img"), 3)
	require.NoError(t, err)

	h := newUsersHandler(t, storage)
	stored := pipeline.GateFunc{GateName: "stored", Fn: func(c *fiber.Ctx) error {
		rc := pipeline.FromCtx(c)
		rc.AddCleanup(func(ctx context.Context) error { return storage.Remove(ctx, location) })
		rc.SetUpload(pipeline.UploadedFile{Path: location})
		return nil
	}}

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).SendString(de.Code)
	}})
	app.Post("/:userId/avatar", pipeline.NewChain(stored).Handler(h.UploadAvatar, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/"+uuid.NewString()+"/avatar", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err = os.Stat(filepath.Join(dir, "orphan.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestUsersHandler_HandlersRequireValidatedBody(t *testing.T) {
	h := newUsersHandler(t, nil)
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.Status(apperrors.ToDomainError(err).HTTPStatus).Send(nil)
	}})
	app.Post("/register", h.Create)
	app.Post("/login", h.Login)

	for _, path := range []string{"/register", "/login"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
	}
}
