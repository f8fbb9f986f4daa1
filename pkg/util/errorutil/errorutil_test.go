package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", NewConflict("taken", nil), CodeConflict, http.StatusConflict},
		{"wrapped domain error", fmt.Errorf("wrap: %w", NewUnauthorized("nope")), CodeUnauthorized, http.StatusUnauthorized},
		{"fiber not found", fiber.ErrNotFound, CodeNotFound, http.StatusNotFound},
		{"fiber too large", fiber.ErrRequestEntityTooLarge, "REQUEST_ENTITY_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, CodeRequestAborted, http.StatusRequestTimeout},
		{"anything else", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			require.NotNil(t, de)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestDomainError_HidesCauseInMessage(t *testing.T) {
	cause := errors.New("disk full")
	de := NewUploadFailed(cause).WithOrigin("UploadFile")

	assert.Equal(t, "file upload failed", de.Message)
	assert.Equal(t, "UploadFile", de.Origin)
	assert.ErrorIs(t, de, cause)
	assert.Contains(t, de.Error(), "disk full")
}
