package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

const sniffLen = 512

// UploadLimits restricts what the UploadFile gate accepts. Zero values disable a check.
type UploadLimits struct {
	MaxSizeBytes      int64
	AllowedExtensions []string
	// ContentTypePrefix is matched against the sniffed content type, e.g. "image/".
	ContentTypePrefix string
}

type uploadGate struct {
	storage AvatarStorage
	field   string
	limits  UploadLimits
}

// UploadFile stores the multipart file under field and records it on the request context.
func UploadFile(storage AvatarStorage, field string, limits UploadLimits) Gate {
	return uploadGate{storage: storage, field: field, limits: limits}
}

func (g uploadGate) Name() string { return "UploadFile(" + g.field + ")" }

func (g uploadGate) Check(c *fiber.Ctx) error {
	header, err := c.FormFile(g.field)
	if err != nil {
		return g.invalid(fmt.Sprintf("file field %q is required", g.field))
	}
	if g.limits.MaxSizeBytes > 0 && header.Size > g.limits.MaxSizeBytes {
		return g.invalid(fmt.Sprintf("file exceeds %d bytes", g.limits.MaxSizeBytes))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(g.limits.AllowedExtensions) > 0 && !slices.Contains(g.limits.AllowedExtensions, ext) {
		return g.invalid(fmt.Sprintf("file extension %q is not allowed", ext))
	}

	src, err := header.Open()
	if err != nil {
		return apperrors.NewUploadFailed(err).WithOrigin(g.Name())
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return apperrors.NewUploadFailed(err).WithOrigin(g.Name())
	}
	contentType := http.DetectContentType(head[:n])
	if g.limits.ContentTypePrefix != "" && !strings.HasPrefix(contentType, g.limits.ContentTypePrefix) {
		return g.invalid(fmt.Sprintf("content type %q is not allowed", contentType))
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return apperrors.NewUploadFailed(err).WithOrigin(g.Name())
	}

	ctx := c.UserContext()
	location, err := g.storage.Save(ctx, uuid.NewString()+ext, src, header.Size)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return apperrors.NewRequestAborted(err).WithOrigin(g.Name())
		}
		return apperrors.NewUploadFailed(err).WithOrigin(g.Name())
	}

	rc := FromCtx(c)
	rc.AddCleanup(func(ctx context.Context) error {
		return g.storage.Remove(ctx, location)
	})
	rc.SetUpload(UploadedFile{
		Path:         location,
		OriginalName: header.Filename,
		ContentType:  contentType,
		Size:         header.Size,
	})
	return nil
}

func (g uploadGate) invalid(message string) error {
	return apperrors.NewValidationError(message, map[string]any{"field": g.field}).WithOrigin(g.Name())
}
