package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/domain"
)

const (
	requestContextKey = "pipeline_request_context"
	cleanupTimeout    = 5 * time.Second
)

// ErrClaimAlreadySet is returned when a second gate tries to attach an identity.
var ErrClaimAlreadySet = errors.New("identity claim already set")

// UploadedFile describes a file stored by the UploadFile gate.
type UploadedFile struct {
	Path         string
	OriginalName string
	ContentType  string
	Size         int64
}

// RequestContext is the per-request state gates hand to later gates and the handler.
type RequestContext struct {
	body   any
	claims *domain.TokenPayload
	upload *UploadedFile

	cleanups   []func(ctx context.Context) error
	cleanupErr error
}

// FromCtx returns the request's context, creating it on first use.
func FromCtx(c *fiber.Ctx) *RequestContext {
	if rc, ok := c.Locals(requestContextKey).(*RequestContext); ok {
		return rc
	}
	rc := &RequestContext{}
	c.Locals(requestContextKey, rc)
	return rc
}

// SetBody stores the validated request body.
func (rc *RequestContext) SetBody(body any) {
	rc.body = body
}

// SetClaims attaches the authenticated identity. It can only be done once per request.
func (rc *RequestContext) SetClaims(claims *domain.TokenPayload) error {
	if rc.claims != nil {
		return ErrClaimAlreadySet
	}
	rc.claims = claims
	return nil
}

// Claims returns the authenticated identity, if any.
func (rc *RequestContext) Claims() (domain.TokenPayload, bool) {
	if rc.claims == nil {
		return domain.TokenPayload{}, false
	}
	return *rc.claims, true
}

// SetUpload records the stored file.
func (rc *RequestContext) SetUpload(file UploadedFile) {
	rc.upload = &file
}

// Upload returns the stored file, if any.
func (rc *RequestContext) Upload() (UploadedFile, bool) {
	if rc.upload == nil {
		return UploadedFile{}, false
	}
	return *rc.upload, true
}

// AddCleanup registers fn to undo work done for this request. Cleanups run, newest first, only
// when the request fails: a gate rejects, the request is aborted or the handler returns an error.
func (rc *RequestContext) AddCleanup(fn func(ctx context.Context) error) {
	rc.cleanups = append(rc.cleanups, fn)
}

// CleanupErr returns the joined errors of cleanups that failed.
func (rc *RequestContext) CleanupErr() error {
	return rc.cleanupErr
}

// release runs the registered cleanups on a fresh context, since the request's own may be done.
func (rc *RequestContext) release() {
	if len(rc.cleanups) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	errs := []error{rc.cleanupErr}
	for i := len(rc.cleanups) - 1; i >= 0; i-- {
		errs = append(errs, rc.cleanups[i](ctx))
	}
	rc.cleanups = nil
	rc.cleanupErr = errors.Join(errs...)
}

// Body returns the body validated by ValidateBody[T].
func Body[T any](c *fiber.Ctx) (*T, bool) {
	body, ok := FromCtx(c).body.(*T)
	return body, ok
}
