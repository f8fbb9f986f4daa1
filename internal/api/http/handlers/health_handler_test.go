package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	enabled bool
	err     error
}

func (p fakePinger) Enabled() bool { return p.enabled }
func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_Ready(t *testing.T) {
	cases := map[string]struct {
		deps   map[string]Pinger
		status int
		want   string
	}{
		"all ok": {
			deps:   map[string]Pinger{"postgres": fakePinger{enabled: true}, "redis": fakePinger{enabled: true}},
			status: http.StatusOK,
			want:   `"redis":"ok"`,
		},
		"redis disabled": {
			deps:   map[string]Pinger{"postgres": fakePinger{enabled: true}, "redis": fakePinger{}},
			status: http.StatusOK,
			want:   `"redis":"disabled"`,
		},
		"postgres down": {
			deps:   map[string]Pinger{"postgres": fakePinger{enabled: true, err: errors.New("dial tcp: refused")}},
			status: http.StatusServiceUnavailable,
			want:   `"postgres":"unreachable"`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/ready", newHealthHandler("user-service", "test", tc.deps).Ready)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
			require.NoError(t, err)
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, string(raw), tc.want)
			assert.NotContains(t, string(raw), "refused")
		})
	}
}

func TestHealthHandler_Live(t *testing.T) {
	app := fiber.New()
	app.Get("/live", newHealthHandler("user-service", "1.2.3", nil).Live)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/live", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"alive","service":"user-service","version":"1.2.3"}`, string(raw))
}
