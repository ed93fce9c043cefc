package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"traffic-recorder/internal/capture"
	"traffic-recorder/internal/config"
	"traffic-recorder/internal/delivery/http/router"
)

func TestOptions_GraphIsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Options()))
}

func TestApplication_StartsAndServes(t *testing.T) {
	cfg := config.Default()
	cfg.App.Port = 0
	cfg.Logging.Level = "error"

	var (
		r         *router.Router
		indicator *capture.BadgeIndicator
	)
	app := fxtest.New(t,
		Options(),
		fx.Replace(cfg),
		fx.Populate(&r, &indicator),
	)
	app.RequireStart()
	defer app.RequireStop()

	// reset on start leaves recording off
	assert.Equal(t, "", indicator.State().Text)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/recording", strings.NewReader(`{"recording": true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.GetApp().Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Eventually(t, func() bool {
		return indicator.State().Text == capture.RecordingBadgeText
	}, 2*time.Second, 10*time.Millisecond)
}
