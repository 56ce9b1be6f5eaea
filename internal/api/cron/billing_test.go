package cron

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fiberbill/fiberbill/internal/api/dto"
	"github.com/fiberbill/fiberbill/internal/config"
	ierr "github.com/fiberbill/fiberbill/internal/errors"
	"github.com/fiberbill/fiberbill/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// offDaySuspension always reports the day gate, as the real service does on
// every day but the suspension day
type offDaySuspension struct{}

func (offDaySuspension) RunSuspensionCycle(ctx context.Context, asOf time.Time) (*dto.SuspensionRunSummary, error) {
	return nil, ierr.NewError("suspension cycle can only run on the suspension day").
		WithHint("Today is not the suspension day").
		Mark(ierr.ErrInvalidOperation)
}

func (offDaySuspension) Suspend(ctx context.Context, req *dto.ServiceControlRequest) (*dto.ServiceControlResponse, error) {
	return nil, nil
}

func (offDaySuspension) Reinstate(ctx context.Context, req *dto.ServiceControlRequest) (*dto.ServiceControlResponse, error) {
	return nil, nil
}

func (offDaySuspension) GatewayStatus(ctx context.Context, subscriberID string) (*dto.GatewayStatusResponse, error) {
	return nil, nil
}

func TestRunSuspensionsOffDayReportsNextRun(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.GetDefaultConfig()
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)

	handler := NewBillingHandler(nil, offDaySuspension{}, cfg, log)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/cron/billing/suspensions", nil)

	handler.RunSuspensions(c)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Skipped     bool      `json:"skipped"`
		Reason      string    `json:"reason"`
		NextRunDate time.Time `json:"next_run_date"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Skipped)
	require.NotEmpty(t, body.Reason)

	// the scheduler gets a concrete date to come back on
	loc := cfg.BusinessLocation()
	require.Equal(t, cfg.Billing.SuspensionDay, body.NextRunDate.In(loc).Day())
	require.True(t, body.NextRunDate.After(time.Now().Add(-24*time.Hour)))
}
