package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "payments", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "info", cfg.Logger.Level)
	require.Equal(t, "postgres", cfg.DBType)
	require.Equal(t, "https://api.razorpay.com", cfg.Gateway.BaseURL)
	require.Equal(t, 20*time.Second, cfg.Gateway.Timeout)
	require.Equal(t, 5*time.Second, cfg.Reconciler.Interval)
	require.Equal(t, time.Minute, cfg.Reconciler.ErrorBackoff)
	require.Equal(t, 20*time.Minute, cfg.Reconciler.Lookback)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("RAZORPAY_KEY_ID", " rzp_test_abc ")
	t.Setenv("RAZORPAY_TIMEOUT", "5s")
	t.Setenv("RECONCILE_INTERVAL", "30s")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "50")

	cfg := Load()
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, "sqlite", cfg.DBType)
	require.Equal(t, "rzp_test_abc", cfg.Gateway.KeyID)
	require.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	require.Equal(t, 30*time.Second, cfg.Reconciler.Interval)
	require.Equal(t, 50, cfg.DBMaxOpenConn)
}

func TestGetenvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("DATABASE_MAX_IDLE_CONN", "not-a-number")
	t.Setenv("RECONCILE_LOOKBACK", "soon")

	cfg := Load()
	require.Equal(t, 5, cfg.DBMaxIdleConn)
	require.Equal(t, 20*time.Minute, cfg.Reconciler.Lookback)
}
