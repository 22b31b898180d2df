package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sellerpulse/internal/errors"
	"sellerpulse/internal/files"
	"sellerpulse/internal/shared/testutil"
)

func TestHealthService_HealthCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", "", files.NewMemoryStore(), logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Second)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name      string
		listErr   error
		want      string
	}{
		{"empty store is ready", errors.NewNotFoundError("order payment files"), "ready"},
		{"storage failure", errors.NewStorageError("permission denied", nil), "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			store.On("List", mock.Anything).Return(nil, tt.listErr)

			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("dev", "", store, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, tt.want, status.Services["storage"].Status)
		})
	}
}

func TestHealthService_ReadinessWithoutStore(t *testing.T) {
	hs := NewHealthService("dev", "", nil, nil)
	assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status)
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.0.0", "2025-06-01T00:00:00Z", files.NewMemoryStore(), nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.Equal(t, "2025-06-01T00:00:00Z", v["build_time"])
}
