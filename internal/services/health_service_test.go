package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordenescli/internal/config"
	ws "ordenescli/internal/websocket"
)

func TestHealthCheck_IncludesHubStats(t *testing.T) {
	logger := testLogger()
	reports := NewReportService(config.UploadConfig{MaxDatasets: 4, TTL: time.Hour}, logger, nil, nil)
	hub := ws.NewHub(logger, nil)
	hs := NewHealthService("1.0.0-test", "", reports, hub, logger)

	seed(reports, sampleDataset())
	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "healthy", status.Status)

	datasets, ok := status.Services["datasets"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1, datasets["count"])

	wsInfo, ok := status.Services["websocket"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0, wsInfo["clients"])
	assert.Equal(t, int64(0), wsInfo["total_connections"])
	assert.Equal(t, int64(0), wsInfo["messages_sent"])
}

func TestHealthCheck_WithoutHub(t *testing.T) {
	logger := testLogger()
	reports := NewReportService(config.UploadConfig{MaxDatasets: 4, TTL: time.Hour}, logger, nil, nil)
	hs := NewHealthService("1.0.0-test", "", reports, nil, logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.NotContains(t, status.Services, "websocket")
}
