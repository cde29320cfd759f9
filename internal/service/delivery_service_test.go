package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
)

func deliveryTestService(t *testing.T) *DeliveryService {
	t.Helper()
	svc := NewDeliveryService(config.DeliveryConfig{
		SignedURLSecret: "test-sign-secret",
		SignedURLTTL:    time.Hour,
		Workers:         1,
	}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		cancel()
		svc.Stop()
	})
	return svc
}

func deliveryTestProject() models.Project {
	return models.Project{
		ID:         "P1",
		Name:       "Fraud Detection System",
		Department: "Department of Computer Science",
		School:     models.SchoolAppliedScience,
		Price:      3000,
		AssetRef:   "abc123",
	}
}

func TestDeliverReturnsNotification(t *testing.T) {
	svc := deliveryTestService(t)

	result, err := svc.Deliver(deliveryTestProject(), "PRJ_1_AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, "P1", result.ProjectID)
	assert.Equal(t, deliveryStartedMessage, result.Message)
	assert.Contains(t, result.DownloadURL, "abc123")
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.ExpiresAt)
}

func TestDeliverTokenResolvesToAsset(t *testing.T) {
	svc := deliveryTestService(t)

	result, err := svc.Deliver(deliveryTestProject(), "PRJ_1_AAAAAA")
	require.NoError(t, err)

	projectID, downloadURL, err := svc.ResolveToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "P1", projectID)
	assert.Contains(t, downloadURL, "abc123")
}

func TestResolveRejectsTamperedToken(t *testing.T) {
	svc := deliveryTestService(t)

	result, err := svc.Deliver(deliveryTestProject(), "PRJ_1_AAAAAA")
	require.NoError(t, err)

	_, _, err = svc.ResolveToken(result.Token + "x")
	assert.Error(t, err)
}

func TestReceiptRendersPDF(t *testing.T) {
	svc := deliveryTestService(t)

	payload, err := svc.Receipt(deliveryTestProject(), "PRJ_1_AAAAAA", "buyer@example.com", 3000, "NGN")
	require.NoError(t, err)
	assert.True(t, len(payload) > 0)
	assert.Equal(t, "%PDF", string(payload[:4]))
}
