package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/internal/middleware"
	"github.com/cybersweeft1/sweeftprojects/internal/models"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
)

type downloadServiceMock struct {
	result   *dto.DeliveryResult
	err      error
	retried  bool
	resolved string
}

func (m *downloadServiceMock) Redownload(ctx context.Context, deviceID, projectID string) (*dto.DeliveryResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *downloadServiceMock) RetryLast(ctx context.Context, deviceID string) (*dto.DeliveryResult, error) {
	m.retried = true
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type delivererMock struct {
	resolveErr error
	receipt    []byte
}

func (m *delivererMock) ResolveToken(token string) (string, string, error) {
	if m.resolveErr != nil {
		return "", "", m.resolveErr
	}
	return "P1", "https://drive.google.com/uc?export=download&id=abc123", nil
}

func (m *delivererMock) Receipt(project models.Project, reference, buyerEmail string, amount int, currency string) ([]byte, error) {
	return m.receipt, nil
}

type receiptLedgerMock struct {
	entry *models.LedgerEntry
	err   error
}

func (m *receiptLedgerMock) GetByReference(ctx context.Context, reference string) (*models.LedgerEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entry, nil
}

func newDeliveryTestContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	c.Request = req
	c.Set(middleware.ContextDeviceKey, "dev-1")
	return c, w
}

func deliveryFixture() (*DeliveryHandler, *downloadServiceMock) {
	downloads := &downloadServiceMock{result: &dto.DeliveryResult{ProjectID: "P1", Message: "Download started! Check your downloads folder."}}
	catalog := &catalogQuerierMock{projects: []models.Project{{ID: "P1", Name: "One", Price: 3000}}}
	ledger := &receiptLedgerMock{entry: &models.LedgerEntry{
		Reference:  "PRJ_1_AAAAAA",
		ProjectID:  "P1",
		DeviceID:   "dev-1",
		BuyerEmail: "buyer@example.com",
		Amount:     3000,
		Currency:   "NGN",
		CreatedAt:  time.Now(),
	}}
	h := NewDeliveryHandler(downloads, &delivererMock{receipt: []byte("%PDF-1.4 receipt")}, ledger, catalog)
	return h, downloads
}

func TestDeliveryHandlerDownload(t *testing.T) {
	h, _ := deliveryFixture()
	c, w := newDeliveryTestContext(t, http.MethodPost, "/downloads/P1")
	c.Params = gin.Params{{Key: "projectID", Value: "P1"}}

	h.Download(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.DeliveryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "P1", envelope.Data.ProjectID)
}

func TestDeliveryHandlerDownloadNotEntitled(t *testing.T) {
	h, downloads := deliveryFixture()
	downloads.err = appErrors.ErrNotEntitled
	c, w := newDeliveryTestContext(t, http.MethodPost, "/downloads/P1")
	c.Params = gin.Params{{Key: "projectID", Value: "P1"}}

	h.Download(c)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestDeliveryHandlerRetry(t *testing.T) {
	h, downloads := deliveryFixture()
	c, w := newDeliveryTestContext(t, http.MethodPost, "/downloads/retry")

	h.Retry(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, downloads.retried)
}

func TestDeliveryHandlerRetryExpired(t *testing.T) {
	h, downloads := deliveryFixture()
	downloads.err = appErrors.ErrDownloadSessionGone
	c, w := newDeliveryTestContext(t, http.MethodPost, "/downloads/retry")

	h.Retry(c)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestDeliveryHandlerResolveRedirects(t *testing.T) {
	h, _ := deliveryFixture()
	c, w := newDeliveryTestContext(t, http.MethodGet, "/downloads/resolve/tok")
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	h.Resolve(c)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "drive.google.com")
}

func TestDeliveryHandlerReceipt(t *testing.T) {
	h, _ := deliveryFixture()
	c, w := newDeliveryTestContext(t, http.MethodGet, "/downloads/P1/receipt?reference=PRJ_1_AAAAAA")
	c.Params = gin.Params{{Key: "projectID", Value: "P1"}}

	h.Receipt(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "%PDF")
}

func TestDeliveryHandlerReceiptMissingReference(t *testing.T) {
	h, _ := deliveryFixture()
	c, w := newDeliveryTestContext(t, http.MethodGet, "/downloads/P1/receipt")
	c.Params = gin.Params{{Key: "projectID", Value: "P1"}}

	h.Receipt(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliveryHandlerReceiptWrongDevice(t *testing.T) {
	h, _ := deliveryFixture()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/downloads/P1/receipt?reference=PRJ_1_AAAAAA", nil)
	require.NoError(t, err)
	c.Request = req
	c.Set(middleware.ContextDeviceKey, "some-other-device")
	c.Params = gin.Params{{Key: "projectID", Value: "P1"}}

	h.Receipt(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
