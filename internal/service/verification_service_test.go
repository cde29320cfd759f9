package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
)

type fakeGuard struct {
	processed map[string]bool
	err       error
}

func (f *fakeGuard) MarkProcessed(_ context.Context, reference string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.processed == nil {
		f.processed = map[string]bool{}
	}
	if f.processed[reference] {
		return false, nil
	}
	f.processed[reference] = true
	return true, nil
}

type fakeGranter struct {
	granted []string
}

func (f *fakeGranter) GrantVerified(_ context.Context, deviceID, projectID, reference string) (*dto.PurchaseOutcome, error) {
	f.granted = append(f.granted, projectID)
	return &dto.PurchaseOutcome{Reference: reference, ProjectID: projectID, State: models.PurchaseDelivered}, nil
}

func gatewayStub(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
}

func verifierFor(baseURL string, guard *fakeGuard, granter *fakeGranter) *VerificationService {
	cfg := config.PaystackConfig{
		SecretKey:     "sk_test_secret",
		BaseURL:       baseURL,
		VerifyTimeout: 2 * time.Second,
	}
	return NewVerificationService(cfg, guard, granter, nil, nil)
}

func TestVerifySuccessfulCharge(t *testing.T) {
	srv := gatewayStub(t, http.StatusOK, `{"status":true,"data":{"status":"success","amount":300000,"currency":"NGN"}}`)
	defer srv.Close()

	svc := verifierFor(srv.URL, &fakeGuard{}, &fakeGranter{})
	verified, err := svc.Verify(context.Background(), "PRJ_1_ABCDEF")
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestVerifyFailClosed(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"gateway says failed", http.StatusOK, `{"status":true,"data":{"status":"failed"}}`},
		{"envelope status false", http.StatusOK, `{"status":false,"data":{"status":"success"}}`},
		{"gateway 404", http.StatusNotFound, `{"status":false}`},
		{"gateway 500", http.StatusInternalServerError, ``},
		{"garbage body", http.StatusOK, `not json at all`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := gatewayStub(t, tc.status, tc.body)
			defer srv.Close()

			svc := verifierFor(srv.URL, &fakeGuard{}, &fakeGranter{})
			verified, err := svc.Verify(context.Background(), "PRJ_1_ABCDEF")
			require.NoError(t, err)
			assert.False(t, verified)
		})
	}
}

func TestVerifyUnreachableGateway(t *testing.T) {
	svc := verifierFor("http://127.0.0.1:1", &fakeGuard{}, &fakeGranter{})
	verified, err := svc.Verify(context.Background(), "PRJ_1_ABCDEF")
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestVerifyWithoutSecretKey(t *testing.T) {
	svc := NewVerificationService(config.PaystackConfig{}, &fakeGuard{}, &fakeGranter{}, nil, nil)
	verified, err := svc.Verify(context.Background(), "PRJ_1_ABCDEF")
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestReconcileGrantsOnVerified(t *testing.T) {
	srv := gatewayStub(t, http.StatusOK, `{"status":true,"data":{"status":"success"}}`)
	defer srv.Close()

	granter := &fakeGranter{}
	svc := verifierFor(srv.URL, &fakeGuard{}, granter)

	outcome, err := svc.Reconcile(context.Background(), "dev-1", "PRJ_1_ABCDEF", "P1")
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, models.PurchaseDelivered, outcome.State)
	assert.Equal(t, []string{"P1"}, granter.granted)
}

func TestReconcileFailedVerificationGrantsNothing(t *testing.T) {
	srv := gatewayStub(t, http.StatusOK, `{"status":true,"data":{"status":"abandoned"}}`)
	defer srv.Close()

	granter := &fakeGranter{}
	svc := verifierFor(srv.URL, &fakeGuard{}, granter)

	outcome, err := svc.Reconcile(context.Background(), "dev-1", "PRJ_1_ABCDEF", "P1")
	assert.ErrorIs(t, err, appErrors.ErrVerificationFailed)
	require.NotNil(t, outcome)
	assert.Equal(t, models.PurchaseVerificationFailed, outcome.State)
	assert.Empty(t, granter.granted)
}

func TestReconcileRequiresBothParameters(t *testing.T) {
	guard := &fakeGuard{}
	granter := &fakeGranter{}
	svc := verifierFor("http://127.0.0.1:1", guard, granter)

	outcome, err := svc.Reconcile(context.Background(), "dev-1", "PRJ_1_ABCDEF", "")
	require.NoError(t, err)
	assert.Nil(t, outcome)

	outcome, err = svc.Reconcile(context.Background(), "dev-1", "", "P1")
	require.NoError(t, err)
	assert.Nil(t, outcome)

	// Nothing was marked processed either.
	assert.Empty(t, guard.processed)
	assert.Empty(t, granter.granted)
}

func TestReconcileProcessesReferenceOnce(t *testing.T) {
	srv := gatewayStub(t, http.StatusOK, `{"status":true,"data":{"status":"success"}}`)
	defer srv.Close()

	granter := &fakeGranter{}
	svc := verifierFor(srv.URL, &fakeGuard{}, granter)

	_, err := svc.Reconcile(context.Background(), "dev-1", "PRJ_1_ABCDEF", "P1")
	require.NoError(t, err)

	// A page refresh replays the return URL; the second pass is inert.
	outcome, err := svc.Reconcile(context.Background(), "dev-1", "PRJ_1_ABCDEF", "P1")
	require.NoError(t, err)
	assert.Nil(t, outcome)
	assert.Equal(t, []string{"P1"}, granter.granted)
}
