package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwselect/firewall-selector/models"
)

type MockCatalogProvider struct {
	Source *models.Catalog
	Err    error
}

func (m *MockCatalogProvider) Catalog() (*models.Catalog, error) {
	return m.Source, m.Err
}

type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Err
}

func TestHandleGet(t *testing.T) {
	cat, err := models.NewCatalog([]models.Product{{Model: "FPR-1010"}, {Model: "FPR-1120"}}, nil)
	require.NoError(t, err)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name               string
		provider           *MockCatalogProvider
		pinger             Pinger
		expectedStatusCode int
		expected           Response
	}{
		{
			name:               "File catalog without database",
			provider:           &MockCatalogProvider{Source: cat},
			expectedStatusCode: http.StatusOK,
			expected:           Response{Status: StatusOK, Database: DatabaseNotConfigured, CatalogProducts: 2, Timestamp: fixed},
		},
		{
			name:               "Database connected",
			provider:           &MockCatalogProvider{Source: cat},
			pinger:             &MockPinger{},
			expectedStatusCode: http.StatusOK,
			expected:           Response{Status: StatusOK, Database: DatabaseUp, CatalogProducts: 2, Timestamp: fixed},
		},
		{
			name:               "Database unreachable",
			provider:           &MockCatalogProvider{Source: cat},
			pinger:             &MockPinger{Err: errors.New("connection refused")},
			expectedStatusCode: http.StatusServiceUnavailable,
			expected:           Response{Status: StatusDegraded, Database: DatabaseDown, CatalogProducts: 2, Timestamp: fixed},
		},
		{
			name:               "Database never connected",
			provider:           &MockCatalogProvider{Err: errors.New("load failed")},
			pinger:             Unreachable(errors.New("dial tcp: connection refused")),
			expectedStatusCode: http.StatusServiceUnavailable,
			expected:           Response{Status: StatusDegraded, Database: DatabaseDown, Timestamp: fixed},
		},
		{
			name:               "Catalog not loaded",
			provider:           &MockCatalogProvider{Err: errors.New("load failed")},
			expectedStatusCode: http.StatusServiceUnavailable,
			expected:           Response{Status: StatusDegraded, Database: DatabaseNotConfigured, Timestamp: fixed},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHealthHandler(tc.provider, tc.pinger)
			handler.now = func() time.Time { return fixed }
			req := httptest.NewRequest("GET", "/api/health", nil)
			rec := httptest.NewRecorder()

			handler.HandleGet(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tc.expected, resp)
		})
	}
}
