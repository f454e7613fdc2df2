package families

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwselect/firewall-selector/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Provider ---

type MockCatalogProvider struct {
	Source *models.Catalog
	Err    error
}

func (m *MockCatalogProvider) Catalog() (*models.Catalog, error) {
	return m.Source, m.Err
}

// --- Tests: GET /api/families ---

func TestHandleGetAll(t *testing.T) {
	withFamilies, err := models.NewCatalog([]models.Product{
		{Model: "FPR-2130", Family: "Firepower 2100"},
		{Model: "ASA-5506", Family: "ASA"},
		{Model: "FPR-2110", Family: "Firepower 2100"},
		{Model: "FTDv-5"},
	}, nil)
	require.NoError(t, err)

	empty, err := models.NewCatalog(nil, nil)
	require.NoError(t, err)

	testCases := []struct {
		name               string
		mockSetup          func() *MockCatalogProvider
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Distinct sorted families",
			mockSetup: func() *MockCatalogProvider {
				return &MockCatalogProvider{Source: withFamilies}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, []string{"ASA", "Firepower 2100"}, resp.Families)
			},
		},
		{
			name: "Empty catalog",
			mockSetup: func() *MockCatalogProvider {
				return &MockCatalogProvider{Source: empty}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"families":[]}`, rec.Body.String())
			},
		},
		{
			name: "Catalog unavailable",
			mockSetup: func() *MockCatalogProvider {
				return &MockCatalogProvider{Err: errors.New("timeout")}
			},
			expectedStatusCode: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewFamilyHandler(tc.mockSetup())
			req := httptest.NewRequest("GET", "/api/families", nil)
			rec := httptest.NewRecorder()

			handler.HandleGetAll(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}
