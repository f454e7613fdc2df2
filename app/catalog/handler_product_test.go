package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwselect/firewall-selector/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleGetProduct(t *testing.T) {
	licensed := newTestProduct("FPR-1120", "Firepower 1100", "1RU", 1.5, 4000)
	licensed.Support = &models.SKUPrice{SKU: "CON-SNT-1120", ListPrice: decimal.NewNullDecimal(decimal.NewFromInt(300))}
	licensed.Licenses = models.Licenses{
		Roots: map[string]string{"t": "L-FPR1120T-T"},
		Prices: map[models.LicenseRoot]map[int]models.LicensePrice{
			models.RootThreat: {
				1: {SKU: "L-FPR1120T-T-1Y", ListPrice: decimal.NewFromInt(500)},
			},
		},
	}
	cat, err := models.NewCatalog([]models.Product{
		licensed,
		{Model: "FTDv-5", FormFactor: "Virtual"},
	}, nil)
	require.NoError(t, err)

	testCases := []struct {
		name               string
		model              string
		mockSetup          func() *MockCatalogProvider
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:  "Success with prices and licenses",
			model: "FPR-1120",
			mockSetup: func() *MockCatalogProvider {
				return &MockCatalogProvider{Source: cat}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "FPR-1120", resp.Model)
				require.NotNil(t, resp.Family)
				assert.Equal(t, "Firepower 1100", *resp.Family)
				require.NotNil(t, resp.Perf.FwGbps)
				assert.Equal(t, 1.5, *resp.Perf.FwGbps)
				assert.Nil(t, resp.Perf.ThreatGbps)
				require.NotNil(t, resp.Support.GPL)
				assert.Equal(t, 300.0, *resp.Support.GPL)
				assert.Equal(t, "L-FPR1120T-T", resp.Licenses.Roots["t"])
				price := resp.Licenses.Prices["t"]["1"]
				require.NotNil(t, price.SKU)
				assert.Equal(t, "L-FPR1120T-T-1Y", *price.SKU)
				assert.Equal(t, 500.0, *price.GPL)
			},
		},
		{
			name:  "Lookup is case insensitive and trimmed",
			model: "  fpr-1120 ",
			mockSetup: func() *MockCatalogProvider {
				return &MockCatalogProvider{Source: cat}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "FPR-1120", resp.Model)
			},
		},
		{
			name:  "Product without pricing data",
			model: "FTDv-5",
			mockSetup: func() *MockCatalogProvider {
				return &MockCatalogProvider{Source: cat}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Nil(t, resp.Family)
				assert.Nil(t, resp.Hardware.SKU)
				assert.Nil(t, resp.Hardware.GPL)
				assert.Empty(t, resp.Licenses.Prices)
			},
		},
		{
			name:  "Product not found",
			model: "NONEXISTENT",
			mockSetup: func() *MockCatalogProvider {
				return &MockCatalogProvider{Source: cat}
			},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "Product not found", errResp["error"])
			},
		},
		{
			name:  "Empty model in path",
			model: "",
			mockSetup: func() *MockCatalogProvider {
				return &MockCatalogProvider{Source: cat}
			},
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:  "Catalog unavailable",
			model: "FPR-1120",
			mockSetup: func() *MockCatalogProvider {
				return &MockCatalogProvider{Err: errors.New("catalog load failed")}
			},
			expectedStatusCode: http.StatusServiceUnavailable,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "Catalog data unavailable", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mock := tc.mockSetup()
			handler := NewCatalogHandler(mock)
			req := httptest.NewRequest("GET", "/api/firewalls/x", nil)
			req.SetPathValue("model", tc.model)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetProduct(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}
