// Package app wires the HTTP handlers onto a ServeMux.
package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fwselect/firewall-selector/app/catalog"
	"github.com/fwselect/firewall-selector/app/export"
	"github.com/fwselect/firewall-selector/app/families"
	"github.com/fwselect/firewall-selector/app/health"
	"github.com/fwselect/firewall-selector/app/quote"
	"github.com/fwselect/firewall-selector/app/respond"
	"github.com/fwselect/firewall-selector/models"
	"github.com/fwselect/firewall-selector/pricing"
)

type CatalogProvider interface {
	Catalog() (*models.Catalog, error)
}

type Dependencies struct {
	Catalogs       CatalogProvider
	Database       health.Pinger // nil when the catalog comes from a file
	Discounts      pricing.Discounts
	AllowedOrigins []string
	Logger         *zap.Logger
}

// SetupRoutes registers every API route and wraps the mux with request ID,
// logging and CORS middleware.
func SetupRoutes(deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	catalogHandler := catalog.NewCatalogHandler(deps.Catalogs)
	familyHandler := families.NewFamilyHandler(deps.Catalogs)
	quoteHandler := quote.NewQuoteHandler(deps.Catalogs, deps.Discounts)
	exportHandler := export.NewExportHandler(deps.Catalogs, log)
	healthHandler := health.NewHealthHandler(deps.Catalogs, deps.Database)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/firewalls", catalogHandler.HandleGet)
	mux.HandleFunc("GET /api/firewalls/export", exportHandler.HandleGet)
	mux.HandleFunc("GET /api/firewalls/{model}", catalogHandler.HandleGetProduct)
	mux.HandleFunc("GET /api/families", familyHandler.HandleGetAll)
	mux.HandleFunc("GET /api/quote", quoteHandler.HandleGet)
	mux.HandleFunc("POST /api/compare", quoteHandler.HandleCompare)
	mux.HandleFunc("GET /api/health", healthHandler.HandleGet)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Route not found")
	})

	return RequestID(Logging(log)(CORS(deps.AllowedOrigins)(mux)))
}
