package health

import (
	"context"
	"net/http"
	"time"

	"github.com/fwselect/firewall-selector/app/respond"
	"github.com/fwselect/firewall-selector/models"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	DatabaseUp            = "connected"
	DatabaseDown          = "unreachable"
	DatabaseNotConfigured = "not_configured"
)

const pingTimeout = 2 * time.Second

type Response struct {
	Status          string    `json:"status"`
	Database        string    `json:"database"`
	CatalogProducts int       `json:"catalog_products"`
	Timestamp       time.Time `json:"timestamp"`
}

type CatalogProvider interface {
	Catalog() (*models.Catalog, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Unreachable reports err on every ping. It stands in for a configured
// database the process could not connect to.
func Unreachable(err error) Pinger {
	return PingerFunc(func(context.Context) error { return err })
}

type HealthHandler struct {
	catalogs CatalogProvider
	db       Pinger
	now      func() time.Time
}

// NewHealthHandler accepts a nil pinger when the catalog is served from a file.
func NewHealthHandler(p CatalogProvider, db Pinger) *HealthHandler {
	return &HealthHandler{
		catalogs: p,
		db:       db,
		now:      time.Now,
	}
}

func (h *HealthHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:    StatusOK,
		Database:  DatabaseNotConfigured,
		Timestamp: h.now().UTC(),
	}

	if cat, err := h.catalogs.Catalog(); err != nil {
		resp.Status = StatusDegraded
	} else {
		resp.CatalogProducts = cat.Len()
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Database = DatabaseDown
			resp.Status = StatusDegraded
		} else {
			resp.Database = DatabaseUp
		}
	}

	status := http.StatusOK
	if resp.Status != StatusOK {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(w, status, resp)
}
