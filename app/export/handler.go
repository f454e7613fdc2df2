package export

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fwselect/firewall-selector/app/respond"
	"github.com/fwselect/firewall-selector/export"
	"github.com/fwselect/firewall-selector/filter"
	"github.com/fwselect/firewall-selector/models"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type CatalogProvider interface {
	Catalog() (*models.Catalog, error)
}

type ExportHandler struct {
	catalogs CatalogProvider
	logger   *zap.Logger
}

func NewExportHandler(p CatalogProvider, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		catalogs: p,
		logger:   logger,
	}
}

// HandleGet exports the filtered result set as an attachment. The filters are
// the same query parameters as the list endpoint; format defaults to csv.
func (h *ExportHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = FormatCSV
	}

	var (
		write       func(io.Writer, []export.Row) error
		contentType string
		fileName    string
	)
	switch format {
	case FormatCSV:
		write, contentType, fileName = export.WriteCSV, contentTypeCSV, export.CSVFileName
	case FormatXLSX:
		write, contentType, fileName = export.WriteXLSX, contentTypeXLSX, export.XLSXFileName
	default:
		respond.Error(w, http.StatusBadRequest, "Unsupported export format")
		return
	}

	cat, err := h.catalogs.Catalog()
	if err != nil {
		respond.CatalogUnavailable(w)
		return
	}

	rows := export.Rows(filter.Apply(cat, filter.FromQuery(r.URL.Query())))

	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		h.logger.Error("export failed", zap.String("format", format), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Failed to export catalog")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
