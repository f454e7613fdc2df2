// Package export projects products to flat rows for CSV and spreadsheet output.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/fwselect/firewall-selector/models"
)

// Placeholder renders an absent value.
const Placeholder = "-"

const (
	CSVFileName  = "firewalls_filtered.csv"
	XLSXFileName = "firewalls_filtered.xlsx"
	sheetName    = "Firewalls"
)

// Header lists the column titles in row order.
var Header = []string{"Modèle", "Série", "Form factor", "FW Gbps", "Threat Gbps", "IPS Gbps", "GPL HW"}

// Row is the tabular projection of one product.
type Row struct {
	Model        string
	Family       string
	FormFactor   string
	FirewallGbps string
	ThreatGbps   string
	IPSGbps      string
	HardwareGPL  string
}

func (r Row) Values() []string {
	return []string{r.Model, r.Family, r.FormFactor, r.FirewallGbps, r.ThreatGbps, r.IPSGbps, r.HardwareGPL}
}

// Rows projects products in order.
func Rows(products []models.Product) []Row {
	rows := make([]Row, len(products))
	for i, p := range products {
		rows[i] = Row{
			Model:        p.Model,
			Family:       orPlaceholder(p.Family),
			FormFactor:   orPlaceholder(p.FormFactor),
			FirewallGbps: formatGbps(p.Performance.FirewallGbps),
			ThreatGbps:   formatGbps(p.Performance.ThreatGbps),
			IPSGbps:      formatGbps(p.Performance.IPSGbps),
			HardwareGPL:  Placeholder,
		}
		if p.Hardware != nil && p.Hardware.ListPrice.Valid {
			rows[i].HardwareGPL = p.Hardware.ListPrice.Decimal.String()
		}
	}
	return rows
}

// WriteCSV writes the header and rows separated by semicolons.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, i+2, r.Values()); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", n, err)
	}
	return nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func formatGbps(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
