package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRecord is the persisted row of a catalog product.
// License tables are stored as JSON documents.
type ProductRecord struct {
	ID            uint                              `gorm:"primaryKey"`
	Model         string                            `gorm:"uniqueIndex;not null"`
	Family        *string                           `gorm:"index"`
	FormFactor    *string                           `gorm:"column:form_factor"`
	FwGbps        *float64                          `gorm:"column:fw_gbps"`
	ThreatGbps    *float64                          `gorm:"column:threat_gbps"`
	IPSGbps       *float64                          `gorm:"column:ips_gbps"`
	HardwareSKU   *string                           `gorm:"column:hardware_sku"`
	HardwareGPL   decimal.NullDecimal               `gorm:"column:hardware_gpl;type:decimal(12,2)"`
	SupportSKU    *string                           `gorm:"column:support_sku"`
	SupportGPL    decimal.NullDecimal               `gorm:"column:support_gpl;type:decimal(12,2)"`
	LicenseRoots  map[string]string                 `gorm:"column:license_roots;serializer:json"`
	LicensePrices map[string]map[string]RawSKUPrice `gorm:"column:license_prices;serializer:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r *ProductRecord) TableName() string {
	return "products"
}

// NewProductRecord maps a catalog product to its row.
func NewProductRecord(p Product) ProductRecord {
	raw := p.Raw()
	rec := ProductRecord{
		Model:         p.Model,
		Family:        raw.Family,
		FormFactor:    raw.FormFactor,
		FwGbps:        p.Performance.FirewallGbps,
		ThreatGbps:    p.Performance.ThreatGbps,
		IPSGbps:       p.Performance.IPSGbps,
		LicenseRoots:  raw.Licenses.Roots,
		LicensePrices: raw.Licenses.Prices,
	}
	if p.Hardware != nil {
		rec.HardwareSKU = nilIfEmpty(p.Hardware.SKU)
		rec.HardwareGPL = p.Hardware.ListPrice
	}
	if p.Support != nil {
		rec.SupportSKU = nilIfEmpty(p.Support.SKU)
		rec.SupportGPL = p.Support.ListPrice
	}
	return rec
}

// Raw maps the row back to the external representation so that rows go
// through the same validation as JSON catalogs.
func (r *ProductRecord) Raw() RawProduct {
	rp := RawProduct{
		Model:      r.Model,
		Family:     r.Family,
		FormFactor: r.FormFactor,
		Perf: &RawPerformance{
			FirewallGbps: r.FwGbps,
			ThreatGbps:   r.ThreatGbps,
			IPSGbps:      r.IPSGbps,
		},
		Hardware: rawSKU(r.HardwareSKU, r.HardwareGPL),
		Support:  rawSKU(r.SupportSKU, r.SupportGPL),
		Licenses: &RawLicenses{
			Roots:  r.LicenseRoots,
			Prices: r.LicensePrices,
		},
	}
	return rp
}

func rawSKU(sku *string, gpl decimal.NullDecimal) *RawSKUPrice {
	if sku == nil && !gpl.Valid {
		return nil
	}
	r := &RawSKUPrice{SKU: sku}
	if gpl.Valid {
		price := gpl.Decimal
		r.GPL = &price
	}
	return r
}
