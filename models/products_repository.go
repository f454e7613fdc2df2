package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// CatalogSummary reports aggregate figures over the stored catalog.
type CatalogSummary struct {
	TotalProducts    int64
	TotalFamilies    int64
	TotalFormFactors int64
	AvgFwGbps        float64
	AvgThreatGbps    float64
	AvgIPSGbps       float64
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// LoadCatalog reads every row, ordered by model, and validates it into a Catalog.
// A single malformed row fails the load.
func (r *ProductsRepository) LoadCatalog(ctx context.Context, terms []int) (*Catalog, error) {
	var records []ProductRecord
	if err := r.db.WithContext(ctx).Order("model").Find(&records).Error; err != nil {
		return nil, err
	}

	raw := RawCatalog{
		Products: make([]RawProduct, len(records)),
		Meta:     RawMeta{LicenseTermsSupported: terms},
	}
	for i := range records {
		raw.Products[i] = records[i].Raw()
	}
	return Load(raw)
}

func (r *ProductsRepository) GetByModel(ctx context.Context, model string) (*Product, error) {
	var record ProductRecord
	if err := r.db.WithContext(ctx).
		Where("UPPER(model) = ?", NormalizeModel(model)).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}

	p, err := record.Raw().toProduct()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCatalog, record.Model, err)
	}
	return &p, nil
}

// GetFamilies returns the distinct non-null families, ordered.
func (r *ProductsRepository) GetFamilies(ctx context.Context) ([]string, error) {
	families := []string{}
	if err := r.db.WithContext(ctx).
		Model(&ProductRecord{}).
		Where("family IS NOT NULL AND family <> ''").
		Distinct().
		Order("family").
		Pluck("family", &families).Error; err != nil {
		return nil, err
	}
	return families, nil
}

// SaveProducts upserts the given products keyed on model, in one transaction.
func (r *ProductsRepository) SaveProducts(ctx context.Context, products []Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	records := make([]ProductRecord, len(products))
	for i, p := range products {
		records[i] = NewProductRecord(p)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "model"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"family", "form_factor", "fw_gbps", "threat_gbps", "ips_gbps",
				"hardware_sku", "hardware_gpl", "support_sku", "support_gpl",
				"license_roots", "license_prices", "updated_at",
			}),
		}).CreateInBatches(records, 100).Error
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (r *ProductsRepository) Summary(ctx context.Context) (CatalogSummary, error) {
	var row struct {
		TotalProducts    int64
		TotalFamilies    int64
		TotalFormFactors int64
		AvgFwGbps        *float64
		AvgThreatGbps    *float64
		AvgIPSGbps       *float64
	}
	if err := r.db.WithContext(ctx).
		Model(&ProductRecord{}).
		Select(`COUNT(*) AS total_products,
			COUNT(DISTINCT family) AS total_families,
			COUNT(DISTINCT form_factor) AS total_form_factors,
			AVG(fw_gbps) AS avg_fw_gbps,
			AVG(threat_gbps) AS avg_threat_gbps,
			AVG(ips_gbps) AS avg_ips_gbps`).
		Scan(&row).Error; err != nil {
		return CatalogSummary{}, err
	}
	return CatalogSummary{
		TotalProducts:    row.TotalProducts,
		TotalFamilies:    row.TotalFamilies,
		TotalFormFactors: row.TotalFormFactors,
		AvgFwGbps:        valueOrZero(row.AvgFwGbps),
		AvgThreatGbps:    valueOrZero(row.AvgThreatGbps),
		AvgIPSGbps:       valueOrZero(row.AvgIPSGbps),
	}, nil
}

// Ping checks the underlying connection.
func (r *ProductsRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
