package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrMalformedCatalog is returned when a catalog record is missing a required
// field or carries an invalid value. Loading aborts on the first such record.
var ErrMalformedCatalog = errors.New("malformed catalog")

// DefaultTerms is used when the catalog does not declare its license terms.
var DefaultTerms = []int{1, 3, 5}

// RawCatalog is the external JSON representation of the catalog.
type RawCatalog struct {
	Products []RawProduct `json:"products" validate:"dive"`
	Meta     RawMeta      `json:"meta"`
}

type RawMeta struct {
	LicenseTermsSupported []int `json:"license_terms_supported" validate:"omitempty,dive,gt=0"`
	Count                 int   `json:"count,omitempty"`
}

type RawProduct struct {
	Model      string          `json:"model" validate:"required"`
	Family     *string         `json:"family"`
	FormFactor *string         `json:"form_factor"`
	Perf       *RawPerformance `json:"perf,omitempty"`
	Hardware   *RawSKUPrice    `json:"hardware,omitempty"`
	Support    *RawSKUPrice    `json:"support,omitempty"`
	Licenses   *RawLicenses    `json:"licenses,omitempty"`
}

type RawPerformance struct {
	FirewallGbps *float64 `json:"fw_gbps" validate:"omitempty,gte=0"`
	ThreatGbps   *float64 `json:"threat_gbps" validate:"omitempty,gte=0"`
	IPSGbps      *float64 `json:"ips_gbps" validate:"omitempty,gte=0"`
}

type RawSKUPrice struct {
	SKU *string          `json:"sku"`
	GPL *decimal.Decimal `json:"gpl"`
}

type RawLicenses struct {
	Roots  map[string]string                 `json:"roots"`
	Prices map[string]map[string]RawSKUPrice `json:"prices"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Catalog is the immutable product list for a process or request lifetime.
// It is safe for concurrent readers.
type Catalog struct {
	products []Product
	byModel  map[string]int
	terms    []int
}

// ParseCatalog decodes and validates the JSON catalog representation.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw RawCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	return Load(raw)
}

// Load validates raw records and builds the catalog. Any invalid record fails
// the whole load; partial catalogs are never returned.
func Load(raw RawCatalog) (*Catalog, error) {
	if err := validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("%w: %s failed on %q", ErrMalformedCatalog, fe.Namespace(), fe.Tag())
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}

	products := make([]Product, 0, len(raw.Products))
	for i, rp := range raw.Products {
		p, err := rp.toProduct()
		if err != nil {
			return nil, fmt.Errorf("%w: products[%d]: %v", ErrMalformedCatalog, i, err)
		}
		products = append(products, p)
	}
	return NewCatalog(products, raw.Meta.LicenseTermsSupported)
}

// NewCatalog builds a catalog from already-typed products. Terms default to
// DefaultTerms when empty and are kept in ascending order.
func NewCatalog(products []Product, terms []int) (*Catalog, error) {
	c := &Catalog{
		products: slices.Clone(products),
		byModel:  make(map[string]int, len(products)),
	}
	for i, p := range c.products {
		key := NormalizeModel(p.Model)
		if key == "" {
			return nil, fmt.Errorf("%w: products[%d]: model is required", ErrMalformedCatalog, i)
		}
		if _, dup := c.byModel[key]; dup {
			return nil, fmt.Errorf("%w: products[%d]: duplicate model %q", ErrMalformedCatalog, i, p.Model)
		}
		for _, v := range []*float64{p.Performance.FirewallGbps, p.Performance.ThreatGbps, p.Performance.IPSGbps} {
			if v != nil && *v < 0 {
				return nil, fmt.Errorf("%w: products[%d]: negative throughput", ErrMalformedCatalog, i)
			}
		}
		c.byModel[key] = i
	}

	if len(terms) == 0 {
		terms = DefaultTerms
	}
	for _, t := range terms {
		if t <= 0 {
			return nil, fmt.Errorf("%w: invalid license term %d", ErrMalformedCatalog, t)
		}
	}
	c.terms = slices.Clone(terms)
	slices.Sort(c.terms)
	c.terms = slices.Compact(c.terms)

	return c, nil
}

// Products returns the products in catalog order.
func (c *Catalog) Products() []Product {
	return slices.Clone(c.products)
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Terms returns the supported license terms, ascending.
func (c *Catalog) Terms() []int {
	return slices.Clone(c.terms)
}

func (c *Catalog) SupportsTerm(term int) bool {
	_, found := slices.BinarySearch(c.terms, term)
	return found
}

// FindByModel performs a case-insensitive, whitespace-trimmed exact match.
// A miss is not an error.
func (c *Catalog) FindByModel(identifier string) (*Product, bool) {
	i, ok := c.byModel[NormalizeModel(identifier)]
	if !ok {
		return nil, false
	}
	p := c.products[i]
	return &p, true
}

// Families returns the distinct non-empty families in lexicographic order.
func (c *Catalog) Families() []string {
	seen := make(map[string]struct{})
	families := []string{}
	for _, p := range c.products {
		if p.Family == "" {
			continue
		}
		if _, ok := seen[p.Family]; ok {
			continue
		}
		seen[p.Family] = struct{}{}
		families = append(families, p.Family)
	}
	slices.Sort(families)
	return families
}

func (rp RawProduct) toProduct() (Product, error) {
	p := Product{
		Model:      strings.TrimSpace(rp.Model),
		Family:     deref(rp.Family),
		FormFactor: deref(rp.FormFactor),
		Hardware:   rp.Hardware.toSKUPrice(),
		Support:    rp.Support.toSKUPrice(),
	}
	if rp.Perf != nil {
		p.Performance = Performance{
			FirewallGbps: rp.Perf.FirewallGbps,
			ThreatGbps:   rp.Perf.ThreatGbps,
			IPSGbps:      rp.Perf.IPSGbps,
		}
	}
	if rp.Licenses != nil {
		l, err := rp.Licenses.toLicenses()
		if err != nil {
			return Product{}, err
		}
		p.Licenses = l
	}
	return p, nil
}

func (r *RawSKUPrice) toSKUPrice() *SKUPrice {
	if r == nil {
		return nil
	}
	s := &SKUPrice{SKU: deref(r.SKU)}
	if r.GPL != nil {
		s.ListPrice = decimal.NewNullDecimal(*r.GPL)
	}
	return s
}

// Entries without a list price cannot be priced and are left out of the
// table, so lookups on them resolve as missing.
func (r *RawLicenses) toLicenses() (Licenses, error) {
	l := Licenses{
		Roots:  r.Roots,
		Prices: make(map[LicenseRoot]map[int]LicensePrice, len(r.Prices)),
	}
	for root, byTerm := range r.Prices {
		terms := make(map[int]LicensePrice, len(byTerm))
		for key, entry := range byTerm {
			term, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil || term <= 0 {
				return Licenses{}, fmt.Errorf("licenses.prices.%s: invalid term %q", root, key)
			}
			if entry.GPL == nil {
				continue
			}
			terms[term] = LicensePrice{SKU: deref(entry.SKU), ListPrice: *entry.GPL}
		}
		l.Prices[LicenseRoot(root)] = terms
	}
	return l, nil
}

// Raw projects a product back to the external representation.
func (p Product) Raw() RawProduct {
	rp := RawProduct{
		Model:      p.Model,
		Family:     nilIfEmpty(p.Family),
		FormFactor: nilIfEmpty(p.FormFactor),
		Perf: &RawPerformance{
			FirewallGbps: p.Performance.FirewallGbps,
			ThreatGbps:   p.Performance.ThreatGbps,
			IPSGbps:      p.Performance.IPSGbps,
		},
		Hardware: p.Hardware.raw(),
		Support:  p.Support.raw(),
		Licenses: &RawLicenses{
			Roots:  map[string]string{},
			Prices: map[string]map[string]RawSKUPrice{},
		},
	}
	for k, v := range p.Licenses.Roots {
		rp.Licenses.Roots[k] = v
	}
	for root, byTerm := range p.Licenses.Prices {
		terms := make(map[string]RawSKUPrice, len(byTerm))
		for term, lp := range byTerm {
			price := lp.ListPrice
			terms[strconv.Itoa(term)] = RawSKUPrice{SKU: nilIfEmpty(lp.SKU), GPL: &price}
		}
		rp.Licenses.Prices[string(root)] = terms
	}
	return rp
}

func (s *SKUPrice) raw() *RawSKUPrice {
	r := &RawSKUPrice{}
	if s == nil {
		return r
	}
	r.SKU = nilIfEmpty(s.SKU)
	if s.ListPrice.Valid {
		price := s.ListPrice.Decimal
		r.GPL = &price
	}
	return r
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
