package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product represents a security appliance in the catalog.
// Optional fields are pointers or empty strings; the catalog loader
// guarantees Model is non-empty and unique.
type Product struct {
	Model       string
	Family      string
	FormFactor  string
	Performance Performance
	Hardware    *SKUPrice
	Support     *SKUPrice
	Licenses    Licenses
}

// Performance holds throughput figures in Gbps. Nil means "not published".
type Performance struct {
	FirewallGbps *float64
	ThreatGbps   *float64
	IPSGbps      *float64
}

// SKUPrice is an orderable part number and its list price (GPL).
type SKUPrice struct {
	SKU       string
	ListPrice decimal.NullDecimal
}

// LicenseRoot is a logical license bundle key.
type LicenseRoot string

const (
	RootThreat          LicenseRoot = "t"
	RootAMP             LicenseRoot = "amp"
	RootURL             LicenseRoot = "url"
	RootThreatAMP       LicenseRoot = "tm"
	RootThreatURL       LicenseRoot = "tc"
	RootThreatAMPAndURL LicenseRoot = "tmc"
)

// KnownRoots lists the roots the license resolver understands.
var KnownRoots = []LicenseRoot{
	RootThreat, RootAMP, RootURL, RootThreatAMP, RootThreatURL, RootThreatAMPAndURL,
}

func (r LicenseRoot) IsKnown() bool {
	for _, k := range KnownRoots {
		if r == k {
			return true
		}
	}
	return false
}

// LicensePrice is a priced license SKU for one root at one term.
type LicensePrice struct {
	SKU       string
	ListPrice decimal.Decimal
}

// Licenses holds the sparse license pricing table of a product.
// Roots is informational (bundle identifiers); Prices is keyed by root then term.
type Licenses struct {
	Roots  map[string]string
	Prices map[LicenseRoot]map[int]LicensePrice
}

// PriceFor looks up the exact (root, term) entry. There is no nearest-term fallback.
func (l Licenses) PriceFor(root LicenseRoot, term int) (LicensePrice, bool) {
	byTerm, ok := l.Prices[root]
	if !ok {
		return LicensePrice{}, false
	}
	p, ok := byTerm[term]
	return p, ok
}

// NormalizeModel returns the lookup key for a model identifier.
func NormalizeModel(model string) string {
	return strings.ToUpper(strings.TrimSpace(model))
}

func (p *Product) FirewallGbps() float64 { return valueOrZero(p.Performance.FirewallGbps) }
func (p *Product) ThreatGbps() float64   { return valueOrZero(p.Performance.ThreatGbps) }
func (p *Product) IPSGbps() float64      { return valueOrZero(p.Performance.IPSGbps) }

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
