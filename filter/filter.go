// Package filter selects catalog products matching a filter specification.
package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/fwselect/firewall-selector/models"
)

// Spec is a filter specification. The zero value matches every product.
type Spec struct {
	Query      string
	Family     string
	FormFactor string
	FwMin      float64
	ThreatMin  float64
	IPSMin     float64
}

// Apply returns the products matching every constraint of spec, in catalog order.
func Apply(catalog *models.Catalog, spec Spec) []models.Product {
	products := catalog.Products()
	matched := make([]models.Product, 0, len(products))
	for i := range products {
		if spec.Matches(&products[i]) {
			matched = append(matched, products[i])
		}
	}
	return matched
}

// Matches reports whether p satisfies all of the spec's constraints.
func (s Spec) Matches(p *models.Product) bool {
	if q := strings.ToUpper(strings.TrimSpace(s.Query)); q != "" {
		text := strings.ToUpper(p.Model + " " + p.Family)
		if !strings.Contains(text, q) {
			return false
		}
	}
	if s.Family != "" && p.Family != s.Family {
		return false
	}
	if s.FormFactor != "" && !strings.Contains(strings.ToLower(p.FormFactor), strings.ToLower(s.FormFactor)) {
		return false
	}
	if p.FirewallGbps() < s.FwMin {
		return false
	}
	if p.ThreatGbps() < s.ThreatMin {
		return false
	}
	if p.IPSGbps() < s.IPSMin {
		return false
	}
	return true
}

// ParseMinimum converts user input to a threshold. Unparseable, negative or
// non-finite input yields 0, which imposes no constraint.
func ParseMinimum(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// FromQuery builds a Spec from request parameters
// (search, family, form_factor, fw_min, threat_min, ips_min).
func FromQuery(q url.Values) Spec {
	return Spec{
		Query:      strings.TrimSpace(q.Get("search")),
		Family:     q.Get("family"),
		FormFactor: strings.TrimSpace(q.Get("form_factor")),
		FwMin:      ParseMinimum(q.Get("fw_min")),
		ThreatMin:  ParseMinimum(q.Get("threat_min")),
		IPSMin:     ParseMinimum(q.Get("ips_min")),
	}
}
