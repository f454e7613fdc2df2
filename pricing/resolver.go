// Package pricing resolves license SKUs for a product and builds priced quotes.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/fwselect/firewall-selector/models"
)

// Status is the outcome of a license resolution.
type Status int

const (
	StatusNoTermSelected Status = iota
	StatusResolved
	StatusMissingSKU
)

func (s Status) String() string {
	switch s {
	case StatusNoTermSelected:
		return "no_term_selected"
	case StatusResolved:
		return "resolved"
	case StatusMissingSKU:
		return "missing_sku"
	default:
		return "unknown"
	}
}

const (
	LabelLicence        = "Licence"
	LabelChooseTerm     = "Licence (choisir durée)"
	LabelMissingLicence = "Licence (SKU manquant)"
)

var componentLabels = map[models.LicenseRoot]string{
	models.RootThreat: "Licence T",
	models.RootAMP:    "Licence AMP",
	models.RootURL:    "Licence URL",
}

// AddOns are the optional license features on top of the base threat license.
type AddOns struct {
	AMP bool
	URL bool
}

// LicenseLine is one license row of a resolution. A nil ListPrice marks a placeholder.
// Breakdown marks the component lines of a summed bundle or of a partial
// match, for display.
type LicenseLine struct {
	Label     string
	SKU       string
	ListPrice decimal.NullDecimal
	Breakdown bool
}

type Resolution struct {
	Status         Status
	Lines          []LicenseLine
	TotalListPrice decimal.NullDecimal
}

type bundleRule struct {
	bundle     models.LicenseRoot
	components []models.LicenseRoot
	sumSKU     string
}

// bundleRules covers every AddOns combination. A rule without components has
// no sum-of-parts fallback.
var bundleRules = map[AddOns]bundleRule{
	{AMP: false, URL: false}: {
		bundle: models.RootThreat,
	},
	{AMP: true, URL: false}: {
		bundle:     models.RootThreatAMP,
		components: []models.LicenseRoot{models.RootThreat, models.RootAMP},
		sumSKU:     "T+AMP (somme)",
	},
	{AMP: false, URL: true}: {
		bundle:     models.RootThreatURL,
		components: []models.LicenseRoot{models.RootThreat, models.RootURL},
		sumSKU:     "T+URL (somme)",
	},
	{AMP: true, URL: true}: {
		bundle:     models.RootThreatAMPAndURL,
		components: []models.LicenseRoot{models.RootThreat, models.RootAMP, models.RootURL},
		sumSKU:     "T+AMP+URL (somme)",
	},
}

// Resolve finds the license lines for product at term. A term <= 0 means no
// term is selected. The bundle SKU always wins over the sum of its parts, and
// lookups are exact on term.
func Resolve(product *models.Product, term int, addOns AddOns) Resolution {
	if term <= 0 {
		return Resolution{
			Status: StatusNoTermSelected,
			Lines:  []LicenseLine{{Label: LabelChooseTerm}},
		}
	}

	rule := bundleRules[addOns]
	if p, ok := product.Licenses.PriceFor(rule.bundle, term); ok {
		return Resolution{
			Status:         StatusResolved,
			Lines:          []LicenseLine{{Label: LabelLicence, SKU: p.SKU, ListPrice: decimal.NewNullDecimal(p.ListPrice)}},
			TotalListPrice: decimal.NewNullDecimal(p.ListPrice),
		}
	}

	lines := make([]LicenseLine, 0, len(rule.components)+1)
	sum := decimal.Zero
	complete := len(rule.components) > 0
	for _, root := range rule.components {
		p, ok := product.Licenses.PriceFor(root, term)
		if !ok {
			complete = false
			continue
		}
		lines = append(lines, LicenseLine{
			Label:     componentLabels[root],
			SKU:       p.SKU,
			ListPrice: decimal.NewNullDecimal(p.ListPrice),
			Breakdown: true,
		})
		sum = sum.Add(p.ListPrice)
	}

	if !complete {
		return Resolution{
			Status: StatusMissingSKU,
			Lines:  append(lines, LicenseLine{Label: LabelMissingLicence}),
		}
	}

	return Resolution{
		Status:         StatusResolved,
		Lines:          append(lines, LicenseLine{Label: LabelLicence, SKU: rule.sumSKU, ListPrice: decimal.NewNullDecimal(sum)}),
		TotalListPrice: decimal.NewNullDecimal(sum),
	}
}
