package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fwselect/firewall-selector/models"
)

// Category selects which discount rate applies to a quote line.
type Category int

const (
	CategoryHardware Category = iota
	CategorySoftware
	CategorySupport
)

func (c Category) String() string {
	switch c {
	case CategoryHardware:
		return "HW"
	case CategorySoftware:
		return "SW"
	case CategorySupport:
		return "SSSNT"
	default:
		return "unknown"
	}
}

const (
	LabelHardware = "Hardware"
	LabelSupport  = "Support SSSNT (12 mois)"
)

// DefaultRate is the list-price multiplier applied when none is configured (40% off).
var DefaultRate = decimal.RequireFromString("0.6")

// Discounts holds the per-category multipliers applied to list prices.
type Discounts struct {
	Hardware decimal.Decimal
	Software decimal.Decimal
	Support  decimal.Decimal
}

func DefaultDiscounts() Discounts {
	return Discounts{Hardware: DefaultRate, Software: DefaultRate, Support: DefaultRate}
}

// NewDiscounts clamps negative rates to zero.
func NewDiscounts(hardware, software, support decimal.Decimal) Discounts {
	return Discounts{
		Hardware: clampRate(hardware),
		Software: clampRate(software),
		Support:  clampRate(support),
	}
}

func (d Discounts) Rate(c Category) decimal.Decimal {
	switch c {
	case CategoryHardware:
		return d.Hardware
	case CategorySupport:
		return d.Support
	default:
		return d.Software
	}
}

// ParseRate converts user input to a discount rate. Unparseable or negative
// input yields 0.
func ParseRate(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return clampRate(d)
}

func clampRate(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Options is the license selection for one product. Term 0 means no term selected.
type Options struct {
	Term    int
	AMP     bool
	URL     bool
	Support bool
}

func (o Options) AddOns() AddOns {
	return AddOns{AMP: o.AMP, URL: o.URL}
}

// Line is one priced row of a quote. Nil prices render as "not applicable".
type Line struct {
	Label     string
	SKU       string
	Category  Category
	ListPrice decimal.NullDecimal
	NetPrice  decimal.NullDecimal
	Breakdown bool
}

type Quote struct {
	Model     string
	Lines     []Line
	Licensing Status
	TotalList decimal.NullDecimal
	TotalNet  decimal.NullDecimal
}

// Empty reports whether the quote is the no-product placeholder.
func (q Quote) Empty() bool {
	return q.Model == ""
}

// Build assembles hardware, license and optional support lines for product.
// A nil product yields the empty placeholder quote.
func Build(product *models.Product, d Discounts, o Options) Quote {
	if product == nil {
		return Quote{Lines: []Line{}}
	}
	return build(product, d, o, Resolve(product, o.Term, o.AddOns()))
}

// BuildSupported is Build restricted to the license terms accepted by
// supported. A selected term outside that set has no pricing and resolves as
// missing.
func BuildSupported(product *models.Product, supported func(term int) bool, d Discounts, o Options) Quote {
	if product == nil {
		return Quote{Lines: []Line{}}
	}
	if o.Term > 0 && !supported(o.Term) {
		return build(product, d, o, Resolution{
			Status: StatusMissingSKU,
			Lines:  []LicenseLine{{Label: LabelMissingLicence}},
		})
	}
	return Build(product, d, o)
}

func build(product *models.Product, d Discounts, o Options, res Resolution) Quote {

	q := Quote{Model: product.Model}

	var hw decimal.NullDecimal
	var hwSKU string
	if product.Hardware != nil {
		hw = product.Hardware.ListPrice
		hwSKU = product.Hardware.SKU
	}
	q.add(d, Line{Label: LabelHardware, SKU: hwSKU, Category: CategoryHardware, ListPrice: hw})

	q.Licensing = res.Status
	for _, l := range res.Lines {
		q.add(d, Line{
			Label:     l.Label,
			SKU:       l.SKU,
			Category:  CategorySoftware,
			ListPrice: l.ListPrice,
			Breakdown: l.Breakdown,
		})
	}

	if o.Support && product.Support != nil && product.Support.SKU != "" {
		q.add(d, Line{
			Label:     LabelSupport,
			SKU:       product.Support.SKU,
			Category:  CategorySupport,
			ListPrice: product.Support.ListPrice,
		})
	}

	total := decimal.Zero
	net := decimal.Zero
	for _, l := range q.Lines {
		if !l.ListPrice.Valid {
			continue
		}
		total = total.Add(l.ListPrice.Decimal)
		net = net.Add(l.NetPrice.Decimal)
	}
	q.TotalList = decimal.NewNullDecimal(total)
	q.TotalNet = decimal.NewNullDecimal(net)

	return q
}

func (q *Quote) add(d Discounts, l Line) {
	if l.ListPrice.Valid {
		l.NetPrice = decimal.NewNullDecimal(l.ListPrice.Decimal.Mul(d.Rate(l.Category)))
	}
	q.Lines = append(q.Lines, l)
}

// Selection is one comparison pane: a model identifier and its license options.
type Selection struct {
	Model string
	Options
}

// QuoteFor looks up the selected model and builds its quote. Unknown models
// give the empty quote; terms the catalog does not support resolve as missing.
func QuoteFor(catalog *models.Catalog, d Discounts, sel Selection) Quote {
	product, ok := catalog.FindByModel(sel.Model)
	if !ok {
		return Build(nil, d, sel.Options)
	}
	return BuildSupported(product, catalog.SupportsTerm, d, sel.Options)
}

// Comparison holds two quotes side by side.
type Comparison struct {
	A        Quote
	B        Quote
	NetDelta decimal.NullDecimal
}

// Compare quotes both panes with the same discounts. NetDelta is B minus A
// and is only set when both panes have a product.
func Compare(catalog *models.Catalog, d Discounts, a, b Selection) Comparison {
	c := Comparison{
		A: QuoteFor(catalog, d, a),
		B: QuoteFor(catalog, d, b),
	}
	if c.A.TotalNet.Valid && c.B.TotalNet.Valid {
		c.NetDelta = decimal.NewNullDecimal(c.B.TotalNet.Decimal.Sub(c.A.TotalNet.Decimal))
	}
	return c
}
