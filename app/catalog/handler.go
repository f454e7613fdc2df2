package catalog

import (
	"net/http"

	"github.com/fwselect/firewall-selector/app/respond"
	"github.com/fwselect/firewall-selector/filter"
	"github.com/fwselect/firewall-selector/models"
)

type Response struct {
	Products []Product `json:"products"`
	Meta     Meta      `json:"meta"`
}

type Meta struct {
	LicenseTermsSupported []int `json:"license_terms_supported"`
	Count                 int   `json:"count"`
}

type Product struct {
	Model      string   `json:"model"`
	Family     *string  `json:"family"`
	FormFactor *string  `json:"form_factor"`
	Perf       Perf     `json:"perf"`
	Hardware   SKUPrice `json:"hardware"`
	Support    SKUPrice `json:"support"`
	Licenses   Licenses `json:"licenses"`
}

type Perf struct {
	FwGbps     *float64 `json:"fw_gbps"`
	ThreatGbps *float64 `json:"threat_gbps"`
	IPSGbps    *float64 `json:"ips_gbps"`
}

type SKUPrice struct {
	SKU *string  `json:"sku"`
	GPL *float64 `json:"gpl"`
}

type Licenses struct {
	Roots  map[string]string              `json:"roots"`
	Prices map[string]map[string]SKUPrice `json:"prices"`
}

// CatalogProvider hands out the catalog loaded at startup, or the reason it
// could not be loaded.
type CatalogProvider interface {
	Catalog() (*models.Catalog, error)
}

type CatalogHandler struct {
	catalogs CatalogProvider
}

func NewCatalogHandler(p CatalogProvider) *CatalogHandler {
	return &CatalogHandler{
		catalogs: p,
	}
}

// HandleGet lists the products matching the query filters, in catalog order.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalogs.Catalog()
	if err != nil {
		respond.CatalogUnavailable(w)
		return
	}

	res := filter.Apply(cat, filter.FromQuery(r.URL.Query()))

	products := make([]Product, len(res))
	for i := range res {
		products[i] = toProduct(res[i])
	}

	respond.JSON(w, http.StatusOK, Response{
		Products: products,
		Meta: Meta{
			LicenseTermsSupported: cat.Terms(),
			Count:                 len(products),
		},
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalogs.Catalog()
	if err != nil {
		respond.CatalogUnavailable(w)
		return
	}

	product, ok := cat.FindByModel(r.PathValue("model"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "Product not found")
		return
	}

	respond.JSON(w, http.StatusOK, toProduct(*product))
}

func toProduct(p models.Product) Product {
	raw := p.Raw()
	out := Product{
		Model:      raw.Model,
		Family:     raw.Family,
		FormFactor: raw.FormFactor,
		Perf: Perf{
			FwGbps:     raw.Perf.FirewallGbps,
			ThreatGbps: raw.Perf.ThreatGbps,
			IPSGbps:    raw.Perf.IPSGbps,
		},
		Hardware: toSKUPrice(raw.Hardware),
		Support:  toSKUPrice(raw.Support),
		Licenses: Licenses{
			Roots:  raw.Licenses.Roots,
			Prices: make(map[string]map[string]SKUPrice, len(raw.Licenses.Prices)),
		},
	}
	for root, byTerm := range raw.Licenses.Prices {
		terms := make(map[string]SKUPrice, len(byTerm))
		for term, sp := range byTerm {
			terms[term] = toSKUPrice(&sp)
		}
		out.Licenses.Prices[root] = terms
	}
	return out
}

func toSKUPrice(r *models.RawSKUPrice) SKUPrice {
	if r == nil {
		return SKUPrice{}
	}
	s := SKUPrice{SKU: r.SKU}
	if r.GPL != nil {
		gpl := r.GPL.InexactFloat64()
		s.GPL = &gpl
	}
	return s
}
