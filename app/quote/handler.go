package quote

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fwselect/firewall-selector/app/respond"
	"github.com/fwselect/firewall-selector/models"
	"github.com/fwselect/firewall-selector/pricing"
)

// StatusNoProduct is reported instead of a licensing status when the pane has
// no product selected.
const StatusNoProduct = "no_product_selected"

type Line struct {
	Label     string   `json:"label"`
	SKU       *string  `json:"sku"`
	Category  string   `json:"category"`
	GPL       *float64 `json:"gpl"`
	Net       *float64 `json:"net"`
	Breakdown bool     `json:"breakdown,omitempty"`
}

type Response struct {
	ID        string   `json:"id"`
	Model     *string  `json:"model"`
	Licensing string   `json:"licensing"`
	Lines     []Line   `json:"lines"`
	TotalGPL  *float64 `json:"total_gpl"`
	TotalNet  *float64 `json:"total_net"`
}

type CompareResponse struct {
	A        Response `json:"A"`
	B        Response `json:"B"`
	NetDelta *float64 `json:"net_delta"`
}

// CompareRequest keeps numeric and flag fields raw so that a malformed value
// degrades to its default instead of rejecting the request.
type CompareRequest struct {
	Discounts struct {
		Hardware json.RawMessage `json:"hw"`
		Software json.RawMessage `json:"sw"`
		Support  json.RawMessage `json:"sssnt"`
	} `json:"discounts"`
	Panes map[string]Pane `json:"panes"`
}

type Pane struct {
	Model   string          `json:"model"`
	Term    json.RawMessage `json:"term"`
	AMP     json.RawMessage `json:"amp"`
	URL     json.RawMessage `json:"url"`
	Support json.RawMessage `json:"support"`
}

type CatalogProvider interface {
	Catalog() (*models.Catalog, error)
}

type QuoteHandler struct {
	catalogs  CatalogProvider
	discounts pricing.Discounts
}

// NewQuoteHandler uses defaults for any discount rate a request leaves out.
func NewQuoteHandler(p CatalogProvider, defaults pricing.Discounts) *QuoteHandler {
	return &QuoteHandler{
		catalogs:  p,
		discounts: defaults,
	}
}

// HandleGet quotes a single selection described by query parameters
// (model, term, amp, url, support, hw, sw, sssnt).
func (h *QuoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalogs.Catalog()
	if err != nil {
		respond.CatalogUnavailable(w)
		return
	}

	q := r.URL.Query()
	sel := pricing.Selection{
		Model: q.Get("model"),
		Options: pricing.Options{
			Term:    parseTerm(q.Get("term")),
			AMP:     parseFlag(q.Get("amp")),
			URL:     parseFlag(q.Get("url")),
			Support: parseFlag(q.Get("support")),
		},
	}

	res := pricing.QuoteFor(cat, h.queryDiscounts(q), sel)
	respond.JSON(w, http.StatusOK, toResponse(res))
}

// HandleCompare quotes panes A and B with the same discounts.
func (h *QuoteHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var input CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	cat, err := h.catalogs.Catalog()
	if err != nil {
		respond.CatalogUnavailable(w)
		return
	}

	d := pricing.NewDiscounts(
		rawRate(input.Discounts.Hardware, h.discounts.Hardware),
		rawRate(input.Discounts.Software, h.discounts.Software),
		rawRate(input.Discounts.Support, h.discounts.Support),
	)

	c := pricing.Compare(cat, d, input.Panes["A"].selection(), input.Panes["B"].selection())
	respond.JSON(w, http.StatusOK, CompareResponse{
		A:        toResponse(c.A),
		B:        toResponse(c.B),
		NetDelta: toFloat(c.NetDelta),
	})
}

func (p Pane) selection() pricing.Selection {
	return pricing.Selection{
		Model: p.Model,
		Options: pricing.Options{
			Term:    parseTerm(rawText(p.Term)),
			AMP:     parseFlag(rawText(p.AMP)),
			URL:     parseFlag(rawText(p.URL)),
			Support: parseFlag(rawText(p.Support)),
		},
	}
}

func (h *QuoteHandler) queryDiscounts(q url.Values) pricing.Discounts {
	rate := func(key string, def decimal.Decimal) decimal.Decimal {
		if !q.Has(key) {
			return def
		}
		return pricing.ParseRate(q.Get(key))
	}
	return pricing.NewDiscounts(
		rate("hw", h.discounts.Hardware),
		rate("sw", h.discounts.Software),
		rate("sssnt", h.discounts.Support),
	)
}

func toResponse(q pricing.Quote) Response {
	resp := Response{
		ID:       uuid.NewString(),
		Lines:    make([]Line, len(q.Lines)),
		TotalGPL: toFloat(q.TotalList),
		TotalNet: toFloat(q.TotalNet),
	}
	if q.Empty() {
		resp.Licensing = StatusNoProduct
	} else {
		model := q.Model
		resp.Model = &model
		resp.Licensing = q.Licensing.String()
	}

	for i, l := range q.Lines {
		resp.Lines[i] = Line{
			Label:     l.Label,
			Category:  l.Category.String(),
			GPL:       toFloat(l.ListPrice),
			Net:       toFloat(l.NetPrice),
			Breakdown: l.Breakdown,
		}
		if l.SKU != "" {
			sku := l.SKU
			resp.Lines[i].SKU = &sku
		}
	}
	return resp
}

func toFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

// rawText returns a JSON scalar as text: strings unquoted, numbers and
// booleans verbatim, null and absent values empty.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// rawRate parses a discount given as a number or a string. Absent or null
// values use def; anything unparseable becomes 0.
func rawRate(raw json.RawMessage, def decimal.Decimal) decimal.Decimal {
	if trimmed := strings.TrimSpace(string(raw)); trimmed == "" || trimmed == "null" {
		return def
	}
	return pricing.ParseRate(rawText(raw))
}

func parseTerm(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
