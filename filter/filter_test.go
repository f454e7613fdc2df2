package filter

import (
	"net/url"
	"testing"

	"github.com/fwselect/firewall-selector/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gbps(v float64) *float64 { return &v }

func testCatalog(t *testing.T) *models.Catalog {
	t.Helper()
	cat, err := models.NewCatalog([]models.Product{
		{
			Model: "FPR-1010", Family: "Firepower 1000", FormFactor: "Desktop",
			Performance: models.Performance{FirewallGbps: gbps(2), ThreatGbps: gbps(0.9), IPSGbps: gbps(1.1)},
		},
		{
			Model: "FPR-2130", Family: "Firepower 2100", FormFactor: "1RU Rack",
			Performance: models.Performance{FirewallGbps: gbps(10), ThreatGbps: gbps(5), IPSGbps: gbps(6)},
		},
		{
			Model: "ASA-5506", Family: "ASA", FormFactor: "Desktop",
			Performance: models.Performance{FirewallGbps: gbps(0.75)},
		},
		{
			Model: "FTDv-50",
		},
		{
			Model: "FPR-4115", Family: "Firepower 4100", FormFactor: "1RU Rack",
			Performance: models.Performance{FirewallGbps: gbps(80), ThreatGbps: gbps(30), IPSGbps: gbps(35)},
		},
	}, nil)
	require.NoError(t, err)
	return cat
}

func modelNames(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Model
	}
	return out
}

func TestApply_EmptySpecReturnsCatalog(t *testing.T) {
	cat := testCatalog(t)
	assert.Equal(t, cat.Products(), Apply(cat, Spec{}))
}

func TestApply(t *testing.T) {
	cat := testCatalog(t)

	testCases := []struct {
		name     string
		spec     Spec
		expected []string
	}{
		{
			name:     "query matches model case-insensitively",
			spec:     Spec{Query: "fpr-2"},
			expected: []string{"FPR-2130"},
		},
		{
			name:     "query matches family",
			spec:     Spec{Query: "  firepower  "},
			expected: []string{"FPR-1010", "FPR-2130", "FPR-4115"},
		},
		{
			name:     "query spans model and family",
			spec:     Spec{Query: "5506 asa"},
			expected: []string{"ASA-5506"},
		},
		{
			name:     "family is exact equality",
			spec:     Spec{Family: "Firepower 2100"},
			expected: []string{"FPR-2130"},
		},
		{
			name:     "family is case sensitive",
			spec:     Spec{Family: "asa"},
			expected: []string{},
		},
		{
			name:     "form factor substring",
			spec:     Spec{FormFactor: "rack"},
			expected: []string{"FPR-2130", "FPR-4115"},
		},
		{
			name:     "form factor never matches absent value",
			spec:     Spec{FormFactor: "v"},
			expected: []string{},
		},
		{
			name:     "firewall minimum is inclusive",
			spec:     Spec{FwMin: 10},
			expected: []string{"FPR-2130", "FPR-4115"},
		},
		{
			name:     "absent throughput counts as zero",
			spec:     Spec{IPSMin: 0.5},
			expected: []string{"FPR-1010", "FPR-2130", "FPR-4115"},
		},
		{
			name:     "constraints are ANDed",
			spec:     Spec{Query: "fpr", FormFactor: "rack", ThreatMin: 10},
			expected: []string{"FPR-4115"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, modelNames(Apply(cat, tc.spec)))
		})
	}
}

func TestApply_RaisingMinimumNeverGrowsResult(t *testing.T) {
	cat := testCatalog(t)
	thresholds := []float64{0, 0.5, 0.9, 1, 2, 5, 10, 30, 80, 100}

	setters := map[string]func(*Spec, float64){
		"fw":     func(s *Spec, v float64) { s.FwMin = v },
		"threat": func(s *Spec, v float64) { s.ThreatMin = v },
		"ips":    func(s *Spec, v float64) { s.IPSMin = v },
	}

	for name, set := range setters {
		t.Run(name, func(t *testing.T) {
			prev := map[string]bool{}
			for _, p := range cat.Products() {
				prev[p.Model] = true
			}
			for _, v := range thresholds {
				var spec Spec
				set(&spec, v)
				current := map[string]bool{}
				for _, m := range modelNames(Apply(cat, spec)) {
					assert.True(t, prev[m], "%s appeared when raising %s minimum to %v", m, name, v)
					current[m] = true
				}
				prev = current
			}
		})
	}
}

func TestParseMinimum(t *testing.T) {
	testCases := []struct {
		in       string
		expected float64
	}{
		{"", 0},
		{"abc", 0},
		{"-3", 0},
		{"NaN", 0},
		{"Inf", 0},
		{" 2.5 ", 2.5},
		{"10", 10},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ParseMinimum(tc.in), "input %q", tc.in)
	}
}

func TestFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("search", "  fpr ")
	q.Set("family", "Firepower 2100")
	q.Set("form_factor", "rack")
	q.Set("fw_min", "5")
	q.Set("threat_min", "oops")
	q.Set("ips_min", "-2")

	assert.Equal(t, Spec{
		Query:      "fpr",
		Family:     "Firepower 2100",
		FormFactor: "rack",
		FwMin:      5,
	}, FromQuery(q))

	assert.Equal(t, Spec{}, FromQuery(url.Values{}))
}
