package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwselect/firewall-selector/models"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type priceTable map[models.LicenseRoot]map[int]models.LicensePrice

func productWith(prices priceTable) *models.Product {
	return &models.Product{
		Model:    "FPR-1120",
		Hardware: &models.SKUPrice{SKU: "HW1", ListPrice: decimal.NewNullDecimal(dec(1000))},
		Support:  &models.SKUPrice{SKU: "SUP1", ListPrice: decimal.NewNullDecimal(dec(200))},
		Licenses: models.Licenses{Prices: prices},
	}
}

func assertPrice(t *testing.T, expected int64, actual decimal.NullDecimal) {
	t.Helper()
	require.True(t, actual.Valid, "expected price %d, got null", expected)
	assert.True(t, actual.Decimal.Equal(dec(expected)), "expected %d, got %s", expected, actual.Decimal)
}

func TestResolve_NoTermSelected(t *testing.T) {
	p := productWith(priceTable{models.RootThreat: {3: {SKU: "L3", ListPrice: dec(300)}}})

	res := Resolve(p, 0, AddOns{AMP: true})

	assert.Equal(t, StatusNoTermSelected, res.Status)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, LabelChooseTerm, res.Lines[0].Label)
	assert.False(t, res.Lines[0].ListPrice.Valid)
	assert.False(t, res.TotalListPrice.Valid)
}

func TestResolve_BaseLicenseOnly(t *testing.T) {
	p := productWith(priceTable{models.RootThreat: {3: {SKU: "L3", ListPrice: dec(300)}}})

	t.Run("found", func(t *testing.T) {
		res := Resolve(p, 3, AddOns{})
		assert.Equal(t, StatusResolved, res.Status)
		require.Len(t, res.Lines, 1)
		assert.Equal(t, LabelLicence, res.Lines[0].Label)
		assert.Equal(t, "L3", res.Lines[0].SKU)
		assertPrice(t, 300, res.TotalListPrice)
	})

	t.Run("exact term only", func(t *testing.T) {
		res := Resolve(p, 5, AddOns{})
		assert.Equal(t, StatusMissingSKU, res.Status)
		require.Len(t, res.Lines, 1)
		assert.Equal(t, LabelMissingLicence, res.Lines[0].Label)
		assert.False(t, res.Lines[0].ListPrice.Valid)
	})
}

func TestResolve_BundleWinsOverSum(t *testing.T) {
	prices := priceTable{
		models.RootThreat:          {3: {SKU: "T3", ListPrice: dec(300)}},
		models.RootAMP:             {3: {SKU: "A3", ListPrice: dec(100)}},
		models.RootURL:             {3: {SKU: "U3", ListPrice: dec(50)}},
		models.RootThreatAMP:       {3: {SKU: "TM3", ListPrice: dec(390)}},
		models.RootThreatURL:       {3: {SKU: "TC3", ListPrice: dec(340)}},
		models.RootThreatAMPAndURL: {3: {SKU: "TMC3", ListPrice: dec(420)}},
	}
	p := productWith(prices)

	testCases := []struct {
		addOns AddOns
		sku    string
		price  int64
	}{
		{AddOns{AMP: true, URL: true}, "TMC3", 420},
		{AddOns{AMP: true}, "TM3", 390},
		{AddOns{URL: true}, "TC3", 340},
		{AddOns{}, "T3", 300},
	}
	for _, tc := range testCases {
		res := Resolve(p, 3, tc.addOns)
		assert.Equal(t, StatusResolved, res.Status)
		require.Len(t, res.Lines, 1, "bundle must not be itemized for %+v", tc.addOns)
		assert.Equal(t, tc.sku, res.Lines[0].SKU)
		assertPrice(t, tc.price, res.Lines[0].ListPrice)
	}
}

func TestResolve_SumOfParts(t *testing.T) {
	p := productWith(priceTable{
		models.RootThreat: {3: {SKU: "T3", ListPrice: dec(300)}},
		models.RootAMP:    {3: {SKU: "A3", ListPrice: dec(100)}},
		models.RootURL:    {3: {SKU: "U3", ListPrice: dec(50)}},
	})

	testCases := []struct {
		name    string
		addOns  AddOns
		labels  []string
		skus    []string
		sumList int64
	}{
		{
			name:    "threat amp url",
			addOns:  AddOns{AMP: true, URL: true},
			labels:  []string{"Licence T", "Licence AMP", "Licence URL", LabelLicence},
			skus:    []string{"T3", "A3", "U3", "T+AMP+URL (somme)"},
			sumList: 450,
		},
		{
			name:    "threat amp",
			addOns:  AddOns{AMP: true},
			labels:  []string{"Licence T", "Licence AMP", LabelLicence},
			skus:    []string{"T3", "A3", "T+AMP (somme)"},
			sumList: 400,
		},
		{
			name:    "threat url",
			addOns:  AddOns{URL: true},
			labels:  []string{"Licence T", "Licence URL", LabelLicence},
			skus:    []string{"T3", "U3", "T+URL (somme)"},
			sumList: 350,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Resolve(p, 3, tc.addOns)
			assert.Equal(t, StatusResolved, res.Status)
			require.Len(t, res.Lines, len(tc.labels))
			for i, l := range res.Lines {
				assert.Equal(t, tc.labels[i], l.Label)
				assert.Equal(t, tc.skus[i], l.SKU)
				assert.Equal(t, i < len(res.Lines)-1, l.Breakdown)
			}
			assertPrice(t, tc.sumList, res.Lines[len(res.Lines)-1].ListPrice)
			assertPrice(t, tc.sumList, res.TotalListPrice)
		})
	}
}

func TestResolve_MissingComponentKeepsFoundLines(t *testing.T) {
	p := productWith(priceTable{
		models.RootThreat: {3: {SKU: "T3", ListPrice: dec(300)}},
		models.RootAMP:    {3: {SKU: "A3", ListPrice: dec(100)}},
		models.RootURL:    {5: {SKU: "U5", ListPrice: dec(200)}},
	})

	res := Resolve(p, 3, AddOns{AMP: true, URL: true})

	assert.Equal(t, StatusMissingSKU, res.Status)
	require.Len(t, res.Lines, 3)
	assert.Equal(t, "T3", res.Lines[0].SKU)
	assert.Equal(t, "A3", res.Lines[1].SKU)
	assert.Equal(t, LabelMissingLicence, res.Lines[2].Label)
	assert.False(t, res.Lines[2].ListPrice.Valid)
	assert.False(t, res.TotalListPrice.Valid)
}

func TestResolve_NothingFound(t *testing.T) {
	res := Resolve(productWith(nil), 1, AddOns{URL: true})

	assert.Equal(t, StatusMissingSKU, res.Status)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, LabelMissingLicence, res.Lines[0].Label)
}

func TestBundleRules_CoverEveryCombination(t *testing.T) {
	for _, amp := range []bool{false, true} {
		for _, url := range []bool{false, true} {
			rule, ok := bundleRules[AddOns{AMP: amp, URL: url}]
			require.True(t, ok)
			assert.True(t, rule.bundle.IsKnown())
			for _, c := range rule.components {
				assert.True(t, c.IsKnown())
				assert.NotEmpty(t, componentLabels[c])
			}
			if len(rule.components) > 0 {
				assert.Equal(t, models.RootThreat, rule.components[0], "base threat license is always part of the sum")
			}
		}
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "resolved", StatusResolved.String())
	assert.Equal(t, "missing_sku", StatusMissingSKU.String())
	assert.Equal(t, "no_term_selected", StatusNoTermSelected.String())
}
