package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"CampaignMonitor/internal/domain"
)

func TestStripLegalForm(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Acme GmbH":            "Acme",
		"Acme AG":              "Acme",
		"Northwind Trading KG": "Northwind Trading",
		"Beta Ltd.":            "Beta",
		"Beta Ltd":             "Beta",
		"Gamma Inc":            "Gamma",
		"Delta LLC":            "Delta",
		"Müller & Co. KG":      "Müller",
		"Orbit S.A.":           "Orbit",
		"Verein e.V.":          "Verein",
		"No Suffix Media":      "No Suffix Media",
		"Montag":               "Montag", // "ag" inside a word is not a legal form
		"GmbH":                 "GmbH",   // nothing left to strip
	}

	for input, want := range cases {
		assert.Equal(t, want, StripLegalForm(input), "input %q", input)
	}
}

func TestFromCompany(t *testing.T) {
	t.Parallel()

	company := domain.Company{
		Name:         "Acme GmbH",
		OfficialName: "Acme Holding AG",
		TradingName:  "acme",
	}

	got := FromCompany(company)

	// Raw names plus their stripped variants, deduplicated
	// case-insensitively ("acme" collapses into the stripped "Acme").
	assert.Equal(t, []string{"Acme GmbH", "Acme", "Acme Holding AG", "Acme Holding"}, got)
}

func TestFromCompanyIdempotent(t *testing.T) {
	t.Parallel()

	company := domain.Company{Name: "Northwind Trading KG", TradingName: "Northwind"}

	first := FromCompany(company)
	second := FromCompany(company)
	assert.Equal(t, first, second)
}

func TestFromCompanyFiltersBareLegalForms(t *testing.T) {
	t.Parallel()

	got := FromCompany(domain.Company{Name: "GmbH", TradingName: "X"})
	assert.Empty(t, got, "standalone legal form and single-char names must be dropped")
}

func TestFromCompanyEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FromCompany(domain.Company{}))
}
