// Package keywords derives searchable keyword variants from company and
// brand names. Pure string work, no I/O.
package keywords

import (
	"strings"

	"CampaignMonitor/internal/domain"
)

// legalForms is the trailing-anchored vocabulary of legal-form suffixes
// stripped from company names. Ordered longest-first so compound forms
// like "Co. KG" win over "KG".
var legalForms = []string{
	"Co. KG", "Co.KG", "& Co.", "& Co", "KGaA", "GmbH", "OHG", "GbR",
	"e.V.", "mbH", "Ltd.", "Inc.", "Corp.", "S.A.", "S.L.", "B.V.",
	"N.V.", "Corp", "Ltd", "Inc", "LLC", "Pty", "PLC", "AG", "KG",
	"UG", "eG", "SE",
}

// FromCompany extracts deduplicated keywords from a company's name,
// official name and trading name. Standalone legal forms ("GmbH" alone)
// are filtered out since they match far too broadly in news searches.
func FromCompany(company domain.Company) []string {
	var candidates []string
	for _, name := range []string{company.Name, company.OfficialName, company.TradingName} {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		candidates = append(candidates, name)
		if stripped := StripLegalForm(name); stripped != name && len(stripped) >= 2 {
			candidates = append(candidates, stripped)
		}
	}
	return dedup(candidates)
}

// StripLegalForm removes a single trailing legal-form token. A name with
// no such suffix comes back unchanged.
func StripLegalForm(name string) string {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	for _, form := range legalForms {
		suffix := strings.ToLower(form)
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		cut := len(trimmed) - len(suffix)
		if cut == 0 {
			// The name is nothing but the legal form.
			continue
		}
		// Reject mid-word hits such as "Tag" ending in "ag".
		if !isBoundary(trimmed[cut-1]) {
			continue
		}
		return strings.TrimSpace(strings.TrimRight(trimmed[:cut], " ,&"))
	}
	return trimmed
}

func isBoundary(b byte) bool {
	return b == ' ' || b == '\t' || b == '.' || b == ',' || b == '&'
}

func isOnlyLegalForm(keyword string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(keyword))
	for _, form := range legalForms {
		if cleaned == strings.ToLower(form) {
			return true
		}
	}
	return false
}

func dedup(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	result := make([]string, 0, len(candidates))
	for _, keyword := range candidates {
		if len(keyword) < 2 || isOnlyLegalForm(keyword) {
			continue
		}
		key := strings.ToLower(keyword)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, keyword)
	}
	return result
}
