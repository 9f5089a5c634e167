package domain

import "strings"

// Severity levels, ordered CRITICAL > HIGH > MEDIUM > LOW.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// severityWeight is used only for overall risk scoring; it is distinct from
// the per-finding Score.
var severityWeight = map[Severity]int{
	SeverityCritical: 10,
	SeverityHigh:     5,
	SeverityMedium:   2,
	SeverityLow:      1,
}

// Rank returns the sort position of the severity, CRITICAL first. Unknown
// severities sort last.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// Weight returns the risk-score multiplier for the severity. Unknown
// severities weigh 1.
func (s Severity) Weight() int {
	if w, ok := severityWeight[s]; ok {
		return w
	}
	return 1
}

// ParseSeverity normalizes an untrusted severity string. Anything that is not
// one of the four levels collapses to MEDIUM.
func ParseSeverity(raw string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(raw))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// Category classifies what aspect of the contract a finding concerns.
type Category string

const (
	CategoryJurisdiction         Category = "jurisdiction"
	CategoryFinancial            Category = "financial"
	CategoryLegal                Category = "legal"
	CategoryOperational          Category = "operational"
	CategoryCompliance           Category = "compliance"
	CategoryVagueLanguage        Category = "vague_language"
	CategoryMissingInfo          Category = "missing_info"
	CategoryLiability            Category = "liability"
	CategoryIntellectualProperty Category = "intellectual_property"
	CategoryTax                  Category = "tax"
	CategoryEmployee             Category = "employee"
	CategoryCustomer             Category = "customer"
	CategoryOther                Category = "other"
)

var categories = map[Category]struct{}{
	CategoryJurisdiction:         {},
	CategoryFinancial:            {},
	CategoryLegal:                {},
	CategoryOperational:          {},
	CategoryCompliance:           {},
	CategoryVagueLanguage:        {},
	CategoryMissingInfo:          {},
	CategoryLiability:            {},
	CategoryIntellectualProperty: {},
	CategoryTax:                  {},
	CategoryEmployee:             {},
	CategoryCustomer:             {},
	CategoryOther:                {},
}

// ParseCategory normalizes an untrusted category string; unrecognized values
// collapse to "other".
func ParseCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := categories[c]; ok {
		return c
	}
	return CategoryOther
}

// Source identifies which detector produced a finding.
type Source string

const (
	SourceRuleEngine  Source = "rule_engine"
	SourceLLMAnalyzer Source = "llm_analyzer"
)

// Finding is a single detected red flag. Findings are immutable once created;
// the aggregation stage only drops and reorders them.
type Finding struct {
	ID             string
	Category       Category
	Severity       Severity
	Title          string
	Description    string
	Location       string
	Score          int
	Source         Source
	Recommendation string
}

// ClampScore forces a detector-assigned risk score into the [1,10] range.
func ClampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
