package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/de-tools/deal-radar/pkg/models/domain"
	"github.com/oklog/ulid/v2"
)

// Settings contains the tuning constants for the rule checks. The defaults
// mirror the catalog's published policies; they are configurable rather than
// hard-coded because none of them carries a stated rationale.
type Settings struct {
	// ContextChars is the half-width of the quoted context window around a match (default: 150)
	ContextChars int
	// ScheduleContextChars is the narrower window used by the schedules check (default: 100)
	ScheduleContextChars int
	// WeaselThreshold is the occurrence count a vague term must exceed to be flagged (default: 3)
	WeaselThreshold int
	// MinSurvivalMonths is the shortest acceptable survival period (default: 12)
	MinSurvivalMonths int
	// ConcentrationFlagPct is the revenue share above which customer concentration is flagged (default: 50)
	ConcentrationFlagPct int
	// ConcentrationCriticalPct escalates the concentration finding to CRITICAL (default: 70)
	ConcentrationCriticalPct int
	// MaxAuditAgeYears is how far back an audit may date before it is stale (default: 2)
	MaxAuditAgeYears int
}

// DefaultSettings returns the default rule check configuration.
func DefaultSettings() Settings {
	return Settings{
		ContextChars:             150,
		ScheduleContextChars:     100,
		WeaselThreshold:          3,
		MinSurvivalMonths:        12,
		ConcentrationFlagPct:     50,
		ConcentrationCriticalPct: 70,
		MaxAuditAgeYears:         2,
	}
}

// Engine runs the fixed catalog of deterministic pattern checks over contract
// text. Analyze is a pure function of its input; the engine keeps no state
// between calls.
type Engine struct {
	settings Settings
	now      func() time.Time
}

func NewEngine(settings Settings) *Engine {
	return &Engine{settings: settings, now: time.Now}
}

// Analyze runs every check unconditionally over the full text and returns the
// combined findings. Checks are independent; no check short-circuits another.
func (e *Engine) Analyze(text string) []domain.Finding {
	var flags []domain.Finding
	flags = append(flags, e.checkOffshoreJurisdictions(text)...)
	flags = append(flags, e.checkWeaselWords(text)...)
	flags = append(flags, e.checkHighRiskPhrases(text)...)
	flags = append(flags, e.checkMissingSchedules(text)...)
	flags = append(flags, e.checkAuditDates(text)...)
	flags = append(flags, e.checkPaymentRedFlags(text)...)
	flags = append(flags, e.checkSurvivalPeriods(text)...)
	flags = append(flags, e.checkCustomerConcentration(text)...)
	return flags
}

func (e *Engine) checkOffshoreJurisdictions(text string) []domain.Finding {
	var flags []domain.Finding
	for _, jurisdiction := range OffshoreJurisdictions {
		for _, m := range jurisdictionPatterns[jurisdiction].FindAllStringIndex(text, -1) {
			context := contextWindow(text, m[0], m[1], e.settings.ContextChars)

			severity := domain.SeverityHigh
			score := 7
			lower := strings.ToLower(context)
			for _, keyword := range escalationKeywords {
				if strings.Contains(lower, keyword) {
					severity = domain.SeverityCritical
					score = 9
					break
				}
			}

			flags = append(flags, domain.Finding{
				ID:          ulid.Make().String(),
				Category:    domain.CategoryJurisdiction,
				Severity:    severity,
				Title:       fmt.Sprintf("Offshore Jurisdiction: %s", jurisdiction),
				Description: fmt.Sprintf("Document references %s, which may indicate jurisdiction shopping or regulatory arbitrage.", jurisdiction),
				Location:    context,
				Score:       score,
				Source:      domain.SourceRuleEngine,
				Recommendation: "Require arbitration in neutral jurisdiction (Delaware, New York, or London). " +
					"Investigate why offshore jurisdiction was chosen.",
			})
		}
	}
	return flags
}

func (e *Engine) checkWeaselWords(text string) []domain.Finding {
	var flags []domain.Finding
	for _, word := range WeaselWords {
		matches := weaselPatterns[word].FindAllStringIndex(text, -1)
		if len(matches) <= e.settings.WeaselThreshold {
			continue
		}

		first := matches[0]
		flags = append(flags, domain.Finding{
			ID:       ulid.Make().String(),
			Category: domain.CategoryVagueLanguage,
			Severity: domain.SeverityMedium,
			Title:    fmt.Sprintf("Excessive Vague Language: '%s' (%dx)", word, len(matches)),
			Description: fmt.Sprintf("Term '%s' appears %d times. Vague language creates ambiguity and potential for disputes.",
				word, len(matches)),
			Location:       contextWindow(text, first[0], first[1], e.settings.ContextChars),
			Score:          5,
			Source:         domain.SourceRuleEngine,
			Recommendation: fmt.Sprintf("Request specific definitions and thresholds. Replace '%s' with measurable criteria.", word),
		})
	}
	return flags
}

func (e *Engine) checkHighRiskPhrases(text string) []domain.Finding {
	var flags []domain.Finding
	for _, phrase := range HighRiskPhrases {
		for _, m := range highRiskPatterns[phrase].FindAllStringIndex(text, -1) {
			flags = append(flags, domain.Finding{
				ID:       ulid.Make().String(),
				Category: domain.CategoryMissingInfo,
				Severity: domain.SeverityHigh,
				Title:    fmt.Sprintf("Deferred Disclosure: '%s'", phrase),
				Description: "Critical information is deferred or incomplete. This is a major red flag - " +
					"you're signing before having full information.",
				Location:       contextWindow(text, m[0], m[1], e.settings.ContextChars),
				Score:          8,
				Source:         domain.SourceRuleEngine,
				Recommendation: "STOP. Do not sign until all referenced information is provided and reviewed. No post-closing surprises.",
			})
		}
	}
	return flags
}

// checkMissingSchedules emits at most one finding: the first incomplete
// indicator found wins.
func (e *Engine) checkMissingSchedules(text string) []domain.Finding {
	lower := strings.ToLower(text)
	for _, indicator := range missingScheduleIndicators {
		if !strings.Contains(lower, indicator) {
			continue
		}

		window := regexp.MustCompile(fmt.Sprintf(`(?i).{0,%d}%s.{0,%d}`,
			e.settings.ScheduleContextChars, regexp.QuoteMeta(indicator), e.settings.ScheduleContextChars))
		location := window.FindString(text)
		if location == "" {
			continue
		}

		return []domain.Finding{{
			ID:             ulid.Make().String(),
			Category:       domain.CategoryMissingInfo,
			Severity:       domain.SeverityCritical,
			Title:          "Missing or Incomplete Schedules",
			Description:    fmt.Sprintf("Schedules are incomplete: '%s'. Never sign with missing schedules.", indicator),
			Location:       location,
			Score:          10,
			Source:         domain.SourceRuleEngine,
			Recommendation: "Require all schedules to be completed and attached before signing. Missing schedules = unknown liabilities.",
		}}
	}
	return nil
}

func (e *Engine) checkAuditDates(text string) []domain.Finding {
	var flags []domain.Finding
	cutoff := e.now().Year() - e.settings.MaxAuditAgeYears

	for _, m := range auditDateRe.FindAllStringSubmatchIndex(text, -1) {
		year, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		year = normalizeYear(year)
		if year >= cutoff {
			continue
		}

		flags = append(flags, domain.Finding{
			ID:             ulid.Make().String(),
			Category:       domain.CategoryFinancial,
			Severity:       domain.SeverityHigh,
			Title:          fmt.Sprintf("Outdated Financial Audit (%d)", year),
			Description:    fmt.Sprintf("Most recent audit mentioned is from %d, which is too old to be reliable.", year),
			Location:       contextWindow(text, m[0], m[1], e.settings.ContextChars),
			Score:          7,
			Source:         domain.SourceRuleEngine,
			Recommendation: "Require current audited financials (within 12 months). Outdated audits hide recent problems.",
		})
	}
	return flags
}

// normalizeYear expands a 2-digit year using a 1950 pivot: values above 50 map
// into the 1900s, the rest into the 2000s.
func normalizeYear(year int) int {
	if year >= 100 {
		return year
	}
	if year > 50 {
		return 1900 + year
	}
	return 2000 + year
}

func (e *Engine) checkPaymentRedFlags(text string) []domain.Finding {
	type paymentCheck struct {
		re             *regexp.Regexp
		title          string
		severity       domain.Severity
		score          int
		recommendation string
	}

	checks := []paymentCheck{
		{
			re:             earnoutRe,
			title:          "Undefined Earnout Targets",
			severity:       domain.SeverityCritical,
			score:          10,
			recommendation: "Never accept undefined earnout metrics. Specify exact EBITDA/revenue targets and calculation methods.",
		},
		{
			re:             deferredPaymentRe,
			title:          "Undefined Deferred Payment Terms",
			severity:       domain.SeverityHigh,
			score:          8,
			recommendation: "All deferred payment triggers must be clearly defined at signing.",
		},
	}

	var flags []domain.Finding
	for _, check := range checks {
		for _, m := range check.re.FindAllStringIndex(text, -1) {
			flags = append(flags, domain.Finding{
				ID:             ulid.Make().String(),
				Category:       domain.CategoryFinancial,
				Severity:       check.severity,
				Title:          check.title,
				Description:    "Payment terms are incomplete or subject to future agreement. This creates massive dispute risk.",
				Location:       contextWindow(text, m[0], m[1], e.settings.ContextChars),
				Score:          check.score,
				Source:         domain.SourceRuleEngine,
				Recommendation: check.recommendation,
			})
		}
	}
	return flags
}

func (e *Engine) checkSurvivalPeriods(text string) []domain.Finding {
	var flags []domain.Finding
	for _, m := range survivalRe.FindAllStringSubmatchIndex(text, -1) {
		period, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || period >= e.settings.MinSurvivalMonths {
			continue
		}

		flags = append(flags, domain.Finding{
			ID:       ulid.Make().String(),
			Category: domain.CategoryLiability,
			Severity: domain.SeverityHigh,
			Title:    fmt.Sprintf("Short Survival Period (%d months)", period),
			Description: fmt.Sprintf("Representations survive only %d months. Industry standard is 18-24 months minimum.",
				period),
			Location: contextWindow(text, m[0], m[1], e.settings.ContextChars),
			Score:    7,
			Source:   domain.SourceRuleEngine,
			Recommendation: fmt.Sprintf("Negotiate longer survival period (minimum 18 months). "+
				"%d months is insufficient for most issues to surface.", period),
		})
	}
	return flags
}

func (e *Engine) checkCustomerConcentration(text string) []domain.Finding {
	var flags []domain.Finding
	for _, m := range concentrationRe.FindAllStringSubmatchIndex(text, -1) {
		percentage, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || percentage <= e.settings.ConcentrationFlagPct {
			continue
		}

		severity := domain.SeverityHigh
		score := 7
		if percentage > e.settings.ConcentrationCriticalPct {
			severity = domain.SeverityCritical
			score = 9
		}

		flags = append(flags, domain.Finding{
			ID:       ulid.Make().String(),
			Category: domain.CategoryCustomer,
			Severity: severity,
			Title:    fmt.Sprintf("High Customer Concentration (%d%%)", percentage),
			Description: fmt.Sprintf("Top customers represent %d%% of revenue. Loss of any major customer could be catastrophic.",
				percentage),
			Location:       contextWindow(text, m[0], m[1], e.settings.ContextChars),
			Score:          score,
			Source:         domain.SourceRuleEngine,
			Recommendation: "Require customer retention agreements, escrow protection, or earnout tied to customer retention.",
		})
	}
	return flags
}

// contextWindow extracts up to chars characters on either side of the match
// span, trimmed, with ellipsis markers when the window was cut short. The
// window edges snap outward to rune boundaries so the cut never produces
// invalid UTF-8.
func contextWindow(text string, start, end, chars int) string {
	contextStart := start - chars
	if contextStart < 0 {
		contextStart = 0
	}
	contextEnd := end + chars
	if contextEnd > len(text) {
		contextEnd = len(text)
	}
	for contextStart > 0 && !utf8.RuneStart(text[contextStart]) {
		contextStart--
	}
	for contextEnd < len(text) && !utf8.RuneStart(text[contextEnd]) {
		contextEnd++
	}

	context := strings.TrimSpace(text[contextStart:contextEnd])
	if contextStart > 0 {
		context = "..." + context
	}
	if contextEnd < len(text) {
		context = context + "..."
	}
	return context
}
