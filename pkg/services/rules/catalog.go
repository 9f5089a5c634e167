package rules

import (
	"fmt"
	"regexp"
)

// Fixed term catalogs for the deterministic checks. Matching is always
// case-insensitive and whole-word.

var OffshoreJurisdictions = []string{
	"Cayman Islands",
	"British Virgin Islands",
	"Bermuda",
	"Isle of Man",
	"Jersey",
	"Guernsey",
	"Cyprus",
	"Luxembourg",
	"Liechtenstein",
	"Panama",
	"Seychelles",
	"Mauritius",
	"Marshall Islands",
	"Belize",
	"Gibraltar",
	"Malta",
}

var WeaselWords = []string{
	"reasonable",
	"material",
	"substantially",
	"approximately",
	"generally",
	"customary",
	"appropriate",
	"satisfactory",
	"promptly",
	"from time to time",
	"best efforts",
	"commercially reasonable",
}

var HighRiskPhrases = []string{
	"to be determined",
	"to be provided",
	"to be agreed",
	"subject to completion",
	"under negotiation",
	"pending review",
	"not yet available",
	"to be disclosed",
}

// missingScheduleIndicators signal that referenced schedules or exhibits are
// not actually attached.
var missingScheduleIndicators = []string{
	"being finalized",
	"to be provided",
	"being compiled",
	"will be attached",
	"to be determined",
}

// escalationKeywords upgrade an offshore-jurisdiction match to CRITICAL when
// they appear in the surrounding context.
var escalationKeywords = []string{
	"governing law",
	"arbitration",
	"dispute resolution",
}

func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(term)))
}

func compileWordPatterns(terms []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(terms))
	for _, term := range terms {
		patterns[term] = wordPattern(term)
	}
	return patterns
}

var (
	jurisdictionPatterns = compileWordPatterns(OffshoreJurisdictions)
	weaselPatterns       = compileWordPatterns(WeaselWords)
	highRiskPatterns     = compileWordPatterns(HighRiskPhrases)

	// audit[ed] followed within 50 characters by a 2- or 4-digit year
	auditDateRe = regexp.MustCompile(`(?i)\baudit(?:ed)?\b[^.]{0,50}?\b((?:19|20)\d{2}|\d{2})\b`)

	// survival/representations clauses with a numeric period
	survivalRe = regexp.MustCompile(`(?i)(?:surviv|representations).*?(\d+)\s*(?:months?|days?)`)

	// "top N customers ... X%"
	concentrationRe = regexp.MustCompile(`(?i)top\s+\d+\s+customers?.*?(\d+)%`)

	earnoutRe         = regexp.MustCompile(`(?is)earnout.*(?:undefined|to be determined|mutually agreed)`)
	deferredPaymentRe = regexp.MustCompile(`(?is)deferred.*(?:performance metrics|to be determined)`)
)
