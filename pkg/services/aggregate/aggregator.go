package aggregate

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/deal-radar/pkg/models/domain"
	"github.com/oklog/ulid/v2"
)

// Settings contains the deduplication tuning constants. The defaults are the
// catalog values; neither carries a stated rationale, so they stay adjustable.
type Settings struct {
	// SimilarityThreshold is the word-level Jaccard similarity at or above
	// which two findings in the same category count as duplicates (default: 0.7)
	SimilarityThreshold float64
	// KeyDescriptionChars is how much of the description participates in the
	// comparison key (default: 100)
	KeyDescriptionChars int
}

// DefaultSettings returns the default aggregation configuration.
func DefaultSettings() Settings {
	return Settings{
		SimilarityThreshold: 0.7,
		KeyDescriptionChars: 100,
	}
}

// Aggregator merges the rule and semantic finding streams into a single
// report: deduplicate within categories, order by severity and score, tally
// counts, and compute the severity-weighted overall risk score. It has no
// side effects and never fails; empty inputs produce a zero-valued report.
type Aggregator struct {
	settings Settings
	now      func() time.Time
}

func NewAggregator(settings Settings) *Aggregator {
	return &Aggregator{settings: settings, now: time.Now}
}

// Aggregate builds the final report for one analysis run. Rule findings go
// first in the working list so they win ties against semantic duplicates.
func (a *Aggregator) Aggregate(documentName string, ruleFlags, llmFlags []domain.Finding, processingTime float64) domain.Report {
	all := make([]domain.Finding, 0, len(ruleFlags)+len(llmFlags))
	all = append(all, ruleFlags...)
	all = append(all, llmFlags...)

	deduplicated := a.Deduplicate(all)

	sort.SliceStable(deduplicated, func(i, j int) bool {
		ri, rj := deduplicated[i].Severity.Rank(), deduplicated[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return deduplicated[i].Score > deduplicated[j].Score
	})

	counts := countBySeverity(deduplicated)

	return domain.Report{
		ID:                    ulid.Make().String(),
		DocumentName:          documentName,
		AnalyzedAt:            a.now(),
		ProcessingTimeSeconds: round2(processingTime),
		TotalFlags:            len(deduplicated),
		CriticalCount:         counts[domain.SeverityCritical],
		HighCount:             counts[domain.SeverityHigh],
		MediumCount:           counts[domain.SeverityMedium],
		LowCount:              counts[domain.SeverityLow],
		OverallRiskScore:      riskScore(deduplicated),
		Flags:                 deduplicated,
		Metadata: domain.ReportMetadata{
			RuleFlagsCount:       len(ruleFlags),
			LLMFlagsCount:        len(llmFlags),
			DeduplicationRemoved: len(all) - len(deduplicated),
		},
	}
}

// Deduplicate drops near-duplicate findings within each category while
// preserving the original relative order. The first finding of a category is
// always kept; later ones survive only if they are not similar to any
// already-kept key in that category. Cross-category duplicates are never
// merged: the same issue flagged under two categories stays as two findings.
func (a *Aggregator) Deduplicate(flags []domain.Finding) []domain.Finding {
	if len(flags) == 0 {
		return []domain.Finding{}
	}

	seenByCategory := make(map[domain.Category][]string)
	deduplicated := make([]domain.Finding, 0, len(flags))

	for _, flag := range flags {
		key := comparisonKey(flag, a.settings.KeyDescriptionChars)

		duplicate := false
		for _, seen := range seenByCategory[flag.Category] {
			if jaccard(key, seen) >= a.settings.SimilarityThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		deduplicated = append(deduplicated, flag)
		seenByCategory[flag.Category] = append(seenByCategory[flag.Category], key)
	}

	return deduplicated
}

// comparisonKey is the lowercased title joined with the lowercased head of
// the description. The full location text never participates. Truncation
// counts runes so a multi-byte character is never cut in half.
func comparisonKey(flag domain.Finding, descChars int) string {
	desc := truncateRunes(flag.Description, descChars)
	return strings.ToLower(flag.Title) + "|" + strings.ToLower(desc)
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// jaccard computes word-level set similarity between two comparison keys.
// Empty token sets never match.
func jaccard(key1, key2 string) float64 {
	words1 := tokenSet(key1)
	words2 := tokenSet(key2)

	if len(words1) == 0 || len(words2) == 0 {
		return 0
	}

	overlap := 0
	for word := range words1 {
		if _, ok := words2[word]; ok {
			overlap++
		}
	}
	union := len(words1) + len(words2) - overlap
	if union == 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}

func tokenSet(key string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(key) {
		set[word] = struct{}{}
	}
	return set
}

func countBySeverity(flags []domain.Finding) map[domain.Severity]int {
	counts := map[domain.Severity]int{
		domain.SeverityCritical: 0,
		domain.SeverityHigh:     0,
		domain.SeverityMedium:   0,
		domain.SeverityLow:      0,
	}
	for _, flag := range flags {
		counts[flag.Severity]++
	}
	return counts
}

// riskScore is the severity-weighted average of the individual scores, in
// [0,10]. Weighting by severity means risk is driven by worst-case findings,
// not flag volume.
func riskScore(flags []domain.Finding) float64 {
	if len(flags) == 0 {
		return 0
	}

	weightedSum := 0
	totalWeight := 0
	for _, flag := range flags {
		weight := flag.Severity.Weight()
		weightedSum += flag.Score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return round2(float64(weightedSum) / float64(totalWeight))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
