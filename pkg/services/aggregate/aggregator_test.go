package aggregate

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/de-tools/deal-radar/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator() *Aggregator {
	a := NewAggregator(DefaultSettings())
	a.now = func() time.Time {
		return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	}
	return a
}

func TestAggregate_ZeroFindings(t *testing.T) {
	a := newTestAggregator()

	report := a.Aggregate("empty.pdf", nil, nil, 1.234)

	assert.Equal(t, 0, report.TotalFlags)
	assert.Equal(t, 0, report.CriticalCount)
	assert.Equal(t, 0, report.HighCount)
	assert.Equal(t, 0, report.MediumCount)
	assert.Equal(t, 0, report.LowCount)
	assert.Equal(t, 0.0, report.OverallRiskScore)
	assert.Empty(t, report.Flags)
	assert.Equal(t, 1.23, report.ProcessingTimeSeconds)
	assert.NotEmpty(t, report.ID)
}

func TestAggregate_RiskScoreIsSeverityWeighted(t *testing.T) {
	a := newTestAggregator()

	// (10*10 + 1*1 + 1*1) / (10+1+1) = 102/12 = 8.5
	flags := []domain.Finding{
		{Category: domain.CategoryFinancial, Severity: domain.SeverityCritical, Score: 10, Title: "Undefined Earnout Targets"},
		{Category: domain.CategoryLegal, Severity: domain.SeverityLow, Score: 1, Title: "Boilerplate notice clause"},
		{Category: domain.CategoryOperational, Severity: domain.SeverityLow, Score: 1, Title: "Minor formatting inconsistency"},
	}

	report := a.Aggregate("contract.pdf", flags, nil, 0)

	assert.Equal(t, 8.5, report.OverallRiskScore)
	assert.Equal(t, 1, report.CriticalCount)
	assert.Equal(t, 2, report.LowCount)
	assert.Equal(t, 3, report.TotalFlags)
}

func TestAggregate_OrderingBySeverityThenScore(t *testing.T) {
	a := newTestAggregator()

	flags := []domain.Finding{
		{Category: domain.CategoryLegal, Severity: domain.SeverityLow, Score: 3, Title: "Notice period ambiguity"},
		{Category: domain.CategoryFinancial, Severity: domain.SeverityCritical, Score: 9, Title: "Unbounded indemnity exposure"},
		{Category: domain.CategoryLiability, Severity: domain.SeverityHigh, Score: 6, Title: "Short survival period"},
		{Category: domain.CategoryCustomer, Severity: domain.SeverityCritical, Score: 5, Title: "Revenue concentration"},
	}

	report := a.Aggregate("contract.pdf", flags, nil, 0)

	require.Len(t, report.Flags, 4)
	assert.Equal(t, domain.SeverityCritical, report.Flags[0].Severity)
	assert.Equal(t, 9, report.Flags[0].Score)
	assert.Equal(t, domain.SeverityCritical, report.Flags[1].Severity)
	assert.Equal(t, 5, report.Flags[1].Score)
	assert.Equal(t, domain.SeverityHigh, report.Flags[2].Severity)
	assert.Equal(t, domain.SeverityLow, report.Flags[3].Severity)
}

func TestDeduplicate_IdenticalFindingsInCategory(t *testing.T) {
	a := newTestAggregator()

	first := domain.Finding{
		ID:          "a",
		Category:    domain.CategoryFinancial,
		Severity:    domain.SeverityCritical,
		Title:       "Undefined Earnout Targets",
		Description: "Payment terms are incomplete or subject to future agreement. This creates massive dispute risk.",
	}
	second := first
	second.ID = "b"
	second.Source = domain.SourceLLMAnalyzer

	result := a.Deduplicate([]domain.Finding{first, second})

	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].ID, "the earlier finding wins")
}

func TestDeduplicate_CrossCategoryDuplicatesBothSurvive(t *testing.T) {
	a := newTestAggregator()

	first := domain.Finding{
		ID:          "a",
		Category:    domain.CategoryFinancial,
		Title:       "Undefined Earnout Targets",
		Description: "Payment terms are incomplete.",
	}
	second := first
	second.ID = "b"
	second.Category = domain.CategoryLegal

	result := a.Deduplicate([]domain.Finding{first, second})

	assert.Len(t, result, 2)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	a := newTestAggregator()

	flags := []domain.Finding{
		{ID: "a", Category: domain.CategoryFinancial, Title: "Undefined Earnout Targets", Description: "Payment terms are incomplete."},
		{ID: "b", Category: domain.CategoryFinancial, Title: "Undefined Earnout Targets", Description: "Payment terms are incomplete."},
		{ID: "c", Category: domain.CategoryFinancial, Title: "Stale audit opinion", Description: "The most recent audit predates the lookback window."},
		{ID: "d", Category: domain.CategoryCustomer, Title: "Revenue concentration", Description: "Top customers dominate revenue."},
	}

	once := a.Deduplicate(flags)
	twice := a.Deduplicate(once)

	assert.Equal(t, once, twice)
}

func TestDeduplicate_EmptyInput(t *testing.T) {
	a := newTestAggregator()
	assert.Empty(t, a.Deduplicate(nil))
}

func TestJaccard_ThresholdBoundary(t *testing.T) {
	// 8 and 9 tokens with 7 shared: 7/10 = 0.70 exactly
	atBoundary := jaccard("a b c d e f g h", "a b c d e f g x y")
	assert.InDelta(t, 0.7, atBoundary, 1e-9)
	assert.GreaterOrEqual(t, atBoundary, 0.7)

	// 11 and 11 tokens with 9 shared: 9/13 ~= 0.692
	below := jaccard(
		"a b c d e f g h i j k",
		"a b c d e f g h i x y",
	)
	assert.Less(t, below, 0.7)
}

func TestJaccard_EmptyTokenSetsNeverMatch(t *testing.T) {
	assert.Equal(t, 0.0, jaccard("", ""))
	assert.Equal(t, 0.0, jaccard("", "a b c"))
}

func TestDeduplicate_NearDuplicateTitlesDropSecond(t *testing.T) {
	a := newTestAggregator()

	// Keys share 6 of 8 tokens (0.75, above the 0.7 threshold).
	flags := []domain.Finding{
		{ID: "a", Category: domain.CategoryFinancial, Title: "alpha beta gamma delta epsilon zeta eta"},
		{ID: "b", Category: domain.CategoryFinancial, Title: "alpha beta gamma delta epsilon zeta theta"},
	}

	result := a.Deduplicate(flags)
	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].ID)
}

func TestDeduplicate_DissimilarTitlesBothSurvive(t *testing.T) {
	a := newTestAggregator()

	// Keys share 3 of 11 tokens (0.27, well below the threshold).
	flags := []domain.Finding{
		{ID: "a", Category: domain.CategoryFinancial, Title: "alpha beta gamma delta epsilon zeta eta"},
		{ID: "b", Category: domain.CategoryFinancial, Title: "alpha beta gamma kappa lambda mu nu"},
	}

	result := a.Deduplicate(flags)
	assert.Len(t, result, 2)
}

func TestComparisonKey_TruncatesDescription(t *testing.T) {
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	f := domain.Finding{Title: "Title", Description: string(long)}

	key := comparisonKey(f, 100)
	assert.Equal(t, len("title|")+100, len(key))
}

func TestComparisonKey_TruncationKeepsRunesIntact(t *testing.T) {
	f := domain.Finding{
		Title:       "Titel",
		Description: strings.Repeat("Gewährleistungsausschluss ", 10),
	}

	key := comparisonKey(f, 100)

	assert.True(t, utf8.ValidString(key))
	assert.Equal(t, len("titel|")+100, utf8.RuneCountInString(key))
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{9.1, "EXTREME RISK"},
		{8.0, "EXTREME RISK"},
		{6.5, "HIGH RISK"},
		{4.0, "MODERATE RISK"},
		{2.2, "LOW RISK"},
		{0.0, "MINIMAL RISK"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, RiskLevel(tc.score), "score %v", tc.score)
	}
}

func TestSummary_ContainsCountsAndTopConcerns(t *testing.T) {
	a := newTestAggregator()

	flags := []domain.Finding{
		{Category: domain.CategoryFinancial, Severity: domain.SeverityCritical, Score: 10, Title: "Undefined Earnout Targets", Description: "Payment terms are incomplete."},
		{Category: domain.CategoryLiability, Severity: domain.SeverityHigh, Score: 7, Title: "Short Survival Period (6 months)", Description: "Representations survive only 6 months."},
	}
	report := a.Aggregate("contract.pdf", flags, nil, 2.5)

	summary := Summary(report)

	assert.Contains(t, summary, "contract.pdf")
	assert.Contains(t, summary, "CRITICAL: 1")
	assert.Contains(t, summary, "HIGH: 1")
	assert.Contains(t, summary, "TOP CONCERNS:")
	assert.Contains(t, summary, "Undefined Earnout Targets")
}

func TestAggregate_MetadataTracksDeduplication(t *testing.T) {
	a := newTestAggregator()

	ruleFlags := []domain.Finding{
		{ID: "a", Category: domain.CategoryFinancial, Title: "Undefined Earnout Targets", Description: "Payment terms are incomplete."},
	}
	llmFlags := []domain.Finding{
		{ID: "b", Category: domain.CategoryFinancial, Title: "Undefined Earnout Targets", Description: "Payment terms are incomplete."},
	}

	report := a.Aggregate("contract.pdf", ruleFlags, llmFlags, 0)

	assert.Equal(t, 1, report.Metadata.RuleFlagsCount)
	assert.Equal(t, 1, report.Metadata.LLMFlagsCount)
	assert.Equal(t, 1, report.Metadata.DeduplicationRemoved)
	assert.Equal(t, 1, report.TotalFlags)
	assert.Equal(t, domain.Source(""), report.Flags[0].Source)
	assert.Equal(t, "a", report.Flags[0].ID, "rule findings merge ahead of semantic findings")
}
