package semantic

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/de-tools/deal-radar/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFindings_BareArray(t *testing.T) {
	response := `[{
		"category": "financial",
		"severity": "CRITICAL",
		"title": "Undefined earnout formula",
		"description": "The earnout lacks a calculation method.",
		"quote": "earnout to be mutually agreed",
		"score": 9,
		"recommendation": "Define the formula before signing."
	}]`

	flags, err := parseFindings(response, 500)

	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.CategoryFinancial, flags[0].Category)
	assert.Equal(t, domain.SeverityCritical, flags[0].Severity)
	assert.Equal(t, "Undefined earnout formula", flags[0].Title)
	assert.Equal(t, "earnout to be mutually agreed", flags[0].Location)
	assert.Equal(t, 9, flags[0].Score)
	assert.Equal(t, domain.SourceLLMAnalyzer, flags[0].Source)
	assert.NotEmpty(t, flags[0].ID)
}

func TestParseFindings_FlagsObjectWrapper(t *testing.T) {
	response := `{"flags": [{"title": "Issue A", "severity": "HIGH"}, {"title": "Issue B", "severity": "LOW"}]}`

	flags, err := parseFindings(response, 500)

	require.NoError(t, err)
	require.Len(t, flags, 2)
	assert.Equal(t, "Issue A", flags[0].Title)
	assert.Equal(t, domain.SeverityLow, flags[1].Severity)
}

func TestParseFindings_SingleObject(t *testing.T) {
	response := `{"title": "Lone issue", "severity": "MEDIUM", "category": "legal"}`

	flags, err := parseFindings(response, 500)

	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "Lone issue", flags[0].Title)
}

func TestParseFindings_MarkdownFences(t *testing.T) {
	response := "```json\n[{\"title\": \"Fenced finding\"}]\n```"

	flags, err := parseFindings(response, 500)

	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "Fenced finding", flags[0].Title)

	bare := "```\n[]\n```"
	flags, err = parseFindings(bare, 500)
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestParseFindings_EmptyArray(t *testing.T) {
	flags, err := parseFindings("[]", 500)
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestParseFindings_GarbageIsAnError(t *testing.T) {
	_, err := parseFindings("I could not find any red flags in this section.", 500)
	assert.Error(t, err)
}

func TestParseFindings_ScoreClamping(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"above range", `15`, 10},
		{"below range", `0`, 1},
		{"negative", `-3`, 1},
		{"in range", `7`, 7},
		{"float truncates", `7.9`, 7},
		{"numeric string", `"8"`, 8},
		{"garbage string", `"very high"`, 5},
		{"missing", ``, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload := `[{"title": "x"`
			if tc.raw != "" {
				payload += `, "score": ` + tc.raw
			}
			payload += `}]`

			flags, err := parseFindings(payload, 500)
			require.NoError(t, err)
			require.Len(t, flags, 1)
			assert.Equal(t, tc.expected, flags[0].Score)
		})
	}
}

func TestParseFindings_SeverityNormalization(t *testing.T) {
	tests := []struct {
		raw      string
		expected domain.Severity
	}{
		{"CRITICAL", domain.SeverityCritical},
		{"high", domain.SeverityHigh},
		{" Medium ", domain.SeverityMedium},
		{"urgent", domain.SeverityMedium},
		{"", domain.SeverityMedium},
	}

	for _, tc := range tests {
		payload := `[{"title": "x", "severity": "` + tc.raw + `"}]`
		flags, err := parseFindings(payload, 500)
		require.NoError(t, err)
		require.Len(t, flags, 1)
		assert.Equal(t, tc.expected, flags[0].Severity, "severity %q", tc.raw)
	}
}

func TestParseFindings_CategoryFallsBackToOther(t *testing.T) {
	flags, err := parseFindings(`[{"title": "x", "category": "astrology"}]`, 500)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.CategoryOther, flags[0].Category)
}

func TestParseFindings_MissingTitlePlaceholder(t *testing.T) {
	flags, err := parseFindings(`[{"description": "something is off"}]`, 500)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "Unspecified Issue", flags[0].Title)
}

func TestParseFindings_LocationPrefersQuoteAndTruncates(t *testing.T) {
	longQuote := strings.Repeat("q", 600)
	payload := `[{"title": "x", "quote": "` + longQuote + `", "location": "clause 4.2"}]`

	flags, err := parseFindings(payload, 500)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Len(t, flags[0].Location, 500)
	assert.True(t, strings.HasPrefix(flags[0].Location, "qqq"))

	flags, err = parseFindings(`[{"title": "x", "location": "clause 4.2"}]`, 500)
	require.NoError(t, err)
	assert.Equal(t, "clause 4.2", flags[0].Location)
}

func TestParseFindings_LocationTruncationKeepsRunesIntact(t *testing.T) {
	quote := strings.Repeat("§", 600) // 2 bytes per rune
	payload := `[{"title": "x", "quote": "` + quote + `"}]`

	flags, err := parseFindings(payload, 500)

	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.True(t, utf8.ValidString(flags[0].Location))
	assert.Equal(t, 500, utf8.RuneCountInString(flags[0].Location))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `[]`, stripFences("```json\n[]\n```"))
	assert.Equal(t, `[]`, stripFences("```\n[]\n```"))
	assert.Equal(t, `[]`, stripFences("  []  "))
	assert.Equal(t, `{"a": 1}`, stripFences("```json {\"a\": 1} ```"))
}
