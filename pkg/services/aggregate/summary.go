package aggregate

import (
	"fmt"
	"strings"

	"github.com/de-tools/deal-radar/pkg/models/domain"
)

// RiskLevel maps the numeric overall risk score to a coarse label.
func RiskLevel(score float64) string {
	switch {
	case score >= 8:
		return "EXTREME RISK"
	case score >= 6:
		return "HIGH RISK"
	case score >= 4:
		return "MODERATE RISK"
	case score >= 2:
		return "LOW RISK"
	default:
		return "MINIMAL RISK"
	}
}

// Summary renders a human-readable digest of a report, used by the CLI.
func Summary(r domain.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== CONTRACT RED FLAG ANALYSIS ===\n")
	fmt.Fprintf(&b, "Document: %s\n", r.DocumentName)
	fmt.Fprintf(&b, "Analyzed: %s\n", r.AnalyzedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Processing Time: %.2fs\n\n", r.ProcessingTimeSeconds)

	fmt.Fprintf(&b, "OVERALL RISK: %s (%.2f/10)\n\n", RiskLevel(r.OverallRiskScore), r.OverallRiskScore)

	fmt.Fprintf(&b, "FINDINGS SUMMARY:\n")
	fmt.Fprintf(&b, "- CRITICAL: %d\n", r.CriticalCount)
	fmt.Fprintf(&b, "- HIGH: %d\n", r.HighCount)
	fmt.Fprintf(&b, "- MEDIUM: %d\n", r.MediumCount)
	fmt.Fprintf(&b, "- LOW: %d\n", r.LowCount)
	fmt.Fprintf(&b, "- TOTAL: %d\n", r.TotalFlags)

	if len(r.Flags) > 0 {
		fmt.Fprintf(&b, "\nTOP CONCERNS:\n")
		top := r.Flags
		if len(top) > 5 {
			top = top[:5]
		}
		for i, flag := range top {
			fmt.Fprintf(&b, "\n%d. [%s] %s\n", i+1, flag.Severity, flag.Title)
			desc := flag.Description
			if truncated := truncateRunes(desc, 150); truncated != desc {
				desc = truncated + "..."
			}
			fmt.Fprintf(&b, "   %s\n", desc)
		}
	}

	return b.String()
}
