package domain

import "time"

// Report is the final result of one document analysis run. It is created once
// by the aggregator and read-only thereafter.
type Report struct {
	ID                    string
	DocumentName          string
	AnalyzedAt            time.Time
	ProcessingTimeSeconds float64

	TotalFlags    int
	CriticalCount int
	HighCount     int
	MediumCount   int
	LowCount      int

	// OverallRiskScore is a severity-weighted average of finding scores in
	// [0,10]; a single CRITICAL finding dominates many LOW ones.
	OverallRiskScore float64

	Flags []Finding

	Metadata ReportMetadata
}

// ReportMetadata carries bookkeeping about the aggregation itself.
type ReportMetadata struct {
	RuleFlagsCount       int
	LLMFlagsCount        int
	DeduplicationRemoved int
}
