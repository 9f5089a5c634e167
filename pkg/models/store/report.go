package store

import "time"

// ReportRecord is the flat persistence shape of a report row.
type ReportRecord struct {
	ID                string
	DocumentName      string
	AnalyzedAt        time.Time
	ProcessingSeconds float64
	TotalFlags        int
	CriticalCount     int
	HighCount         int
	MediumCount       int
	LowCount          int
	OverallRiskScore  float64
	RuleFlagsCount    int
	LLMFlagsCount     int
	DedupRemoved      int
}

// FindingRecord is one finding row; Position preserves the report ordering.
type FindingRecord struct {
	ID             string
	ReportID       string
	Position       int
	Category       string
	Severity       string
	Title          string
	Description    string
	Location       string
	Score          int
	Source         string
	Recommendation string
}
