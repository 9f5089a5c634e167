package api

import "time"

type Finding struct {
	Id             string `json:"id"`
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	Score          int    `json:"score"`
	Source         string `json:"source"`
	Recommendation string `json:"recommendation,omitempty"`
}

type ReportMetadata struct {
	RuleFlagsCount       int `json:"rule_flags_count"`
	LLMFlagsCount        int `json:"llm_flags_count"`
	DeduplicationRemoved int `json:"deduplication_removed"`
}

type Report struct {
	Id                    string         `json:"id"`
	DocumentName          string         `json:"document_name"`
	AnalyzedAt            time.Time      `json:"analyzed_at"`
	ProcessingTimeSeconds float64        `json:"processing_time_seconds"`
	TotalFlags            int            `json:"total_flags"`
	CriticalCount         int            `json:"critical_count"`
	HighCount             int            `json:"high_count"`
	MediumCount           int            `json:"medium_count"`
	LowCount              int            `json:"low_count"`
	OverallRiskScore      float64        `json:"overall_risk_score"`
	Flags                 []Finding      `json:"flags"`
	Metadata              ReportMetadata `json:"metadata"`
}

type Health struct {
	Status   string          `json:"status"`
	Version  string          `json:"version"`
	Services map[string]bool `json:"services"`
}

type Error struct {
	Error string `json:"error"`
}
