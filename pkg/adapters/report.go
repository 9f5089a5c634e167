package adapters

import (
	"github.com/de-tools/deal-radar/pkg/models/api"
	"github.com/de-tools/deal-radar/pkg/models/domain"
)

func MapFindingDomainToApi(f domain.Finding) api.Finding {
	return api.Finding{
		Id:             f.ID,
		Category:       string(f.Category),
		Severity:       string(f.Severity),
		Title:          f.Title,
		Description:    f.Description,
		Location:       f.Location,
		Score:          f.Score,
		Source:         string(f.Source),
		Recommendation: f.Recommendation,
	}
}

func MapReportDomainToApi(r domain.Report) api.Report {
	res := api.Report{
		Id:                    r.ID,
		DocumentName:          r.DocumentName,
		AnalyzedAt:            r.AnalyzedAt,
		ProcessingTimeSeconds: r.ProcessingTimeSeconds,
		TotalFlags:            r.TotalFlags,
		CriticalCount:         r.CriticalCount,
		HighCount:             r.HighCount,
		MediumCount:           r.MediumCount,
		LowCount:              r.LowCount,
		OverallRiskScore:      r.OverallRiskScore,
		Flags:                 make([]api.Finding, 0, len(r.Flags)),
		Metadata: api.ReportMetadata{
			RuleFlagsCount:       r.Metadata.RuleFlagsCount,
			LLMFlagsCount:        r.Metadata.LLMFlagsCount,
			DeduplicationRemoved: r.Metadata.DeduplicationRemoved,
		},
	}
	for _, f := range r.Flags {
		res.Flags = append(res.Flags, MapFindingDomainToApi(f))
	}
	return res
}
