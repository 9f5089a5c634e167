package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/deal-radar/pkg/models/domain"
	storemodels "github.com/de-tools/deal-radar/pkg/models/store"
	"github.com/de-tools/deal-radar/pkg/store/duckdb"
)

// ErrNotFound signals an absent report; callers map it to their own absence
// semantics (the HTTP layer returns 404).
var ErrNotFound = errors.New("report not found")

// Store persists and loads analysis reports in DuckDB.
type Store interface {
	Save(ctx context.Context, report domain.Report) error
	Get(ctx context.Context, id string) (*domain.Report, error)
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{db: db}, nil
}

func (s *reportStore) Save(ctx context.Context, report domain.Report) error {
	return duckdb.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.insertReport(ctx, tx, report)
	})
}

func (s *reportStore) insertReport(ctx context.Context, tx *sql.Tx, report domain.Report) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO reports (
			id, document_name, analyzed_at, processing_seconds,
			total_flags, critical_count, high_count, medium_count, low_count,
			overall_risk_score, rule_flags_count, llm_flags_count, dedup_removed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.DocumentName,
		report.AnalyzedAt,
		report.ProcessingTimeSeconds,
		report.TotalFlags,
		report.CriticalCount,
		report.HighCount,
		report.MediumCount,
		report.LowCount,
		report.OverallRiskScore,
		report.Metadata.RuleFlagsCount,
		report.Metadata.LLMFlagsCount,
		report.Metadata.DeduplicationRemoved,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_findings (
			id, report_id, position, category, severity, title,
			description, location, score, source, recommendation
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare findings statement: %w", err)
	}
	defer stmt.Close()

	for position, flag := range report.Flags {
		_, err = stmt.ExecContext(ctx,
			flag.ID,
			report.ID,
			position,
			string(flag.Category),
			string(flag.Severity),
			flag.Title,
			flag.Description,
			flag.Location,
			flag.Score,
			string(flag.Source),
			flag.Recommendation,
		)
		if err != nil {
			return fmt.Errorf("insert finding %s: %w", flag.ID, err)
		}
	}

	return nil
}

func (s *reportStore) Get(ctx context.Context, id string) (*domain.Report, error) {
	var rec storemodels.ReportRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_name, analyzed_at, processing_seconds,
			total_flags, critical_count, high_count, medium_count, low_count,
			overall_risk_score, rule_flags_count, llm_flags_count, dedup_removed
		FROM reports WHERE id = ?`, id).Scan(
		&rec.ID,
		&rec.DocumentName,
		&rec.AnalyzedAt,
		&rec.ProcessingSeconds,
		&rec.TotalFlags,
		&rec.CriticalCount,
		&rec.HighCount,
		&rec.MediumCount,
		&rec.LowCount,
		&rec.OverallRiskScore,
		&rec.RuleFlagsCount,
		&rec.LLMFlagsCount,
		&rec.DedupRemoved,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, severity, title, description, location,
			score, source, recommendation
		FROM report_findings WHERE report_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	var flags []domain.Finding
	for rows.Next() {
		var f storemodels.FindingRecord
		err = rows.Scan(
			&f.ID,
			&f.Category,
			&f.Severity,
			&f.Title,
			&f.Description,
			&f.Location,
			&f.Score,
			&f.Source,
			&f.Recommendation,
		)
		if err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		flags = append(flags, domain.Finding{
			ID:             f.ID,
			Category:       domain.Category(f.Category),
			Severity:       domain.Severity(f.Severity),
			Title:          f.Title,
			Description:    f.Description,
			Location:       f.Location,
			Score:          f.Score,
			Source:         domain.Source(f.Source),
			Recommendation: f.Recommendation,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}

	return &domain.Report{
		ID:                    rec.ID,
		DocumentName:          rec.DocumentName,
		AnalyzedAt:            rec.AnalyzedAt,
		ProcessingTimeSeconds: rec.ProcessingSeconds,
		TotalFlags:            rec.TotalFlags,
		CriticalCount:         rec.CriticalCount,
		HighCount:             rec.HighCount,
		MediumCount:           rec.MediumCount,
		LowCount:              rec.LowCount,
		OverallRiskScore:      rec.OverallRiskScore,
		Flags:                 flags,
		Metadata: domain.ReportMetadata{
			RuleFlagsCount:       rec.RuleFlagsCount,
			LLMFlagsCount:        rec.LLMFlagsCount,
			DeduplicationRemoved: rec.DedupRemoved,
		},
	}, nil
}
