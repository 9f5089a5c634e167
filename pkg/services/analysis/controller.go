package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/de-tools/deal-radar/pkg/models/domain"
	"github.com/de-tools/deal-radar/pkg/services/aggregate"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoStore is returned by GetReport when the controller was built without a
// report store, as one-shot CLI runs are.
var ErrNoStore = errors.New("no report store configured")

// RuleDetector scans text with the deterministic pattern catalog.
type RuleDetector interface {
	Analyze(text string) []domain.Finding
}

// SemanticDetector runs the model pass. Implementations absorb their own
// failures and return whatever findings they could produce.
type SemanticDetector interface {
	Analyze(ctx context.Context, text string) []domain.Finding
}

// ReportStore persists finished reports.
type ReportStore interface {
	Save(ctx context.Context, report domain.Report) error
	Get(ctx context.Context, id string) (*domain.Report, error)
}

// Options toggle individual detectors for one run.
type Options struct {
	UseRules    bool
	UseSemantic bool
}

// DefaultOptions enables both detectors.
func DefaultOptions() Options {
	return Options{UseRules: true, UseSemantic: true}
}

// Controller orchestrates a single document analysis: both detectors run
// concurrently over the same text, their streams are aggregated, and the
// report is persisted. Persistence failures never abort the run; the report
// has already been computed and is still returned.
type Controller struct {
	rules      RuleDetector
	semantic   SemanticDetector
	aggregator *aggregate.Aggregator
	store      ReportStore
	now        func() time.Time
}

func NewController(rules RuleDetector, semantic SemanticDetector, aggregator *aggregate.Aggregator, store ReportStore) *Controller {
	return &Controller{
		rules:      rules,
		semantic:   semantic,
		aggregator: aggregator,
		store:      store,
		now:        time.Now,
	}
}

// AnalyzeDocument runs the full pipeline over already-extracted text.
func (c *Controller) AnalyzeDocument(ctx context.Context, documentName, text string, opts Options) (domain.Report, error) {
	logger := zerolog.Ctx(ctx)
	start := c.now()

	var ruleFlags, llmFlags []domain.Finding

	// The detectors are independent and read-only over the same text; only
	// the semantic detector serializes internally.
	g, gctx := errgroup.WithContext(ctx)
	if opts.UseRules && c.rules != nil {
		g.Go(func() error {
			ruleFlags = c.rules.Analyze(text)
			return nil
		})
	}
	if opts.UseSemantic && c.semantic != nil {
		g.Go(func() error {
			llmFlags = c.semantic.Analyze(gctx, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Report{}, err
	}

	logger.Info().
		Str("document", documentName).
		Int("rule_flags", len(ruleFlags)).
		Int("llm_flags", len(llmFlags)).
		Msg("detectors finished")

	processingTime := c.now().Sub(start).Seconds()
	report := c.aggregator.Aggregate(documentName, ruleFlags, llmFlags, processingTime)

	if c.store != nil {
		if err := c.store.Save(ctx, report); err != nil {
			logger.Warn().
				Err(err).
				Str("report_id", report.ID).
				Msg("failed to persist report")
		}
	}

	return report, nil
}

// GetReport loads a previously persisted report.
func (c *Controller) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	return c.store.Get(ctx, id)
}
