package semantic

import (
	"context"
	"strings"
	"time"

	"github.com/de-tools/deal-radar/pkg/models/domain"
	"github.com/rs/zerolog"
)

const analysisPrompt = `You are an expert M&A attorney reviewing a contract section for red flags.

Analyze the following contract section and identify any red flags related to:
- Vague or undefined terms that create ambiguity
- Missing critical information or deferred disclosures
- Unusual liability limitations or indemnification gaps
- Suspicious payment structures or undefined earnout terms
- Jurisdiction or dispute resolution concerns
- Customer concentration or key person dependencies
- Tax, IP, compliance, or regulatory risks
- Any other material concerns

For EACH red flag you identify, return a JSON object with:
- category: one of [jurisdiction, financial, legal, operational, compliance, vague_language, missing_info, liability, intellectual_property, tax, employee, customer, other]
- severity: one of [CRITICAL, HIGH, MEDIUM, LOW]
- title: brief title (max 80 chars)
- description: explanation of why this is concerning (2-3 sentences)
- quote: exact text from the section that triggered this flag
- score: risk score from 1-10
- recommendation: specific action to take

Return ONLY a JSON array of red flags. If no red flags, return empty array [].

Contract section:
{{TEXT}}

JSON response:`

// Settings contains the chunking and throttling parameters for the semantic
// pass.
type Settings struct {
	// MaxChunkChars bounds the size of a single model request (default: 15000)
	MaxChunkChars int
	// ChunkDelay is the enforced pause between consecutive chunk calls; the
	// upstream model API is rate limited (default: 500ms)
	ChunkDelay time.Duration
	// ChunkTimeout bounds a single model call so a hung upstream cannot stall
	// the whole run (default: 60s)
	ChunkTimeout time.Duration
	// MaxLocationChars truncates quoted context from the model (default: 500)
	MaxLocationChars int
}

// DefaultSettings returns the default semantic analyzer configuration.
func DefaultSettings() Settings {
	return Settings{
		MaxChunkChars:    15000,
		ChunkDelay:       500 * time.Millisecond,
		ChunkTimeout:     60 * time.Second,
		MaxLocationChars: 500,
	}
}

// Analyzer runs the free-form model pass over a document. Chunks are
// processed strictly sequentially with an enforced inter-chunk delay; this
// serialization is deliberate throttling, not a performance concern, and must
// not be parallelized.
type Analyzer struct {
	completer Completer
	settings  Settings
	sleep     func(time.Duration)
}

func NewAnalyzer(completer Completer, settings Settings) *Analyzer {
	return &Analyzer{
		completer: completer,
		settings:  settings,
		sleep:     time.Sleep,
	}
}

// Analyze sends the document to the model chunk by chunk and returns every
// finding that survives normalization. Call and parse failures are absorbed:
// a failed chunk contributes nothing, and a fully failed pass returns an
// empty list so the pipeline degrades to rule-only results.
func (a *Analyzer) Analyze(ctx context.Context, text string) []domain.Finding {
	logger := zerolog.Ctx(ctx)

	chunks := SplitChunks(text, a.settings.MaxChunkChars)
	var flags []domain.Finding

	for i, chunk := range chunks {
		if i > 0 {
			a.sleep(a.settings.ChunkDelay)
		}

		chunkFlags, err := a.analyzeChunk(ctx, chunk)
		if err != nil {
			logger.Warn().
				Err(err).
				Int("chunk", i).
				Int("chunks_total", len(chunks)).
				Msg("semantic analysis failed for chunk")
			continue
		}
		flags = append(flags, chunkFlags...)
	}

	return flags
}

func (a *Analyzer) analyzeChunk(ctx context.Context, chunk string) ([]domain.Finding, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.settings.ChunkTimeout)
	defer cancel()

	response, err := a.completer.Complete(callCtx, strings.Replace(analysisPrompt, "{{TEXT}}", chunk, 1))
	if err != nil {
		return nil, err
	}
	return parseFindings(response, a.settings.MaxLocationChars)
}
