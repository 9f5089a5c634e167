package semantic

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/de-tools/deal-radar/pkg/models/domain"
	"github.com/oklog/ulid/v2"
)

const defaultScore = 5

// candidate is the loosely-typed shape the model is asked to return. None of
// the fields are trusted; every value passes through normalization before a
// Finding enters the shared pipeline.
type candidate struct {
	Category       string          `json:"category"`
	Severity       string          `json:"severity"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Quote          string          `json:"quote"`
	Location       string          `json:"location"`
	Score          json.RawMessage `json:"score"`
	Recommendation string          `json:"recommendation"`
}

// parseFindings extracts findings from a raw model response. Accepted shapes:
// a bare JSON array, an object with a "flags" array, or a single object
// (treated as a one-element array), optionally wrapped in markdown fences.
func parseFindings(response string, maxLocationChars int) ([]domain.Finding, error) {
	payload := stripFences(response)

	candidates, err := decodeCandidates(payload)
	if err != nil {
		return nil, err
	}

	flags := make([]domain.Finding, 0, len(candidates))
	for _, c := range candidates {
		flags = append(flags, normalize(c, maxLocationChars))
	}
	return flags, nil
}

func decodeCandidates(payload string) ([]candidate, error) {
	var list []candidate
	if err := json.Unmarshal([]byte(payload), &list); err == nil {
		return list, nil
	}

	var wrapper struct {
		Flags []candidate `json:"flags"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapper); err == nil && wrapper.Flags != nil {
		return wrapper.Flags, nil
	}

	var single candidate
	if err := json.Unmarshal([]byte(payload), &single); err == nil {
		if single.Title == "" && single.Description == "" && single.Category == "" {
			return nil, nil
		}
		return []candidate{single}, nil
	}

	return nil, fmt.Errorf("response is not a finding array, flags object, or single finding")
}

func normalize(c candidate, maxLocationChars int) domain.Finding {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = "Unspecified Issue"
	}

	location := c.Quote
	if location == "" {
		location = c.Location
	}
	if len(location) > maxLocationChars {
		// Rune-count truncation; quoted contract text can carry smart quotes
		// and other multi-byte characters.
		if r := []rune(location); len(r) > maxLocationChars {
			location = string(r[:maxLocationChars])
		}
	}

	return domain.Finding{
		ID:             ulid.Make().String(),
		Category:       domain.ParseCategory(c.Category),
		Severity:       domain.ParseSeverity(c.Severity),
		Title:          title,
		Description:    c.Description,
		Location:       location,
		Score:          domain.ClampScore(parseScore(c.Score)),
		Source:         domain.SourceLLMAnalyzer,
		Recommendation: c.Recommendation,
	}
}

// parseScore tolerates numbers, numeric strings, and garbage; anything
// unparseable falls back to the midpoint.
func parseScore(raw json.RawMessage) int {
	if len(raw) == 0 {
		return defaultScore
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(n)
		}
	}

	return defaultScore
}

// stripFences removes a surrounding markdown code fence; models wrap JSON in
// them despite instructions.
func stripFences(response string) string {
	s := strings.TrimSpace(response)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
