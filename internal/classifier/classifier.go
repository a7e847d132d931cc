
package classifier

import (
	"fmt"
	"strings"
	"unicode"

	"trendprobe/internal/catalog"
	"trendprobe/internal/models"
)

// Bucket groups historical patterns for the strategic summary.
type Bucket string

const (
	BucketMature   Bucket = "mature"
	BucketEmerging Bucket = "emerging"
	BucketCyclical Bucket = "cyclical"
	BucketNone     Bucket = ""
)

const GenericSummary = "Mixed trend maturity - strategic timing analysis recommended"

type Classifier struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Classifier { return &Classifier{catalog: c} }

// NormalizeTerm trims and lowercases a term the way the curated table is keyed.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Classify returns the curated analysis for term when there is one. Otherwise it
// returns a placeholder: "emerging" when live data was parsed, "unknown" when the
// upstream gave us nothing to work with.
func (c *Classifier) Classify(term string, parsed bool) models.AnalysisRecord {
	term = NormalizeTerm(term)
	if rec, ok := c.catalog.Pattern(term); ok {
		return rec
	}
	if parsed {
		return models.AnalysisRecord{
			Term:         term,
			Pattern:      models.PatternEmerging,
			Peaks:        []int{},
			CurrentPhase: models.PhaseAnalysisNeeded,
			Insight:      fmt.Sprintf("Historical context analysis available for %q - manual verification recommended", term),
		}
	}
	return models.AnalysisRecord{
		Term:         term,
		Pattern:      models.PatternUnknown,
		Peaks:        []int{},
		CurrentPhase: models.PhaseAnalysisNeeded,
		Insight:      fmt.Sprintf("Historical context for %q requires manual research - check Google Books Ngram Viewer", term),
	}
}

// BucketOf places an analysis in at most one bucket. Mature wins over emerging,
// emerging over cyclical.
func BucketOf(a models.AnalysisRecord) Bucket {
	switch {
	case a.Pattern == models.PatternMatureGrowth || a.CurrentPhase == "plateau" || a.CurrentPhase == "mainstream":
		return BucketMature
	case a.Pattern == models.PatternEmerging || a.CurrentPhase == "early" || a.CurrentPhase == "emerging":
		return BucketEmerging
	case a.Pattern == models.PatternCyclical:
		return BucketCyclical
	}
	return BucketNone
}

// Summarize builds one line per non-empty bucket, in term order, joined with "; ".
func Summarize(terms []string, analyses map[string]models.AnalysisRecord) string {
	var mature, emerging, cyclical []string
	for _, t := range terms {
		a, ok := analyses[t]
		if !ok {
			continue
		}
		switch BucketOf(a) {
		case BucketMature:
			mature = append(mature, t)
		case BucketEmerging:
			emerging = append(emerging, t)
		case BucketCyclical:
			cyclical = append(cyclical, t)
		}
	}

	var parts []string
	if len(mature) > 0 {
		parts = append(parts, "Mature trends requiring differentiation: "+strings.Join(mature, ", "))
	}
	if len(emerging) > 0 {
		parts = append(parts, "Emerging opportunities for early adoption: "+strings.Join(emerging, ", "))
	}
	if len(cyclical) > 0 {
		parts = append(parts, "Cyclical trends in current wave: "+strings.Join(cyclical, ", "))
	}
	if len(parts) == 0 {
		return GenericSummary
	}
	return strings.Join(parts, "; ")
}

// simple stopword list (extend as needed)
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "a": {}, "for": {}, "is": {}, "on": {}, "with": {}, "as": {},
	"by": {}, "at": {}, "from": {}, "that": {}, "this": {}, "it": {}, "an": {}, "be": {}, "or": {}, "are": {}, "was": {},
	"will": {}, "has": {}, "have": {}, "had": {}, "but": {}, "not": {}, "your": {}, "you": {}, "we": {}, "our": {},
}

// Keywords splits a title into lowercase tokens in their original order, dropping
// stopwords and repeats. A title made only of stopwords keeps its raw tokens.
func Keywords(title string) []string {
	token := func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) }
	words := strings.FieldsFunc(strings.ToLower(title), token)

	seen := map[string]struct{}{}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if len(out) == 0 && len(words) > 0 {
		return words
	}
	return out
}
