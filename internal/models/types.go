
package models

// Pattern is the historical shape of a term's usage.
type Pattern string

const (
	PatternCyclical     Pattern = "cyclical"
	PatternMatureGrowth Pattern = "mature_growth"
	PatternExponential  Pattern = "exponential"
	PatternSteadyGrowth Pattern = "steady_growth"
	PatternEmerging     Pattern = "emerging"
	PatternUnknown      Pattern = "unknown"
)

// Valid reports whether p belongs to the closed pattern set.
func (p Pattern) Valid() bool {
	switch p {
	case PatternCyclical, PatternMatureGrowth, PatternExponential,
		PatternSteadyGrowth, PatternEmerging, PatternUnknown:
		return true
	}
	return false
}

const (
	PhaseAnalysisNeeded = "analysis_needed"

	StatusSuccess  = "success"
	StatusFallback = "fallback"

	PlatformGoogle = "google"
)

// ResultRecord is the normalized unit every retrieval returns.
type ResultRecord struct {
	ID         string   `json:"id" yaml:"id"`
	Platform   string   `json:"platform" yaml:"platform"`
	Title      string   `json:"title" yaml:"title"`
	Summary    string   `json:"summary" yaml:"summary"`
	URL        string   `json:"url" yaml:"url"`
	Score      int      `json:"score" yaml:"score"`
	FetchedAt  string   `json:"fetchedAt,omitempty" yaml:"fetchedAt,omitempty"`
	Engagement int      `json:"engagement" yaml:"engagement"`
	Source     string   `json:"source" yaml:"source"`
	Keywords   []string `json:"keywords" yaml:"keywords"`

	Historical *HistoricalContext `json:"historical,omitempty" yaml:"-"`
}

// HistoricalContext is attached to trending records that went through
// historical enrichment.
type HistoricalContext struct {
	Pattern      Pattern `json:"pattern"`
	CurrentPhase string  `json:"currentPhase"`
	Insight      string  `json:"insight"`
	Peaks        []int   `json:"peaks"`
}

type AnalysisRecord struct {
	Term         string  `json:"term,omitempty" yaml:"-"`
	Pattern      Pattern `json:"pattern" yaml:"pattern"`
	Peaks        []int   `json:"peaks" yaml:"peaks"`
	CurrentPhase string  `json:"current_phase" yaml:"current_phase"`
	Insight      string  `json:"insight" yaml:"insight"`
}

// HistoricalResult wraps an AnalysisRecord with how it was obtained.
type HistoricalResult struct {
	Term               string         `json:"term"`
	Status             string         `json:"status"`
	HistoricalAnalysis AnalysisRecord `json:"historical_analysis"`
	SeriesPoints       int            `json:"series_points"`
}

type TrendContext struct {
	AnalyzedTrends   int                         `json:"analyzed_trends"`
	Contexts         map[string]HistoricalResult `json:"contexts"`
	StrategicSummary string                      `json:"strategic_summary"`
}

// ClampScore bounds a score to [0,100].
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
