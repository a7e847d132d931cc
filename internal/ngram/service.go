// Package ngram looks up the historical usage pattern of a term. Classification
// comes from the curated catalog; the live frequency series only decides whether
// the answer is reported as "success" or "fallback".
package ngram

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trendprobe/internal/classifier"
	"trendprobe/internal/metrics"
	"trendprobe/internal/models"
	"trendprobe/internal/pacing"
)

const (
	DefaultStartYear = 1900
	DefaultEndYear   = 2019
	DefaultSmoothing = 3

	// ContextBatchCap bounds how many terms one trend-context call looks up.
	ContextBatchCap = 5
)

type Config struct {
	Delay   pacing.Delay
	Timeout time.Duration
}

type Service struct {
	source     Source
	parser     SeriesParser
	classifier *classifier.Classifier
	cfg        Config
	log        zerolog.Logger
}

func NewService(source Source, p SeriesParser, cl *classifier.Classifier, cfg Config, log zerolog.Logger) *Service {
	if p == nil {
		p = DefaultParser
	}
	return &Service{
		source:     source,
		parser:     p,
		classifier: cl,
		cfg:        cfg,
		log:        log.With().Str("component", "ngram").Logger(),
	}
}

// FetchHistoricalPattern never fails. Zero years or smoothing take the defaults,
// a reversed year range is swapped.
func (s *Service) FetchHistoricalPattern(ctx context.Context, term string, startYear, endYear, smoothing int) models.HistoricalResult {
	q := Query{
		Term:      classifier.NormalizeTerm(term),
		StartYear: startYear,
		EndYear:   endYear,
		Smoothing: smoothing,
	}
	if q.StartYear == 0 {
		q.StartYear = DefaultStartYear
	}
	if q.EndYear == 0 {
		q.EndYear = DefaultEndYear
	}
	if q.StartYear > q.EndYear {
		q.StartYear, q.EndYear = q.EndYear, q.StartYear
	}
	if q.Smoothing < 0 {
		q.Smoothing = DefaultSmoothing
	}
	log := s.log.With().Str("term", q.Term).Logger()

	if q.Term == "" {
		return s.fallback(q.Term)
	}

	// the delay applies to every call regardless of outcome
	if err := s.cfg.Delay.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("cancelled before ngram request")
		return s.fallback(q.Term)
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	resp, err := s.source.Graph(cctx, q)
	metrics.ObserveUpstream("ngram", "graph", time.Since(start).Seconds(), err)
	if err != nil {
		log.Warn().Err(err).Msg("ngram request failed")
		return s.fallback(q.Term)
	}

	series, ok := s.parser.Parse(resp.Body, resp.ContentType, q.Term)
	if !ok {
		log.Warn().Int("bytes", len(resp.Body)).Msg("ngram data marker missing or unparsable")
		return s.fallback(q.Term)
	}

	log.Debug().Int("points", len(series.Points)).Msg("ngram series parsed")
	return models.HistoricalResult{
		Term:               q.Term,
		Status:             models.StatusSuccess,
		HistoricalAnalysis: s.classifier.Classify(q.Term, true),
		SeriesPoints:       len(series.Points),
	}
}

// SummarizeTrendContext looks up the first ContextBatchCap non-blank terms and
// summarises them by maturity bucket.
func (s *Service) SummarizeTrendContext(ctx context.Context, terms []string) models.TrendContext {
	var batch []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			batch = append(batch, t)
		}
		if len(batch) == ContextBatchCap {
			break
		}
	}

	contexts := make(map[string]models.HistoricalResult, len(batch))
	analyses := make(map[string]models.AnalysisRecord, len(batch))
	var order []string
	for _, t := range batch {
		if _, done := contexts[t]; done {
			continue
		}
		res := s.FetchHistoricalPattern(ctx, t, DefaultStartYear, DefaultEndYear, DefaultSmoothing)
		contexts[t] = res
		analyses[t] = res.HistoricalAnalysis
		order = append(order, t)
	}

	return models.TrendContext{
		AnalyzedTrends:   len(contexts),
		Contexts:         contexts,
		StrategicSummary: classifier.Summarize(order, analyses),
	}
}

// EnhanceTrending attaches historical context to the first ContextBatchCap
// records and passes the rest through. The input slice is left untouched. A
// lookup that ends in an unknown pattern leaves its record as it was, and if ctx
// is done before the batch finishes every record comes back un-enriched.
func (s *Service) EnhanceTrending(ctx context.Context, records []models.ResultRecord) []models.ResultRecord {
	out := make([]models.ResultRecord, len(records))
	copy(out, records)

	n := min(len(out), ContextBatchCap)
	for i := range out[:n] {
		res := s.FetchHistoricalPattern(ctx, out[i].Title, DefaultStartYear, DefaultEndYear, DefaultSmoothing)
		if err := ctx.Err(); err != nil {
			s.log.Warn().Err(err).Int("enriched", i).Msg("historical enrichment abandoned")
			plain := make([]models.ResultRecord, len(records))
			copy(plain, records)
			return plain
		}
		a := res.HistoricalAnalysis
		if a.Pattern == models.PatternUnknown {
			continue
		}
		out[i].Historical = &models.HistoricalContext{
			Pattern:      a.Pattern,
			CurrentPhase: a.CurrentPhase,
			Insight:      a.Insight,
			Peaks:        a.Peaks,
		}
	}
	return out
}

func (s *Service) fallback(term string) models.HistoricalResult {
	metrics.FallbacksServedTotal.WithLabelValues("historical").Inc()
	return models.HistoricalResult{
		Term:               term,
		Status:             models.StatusFallback,
		HistoricalAnalysis: s.classifier.Classify(term, false),
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
