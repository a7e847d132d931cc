// Package trends retrieves search-trend signals and normalises them into
// ResultRecords. Upstream failures never reach the caller: trending searches and
// business trends degrade to static fallback payloads, the other lookups to an
// empty list.
package trends

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trendprobe/internal/catalog"
	"trendprobe/internal/classifier"
	"trendprobe/internal/crawler"
	"trendprobe/internal/metrics"
	"trendprobe/internal/models"
	"trendprobe/internal/pacing"
)

const (
	DefaultLimit     = 10
	DefaultTimeframe = "today 3-m"
)

const (
	interestWindow     = 4
	interestMultiplier = 1000
	trendingMultiplier = 2000
	relatedMultiplier  = 100
	relatedLimit       = 5
	rankStep           = 5

	businessTimeframe = "today 1-m"
	businessRegion    = "US"
	businessLimit     = 10

	sourceName        = "trends"
	sourceTrending    = "Google Trends - Trending Searches"
	sourceInterest    = "Google Trends - Interest Over Time"
	sourceRelated     = "Google Trends - Related Queries"
	defaultExploreURL = "https://trends.google.com/trends/explore"
)

// BusinessKeywords are the terms behind FetchBusinessTrends.
var BusinessKeywords = []string{"AI marketing", "digital transformation", "customer experience"}

// Config is fixed for the lifetime of a Service.
type Config struct {
	DefaultRegion string
	ExploreURL    string
	Timeout       time.Duration
	TrendingDelay pacing.Delay
	QueryDelay    pacing.Delay
	BusinessDelay pacing.Delay
}

type Service struct {
	source  Source
	catalog *catalog.Catalog
	cfg     Config
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(source Source, cat *catalog.Catalog, cfg Config, log zerolog.Logger) *Service {
	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = "US"
	}
	if cfg.ExploreURL == "" {
		cfg.ExploreURL = defaultExploreURL
	}
	return &Service{
		source:  source,
		catalog: cat,
		cfg:     cfg,
		log:     log.With().Str("component", "trends").Logger(),
		now:     time.Now,
	}
}

// RegionVariants lists the spellings tried for a region, in order, without repeats.
func RegionVariants(region string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range []string{strings.ToLower(strings.TrimSpace(region)), "us", "united_states"} {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// RankScore is the rank-decayed score: 100 for the first result, minus 5 per rank,
// never below 0.
func RankScore(rank int) int {
	return models.ClampScore(100 - rankStep*rank)
}

// TrailingMean is the integer part of the mean of the last window observations.
func TrailingMean(series []int, window int) int {
	if len(series) == 0 || window <= 0 {
		return 0
	}
	if len(series) > window {
		series = series[len(series)-window:]
	}
	sum := 0
	for _, v := range series {
		sum += v
	}
	return sum / len(series)
}

// FetchTrending returns up to limit trending searches for region. The trending
// document is fetched once and each region spelling is looked up in it. When
// every spelling is rejected, or the upstream is unreachable, it returns the
// static trending fallback instead.
func (s *Service) FetchTrending(ctx context.Context, region string, limit int) []models.ResultRecord {
	if strings.TrimSpace(region) == "" {
		region = s.cfg.DefaultRegion
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	log := s.log.With().Str("region", region).Int("limit", limit).Logger()

	if err := s.cfg.TrendingDelay.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("cancelled before trending request")
		return s.trendingFallback()
	}

	start := time.Now()
	cctx, cancel := s.withTimeout(ctx)
	byRegion, err := s.source.TrendingSearches(cctx)
	cancel()
	metrics.ObserveUpstream(sourceName, "trending", time.Since(start).Seconds(), err)
	if err != nil {
		log.Warn().Err(err).Msg("trending searches failed")
		return s.trendingFallback()
	}

	var searches []string
	for _, variant := range RegionVariants(region) {
		if searches, err = regionListing(byRegion, variant); err == nil {
			break
		}
		log.Debug().Err(err).Str("variant", variant).Msg("region spelling rejected")
	}
	if err != nil {
		log.Warn().Err(err).Msg("no trending listing for region")
		return s.trendingFallback()
	}
	if len(searches) == 0 {
		log.Warn().Msg("trending searches came back empty")
		return s.trendingFallback()
	}

	if len(searches) > limit {
		searches = searches[:limit]
	}
	fetchedAt := s.timestamp()
	out := make([]models.ResultRecord, 0, len(searches))
	for i, title := range searches {
		score := RankScore(i)
		out = append(out, models.ResultRecord{
			ID:         fmt.Sprintf("google-trending-%d", i),
			Platform:   models.PlatformGoogle,
			Title:      title,
			Summary:    "Trending search in " + region,
			URL:        s.exploreURL(title, region),
			Score:      score,
			FetchedAt:  fetchedAt,
			Engagement: score * trendingMultiplier,
			Source:     sourceTrending,
			Keywords:   classifier.Keywords(title),
		})
	}
	return out
}

// FetchInterestOverTime scores each keyword by its trailing-window mean. Keywords
// missing from the response or with a zero score are left out.
func (s *Service) FetchInterestOverTime(ctx context.Context, keywords []string, timeframe, region string) []models.ResultRecord {
	out := []models.ResultRecord{}
	keywords = cleanKeywords(keywords)
	if len(keywords) == 0 {
		return out
	}
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	if strings.TrimSpace(region) == "" {
		region = s.cfg.DefaultRegion
	}
	log := s.log.With().Strs("keywords", keywords).Str("timeframe", timeframe).Str("region", region).Logger()

	if err := s.cfg.QueryDelay.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("cancelled before interest request")
		metrics.FallbacksServedTotal.WithLabelValues("interest").Inc()
		return out
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	series, err := s.source.InterestOverTime(cctx, keywords, timeframe, region)
	metrics.ObserveUpstream(sourceName, "interest", time.Since(start).Seconds(), err)
	if err != nil {
		log.Warn().Err(err).Msg("interest over time failed")
		metrics.FallbacksServedTotal.WithLabelValues("interest").Inc()
		return out
	}

	fetchedAt := s.timestamp()
	for i, kw := range keywords {
		points, ok := series[kw]
		if !ok {
			continue
		}
		score := models.ClampScore(TrailingMean(points, interestWindow))
		if score == 0 {
			continue
		}
		out = append(out, models.ResultRecord{
			ID:         fmt.Sprintf("google-interest-%d", i),
			Platform:   models.PlatformGoogle,
			Title:      kw,
			Summary:    fmt.Sprintf("Search interest: %d/100 - %s", score, timeframe),
			URL:        s.exploreURL(kw, region),
			Score:      score,
			FetchedAt:  fetchedAt,
			Engagement: score * interestMultiplier,
			Source:     sourceInterest,
			Keywords:   classifier.Keywords(kw),
		})
	}
	return out
}

// FetchRelatedQueries returns the five best "top" related queries for keyword.
func (s *Service) FetchRelatedQueries(ctx context.Context, keyword, region string) []models.ResultRecord {
	out := []models.ResultRecord{}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return out
	}
	if strings.TrimSpace(region) == "" {
		region = s.cfg.DefaultRegion
	}
	log := s.log.With().Str("keyword", keyword).Str("region", region).Logger()

	if err := s.cfg.QueryDelay.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("cancelled before related request")
		metrics.FallbacksServedTotal.WithLabelValues("related").Inc()
		return out
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	queries, err := s.source.RelatedQueries(cctx, keyword, DefaultTimeframe, region)
	metrics.ObserveUpstream(sourceName, "related", time.Since(start).Seconds(), err)
	if err != nil {
		log.Warn().Err(err).Msg("related queries failed")
		metrics.FallbacksServedTotal.WithLabelValues("related").Inc()
		return out
	}

	if len(queries) > relatedLimit {
		queries = queries[:relatedLimit]
	}
	fetchedAt := s.timestamp()
	for i, q := range queries {
		out = append(out, models.ResultRecord{
			ID:         fmt.Sprintf("google-related-%d", i),
			Platform:   models.PlatformGoogle,
			Title:      q.Query,
			Summary:    fmt.Sprintf("Related to %q - %d%% interest", keyword, q.Value),
			URL:        s.exploreURL(q.Query, region),
			Score:      models.ClampScore(q.Value),
			FetchedAt:  fetchedAt,
			Engagement: max(q.Value, 0) * relatedMultiplier,
			Source:     sourceRelated,
			Keywords:   classifier.Keywords(q.Query),
		})
	}
	return out
}

// FetchBusinessTrends looks up interest for BusinessKeywords over the last month
// and falls back to the static business payload when nothing comes back.
func (s *Service) FetchBusinessTrends(ctx context.Context) []models.ResultRecord {
	if err := s.cfg.BusinessDelay.Wait(ctx); err != nil {
		s.log.Warn().Err(err).Msg("cancelled before business request")
		metrics.FallbacksServedTotal.WithLabelValues("business").Inc()
		return s.catalog.BusinessFallback()
	}
	out := s.FetchInterestOverTime(ctx, BusinessKeywords, businessTimeframe, businessRegion)
	if len(out) == 0 {
		metrics.FallbacksServedTotal.WithLabelValues("business").Inc()
		return s.catalog.BusinessFallback()
	}
	if len(out) > businessLimit {
		out = out[:businessLimit]
	}
	return out
}

// regionListing picks one region spelling out of the trending document. An
// unknown spelling is rejected so the caller can move on to the next variant.
func regionListing(byRegion map[string][]string, variant string) ([]string, error) {
	searches, ok := byRegion[variant]
	if !ok {
		return nil, fmt.Errorf("region %q: %w", variant, crawler.ErrRejectedParameters)
	}
	return searches, nil
}

func (s *Service) trendingFallback() []models.ResultRecord {
	metrics.FallbacksServedTotal.WithLabelValues("trending").Inc()
	return s.catalog.TrendingFallback()
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *Service) exploreURL(query, region string) string {
	return s.cfg.ExploreURL + "?q=" + url.QueryEscape(query) + "&geo=" + url.QueryEscape(region)
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func cleanKeywords(in []string) []string {
	var out []string
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
