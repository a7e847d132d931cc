// Package app wires configuration into the retrieval services.
package app

import (
	"strings"

	"github.com/rs/zerolog"

	"trendprobe/internal/catalog"
	"trendprobe/internal/classifier"
	"trendprobe/internal/config"
	"trendprobe/internal/crawler"
	"trendprobe/internal/ngram"
	"trendprobe/internal/pacing"
	"trendprobe/internal/trends"
)

type App struct {
	Trends *trends.Service
	Ngram  *ngram.Service
}

// New builds one HTTP client per upstream and the services on top of them.
func New(cfg config.Config, log zerolog.Logger) *App {
	cat := catalog.Default()

	trendsClient := crawler.NewHTTPClient(cfg.TrendsTimeout, cfg.DialTimeout, cfg.ResponseSizeCap, cfg.UserAgent, cfg.Language)
	ngramClient := crawler.NewHTTPClient(cfg.NgramTimeout, cfg.DialTimeout, cfg.ResponseSizeCap, cfg.UserAgent, cfg.Language)

	trendsSvc := trends.NewService(
		trends.NewGoogleSource(trendsClient, cfg.TrendsBaseURL, cfg.Language, cfg.TZOffset),
		cat,
		trends.Config{
			DefaultRegion: cfg.DefaultRegion,
			ExploreURL:    strings.TrimRight(cfg.TrendsBaseURL, "/") + "/trends/explore",
			Timeout:       cfg.TrendsTimeout,
			TrendingDelay: pacing.Jittered(cfg.TrendingDelayMin, cfg.TrendingDelayMax),
			QueryDelay:    pacing.Jittered(cfg.QueryDelayMin, cfg.QueryDelayMax),
			BusinessDelay: pacing.Jittered(cfg.BusinessDelayMin, cfg.BusinessDelayMax),
		},
		log,
	)

	ngramSvc := ngram.NewService(
		ngram.NewGoogleSource(ngramClient, cfg.NgramBaseURL, cfg.NgramCorpus),
		ngram.DefaultParser,
		classifier.New(cat),
		ngram.Config{
			Delay:   pacing.Fixed(cfg.NgramDelay),
			Timeout: cfg.NgramTimeout,
		},
		log,
	)

	return &App{Trends: trendsSvc, Ngram: ngramSvc}
}
