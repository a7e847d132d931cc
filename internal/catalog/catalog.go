// Package catalog holds the static data the services fall back to: curated
// historical patterns and pre-baked trend payloads. The tables are compiled into
// the binary and never change at runtime; every accessor hands out a copy.
package catalog

import (
	"embed"
	"fmt"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"trendprobe/internal/models"
)

//go:embed data/*.yaml
var assets embed.FS

type fallbackFile struct {
	Trending []models.ResultRecord `yaml:"trending"`
	Business []models.ResultRecord `yaml:"business"`
}

type Catalog struct {
	patterns map[string]models.AnalysisRecord
	trending []models.ResultRecord
	business []models.ResultRecord
}

var (
	defaultCatalog *Catalog
	defaultOnce    sync.Once
)

// Default returns the catalog built from the embedded assets.
// It panics if the assets do not parse, which the package tests guard against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load()
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load parses the embedded YAML assets.
func Load() (*Catalog, error) {
	raw, err := assets.ReadFile("data/patterns.yaml")
	if err != nil {
		return nil, err
	}
	patterns := map[string]models.AnalysisRecord{}
	if err := yaml.Unmarshal(raw, &patterns); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}
	for term, rec := range patterns {
		if !rec.Pattern.Valid() {
			return nil, fmt.Errorf("pattern %q for term %q is not in the closed set", rec.Pattern, term)
		}
	}

	raw, err = assets.ReadFile("data/fallback.yaml")
	if err != nil {
		return nil, err
	}
	var fb fallbackFile
	if err := yaml.Unmarshal(raw, &fb); err != nil {
		return nil, fmt.Errorf("parse fallback: %w", err)
	}
	return &Catalog{patterns: patterns, trending: fb.Trending, business: fb.Business}, nil
}

// Pattern looks up the curated analysis for an already normalised term.
func (c *Catalog) Pattern(term string) (models.AnalysisRecord, bool) {
	rec, ok := c.patterns[term]
	if !ok {
		return models.AnalysisRecord{}, false
	}
	rec.Term = term
	rec.Peaks = slices.Clone(rec.Peaks)
	if rec.Peaks == nil {
		rec.Peaks = []int{}
	}
	return rec, true
}

// Terms lists the curated terms in alphabetical order.
func (c *Catalog) Terms() []string {
	out := make([]string, 0, len(c.patterns))
	for t := range c.patterns {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) TrendingFallback() []models.ResultRecord { return cloneRecords(c.trending) }

func (c *Catalog) BusinessFallback() []models.ResultRecord { return cloneRecords(c.business) }

func cloneRecords(in []models.ResultRecord) []models.ResultRecord {
	out := make([]models.ResultRecord, len(in))
	for i, r := range in {
		r.Keywords = slices.Clone(r.Keywords)
		out[i] = r
	}
	return out
}
