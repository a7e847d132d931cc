package ngram

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"trendprobe/internal/crawler"
	"trendprobe/internal/parser"
)

// Query is one historical-frequency lookup.
type Query struct {
	Term      string
	StartYear int
	EndYear   int
	Smoothing int
}

// Source fetches the raw ngram graph document.
type Source interface {
	Graph(ctx context.Context, q Query) (*crawler.Response, error)
}

// SeriesParser pulls the observation series out of a graph document. It reports
// false instead of failing; a false result only selects the fallback branch.
type SeriesParser interface {
	Parse(body []byte, contentType, term string) (parser.Series, bool)
}

// ParserFunc adapts a function to SeriesParser.
type ParserFunc func(body []byte, contentType, term string) (parser.Series, bool)

func (f ParserFunc) Parse(body []byte, contentType, term string) (parser.Series, bool) {
	return f(body, contentType, term)
}

// DefaultParser extracts the embedded data literal from the graph page.
var DefaultParser SeriesParser = ParserFunc(parser.ExtractNgramSeries)

type GoogleSource struct {
	client  *crawler.HTTPClient
	baseURL string
	corpus  int
}

func NewGoogleSource(client *crawler.HTTPClient, baseURL string, corpus int) *GoogleSource {
	return &GoogleSource{client: client, baseURL: strings.TrimRight(baseURL, "/"), corpus: corpus}
}

func (g *GoogleSource) Graph(ctx context.Context, q Query) (*crawler.Response, error) {
	params := url.Values{
		"content":    {q.Term},
		"year_start": {strconv.Itoa(q.StartYear)},
		"year_end":   {strconv.Itoa(q.EndYear)},
		"corpus":     {strconv.Itoa(g.corpus)},
		"smoothing":  {strconv.Itoa(q.Smoothing)},
	}
	return g.client.Get(ctx, g.baseURL+"/ngrams/graph", params,
		"text/html", "application/xhtml+xml", "text/javascript", "application/javascript")
}
