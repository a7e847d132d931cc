package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"trendprobe/internal/crawler"
	"trendprobe/internal/parser"
)

// RankedQuery is one row of a related-queries list.
type RankedQuery struct {
	Query string `json:"query"`
	Value int    `json:"value"`
}

// Source is the search-trends upstream.
type Source interface {
	// TrendingSearches returns today's trending searches keyed by region spelling.
	TrendingSearches(ctx context.Context) (map[string][]string, error)
	// InterestOverTime returns the full observation series, gaps included, of
	// every keyword the response has data for.
	InterestOverTime(ctx context.Context, keywords []string, timeframe, region string) (map[string][]int, error)
	// RelatedQueries returns the "top" related queries for keyword, best first.
	RelatedQueries(ctx context.Context, keyword, timeframe, region string) ([]RankedQuery, error)
}

// GoogleSource talks to the public trends web API.
type GoogleSource struct {
	client   *crawler.HTTPClient
	baseURL  string
	language string
	tz       int
}

func NewGoogleSource(client *crawler.HTTPClient, baseURL, language string, tzOffset int) *GoogleSource {
	return &GoogleSource{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		tz:       tzOffset,
	}
}

var jsonTypes = []string{"application/json", "text/javascript", "application/javascript", "text/plain"}

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Geo     string `json:"geo"`
	Time    string `json:"time"`
}

type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time    string `json:"time"`
			Value   []int  `json:"value"`
			HasData []bool `json:"hasData"`
		} `json:"timelineData"`
	} `json:"default"`
}

type relatedResponse struct {
	Default struct {
		RankedList []struct {
			RankedKeyword []RankedQuery `json:"rankedKeyword"`
		} `json:"rankedList"`
	} `json:"default"`
}

func (g *GoogleSource) TrendingSearches(ctx context.Context) (map[string][]string, error) {
	resp, err := g.client.Get(ctx, g.baseURL+"/trends/hottrends/visualize/internal/data", nil, jsonTypes...)
	if err != nil {
		return nil, err
	}
	var byRegion map[string][]string
	if err := parser.DecodeTrendsJSON(resp.Body, &byRegion); err != nil {
		return nil, err
	}
	return byRegion, nil
}

func (g *GoogleSource) InterestOverTime(ctx context.Context, keywords []string, timeframe, region string) (map[string][]int, error) {
	w, err := g.explore(ctx, keywords, timeframe, region, "TIMESERIES")
	if err != nil {
		return nil, err
	}
	var data multilineResponse
	if err := g.widgetData(ctx, "multiline", w, &data); err != nil {
		return nil, err
	}

	// a keyword is present when its column has data at any point; its series keeps
	// every returned value so the trailing window ends at the latest point
	out := make(map[string][]int, len(keywords))
	for i, kw := range keywords {
		var series []int
		present := false
		for _, point := range data.Default.TimelineData {
			if i >= len(point.Value) {
				continue
			}
			series = append(series, point.Value[i])
			if i >= len(point.HasData) || point.HasData[i] {
				present = true
			}
		}
		if present {
			out[kw] = series
		}
	}
	return out, nil
}

func (g *GoogleSource) RelatedQueries(ctx context.Context, keyword, timeframe, region string) ([]RankedQuery, error) {
	w, err := g.explore(ctx, []string{keyword}, timeframe, region, "RELATED_QUERIES")
	if err != nil {
		return nil, err
	}
	var data relatedResponse
	if err := g.widgetData(ctx, "relatedsearches", w, &data); err != nil {
		return nil, err
	}
	// rankedList[0] is "top", rankedList[1] is "rising"
	if len(data.Default.RankedList) == 0 {
		return nil, nil
	}
	return data.Default.RankedList[0].RankedKeyword, nil
}

// explore requests the widget tokens for a comparison and returns the first widget
// whose id starts with kind.
func (g *GoogleSource) explore(ctx context.Context, keywords []string, timeframe, region, kind string) (widget, error) {
	var req exploreRequest
	for _, kw := range keywords {
		req.ComparisonItem = append(req.ComparisonItem, comparisonItem{Keyword: kw, Geo: region, Time: timeframe})
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return widget{}, err
	}

	resp, err := g.client.Get(ctx, g.baseURL+"/trends/api/explore", g.params(url.Values{"req": {string(payload)}}), jsonTypes...)
	if err != nil {
		return widget{}, err
	}
	var ex exploreResponse
	if err := parser.DecodeTrendsJSON(resp.Body, &ex); err != nil {
		return widget{}, err
	}
	for _, w := range ex.Widgets {
		if strings.HasPrefix(w.ID, kind) && w.Token != "" {
			return w, nil
		}
	}
	return widget{}, fmt.Errorf("%w: no %s widget", crawler.ErrMalformedResponse, kind)
}

func (g *GoogleSource) widgetData(ctx context.Context, endpoint string, w widget, v any) error {
	params := g.params(url.Values{
		"req":   {string(w.Request)},
		"token": {w.Token},
	})
	resp, err := g.client.Get(ctx, g.baseURL+"/trends/api/widgetdata/"+endpoint, params, jsonTypes...)
	if err != nil {
		return err
	}
	return parser.DecodeTrendsJSON(resp.Body, v)
}

func (g *GoogleSource) params(extra url.Values) url.Values {
	v := url.Values{
		"hl": {g.language},
		"tz": {strconv.Itoa(g.tz)},
	}
	for k, vs := range extra {
		v[k] = vs
	}
	return v
}
