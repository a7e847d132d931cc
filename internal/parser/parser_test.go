
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendprobe/internal/crawler"
)

const samplePage = `<!doctype html><html lang="en"><head>
<title>Google Books Ngram Viewer</title>
</head><body>
<div id="chart"></div>
<script type="text/javascript">
  var data = [{"ngram": "remote work", "parent": "", "type": "NGRAM", "timeseries": [1.5e-09, 2.0e-09, 4.5e-09]}];
  drawChart(data);
</script>
</body></html>`

const jsonScriptPage = `<html><body>
<script id="ngrams-data" type="application/json">[{"ngram":"blockchain","timeseries":[0.1,0.2]},{"ngram":"ai","timeseries":[0.3]}]</script>
</body></html>`

func TestExtractNgramSeries(t *testing.T) {
	s, ok := ExtractNgramSeries([]byte(samplePage), "text/html; charset=utf-8", "remote work")
	require.True(t, ok)
	assert.Equal(t, "remote work", s.Term)
	assert.Len(t, s.Points, 3)
}

func TestExtractNgramSeriesFromJSONScript(t *testing.T) {
	s, ok := ExtractNgramSeries([]byte(jsonScriptPage), "text/html", "ai")
	require.True(t, ok)
	assert.Equal(t, "ai", s.Term)
	assert.Equal(t, []float64{0.3}, s.Points)
}

func TestExtractNgramSeriesFromBareScript(t *testing.T) {
	body := `var data = [{"ngram":"x","timeseries":[1,2]}];`
	s, ok := ExtractNgramSeries([]byte(body), "application/javascript", "unknown")
	require.True(t, ok)
	assert.Equal(t, "x", s.Term)
}

func TestExtractNgramSeriesMissingMarker(t *testing.T) {
	_, ok := ExtractNgramSeries([]byte("<html><body><p>Please try again later</p></body></html>"), "text/html", "x")
	assert.False(t, ok)
}

func TestExtractNgramSeriesBrokenLiteral(t *testing.T) {
	body := `<script>var data = [{"ngram": "x", "timeseries": [1, 2}];</script>`
	_, ok := ExtractNgramSeries([]byte(body), "text/html", "x")
	assert.False(t, ok)
}

func TestDecodeTrendsJSON(t *testing.T) {
	var v struct {
		Default struct {
			Values []int `json:"values"`
		} `json:"default"`
	}
	err := DecodeTrendsJSON([]byte(")]}',\n{\"default\":{\"values\":[1,2]}}"), &v)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v.Default.Values)

	var plain map[string][]string
	require.NoError(t, DecodeTrendsJSON([]byte(`{"united_states":["a"]}`), &plain))
	assert.Equal(t, []string{"a"}, plain["united_states"])

	assert.ErrorIs(t, DecodeTrendsJSON([]byte("<html>rate limited</html>"), &v), crawler.ErrMalformedResponse)
	assert.ErrorIs(t, DecodeTrendsJSON([]byte(")]}'\n{broken"), &v), crawler.ErrMalformedResponse)
}
