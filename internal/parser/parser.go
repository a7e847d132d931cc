
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"trendprobe/internal/crawler"
)

// Series is one term's frequency observations as parsed from the ngram page.
type Series struct {
	Term   string    `json:"ngram"`
	Points []float64 `json:"timeseries"`
}

var dataMarkerRe = regexp.MustCompile(`(?s)var data = (\[.*?\]);`)

// ExtractNgramSeries pulls the embedded data literal out of an ngram graph page.
// Parsing is best effort: the bool is false whenever the marker is missing or the
// literal does not decode, and callers only use it to pick the fallback branch.
func ExtractNgramSeries(body []byte, contentType, term string) (Series, bool) {
	data, err := toUTF8(body, contentType)
	if err != nil {
		return Series{}, false
	}

	var literals []string
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data)); err == nil {
		doc.Find("script").Each(func(i int, s *goquery.Selection) {
			txt := s.Text()
			if id, _ := s.Attr("id"); id == "ngrams-data" {
				literals = append(literals, strings.TrimSpace(txt))
				return
			}
			if m := dataMarkerRe.FindStringSubmatch(txt); m != nil {
				literals = append(literals, m[1])
			}
		})
	}
	// JS responses have no <script> wrapper
	if len(literals) == 0 {
		if m := dataMarkerRe.FindSubmatch(data); m != nil {
			literals = append(literals, string(m[1]))
		}
	}

	for _, lit := range literals {
		var all []Series
		if err := json.Unmarshal([]byte(lit), &all); err != nil || len(all) == 0 {
			continue
		}
		for _, s := range all {
			if strings.EqualFold(strings.TrimSpace(s.Term), term) && len(s.Points) > 0 {
				return s, true
			}
		}
		if len(all[0].Points) > 0 {
			return all[0], true
		}
	}
	return Series{}, false
}

// DecodeTrendsJSON strips the anti-hijacking prefix the trends API puts in front of
// its JSON (")]}'," and friends) and decodes the rest into v.
func DecodeTrendsJSON(body []byte, v any) error {
	start := bytes.IndexAny(body, "{[")
	if start < 0 {
		return fmt.Errorf("%w: no json payload", crawler.ErrMalformedResponse)
	}
	// the prefix itself contains "]", so skip past it when present
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte(")]}'")) {
		rest := bytes.TrimSpace(body)[len(")]}'"):]
		rest = bytes.TrimLeft(rest, ", \r\n\t")
		if err := json.Unmarshal(rest, v); err != nil {
			return fmt.Errorf("%w: %v", crawler.ErrMalformedResponse, err)
		}
		return nil
	}
	if err := json.Unmarshal(body[start:], v); err != nil {
		return fmt.Errorf("%w: %v", crawler.ErrMalformedResponse, err)
	}
	return nil
}

func toUTF8(data []byte, contentType string) ([]byte, error) {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return nil, err
		}
		return data, nil
	}
	return out, nil
}
