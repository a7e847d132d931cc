// Package ioformats reads term and keyword batches for the list-taking commands
// (trend context and interest over time).
package ioformats

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is the layout of a term batch file.
type Format int

const (
	FormatAuto Format = iota
	FormatCSV
	FormatNDJSON
)

// headerAliases name the CSV column a batch is read from, in preference order.
var headerAliases = []string{"term", "keyword", "query"}

var ErrNoTerms = errors.New("no terms found")

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return FormatAuto
}

// ReadTerms reads a term batch from path. Blank entries are dropped and the first
// occurrence of a repeated term wins.
func ReadTerms(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTerms(f, FormatOf(path))
}

// DecodeTerms reads a batch in the given format. FormatAuto treats the input as
// CSV when its first non-blank line holds a known header, NDJSON otherwise.
func DecodeTerms(r io.Reader, format Format) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == FormatAuto {
		format = FormatNDJSON
		if _, ok := termColumn(firstLineFields(data)); ok {
			format = FormatCSV
		}
	}

	var terms []string
	if format == FormatCSV {
		terms, err = decodeCSV(data)
	} else {
		terms, err = decodeNDJSON(data)
	}
	if err != nil {
		return nil, err
	}
	terms = uniqueNonBlank(terms)
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}
	return terms, nil
}

func decodeCSV(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrNoTerms
	}
	if err != nil {
		return nil, err
	}
	col, ok := termColumn(header)
	if !ok {
		return nil, fmt.Errorf("csv header needs one of %s", strings.Join(headerAliases, ", "))
	}

	var out []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if col < len(row) {
			out = append(out, row[col])
		}
	}
}

// ndjsonRow covers the object shapes a line may take; "keywords" carries a
// whole batch on one line.
type ndjsonRow struct {
	Term     string   `json:"term"`
	Keyword  string   `json:"keyword"`
	Query    string   `json:"query"`
	Keywords []string `json:"keywords"`
}

func (r ndjsonRow) terms() []string {
	return append([]string{r.Term, r.Keyword, r.Query}, r.Keywords...)
}

func decodeNDJSON(data []byte) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "{"):
			var row ndjsonRow
			if err := json.Unmarshal([]byte(line), &row); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			out = append(out, row.terms()...)
		case strings.HasPrefix(line, "["):
			var batch []string
			if err := json.Unmarshal([]byte(line), &batch); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			out = append(out, batch...)
		case strings.HasPrefix(line, `"`):
			var s string
			if err := json.Unmarshal([]byte(line), &s); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			out = append(out, s)
		default:
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

func termColumn(header []string) (int, bool) {
	for _, alias := range headerAliases {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), alias) {
				return i, true
			}
		}
	}
	return -1, false
}

func firstLineFields(data []byte) []string {
	for _, line := range bytes.Split(data, []byte("\n")) {
		if s := strings.TrimSpace(string(line)); s != "" {
			return strings.Split(s, ",")
		}
	}
	return nil
}

func uniqueNonBlank(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
