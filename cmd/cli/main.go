package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"trendprobe/internal/app"
	"trendprobe/internal/config"
	"trendprobe/internal/ioformats"
	"trendprobe/internal/ngram"
	"trendprobe/pkg/logger"
)

const usage = `usage: trendprobe [flags] <command> [args]

commands:
  trending [region] [limit]                      -enrich adds historical context
  interest [keyword,keyword,...|@file] [timeframe] [region]
  related [keyword] [region]
  business
  context <term,term,...|@file>
  <term>            historical usage pattern of a term

flags:
`

type options struct {
	startYear int
	endYear   int
	smoothing int
	enrich    bool
}

func main() {
	cfg := config.Load()
	l := logger.New(cfg.LogLevel)
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, app.New(cfg, l), l))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, a *app.App, l zerolog.Logger) int {
	fs := flag.NewFlagSet("trendprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	var opts options
	fs.IntVar(&opts.startYear, "start", ngram.DefaultStartYear, "first year of the historical range")
	fs.IntVar(&opts.endYear, "end", ngram.DefaultEndYear, "last year of the historical range")
	fs.IntVar(&opts.smoothing, "smoothing", ngram.DefaultSmoothing, "smoothing window for the historical series")
	fs.BoolVar(&opts.enrich, "enrich", false, "attach historical context to the top trending searches")
	if err := fs.Parse(args); err != nil {
		return fail(stdout, l, "invalid flags: "+err.Error())
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return fail(stdout, l, "no command or search term provided")
	}

	result, err := dispatch(ctx, a, opts, rest[0], rest[1:])
	if err != nil {
		return fail(stdout, l, err.Error())
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		l.Error().Err(err).Msg("write output")
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, a *app.App, opts options, command string, args []string) (any, error) {
	switch command {
	case "trending":
		region := arg(args, 0, "")
		limit := 0
		if s := arg(args, 1, ""); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid limit %q: must be a positive integer", s)
			}
			limit = n
		}
		records := a.Trends.FetchTrending(ctx, region, limit)
		if opts.enrich {
			records = a.Ngram.EnhanceTrending(ctx, records)
		}
		return records, nil

	case "interest":
		keywords, err := termList(arg(args, 0, "AI marketing"))
		if err != nil {
			return nil, err
		}
		return a.Trends.FetchInterestOverTime(ctx, keywords, arg(args, 1, "today 3-m"), arg(args, 2, "")), nil

	case "related":
		return a.Trends.FetchRelatedQueries(ctx, arg(args, 0, "digital marketing"), arg(args, 1, "")), nil

	case "business":
		return a.Trends.FetchBusinessTrends(ctx), nil

	case "context":
		list := arg(args, 0, "")
		if list == "" {
			return nil, fmt.Errorf("context needs a comma separated term list or @file")
		}
		terms, err := termList(list)
		if err != nil {
			return nil, err
		}
		return a.Ngram.SummarizeTrendContext(ctx, terms), nil

	default:
		term := strings.TrimSpace(strings.Join(append([]string{command}, args...), " "))
		if term == "" {
			return nil, fmt.Errorf("no search term provided")
		}
		return a.Ngram.FetchHistoricalPattern(ctx, term, opts.startYear, opts.endYear, opts.smoothing), nil
	}
}

func fail(w io.Writer, l zerolog.Logger, msg string) int {
	l.Error().Msg(msg)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	return 1
}

func arg(args []string, i int, fallback string) string {
	if i < len(args) && strings.TrimSpace(args[i]) != "" {
		return args[i]
	}
	return fallback
}

// termList reads "@path" through ioformats, anything else as a comma separated list.
func termList(list string) ([]string, error) {
	path, ok := strings.CutPrefix(list, "@")
	if !ok {
		return splitList(list), nil
	}
	terms, err := ioformats.ReadTerms(path)
	if err != nil {
		return nil, fmt.Errorf("read terms: %w", err)
	}
	return terms, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
