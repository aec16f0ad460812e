// Command diagnose probes every configured news source for a few symbols and
// reports per-source status, item counts and latency. It is an operator tool
// for checking sources.yaml before deploying.
//
// Usage:
//
//	diagnose -symbols AAPL,TCS.NS [-json] [-timeout 15s]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"stockpulse/internal/config"
	"stockpulse/internal/domain/entity"
	"stockpulse/internal/handler/http/respond"
	"stockpulse/internal/infra/feed"
	"stockpulse/internal/observability/logging"
	"stockpulse/internal/usecase/news"
	"stockpulse/internal/usecase/relevance"
)

// Probe statuses.
const (
	StatusOK      = "OK"
	StatusEmpty   = "EMPTY"
	StatusTimeout = "TIMEOUT"
	StatusError   = "ERROR"
)

// Diagnostic is the probe result of one source for one symbol.
type Diagnostic struct {
	Source       string `json:"source"`
	Symbol       string `json:"symbol"`
	Status       string `json:"status"`
	ItemCount    int    `json:"item_count"`
	Relevant     int    `json:"relevant_count"`
	LatestDate   string `json:"latest_date,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	symbolsFlag := flag.String("symbols", "AAPL", "comma-separated symbols to probe")
	asJSON := flag.Bool("json", false, "print JSON instead of a table")
	timeout := flag.Duration("timeout", 15*time.Second, "per-source timeout")
	flag.Parse()

	symbols, err := parseSymbols(*symbolsFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	file, err := config.LoadSources(config.SourcesPath())
	if err != nil {
		logger.Error("failed to load sources", slog.String("error", err.Error()))
		os.Exit(1)
	}
	aliases := file.SymbolAliases()
	sources, err := feed.NewFactory(&http.Client{}, *timeout, aliases).Build(file.Sources)
	if err != nil {
		logger.Error("failed to build sources", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	if len(sources) == 0 {
		logger.Error("no enabled sources", slog.String("path", config.SourcesPath()))
		os.Exit(1)
	}

	logger.Info("diagnosing sources", slog.Int("sources", len(sources)), slog.Int("symbols", len(symbols)))
	results := diagnose(context.Background(), sources, relevance.NewFilter(aliases), symbols)

	if *asJSON {
		err = writeJSON(os.Stdout, results)
	} else {
		err = writeTable(os.Stdout, results)
	}
	if err != nil {
		logger.Error("failed to write report", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !anyOK(results) {
		os.Exit(1)
	}
}

func parseSymbols(raw string) ([]entity.Symbol, error) {
	var out []entity.Symbol
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		sym, err := entity.ParseSymbol(part)
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	if len(out) == 0 {
		return nil, errors.New("at least one symbol is required")
	}
	return out, nil
}

// diagnose probes every source for every symbol concurrently. Results are
// ordered by symbol, then by source.
func diagnose(ctx context.Context, sources []news.FeedSource, filter *relevance.Filter, symbols []entity.Symbol) []Diagnostic {
	results := make([]Diagnostic, len(symbols)*len(sources))
	var g errgroup.Group
	g.SetLimit(8)
	for i, sym := range symbols {
		for j, src := range sources {
			idx := i*len(sources) + j
			g.Go(func() error {
				results[idx] = probe(ctx, src, filter, sym)
				return nil
			})
		}
	}
	_ = g.Wait()
	return results
}

func probe(ctx context.Context, src news.FeedSource, filter *relevance.Filter, sym entity.Symbol) Diagnostic {
	d := Diagnostic{Source: src.Name(), Symbol: sym.String()}
	start := time.Now()
	items, err := src.Fetch(ctx, sym)
	d.ResponseTime = time.Since(start).Milliseconds()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		d.Status = StatusTimeout
		d.ErrorMessage = respond.SanitizeError(err)
		return d
	case err != nil:
		d.Status = StatusError
		d.ErrorMessage = respond.SanitizeError(err)
		return d
	}

	d.ItemCount = len(items)
	var latest time.Time
	for _, it := range items {
		if filter.Matches(it, sym) {
			d.Relevant++
		}
		if it.PublishedAt != nil && it.PublishedAt.After(latest) {
			latest = *it.PublishedAt
		}
	}
	if !latest.IsZero() {
		d.LatestDate = latest.UTC().Format(time.RFC3339)
	}
	d.Status = StatusOK
	if d.ItemCount == 0 {
		d.Status = StatusEmpty
	}
	return d
}

func anyOK(results []Diagnostic) bool {
	for _, d := range results {
		if d.Status == StatusOK {
			return true
		}
	}
	return false
}

func writeJSON(w io.Writer, results []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeTable(w io.Writer, results []Diagnostic) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tSOURCE\tSTATUS\tITEMS\tRELEVANT\tLATEST\tMS\tERROR")
	for _, d := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%s\n",
			d.Symbol, d.Source, d.Status, d.ItemCount, d.Relevant, d.LatestDate, d.ResponseTime, d.ErrorMessage)
	}
	return tw.Flush()
}
