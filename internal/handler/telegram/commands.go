package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockpulse/internal/domain/entity"
	newsUC "stockpulse/internal/usecase/news"
	wlUC "stockpulse/internal/usecase/watchlist"
)

// Watchlist is the part of *watchlist.Service the bot uses.
type Watchlist interface {
	Add(ctx context.Context, userID int64, raw string) (entity.Symbol, error)
	Remove(ctx context.Context, userID int64, raw string) (entity.Symbol, error)
	List(ctx context.Context, userID int64) ([]entity.Symbol, error)
}

// Aggregator is the part of *news.Aggregator the bot uses.
type Aggregator interface {
	Summarize(ctx context.Context, symbol entity.Symbol, topK int) (newsUC.SymbolReport, error)
	Report(ctx context.Context, symbols []entity.Symbol, topK int, budget time.Duration) newsUC.WatchlistReport
}

// SectorAggregator reports headlines for an industry sector. *news.Aggregator implements it.
type SectorAggregator interface {
	SummarizeSector(ctx context.Context, sector string, topK int) (newsUC.SectorReport, error)
}

// Digester writes a short digest of headlines.
type Digester interface {
	Digest(ctx context.Context, symbol entity.Symbol, items []entity.ScoredNewsItem) string
}

// Commands turns chat commands into reply text. It holds no chat state.
type Commands struct {
	Watchlist Watchlist
	Agg       Aggregator
	// Digester is optional; without it /news lists headlines only.
	Digester Digester
	// TopK is the number of headlines per symbol; zero uses the aggregator default.
	TopK int
	// Sectors maps a symbol to its industry sector. With SectorAgg set, /news
	// follows each symbol that has one with a short sector block.
	Sectors   map[entity.Symbol]string
	SectorAgg SectorAggregator
}

const emptyWatchlist = "📂 Your watchlist is empty. Add stocks with /add SYMBOL"

// Handle returns the reply for command (without the leading slash) and its arguments.
func (c *Commands) Handle(ctx context.Context, userID int64, command, args string) string {
	arg := firstArg(args)
	switch command {
	case "start":
		return welcomeMessage
	case "help":
		return helpMessage
	case "add":
		return c.add(ctx, userID, arg)
	case "remove":
		return c.remove(ctx, userID, arg)
	case "mylist":
		return c.list(ctx, userID)
	case "news":
		return c.news(ctx, userID, arg)
	case "sentiment":
		return c.sentiment(ctx, userID)
	default:
		return fmt.Sprintf("❓ Unknown command: /%s\nUse /help to see available commands", command)
	}
}

func (c *Commands) add(ctx context.Context, userID int64, arg string) string {
	if arg == "" {
		return "Usage: /add SYMBOL"
	}
	sym, err := c.Watchlist.Add(ctx, userID, arg)
	switch {
	case err == nil:
		return fmt.Sprintf("✅ Added %s to your watchlist.", sym)
	case errors.Is(err, wlUC.ErrAlreadyWatched):
		return fmt.Sprintf("⚠️ %s is already in your watchlist.", sym)
	case errors.Is(err, wlUC.ErrWatchlistFull):
		return fmt.Sprintf("⚠️ Your watchlist is full (%d symbols). Remove one first.", entity.MaxWatchlistSize)
	default:
		return userMessage(err)
	}
}

func (c *Commands) remove(ctx context.Context, userID int64, arg string) string {
	if arg == "" {
		return "Usage: /remove SYMBOL"
	}
	sym, err := c.Watchlist.Remove(ctx, userID, arg)
	switch {
	case err == nil:
		return fmt.Sprintf("❌ Removed %s from your watchlist.", sym)
	case errors.Is(err, wlUC.ErrNotWatched):
		return fmt.Sprintf("⚠️ %s is not in your watchlist.", sym)
	default:
		return userMessage(err)
	}
}

func (c *Commands) list(ctx context.Context, userID int64) string {
	symbols, err := c.Watchlist.List(ctx, userID)
	if err != nil {
		return userMessage(err)
	}
	if len(symbols) == 0 {
		return emptyWatchlist
	}
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = s.String()
	}
	return "📂 Your watchlist:\n" + strings.Join(names, "\n")
}

// news covers one symbol when arg is set, otherwise the whole watchlist.
func (c *Commands) news(ctx context.Context, userID int64, arg string) string {
	var reports []newsUC.SymbolReport
	if arg != "" {
		sym, err := entity.ParseSymbol(arg)
		if err != nil {
			return userMessage(err)
		}
		rep, _ := c.Agg.Summarize(ctx, sym, c.TopK)
		reports = []newsUC.SymbolReport{rep}
	} else {
		symbols, err := c.Watchlist.List(ctx, userID)
		if err != nil {
			return userMessage(err)
		}
		if len(symbols) == 0 {
			return emptyWatchlist
		}
		reports = c.Agg.Report(ctx, symbols, c.TopK, 0).Symbols
	}

	shown := make(map[string]bool)
	blocks := make([]string, 0, 2*len(reports))
	for _, rep := range reports {
		blocks = append(blocks, c.renderNews(ctx, rep))
		if sector := c.sectorOf(rep.Symbol); sector != "" && !shown[sector] {
			shown[sector] = true
			if block := c.sectorBlock(ctx, sector); block != "" {
				blocks = append(blocks, block)
			}
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (c *Commands) sectorOf(sym entity.Symbol) string {
	if c.SectorAgg == nil {
		return ""
	}
	return c.Sectors[sym]
}

// sectorBlock renders sector headlines, or "" when there are none or the lookup failed.
func (c *Commands) sectorBlock(ctx context.Context, sector string) string {
	rep, err := c.SectorAgg.SummarizeSector(ctx, sector, newsUC.SectorTopK)
	if err != nil || len(rep.Items) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "💼 %s sector: %s %s (score %+d, %d articles)",
		rep.Sector, verdictEmoji(rep.Summary.Verdict), rep.Summary.Verdict, rep.Summary.TotalScore, rep.Summary.ArticleCount)
	for _, it := range rep.Items {
		fmt.Fprintf(&b, "\n• %s", it.Title)
	}
	return b.String()
}

func (c *Commands) sentiment(ctx context.Context, userID int64) string {
	symbols, err := c.Watchlist.List(ctx, userID)
	if err != nil {
		return userMessage(err)
	}
	if len(symbols) == 0 {
		return emptyWatchlist
	}
	report := c.Agg.Report(ctx, symbols, c.TopK, 0)
	lines := make([]string, 0, len(report.Symbols)+1)
	lines = append(lines, "📊 Sentiment")
	for _, rep := range report.Symbols {
		lines = append(lines, renderVerdictLine(rep))
	}
	return strings.Join(lines, "\n")
}

func (c *Commands) renderNews(ctx context.Context, rep newsUC.SymbolReport) string {
	if rep.Err != nil || len(rep.Items) == 0 {
		return "📰 " + renderVerdictLine(rep)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📰 %s", renderVerdictLine(rep))
	for _, it := range rep.Items {
		fmt.Fprintf(&b, "\n• %s", it.Title)
		if it.Source != "" {
			fmt.Fprintf(&b, " (%s)", it.Source)
		}
	}
	if c.Digester != nil {
		if d := c.Digester.Digest(ctx, rep.Symbol, rep.Items); d != "" {
			b.WriteString("\n📝 " + d)
		}
	}
	return b.String()
}

func renderVerdictLine(rep newsUC.SymbolReport) string {
	switch {
	case rep.Err != nil:
		return fmt.Sprintf("%s: %s", rep.Symbol, failureReason(rep.Err))
	case rep.Summary.ArticleCount == 0:
		return fmt.Sprintf("%s: no recent news", rep.Symbol)
	default:
		return fmt.Sprintf("%s: %s %s (score %+d, %d articles)",
			rep.Symbol, verdictEmoji(rep.Summary.Verdict), rep.Summary.Verdict, rep.Summary.TotalScore, rep.Summary.ArticleCount)
	}
}

func verdictEmoji(v entity.Verdict) string {
	switch v {
	case entity.VerdictBullish:
		return "🟢"
	case entity.VerdictBearish:
		return "🔴"
	default:
		return "⚪"
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, newsUC.ErrAllSourcesUnavailable):
		return "no data available right now"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return "something went wrong"
	}
}

// userMessage renders validation errors verbatim and hides everything else.
func userMessage(err error) string {
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		return "⚠️ " + verr.Message
	}
	return "❌ Something went wrong, please try again later."
}

func firstArg(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

const welcomeMessage = "🤖 Stock news bot started!\n" +
	"Use /add SYMBOL to follow a stock, /remove SYMBOL to drop it, /mylist to see your watchlist, " +
	"/news for headlines and /sentiment for verdicts."

const helpMessage = "Commands:\n" +
	"/add SYMBOL - follow a stock (e.g. /add TCS.NS)\n" +
	"/remove SYMBOL - stop following a stock\n" +
	"/mylist - show your watchlist\n" +
	"/news [SYMBOL] - headlines and verdict for one stock or your whole watchlist, with sector headlines\n" +
	"/sentiment - one verdict per stock in your watchlist\n\n" +
	"Verdicts come from keyword counts in recent headlines. Not investment advice."
