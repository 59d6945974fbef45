package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"coin-dashboard/internal/domain/entity"
	"coin-dashboard/internal/infra/worker"
	"coin-dashboard/internal/usecase/market"
)

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"top", "top [-per-page N] [-page P]", "list coins by market cap", runTop},
	{"search", "search QUERY", "search coins by name or symbol", runSearch},
	{"detail", "detail COIN_ID", "show one coin's market detail", runDetail},
	{"history", "history [-days N] COIN_ID", "show a daily price series", runHistory},
	{"rugpull", "rugpull COIN_ID", "show the rug pull risk analysis", runRugPull},
	{"overview", "overview [-days N] COIN_ID", "detail, history and analysis together", runOverview},
	{"news", "news", "show the news summary", runNews},
	{"trending", "trending", "show trending topics", runTrending},
	{"articles", "articles [COIN_ID...]", "show news articles, optionally per coin", runArticles},
	{"voices", "voices", "list podcast voices", runVoices},
	{"podcast", "podcast [-duration MIN] [-voice ID] [-no-price-analysis] COIN_ID...", "generate a podcast", runPodcast},
	{"favorite", "favorite [COIN_ID]", "list favorites, or toggle one", runFavorite},
	{"watch", "watch [-once]", "refresh on a schedule and serve /metrics and /health", runWatch},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// parseFlags parses args with fs and returns the positional arguments.
// Parse errors are reported as errUsage.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return fs.Args(), nil
}

// oneArg requires exactly one positional argument.
func oneArg(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errUsage
	}
	return strings.TrimSpace(args[0]), nil
}

func runTop(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	perPage := fs.Int("per-page", 20, "coins per page")
	page := fs.Int("page", 1, "page number")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	coins := a.market.TopCoins(ctx, *perPage, *page)
	return a.emit(coins, func(w io.Writer) { printCoins(w, coins) })
}

func runSearch(ctx context.Context, a *app, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errUsage
	}

	coins := a.market.Search(ctx, query)
	return a.emit(coins, func(w io.Writer) {
		if len(coins) == 0 {
			fmt.Fprintf(w, "No coins match %q.\n", query)
			return
		}
		printCoins(w, coins)
	})
}

func runDetail(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}

	detail := a.market.CoinDetails(ctx, id)
	if detail == nil {
		return fmt.Errorf("coin %q: %w", id, entity.ErrNotFound)
	}
	return a.emit(detail, func(w io.Writer) { printDetail(w, detail) })
}

func runHistory(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	days := fs.Int("days", market.DefaultHistoryDays, "number of days")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	id, err := oneArg(rest)
	if err != nil {
		return err
	}

	points := a.market.HistoricalData(ctx, id, *days)
	return a.emit(points, func(w io.Writer) { printHistory(w, points) })
}

func runRugPull(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}

	risk, err := a.analysis.Analyze(ctx, id, nil)
	if err != nil {
		return err
	}
	return a.emit(risk, func(w io.Writer) { printRisk(w, id, risk) })
}

func runOverview(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("overview", flag.ContinueOnError)
	days := fs.Int("days", market.DefaultHistoryDays, "number of days")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	id, err := oneArg(rest)
	if err != nil {
		return err
	}

	ov, err := a.overview.Overview(ctx, id, *days)
	if err != nil {
		return err
	}
	return a.emit(overviewJSON(ov), func(w io.Writer) {
		printDetail(w, ov.Detail)
		fmt.Fprintln(w)
		printHistory(w, ov.History)
		fmt.Fprintln(w)
		if ov.Analysis != nil {
			printRisk(w, id, ov.Analysis)
		} else {
			fmt.Fprintf(w, "Rug pull analysis unavailable: %v\n", ov.AnalysisErr)
		}
	})
}

func runNews(ctx context.Context, a *app, _ []string) error {
	summary, err := a.backend.NewsSummary(ctx)
	if err != nil {
		return err
	}
	return a.emit(summary, func(w io.Writer) {
		o := summary.MarketOverview
		fmt.Fprintf(w, "Market sentiment: %s (%.2f)\n", o.SentimentLabel, o.Sentiment)
		if len(o.TrendingTopics) > 0 {
			fmt.Fprintf(w, "Trending: %s\n", strings.Join(o.TrendingTopics, ", "))
		}
		fmt.Fprintln(w)
		printArticles(w, summary.Articles)
	})
}

func runTrending(ctx context.Context, a *app, _ []string) error {
	topics, err := a.backend.TrendingTopics(ctx)
	if err != nil {
		return err
	}
	return a.emit(topics, func(w io.Writer) {
		for _, t := range topics {
			fmt.Fprintf(w, "%-30s %5d mentions  %s\n", t.Topic, t.Mentions, t.Sentiment)
		}
	})
}

func runArticles(ctx context.Context, a *app, args []string) error {
	resp, err := a.backend.NewsArticles(ctx, args...)
	if err != nil {
		return err
	}
	return a.emit(resp, func(w io.Writer) { printArticles(w, resp.Articles) })
}

func runVoices(ctx context.Context, a *app, _ []string) error {
	voices, err := a.backend.AvailableVoices(ctx)
	if err != nil {
		return err
	}
	return a.emit(voices, func(w io.Writer) {
		for _, v := range voices {
			fmt.Fprintf(w, "%-12s %-20s %s\n", v.ID, v.Name, v.Description)
		}
	})
}

func runPodcast(ctx context.Context, a *app, args []string) error {
	req, err := parsePodcastArgs(args)
	if err != nil {
		return err
	}

	data, err := a.backend.GeneratePodcast(ctx, req)
	if err != nil {
		return err
	}
	return a.emit(data, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n", data.Title)
		fmt.Fprintf(w, "Audio:    %s\n", data.AudioURL)
		fmt.Fprintf(w, "Coins:    %s\n", strings.Join(data.CoinsCovered, ", "))
		fmt.Fprintf(w, "Duration: %ds (%s voice)\n", data.DurationSeconds, data.VoiceType)
		if data.TranscriptExcerpt != "" {
			fmt.Fprintf(w, "\n%s\n", data.TranscriptExcerpt)
		}
	})
}

// parsePodcastArgs builds a request from flags and coin ids. Unset flags stay
// zero so the client applies its defaults.
func parsePodcastArgs(args []string) (entity.PodcastRequest, error) {
	fs := flag.NewFlagSet("podcast", flag.ContinueOnError)
	duration := fs.Int("duration", 0, "length in minutes")
	voice := fs.String("voice", "", "voice id")
	noPrice := fs.Bool("no-price-analysis", false, "skip price analysis")
	rest, err := parseFlags(fs, args)
	if err != nil {
		return entity.PodcastRequest{}, err
	}
	if len(rest) == 0 {
		return entity.PodcastRequest{}, errUsage
	}

	req := entity.PodcastRequest{
		CoinIDs:         rest,
		DurationMinutes: *duration,
		VoiceType:       *voice,
	}
	if *noPrice {
		include := false
		req.IncludePriceAnalysis = &include
	}
	return req, nil
}

func runFavorite(ctx context.Context, a *app, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	if len(args) == 0 {
		ids := a.favorites.List(ctx)
		return a.emit(ids, func(w io.Writer) {
			if len(ids) == 0 {
				fmt.Fprintln(w, "No favorites yet.")
				return
			}
			for _, id := range ids {
				fmt.Fprintln(w, id)
			}
		})
	}

	id := strings.TrimSpace(args[0])
	added, err := a.favorites.Toggle(ctx, id)
	if err != nil {
		return err
	}
	result := struct {
		ID       string `json:"id"`
		Favorite bool   `json:"favorite"`
	}{id, added}
	return a.emit(result, func(w io.Writer) {
		if added {
			fmt.Fprintf(w, "Added %s to favorites.\n", id)
		} else {
			fmt.Fprintf(w, "Removed %s from favorites.\n", id)
		}
	})
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	once := fs.Bool("once", false, "run a single refresh and exit")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	metrics := worker.NewWatchMetrics(nil)
	a.cfg.Report(a.logger, metrics.ConfigMetrics)

	job := worker.NewJob(worker.JobConfig{}, a.market, a.analysis, a.favorites, metrics, a.logger)

	if *once {
		snap := job.Run(ctx)
		return a.emit(snap, func(w io.Writer) { printCoins(w, snap.Coins) })
	}

	addr := fmt.Sprintf(":%d", a.cfg.Watch.MetricsPort)
	health := worker.NewHealthServer(addr, a.logger, worker.WithBreakers(a.breakers...))
	go func() {
		if err := health.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job.Run(ctx)
	health.SetReady(true)

	sched, err := worker.Schedule(ctx, a.cfg.Watch.Schedule, a.cfg.Location(), a.logger, func(ctx context.Context) {
		job.Run(ctx)
	})
	if err != nil {
		return err
	}
	a.logger.Info("watch started",
		slog.String("schedule", a.cfg.Watch.Schedule),
		slog.String("addr", addr))

	<-ctx.Done()
	health.SetReady(false)
	// the cache database closes after return, so in-flight refreshes finish first
	sched.Wait()
	return nil
}
