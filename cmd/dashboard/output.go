package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"coin-dashboard/internal/domain/entity"
	"coin-dashboard/internal/usecase/market"
)

func printCoins(w io.Writer, coins []entity.Coin) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tSYMBOL\tPRICE (USD)\t24H %\tMARKET CAP")
	for _, c := range coins {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%+.2f\t%.0f\n",
			c.MarketCapRank, c.ID, strings.ToUpper(c.Symbol), c.CurrentPrice, c.PriceChangePercentage24h, c.MarketCap)
	}
	_ = tw.Flush()
}

func printDetail(w io.Writer, d *entity.CoinDetail) {
	if d == nil {
		return
	}
	m := d.MarketData
	fmt.Fprintf(w, "%s (%s)\n", d.Name, strings.ToUpper(d.Symbol))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Price\t$%.4f\t(%+.2f%% 24h)\n", m.CurrentPrice.USD, m.PriceChangePercentage24h)
	fmt.Fprintf(tw, "24h range\t$%.4f - $%.4f\n", m.Low24h.USD, m.High24h.USD)
	fmt.Fprintf(tw, "Market cap\t$%.0f\n", m.MarketCap.USD)
	fmt.Fprintf(tw, "Volume\t$%.0f\n", m.TotalVolume.USD)
	fmt.Fprintf(tw, "ATH / ATL\t$%.4f / $%.4f\n", m.ATH.USD, m.ATL.USD)
	fmt.Fprintf(tw, "Circulating\t%.0f\n", m.CirculatingSupply)
	_ = tw.Flush()
	if d.Description.En != "" {
		fmt.Fprintf(w, "\n%s\n", d.Description.En)
	}
}

func printHistory(w io.Writer, points []entity.ChartPoint) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tPRICE (USD)")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%.4f\n", p.Date, p.Price)
	}
	_ = tw.Flush()
}

func printRisk(w io.Writer, id string, r *entity.RugPullRisk) {
	name := r.CoinInfo.Name
	if name == "" {
		name = id
	}
	fmt.Fprintf(w, "Rug pull risk for %s: %d/100 (%s)\n", name, r.Score, r.Level())
	if r.Justification != "" {
		fmt.Fprintf(w, "%s\n", r.Justification)
	}
}

func printArticles(w io.Writer, articles []entity.NewsArticle) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles.")
		return
	}
	for _, a := range articles {
		fmt.Fprintf(w, "- %s (%s)\n", a.Title, a.Source)
		if a.SentimentLabel != "" {
			fmt.Fprintf(w, "  sentiment: %s\n", a.SentimentLabel)
		}
		fmt.Fprintf(w, "  %s\n", a.URL)
	}
}

// overviewOutput is the JSON shape of an overview. Errors do not marshal, so
// the analysis failure is carried as text.
type overviewOutput struct {
	Detail        *entity.CoinDetail  `json:"detail"`
	History       []entity.ChartPoint `json:"history"`
	Analysis      *entity.RugPullRisk `json:"analysis"`
	AnalysisError string              `json:"analysis_error,omitempty"`
}

func overviewJSON(ov *market.Overview) overviewOutput {
	out := overviewOutput{
		Detail:   ov.Detail,
		History:  ov.History,
		Analysis: ov.Analysis,
	}
	if ov.AnalysisErr != nil {
		out.AnalysisError = ov.AnalysisErr.Error()
	}
	return out
}
