// Package report renders scan sessions for terminal output and for
// notification delivery.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/chenruby1109/factor-ai/internal/models"
)

// FormatMarkdown renders a full session as a ranked markdown table plus a
// summary footer. Results are assumed already sorted.
func FormatMarkdown(session *models.ScanSession) string {
	if session == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# Scan %s\n\n", session.ID)
	fmt.Fprintf(&b, "Started %s, benchmark %s (%d samples)\n\n",
		session.StartedAt.Format("2006-01-02 15:04:05 MST"),
		session.BenchmarkSymbol,
		session.BenchmarkSamples)

	if len(session.Results) == 0 {
		b.WriteString("No instruments qualified.\n")
	} else {
		b.WriteString("| # | Symbol | Name | Price | Fair Value | Score | Verdict | Anchor | Vol | Factors | Tags |\n")
		b.WriteString("|---|--------|------|-------|-----------|-------|---------|--------|-----|---------|------|\n")
		for i, r := range session.Results {
			fmt.Fprintf(&b, "| %d | %s | %s | %.2f | %s | %.0f | %s | %s | %.0f%% | %s | %s |\n",
				i+1,
				r.Symbol,
				displayName(r),
				r.Price,
				fairValueCell(&r),
				r.Score,
				verdictCell(&r),
				anchorCell(&r),
				r.Volatility*100,
				strings.Join(r.Factors, ", "),
				strings.Join(r.StrategyTags, ", "),
			)
		}
	}

	fmt.Fprintf(&b, "\nProcessed %d of %d, %d qualified, %d batches, %s.\n",
		session.Summary.Processed,
		session.Universe,
		session.Summary.Qualified,
		session.Summary.Batches,
		session.Summary.Duration.Round(time.Second))

	return b.String()
}

// FormatNotification renders the top-N results as a compact Telegram
// message. Markdown here is Telegram-flavored: asterisks bold, no tables.
func FormatNotification(session *models.ScanSession, topN int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Scan complete* — %d qualified of %d\n",
		session.Summary.Qualified, session.Summary.Processed)

	limit := topN
	if limit > len(session.Results) {
		limit = len(session.Results)
	}

	for i := 0; i < limit; i++ {
		r := session.Results[i]
		fmt.Fprintf(&b, "\n%d. *%s* %s — %.2f, score %.0f", i+1, r.Symbol, displayName(r), r.Price, r.Score)
		if r.Verdict != nil {
			fmt.Fprintf(&b, ", %s @ %.2f (%s)", r.Verdict.Action, r.Verdict.AnchorPrice, r.Verdict.AnchorName)
		}
		if len(r.StrategyTags) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(r.StrategyTags, ", "))
		}
	}

	return b.String()
}

// FormatFactors renders one result's fired factors for detail views.
func FormatFactors(r *models.ScoreResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — score %.0f (beta %.2f, required return %.1f%%)\n",
		r.Symbol, r.Score, r.Beta, r.RequiredReturn*100)
	for _, f := range r.Factors {
		fmt.Fprintf(&b, "  + %s\n", f)
	}
	if r.FinancingAdvice != "" {
		fmt.Fprintf(&b, "  financing: %s\n", r.FinancingAdvice)
	}
	return b.String()
}

func displayName(r models.ScoreResult) string {
	if r.Name == "" {
		return "-"
	}
	return r.Name
}

func fairValueCell(r *models.ScoreResult) string {
	if r.FairValue == nil {
		return "-"
	}
	gap, _ := r.ValueGapPct()
	return fmt.Sprintf("%.2f (%+.0f%%)", *r.FairValue, gap)
}

func verdictCell(r *models.ScoreResult) string {
	if r.Verdict == nil {
		return "-"
	}
	return string(r.Verdict.Action)
}

func anchorCell(r *models.ScoreResult) string {
	if r.Verdict == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f %s", r.Verdict.AnchorPrice, r.Verdict.AnchorName)
}
