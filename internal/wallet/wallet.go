package wallet

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/reward"
)

const sparkChars = " .:-=+*#%@"

const titleColumnWidth = 40

// Summary aggregates wallet totals.
type Summary struct {
	Claims      int
	BonusClaims int
	Total       float64
	Best        float64
	InProgress  int
	LastClaimAt time.Time
}

// Summarize computes totals over claims and reading progress.
func Summarize(claims []model.ClaimRecord, progress []model.ReadingRecord) Summary {
	var s Summary
	for _, c := range claims {
		s.Claims++
		s.Total += c.Amount
		if c.Amount > s.Best {
			s.Best = c.Amount
		}
		if c.Multiplier > 1 {
			s.BonusClaims++
		}
		if c.ClaimedAt.After(s.LastClaimAt) {
			s.LastClaimAt = c.ClaimedAt
		}
	}
	for _, p := range progress {
		if p.Progress < reward.CompleteProgress {
			s.InProgress++
		}
	}
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// EarningsSparkline renders smoothed claim amounts, oldest first.
func EarningsSparkline(claims []model.ClaimRecord, window int) string {
	amounts := make([]float64, len(claims))
	for i, c := range claims {
		amounts[i] = c.Amount
	}
	return Sparkline(MovingAverage(amounts, window))
}

// RenderSummary prints wallet totals.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Claims == 0 {
		_, err := fmt.Fprintln(w, "No rewards claimed yet.")
		return err
	}
	lines := []string{
		"Wallet",
		fmt.Sprintf("Balance: %s", reward.FormatAmount(s.Total)),
		fmt.Sprintf("Rewards claimed: %d (%d with bonus)", s.Claims, s.BonusClaims),
		fmt.Sprintf("Best reward: %s", reward.FormatAmount(s.Best)),
		fmt.Sprintf("Articles in progress: %d", s.InProgress),
		fmt.Sprintf("Last claim: %s", humanize.Time(s.LastClaimAt)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderClaimTable prints claims newest first.
func RenderClaimTable(w io.Writer, claims []model.ClaimRecord) error {
	if len(claims) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Claims"); err != nil {
		return err
	}
	headers := []string{"Article", "Amount", "Bonus", "Claimed"}
	rows := make([][]string, 0, len(claims))
	for i := len(claims) - 1; i >= 0; i-- {
		c := claims[i]
		amount := reward.NewAmount(c.Base, c.Multiplier)
		rows = append(rows, []string{
			truncateCell(c.Title, titleColumnWidth),
			reward.FormatAmount(c.Amount),
			amount.BonusLabel(),
			c.ClaimedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderProgressTable prints unfinished articles.
func RenderProgressTable(w io.Writer, records []model.ReadingRecord) error {
	headers := []string{"Article", "Progress", "Last read"}
	rows := [][]string{}
	for _, r := range records {
		if r.Progress >= reward.CompleteProgress {
			continue
		}
		rows = append(rows, []string{
			truncateCell(r.Title, titleColumnWidth),
			fmt.Sprintf("%.0f%%", r.Progress),
			humanize.Time(r.UpdatedAt),
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "In progress"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderReport prints the full plain-text wallet.
func RenderReport(w io.Writer, r Report, window int) error {
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if line := EarningsSparkline(r.Claims, window); line != "" {
		if _, err := fmt.Fprintf(w, "Earnings [%s]\n\n", line); err != nil {
			return err
		}
	}
	if err := RenderClaimTable(w, r.Claims); err != nil {
		return err
	}
	return RenderProgressTable(w, r.Progress)
}

// RenderArticleTable prints every opened article, most recent first.
func RenderArticleTable(w io.Writer, records []model.ReadingRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No articles opened yet.")
		return err
	}
	headers := []string{"Article", "Progress", "Last read", "Path"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			truncateCell(r.Title, titleColumnWidth),
			fmt.Sprintf("%.0f%%", r.Progress),
			humanize.Time(r.UpdatedAt),
			r.Path,
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
