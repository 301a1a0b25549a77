package wallet

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/reward"
	"github.com/verte-zerg/tuiread/internal/store"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	claims := []model.ClaimRecord{
		{Title: "a", Base: 50, Multiplier: 1, Amount: 50, ClaimedAt: now.Add(-time.Hour)},
		{Title: "b", Base: 50, Multiplier: 1.5, Amount: 75, ClaimedAt: now},
	}
	progress := []model.ReadingRecord{
		{Title: "a", Progress: 100},
		{Title: "c", Progress: 40},
	}
	s := Summarize(claims, progress)
	if s.Claims != 2 || s.BonusClaims != 1 || s.Total != 125 || s.Best != 75 || s.InProgress != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if !s.LastClaimAt.Equal(now) {
		t.Fatalf("unexpected last claim: %v", s.LastClaimAt)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	got := Sparkline([]float64{0, 10})
	if got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Summary{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No rewards claimed yet.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestBuildReportAndRender(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiread.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()

	for i, mult := range []float64{1, 1.5, 2} {
		st.SetReward(reward.NewAmount(50, mult))
		art := model.Article{ID: string(rune('a' + i)), Path: "/tmp/x.md", Title: "Article " + string(rune('A'+i))}
		if err := st.SaveProgress(ctx, art, 100); err != nil {
			t.Fatalf("save: %v", err)
		}
		if _, err := st.ClaimReward(ctx, art.ID); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}
	if err := st.SaveProgress(ctx, model.Article{ID: "z", Path: "/tmp/z.md", Title: "Unfinished"}, 30); err != nil {
		t.Fatalf("save: %v", err)
	}

	report, err := BuildReport(ctx, st, model.WalletConfig{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(report.Claims))
	}
	if report.Summary.Total != 175 {
		t.Fatalf("expected total 175, got %v", report.Summary.Total)
	}

	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 2); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Balance: 175.00", "BONUS x2", "BONUS x1.5", "Unfinished", "30%", "Earnings ["} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderArticleTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderArticleTable(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No articles opened yet.") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	buf.Reset()
	records := []model.ReadingRecord{
		{Title: "Done", Path: "/tmp/done.md", Progress: 100, UpdatedAt: time.Now()},
		{Title: "Half", Path: "/tmp/half.md", Progress: 50, UpdatedAt: time.Now()},
	}
	if err := RenderArticleTable(&buf, records); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Article", "Done", "100%", "/tmp/half.md", " 50%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
