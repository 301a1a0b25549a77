package walletui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/reward"
	"github.com/verte-zerg/tuiread/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuiread.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	for i, mult := range []float64{1, 1.5} {
		st.SetReward(reward.NewAmount(50, mult))
		art := model.Article{ID: string(rune('a' + i)), Path: "/tmp/a.md", Title: "Essay " + string(rune('A'+i))}
		if err := st.SaveProgress(ctx, art, 100); err != nil {
			t.Fatalf("save: %v", err)
		}
		if _, err := st.ClaimReward(ctx, art.ID); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}
	return st
}

func TestWalletOverviewShowsBalance(t *testing.T) {
	m := NewModel(seededStore(t), model.WalletConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	for _, want := range []string{"Overview", "Balance", "125.00", "Earnings (window 1)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestWalletClaimsTab(t *testing.T) {
	m := NewModel(seededStore(t), model.WalletConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabClaims {
		t.Fatalf("expected claims tab, got %d", m.activeTab)
	}
	view := m.View()
	for _, want := range []string{"Essay B", "75.00", "BONUS x1.5"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestWalletFilterAppliesLast(t *testing.T) {
	m := NewModel(seededStore(t), model.WalletConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[1].SetValue("1")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter applied, got error %q", m.filterError)
	}
	if len(m.report.Claims) != 1 || m.report.Summary.Total != 75 {
		t.Fatalf("expected last claim only, got %+v", m.report.Summary)
	}
}

func TestWalletFilterRejectsBadDate(t *testing.T) {
	m := NewModel(seededStore(t), model.WalletConfig{CurveWindow: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.filterInputs[0].SetValue("yesterday")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if got := nextCurveWindow(1); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := nextCurveWindow(7); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := prevCurveWindow(5); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := prevCurveWindow(12); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}
