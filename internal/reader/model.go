// Package reader provides the Bubble Tea article reader.
package reader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/reward"
	"github.com/verte-zerg/tuiread/internal/settings"
	"github.com/verte-zerg/tuiread/internal/visibility"
)

// Observer modes accepted in model.Config.Observer.
const (
	ObserverNative  = "native"
	ObserverPolling = "polling"
	ObserverNone    = "none"
)

const (
	defaultWidthPct = 0.70
	headerHeight    = 2
	footerHeight    = 1
	barWidth        = 20
	claimTimeout    = 10 * time.Second
)

// Store persists reading progress.
type Store interface {
	SaveProgress(ctx context.Context, art model.Article, progress float64) error
	LoadProgress(ctx context.Context, articleID string) (float64, error)
	ClaimedAmount(ctx context.Context, articleID string) (float64, bool, error)
}

type claimResultMsg struct {
	result model.ClaimResult
	err    error
}

type pollTickMsg struct{}

// ArticleMsg delivers a reloaded article, or the error that prevented the
// reload.
type ArticleMsg struct {
	Article model.Article
	Err     error
}

// block is the laid-out position of one paragraph in content lines.
type block struct {
	id string

	mu     sync.Mutex
	top    int
	height int
	width  int
}

func (b *block) Bounds() (visibility.Rect, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.height == 0 {
		return visibility.Rect{}, false
	}
	return visibility.Rect{Y: b.top, Width: b.width, Height: b.height}, true
}

func (b *block) place(top, height, width int) {
	b.mu.Lock()
	b.top, b.height, b.width = top, height, width
	b.mu.Unlock()
}

// rectBox shares the current viewport with a polling observer.
type rectBox struct {
	mu    sync.Mutex
	rect  visibility.Rect
	valid bool
}

func (r *rectBox) set(rect visibility.Rect) {
	r.mu.Lock()
	r.rect, r.valid = rect, true
	r.mu.Unlock()
}

func (r *rectBox) get() (visibility.Rect, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rect, r.valid
}

// Model implements the Bubble Tea reading UI.
type Model struct {
	config   model.Config
	article  model.Article
	store    Store
	claimer  reward.Claimer
	reward   *reward.Model
	settings *settings.Settings
	chime    *settings.Chime
	logger   *zap.Logger

	tracker    *visibility.Tracker
	native     *visibility.NativeObserver
	polling    bool
	viewRect   *rectBox
	blocks     []*block
	unregister []func()
	seen       map[string]struct{}

	viewport viewport.Model
	bar      progress.Model
	ready    bool

	width  int
	height int

	status    string
	statusErr bool
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	bonusStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	claimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a reader for art. Stored progress and an earlier claim
// are restored from st.
func NewModel(cfg model.Config, art model.Article, st Store, claimer reward.Claimer, prefs *settings.Settings, chime *settings.Chime, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WidthPct <= 0 || cfg.WidthPct > 1 {
		cfg.WidthPct = defaultWidthPct
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = visibility.DefaultThreshold
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = visibility.DefaultPollInterval
	}
	m := &Model{
		config:   cfg,
		article:  art,
		store:    st,
		claimer:  claimer,
		reward:   reward.NewModel(art.ID, reward.NewAmount(cfg.RewardBase, cfg.RewardMult)),
		settings: prefs,
		chime:    chime,
		logger:   logger.With(zap.String("article", art.ID)),
		viewRect: &rectBox{},
		seen:     map[string]struct{}{},
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
	}
	m.tracker = visibility.NewTracker(m.newObserver())
	if !m.tracker.Available() {
		m.logger.Info("region observer unavailable, using viewport containment only", zap.String("observer", cfg.Observer))
	}
	m.reward.OnChange(func(from, to reward.State) {
		m.logger.Info("reward state changed", zap.Stringer("from", from), zap.Stringer("to", to))
	})
	m.blocks = newBlocks(art)
	m.restore()
	return m
}

func newBlocks(art model.Article) []*block {
	blocks := make([]*block, len(art.Paragraphs))
	for i := range art.Paragraphs {
		blocks[i] = &block{id: "p" + strconv.Itoa(i)}
	}
	return blocks
}

func (m *Model) newObserver() visibility.RegionObserver {
	switch m.config.Observer {
	case ObserverNone:
		return visibility.NullObserver{}
	case ObserverPolling:
		m.polling = true
		return visibility.NewPollingObserver(m.viewRect.get, m.config.PollInterval, m.config.Threshold)
	default:
		m.native = visibility.NewNativeObserver(m.config.Threshold)
		return m.native
	}
}

func (m *Model) restore() {
	if m.store == nil {
		return
	}
	ctx := context.Background()
	collected, claimed, err := m.store.ClaimedAmount(ctx, m.article.ID)
	if err != nil {
		m.logger.Warn("failed to load claim", zap.Error(err))
	} else if claimed {
		m.reward.Restore(collected)
		return
	}
	pct, err := m.store.LoadProgress(ctx, m.article.ID)
	if err != nil {
		m.logger.Warn("failed to load progress", zap.Error(err))
		return
	}
	m.reward.SetProgress(pct)
}

// Reward exposes the reward model driving the footer.
func (m *Model) Reward() *reward.Model {
	return m.reward
}

// Close releases the region observer.
func (m *Model) Close() {
	for _, fn := range m.unregister {
		fn()
	}
	m.unregister = nil
	m.tracker.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.polling && m.tracker.Available() {
		return m.pollTick()
	}
	return nil
}

func (m *Model) pollTick() tea.Cmd {
	return tea.Tick(m.config.PollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case pollTickMsg:
		m.collectSeen()
		return m, m.pollTick()
	case claimResultMsg:
		m.finishClaim(msg)
		return m, nil
	case ArticleMsg:
		m.reload(msg)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.saveProgress()
			m.Close()
			return m, tea.Quit
		case "c":
			return m, m.startClaim()
		case "m":
			m.toggleSound()
			return m, nil
		case "g", "home":
			m.viewport.GotoTop()
			m.observe()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			m.observe()
			return m, nil
		}
	}
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.observe()
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return ""
	}
	header := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, titleStyle.Render(m.article.Title))
	body := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.viewport.View())
	footer := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.renderFooter())
	return header + "\n\n" + body + "\n" + footer
}

// layout wraps paragraphs to the content width and places their blocks.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	contentWidth := max(1, int(float64(m.width)*m.config.WidthPct))
	bodyHeight := max(1, m.height-headerHeight-footerHeight)

	var lines []string
	for i, para := range m.article.Paragraphs {
		if i > 0 {
			lines = append(lines, "")
		}
		wrapped := wrapText(para, contentWidth)
		m.blocks[i].place(len(lines), len(wrapped), contentWidth)
		lines = append(lines, wrapped...)
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = bodyHeight
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.SetYOffset(m.viewport.YOffset)

	if m.unregister == nil {
		m.unregister = make([]func(), 0, len(m.blocks))
		for _, b := range m.blocks {
			m.unregister = append(m.unregister, m.tracker.Register(b.id, b))
		}
	}
	m.observe()
}

// reload swaps in a changed article. Paragraph regions are registered
// again, so observations of the old layout are dropped.
func (m *Model) reload(msg ArticleMsg) {
	if msg.Err != nil {
		m.logger.Warn("failed to reload article", zap.Error(msg.Err))
		m.setStatus("Reload failed", true)
		return
	}
	if msg.Article.ID != m.article.ID {
		return
	}
	for _, fn := range m.unregister {
		fn()
	}
	m.unregister = nil
	m.article = msg.Article
	m.blocks = newBlocks(msg.Article)
	m.seen = map[string]struct{}{}
	m.logger.Info("article reloaded", zap.Int("paragraphs", len(m.blocks)))
	m.layout()
}

func (m *Model) viewportRect() visibility.Rect {
	return visibility.Rect{Y: m.viewport.YOffset, Width: m.viewport.Width, Height: m.viewport.Height}
}

// observe publishes the viewport and recomputes reading progress.
func (m *Model) observe() {
	if !m.ready {
		return
	}
	vp := m.viewportRect()
	m.viewRect.set(vp)
	if m.native != nil {
		m.native.Frame(vp)
	}
	m.collectSeen()
}

// collectSeen marks paragraphs that are visible, or that fill the whole
// viewport, as read.
func (m *Model) collectSeen() {
	if len(m.blocks) == 0 || !m.ready {
		return
	}
	vp := m.viewportRect()
	for _, b := range m.blocks {
		if _, ok := m.seen[b.id]; ok {
			continue
		}
		bounds, ok := b.Bounds()
		if !ok {
			continue
		}
		if m.tracker.IsVisible(b.id) || visibility.IsRectInViewport(bounds, vp) || visibility.IsRectInViewport(vp, bounds) {
			m.seen[b.id] = struct{}{}
		}
	}
	before := m.reward.State()
	after := m.reward.SetProgress(100 * float64(len(m.seen)) / float64(len(m.blocks)))
	if before == reward.NotEligible && after == reward.Eligible {
		m.saveProgress()
	}
}

func (m *Model) saveProgress() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveProgress(context.Background(), m.article, m.reward.Progress()); err != nil {
		m.logger.Warn("failed to save progress", zap.Error(err))
	}
}

func (m *Model) startClaim() tea.Cmd {
	if m.claimer == nil || !m.reward.Begin() {
		return nil
	}
	m.setStatus("", false)
	claimer := m.claimer
	st := m.store
	art := m.article
	pct := m.reward.Progress()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), claimTimeout)
		defer cancel()
		// The claimer checks stored progress, which may lag behind a failed save.
		if st != nil {
			if err := st.SaveProgress(ctx, art, pct); err != nil {
				return claimResultMsg{err: fmt.Errorf("save progress: %w", err)}
			}
		}
		res, err := claimer.ClaimReward(ctx, art.ID)
		return claimResultMsg{result: res, err: err}
	}
}

func (m *Model) finishClaim(msg claimResultMsg) {
	if err := m.reward.Finish(msg.result, msg.err); err != nil {
		if errors.Is(err, reward.ErrNoClaimInFlight) {
			return
		}
		m.logger.Warn("claim failed", zap.Error(err))
		m.setStatus("Claim failed, press c to retry", true)
		return
	}
	if msg.result.AlreadyClaimed {
		m.setStatus("Already collected "+reward.FormatAmount(msg.result.AmountCollected), false)
	} else {
		m.setStatus("Collected "+reward.FormatAmount(msg.result.AmountCollected), false)
	}
	m.chime.Play()
}

func (m *Model) toggleSound() {
	if m.settings == nil {
		return
	}
	on, err := m.settings.ToggleSound(context.Background())
	if err != nil {
		m.logger.Warn("failed to toggle sound", zap.Error(err))
		m.setStatus("Could not save sound preference", true)
		return
	}
	m.logger.Debug("sound toggled", zap.Bool("enabled", on))
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) renderFooter() string {
	pct := m.reward.Progress()
	segments := []string{
		m.bar.ViewAs(pct / reward.CompleteProgress),
		footerStyle.Render(fmt.Sprintf("Progress %d%%", int(pct))),
	}

	amount := m.reward.Amount()
	label := footerStyle.Render("Reward " + amount.Display())
	if amount.Bonus() {
		label += " " + bonusStyle.Render(amount.BonusLabel())
	}
	segments = append(segments, label)

	switch m.reward.State() {
	case reward.Eligible:
		segments = append(segments, claimStyle.Render("[c] claim"))
	case reward.Claiming:
		segments = append(segments, footerStyle.Render("Claiming…"))
	case reward.Claimed:
		segments = append(segments, claimStyle.Render("Claimed "+reward.FormatAmount(m.reward.Collected())))
	}

	if m.settings != nil {
		sound := "sound off"
		if m.settings.SoundEnabled() {
			sound = "sound on"
		}
		segments = append(segments, footerStyle.Render("[m] "+sound))
	}
	if m.status != "" {
		style := footerStyle
		if m.statusErr {
			style = errorStyle
		}
		segments = append(segments, style.Render(m.status))
	}
	return strings.Join(segments, "  ")
}
