// Package main provides the CLI entrypoint for tuiread.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/tuiread/internal/article"
	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/logging"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/reader"
	"github.com/verte-zerg/tuiread/internal/reward"
	"github.com/verte-zerg/tuiread/internal/settings"
	"github.com/verte-zerg/tuiread/internal/store"
	"github.com/verte-zerg/tuiread/internal/visibility"
	"github.com/verte-zerg/tuiread/internal/wallet"
	"github.com/verte-zerg/tuiread/internal/walletui"
)

const (
	defaultWidth       = 0.70
	defaultBase        = 50.0
	defaultMultiplier  = 1.0
	defaultObserver    = reader.ObserverNative
	defaultCurveWindow = 5
)

var (
	readWidth      float64
	readThreshold  float64
	readObserver   string
	readPoll       time.Duration
	readBase       float64
	readMultiplier float64
	readWatch      bool
	readDebug      bool

	walletSince       string
	walletLast        int
	walletCurveWindow int
	walletPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuiread <file>",
		Short:         "Read articles in the terminal and collect rewards",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.ExactArgs(1),
		RunE:          runReadCmd,
	}

	rootCmd.Flags().Float64Var(&readWidth, "width", defaultWidth, "content width as a share of the terminal (0-1)")
	rootCmd.Flags().Float64Var(&readThreshold, "threshold", visibility.DefaultThreshold, "visible share of a paragraph that counts as read (0-1)")
	rootCmd.Flags().StringVar(&readObserver, "observer", defaultObserver, "visibility observer: native, polling or none")
	rootCmd.Flags().DurationVar(&readPoll, "poll", visibility.DefaultPollInterval, "poll interval for the polling observer")
	rootCmd.Flags().Float64Var(&readBase, "base", defaultBase, "base reward per article")
	rootCmd.Flags().Float64Var(&readMultiplier, "multiplier", defaultMultiplier, "reward multiplier (values above 1 are a bonus)")
	rootCmd.Flags().BoolVar(&readWatch, "watch", false, "reload the article when the file changes")
	rootCmd.Flags().BoolVar(&readDebug, "debug", false, "write debug entries to the log file")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newArticlesCmd())
	rootCmd.AddCommand(newWalletCmd())
	rootCmd.AddCommand(newSoundCmd())

	return rootCmd
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "width", &readWidth, fileCfg.Reader.WidthPct)
	applyFloatConfig(cmd, "threshold", &readThreshold, fileCfg.Reader.Threshold)
	applyStringConfig(cmd, "observer", &readObserver, fileCfg.Reader.Observer)
	if err := applyDurationConfig(cmd, "poll", &readPoll, fileCfg.Reader.Poll); err != nil {
		return err
	}
	applyBoolConfig(cmd, "watch", &readWatch, fileCfg.Reader.Watch)
	applyBoolConfig(cmd, "debug", &readDebug, fileCfg.Reader.Debug)
	applyFloatConfig(cmd, "base", &readBase, fileCfg.Reward.Base)
	applyFloatConfig(cmd, "multiplier", &readMultiplier, fileCfg.Reward.Multiplier)

	cfg := model.Config{
		WidthPct:     readWidth,
		Threshold:    readThreshold,
		RewardBase:   readBase,
		RewardMult:   readMultiplier,
		Observer:     strings.ToLower(strings.TrimSpace(readObserver)),
		PollInterval: readPoll,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	art, err := article.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load article: %w", err)
	}

	logger, err := logging.New(config.DefaultLogPath(), readDebug)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger.Info("opening article", zap.String("path", art.Path), zap.String("article", art.ID), zap.Int("paragraphs", len(art.Paragraphs)))

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	st.SetReward(reward.NewAmount(cfg.RewardBase, cfg.RewardMult))

	prefs, err := settings.Load(cmd.Context(), st)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	m := reader.NewModel(cfg, art, st, st, prefs, settings.NewChime(os.Stderr, prefs), logger)
	defer m.Close()
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if readWatch {
		ctx, cancel := context.WithCancel(cmd.Context())
		done, err := article.Watch(ctx, art.Path, func(a model.Article, err error) {
			program.Send(reader.ArticleMsg{Article: a, Err: err})
		})
		if err != nil {
			cancel()
			return err
		}
		defer func() {
			cancel()
			<-done
		}()
	}
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run reader: %w", err)
	}

	rw := m.Reward()
	summary := fmt.Sprintf("%s: %.0f%% read", art.Title, rw.Progress())
	switch rw.State() {
	case reward.Eligible:
		summary += fmt.Sprintf(", reward %s unclaimed", rw.Amount().Label())
	case reward.Claimed:
		summary += ", collected " + reward.FormatAmount(rw.Collected())
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), summary)
	return err
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newArticlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "articles",
		Short: "List opened articles and reading progress",
		Args:  cobra.NoArgs,
		RunE:  runArticlesCmd,
	}
}

func runArticlesCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	records, err := st.ListProgress(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list articles: %w", err)
	}
	if err := wallet.RenderArticleTable(cmd.OutOrStdout(), records); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Show collected rewards",
		Args:  cobra.NoArgs,
		RunE:  runWalletCmd,
	}
	cmd.Flags().StringVar(&walletSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&walletLast, "last", 0, "limit to last N claims")
	cmd.Flags().IntVar(&walletCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&walletPlain, "plain", false, "print a plain-text report instead of the TUI")
	return cmd
}

func runWalletCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if walletSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", walletSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if walletLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if walletCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.WalletConfig{
		Since:       sinceTime,
		Last:        walletLast,
		CurveWindow: walletCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if walletPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := wallet.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build wallet: %w", err)
		}
		return wallet.RenderReport(cmd.OutOrStdout(), report, cfg.CurveWindow)
	}

	program := tea.NewProgram(walletui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run wallet TUI: %w", err)
	}
	return nil
}

func newSoundCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "sound [on|off]",
		Short:     "Show or change the claim sound preference",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE:      runSoundCmd,
	}
}

func runSoundCmd(cmd *cobra.Command, args []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return updateSound(cmd.Context(), cmd, st, args)
}

func updateSound(ctx context.Context, cmd *cobra.Command, st settings.PreferenceStore, args []string) error {
	prefs, err := settings.Load(ctx, st)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if len(args) == 1 {
		if err := prefs.SetSoundEnabled(ctx, args[0] == "on"); err != nil {
			return err
		}
	}
	state := "off"
	if prefs.SoundEnabled() {
		state = "on"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "sound: %s\n", state)
	return err
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(*value))
	if err != nil {
		return fmt.Errorf("invalid %s value in config: %w", name, err)
	}
	*target = parsed
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuiread configuration
# Uncomment a value to enable it. CLI flags override config values.

[reader]
# width = %.2f            # Content width as a share of the terminal (0-1)
# threshold = %.2f        # Visible share of a paragraph that counts as read (0-1)
# observer = %q      # Visibility observer: native, polling or none
# poll = %q           # Poll interval for the polling observer
# watch = false           # Reload the article when the file changes
# debug = false           # Write debug entries to the log file

[reward]
# base = %.1f             # Base reward per article
# multiplier = %.1f        # Reward multiplier (values above 1 are a bonus)
`,
		defaultWidth,
		visibility.DefaultThreshold,
		defaultObserver,
		visibility.DefaultPollInterval.String(),
		defaultBase,
		defaultMultiplier,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.WidthPct <= 0 || cfg.WidthPct > 1 {
		return fmt.Errorf("--width must be greater than 0 and at most 1")
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return fmt.Errorf("--threshold must be greater than 0 and at most 1")
	}
	switch cfg.Observer {
	case reader.ObserverNative, reader.ObserverPolling, reader.ObserverNone:
	default:
		return fmt.Errorf("--observer must be one of native, polling, none")
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("--poll must be > 0")
	}
	if cfg.RewardBase < 0 {
		return fmt.Errorf("--base must be >= 0")
	}
	if cfg.RewardMult <= 0 {
		return fmt.Errorf("--multiplier must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
