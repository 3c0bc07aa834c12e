// Package main provides the CLI entrypoint for guessr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/guessr/internal/config"
	"github.com/verte-zerg/guessr/internal/console"
	"github.com/verte-zerg/guessr/internal/game"
	"github.com/verte-zerg/guessr/internal/input"
	"github.com/verte-zerg/guessr/internal/model"
	"github.com/verte-zerg/guessr/internal/rng"
	"github.com/verte-zerg/guessr/internal/stats"
	"github.com/verte-zerg/guessr/internal/statsui"
	"github.com/verte-zerg/guessr/internal/store"
	"github.com/verte-zerg/guessr/internal/tui"
)

const (
	defaultMin         = 1
	defaultMax         = 10
	defaultExit        = "q"
	defaultCurveWindow = 5
	sourceTUI          = "tui"
)

var (
	playMin      int
	playMax      int
	playExit     string
	playAttempts int
	playInput    string
	playSeed     int64
	playTUI      bool
	playNoSave   bool

	statsSince       string
	statsLast        int
	statsCurveWindow int
)

func main() {
	// Optional .env with XDG_* overrides.
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "guessr",
		Short:         "Guess the secret number",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().IntVar(&playMin, "min", defaultMin, "smallest possible secret")
	rootCmd.Flags().IntVar(&playMax, "max", defaultMax, "largest possible secret")
	rootCmd.Flags().StringVar(&playExit, "exit", defaultExit, "token that ends the game (case-insensitive)")
	rootCmd.Flags().IntVar(&playAttempts, "attempts", 0, "guesses allowed per number before it is revealed (0 = unlimited)")
	rootCmd.Flags().Lookup("attempts").NoOptDefVal = fmt.Sprintf("%d", game.DefaultMaxAttempts)
	rootCmd.Flags().StringVar(&playInput, "input", "", "read guesses from a file instead of the terminal")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0 = time based)")
	rootCmd.Flags().BoolVar(&playTUI, "tui", false, "play in a full-screen terminal UI")
	rootCmd.Flags().BoolVar(&playNoSave, "no-save", false, "do not record the game in history")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "min", &playMin, fileCfg.Game.Min)
	applyIntConfig(cmd, "max", &playMax, fileCfg.Game.Max)
	applyStringConfig(cmd, "exit", &playExit, fileCfg.Game.ExitToken)
	applyIntConfig(cmd, "attempts", &playAttempts, fileCfg.Game.MaxAttempts)
	applyStringConfig(cmd, "input", &playInput, fileCfg.Game.InputPath)
	applyInt64Config(cmd, "seed", &playSeed, fileCfg.Game.Seed)
	applyBoolConfig(cmd, "tui", &playTUI, fileCfg.Game.TUI)
	if fileCfg.Game.Save != nil && !cmd.Flags().Changed("no-save") {
		playNoSave = !*fileCfg.Game.Save
	}

	cfg := model.Config{
		Min:         playMin,
		Max:         playMax,
		ExitToken:   strings.TrimSpace(playExit),
		MaxAttempts: playAttempts,
		InputPath:   playInput,
		Seed:        playSeed,
		TUI:         playTUI,
		Save:        !playNoSave,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	rules := game.Rules{
		Min:         cfg.Min,
		Max:         cfg.Max,
		ExitToken:   cfg.ExitToken,
		MaxAttempts: cfg.MaxAttempts,
	}
	session, err := game.New(rules, rng.New(cfg.Seed))
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	startedAt := time.Now()
	var source string
	if cfg.TUI {
		source = sourceTUI
		if err := runTUI(session, cmd.OutOrStdout()); err != nil {
			return err
		}
	} else {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		src, err := input.Open(cfg.InputPath, cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := src.Close(); cerr != nil {
				logErrf("failed to close input: %v\n", cerr)
			}
		}()
		source = src.Label
		if _, err := console.Run(ctx, session, src, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("failed to run game: %w", err)
		}
	}

	if cfg.Save {
		saveGame(session, source, startedAt, time.Now())
	}
	return nil
}

func runTUI(session *game.Session, out io.Writer) error {
	m := tui.NewModel(session)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	summary, finished := m.Summary()
	if !finished {
		var err error
		if summary, err = session.Quit(); err != nil {
			return err
		}
	}
	lines := session.Rules().Describe(game.Result{Outcome: game.Exit, Summary: summary})
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func saveGame(session *game.Session, source string, startedAt, endedAt time.Time) {
	if session.Summary().TotalGuesses == 0 {
		return
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open db: %v\n", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	record := session.Record(source, startedAt, endedAt)
	if _, err := st.InsertGame(context.Background(), record, session.Rounds()); err != nil {
		logErrf("failed to save game: %v\n", err)
	}
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
	if err := ensureConfigFile(path); err != nil {
		return err
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

func ensureConfigFile(path string) error {
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
	return nil
}

func addStatsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N games")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse game history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addStatsFlags(cmd)
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print game history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	addStatsFlags(cmd)
	return cmd
}

func resolveStatsConfig(cmd *cobra.Command) (model.StatsConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.StatsConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)

	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveStatsConfig(cmd)
	if err != nil {
		return err
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

	model := statsui.NewModel(st, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveStatsConfig(cmd)
	if err != nil {
		return err
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

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if err := report.Render(cmd.OutOrStdout(), cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
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

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# guessr configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# min = %d                # Smallest possible secret
# max = %d               # Largest possible secret
# exit = %q              # Token that ends the game (case-insensitive)
# attempts = 0            # Guesses per number before it is revealed (0 = unlimited)
# input = "guesses.txt"   # Read guesses from a file
# seed = 0                # Random seed (0 = time based)
# tui = false             # Play in a full-screen terminal UI
# save = true             # Record games in history

[stats]
# curve-window = %d       # Moving average window
`,
		defaultMin,
		defaultMax,
		defaultExit,
		defaultCurveWindow,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Min > cfg.Max {
		return fmt.Errorf("--min must be <= --max")
	}
	if cfg.MaxAttempts < 0 {
		return fmt.Errorf("--attempts must be >= 0")
	}
	if cfg.ExitToken == "" {
		return fmt.Errorf("--exit must not be empty")
	}
	if strings.ContainsFunc(cfg.ExitToken, isSpace) {
		return fmt.Errorf("--exit must be a single word")
	}
	if cfg.TUI && cfg.InputPath != "" {
		return fmt.Errorf("--tui cannot be combined with --input")
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
