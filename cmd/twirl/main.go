// Package main provides the CLI entrypoint for twirl.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/twirl/internal/capture"
	"github.com/verte-zerg/twirl/internal/config"
	"github.com/verte-zerg/twirl/internal/gamepad"
	"github.com/verte-zerg/twirl/internal/generator"
	"github.com/verte-zerg/twirl/internal/model"
	"github.com/verte-zerg/twirl/internal/practice"
	"github.com/verte-zerg/twirl/internal/sound"
	"github.com/verte-zerg/twirl/internal/stats"
	"github.com/verte-zerg/twirl/internal/statsui"
	"github.com/verte-zerg/twirl/internal/store"
	"github.com/verte-zerg/twirl/internal/tui"
)

const (
	defaultDrillLength = 20
	defaultCurveWindow = 10
)

var (
	practiceRotation      string
	practiceDrill         int
	practiceWeak          bool
	practiceTimeout       float64
	practiceErrorBehavior string
	practiceNoSounds      bool
	practiceWeakTop       int
	practiceWeakFactor    float64
	practiceWeakWindow    int

	statsRotation    string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsSteps       string
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := model.DefaultSettings()
	rootCmd := &cobra.Command{
		Use:           "twirl",
		Short:         "Rotation and keybind trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVarP(&practiceRotation, "rotation", "r", "", "rotation to practice (name or slug)")
	rootCmd.Flags().IntVar(&practiceDrill, "drill", 0, "practice N random steps instead of the rotation order")
	rootCmd.Flags().BoolVar(&practiceWeak, "weak", false, "bias drills toward weak steps")
	rootCmd.Flags().Float64Var(&practiceTimeout, "timeout", 0, "seconds per step before it counts as a miss (0 disables)")
	rootCmd.Flags().StringVar(&practiceErrorBehavior, "error-behavior", string(defaults.ErrorBehavior), "on a miss: stay, continue or restart")
	rootCmd.Flags().BoolVar(&practiceNoSounds, "no-sounds", false, "disable feedback sounds")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaults.WeakTop, "number of weak steps to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaults.WeakFactor, "extra weight for weak steps")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaults.WeakWindow, "number of recent sessions to compute weak steps")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newJobsCmd())
	rootCmd.AddCommand(newPadsCmd())
	rootCmd.AddCommand(newRecordCmd())
	rootCmd.AddCommand(newRotationCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	if practiceRotation == "" {
		return fmt.Errorf("--rotation is required (see: twirl rotation list)")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := resolveSettings(cmd, fileCfg.Practice)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	rot, err := st.GetRotation(ctx, practiceRotation)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("rotation %q not found (see: twirl rotation list)", practiceRotation)
		}
		return fmt.Errorf("failed to load rotation: %w", err)
	}
	steps := rot.BoundSteps()
	if len(steps) == 0 {
		return fmt.Errorf("rotation %q has no steps with a keybind (see: twirl record)", rot.Name)
	}
	if practiceWeak && practiceDrill == 0 {
		practiceDrill = defaultDrillLength
	}
	settings.Drill = practiceDrill > 0
	settings.FocusWeak = practiceWeak

	weak := map[string]struct{}{}
	if settings.FocusWeak {
		aggs, err := st.GetWeakSteps(ctx, settings.WeakWindow, rot.Name)
		if err != nil {
			logErrf("failed to load weak steps: %v\n", err)
		} else {
			weak = stats.SelectWeakSteps(aggs, settings.WeakTop)
			if len(weak) == 0 {
				logErrln("no misses recorded for this rotation yet; drilling evenly")
			}
		}
	}

	gen := generator.New()
	newSession := func() (*practice.Session, error) {
		run := steps
		if settings.Drill {
			run = gen.GenerateWeighted(steps, practiceDrill, weak, settings.WeakFactor)
		}
		return practice.NewSession(run, practice.Options{
			Rotation: rot.Name,
			Drill:    settings.Drill,
			Settings: settings,
		})
	}

	host, closePads := openHost(ctx, fileCfg.Gamepad)
	defer closePads()

	player := sound.NewPlayer()
	if settings.PlaySounds {
		if err := player.Init(); err != nil {
			logErrf("sounds disabled: %v\n", err)
		}
	}
	defer player.Close()

	m, err := tui.NewModel(tui.Options{
		Rotation:   rot,
		Settings:   settings,
		Capture:    captureOptions(fileCfg.Capture, true),
		Store:      st,
		Sounds:     player,
		Host:       host,
		NewSession: newSession,
	})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return m.Err()
}

func resolveSettings(cmd *cobra.Command, cfg config.PracticeConfig) (model.Settings, error) {
	settings := model.DefaultSettings()
	applyBoolConfig(&settings.ShowName, cfg.ShowName)
	applyBoolConfig(&settings.ShowKeybind, cfg.ShowKeybind)
	applyBoolConfig(&settings.PlaySounds, cfg.PlaySounds)
	if cmd.Flags().Changed("no-sounds") {
		settings.PlaySounds = !practiceNoSounds
	}
	applyStringConfig(cmd, "error-behavior", &practiceErrorBehavior, cfg.ErrorBehavior)
	applyFloatConfig(cmd, "timeout", &practiceTimeout, cfg.Timeout)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, cfg.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, cfg.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, cfg.WeakWindow)

	behavior, err := model.ParseErrorBehavior(practiceErrorBehavior)
	if err != nil {
		return model.Settings{}, err
	}
	settings.ErrorBehavior = behavior
	settings.Timeout = time.Duration(practiceTimeout * float64(time.Second))
	settings.WeakTop = practiceWeakTop
	settings.WeakFactor = practiceWeakFactor
	settings.WeakWindow = practiceWeakWindow
	if err := validateSettings(settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

func validateSettings(s model.Settings) error {
	if practiceDrill < 0 {
		return fmt.Errorf("--drill must be >= 0")
	}
	if s.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if s.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if s.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if s.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

// captureOptions maps the [capture] section onto capture options. Unset
// blacklists stay nil so the capture defaults apply. Only practice honours
// emit-immediately; recording always waits for the release.
func captureOptions(cfg config.CaptureConfig, forPractice bool) capture.Options {
	var opts capture.Options
	if forPractice {
		opts.EmitImmediately = true
		if cfg.EmitImmediately != nil {
			opts.EmitImmediately = *cfg.EmitImmediately
		}
	}
	if cfg.CancelKey != nil {
		opts.CancelKey = *cfg.CancelKey
	}
	if cfg.CancelButton != nil {
		opts.CancelButton = capture.Idx(*cfg.CancelButton)
	}
	opts.BlacklistedKeyboardCodes = cfg.BlacklistKeys
	opts.BlacklistedGamepadButtons = cfg.BlacklistButtons
	opts.BlacklistedMouseButtons = cfg.BlacklistMouse
	return opts
}

// openHost starts reading joysticks and returns a host polling them. Without
// any device the host only carries terminal input.
func openHost(ctx context.Context, cfg config.GamepadConfig) (*tui.Host, func()) {
	pattern := gamepad.DefaultPattern
	if cfg.Devices != nil && *cfg.Devices != "" {
		pattern = *cfg.Devices
	}
	interval := tui.DefaultPollInterval
	if cfg.PollMs != nil && *cfg.PollMs > 0 {
		interval = time.Duration(*cfg.PollMs) * time.Millisecond
	}
	reader, err := gamepad.Open(ctx, pattern)
	if err != nil {
		logErrf("gamepads disabled: %v\n", err)
		return tui.NewHost(nil, interval), func() {}
	}
	closeReader := func() {
		if cerr := reader.Close(); cerr != nil {
			logErrf("failed to close gamepads: %v\n", cerr)
		}
	}
	if len(reader.Devices()) == 0 {
		closeReader()
		return tui.NewHost(nil, interval), func() {}
	}
	return tui.NewHost(reader, interval), closeReader
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
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
	if err := config.WriteTemplate(path); err != nil {
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

func newJobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List job identifiers by role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, role := range model.Roles {
				if _, err := fmt.Fprintln(out, role.Name); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				for _, job := range model.JobsByRole(role.ID) {
					if _, err := fmt.Fprintf(out, "  %s %s\n", runewidth.FillRight(job.ID, 6), job.Name); err != nil {
						return fmt.Errorf("failed to write output: %w", err)
					}
				}
			}
			return nil
		},
	}
}

func newPadsCmd() *cobra.Command {
	var watch time.Duration
	cmd := &cobra.Command{
		Use:   "pads",
		Short: "List joystick devices and held buttons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			pattern := gamepad.DefaultPattern
			if fileCfg.Gamepad.Devices != nil && *fileCfg.Gamepad.Devices != "" {
				pattern = *fileCfg.Gamepad.Devices
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), watch)
			defer cancel()
			reader, err := gamepad.Open(ctx, pattern)
			if err != nil {
				return fmt.Errorf("failed to open gamepads: %w", err)
			}
			defer func() {
				if cerr := reader.Close(); cerr != nil {
					logErrf("failed to close gamepads: %v\n", cerr)
				}
			}()
			devices := reader.Devices()
			if len(devices) == 0 {
				return fmt.Errorf("no joystick devices match %s", pattern)
			}
			<-ctx.Done()
			out := cmd.OutOrStdout()
			for i, pad := range reader.Gamepads() {
				var held []string
				for b, pressed := range pad.Buttons {
					if pressed {
						held = append(held, capture.PadButtonName(b))
					}
				}
				if _, err := fmt.Fprintf(out, "%d  %s  buttons=%d  held=%s\n", i, devices[i], len(pad.Buttons), strings.Join(held, ",")); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&watch, "wait", 200*time.Millisecond, "how long to read events before reporting")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVarP(&statsRotation, "rotation", "r", "", "rotation filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsSteps, "steps", "", "comma-separated steps for the step table")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print text instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Rotation:    statsRotation,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Steps:       statsSteps,
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printStats(cmd, st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build stats: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderStepTable(out, report.StepAggsWindow, report.Keybinds); err != nil {
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// applyBoolConfig sets target for settings that have no flag of their own.
func applyBoolConfig(target, value *bool) {
	if value == nil {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
