package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/twirl/internal/capture"
	"github.com/verte-zerg/twirl/internal/config"
	"github.com/verte-zerg/twirl/internal/model"
	"github.com/verte-zerg/twirl/internal/steplist"
	"github.com/verte-zerg/twirl/internal/store"
	"github.com/verte-zerg/twirl/internal/tui"
)

func newRotationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotation",
		Short: "Manage rotations",
	}
	cmd.AddCommand(newRotationListCmd())
	cmd.AddCommand(newRotationNewCmd())
	cmd.AddCommand(newRotationShowCmd())
	cmd.AddCommand(newRotationDeleteCmd())
	cmd.AddCommand(newRotationAddStepCmd())
	cmd.AddCommand(newRotationBindCmd())
	cmd.AddCommand(newRotationImportCmd())
	return cmd
}

// withStore opens the database for the duration of fn.
func withStore(fn func(st *store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	return fn(st)
}

func rotationError(name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("rotation %q not found", name)
	}
	return fmt.Errorf("failed to load rotation: %w", err)
}

func newRotationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(st *store.Store) error {
				rotations, err := st.ListRotations(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list rotations: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(rotations) == 0 {
					_, err := fmt.Fprintln(out, "No rotations yet. Create one with: twirl rotation new <name>")
					return err
				}
				nameWidth := len("Name")
				for _, r := range rotations {
					nameWidth = max(nameWidth, runewidth.StringWidth(r.Name))
				}
				if _, err := fmt.Fprintf(out, "%s  %-6s  %s\n", runewidth.FillRight("Name", nameWidth), "Job", "Steps"); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				for _, r := range rotations {
					steps := fmt.Sprintf("%d/%d bound", len(r.BoundSteps()), len(r.Steps))
					if _, err := fmt.Fprintf(out, "%s  %-6s  %s\n", runewidth.FillRight(r.Name, nameWidth), r.Job, steps); err != nil {
						return fmt.Errorf("failed to write output: %w", err)
					}
				}
				return nil
			})
		},
	}
}

func newRotationNewCmd() *cobra.Command {
	var job string
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				rot, err := st.CreateRotation(cmd.Context(), args[0], job)
				if err != nil {
					return fmt.Errorf("failed to create rotation: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", rot.Name, rot.Slug)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&job, "job", "", "job identifier (see: twirl jobs)")
	return cmd
}

func newRotationShowCmd() *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the steps of a rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				rot, err := st.GetRotation(cmd.Context(), args[0])
				if err != nil {
					return rotationError(args[0], err)
				}
				out := cmd.OutOrStdout()
				if export {
					return steplist.Format(out, rot.Steps)
				}
				title := rot.Name
				if job, ok := model.JobByID(rot.Job); ok {
					title += " · " + job.Name
				}
				if _, err := fmt.Fprintln(out, title); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				nameWidth := 4
				for _, s := range rot.Steps {
					nameWidth = max(nameWidth, runewidth.StringWidth(s.Name))
				}
				for i, s := range rot.Steps {
					line := fmt.Sprintf("%3d  %s  %s", i+1, runewidth.FillRight(s.Name, nameWidth), s.Keybind())
					if _, err := fmt.Fprintln(out, line); err != nil {
						return fmt.Errorf("failed to write output: %w", err)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "print the steps in import format")
	return cmd
}

func newRotationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a rotation (its session history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				if err := st.DeleteRotation(cmd.Context(), args[0]); err != nil {
					return rotationError(args[0], err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return err
			})
		},
	}
}

func newRotationAddStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-step <rotation> <step> [keybind]",
		Short: "Append a step, optionally with a keybind",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			step := model.Step{Name: args[1]}
			if len(args) == 3 {
				in, err := capture.ParseKeybind(args[2])
				if err != nil {
					return err
				}
				step.Key = &in
			}
			return withStore(func(st *store.Store) error {
				added, err := st.AddStep(cmd.Context(), args[0], step)
				if err != nil {
					return rotationError(args[0], err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s [%s]\n", added.Name, added.Keybind())
				return err
			})
		},
	}
}

func newRotationBindCmd() *cobra.Command {
	var clearKey bool
	cmd := &cobra.Command{
		Use:   "bind <rotation> <step> [keybind]",
		Short: "Set or clear the keybind of a step",
		Long: "Set the keybind of a step from text such as \"Ctrl+1\", \"Mouse4\" or \"pad:L2+Square\".\n" +
			"To capture the keybind by pressing it, use: twirl record <rotation> <step>",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key *capture.Input
			switch {
			case clearKey:
			case len(args) == 3:
				in, err := capture.ParseKeybind(args[2])
				if err != nil {
					return err
				}
				key = &in
			default:
				return fmt.Errorf("a keybind or --clear is required")
			}
			return withStore(func(st *store.Store) error {
				if err := st.SetStepKey(cmd.Context(), args[0], args[1], key); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("step %q not found in rotation %q", args[1], args[0])
					}
					return fmt.Errorf("failed to bind step: %w", err)
				}
				label := "None"
				if key != nil {
					label = key.String()
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[1], label)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&clearKey, "clear", false, "remove the keybind")
	return cmd
}

func newRotationImportCmd() *cobra.Command {
	var (
		job     string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import <rotation> <file>",
		Short: "Create or replace a rotation from a step list file",
		Long: "Each line of the file is \"Name = Keybind\"; the keybind may be empty.\n" +
			"Relative paths that do not exist are looked up in " + config.DefaultRotationDir() + ".",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := steplist.LoadSteps(resolveStepFile(args[1]))
			if err != nil {
				return fmt.Errorf("failed to load step list: %w", err)
			}
			return withStore(func(st *store.Store) error {
				ctx := cmd.Context()
				rot, err := st.GetRotation(ctx, args[0])
				switch {
				case errors.Is(err, store.ErrNotFound):
					if rot, err = st.CreateRotation(ctx, args[0], job); err != nil {
						return fmt.Errorf("failed to create rotation: %w", err)
					}
				case err != nil:
					return rotationError(args[0], err)
				case !replace:
					return fmt.Errorf("rotation %q already exists (use --replace to overwrite its steps)", rot.Name)
				}
				if err := st.ReplaceSteps(ctx, rot.Name, steps); err != nil {
					return fmt.Errorf("failed to import steps: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d steps into %s\n", len(steps), rot.Name)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&job, "job", "", "job identifier for a new rotation")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the steps of an existing rotation")
	return cmd
}

func resolveStepFile(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	candidate := filepath.Join(config.DefaultRotationDir(), path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	if filepath.Ext(path) == "" {
		if _, err := os.Stat(candidate + ".txt"); err == nil {
			return candidate + ".txt"
		}
	}
	return path
}

func newRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <rotation> <step>",
		Short: "Capture a step's keybind by pressing it",
		Args:  cobra.ExactArgs(2),
		RunE:  runRecordCmd,
	}
}

func runRecordCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	rot, err := st.GetRotation(ctx, args[0])
	if err != nil {
		return rotationError(args[0], err)
	}
	found := false
	for i, s := range rot.Steps {
		if s.Name == args[1] {
			found = true
			logErrf("step %d of %s, currently %s\n", i+1, rot.Name, s.Keybind())
			break
		}
	}
	if !found {
		return fmt.Errorf("step %q not found in rotation %q", args[1], rot.Name)
	}

	host, closePads := openHost(ctx, fileCfg.Gamepad)
	defer closePads()

	rec := tui.NewRecorder(args[1], captureOptions(fileCfg.Capture, false), host)
	program := tea.NewProgram(rec, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run recorder: %w", err)
	}
	in, ok := rec.Result()
	if !ok {
		logErrln("keybind unchanged")
		return nil
	}
	if err := st.SetStepKey(ctx, rot.Name, args[1], &in); err != nil {
		return fmt.Errorf("failed to save keybind: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[1], in.String())
	return err
}
