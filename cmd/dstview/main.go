package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/npratt/dstview/internal/config"
	"github.com/npratt/dstview/internal/design"
	"github.com/npratt/dstview/internal/dst"
	"github.com/npratt/dstview/internal/render"
	"github.com/npratt/dstview/internal/report"
	"github.com/npratt/dstview/internal/shutdown"
	"github.com/npratt/dstview/internal/tui"
	"github.com/npratt/dstview/internal/watch"
)

var version = "dev"

// shutdownTimeout bounds how long watch waits for the watcher to stop.
const shutdownTimeout = 5 * time.Second

// app holds state shared by all commands of one invocation.
type app struct {
	v        *viper.Viper
	logLevel *slog.LevelVar
	logger   *slog.Logger
	cfg      *config.Config
	logClose func() error
}

func newApp(stderr io.Writer) *app {
	logLevel := &slog.LevelVar{}

	v := viper.New()
	v.SetEnvPrefix("DSTVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return &app{
		v:        v,
		logLevel: logLevel,
		logger:   SetupLoggerWithWriter(stderr, logLevel),
		logClose: func() error { return nil },
	}
}

// isSet reports whether a flag was given on the command line or through
// its DSTVIEW_ environment variable.
func (a *app) isSet(name string) bool {
	return a.v.IsSet(name)
}

// bindFlags binds every flag in fs to viper under its own name. Flags named
// like a config section would shadow that section and are read from cobra.
func (a *app) bindFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == FlagOutput || f.Name == FlagWatch {
			return
		}
		_ = a.v.BindPFlag(f.Name, f)
	})
}

// setup loads configuration, applies flag overrides and configures logging.
func (a *app) setup() error {
	if a.v.GetBool(FlagVerbose) {
		a.logLevel.Set(slog.LevelDebug)
	}

	cfg, sources, err := config.LoadConfigWithSources(a.v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.isSet(FlagLogFile) {
		cfg.Paths.Log = a.v.GetString(FlagLogFile)
	}
	if a.isSet(FlagFormat) {
		cfg.Output.Format = strings.ToLower(a.v.GetString(FlagFormat))
	}
	if a.isSet(FlagWidth) {
		cfg.Render.Width = a.v.GetInt(FlagWidth)
	}
	if a.isSet(FlagHeight) {
		cfg.Render.Height = a.v.GetInt(FlagHeight)
	}
	if a.isSet(FlagShowJumps) {
		cfg.Render.ShowJumps = a.v.GetBool(FlagShowJumps)
	}
	if a.isSet(FlagConcurrency) {
		cfg.Batch.Concurrency = a.v.GetInt(FlagConcurrency)
	}
	if a.isSet(FlagDebounce) {
		cfg.Watch.Debounce = a.v.GetDuration(FlagDebounce)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	a.cfg = cfg

	if cfg.Paths.Log != "" {
		result, err := SetupFileLogger(cfg.Paths.Log, a.logLevel, cfg.LogRotation)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logger = result.Logger
		a.logClose = result.Close
	}

	a.logger.Debug("configuration loaded",
		"version", version,
		"format", cfg.Output.Format,
		"machine_speed_spm", cfg.Decoder.MachineSpeedSPM,
		"log_file", cfg.Paths.Log,
		"config_files", len(sources),
	)
	for _, src := range sources {
		a.logger.Debug("config file", "kind", src.Kind, "path", src.Path)
	}
	return nil
}

func (a *app) loader() *design.Loader {
	return design.NewLoader(a.cfg.Decoder.Options(), a.logger)
}

func (a *app) format() (report.Format, error) {
	return report.ParseFormat(a.cfg.Output.Format)
}

func (a *app) renderOptions() render.Options {
	r := a.cfg.Render
	return render.Options{
		Width:      r.Width,
		Height:     r.Height,
		Padding:    r.Padding,
		LineWidth:  r.LineWidth,
		Background: r.Background,
		Palette:    r.Palette,
		ShowJumps:  r.ShowJumps,
		JumpColor:  r.JumpColor,
	}
}

// pngPath returns the default preview path for a design file.
func pngPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dstview",
		Short: "Inspect Tajima DST embroidery designs",
		Long: `dstview decodes Tajima DST embroidery files and reports what the machine
will sew: stitch, jump and color change counts, design extent, and an
estimated sewing time. It can export the decoded stitches as JSON or YAML,
render a PNG preview, and follow a file as it is edited.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			// Commands share flag names, so bind only the running command's set
			// (local plus inherited persistent flags).
			a.bindFlags(cmd.Flags())
			return a.setup()
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .dstview/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "Log file path (default: stderr)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInfoCmd(a),
		newRenderCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
		newViewCmd(a),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dstview %s\n", version)
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Summarize a design",
		Long: `Decode a DST file and print its header metadata, statistics, extent
and estimated sewing time.

Use --format json or yaml for machine-readable output, and --stitches to
include every decoded stitch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			p, err := a.loader().Load(args[0])
			if err != nil {
				return err
			}
			opts := report.Options{IncludeStitches: a.v.GetBool(FlagStitches)}
			return report.Write(cmd.OutOrStdout(), format, args[0], p, opts)
		},
	}

	cmd.Flags().String(FlagFormat, config.FormatText, "Output format (text/json/yaml)")
	cmd.Flags().Bool(FlagStitches, false, "Include the stitch list in json/yaml output")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a PNG preview of a design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loader().Load(args[0])
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString(FlagOutput)
			if out == "" {
				out = pngPath(args[0])
			}

			opts := a.renderOptions()
			if err := render.SavePNG(out, p, opts); err != nil {
				return fmt.Errorf("render %s: %w", args[0], err)
			}

			a.logger.Info("rendered preview", "input", args[0], "output", out)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", out, opts.Width, opts.Height)
			return nil
		},
	}

	cmd.Flags().StringP(FlagOutput, "o", "", "Output PNG path (default: input with .png extension)")
	cmd.Flags().Int(FlagWidth, 0, "Image width in pixels (default from config)")
	cmd.Flags().Int(FlagHeight, 0, "Image height in pixels (default from config)")
	cmd.Flags().Bool(FlagShowJumps, false, "Draw jumps as dashed lines")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <files...>",
		Short: "Summarize many designs",
		Long: `Decode several DST files concurrently and print a line per file followed
by totals. Exits non-zero if any file failed to load.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}

			results, err := a.loader().LoadAll(cmd.Context(), args, a.cfg.Batch.Concurrency)
			if err != nil {
				return err
			}
			if err := report.WriteBatch(cmd.OutOrStdout(), format, results); err != nil {
				return err
			}

			if sum := design.Summarize(results); sum.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", sum.Failed, sum.Files)
			}
			return nil
		},
	}

	cmd.Flags().String(FlagFormat, config.FormatText, "Output format (text/json/yaml)")
	cmd.Flags().Int(FlagConcurrency, 0, "Files decoded at once (default from config)")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Print a summary every time a design changes",
		Long: `Watch a DST file and print a fresh summary whenever it is written.
Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := args[0]

			onChange := func(p *dst.Pattern) {
				fmt.Fprintf(out, "--- %s ---\n", time.Now().Format("15:04:05"))
				if err := report.Write(out, format, path, p, report.Options{}); err != nil {
					a.logger.Error("write report", "error", err)
				}
			}
			onError := func(err error) {
				fmt.Fprintf(out, "--- %s ---\n%s\n", time.Now().Format("15:04:05"), err)
			}

			w := watch.New(a.loader(), path, a.cfg.Watch.Debounce, onChange, onError, a.logger)

			return shutdown.RunWithGracefulShutdown(cmd.Context(), a.logger, shutdownTimeout,
				func(ctx context.Context) error {
					if err := w.Start(ctx); err != nil {
						return err
					}
					<-ctx.Done()
					return ctx.Err()
				},
				func(ctx context.Context) error {
					return w.Stop()
				},
			)
		},
	}

	cmd.Flags().String(FlagFormat, config.FormatText, "Output format (text/json/yaml)")
	cmd.Flags().Duration(FlagDebounce, 0, "Wait for writes to settle (default from config)")
	return cmd
}

func newViewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Browse a design in the terminal",
		Long: `Open an interactive viewer listing every decoded stitch.

Use --watch to reload the design whenever the file changes. Without a
terminal the text summary is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			// Keep logs off the screen while the viewer owns it.
			if a.cfg.Paths.Log == "" && term.IsTerminal(int(os.Stdout.Fd())) {
				result, err := SetupTUILogger(defaultLogDir(), a.logLevel, a.cfg.LogRotation)
				if err != nil {
					return fmt.Errorf("setup logger: %w", err)
				}
				a.logger = result.Logger
				a.logClose = result.Close
			}

			loader := a.loader()
			p, err := loader.Load(path)
			if err != nil {
				return err
			}

			opts := []tui.Option{tui.WithOutput(cmd.OutOrStdout())}

			if follow, _ := cmd.Flags().GetBool(FlagWatch); follow {
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()

				updates := make(chan tui.Update)
				send := func(u tui.Update) {
					select {
					case updates <- u:
					case <-ctx.Done():
					}
				}

				w := watch.New(loader, path, a.cfg.Watch.Debounce,
					func(p *dst.Pattern) { send(tui.Update{Pattern: p}) },
					func(err error) { send(tui.Update{Err: err}) },
					a.logger)
				if err := w.Start(ctx); err != nil {
					return err
				}
				defer func() {
					cancel()
					_ = w.Stop()
				}()

				opts = append(opts, tui.WithUpdates(updates))
			}

			return tui.New(path, p, opts...).Run()
		},
	}

	cmd.Flags().Bool(FlagWatch, false, "Reload the design when the file changes")
	cmd.Flags().Duration(FlagDebounce, 0, "Wait for writes to settle (default from config)")
	return cmd
}

// exitMessage returns the message shown for a failed command.
func exitMessage(err error) string {
	switch {
	case errors.Is(err, dst.ErrInsufficientData):
		return err.Error() + " (file is shorter than the 512 byte header)"
	case errors.Is(err, os.ErrNotExist):
		return err.Error() + " (no such file)"
	default:
		return err.Error()
	}
}

func main() {
	a := newApp(os.Stderr)
	rootCmd := newRootCmd(a)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		a.logger.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", exitMessage(err))
	}
	_ = a.logClose()
	if err != nil {
		os.Exit(1)
	}
}
