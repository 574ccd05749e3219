package claudesync

import (
	"fmt"

	"github.com/arthur-debert/claudesync/internal/version"
	"github.com/arthur-debert/claudesync/pkg/commands"
	"github.com/arthur-debert/claudesync/pkg/config"
	"github.com/arthur-debert/claudesync/pkg/logging"
	"github.com/arthur-debert/claudesync/pkg/ui"
	"github.com/arthur-debert/claudesync/pkg/ui/view"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ExitError carries a non-zero exit code for results that were already
// rendered. main exits with Code without printing anything else.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbosity   int
	dryRun      bool
	format      string
	configFile  string
	liveRoot    string
	projectRoot string

	// cfg is loaded before every command. It is nil when loading failed;
	// sync commands load again and report the error.
	cfg *config.Config
}

// loadOptions turns explicitly set flags into configuration overrides.
func (o *globalOptions) loadOptions(cmd *cobra.Command) config.LoadOptions {
	overrides := map[string]interface{}{}
	flags := cmd.Flags()
	if flags.Changed("live-root") {
		overrides["paths.live_root"] = o.liveRoot
	}
	if flags.Changed("project-root") {
		overrides["paths.project_root"] = o.projectRoot
	}
	if flags.Changed("format") {
		overrides["output.format"] = o.format
	}
	return config.LoadOptions{
		ConfigFile: o.configFile,
		Overrides:  overrides,
	}
}

func (o *globalOptions) config() *config.Config {
	if o.cfg == nil {
		return config.Default()
	}
	return o.cfg
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "claudesync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(opts.loadOptions(cmd))
			base := 0
			if err == nil {
				opts.cfg = cfg
				base = cfg.Logging.Verbosity
			}
			logging.SetupLogger(base + opts.verbosity)
			if err != nil {
				log.Debug().Err(err).Msg("Configuration could not be loaded yet")
			}
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&opts.liveRoot, "live-root", "", MsgFlagLiveRoot)
	rootCmd.PersistentFlags().StringVar(&opts.projectRoot, "project-root", "", MsgFlagProjectRoot)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newBackupCmd(opts))
	rootCmd.AddCommand(newRestoreCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// newRenderer builds the renderer for the configured output format
func newRenderer(cmd *cobra.Command, cfg *config.Config) (ui.Renderer, error) {
	format, err := ui.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf(MsgErrFormat, err)
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

type syncFunc func(commands.SyncOptions) (*commands.Result, error)

// runSync resolves the roots, runs fn and renders its report. Item
// failures surface as an ExitError after the report is printed.
func runSync(cmd *cobra.Command, opts *globalOptions, fn syncFunc) error {
	cfg, p, err := commands.Resolve(opts.loadOptions(cmd))
	if err != nil {
		return err
	}

	log.Info().
		Str("live_root", p.LiveRoot()).
		Str("mirror_root", p.MirrorRoot()).
		Bool("dry_run", opts.dryRun).
		Msg("Resolved roots")

	result, err := fn(commands.SyncOptions{
		Paths:  p,
		Config: cfg,
		DryRun: opts.dryRun,
	})
	if err != nil {
		return err
	}

	renderer, err := newRenderer(cmd, cfg)
	if err != nil {
		return err
	}
	if err := renderer.RenderResult(result); err != nil {
		return err
	}

	if code := ui.ExitCode(result); code != view.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

func newBackupCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "backup",
		Short:   MsgBackupShort,
		Long:    MsgBackupLong,
		Example: MsgBackupExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, commands.Backup)
		},
	}
}

func newRestoreCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "restore",
		Short:   MsgRestoreShort,
		Long:    MsgRestoreLong,
		Example: MsgRestoreExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, commands.Restore)
		},
	}
}

func newGenConfigCmd(opts *globalOptions) *cobra.Command {
	var (
		write     bool
		force     bool
		path      string
		effective bool
	)

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			genOpts := commands.GenConfigOptions{
				Write: write,
				Force: force,
				Path:  path,
			}

			cfg := opts.config()
			if effective {
				resolved, _, err := commands.Resolve(opts.loadOptions(cmd))
				if err != nil {
					return err
				}
				cfg = resolved
				genOpts.Effective = resolved
			}

			result, err := commands.GenConfig(genOpts)
			if err != nil {
				return err
			}

			renderer, err := newRenderer(cmd, cfg)
			if err != nil {
				return err
			}
			return renderer.RenderResult(result)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, MsgFlagWrite)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	cmd.Flags().StringVar(&path, "path", "", MsgFlagPath)
	cmd.Flags().BoolVar(&effective, "effective", false, MsgFlagEffective)

	return cmd
}

func newVersionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := newRenderer(cmd, opts.config())
			if err != nil {
				return err
			}
			return renderer.RenderResult(&view.Version{
				Version: version.Version,
				Commit:  version.Commit,
				Date:    version.Date,
			})
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
