package sharedpkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/sharedpkg/internal/version"
	"github.com/arthur-debert/sharedpkg/pkg/cobrax/topics"
	"github.com/arthur-debert/sharedpkg/pkg/config"
	"github.com/arthur-debert/sharedpkg/pkg/errors"
	"github.com/arthur-debert/sharedpkg/pkg/filesystem"
	"github.com/arthur-debert/sharedpkg/pkg/installer"
	"github.com/arthur-debert/sharedpkg/pkg/logging"
	"github.com/arthur-debert/sharedpkg/pkg/paths"
	"github.com/arthur-debert/sharedpkg/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{})
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:     "sharedpkg",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVar(&opts.project, "project", "", MsgFlagProject)
	flags.BoolVar(&opts.noDev, "no-dev", false, MsgFlagNoDev)
	flags.StringVar(&opts.branch, "branch", "", MsgFlagBranch)
	flags.BoolVarP(&opts.yes, "yes", "y", false, MsgFlagYes)
	flags.BoolVarP(&opts.noInteraction, "no-interaction", "n", false, MsgFlagNoInteraction)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	flags.StringVar(&opts.manifest, "manifest", "", MsgFlagManifest)

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ui.FormatNames, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newInstallCmd(opts))
	rootCmd.AddCommand(newUpdateCmd(opts))
	rootCmd.AddCommand(newRemoveCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newUsageCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	renderer := topics.NewPlainGlamourRenderer()
	if ui.IsTerminal(os.Stdout) {
		renderer = topics.NewGlamourRenderer()
	}
	if _, err := topics.InitializeWithOptions(rootCmd, helpTopics(), topics.Options{Renderer: renderer}); err != nil {
		log.Debug().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// ReportError renders a command failure on stderr in the format selected by
// --format.
func ReportError(rootCmd *cobra.Command, err error) {
	format, _ := rootCmd.PersistentFlags().GetString("format")
	f, perr := ui.ParseFormat(format)
	if perr != nil {
		f = ui.FormatAuto
	}
	renderer, rerr := ui.NewRenderer(f, os.Stderr)
	if rerr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	_ = renderer.RenderError(err)
}

func packageCompletion(opts *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		a, err := opts.open(cmd, false)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var names []string
		for _, pkg := range a.repo.Packages() {
			names = append(names, pkg.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

func newInstallCmd(opts *globalOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:     "install",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, true)
			if err != nil {
				return err
			}

			if dryRun {
				view := ui.ReportView{Command: "install"}
				for _, op := range installer.Plan(a.repo.Packages(), a.manifest.Packages) {
					view.Operations = append(view.Operations, a.operationView(op, nil))
				}
				if err := a.renderer.RenderReport(view); err != nil {
					return err
				}
				return a.renderer.RenderMessage(MsgDryRunNotice)
			}

			report, err := a.runner().Sync(a.manifest.Packages)
			return a.render("install", report, err)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	return cmd
}

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "update <package>...",
		Short:             MsgUpdateShort,
		Long:              MsgUpdateLong,
		Example:           MsgUpdateExample,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: packageCompletion(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			ops, err := a.updateOperations(args)
			if err != nil {
				return err
			}
			report, err := a.runner().Run(ops)
			return a.render("update", report, err)
		},
	}
}

// updateOperations plans the named manifest entries: an install when the
// package is new or incomplete, an update when its version or type changed.
func (a *app) updateOperations(names []string) ([]installer.Operation, error) {
	var ops []installer.Operation
	for _, name := range names {
		target, ok := a.manifest.Find(name)
		if !ok {
			return nil, errors.Newf(errors.ErrNotFound, MsgErrNotInManifest, name).
				WithDetail("package", name)
		}

		initial, recorded := a.repo.Find(name)
		switch {
		case !recorded:
			ops = append(ops, installer.Operation{Kind: installer.OpInstall, Package: target})
		case initial.Version != target.Version || initial.Type != target.Type:
			ops = append(ops, installer.Operation{Kind: installer.OpUpdate, Package: target, Initial: &initial})
		default:
			installed, err := a.router.IsInstalled(a.repo, target)
			if err != nil {
				return nil, err
			}
			if !installed {
				ops = append(ops, installer.Operation{Kind: installer.OpInstall, Package: target})
			}
		}
	}
	return ops, nil
}

func newRemoveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "remove <package>...",
		Aliases:           []string{"rm", "uninstall"},
		Short:             MsgRemoveShort,
		Long:              MsgRemoveLong,
		Example:           MsgRemoveExample,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: packageCompletion(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, false)
			if err != nil {
				return err
			}

			ops := make([]installer.Operation, 0, len(args))
			for _, name := range args {
				pkg, ok := a.repo.Find(name)
				if !ok {
					return errors.Newf(errors.ErrNotInstalled, MsgErrNotInstalled, name).
						WithDetail("package", name)
				}
				ops = append(ops, installer.Operation{Kind: installer.OpUninstall, Package: pkg})
			}

			report, err := a.runner().Run(ops)
			return a.render("remove", report, err)
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			view, err := a.status()
			if err != nil {
				return err
			}
			return a.renderer.RenderStatus(view)
		},
	}
}

func newUsageCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "usage [package [version]]",
		Short:   MsgUsageShort,
		Long:    MsgUsageLong,
		Example: MsgUsageExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			var name, ver string
			if len(args) > 0 {
				name = args[0]
			}
			if len(args) > 1 {
				ver = args[1]
			}
			view, err := a.usage(name, ver)
			if err != nil {
				return err
			}
			return a.renderer.RenderUsage(view)
		},
	}
}

func newGenConfigCmd(opts *globalOptions) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.GenerateConfigContent()
			if err != nil {
				return err
			}
			if !write {
				_, err := io.WriteString(cmd.OutOrStdout(), content)
				return err
			}

			root, err := opts.projectRoot(cmd)
			if err != nil {
				return err
			}
			target := filepath.Join(root, paths.ConfigFileName)
			if _, err := os.Stat(target); err == nil {
				return errors.Newf(errors.ErrInvalidInput, MsgErrConfigExists, target).
					WithDetail("path", target)
			}
			if err := filesystem.WriteFileAtomic(target, []byte(content), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten+"\n", target)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionDetail, version.Commit, version.Date)
		},
	}
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			helpCmd, _, err := cmd.Root().Find([]string{"help"})
			if err != nil || helpCmd.Run == nil {
				return errors.New(errors.ErrInternal, "help command not found")
			}
			helpCmd.Run(helpCmd, []string{"topics"})
			return nil
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

func newManCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:    "man",
		Short:  MsgManShort,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
			}
			header := &doc.GenManHeader{
				Title:   "SHAREDPKG",
				Section: "1",
				Source:  "sharedpkg " + version.Version,
				Manual:  "sharedpkg manual",
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return errors.Wrap(err, errors.ErrFileWrite, "failed to generate man pages")
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManPagesWritten+"\n", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "man", MsgFlagManDir)
	return cmd
}
