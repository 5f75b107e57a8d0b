package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
	"github.com/TonnyWong1052/aishell/internal/handoff"
	"github.com/TonnyWong1052/aishell/internal/shell"
)

func newInitCmd(a *app) *cobra.Command {
	var name string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Installs the shell wrapper function into ~/.bashrc and ~/.zshrc",
		Long: `Installs a shell function (default "ai") that runs aishell and places the
accepted command into your shell's line editor, so it can be edited and is
recorded in your shell history. Running init again updates the wrapper in place.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return a.runGenerate(cmd.Context(), append([]string{cmd.Name()}, args...))
			}
			home, err := a.home()
			if err != nil {
				return aerrors.ErrWrapperInstallFailed(err)
			}
			if name == "" {
				if cfg, _, err := a.loadConfigFile(); err == nil {
					name = cfg.UserPreferences.WrapperName
				}
			}

			pterm.DefaultSection.WithWriter(a.stderr).Println("Installing shell wrapper")
			files, err := shell.Install(home, name)
			for _, f := range files {
				pterm.Success.WithWriter(a.stderr).Printfln("Updated %s", f)
			}
			if err != nil {
				return err
			}
			pterm.Info.WithWriter(a.stderr).Println("Restart your shell or source your rc file to use the wrapper.")
			return nil
		},
	}
	initCmd.Flags().StringVar(&name, "name", "", "name of the shell function (default from config, \"ai\")")
	return initCmd
}

func newUninstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Removes the shell wrapper from your shell config files",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return a.runGenerate(cmd.Context(), append([]string{cmd.Name()}, args...))
			}
			home, err := a.home()
			if err != nil {
				return aerrors.ErrWrapperUninstallFailed(err)
			}
			files, err := shell.Uninstall(home)
			for _, f := range files {
				pterm.Success.WithWriter(a.stderr).Printfln("Wrapper removed from %s", f)
			}
			if err != nil {
				return err
			}
			if len(files) == 0 {
				pterm.Info.WithWriter(a.stderr).Println("No shell wrapper found.")
			}
			// 清掉包裝函式沒讀走的命令
			if path, perr := handoff.Path(a.lookup); perr == nil {
				if rerr := handoff.Remove(path); rerr != nil {
					pterm.Warning.WithWriter(a.stderr).Printfln("Could not remove %s: %v", path, rerr)
				}
			}
			return nil
		},
	}
}
