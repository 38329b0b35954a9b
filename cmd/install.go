package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gitgate/gitgate/internal/git"
	"github.com/gitgate/gitgate/internal/hooks"
	"github.com/gitgate/gitgate/internal/output"
)

var installForce bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the managed git hooks",
	Long: `Install the gitgate hook scripts into the repository's .git/hooks.

An existing hook that gitgate does not manage is left alone unless --force
is given, in which case it is kept as a .pre-gitgate backup and restored on
uninstall.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return installRun()
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the managed git hooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return uninstallRun()
	},
}

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Show hook install status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hooksStatusRun()
	},
}

func init() {
	installCmd.Flags().BoolVar(&installForce, "force", false, "Replace existing unmanaged hooks (kept as backups)")
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(hooksCmd)
}

func newInstaller() (*hooks.Installer, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	client := git.NewClient()
	repoRoot, err := client.RepoRoot(cwd)
	if err != nil {
		return nil, "", fmt.Errorf("locate repository: %w", err)
	}
	return hooks.NewInstaller(client, viper.GetString("hooks.bin")), repoRoot, nil
}

func installRun() error {
	installer, repoRoot, err := newInstaller()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would install hooks: pre-commit, commit-msg, pre-push, post-checkout")
		return nil
	}

	results, err := installer.Install(repoRoot, installForce)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.BackedUp {
			ui.Warning("Existing %s hook kept as %s.pre-gitgate", r.Event, r.Event)
		}
		ui.Success("Installed %s hook", r.Event)
	}
	return nil
}

func uninstallRun() error {
	installer, repoRoot, err := newInstaller()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would remove managed hooks and restore backups")
		return nil
	}

	results, err := installer.Uninstall(repoRoot)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Restored {
			ui.Success("Removed %s hook, restored previous hook from backup", r.Event)
		} else {
			ui.Success("Removed %s hook", r.Event)
		}
	}
	if len(results) == 0 {
		ui.Info("No managed hooks installed.")
	}
	return nil
}

func hooksStatusRun() error {
	installer, repoRoot, err := newInstaller()
	if err != nil {
		return err
	}

	statuses, err := installer.Status(repoRoot)
	if err != nil {
		return err
	}

	table := ui.Table([]string{"Hook", "State", "Executable", "Backup"})
	for _, s := range statuses {
		table.Append([]string{
			string(s.Event),
			hookStateColor(s.State),
			yesNo(s.Executable),
			yesNo(s.HasBackup),
		})
	}
	table.Render()
	return nil
}

func hookStateColor(state hooks.HookState) string {
	switch state {
	case hooks.StateManaged:
		return output.Green(string(state))
	case hooks.StateForeign:
		return output.Yellow(string(state))
	default:
		return string(state)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
