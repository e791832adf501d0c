package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/launch"
	"github.com/czarina-dev/czarina/internal/session"
)

func init() {
	launchCmd := &cobra.Command{
		Use:   "launch",
		Short: "Ensure branches, create worktrees, start sessions, start the daemon and CzarLoop",
		RunE:  runLaunch,
	}
	launchCmd.Flags().Bool("go", false, "attach CzarLoop as a background supervisor")
	launchCmd.Flags().String("remote", "origin", "git remote to bootstrap branches against")
	rootCmd.AddCommand(launchCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	layout, cfg, git, log, gitOK, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	goFlag, _ := cmd.Flags().GetBool("go")
	remote, _ := cmd.Flags().GetString("remote")

	sessions := session.New(layout.RepoRoot)

	if err := launch.Validate(cfg); err != nil {
		return asValidationErr(err)
	}

	result, err := launch.Launch(cmd.Context(), layout, git, sessions, log, cfg, gitOK, launch.Options{Remote: remote, Go: goFlag})
	if err != nil {
		return err
	}

	fmt.Printf("launched phase %d: %d worktree(s), %d session(s)", cfg.Project.Phase, len(result.Worktrees), len(result.SessionNames))
	if result.DaemonStarted {
		fmt.Print(", daemon started")
	}
	if goFlag {
		fmt.Print(", czar loop attached")
	}
	fmt.Println()
	return nil
}
