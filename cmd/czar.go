package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/czarloop"
	"github.com/czarina-dev/czarina/internal/phase"
	"github.com/czarina-dev/czarina/internal/session"
)

func init() {
	czarCmd := &cobra.Command{
		Use:   "czar",
		Short: "CzarLoop lifecycle",
	}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run CzarLoop in the foreground (invoked detached by `launch --go`)",
		RunE:  runCzarRun,
	}
	czarCmd.AddCommand(runCmd)
	rootCmd.AddCommand(czarCmd)
}

func runCzarRun(cmd *cobra.Command, args []string) error {
	layout, cfg, git, log, gitOK, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	sessions := session.New(layout.RepoRoot)
	phaseController := &phase.Controller{Layout: layout, Git: git, Sessions: sessions, Events: log}

	loop := czarloop.New(layout, git, sessions, log, cfg, phaseController, gitOK)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return loop.Run(ctx)
}
