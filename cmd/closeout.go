package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/approvaldaemon"
	"github.com/czarina-dev/czarina/internal/phase"
	"github.com/czarina-dev/czarina/internal/session"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

func init() {
	closeoutCmd := &cobra.Command{
		Use:   "closeout",
		Short: "Archive the current phase and remove .czarina/ entirely",
		RunE:  runCloseout,
	}
	rootCmd.AddCommand(closeoutCmd)
}

func runCloseout(cmd *cobra.Command, args []string) error {
	layout, cfg, git, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}

	snap, err := workerstatus.Load(layout.WorkerStatusPath())
	if err != nil {
		log.Close()
		return err
	}
	if snap == nil {
		snap = &workerstatus.Snapshot{Phase: cfg.Project.Phase, Workers: map[string]workerstatus.WorkerState{}}
	}

	controller := &phase.Controller{
		Layout:     layout,
		Git:        git,
		Sessions:   session.New(layout.RepoRoot),
		Events:     log,
		ForceClean: true,
	}
	if err := controller.Archive(cmd.Context(), cfg, snap, cfg.Project.Phase, cfg.Project.Version); err != nil {
		log.Close()
		return err
	}

	approvaldaemon.Stop(layout.CzarinaDir)
	log.Close()

	if err := os.RemoveAll(layout.CzarinaDir); err != nil {
		return err
	}
	fmt.Println("closed out: .czarina/ removed after archiving")
	return nil
}
