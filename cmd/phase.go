package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/phase"
	"github.com/czarina-dev/czarina/internal/session"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

func init() {
	phaseCmd := &cobra.Command{
		Use:   "phase",
		Short: "Phase lifecycle: close and archive, or list archives",
	}

	closeCmd := &cobra.Command{
		Use:   "close",
		Short: "Archive the current phase",
		RunE:  runPhaseClose,
	}
	closeCmd.Flags().Bool("keep-worktrees", false, "has no effect: archiving always removes clean worker worktrees")
	closeCmd.Flags().Bool("force-clean", false, "remove worktrees even if dirty")
	phaseCmd.AddCommand(closeCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived phases",
		RunE:  runPhaseList,
	}
	phaseCmd.AddCommand(listCmd)

	rootCmd.AddCommand(phaseCmd)
}

func runPhaseClose(cmd *cobra.Command, args []string) error {
	layout, cfg, git, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	forceClean, _ := cmd.Flags().GetBool("force-clean")

	snap, err := workerstatus.Load(layout.WorkerStatusPath())
	if err != nil {
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
		ForceClean: forceClean,
	}

	if err := controller.Archive(cmd.Context(), cfg, snap, cfg.Project.Phase, cfg.Project.Version); err != nil {
		return err
	}
	fmt.Printf("archived phase %d (v%s)\n", cfg.Project.Phase, cfg.Project.Version)
	return nil
}

func runPhaseList(cmd *cobra.Command, args []string) error {
	root, err := projectDir(cmd)
	if err != nil {
		return err
	}
	phasesDir := filepath.Join(root, ".czarina", "phases")
	entries, err := os.ReadDir(phasesDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("no archived phases")
			return nil
		}
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
