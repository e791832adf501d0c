package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/approvaldaemon"
	"github.com/czarina-dev/czarina/internal/launch"
	"github.com/czarina-dev/czarina/internal/workerstatus"
)

func init() {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print current phase, worker statuses, and daemon liveness",
		RunE:  runStatus,
	}
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	layout, cfg, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	fmt.Printf("project: %s (slug=%s)\n", cfg.Project.Name, cfg.Project.Slug)
	fmt.Printf("phase:   %d  omnibus=%s\n", cfg.Project.Phase, cfg.Project.OmnibusBranch)

	running, pid := approvaldaemon.Status(layout.CzarinaDir)
	if running {
		fmt.Printf("daemon:  running (pid %d)\n", pid)
	} else {
		fmt.Println("daemon:  not running")
	}

	czarRunning, czarPid := launch.CzarLoopStatus(layout.CzarinaDir)
	if czarRunning {
		fmt.Printf("czar:    running (pid %d)\n", czarPid)
	} else {
		fmt.Println("czar:    not running")
	}

	snap, err := workerstatus.Load(layout.WorkerStatusPath())
	if err != nil {
		return err
	}
	if snap == nil || len(snap.Workers) == 0 {
		fmt.Println("workers: no status recorded yet")
		return nil
	}

	ids := make([]string, 0, len(snap.Workers))
	for id := range snap.Workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println("workers:")
	for _, id := range ids {
		w := snap.Workers[id]
		fmt.Printf("  %-16s status=%-8s health=%-8s commits=%-3d session_alive=%v\n",
			id, w.Status, w.Health, w.Commits, w.SessionAlive)
	}
	return nil
}
