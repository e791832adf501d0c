package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/approvaldaemon"
	"github.com/czarina-dev/czarina/internal/session"
)

func init() {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "ApprovalDaemon lifecycle: run, start, stop, status, logs",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the approval daemon in the foreground (invoked detached by `launch`)",
		RunE:  runDaemonRun,
	}
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the approval daemon detached",
		RunE:  runDaemonStart,
	}
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the approval daemon",
		RunE:  runDaemonStop,
	}
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the approval daemon is running",
		RunE:  runDaemonStatus,
	}
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Print daemon events from events.jsonl",
		RunE:  runDaemonLogs,
	}

	daemonCmd.AddCommand(runCmd, startCmd, stopCmd, statusCmd, logsCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemonRun(cmd *cobra.Command, args []string) error {
	layout, cfg, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	sessions := session.New(layout.RepoRoot)
	d := approvaldaemon.New(sessions, log, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	layout, _, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	selfExe, err := os.Executable()
	if err != nil {
		return err
	}
	if err := approvaldaemon.StartDetached(layout.CzarinaDir, selfExe, []string{"daemon", "run"}); err != nil {
		return err
	}
	fmt.Println("daemon started")
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	layout, _, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	if err := approvaldaemon.Stop(layout.CzarinaDir); err != nil {
		return err
	}
	fmt.Println("daemon stopped")
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	layout, _, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	running, pid := approvaldaemon.Status(layout.CzarinaDir)
	if running {
		fmt.Printf("running (pid %d)\n", pid)
	} else {
		fmt.Println("not running")
	}
	return nil
}

func runDaemonLogs(cmd *cobra.Command, args []string) error {
	layout, _, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	records, err := approvaldaemon.Logs(layout.LogsDir())
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("[%s] %s %s %v\n", r.Timestamp.Format("15:04:05"), r.Event, r.Severity, r.Metadata)
	}
	return nil
}
