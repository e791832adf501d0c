package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/hopper"
	"github.com/czarina-dev/czarina/internal/session"
)

func init() {
	hopperCmd := &cobra.Command{
		Use:   "hopper",
		Short: "Two-tier backlog: project inbox and phase todo/in-progress/done",
	}

	addCmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Copy a markdown item into the project-tier hopper",
		Args:  cobra.ExactArgs(1),
		RunE:  runHopperAdd,
	}
	listCmd := &cobra.Command{
		Use:   "list [project|phase]",
		Short: "List hopper items",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHopperList,
	}
	pullCmd := &cobra.Command{
		Use:   "pull <file>",
		Short: "Promote a project-tier item into the current phase's todo/",
		Args:  cobra.ExactArgs(1),
		RunE:  runHopperPull,
	}
	deferCmd := &cobra.Command{
		Use:   "defer <file>",
		Short: "Return a phase-tier item to the project tier",
		Args:  cobra.ExactArgs(1),
		RunE:  runHopperDefer,
	}
	assignCmd := &cobra.Command{
		Use:   "assign <worker> <file>",
		Short: "Advance a todo item to in-progress and notify the worker's session",
		Args:  cobra.ExactArgs(2),
		RunE:  runHopperAssign,
	}

	hopperCmd.AddCommand(addCmd, listCmd, pullCmd, deferCmd, assignCmd)
	rootCmd.AddCommand(hopperCmd)
}

func runHopperAdd(cmd *cobra.Command, args []string) error {
	layout, _, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	src, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	dest := filepath.Join(layout.HopperDir(), "project", filepath.Base(args[0]))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return err
	}
	fmt.Printf("added %s\n", dest)
	return nil
}

func runHopperList(cmd *cobra.Command, args []string) error {
	layout, _, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	tier := "project"
	if len(args) == 1 {
		tier = args[0]
	}

	if tier == "project" {
		items, err := hopper.ListProjectItems(filepath.Join(layout.HopperDir(), "project"))
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Printf("%s  priority=%s complexity=%s\n", it.Path, it.Priority, it.Complexity)
		}
		return nil
	}

	phaseDir := filepath.Join(layout.HopperDir(), "phase")
	for _, state := range []hopper.PhaseTierState{hopper.StateTodo, hopper.StateInProgress, hopper.StateDone} {
		items, err := hopper.ListPhaseItems(phaseDir, state)
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Printf("[%s] %s  priority=%s complexity=%s\n", state, it.Path, it.Priority, it.Complexity)
		}
	}
	return nil
}

func runHopperPull(cmd *cobra.Command, args []string) error {
	layout, _, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	item, err := hopper.ParseFile(args[0])
	if err != nil {
		return err
	}
	dest, err := hopper.PromoteToPhase(item, filepath.Join(layout.HopperDir(), "phase"))
	if err != nil {
		return err
	}
	fmt.Printf("promoted to %s\n", dest)
	return nil
}

func runHopperDefer(cmd *cobra.Command, args []string) error {
	layout, _, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	item, err := hopper.ParseFile(args[0])
	if err != nil {
		return err
	}
	dest, err := hopper.Defer(item, filepath.Join(layout.HopperDir(), "project"))
	if err != nil {
		return err
	}
	fmt.Printf("deferred to %s\n", dest)
	return nil
}

func runHopperAssign(cmd *cobra.Command, args []string) error {
	layout, cfg, _, log, _, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	workerID, file := args[0], args[1]
	item, err := hopper.ParseFile(file)
	if err != nil {
		return err
	}
	phaseDir := filepath.Join(layout.HopperDir(), "phase")
	dest, err := hopper.Advance(item, phaseDir, hopper.StateInProgress)
	if err != nil {
		return err
	}

	sessions := session.New(layout.RepoRoot)
	name := session.Name(cfg.Project.Slug, workerID)
	text := fmt.Sprintf("New task assigned: %s\n\n%s", filepath.Base(dest), item.Body)
	if err := sessions.Inject(cmd.Context(), name, text); err != nil {
		fmt.Fprintf(os.Stderr, "hopper assign: could not notify %s: %v\n", name, err)
	}

	fmt.Printf("assigned %s to %s (%s)\n", filepath.Base(dest), workerID, dest)
	return nil
}
