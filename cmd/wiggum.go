package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/repolayout"
	"github.com/czarina-dev/czarina/internal/wiggum"
)

func init() {
	wiggumCmd := &cobra.Command{
		Use:   "wiggum <task-directive>",
		Short: "Run the disposable-worker retry engine against a bounded, verifiable task",
		Args:  cobra.ExactArgs(1),
		RunE:  runWiggum,
	}
	wiggumCmd.Flags().String("verify-command", "", "command that must exit 0 for an attempt to succeed")
	wiggumCmd.Flags().Int("retries", 0, "override wiggum.default_retries")
	wiggumCmd.Flags().Int("timeout", 0, "override wiggum.timeout_seconds")
	wiggumCmd.Flags().String("agent-command", "", "override wiggum.agent_command")
	rootCmd.AddCommand(wiggumCmd)
}

func runWiggum(cmd *cobra.Command, args []string) error {
	directive := args[0]

	root, err := projectDir(cmd)
	if err != nil {
		return err
	}
	layout := repolayout.New(root, "")
	log, err := eventlog.Open(layout.LogsDir())
	if err != nil {
		return err
	}
	defer log.Close()

	params := wiggum.Params{SandboxPrefix: layout.CzarinaDir + "/wiggum"}
	if cfg, err := configstore.Load(layout.CzarinaDir); err == nil && cfg.WiggumConfig != nil {
		wc := cfg.WiggumConfig
		if wc.SandboxPrefix != "" {
			params.SandboxPrefix = wc.SandboxPrefix
		}
		params.AgentCommand = wc.AgentCommand
		params.DefaultRetries = wc.DefaultRetries
		params.TimeoutSeconds = wc.TimeoutSeconds
		params.ProtectedFiles = wc.ProtectedFiles
		params.VerifyCommand = wc.VerifyCommand
		params.MergeStrategy = string(wc.MergeStrategy)
		params.LedgerPath = wc.LedgerPath
	}

	if v, _ := cmd.Flags().GetString("verify-command"); v != "" {
		params.VerifyCommand = v
	}
	if r, _ := cmd.Flags().GetInt("retries"); r > 0 {
		params.DefaultRetries = r
	}
	if t, _ := cmd.Flags().GetInt("timeout"); t > 0 {
		params.TimeoutSeconds = t
	}
	if a, _ := cmd.Flags().GetString("agent-command"); a != "" {
		params.AgentCommand = a
	}

	controller := &wiggum.Controller{
		Git:      repolayout.NewGit(root),
		Events:   log,
		Params:   params,
		RepoRoot: root,
	}

	attempts, err := controller.Run(cmd.Context(), directive)
	for _, a := range attempts {
		fmt.Printf("attempt %d: %s\n", a.Number, a.Outcome)
	}
	if err != nil {
		return err
	}
	return nil
}
