package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/phase"
	"github.com/czarina-dev/czarina/internal/repolayout"
)

const (
	analysisPromptFile   = ".czarina-analysis-prompt.md"
	analysisResponseFile = ".czarina-analysis-response.json"
)

func init() {
	analyzeCmd := &cobra.Command{
		Use:   "analyze <plan>",
		Short: "Two-pass plan-to-config analysis: write a prompt, then consume a response",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().Bool("interactive", false, "print the prompt to stdout instead of only writing the file")
	analyzeCmd.Flags().Bool("init", false, "run init with the resulting config once the response is consumed")
	analyzeCmd.Flags().Bool("force", false, "pass --force through to init")
	rootCmd.AddCommand(analyzeCmd)
}

// runAnalyze implements spec.md §6's two-pass protocol. The actual
// plan-to-config reasoning is an external collaborator's job (spec.md §1
// "the interactive plan-to-config analysis prompt" is out of core scope);
// this command only manages the prompt/response file handoff.
func runAnalyze(cmd *cobra.Command, args []string) error {
	root, err := projectDir(cmd)
	if err != nil {
		return err
	}
	planPath := args[0]
	interactive, _ := cmd.Flags().GetBool("interactive")
	doInit, _ := cmd.Flags().GetBool("init")
	force, _ := cmd.Flags().GetBool("force")

	responsePath := filepath.Join(root, analysisResponseFile)
	if _, err := os.Stat(responsePath); err == nil {
		return consumeAnalysisResponse(root, responsePath, doInit, force)
	}

	plan, err := os.ReadFile(planPath)
	if err != nil {
		return err
	}
	prompt := buildAnalysisPrompt(string(plan))
	promptPath := filepath.Join(root, analysisPromptFile)
	if err := os.WriteFile(promptPath, []byte(prompt), 0o644); err != nil {
		return err
	}
	if interactive {
		fmt.Println(prompt)
	}
	fmt.Printf("wrote %s — produce %s and re-run analyze\n", promptPath, analysisResponseFile)
	return nil
}

func buildAnalysisPrompt(plan string) string {
	return "# Czarina analysis request\n\n" +
		"Read the plan below and propose a config.json project/workers breakdown.\n" +
		"Write your answer as JSON matching configstore.Config to " + analysisResponseFile + ".\n\n" +
		"## Plan\n\n" + plan + "\n"
}

func consumeAnalysisResponse(root, responsePath string, doInit, force bool) error {
	data, err := os.ReadFile(responsePath)
	if err != nil {
		return err
	}
	var cfg configstore.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return asValidationErr(fmt.Errorf("analyze: parse %s: %w", responsePath, err))
	}
	if err := configstore.Validate(&cfg); err != nil {
		return asValidationErr(err)
	}

	layout := repolayout.New(root, "")

	if !doInit {
		fmt.Printf("config validates; re-run with --init to write %s\n", layout.ConfigPath())
		return nil
	}

	canInit, err := phase.CanInit(layout.WorkersDir())
	if err != nil {
		return err
	}
	if !canInit && !force {
		return asValidationErr(fmt.Errorf("analyze --init: .czarina/workers/ is non-empty; pass --force to overwrite"))
	}
	if err := layout.Scaffold(); err != nil {
		return err
	}
	if err := configstore.Save(layout.CzarinaDir, &cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", layout.ConfigPath())
	return nil
}
