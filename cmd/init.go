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

func init() {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create or refresh .czarina/ for the current phase",
		RunE:  runInit,
	}
	initCmd.Flags().Int("phase", 1, "phase number")
	initCmd.Flags().Bool("force", false, "overwrite a non-empty workers/ directory")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := projectDir(cmd)
	if err != nil {
		return err
	}
	phaseN, _ := cmd.Flags().GetInt("phase")
	force, _ := cmd.Flags().GetBool("force")

	layout := repolayout.New(root, "")

	canInit, err := phase.CanInit(layout.WorkersDir())
	if err != nil {
		return err
	}
	if !canInit && !force {
		return asValidationErr(fmt.Errorf("init: .czarina/workers/ is non-empty; pass --force to overwrite (destructive)"))
	}

	if err := layout.Scaffold(); err != nil {
		return err
	}

	configPath := layout.ConfigPath()
	if _, err := os.Stat(configPath); err != nil {
		if err := writeDefaultConfig(layout, phaseN); err != nil {
			return err
		}
		fmt.Printf("wrote %s (edit workers before launch)\n", configPath)
		return nil
	}

	cfg, err := configstore.Load(layout.CzarinaDir)
	if err != nil {
		return asValidationErr(err)
	}
	for _, w := range cfg.Workers {
		if err := repolayout.ValidateBranch(w, phaseN, cfg.Project.OmnibusBranch); err != nil {
			return asValidationErr(err)
		}
	}
	fmt.Printf("%s already exists and validates for phase %d\n", configPath, phaseN)
	return nil
}

func writeDefaultConfig(layout *repolayout.Layout, phaseN int) error {
	slug := filepath.Base(layout.RepoRoot)
	cfg := &configstore.Config{
		Project: configstore.Project{
			Name:          filepath.Base(layout.RepoRoot),
			Slug:          slug,
			Repository:    layout.RepoRoot,
			Phase:         phaseN,
			OmnibusBranch: repolayout.ReleaseBranch(phaseN, "0.1.0"),
			Version:       "0.1.0",
		},
		Workers: []configstore.Worker{
			{
				ID:     "worker-1",
				Agent:  "claude",
				Branch: repolayout.FeatureBranch(phaseN, "worker-1"),
				Role:   configstore.RoleFeature,
			},
		},
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(layout.ConfigPath(), data, 0o644)
}
