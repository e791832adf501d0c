package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/repolayout"
)

// projectDir resolves the --dir flag (or the root command's persistent
// flag when called from a subcommand) to an absolute path.
func projectDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil || dir == "" {
		dir, err = rootCmd.PersistentFlags().GetString("dir")
		if err != nil {
			dir = "."
		}
	}
	return filepath.Abs(dir)
}

// openProject resolves the repository root, builds its Layout, loads and
// validates config.json, and opens the event log. gitOK reports whether the
// directory is a git repository at all.
func openProject(cmd *cobra.Command) (*repolayout.Layout, *configstore.Config, *repolayout.Git, *eventlog.Log, bool, error) {
	root, err := projectDir(cmd)
	if err != nil {
		return nil, nil, nil, nil, false, err
	}
	layout := repolayout.New(root, "")
	cfg, err := configstore.Load(layout.CzarinaDir)
	if err != nil {
		return nil, nil, nil, nil, false, asValidationErr(fmt.Errorf("load config: %w", err))
	}
	git := repolayout.NewGit(root)
	gitOK := git.IsGitRepo(cmd.Context())
	log, err := eventlog.Open(layout.LogsDir())
	if err != nil {
		return nil, nil, nil, nil, false, err
	}
	return layout, cfg, git, log, gitOK, nil
}
