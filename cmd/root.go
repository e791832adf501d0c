// Package cmd is Czarina's cobra CLI surface: init, analyze, launch,
// status, phase, hopper, closeout, wiggum, and daemon. initConfig reads an
// optional .czarina.yaml and CZARINA_* environment variables into viper,
// but no command passes those values on: `czar run` and `daemon run` use
// CzarLoop's and ApprovalDaemon's built-in tick and poll intervals, and
// configstore.LoadOperational is not called here.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "czarina",
	Short: "Multi-agent coding orchestration",
	Long:  "Czarina orchestrates parallel AI coding workers, each on its own git branch and terminal session, under a supervising Czar loop.",
}

// Execute runs the root command. Exit codes follow spec.md §6: 0 success,
// 1 operational error, 2 validation error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "operational config file (default .czarina.yaml)")
	rootCmd.PersistentFlags().String("dir", ".", "project directory (repository root)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".czarina")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("CZARINA")
	viper.AutomaticEnv()

	// No operational config file is a normal state; defaults apply.
	_ = viper.ReadInConfig()
}
