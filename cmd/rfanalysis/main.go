package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rfanalysis",
		Short: "rfanalysis is a tool to select and apply Random Forest classifiers",
		Long:  `A tool to split survey extracts, balance training data, cross-validate Random Forest hyperparameters, train the selected model and evaluate it`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "")
	rootCmd.AddCommand(versionCmd(), splitCmd(config), balanceCmd(config), searchCmd(config), trainCmd(config), evaluateCmd(config), rocCmd(config), predictCmd(config))
	return rootCmd
}
