package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rfanalysis",
		Long:  `All software has versions. This is rfanalysis's`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("rfanalysis model-selection tool v0.1")
		},
	}
}
