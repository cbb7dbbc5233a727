package main

import (
	"fmt"

	"github.com/aretw0/setter"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of setter",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("setter version %s\n", setter.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
