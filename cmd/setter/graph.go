package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/setter/internal/presentation/graph"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the funnel graph",
	Long:  `Outputs a Mermaid diagram (graph TD) of every funnel state and transition.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(funnel.Edges())
		}
		fmt.Print(graph.GenerateMermaid(funnel.Edges(), nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("json", false, "Print the edge table as JSON")
}
