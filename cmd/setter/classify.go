package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/aretw0/setter/pkg/signals"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [message]",
	Short: "Show the detector signals for a message",
	Long: `Prints the signals the detectors see in a message. With --state, also
steps the funnel from that state and prints the decision.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := strings.Join(args, " ")
		stateName, _ := cmd.Flags().GetString("state")

		detector := signals.Default()
		if cfg.PhrasebookPath != "" {
			book, err := signals.LoadPhrasebook(cfg.PhrasebookPath)
			if err != nil {
				return err
			}
			detector = signals.NewDetector(book)
		}

		out := map[string]any{"signals": detector.Detect(msg)}
		if stateName != "" {
			state, err := domain.ParseState(stateName)
			if err != nil {
				return err
			}
			attrs := &domain.Attributes{}
			evt, err := funnel.New(funnel.WithDetector(detector)).
				Transition(cmd.Context(), "", state, attrs, msg)
			if err != nil {
				return err
			}
			out["step"] = evt
			out["attributes"] = attrs.ToMap()
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().String("state", "", "Also step the funnel from this state")
}
