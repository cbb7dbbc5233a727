package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/aretw0/setter/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the funnel in the terminal",
	Long: `Reads one message per line from stdin and prints the replies.
Sessions persist in the configured store, so --session resumes a conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonOut, _ := cmd.Flags().GetBool("json")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		app, err := cli.NewApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.Chat(ctx, app.Service, cli.ChatOptions{
			UserID:      sessionID,
			Fresh:       fresh,
			JSON:        jsonOut,
			Interactive: term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())),
			In:          os.Stdin,
			Out:         os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session id to resume (random when empty)")
	chatCmd.Flags().Bool("fresh", false, "Reset the session before starting")
	chatCmd.Flags().Bool("json", false, "Print one JSON response per line")
}
