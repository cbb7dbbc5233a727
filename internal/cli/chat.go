package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/setter"
	"github.com/aretw0/setter/internal/presentation/tui"
	"github.com/aretw0/setter/pkg/dialogue"
	"github.com/aretw0/setter/pkg/domain"
	"github.com/google/uuid"
)

// ChatOptions configures a terminal conversation.
type ChatOptions struct {
	// UserID resumes a session; empty starts a fresh random one.
	UserID string
	// Fresh resets the session before the first message.
	Fresh bool
	// JSON prints one response object per line instead of chat text.
	JSON bool
	// Interactive enables the banner, prompt, colors and markdown.
	Interactive bool

	In  io.Reader
	Out io.Writer
}

// NewUserID returns a random CLI user id.
func NewUserID() string {
	return "cli-" + uuid.NewString()
}

// Chat reads one message per line and prints the replies until EOF, /quit
// or the funnel reaches END. /reset starts over.
func Chat(ctx context.Context, svc *dialogue.Service, opts ChatOptions) error {
	if opts.UserID == "" {
		opts.UserID = NewUserID()
	}
	if opts.Fresh {
		if err := svc.Reset(ctx, opts.UserID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	c := tui.NewColorizer(opts.Out)
	render := func(s string) string { return s }
	if opts.Interactive && !opts.JSON {
		tui.PrintBanner(opts.Out)
		fmt.Fprintf(opts.Out, "%s\n\n", c.Meta(fmt.Sprintf("setter %s · session %s · /reset, /quit", setter.Version, opts.UserID)))
		md := tui.NewRenderer()
		render = func(s string) string {
			out, err := md(s)
			if err != nil {
				return s
			}
			return out
		}
	}

	enc := json.NewEncoder(opts.Out)
	scanner := bufio.NewScanner(opts.In)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	for {
		if opts.Interactive && !opts.JSON {
			fmt.Fprint(opts.Out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := svc.Reset(ctx, opts.UserID); err != nil {
				return fmt.Errorf("failed to reset session: %w", err)
			}
			if !opts.JSON {
				fmt.Fprintln(opts.Out, c.Meta("[session reset]"))
			}
			continue
		}

		resp, err := svc.Process(ctx, dialogue.Request{UserID: opts.UserID, Message: line})
		if err != nil {
			if errors.Is(err, dialogue.ErrInputTooLarge) || errors.Is(err, dialogue.ErrInvalidUTF8) {
				fmt.Fprintln(opts.Out, c.Meta(fmt.Sprintf("[rejected: %v]", err)))
				continue
			}
			return err
		}

		if opts.JSON {
			if err := enc.Encode(resp); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(opts.Out, "%s %s\n", c.Bot("jamie:"), render(resp.Reply))
			if resp.Transition != nil && resp.Transition.From != resp.Transition.To {
				fmt.Fprintln(opts.Out, c.Meta(fmt.Sprintf("[%s -> %s: %s]", resp.Transition.From, resp.Transition.To, resp.Transition.Reason)))
			}
		}

		if resp.NextState == domain.StateEnd {
			if !opts.JSON {
				fmt.Fprintln(opts.Out, c.Meta("[conversation ended]"))
			}
			return nil
		}
	}
	return scanner.Err()
}
