package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the setter banner in a warm gradient.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"           _   _            ", "#fbbf24"},
		{"  ___  ___| |_| |_ ___ _ __ ", "#fb923c"},
		{" / __|/ _ \\ __| __/ _ \\ '__|", "#f87171"},
		{" \\__ \\  __/ |_| ||  __/ |   ", "#f472b6"},
		{" |___/\\___|\\__|\\__\\___|_|   ", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Colorizer styles chat roles for the terminal.
type Colorizer struct {
	out *termenv.Output
}

func NewColorizer(w io.Writer) Colorizer {
	return Colorizer{out: termenv.NewOutput(w)}
}

// Bot styles the assistant's name tag.
func (c Colorizer) Bot(s string) string {
	return c.out.String(s).Foreground(c.out.Color("#f472b6")).Bold().String()
}

// Meta styles state and attribute annotations.
func (c Colorizer) Meta(s string) string {
	return c.out.String(s).Faint().String()
}
