package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"GrantRadar/internal/domain"
)

// previewLimit caps the terminal preview; the archive holds the rest.
const previewLimit = 10

// Printer writes a short operator-facing preview of the run result.
// It is purely observational.
type Printer struct {
	out io.Writer
}

// NewPrinter writes to stdout.
func NewPrinter() *Printer {
	return &Printer{out: os.Stdout}
}

// NewPrinterWithWriter is NewPrinter with an explicit destination.
func NewPrinterWithWriter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Print renders up to previewLimit items with the total count.
func (p *Printer) Print(items []domain.NormalizedItem) {
	if len(items) == 0 {
		fmt.Fprintln(p.out, "[radar] no new items")
		return
	}

	fmt.Fprintf(p.out, "[radar] %d new item(s)\n", len(items))

	shown := items
	if len(shown) > previewLimit {
		shown = shown[:previewLimit]
	}

	for i, item := range shown {
		fmt.Fprintf(p.out, "%2d. [%s] %s\n", i+1, item.Source, item.Title)
		if item.Link != "" {
			fmt.Fprintf(p.out, "    %s\n", item.Link)
		}
		if len(item.Keywords) > 0 {
			fmt.Fprintf(p.out, "    keywords: %s\n", strings.Join(item.Keywords, ", "))
		}
	}

	if rest := len(items) - len(shown); rest > 0 {
		fmt.Fprintf(p.out, "... and %d more (see archive)\n", rest)
	}
}
