package output

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultDocWidth = 80
	minDocWidth     = 20
)

var (
	rendererMu    sync.Mutex
	rendererCache = map[int]*glamour.TermRenderer{}
)

// TerminalWidth returns the terminal width, falling back to COLUMNS and
// then to the given default when stdout is not a terminal.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultDocWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return fallback
}

// RenderMarkdown renders a document with glamour, wrapped to the terminal.
func RenderMarkdown(text string) (string, error) {
	return RenderMarkdownWithWidth(text, TerminalWidth(defaultDocWidth))
}

// RenderMarkdownWithWidth renders a document wrapped to an explicit width.
// Empty input renders to an empty string, not an empty styled block.
func RenderMarkdownWithWidth(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if width < minDocWidth {
		width = minDocWidth
	}

	r, err := rendererFor(width)
	if err != nil {
		return "", err
	}
	rendered, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(rendered, "\n"), nil
}

// rendererFor reuses one renderer per width; building a TermRenderer
// loads a style set, which is wasteful to repeat per call.
func rendererFor(width int) (*glamour.TermRenderer, error) {
	rendererMu.Lock()
	defer rendererMu.Unlock()

	if r, ok := rendererCache[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	rendererCache[width] = r
	return r, nil
}
