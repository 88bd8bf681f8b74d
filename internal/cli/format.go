package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/gmsas95/arogya-cli/internal/vaccine"
	"golang.org/x/term"
)

// styles are bound to the output writer so pipes and buffers get plain text.
type styles struct {
	header   lipgloss.Style
	muted    lipgloss.Style
	ok       lipgloss.Style
	severity map[vaccine.Severity]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true),
		muted:  r.NewStyle().Faint(true),
		ok:     r.NewStyle().Foreground(lipgloss.Color("10")),
		severity: map[vaccine.Severity]lipgloss.Style{
			vaccine.SeverityCritical: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			vaccine.SeverityWarning:  r.NewStyle().Foreground(lipgloss.Color("208")),
			vaccine.SeverityElevated: r.NewStyle().Foreground(lipgloss.Color("11")),
			vaccine.SeverityInfo:     r.NewStyle().Foreground(lipgloss.Color("12")),
			vaccine.SeverityNone:     r.NewStyle().Foreground(lipgloss.Color("8")),
		},
	}
}

func (s styles) title(text string) string {
	return s.header.Render(text) + "\n" + strings.Repeat("=", lipgloss.Width(text))
}

func (s styles) badge(sev vaccine.Severity) string {
	style, ok := s.severity[sev]
	if !ok {
		style = s.muted
	}
	return style.Render("[" + strings.ToUpper(string(sev)) + "]")
}

func (s styles) verified(verified bool) string {
	if verified {
		return s.ok.Render("✓ verified")
	}
	return s.muted.Render("… pending")
}

func channelStatus(enabled bool) string {
	if enabled {
		return "✅ enabled"
	}
	return "❌ disabled"
}

func maskToken(token string) string {
	if len(token) < 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderMarkdown styles md for w. Non-terminals get the plain style.
func renderMarkdown(w io.Writer, md string) (string, error) {
	opt := glamour.WithStandardStyle("notty")
	if isTerminal(w) {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// prompt reads one line from in after printing label.
func (c *CLI) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if c.reader == nil {
		c.reader = bufio.NewReader(c.in)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// secret reads a password without echo when in is a terminal.
func (c *CLI) secret(label string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return c.prompt(label)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
