// Package ui renders CLI output: colored status lines, model listings and
// the extraction result block.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"medspresso/pkg/types"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// Console writes results to Out and status lines to Err.
type Console struct {
	Out io.Writer
	Err io.Writer
}

// Success prints a success line.
func (c *Console) Success(format string, args ...any) {
	successColor.Fprintf(c.Err, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error line.
func (c *Console) Error(format string, args ...any) {
	errorColor.Fprintf(c.Err, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func (c *Console) Warning(format string, args ...any) {
	warningColor.Fprintf(c.Err, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info line.
func (c *Console) Info(format string, args ...any) {
	infoColor.Fprintf(c.Err, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Bold prints a bold line on Out.
func (c *Console) Bold(format string, args ...any) {
	boldColor.Fprintln(c.Out, fmt.Sprintf(format, args...))
}

// Separator prints a horizontal rule.
func (c *Console) Separator() {
	fmt.Fprintln(c.Out, Styles.Separator.Render(strings.Repeat("─", lineWidth)))
}

// Result prints a titled result between two separators.
func (c *Console) Result(title, text string) {
	fmt.Fprintln(c.Out)
	c.Bold("%s", title)
	c.Separator()
	fmt.Fprintln(c.Out, text)
	c.Separator()
}

// Models prints registry entries with description and tags.
func (c *Console) Models(models []types.Model) {
	c.Bold("Available Models:")
	for _, m := range models {
		fmt.Fprintln(c.Out)
		fmt.Fprintln(c.Out, Styles.Model.Render(m.Name))
		desc := m.Description
		if desc == "" {
			desc = "N/A"
		}
		fmt.Fprintf(c.Out, "Description: %s\n", desc)
		if len(m.Tags) > 0 {
			fmt.Fprintf(c.Out, "Tags: %s\n", strings.Join(m.Tags, ", "))
		}
	}
}

// Names prints one name per line under a bold title.
func (c *Console) Names(title string, names []string) {
	c.Bold("%s", title)
	for _, n := range names {
		fmt.Fprintf(c.Out, "  %s\n", Styles.Model.Render(n))
	}
}

// Box prints content inside a rounded box.
func (c *Console) Box(title, content string, failed bool) {
	style, titleColor := Styles.ResultBox, successColor
	if failed {
		style, titleColor = Styles.ErrorBox, errorColor
	}
	fmt.Fprintln(c.Err, style.Render(fmt.Sprintf("%s\n\n%s", titleColor.Sprint(title), content)))
}
