package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orgtower/pkg/org/transform"
	"github.com/matzehuels/orgtower/pkg/pipeline"
)

// Palette. Stance colours in explore reuse good, caution and alert.
var (
	colAccent  = lipgloss.Color("38")
	colGood    = lipgloss.Color("71")
	colCaution = lipgloss.Color("214")
	colAlert   = lipgloss.Color("203")
	colLink    = lipgloss.Color("111")
	colText    = lipgloss.Color("252")
	colMuted   = lipgloss.Color("246")
	colFaint   = lipgloss.Color("241")
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(colAccent)
	styleFaint   = lipgloss.NewStyle().Foreground(colFaint)
	styleText    = lipgloss.NewStyle().Foreground(colText)
	styleCaution = lipgloss.NewStyle().Foreground(colCaution)
	styleCmd     = lipgloss.NewStyle().Foreground(colLink)
	styleHit     = lipgloss.NewStyle().Foreground(colGood)
	styleMiss    = lipgloss.NewStyle().Foreground(colMuted)

	markOK   = lipgloss.NewStyle().Foreground(colGood)
	markFail = lipgloss.NewStyle().Foreground(colAlert)
	markWarn = lipgloss.NewStyle().Foreground(colCaution)
	markInfo = lipgloss.NewStyle().Foreground(colMuted)
	markSpin = lipgloss.NewStyle().Foreground(colAccent)
)

const (
	glyphOK     = "✓"
	glyphFail   = "✗"
	glyphWarn   = "▲"
	glyphInfo   = "•"
	glyphArrow  = "↳"
	labelCached = "cached"
	labelFresh  = "fresh"
)

func emit(mark lipgloss.Style, glyph, text string) {
	fmt.Println(mark.Render(glyph) + " " + text)
}

func printSuccess(format string, args ...any) { emit(markOK, glyphOK, fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	emit(markWarn, glyphWarn, styleCaution.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) { emit(markInfo, glyphInfo, fmt.Sprintf(format, args...)) }

func printDetail(format string, args ...any) {
	fmt.Println("  " + styleFaint.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written artifact.
func printFile(path string) {
	fmt.Println("  " + styleFaint.Render(glyphArrow) + " " + styleText.Render(path))
}

func printNextStep(description, cmd string) {
	fmt.Println(styleFaint.Render(description+":") + " " + styleCmd.Render(cmd))
}

// statsLine formats pipeline statistics as one dimmed line.
func statsLine(s pipeline.Stats, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d contacts", s.Nodes),
		fmt.Sprintf("depth %d", s.Depth),
		fmt.Sprintf("%d leaves", s.Leaves),
	}
	if s.Rerouted > 0 {
		parts = append(parts, fmt.Sprintf("%d rerouted", s.Rerouted))
	}

	status := styleMiss.Render(labelFresh)
	if cached {
		status = styleHit.Render(labelCached)
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(styleFaint.Render(" · "))
		}
		b.WriteString(styleFaint.Render(part))
	}
	b.WriteString(styleFaint.Render(" · ") + status)
	return b.String()
}

// reportLines lists the repairs in r, one per line. It is empty when the
// input needed no repair.
func reportLines(r transform.Report) []string {
	var lines []string
	add := func(n int, what string) {
		if n > 0 {
			lines = append(lines, fmt.Sprintf("%d %s", n, what))
		}
	}
	add(r.MissingIDs, "contacts without an id dropped")
	add(r.Duplicates, "duplicate ids dropped")
	add(r.SelfLoops, "self-managed contacts moved under the root")
	add(r.Dangling, "unknown managers replaced by the root")
	add(r.CyclesBroken, "reporting cycles broken")
	return lines
}

func printReport(r transform.Report) {
	for _, line := range reportLines(r) {
		printWarning("%s", line)
	}
}

// pluralize formats a count with its noun, e.g. "1 contact", "3 contacts".
func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
