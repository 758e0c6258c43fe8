package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/contact"
	orgio "github.com/matzehuels/orgtower/pkg/io"
	"github.com/matzehuels/orgtower/pkg/org"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/render"
	"github.com/matzehuels/orgtower/pkg/session"
)

// nudgeStep is how far one key press drags a box.
const nudgeStep = 10.0

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colFaint)

	stanceStyles = map[contact.Stance]lipgloss.Style{
		contact.StanceSupportive: lipgloss.NewStyle().Foreground(colGood),
		contact.StanceNeutral:    lipgloss.NewStyle().Foreground(colCaution),
		contact.StanceResistant:  lipgloss.NewStyle().Foreground(colAlert),
		contact.StanceUnknown:    lipgloss.NewStyle().Foreground(colMuted),
	}
)

func (c *CLI) exploreCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "explore [analysis]",
		Short: "Edit an analysis in the terminal",
		Long: `Explore shows the reconciled hierarchy as an indented list. Delete contacts,
nudge boxes, switch the department filter, and save the analysis together
with an SVG of the current view.

Keys:
  ↑/↓ j/k   select           d      delete selected
  H J K L   nudge box        f      next department
  r         rebuild layout   s      save
  q         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, path string, flags *layoutFlags) error {
	a, err := orgio.ImportAnalysis(path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sess, err := session.New("", a, runner, flags.options())
	if err != nil {
		return err
	}
	m, err := newExploreModel(ctx, sess, path)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(exploreModel); ok && fm.dirty {
		printWarning("Quit with unsaved changes")
	}
	return nil
}

// =============================================================================
// exploreModel - interactive session editor
// =============================================================================

type exploreModel struct {
	ctx    context.Context
	sess   *session.Session
	path   string
	doc    render.Document
	cursor int
	depts  []string // "" first, meaning no filter
	dept   int
	status string
	err    error
	dirty  bool
}

func newExploreModel(ctx context.Context, sess *session.Session, path string) (exploreModel, error) {
	m := exploreModel{
		ctx:   ctx,
		sess:  sess,
		path:  path,
		depts: append([]string{""}, sess.Departments()...),
	}
	for i, d := range m.depts {
		if d == sess.Department() {
			m.dept = i
		}
	}
	if err := m.refresh(); err != nil {
		return m, err
	}
	return m, nil
}

func (m *exploreModel) refresh() error {
	doc, err := m.sess.Document(m.ctx)
	if err != nil {
		return err
	}
	m.doc = doc
	if m.cursor >= len(doc.Nodes) {
		m.cursor = len(doc.Nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return nil
}

func (m exploreModel) selected() (render.DocumentNode, bool) {
	if m.cursor < 0 || m.cursor >= len(m.doc.Nodes) {
		return render.DocumentNode{}, false
	}
	return m.doc.Nodes[m.cursor], true
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.status, m.err = "", nil
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.doc.Nodes)-1 {
			m.cursor++
		}
		return m, nil
	case "d", "delete":
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		if m.sess.Delete(m.ctx, n.ID) {
			m.status = fmt.Sprintf("deleted %s", displayName(n))
			m.dirty = true
		}
	case "H":
		m.nudge(-nudgeStep, 0)
	case "L":
		m.nudge(nudgeStep, 0)
	case "K":
		m.nudge(0, -nudgeStep)
	case "J":
		m.nudge(0, nudgeStep)
	case "f":
		m.dept = (m.dept + 1) % len(m.depts)
		if err := m.sess.SetDepartment(m.depts[m.dept]); err != nil {
			m.err = err
			return m, nil
		}
		m.cursor = 0
	case "r":
		if err := m.sess.Rebuild(m.ctx); err != nil {
			m.err = err
			return m, nil
		}
		m.status = "layout rebuilt"
	case "s":
		m.err = m.save()
		if m.err == nil {
			m.dirty = false
		}
	default:
		return m, nil
	}

	if err := m.refresh(); err != nil {
		m.err = err
	}
	return m, nil
}

func (m *exploreModel) nudge(dx, dy float64) {
	n, ok := m.selected()
	if !ok {
		return
	}
	if m.sess.Reposition(m.ctx, n.ID, dx, dy, 1) {
		m.status = fmt.Sprintf("moved %s", displayName(n))
	}
}

// save writes the analysis back to its file and the current view next to
// it as SVG.
func (m *exploreModel) save() error {
	if err := orgio.ExportAnalysis(m.sess.Analysis(), m.path); err != nil {
		return err
	}
	artifacts, err := m.sess.Render(m.ctx, []string{pipeline.FormatSVG})
	if err != nil {
		return err
	}
	svgPath := basePath("", m.path) + pipeline.Extensions[pipeline.FormatSVG]
	if err := os.WriteFile(svgPath, artifacts[pipeline.FormatSVG], 0o644); err != nil {
		return err
	}
	m.status = fmt.Sprintf("saved %s and %s", m.path, svgPath)
	return nil
}

func (m exploreModel) View() string {
	var b strings.Builder

	title := m.doc.AccountName
	if title == "" {
		title = m.path
	}
	b.WriteString(styleHeading.Render(title))
	if d := m.depts[m.dept]; d != "" {
		b.WriteString(listDimStyle.Render("  department: ") + styleText.Render(d))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  d delete  HJKL nudge  f filter  r rebuild  s save  q quit"))
	b.WriteString("\n\n")

	if len(m.doc.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  no contacts"))
		b.WriteString("\n")
	}
	for i, n := range m.doc.Nodes {
		b.WriteString(m.row(i, n))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(markFail.Render(glyphFail) + " " + m.err.Error())
	case m.status != "":
		b.WriteString(markOK.Render(glyphOK) + " " + m.status)
	case m.doc.Report != nil && m.doc.Report.Rerouted() > 0:
		b.WriteString(markWarn.Render(glyphWarn) + " " +
			styleCaution.Render(fmt.Sprintf("%d reporting lines repaired", m.doc.Report.Rerouted())))
	}
	return b.String()
}

func (m exploreModel) row(i int, n render.DocumentNode) string {
	cursor := "  "
	style := listNormalStyle
	if i == m.cursor {
		cursor = "▸ "
		style = listSelectedStyle
	}

	line := cursor + strings.Repeat("  ", max(n.Depth-1, 0)) + style.Render(displayName(n))
	if n.Title != "" {
		line += listDimStyle.Render(" · " + n.Title)
	}
	if st, ok := stanceStyles[n.Stance]; ok && n.Stance != "" {
		line += " " + st.Render(string(n.Stance))
	}
	if reroutedResolutions[n.Resolution] {
		line += " " + styleCaution.Render("("+strings.ReplaceAll(n.Resolution, "_", " ")+")")
	}
	if n.Moved {
		line += listDimStyle.Render(" *")
	}
	return line
}

var reroutedResolutions = map[string]bool{
	org.ResolvedSelfLoop.String(): true,
	org.ResolvedDangling.String(): true,
	org.ResolvedCycle.String():    true,
}

func displayName(n render.DocumentNode) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}
