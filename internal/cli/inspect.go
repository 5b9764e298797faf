package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/yunchaoli/cablerig/pkg/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command for browsing a batch interactively.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [batch.json]",
		Short: "Browse the assemblies of a saved batch",
		Long: `Browse the assemblies of a saved batch.

By default inspect opens an interactive list of assemblies; selecting one
shows its joint groups and anchor. With --plain the assembly table is
printed directly, suitable for piping.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := scene.ImportJSON(args[0])
			if err != nil {
				return fmt.Errorf("load batch %s: %w", args[0], err)
			}
			if plain {
				fmt.Println(assemblyTable(b))
				return nil
			}
			return runInspect(b)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the assembly table without interaction")

	return cmd
}

// runInspect starts the interactive assembly browser.
func runInspect(b *scene.Batch) error {
	m := NewAssemblyListModel(b)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	if lm, ok := final.(AssemblyListModel); ok && lm.Selected != nil {
		fmt.Println(assemblyDetail(b, *lm.Selected))
	}
	return nil
}

// =============================================================================
// AssemblyListModel - Interactive assembly selection
// =============================================================================

// AssemblyListModel is the bubbletea model for interactive assembly browsing.
type AssemblyListModel struct {
	Batch    *scene.Batch
	Cursor   int
	Selected *int
	Height   int
	Offset   int
}

// NewAssemblyListModel creates a new assembly list model.
func NewAssemblyListModel(b *scene.Batch) AssemblyListModel {
	return AssemblyListModel{
		Batch:  b,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m AssemblyListModel) Init() tea.Cmd {
	return nil
}

func (m AssemblyListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Batch.Assemblies)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			i := m.Cursor
			m.Selected = &i
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m AssemblyListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Assembly"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Batch.Assemblies) {
		end = len(m.Batch.Assemblies)
	}

	for i := m.Offset; i < end; i++ {
		a := m.Batch.Assemblies[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := fmt.Sprintf("%sassembly %-3d %-6s %3d links  azimuth %6.1f°",
			cursor, a.Index, string(a.Anchor.Kind), a.NumLinks(), degrees(a.Azimuth))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if len(m.Batch.Assemblies) > m.Height {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d-%d of %d", m.Offset+1, end, len(m.Batch.Assemblies))))
	}

	return b.String()
}

// =============================================================================
// Static Views
// =============================================================================

// assemblyTable renders the batch's assemblies as a table.
func assemblyTable(b *scene.Batch) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(listDimStyle).
		Headers("#", "ANCHOR", "LINKS", "JOINTS", "AZIMUTH", "DIRECTION")

	for _, a := range b.Assemblies {
		joints := 0
		for _, g := range a.Groups() {
			joints += g.Len()
		}
		t.Row(
			fmt.Sprintf("%d", a.Index),
			string(a.Anchor.Kind),
			fmt.Sprintf("%d", a.NumLinks()),
			fmt.Sprintf("%d", joints),
			fmt.Sprintf("%.1f°", degrees(a.Azimuth)),
			fmt.Sprintf("(%.2f, %.2f, %.2f)", a.Direction.X, a.Direction.Y, a.Direction.Z),
		)
	}

	return t.Render()
}

// assemblyDetail renders one assembly's joint groups and anchor.
func assemblyDetail(b *scene.Batch, i int) string {
	a := b.Assemblies[i]

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(fmt.Sprintf("Assembly %d", a.Index)))
	sb.WriteString("\n\n")

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(listDimStyle).
		Headers("GROUP", "KIND", "JOINTS", "BODY0", "BODY1")

	for _, g := range a.Groups() {
		arch := a.Archetypes[g.Archetype]
		t.Row(
			g.Name,
			string(arch.Kind),
			fmt.Sprintf("%d", g.Len()),
			string(g.Body0),
			string(g.Body1),
		)
	}
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")

	sb.WriteString(listDimStyle.Render(fmt.Sprintf(
		"capsule: half %.3f radius %.3f mass %.4f", a.Capsule.HalfLength, a.Capsule.Radius, a.Capsule.Mass)))
	sb.WriteString("\n")
	sb.WriteString(listDimStyle.Render(fmt.Sprintf(
		"anchor:  %s at (%.2f, %.2f, %.2f)", string(a.Anchor.Kind),
		a.Anchor.Position.X, a.Anchor.Position.Y, a.Anchor.Position.Z)))

	return sb.String()
}

// degrees converts radians to degrees for display.
func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
