package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/grapplegraph/pkg/io"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle       = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

func (c *CLI) browseCommand() *cobra.Command {
	var fromCatalog, noCache bool

	cmd := &cobra.Command{
		Use:   "browse [graph.json]",
		Short: "Explore a move graph interactively",
		Long: `Browse opens a terminal explorer over a move graph: the node list on top,
the selected node's transitions below. Press enter on a transition to follow
it and backspace to go back.

The input is a graph written by build --format json, or a catalog when
--catalog is given, which is built first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := c.browseGraph(ctx, args[0], fromCatalog, noCache)
			if err != nil {
				return err
			}
			if g.NodeCount() == 0 {
				printWarning("Graph has no nodes")
				return nil
			}
			_, err = tea.NewProgram(newBrowseModel(g), tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&fromCatalog, "catalog", false, "treat the input as a catalog and build it first")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the build cache (with --catalog)")
	return cmd
}

func (c *CLI) browseGraph(ctx context.Context, path string, fromCatalog, noCache bool) (*movegraph.Graph, error) {
	if !fromCatalog {
		return graphio.ImportJSON(path, movegraph.Options{})
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	opts := cfg.PipelineOptions()
	opts.CatalogPath = path
	opts.Logger = loggerFromContext(ctx)
	cat, err := runner.Execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cat.Graph, nil
}

// =============================================================================
// browseModel - Interactive graph explorer
// =============================================================================

type browsePane int

const (
	paneNodes browsePane = iota
	paneEdges
)

// browseModel is the bubbletea model of the browse command.
type browseModel struct {
	graph    *movegraph.Graph
	nodes    []movegraph.Node
	terminal map[movegraph.NodeID]bool

	cursor  int // selected node
	edge    int // selected transition of the selected node
	focus   browsePane
	history []int
	height  int
	offset  int
}

func newBrowseModel(g *movegraph.Graph) browseModel {
	terminal := make(map[movegraph.NodeID]bool)
	for _, id := range g.Terminals() {
		terminal[id] = true
	}
	return browseModel{graph: g, nodes: g.Nodes(), terminal: terminal, height: 12}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) outgoing() []movegraph.Edge {
	return m.graph.Outgoing(m.nodes[m.cursor].ID)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m = m.move(-1)
		case "down", "j":
			m = m.move(1)
		case "tab":
			if m.focus == paneNodes && len(m.outgoing()) > 0 {
				m.focus = paneEdges
			} else {
				m.focus = paneNodes
			}
		case "enter", "l":
			if m.focus == paneNodes {
				if len(m.outgoing()) > 0 {
					m.focus = paneEdges
				}
				return m, nil
			}
			m = m.follow()
		case "backspace", "h":
			m = m.back()
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-14, 5)
		m = m.scroll()
	}
	return m, nil
}

func (m browseModel) move(delta int) browseModel {
	if m.focus == paneEdges {
		m.edge = min(max(m.edge+delta, 0), max(len(m.outgoing())-1, 0))
		return m
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.nodes)-1)
	m.edge = 0
	return m.scroll()
}

// follow jumps to the target of the selected transition.
func (m browseModel) follow() browseModel {
	out := m.outgoing()
	if m.edge >= len(out) {
		return m
	}
	m.history = append(m.history, m.cursor)
	m.cursor = int(out[m.edge].To)
	m.edge = 0
	if len(m.outgoing()) == 0 {
		m.focus = paneNodes
	}
	return m.scroll()
}

func (m browseModel) back() browseModel {
	if len(m.history) == 0 {
		m.focus = paneNodes
		return m
	}
	m.cursor = m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.edge = 0
	return m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m browseModel) scroll() browseModel {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m
}

func nodeLabel(n movegraph.Node) string {
	if n.Metadata.Description == "" {
		return fmt.Sprintf("#%d", n.ID)
	}
	return n.Metadata.Description
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Move Graph"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d nodes · %d edges", len(m.nodes), m.graph.EdgeCount())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⇥ switch pane  ⏎ follow  ⌫ back  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.nodes))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		explicit := ""
		if n.IsExplicitPosition {
			explicit = "✓"
		}
		out := fmt.Sprint(m.graph.OutDegree(n.ID))
		if m.terminal[n.ID] {
			out = "end"
		}
		rows = append(rows, []string{cursor, fmt.Sprint(n.ID), nodeLabel(n), out, explicit, strings.Join(n.Metadata.Tags, " ")})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Position", "Out", "Explicit", "Tags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.nodes) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.cursor && m.focus == paneNodes:
				return listSelectedStyle
			case idx == m.cursor:
				return listNormalStyle.Bold(true)
			case !m.nodes[idx].IsExplicitPosition:
				return listDimStyle
			}
			return listNormalStyle
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	current := m.nodes[m.cursor]
	b.WriteString(StyleHighlight.Render("Transitions from " + nodeLabel(current)))
	b.WriteString("\n")
	out := m.outgoing()
	if len(out) == 0 {
		b.WriteString(listDimStyle.Render("  none (terminal position)"))
		b.WriteString("\n")
	}
	for i, e := range out {
		cursor := "  "
		if i == m.edge && m.focus == paneEdges {
			cursor = "▸ "
		}
		desc := e.Metadata.Description
		if e.Reverse {
			desc += " (reverse)"
		}
		target := nodeLabel(m.nodes[e.To])
		line := fmt.Sprintf("%s%s %s %s", cursor, desc, iconArrow, target)
		if i == m.edge && m.focus == paneEdges {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))
	if len(m.history) > 0 {
		trail := make([]string, len(m.history))
		for i, h := range m.history {
			trail[i] = fmt.Sprint(m.nodes[h].ID)
		}
		b.WriteString(listDimStyle.Render("  path " + strings.Join(trail, " "+iconArrow+" ")))
	}
	return b.String()
}
