package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/timeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listDoneStyle     = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// Lane index
// =============================================================================

// laneIndex groups a timeline layout's jobs by lane, left to right, and
// records each job's neighbours.
type laneIndex struct {
	layout graph.Layout
	lanes  [][]graph.Node
	preds  map[string][]string
	succs  map[string][]string
	stubs  map[string][]string // Stub kinds per job
}

func newLaneIndex(l graph.Layout) laneIndex {
	idx := laneIndex{
		layout: l,
		lanes:  make([][]graph.Node, l.MaxLane+1),
		preds:  make(map[string][]string),
		succs:  make(map[string][]string),
		stubs:  make(map[string][]string),
	}
	for _, n := range l.Nodes {
		idx.lanes[n.Lane] = append(idx.lanes[n.Lane], n)
	}
	for _, lane := range idx.lanes {
		slices.SortStableFunc(lane, func(a, b graph.Node) int { return cmp.Compare(a.X, b.X) })
	}
	for _, e := range l.Edges {
		idx.preds[e.To] = append(idx.preds[e.To], e.From)
		idx.succs[e.From] = append(idx.succs[e.From], e.To)
	}
	for _, s := range l.Stubs {
		idx.stubs[s.Node] = append(idx.stubs[s.Node], s.Kind)
	}
	return idx
}

// busy returns the time window covered by a lane's jobs.
func (idx laneIndex) busy(lane int) (start, end int64) {
	jobs := idx.lanes[lane]
	if len(jobs) == 0 {
		return 0, 0
	}
	start, end = jobs[0].SubmitTime, jobs[0].SubmitTime+jobs[0].ElapsedTime
	for _, n := range jobs[1:] {
		start = min(start, n.SubmitTime)
		end = max(end, n.SubmitTime+n.ElapsedTime)
	}
	return start, end
}

// laneTable renders every lane as one table row.
func laneTable(l graph.Layout) string {
	idx := newLaneIndex(l)
	rows := make([][]string, 0, len(idx.lanes))
	for i, lane := range idx.lanes {
		names := make([]string, len(lane))
		for j, n := range lane {
			names[j] = n.ID
		}
		start, end := idx.busy(i)
		rows = append(rows, []string{
			fmt.Sprint(i),
			fmt.Sprint(len(lane)),
			timeline.FormatDuration(start - l.Start),
			timeline.FormatDuration(end - l.Start),
			strings.Join(names, ", "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Lane", "Jobs", "From", "To", "Names").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 4 {
				return listNormalStyle
			}
			return listDimStyle
		})
	return t.Render()
}

// =============================================================================
// LaneModel - Interactive lane browser
// =============================================================================

// LaneModel is the bubbletea model for browsing a timeline layout lane by lane.
type LaneModel struct {
	idx    laneIndex
	Lane   int
	Job    int
	Height int
	Offset int
}

// NewLaneModel creates a lane browser for a timeline layout.
func NewLaneModel(l graph.Layout) LaneModel {
	return LaneModel{idx: newLaneIndex(l), Height: 15}
}

func (m LaneModel) Init() tea.Cmd {
	return nil
}

func (m LaneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Lane > 0 {
				m.Lane--
				if m.Lane < m.Offset {
					m.Offset = m.Lane
				}
			}
			m.clampJob()
		case "down", "j":
			if m.Lane < len(m.idx.lanes)-1 {
				m.Lane++
				if m.Lane >= m.Offset+m.Height {
					m.Offset = m.Lane - m.Height + 1
				}
			}
			m.clampJob()
		case "left", "h":
			if m.Job > 0 {
				m.Job--
			}
		case "right", "l":
			if m.Job < len(m.idx.lanes[m.Lane])-1 {
				m.Job++
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 3)
	}
	return m, nil
}

func (m *LaneModel) clampJob() {
	m.Job = min(m.Job, max(len(m.idx.lanes[m.Lane])-1, 0))
}

// Selected returns the job under the cursor.
func (m LaneModel) Selected() (graph.Node, bool) {
	lane := m.idx.lanes[m.Lane]
	if len(lane) == 0 {
		return graph.Node{}, false
	}
	return lane[m.Job], true
}

func (m LaneModel) View() string {
	var b strings.Builder
	l := m.idx.layout

	title := l.Title
	if title == "" {
		title = "Timeline"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d jobs · %d lanes · %s",
		len(l.Nodes), len(m.idx.lanes), timeline.FormatDuration(l.End-l.Start))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ lane  ←/→ job  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.idx.lanes))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Lane {
			cursor = "▸ "
		}
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%s%3d ", cursor, i)))
		for j, n := range m.idx.lanes[i] {
			if j > 0 {
				b.WriteString(listDimStyle.Render(" · "))
			}
			switch {
			case i == m.Lane && j == m.Job:
				b.WriteString(listSelectedStyle.Render(n.ID))
			case n.Finished:
				b.WriteString(listDoneStyle.Render(n.ID))
			default:
				b.WriteString(listNormalStyle.Render(n.ID))
			}
		}
		b.WriteString("\n")
	}

	if n, ok := m.Selected(); ok {
		b.WriteString("\n")
		b.WriteString(m.details(n))
	}
	return b.String()
}

// details describes one job.
func (m LaneModel) details(n graph.Node) string {
	var b strings.Builder
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	row := func(key, value string) {
		b.WriteString(keyStyle.Render(key) + " " + StyleValue.Render(value) + "\n")
	}

	status := "running"
	if n.Finished {
		status = "finished"
	}
	row("Job", n.ID)
	row("Status", status)
	row("Submitted", "+"+timeline.FormatDuration(n.SubmitTime-m.idx.layout.Start))
	row("Ran", timeline.FormatDuration(n.ElapsedTime))
	row("After", joinOrDash(m.idx.preds[n.ID]))
	row("Before", joinOrDash(m.idx.succs[n.ID]))
	if stubs := m.idx.stubs[n.ID]; len(stubs) > 0 {
		row("Dangling", strings.Join(stubs, ", "))
	}
	return b.String()
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "—"
	}
	return strings.Join(names, ", ")
}
