package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"glfuzz/internal/driver"
)

type progressModel struct {
	title   string
	events  <-chan driver.VariantEvent
	spinner spinner.Model
	prog    progress.Model
	items   []variantItem
	width   int
	done    bool
}

type variantItem struct {
	name   string
	status driver.VariantStatus
	note   string
}

type eventMsg driver.VariantEvent
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the progress of
// count variants named after base.
func NewProgressModel(title, base string, count int, events <-chan driver.VariantEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]variantItem, count)
	for i := range items {
		items[i] = variantItem{name: fmt.Sprintf("%s_%03d", base, i), status: driver.VariantQueued}
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.VariantEvent(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d)", m.title, m.finished(), len(m.items))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.items {
		status := item.status.String()
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", status))
		name := item.name
		if item.note != "" {
			name += "  " + item.note
		}
		b.WriteString("  " + statusStyled + " " + truncate(name, nameWidth))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) finished() int {
	n := 0
	for _, item := range m.items {
		if terminal(item.status) {
			n++
		}
	}
	return n
}

func (m *progressModel) applyEvent(ev driver.VariantEvent) tea.Cmd {
	if ev.Index < 0 || ev.Index >= len(m.items) {
		return nil
	}
	item := &m.items[ev.Index]
	item.status = ev.Status
	switch ev.Status {
	case driver.VariantDone, driver.VariantCached:
		item.note = fmt.Sprintf("%d mutations, %s", ev.Applied, ev.Elapsed.Round(time.Millisecond))
	case driver.VariantFailed:
		if ev.Err != nil {
			item.note = ev.Err.Error()
		}
	}

	total := 0.0
	for _, it := range m.items {
		total += progressFromStatus(it.status)
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func terminal(s driver.VariantStatus) bool {
	return s == driver.VariantDone || s == driver.VariantCached || s == driver.VariantFailed
}

func progressFromStatus(s driver.VariantStatus) float64 {
	switch {
	case terminal(s):
		return 1.0
	case s == driver.VariantWorking:
		return 0.3
	default:
		return 0.0
	}
}

func styleStatus(s driver.VariantStatus) lipgloss.Style {
	switch s {
	case driver.VariantDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case driver.VariantCached:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	case driver.VariantFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case driver.VariantWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
