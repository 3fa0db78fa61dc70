// internal/tui/tui.go
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tamzrod/modbus-slavesim/internal/config"
	"github.com/tamzrod/modbus-slavesim/internal/register"
	"github.com/tamzrod/modbus-slavesim/internal/registry"
	"github.com/tamzrod/modbus-slavesim/internal/slave"
)

const (
	focusSlaves = iota
	focusPoints
	focusInput
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	activeStyle = baseStyle.
			BorderForeground(lipgloss.Color("white"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#909090",
		Dark:  "#626262",
	}).Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

type tickMsg time.Time

// Model is the cockpit: a slave list, the selected slave's point table for
// one register kind, a command line and the shared event log.
type Model struct {
	reg  *registry.Registry
	logs *LogBuffer

	slaveTable table.Model
	pointTable table.Model
	input      textinput.Model
	logView    viewport.Model

	kind   register.Kind
	focus  int
	status string
	ready  bool
	width  int
	height int
}

// New builds the cockpit model over a registry whose sink feeds logs.
func New(reg *registry.Registry, logs *LogBuffer) Model {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)

	slaves := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 16},
			{Title: "Proto", Width: 5},
			{Title: "Endpoint", Width: 22},
			{Title: "State", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(6),
	)
	slaves.SetStyles(styles)

	points := table.New(
		table.WithColumns([]table.Column{
			{Title: "Address", Width: 8},
			{Title: "Name", Width: 18},
			{Title: "Value", Width: 8},
			{Title: "Min", Width: 6},
			{Title: "Max", Width: 6},
			{Title: "RO", Width: 3},
			{Title: "Unit", Width: 8},
		}),
		table.WithHeight(12),
	)
	points.SetStyles(styles)

	input := textinput.New()
	input.Placeholder = "read holding_register 0 | write coil 3 1 | start | stop | slave s1 | kind coil | export points.yaml"

	m := Model{
		reg:        reg,
		logs:       logs,
		slaveTable: slaves,
		pointTable: points,
		input:      input,
		kind:       register.HoldingRegister,
		focus:      focusSlaves,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.focus == focusInput {
			switch msg.Type {
			case tea.KeyEnter:
				m.status = m.execute(m.input.Value())
				m.input.SetValue("")
				m.refresh()
				return m, nil
			case tea.KeyEsc:
				m.input.Blur()
				m.focus = focusSlaves
				return m, nil
			case tea.KeyCtrlC:
				return m, tea.Quit
			}
		} else {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "tab":
				m.cycleFocus()
				return m, nil
			case "i", ":":
				m.focus = focusInput
				m.input.Focus()
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := msg.Height - 26
		if logHeight < 5 {
			logHeight = 5
		}
		if !m.ready {
			m.logView = viewport.New(msg.Width-2, logHeight)
			m.ready = true
		} else {
			m.logView.Width = msg.Width - 2
			m.logView.Height = logHeight
		}

	case tickMsg:
		m.refresh()
		cmds = append(cmds, tick())
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusSlaves:
		m.slaveTable, cmd = m.slaveTable.Update(msg)
	case focusPoints:
		m.pointTable, cmd = m.pointTable.Update(msg)
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) cycleFocus() {
	m.focus = (m.focus + 1) % 3
	m.input.Blur()
	if m.focus == focusInput {
		m.input.Focus()
	}
}

// refresh rebuilds both tables and the log pane from current engine state.
func (m *Model) refresh() {
	var rows []table.Row
	for _, s := range m.reg.List() {
		rows = append(rows, table.Row{
			s.ID(), s.Name(), string(s.Config().Protocol), s.Endpoint(), s.State().String(),
		})
	}
	m.slaveTable.SetRows(rows)

	var pointRows []table.Row
	if s := m.selectedSlave(); s != nil {
		for _, e := range s.Snapshot(m.kind) {
			lo, hi := "-", "-"
			if e.Point.Min != nil {
				lo = strconv.Itoa(int(*e.Point.Min))
			}
			if e.Point.Max != nil {
				hi = strconv.Itoa(int(*e.Point.Max))
			}
			ro := ""
			if e.Point.ReadOnly {
				ro = "x"
			}
			pointRows = append(pointRows, table.Row{
				strconv.Itoa(int(e.Address)), e.Point.Name, strconv.Itoa(int(e.Value)),
				lo, hi, ro, e.Point.Unit,
			})
		}
	}
	m.pointTable.SetRows(pointRows)

	if m.ready {
		m.logView.SetContent(m.logs.Render())
		m.logView.GotoBottom()
	}
}

func (m *Model) selectedSlave() *slave.Slave {
	row := m.slaveTable.SelectedRow()
	if row == nil {
		return nil
	}
	s, err := m.reg.Get(row[0])
	if err != nil {
		return nil
	}
	return s
}

// execute runs one command line against the selected slave.
func (m *Model) execute(line string) string {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return ""
	}

	// commands that do not act on the selected slave
	switch fields[0] {
	case "kind":
		if len(fields) != 2 {
			return "usage: kind <coil|discrete_input|holding_register|input_register>"
		}
		kind, err := register.ParseKind(fields[1])
		if err != nil {
			return err.Error()
		}
		m.kind = kind
		return ""
	case "slave":
		if len(fields) != 2 {
			return "usage: slave <id>"
		}
		for i, row := range m.slaveTable.Rows() {
			if row[0] == fields[1] {
				m.slaveTable.SetCursor(i)
				return ""
			}
		}
		return fmt.Sprintf("unknown slave %q", fields[1])
	}

	s := m.selectedSlave()
	if s == nil {
		return "no slave selected"
	}

	switch fields[0] {
	case "start":
		if err := s.Start(); err != nil {
			return err.Error()
		}
		return ""
	case "stop":
		if err := s.Stop(); err != nil {
			return err.Error()
		}
		return ""
	case "reset":
		if err := s.Reset(); err != nil {
			return err.Error()
		}
		return ""
	case "read":
		if len(fields) != 3 {
			return "usage: read <kind> <address>"
		}
		kind, addr, _, err := parseTarget(fields[1], fields[2], "")
		if err != nil {
			return err.Error()
		}
		v, err := s.ReadRegister(kind, addr)
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("%s %d = %d", kind, addr, v)
	case "write":
		if len(fields) != 4 {
			return "usage: write <kind> <address> <value>"
		}
		kind, addr, value, err := parseTarget(fields[1], fields[2], fields[3])
		if err != nil {
			return err.Error()
		}
		if err := s.WriteRegister(kind, addr, value); err != nil {
			return err.Error()
		}
		return ""
	case "export":
		if len(fields) != 2 {
			return "usage: export <path>"
		}
		tbl := config.ExportPoints(s.Name(), s.Snapshot(m.kind))
		if err := config.SavePointTable(fields[1], tbl); err != nil {
			return err.Error()
		}
		return fmt.Sprintf("exported %d points to %s", len(tbl.Points), fields[1])
	default:
		return fmt.Sprintf("unknown command %q", fields[0])
	}
}

func parseTarget(kindStr, addrStr, valueStr string) (register.Kind, uint16, uint16, error) {
	kind, err := register.ParseKind(kindStr)
	if err != nil {
		return 0, 0, 0, err
	}
	addr, err := strconv.ParseUint(addrStr, 10, 16)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad address %q", addrStr)
	}
	var value uint64
	if valueStr != "" {
		value, err = strconv.ParseUint(valueStr, 10, 16)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("bad value %q", valueStr)
		}
	}
	return kind, uint16(addr), uint16(value), nil
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	style := func(focus int) lipgloss.Style {
		if m.focus == focus {
			return activeStyle
		}
		return baseStyle
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		style(focusSlaves).Render(m.slaveTable.View()),
		style(focusPoints).Render(m.pointTable.View()),
	)

	title := fmt.Sprintf(" registers: %s ", m.kind)
	parts := []string{
		top,
		helpStyle.Render(title),
		style(focusInput).Render(m.input.View()),
		baseStyle.Render(m.logView.View()),
	}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	parts = append(parts,
		helpStyle.Render("tab: focus | i: command | q: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
