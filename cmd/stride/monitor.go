package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"go.uber.org/zap"

	"github.com/zbotics/stride/pkg/balance"
	"github.com/zbotics/stride/pkg/control"
	"github.com/zbotics/stride/pkg/gait"
)

type MonitorCommand struct {
	Hz   int    `long:"hz" default:"50" description:"Control loop frequency"`
	Sim  bool   `long:"sim" description:"Use the in-memory simulator instead of a serial bus"`
	Port string `long:"port" description:"Serial port of the servo bus"`
	Slow bool   `long:"slow" description:"Use the conservative slow-walk tune"`
}

const (
	monHeaderHeight = 2
	monLegendHeight = 2
	monFooterHeight = 4
	monBorderSize   = 2
)

// Chart series: the filtered attitude and the corrections feeding back
// into the gait.
var seriesColors = map[string]string{
	"pitch":      "196", // red
	"roll":       "208", // orange
	"pitch_corr": "46",  // green
	"roll_corr":  "51",  // cyan
}

var seriesOrder = []string{"pitch", "roll", "pitch_corr", "roll_corr"}

var (
	monTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	monChartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	monStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type monitorModel struct {
	ctrl     *control.Controller
	chart    *streamlinechart.Model
	width    int
	height   int
	last     control.State
	quitting bool
}

type tickStateMsg control.State

func waitForTick(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return tickStateMsg(<-ctrl.States())
	}
}

func (m *monitorModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20
	}
	width = m.width - monBorderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - monHeaderHeight - monLegendHeight - monFooterHeight - monBorderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func initialMonitorModel(ctrl *control.Controller) monitorModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-30, 30),
	)
	for _, name := range seriesOrder {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}
	return monitorModel{
		ctrl:  ctrl,
		chart: &chart,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return waitForTick(m.ctrl)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "w":
			m.ctrl.StartWalking()
		case "s":
			m.ctrl.StopWalking()
		}

	case tickStateMsg:
		state := control.State(msg)
		m.last = state
		m.chart.PushDataSet("pitch", degrees(state.Pitch))
		m.chart.PushDataSet("roll", degrees(state.Roll))
		m.chart.PushDataSet("pitch_corr", degrees(state.Correction.Pitch))
		m.chart.PushDataSet("roll_corr", degrees(state.Correction.Roll))
		m.chart.DrawAll()
		return m, waitForTick(m.ctrl)
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(monTitleStyle.Render("Stride Monitor"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.ctrl.Hz()))
	sb.WriteString("\n\n")

	sb.WriteString(monChartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderSeriesLegend())
	sb.WriteString("\n")

	status := fmt.Sprintf("phase: %-14s  stance: %-5s  cycle: %3d  lift: %5.1f mm",
		m.last.Phase, m.last.StanceFoot, m.last.CycleCounter, m.last.FootLift)
	sb.WriteString(monStatusStyle.Render(status))
	sb.WriteString("\n")
	sb.WriteString(monStatusStyle.Render("'w' walk, 's' stop, 'q' quit"))
	sb.WriteString("\n")

	return sb.String()
}

func renderSeriesLegend() string {
	var items []string
	for _, name := range seriesOrder {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name+" (deg)")
	}
	return strings.Join(items, "  ")
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func (c *MonitorCommand) Execute(args []string) error {
	walk := WalkCommand{Hz: c.Hz, Sim: c.Sim, Port: c.Port, Slow: c.Slow}
	source, sink, cleanup, err := walk.collaborators(zap.NewNop())
	if err != nil {
		return err
	}
	defer cleanup()

	params := gait.DefaultParameters()
	if c.Slow {
		params = gait.SlowParameters()
	}

	ctrl, err := control.New(control.Config{
		Source:     source,
		Sink:       sink,
		Geometry:   gait.DefaultGeometry(),
		Parameters: params,
		Balance:    balance.DefaultConfig(),
		Hz:         c.Hz,
	})
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Controller error: %v", err)
		}
	}()

	p := tea.NewProgram(initialMonitorModel(ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
	return nil
}
