// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/openember/emberlink/pkg/schedule"
	"github.com/openember/emberlink/pkg/zonestate"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// zoneItem adapts a zone snapshot to the list component.
type zoneItem struct {
	z zonestate.ZoneState
}

func (i zoneItem) Title() string { return i.z.Name }
func (i zoneItem) Description() string {
	return fmt.Sprintf("%.1f°C → %.1f°C  %s", i.z.CurrentTemperature, i.z.TargetTemperature, formatMode(i.z))
}
func (i zoneItem) FilterValue() string { return i.z.Name }

// tuiModel is the Bubble Tea model for the live dashboard.
type tuiModel struct {
	sess *session

	zoneList list.Model

	eventLog      []eventLogEntry
	maxLogEntries int

	updates uint64

	width    int
	height   int
	quitting bool
}

// Messages
type tuiTickMsg time.Time
type zoneChangedMsg struct {
	zoneID   string
	revision uint64
}
type tuiLogMsg struct {
	message string
	isError bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive dashboard of live zone state",
	Long: `Full-screen dashboard backed by the same aggregator as the other
long-running commands. Zones refresh from MQTT telemetry as it arrives and
from periodic cloud polls; the selected zone shows its full state and weekly
schedule. Press 'q' to quit.`,
	RunE: runTui,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func initialTuiModel(sess *session) tuiModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	zoneList := list.New([]list.Item{}, delegate, 34, 12)
	zoneList.Title = "Zones"
	zoneList.SetShowStatusBar(false)
	zoneList.SetShowHelp(false)
	zoneList.SetFilteringEnabled(false)

	return tuiModel{
		sess:          sess,
		zoneList:      zoneList,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(
		tuiTickCmd(),
		tea.EnterAltScreen,
	)
}

func tuiTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tuiTickMsg(t)
	})
}

func (m *tuiModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

// refreshZones rebuilds the list from the aggregator, keeping the cursor on
// the same zone when it still exists.
func (m *tuiModel) refreshZones() {
	var selected string
	if it, ok := m.zoneList.SelectedItem().(zoneItem); ok {
		selected = it.z.ZoneID
	}

	items := []list.Item{}
	cursor := 0
	for i, id := range m.sess.store.Zones() {
		z, ok := m.sess.store.Get(id)
		if !ok {
			continue
		}
		if z.ZoneID == selected {
			cursor = i
		}
		items = append(items, zoneItem{z: z})
	}
	m.zoneList.SetItems(items)
	m.zoneList.Select(cursor)
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.zoneList.SetSize(34, m.height-8)

	case tuiTickMsg:
		return m, tuiTickCmd()

	case zoneChangedMsg:
		m.updates++
		m.refreshZones()
		if z, ok := m.sess.store.Get(msg.zoneID); ok {
			m.addLogEntry(fmt.Sprintf("%s updated via %s (rev %d)", z.Name, z.LastSource, msg.revision), false)
		}

	case tuiLogMsg:
		m.addLogEntry(msg.message, msg.isError)
	}

	var cmd tea.Cmd
	m.zoneList, cmd = m.zoneList.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("EMBERLINK - ZONE DASHBOARD"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Zones: %d | Updates: %d | Press 'q' to quit",
		len(m.zoneList.Items()), m.updates)))
	s.WriteString("\n\n")

	// Detail panel for the selected zone
	detail := strings.Builder{}
	if it, ok := m.zoneList.SelectedItem().(zoneItem); ok {
		z := it.z
		detail.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			labelStyle.Render("Zone:"), valueStyle.Render(z.Name),
			labelStyle.Render("Device:"), valueStyle.Render(deviceTypeName(z.DeviceType)),
		))
		detail.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			labelStyle.Render("Current:"), valueStyle.Render(fmt.Sprintf("%.1f°C", z.CurrentTemperature)),
			labelStyle.Render("Target:"), valueStyle.Render(fmt.Sprintf("%.1f°C", z.TargetTemperature)),
		))
		detail.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Mode:"), valueStyle.Render(formatMode(z)),
			labelStyle.Render("Relay:"), valueStyle.Render(z.RelayState.String()),
			labelStyle.Render("Boost:"), valueStyle.Render(formatBoost(z)),
		))
		if z.AdvanceActive {
			detail.WriteString(infoStyle.Render("Advance active") + "\n")
		}
		detail.WriteString(fmt.Sprintf("%s %s via %s (rev %d)\n",
			labelStyle.Render("Updated:"),
			headerStyle.Render(z.LastUpdated.Format("15:04:05")),
			z.LastSource, z.Revision,
		))

		detail.WriteString("\n")
		detail.WriteString(labelStyle.Render("Schedule:"))
		detail.WriteString("\n")
		for _, day := range z.Schedule {
			periods := []string{}
			for _, p := range day.Periods {
				if p.Enabled() {
					periods = append(periods, fmt.Sprintf("%s-%s",
						schedule.FormatEncoded(p.Start), schedule.FormatEncoded(p.End)))
				}
			}
			if len(periods) == 0 {
				detail.WriteString(fmt.Sprintf("  %-9s %s\n", day.Weekday, headerStyle.Render("(off)")))
			} else {
				detail.WriteString(fmt.Sprintf("  %-9s %s\n", day.Weekday, valueStyle.Render(strings.Join(periods, "  "))))
			}
		}
	} else {
		detail.WriteString(headerStyle.Render("(no zones yet)"))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(m.zoneList.View()),
		boxStyle.Render(detail.String()),
	)
	s.WriteString(row)
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 24
	if logHeight < 4 {
		logHeight = 4
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					infoStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

func runTui(cmd *cobra.Command, args []string) error {
	client, cfg, err := newCloudClient()
	if err != nil {
		return err
	}

	sess := newSession(client, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := sess.poll(cmd.Context()); err != nil {
		return err
	}

	p := tea.NewProgram(initialTuiModel(sess), tea.WithAltScreen())

	sess.store.Watch(func(zoneID string, revision uint64) {
		p.Send(zoneChangedMsg{zoneID: zoneID, revision: revision})
	})

	m, err := sess.connectMessenger(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go sess.pollLoop(ctx)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
