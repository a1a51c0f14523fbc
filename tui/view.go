// ABOUTME: Rendering and display functions for the TUI
// ABOUTME: Implements the Bubble Tea View() function and all render helpers

package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.logPanic("View", r)
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Saving config and exiting...\n"
	}

	// Build the UI in two columns
	leftPanel := m.renderParameters()
	rightPanel := m.renderGrid()

	// Both panels should have same height for proper horizontal joining
	// Leave room for status bar and help line
	panelHeight := m.height - (statusBarHeight + helpHeight + 1)

	leftPanelStyle := lipgloss.NewStyle().
		Width(paramPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	rightPanelWidth := m.width - paramPanelWidth - panelPadding
	if rightPanelWidth < minViewportWidth*2 {
		rightPanelWidth = minViewportWidth * 2
	}

	rightPanelStyle := lipgloss.NewStyle().
		Width(rightPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	combined := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanelStyle.Render(leftPanel),
		rightPanelStyle.Render(rightPanel),
	)

	return combined + "\n" + m.renderStatus() + "\n" + m.renderHelp()
}

// renderParameters renders the parameter control panel
func (m model) renderParameters() string {
	var s string

	title := "Engine parameters"
	if m.focusedPanel == panelParams {
		title = "► " + title + " [FOCUSED]"
	}

	s += titleStyle.Render(title) + "\n\n"

	for i, param := range m.params {
		var value string

		switch {
		case param.IsInt && param.IntValue != nil:
			value = strconv.Itoa(*param.IntValue)
		case !param.IsInt && param.Value != nil:
			value = fmt.Sprintf("%.2f", *param.Value)
		default:
			value = "N/A"
		}

		// Fixed width formatting to prevent column misalignment
		prefix := "  "
		if i == m.selectedParam {
			prefix = "► "
		}

		line := fmt.Sprintf("%s%-24s %6s", prefix, param.Name, value)

		if i == m.selectedParam {
			s += selectedParamStyle.Render(line) + "\n"
		} else {
			s += paramStyle.Render(line) + "\n"
		}
	}

	return s
}

// renderGrid renders the chord grid with viewport scrolling
func (m model) renderGrid() string {
	var s string

	title := "Chord grid"
	if m.focusedPanel == panelGrid {
		title = "► " + title + " [FOCUSED]"
	}

	s += titleStyle.Render(title) + "\n\n"

	// Song metadata line
	name := m.tl.Title
	if name == "" {
		name = m.analysisPath
	}

	header := fmt.Sprintf("%s - %s  (%.0f BPM)",
		truncate(m.tl.Artist, 25),
		truncate(name, 40),
		m.tl.BPM,
	)
	s += headerStyle.Render(header) + "\n"

	// Render viewport (content should be set in Update())
	s += m.viewport.View()

	return s
}

// updateViewportContent builds and sets the viewport content
// Renders ALL rows - let viewport handle scrolling
func (m *model) updateViewportContent() {
	var content strings.Builder

	total := gridRows(len(m.tl.Cells), cellsPerRow)

	for row := 0; row < total; row++ {
		content.WriteString(fmt.Sprintf("%3d │", row+1))

		for col := 0; col < cellsPerRow; col++ {
			i := row*cellsPerRow + col
			if i >= len(m.tl.Cells) {
				break
			}

			content.WriteString(" " + m.renderCell(i) + " │")
		}

		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderCell formats one grid cell with highlight, cursor and class styling
func (m *model) renderCell(i int) string {
	label := m.tl.Cells[i].Label

	switch {
	case m.tl.IsShiftCell(i):
		label = "·"
	case label == "":
		label = "—"
	}

	text := fmt.Sprintf("%-*s", cellWidth, truncate(label, cellWidth))

	switch {
	case i == m.cursorPos && m.focusedPanel == panelGrid:
		return cursorStyle.Render(text)
	case i == m.snap.Index:
		return activeCellStyle.Render(text)
	case m.tl.IsShiftCell(i):
		return shiftCellStyle.Render(text)
	case m.tl.IsPaddingCell(i):
		return paddingCellStyle.Render(text)
	default:
		return text
	}
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	// Show status message if recent
	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		return statusStyle.Width(m.width).Render(m.statusMsg)
	}

	playState := "⏸ paused"
	if m.transport.IsPlaying() {
		playState = "▶ playing"
	}

	cellInfo := "cell: -"
	if m.snap.Index >= 0 {
		cellInfo = fmt.Sprintf("cell: %d", m.snap.Index)
	}

	measureInfo := "measure: -"
	if m.snap.Downbeat >= 0 {
		measureInfo = fmt.Sprintf("measure: %d", m.snap.Downbeat+1)
	}

	driftInfo := ""
	if m.snap.Calibrated {
		driftInfo = fmt.Sprintf(" | drift: %.3fx", m.snap.SpeedAdjust)
	}

	followInfo := ""
	if m.follow {
		followInfo = " | follow"
	}

	status := fmt.Sprintf("%s | %.1f/%.1fs | %s | %s | %s/%s%s%s",
		playState,
		m.snap.Time,
		m.transport.Duration(),
		cellInfo,
		measureInfo,
		m.snap.Phase,
		m.snap.Strategy,
		driftInfo,
		followInfo,
	)

	return statusStyle.Width(m.width).Render(status)
}

// renderHelp renders the help text
func (m model) renderHelp() string {
	return helpStyle.Render(" Tab: switch panel | space: play/pause | ↑/↓/←/→ hjkl: move | enter: jump to cell | f: follow | Shift+↑/↓: select param | r: reset params | q: quit")
}
