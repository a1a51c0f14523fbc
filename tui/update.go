// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"chordgrid/config"
	"chordgrid/engine"
	"chordgrid/player"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.logPanic("Update", r)
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Right panel width: total width - left panel - padding
		viewportWidth := msg.Width - paramPanelWidth - panelPadding
		if viewportWidth < minViewportWidth {
			viewportWidth = minViewportWidth
		}

		viewportHeight := msg.Height - totalUIChrome
		if viewportHeight < minViewportHeight {
			viewportHeight = minViewportHeight
		}

		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight

		m.viewport.YOffset = 0
		m.ensureCursorVisible()
		m.updateViewportContent()

		return m, nil

	case engine.Snapshot:
		m.snap = msg
		m.updateViewportContent()
		m.followHighlight()

		// Queue next snapshot
		return m, waitForSnapshot(m.updates)

	case fileChangeMsg:
		// Analysis changed on disk, reload it and keep watching
		return m, tea.Batch(
			reloadAnalysis(m.analysisPath),
			waitForFileChange(m.watcher, m.sharedConfig),
		)

	case reloadCompleteMsg:
		return m.handleReload(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m.handleQuitKey()

		case key.Matches(msg, keys.Play):
			m.handlePlayKey()

		case key.Matches(msg, keys.Jump):
			if m.focusedPanel == panelGrid {
				m.jumpToCursor()
			}

		case key.Matches(msg, keys.Follow):
			m.follow = !m.follow
			if m.follow {
				m.setStatusMsg("Follow on")
			} else {
				m.setStatusMsg("Follow off")
			}

		case key.Matches(msg, keys.Tab):
			m.handleTabKey()

		case msg.Type == tea.KeyShiftUp:
			m.handleParamSelectKey(true)

		case msg.Type == tea.KeyShiftDown:
			m.handleParamSelectKey(false)

		case key.Matches(msg, keys.Up):
			m.handleUpKey()

		case key.Matches(msg, keys.Down):
			m.handleDownKey()

		case key.Matches(msg, keys.Left):
			m.handleLeftKey()

		case key.Matches(msg, keys.Right):
			m.handleRightKey()

		case key.Matches(msg, keys.Home):
			m.handleHomeKey()

		case key.Matches(msg, keys.End):
			m.handleEndKey()

		case key.Matches(msg, keys.Reset):
			m.resetToDefaults()
		}
	}

	return m, nil
}

// handleReload swaps in a freshly loaded timeline, preserving play state
func (m *model) handleReload(msg reloadCompleteMsg) (model, tea.Cmd) {
	if msg.err != nil {
		m.setStatusMsg(fmt.Sprintf("Reload failed: %v", msg.err))
		m.debugf("[TUI] Reload failed: %v", msg.err)

		return *m, nil
	}

	wasPlaying := m.transport.IsPlaying()
	m.stopPlayback()

	m.tl = msg.tl
	m.session.Reset(msg.tl)
	m.snap = engine.Snapshot{Index: -1, Downbeat: -1}

	// Fresh transport: the new analysis may have a different duration, and
	// a stale position past the new end would pin playback there.
	cfg := m.sharedConfig.Get()
	m.transport = player.NewTransport(msg.tl.Duration, seekLatency(cfg))

	if m.cursorPos >= len(m.tl.Cells) {
		m.cursorPos = len(m.tl.Cells) - 1
	}

	if m.cursorPos < m.tl.ShiftCount {
		m.cursorPos = m.tl.ShiftCount
	}

	if wasPlaying {
		m.startPlayback()
	}

	m.updateViewportContent()
	m.setStatusMsg("Analysis reloaded")
	m.debugf("[TUI] Reloaded analysis: %d cells, %.1fs", len(m.tl.Cells), m.tl.Duration)

	return *m, nil
}

// handleQuitKey handles the quit key press
func (m *model) handleQuitKey() (model, tea.Cmd) {
	m.quitting = true
	m.stopPlayback()

	// Save config on quit
	if err := config.SaveConfig(m.configPath, m.sharedConfig.Get()); err != nil {
		m.debugf("[TUI] Failed to save config on quit: %v", err)
		// Continue anyway - don't block quit on config save failure
	}

	return *m, tea.Quit
}

// handlePlayKey toggles playback
func (m *model) handlePlayKey() {
	if m.transport.IsPlaying() {
		m.stopPlayback()
		m.setStatusMsg("Paused")
	} else {
		m.startPlayback()
		m.setStatusMsg("Playing")
	}
}

// handleTabKey handles panel switching
func (m *model) handleTabKey() {
	if m.focusedPanel == panelParams {
		m.focusedPanel = panelGrid
	} else {
		m.focusedPanel = panelParams
	}
}

// handleParamSelectKey handles Shift+Up/Down for parameter selection
func (m *model) handleParamSelectKey(isUp bool) {
	if isUp {
		if m.selectedParam > 0 {
			m.selectedParam--
		}
	} else {
		if m.selectedParam < len(m.params)-1 {
			m.selectedParam++
		}
	}
}

// handleUpKey handles Up/k key press (context-aware navigation)
func (m *model) handleUpKey() {
	if m.focusedPanel == panelParams {
		if m.selectedParam > 0 {
			m.selectedParam--
		}

		return
	}

	// Move cursor one grid row up
	if m.cursorPos-cellsPerRow >= 0 {
		m.cursorPos -= cellsPerRow
		m.ensureCursorVisible()
		m.updateViewportContent()
	}
}

// handleDownKey handles Down/j key press (context-aware navigation)
func (m *model) handleDownKey() {
	if m.focusedPanel == panelParams {
		if m.selectedParam < len(m.params)-1 {
			m.selectedParam++
		}

		return
	}

	// Move cursor one grid row down
	if m.cursorPos+cellsPerRow < len(m.tl.Cells) {
		m.cursorPos += cellsPerRow
		m.ensureCursorVisible()
		m.updateViewportContent()
	}
}

// handleLeftKey handles Left/h key press
func (m *model) handleLeftKey() {
	if m.focusedPanel == panelParams {
		m.decreaseSelectedParam()

		return
	}

	if m.cursorPos > 0 {
		m.cursorPos--
		m.ensureCursorVisible()
		m.updateViewportContent()
	}
}

// handleRightKey handles Right/l key press
func (m *model) handleRightKey() {
	if m.focusedPanel == panelParams {
		m.increaseSelectedParam()

		return
	}

	if m.cursorPos < len(m.tl.Cells)-1 {
		m.cursorPos++
		m.ensureCursorVisible()
		m.updateViewportContent()
	}
}

// handleHomeKey handles Home/g key press
func (m *model) handleHomeKey() {
	if m.focusedPanel != panelGrid {
		return
	}

	m.cursorPos = 0
	m.viewport.GotoTop()
	m.updateViewportContent()
}

// handleEndKey handles End/G key press
func (m *model) handleEndKey() {
	if m.focusedPanel != panelGrid {
		return
	}

	if len(m.tl.Cells) > 0 {
		m.cursorPos = len(m.tl.Cells) - 1
	}

	m.viewport.GotoBottom()
	m.updateViewportContent()
}
