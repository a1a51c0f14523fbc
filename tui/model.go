// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model wiring the beat-sync engine to an interactive grid

// Package tui provides an interactive terminal viewer that follows playback
// across a chord grid, with live engine parameter tuning.
package tui

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"chordgrid/config"
	"chordgrid/engine"
	"chordgrid/player"
	"chordgrid/timeline"
)

// Panel identifiers
const (
	panelParams = "params"
	panelGrid   = "grid"
)

// Layout constants for UI dimensions
const (
	paramPanelWidth = 42 // Left panel width for parameter controls
	panelPadding    = 2  // Horizontal spacing between panels

	cellsPerRow = 4  // one rendered row per measure in common time
	cellWidth   = 12 // fixed cell width keeps columns aligned across rows

	// UI chrome heights (elements that reduce available viewport space)
	titleHeight     = 2 // Panel title bars
	headerHeight    = 1 // Song metadata line
	statusBarHeight = 1 // Bottom status bar
	helpHeight      = 1 // Help text line
	spacingHeight   = 2 // Vertical spacing between elements
	totalUIChrome   = titleHeight + headerHeight + statusBarHeight + helpHeight + spacingHeight

	// Minimum viewport dimensions to ensure usability
	minViewportWidth  = 20
	minViewportHeight = 5
)

const statusMessageDuration = 5 * time.Second

// fileChangeMsg is sent when the watched analysis document changes
type fileChangeMsg struct{}

// reloadCompleteMsg is sent after an analysis reload completes
type reloadCompleteMsg struct {
	tl  *timeline.Timeline
	err error
}

// model holds the TUI state
type model struct {
	// Dependencies (concrete types following Go philosophy)
	sharedConfig *config.SharedConfig
	debugf       func(string, ...interface{})
	configPath   string

	// Configuration
	localConfig   *config.EngineConfig // Local config that params point to (pointer so addresses stay valid)
	params        []Parameter          // Engine parameters for tuning
	selectedParam int                  // Currently selected parameter index

	// Playback pipeline
	tl        *timeline.Timeline
	session   *engine.Session
	transport *player.Transport
	sched     *engine.Scheduler    // nil while paused
	updates   chan engine.Snapshot // scheduler -> TUI, reused across scheduler restarts

	// Engine state
	snap engine.Snapshot // latest committed snapshot

	// File I/O
	analysisPath string
	watcher      *fsnotify.Watcher // nil unless watch mode

	// UI state
	width        int
	height       int
	quitting     bool
	statusMsg    string    // Temporary status message (e.g., "Jumped to C")
	statusMsgAge time.Time // When status message was set
	focusedPanel string    // "params" or "grid" - which panel has focus

	// Grid browsing
	cursorPos int            // Current cursor cell index
	viewport  viewport.Model // Viewport for scrolling the grid
	follow    bool           // Auto-scroll to the highlighted row
	follower  *Follower      // Throttled scroll decisions
}

// Key bindings
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Play   key.Binding
	Jump   key.Binding
	Follow key.Binding
	Reset  key.Binding
	Quit   key.Binding
	Home   key.Binding
	End    key.Binding
	Tab    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "row up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "row down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "cell left / decrease param"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "cell right / increase param"),
	),
	Play: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "play/pause"),
	),
	Jump: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "jump to cell"),
	),
	Follow: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "toggle follow"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset params"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home/g", "first cell"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end/G", "last cell"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch panel"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	paramStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedParamStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("240")).
				Foreground(lipgloss.Color("15")).
				Bold(true).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15")).
			Bold(true)

	activeCellStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("28")).
			Foreground(lipgloss.Color("15")).
			Bold(true)

	shiftCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	paddingCellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Italic(true)
)

// Run starts the interactive grid viewer
func Run(opts Options, sharedConfig *config.SharedConfig, debugf func(string, ...interface{}), configPath string) error {
	tl, err := timeline.Load(opts.AnalysisPath)
	if err != nil {
		return err
	}

	var watcher *fsnotify.Watcher

	if opts.Watch {
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}

		if err := watcher.Add(opts.AnalysisPath); err != nil {
			watcher.Close()

			return fmt.Errorf("failed to watch analysis file: %w", err)
		}
	}

	m := initModel(tl, opts, sharedConfig, watcher, debugf, configPath)

	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err = p.Run()

	if watcher != nil {
		watcher.Close()
	}

	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// initModel creates the initial model
func initModel(tl *timeline.Timeline, opts Options, sharedConfig *config.SharedConfig, watcher *fsnotify.Watcher, debugf func(string, ...interface{}), configPath string) model {
	cfg := sharedConfig.Get()

	// Allocate localConfig on heap so parameter pointers remain valid
	localConfig := &cfg

	session := engine.NewSession(sharedConfig, tl, debugf)
	transport := player.NewTransport(tl.Duration, seekLatency(cfg))

	m := model{
		sharedConfig: sharedConfig,
		debugf:       debugf,
		configPath:   configPath,

		localConfig: localConfig,

		tl:        tl,
		session:   session,
		transport: transport,
		// Buffer of 10 absorbs brief TUI render delays; the scheduler
		// drops snapshots rather than block when the buffer fills.
		updates: make(chan engine.Snapshot, 10),

		snap: engine.Snapshot{Index: -1, Downbeat: -1},

		analysisPath: opts.AnalysisPath,
		watcher:      watcher,

		viewport:     viewport.New(0, 0), // Width and height set on first WindowSizeMsg
		focusedPanel: panelGrid,
		follow:       true,
		follower:     NewFollower(scrollThrottle(cfg), cfg.ComfortMarginRows),

		cursorPos: tl.ShiftCount, // first cell that can carry content
	}

	m.params = buildParams(localConfig)
	m.selectedParam = 0

	return m
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForSnapshot(m.updates),
		tea.EnterAltScreen,
	}

	if m.watcher != nil {
		cmds = append(cmds, waitForFileChange(m.watcher, m.sharedConfig))
	}

	return tea.Batch(cmds...)
}

// ========== Helper Methods ==========

// waitForSnapshot waits for engine snapshots and returns them as messages
func waitForSnapshot(updates <-chan engine.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			// Channel closed
			return nil
		}

		return snap
	}
}

// waitForFileChange returns a command that waits for file system events
func waitForFileChange(watcher *fsnotify.Watcher, sharedConfig *config.SharedConfig) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				// Only react to write events
				if event.Op&fsnotify.Write == fsnotify.Write {
					// Debounce: wait a bit for atomic writes to complete
					debounce := sharedConfig.Get().WatchDebounceMillis
					time.Sleep(time.Duration(debounce) * time.Millisecond)

					return fileChangeMsg{}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

// reloadAnalysis loads the analysis document in the background
func reloadAnalysis(path string) tea.Cmd {
	return func() tea.Msg {
		tl, err := timeline.Load(path)
		if err != nil {
			return reloadCompleteMsg{err: err}
		}

		return reloadCompleteMsg{tl: tl}
	}
}

// startPlayback resumes the transport and spins up a fresh scheduler.
// Each play gesture gets its own scheduler; the updates channel is reused.
func (m *model) startPlayback() {
	m.transport.Play()

	if m.sched == nil {
		cfg := m.sharedConfig.Get()
		m.sched = engine.StartScheduler(m.session, m.transport, cfg.TickRateHz, m.updates)
		m.debugf("[TUI] Scheduler started at %d Hz", cfg.TickRateHz)
	}
}

// stopPlayback pauses the transport and tears the scheduler down.
// Stop is synchronous so no tick can land after this returns.
func (m *model) stopPlayback() {
	m.transport.Pause()

	if m.sched != nil {
		m.sched.Stop()
		m.sched = nil
		m.debugf("[TUI] Scheduler stopped")
	}
}

// restartScheduler applies a changed tick rate to a running scheduler
func (m *model) restartScheduler() {
	if m.sched == nil {
		return
	}

	m.sched.Stop()
	cfg := m.sharedConfig.Get()
	m.sched = engine.StartScheduler(m.session, m.transport, cfg.TickRateHz, m.updates)
}

// jumpToCursor registers a click override and seeks playback to the
// cursor cell
func (m *model) jumpToCursor() {
	cfg := m.sharedConfig.Get()

	target, ok := m.tl.CellTime(m.cursorPos, cfg.DefaultBPM, cfg.MaxReasonableBPM)
	if !ok {
		m.setStatusMsg("Cell has no audio position")

		return
	}

	// Override before seek so the highlight pins to the clicked cell while
	// the transport still reports pre-seek times.
	m.session.Click(m.cursorPos, target)
	m.transport.Seek(target)

	label := m.tl.Cells[m.cursorPos].Label
	if label == "" {
		label = fmt.Sprintf("cell %d", m.cursorPos)
	}

	m.setStatusMsg(fmt.Sprintf("Jumped to %s (%.2fs)", label, target))
	m.debugf("[TUI] Jump: cell=%d target=%.3f", m.cursorPos, target)
}

// increaseSelectedParam increases the selected parameter value
func (m *model) increaseSelectedParam() {
	if m.selectedParam < len(m.params) && increaseParam(&m.params[m.selectedParam]) {
		m.syncConfig()
	}
}

// decreaseSelectedParam decreases the selected parameter value
func (m *model) decreaseSelectedParam() {
	if m.selectedParam < len(m.params) && decreaseParam(&m.params[m.selectedParam]) {
		m.syncConfig()
	}
}

// resetToDefaults resets all parameters to their default values
func (m *model) resetToDefaults() {
	defaults := config.DefaultConfig()
	resetParamsToDefaults(m.params, defaults)
	m.syncConfig()
	m.setStatusMsg("Parameters reset to defaults")
}

// syncConfig publishes the local parameter values to the shared config.
// The engine reads the shared config on every tick, so most changes apply
// immediately; the tick rate and follow tuning need explicit re-wiring.
func (m *model) syncConfig() {
	m.sharedConfig.Update(*m.localConfig)

	cfg := m.sharedConfig.Get()
	m.follower = NewFollower(scrollThrottle(cfg), cfg.ComfortMarginRows)
	m.restartScheduler()

	if m.selectedParam < len(m.params) {
		selected := &m.params[m.selectedParam]

		var value float64
		if selected.IsInt {
			value = float64(*selected.IntValue)
		} else {
			value = *selected.Value
		}

		m.debugf("[TUI] Parameter changed - %s: %.2f", selected.Name, value)
	}
}

// setStatusMsg sets a transient status message with current timestamp
func (m *model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

// ensureCursorVisible scrolls the viewport so the cursor row is on screen
func (m *model) ensureCursorVisible() {
	row := gridRow(m.cursorPos, cellsPerRow)
	if row < 0 {
		return
	}

	top := m.viewport.YOffset
	bottom := m.viewport.YOffset + m.viewport.Height - 1

	if row < top {
		m.viewport.SetYOffset(row)
	} else if row > bottom {
		m.viewport.SetYOffset(row - m.viewport.Height + 1)
	}
}

// followHighlight auto-scrolls the grid toward the committed cell
func (m *model) followHighlight() {
	if !m.follow || m.snap.Index < 0 {
		return
	}

	row := gridRow(m.snap.Index, cellsPerRow)
	total := gridRows(len(m.tl.Cells), cellsPerRow)

	if offset, ok := m.follower.Offset(m.viewport.YOffset, m.viewport.Height, row, total, time.Now()); ok {
		m.viewport.SetYOffset(offset)
	}
}

// logPanic records a panic with stack trace before re-raising it
func (m *model) logPanic(where string, r interface{}) {
	m.debugf("[PANIC] %s panic: %v", where, r)
	m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
}

// seekLatency converts the configured stale-report window to a duration
func seekLatency(cfg config.EngineConfig) time.Duration {
	return time.Duration(cfg.SeekReportLatencyMilli) * time.Millisecond
}

// scrollThrottle converts the configured follow throttle to a duration
func scrollThrottle(cfg config.EngineConfig) time.Duration {
	return time.Duration(cfg.ScrollThrottleSeconds * float64(time.Second))
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
