// Package tui shows a live progress view of a walk.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joe/scanwalk/internal/walkengine"
)

// Walk states.
const (
	StateWalking    = "walking"
	StateCancelling = "cancelling"
	StateCancelled  = "cancelled"
	StateComplete   = "complete"
	StateError      = "error"
)

// TickMsg is a message sent on each tick interval
type TickMsg time.Time

// WalkDoneMsg is sent once the engine has returned.
type WalkDoneMsg struct {
	Stats walkengine.Stats
	Err   error
}

// TickCmd returns a command that sends tick messages at regular intervals
func TickCmd() tea.Cmd {
	return tea.Tick(TickIntervalMs*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Model is the progress view's state.
type Model struct {
	root    string
	bridge  *EventBridge
	cancel  context.CancelFunc
	spinner spinner.Model

	stats     walkengine.Stats
	current   string
	lastError string

	started time.Time
	now     time.Time
	width   int

	state string
	err   error
}

// NewModel creates a model for a walk of root. cancel is called when the
// user asks to stop.
func NewModel(root string, bridge *EventBridge, cancel context.CancelFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor())

	now := time.Now()

	return Model{
		root:    root,
		bridge:  bridge,
		cancel:  cancel,
		spinner: s,
		started: now,
		now:     now,
		width:   defaultWidth,
		state:   StateWalking,
	}
}

// Err returns the walk error once the walk is done.
func (m Model) Err() error {
	return m.err
}

// State returns the current state (one of the State constants).
func (m Model) State() string {
	return m.state
}

// Stats returns the latest known walk statistics.
func (m Model) Stats() walkengine.Stats {
	return m.stats
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bridge.ListenCmd(), TickCmd())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EngineEventMsg:
		m.handleEvent(msg.Event)
		return m, m.bridge.ListenCmd()

	case WalkDoneMsg:
		m.stats = msg.Stats
		m.err = msg.Err
		m.now = time.Now()

		switch {
		case msg.Err == nil:
			m.state = StateComplete
		case errors.Is(msg.Err, context.Canceled):
			m.state = StateCancelled
		default:
			m.state = StateError
		}

		return m, tea.Quit

	case TickMsg:
		if m.done() {
			return m, nil
		}

		m.now = time.Time(msg)

		return m, TickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle().Render("scanwalk"))
	b.WriteString("\n")
	b.WriteString(LabelStyle().Render("Root: "))
	b.WriteString(m.root)
	b.WriteString("\n\n")

	b.WriteString(m.renderCounts())
	b.WriteString("\n\n")

	switch m.state {
	case StateWalking, StateCancelling:
		status := m.spinner.View() + " " + m.state
		if m.current != "" {
			status += " " + DimStyle().Render(TruncatePath(m.current, m.pathWidth()))
		}

		b.WriteString(status)
		b.WriteString("\n")
	case StateComplete:
		b.WriteString(SuccessStyle().Render("✓ Walk complete"))
		b.WriteString("\n")
	case StateCancelled:
		b.WriteString(WarningStyle().Render("Walk cancelled"))
		b.WriteString("\n")
	case StateError:
		b.WriteString(ErrorStyle().Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	}

	if m.lastError != "" {
		b.WriteString(ErrorStyle().Render("Last error: "))
		b.WriteString(DimStyle().Render(m.lastError))
		b.WriteString("\n")
	}

	if !m.done() {
		b.WriteString(DimStyle().Render("ctrl+c to stop"))
	}

	return BoxStyle().Render(b.String()) + "\n"
}

func (m Model) done() bool {
	return m.state == StateComplete || m.state == StateCancelled || m.state == StateError
}

func (m *Model) handleEvent(event walkengine.Event) {
	switch e := event.(type) {
	case walkengine.WalkProgress:
		m.stats = e.Stats
		m.current = e.Current
	case walkengine.EntryVisited:
		m.current = e.Path
	case walkengine.ErrorOccurred:
		m.lastError = fmt.Sprintf("%s: %v", e.Path, e.Err)
	case walkengine.WalkComplete:
		m.stats = e.Stats
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC, "q", "esc":
		if m.state == StateWalking {
			m.state = StateCancelling
			m.cancel()

			return m, nil
		}

		return m, tea.Quit
	}

	return m, nil
}

func (m Model) pathWidth() int {
	const reserved = 20 // spinner, state word, box border and padding

	if m.width <= reserved {
		return defaultWidth - reserved
	}

	return m.width - reserved
}

func (m Model) renderCounts() string {
	elapsed := m.now.Sub(m.started)

	rows := []string{
		fmt.Sprintf("%s %d  %s",
			LabelStyle().Render("Entries:"), m.stats.Entries,
			DimStyle().Render(FormatRate(m.stats.Entries, elapsed))),
		fmt.Sprintf("%s %d dirs, %d files, %d links, %d other",
			LabelStyle().Render("Types:  "), m.stats.Dirs, m.stats.Files, m.stats.Symlinks, m.stats.Other),
		fmt.Sprintf("%s %d", LabelStyle().Render("Pruned: "), m.stats.Pruned),
	}

	if m.stats.Bytes > 0 {
		rows = append(rows, fmt.Sprintf("%s %s", LabelStyle().Render("Size:   "), FormatBytes(m.stats.Bytes)))
	}

	if m.stats.Errors > 0 {
		rows = append(rows, fmt.Sprintf("%s %d", ErrorStyle().Render("Errors: "), m.stats.Errors))
	}

	rows = append(rows, fmt.Sprintf("%s %s", LabelStyle().Render("Elapsed:"), FormatDuration(elapsed)))

	return strings.Join(rows, "\n")
}
