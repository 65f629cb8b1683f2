package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PanelsView ViewState = iota
	ConfirmView
	TransferView
	ResultView
)

// operation is a fetch or transfer running in the background.
type operation struct {
	progress chan tasks.ProgressUpdate
	done     chan Msg
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	session  *tasks.Session
	logger   *log.Logger
	width    int
	height   int
	panels   [2]list.Model
	states   [2]tasks.SlotState
	focus    models.Slot
	op       *operation
	progress tasks.ProgressUpdate
	status   string
	failed   bool
	result   *tasks.TransferResult
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model driving session.
func NewModel(ctx context.Context, session *tasks.Session, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Model{
		ctx:     ctx,
		view:    PanelsView,
		session: session,
		logger:  logger,
		focus:   models.From,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	for _, sl := range models.Slots {
		m.refresh(sl)
	}
	return m
}

// Init initializes the TUI by restoring stored logins.
func (m *Model) Init() tea.Cmd {
	return m.reload()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.panelSize()
		for i := range m.panels {
			m.panels[i].SetSize(w, h)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PanelsView:
			return m.handlePanelKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case TransferView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.panels[m.focus], cmd = m.panels[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSlotsRestored:
		data := msg.data.(restoredData)
		m.op = nil
		if data.err != nil {
			m.setStatus(fmt.Sprintf("Reload failed: %v", data.err), true)
			return m, nil
		}
		for _, sl := range models.Slots {
			m.refresh(sl)
		}
		m.setStatus(fmt.Sprintf("Stored logins: from %s, to %s", mark(data.restored[models.From]), mark(data.restored[models.To])), false)
		return m, nil

	case MsgLibraryFetched:
		data := msg.data.(fetchedData)
		m.op = nil
		if data.err != nil {
			if tasks.IsPrecondition(data.err) {
				m.logger.Warn("fetch refused", "slot", data.slot, "error", data.err)
			} else {
				m.logger.Error("fetch failed", "slot", data.slot, "error", data.err)
			}
			m.setStatus(fmt.Sprintf("Fetching %s failed: %v", data.slot, data.err), true)
			return m, nil
		}
		m.refresh(data.slot)
		m.setStatus(fmt.Sprintf("Fetched %d liked songs for %s", len(data.items), data.slot), false)
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		m.setStatus(m.progress.Message, false)
		if m.op == nil {
			return m, nil
		}
		return m, waitFor(m.op)

	case MsgTransferComplete:
		data := msg.data.(transferData)
		m.op = nil
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PanelsView:
		return m.renderPanels()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePanelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.panels[m.focus].FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.panels[m.focus], cmd = m.panels[m.focus].Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.focus):
		m.focus = m.focus.Other()
		return m, nil
	case key.Matches(msg, m.keys.fetchFrom):
		return m, m.fetch(models.From)
	case key.Matches(msg, m.keys.fetchTo):
		return m, m.fetch(models.To)
	case key.Matches(msg, m.keys.reload):
		return m, m.reload()
	case key.Matches(msg, m.keys.transfer):
		if m.op != nil {
			m.setStatus("Wait for the running operation to finish", true)
			return m, nil
		}
		if reason := m.transferBlocker(); reason != "" {
			m.setStatus(reason, true)
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.panels[m.focus], cmd = m.panels[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = TransferView
		m.progress = tasks.ProgressUpdate{}
		return m, m.transfer()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = PanelsView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	m.view = PanelsView
	m.result = nil
	m.err = nil
	for _, sl := range models.Slots {
		m.refresh(sl)
	}
	return m, nil
}

// transferBlocker explains why a transfer cannot start, or returns "".
func (m *Model) transferBlocker() string {
	from := m.session.Snapshot(models.From)
	to := m.session.Snapshot(models.To)
	switch {
	case !from.Authenticated:
		return "Log in the from slot first (likesync auth login --slot from)"
	case !from.Populated:
		return "Fetch the from library first (press f)"
	case !to.Authenticated:
		return "Log in the to slot first (likesync auth login --slot to)"
	}
	return ""
}

func (m *Model) fetch(sl models.Slot) tea.Cmd {
	if m.op != nil {
		m.setStatus("Wait for the running operation to finish", true)
		return nil
	}
	m.setStatus(fmt.Sprintf("Fetching %s library...", sl), false)
	return m.run(func(progress chan<- tasks.ProgressUpdate) Msg {
		items, err := m.session.FetchLibrary(m.ctx, sl, progress)
		return libraryFetchedMsg(sl, items, err)
	})
}

func (m *Model) transfer() tea.Cmd {
	return m.run(func(progress chan<- tasks.ProgressUpdate) Msg {
		result, err := m.session.Transfer(m.ctx, progress)
		return transferCompleteMsg(result, err)
	})
}

func (m *Model) reload() tea.Cmd {
	if m.op != nil {
		return nil
	}
	return m.run(func(chan<- tasks.ProgressUpdate) Msg {
		restored, err := m.session.Restore()
		return slotsRestoredMsg(restored, err)
	})
}

// run starts fn in a goroutine and returns the command that waits for its next message.
func (m *Model) run(fn func(progress chan<- tasks.ProgressUpdate) Msg) tea.Cmd {
	op := &operation{
		progress: make(chan tasks.ProgressUpdate, 64),
		done:     make(chan Msg, 1),
	}
	m.op = op

	go func() {
		op.done <- fn(op.progress)
	}()

	return waitFor(op)
}

func waitFor(op *operation) tea.Cmd {
	return func() tea.Msg {
		select {
		case update := <-op.progress:
			return progressUpdateMsg(update)
		case msg := <-op.done:
			return msg
		}
	}
}

// refresh rebuilds the panel of sl from the session state.
func (m *Model) refresh(sl models.Slot) {
	state := m.session.Snapshot(sl)
	m.states[sl] = state
	w, h := m.panelSize()
	m.panels[sl] = newSongList(sl, state.Items, w, h)
}

func (m *Model) panelSize() (int, int) {
	return max(m.width/2-4, 20), max(m.height-10, 5)
}

func (m *Model) setStatus(status string, failed bool) {
	m.status = status
	m.failed = failed
}

func (m *Model) renderPanels() string {
	title := styles.title.Render("likesync")

	panels := make([]string, len(models.Slots))
	for i, sl := range models.Slots {
		panels[i] = m.renderPanel(sl)
	}

	status := styles.help.Render(m.status)
	if m.failed {
		status = styles.err.Render(m.status)
	}

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, lipgloss.JoinHorizontal(lipgloss.Top, panels...), status, m.help.View(m.keys))
}

func (m *Model) renderPanel(sl models.Slot) string {
	state := m.states[sl]

	var b strings.Builder
	if state.Authenticated {
		b.WriteString(styles.ok.Render(fmt.Sprintf("● %s: logged in", sl)))
	} else {
		b.WriteString(styles.warn.Render(fmt.Sprintf("○ %s: not logged in", sl)))
	}
	b.WriteString("\n")

	if state.Populated {
		b.WriteString(m.panels[sl].View())
	} else {
		b.WriteString(styles.help.Render(fmt.Sprintf("%s library not fetched", sl)))
	}

	style := styles.panel
	if sl == m.focus {
		style = styles.focused
	}
	return style.Render(b.String())
}

func (m *Model) renderConfirm() string {
	from := m.session.Snapshot(models.From)
	title := styles.title.Render("Copy the from library into the to library?")
	info := fmt.Sprintf("\nLiked songs: %d\nSongs already in the to library are saved again.\n", len(from.Items))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render("Transferring Liked Songs")

	var phase string
	switch m.progress.Phase {
	case tasks.WriteLibrary:
		phase = fmt.Sprintf("Saving batches (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.TransferDone:
		phase = "Finishing..."
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := styles.help.Render("Press any key to return, q to quit")

	if m.err != nil {
		failed := styles.err.Render(fmt.Sprintf("Transfer failed: %v", m.err))
		if m.result != nil && m.result.TransferID != "" {
			failed += fmt.Sprintf("\nSaved %d of %d batches. Run 'likesync transfer show %s' for details.",
				m.result.SavedBatches, m.result.BatchCount, m.result.TransferID)
		}
		return fmt.Sprintf("%s\n\n%s", failed, helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Transfer Complete!")
	info := fmt.Sprintf("\nSaved: %d liked songs\nBatches: %d\nDuration: %s",
		m.result.ItemCount, m.result.BatchCount, m.result.Duration().Round(time.Millisecond))
	if m.result.TransferID != "" {
		info += fmt.Sprintf("\nJournal: %s", m.result.TransferID)
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
