// Package tui provides the BubbleTea-based live event monitor.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/hybar/internal/client"
	"github.com/jmylchreest/hybar/internal/model"
	"github.com/jmylchreest/hybar/internal/publish"
)

// DefaultMaxEvents bounds the in-memory event log.
const DefaultMaxEvents = 500

// headerHeight is the number of lines used by the state panel.
const headerHeight = 4

// Source supplies live events and state to the monitor.
type Source interface {
	Events() <-chan model.Event
	Snapshot() publish.Snapshot
	Stats() client.Stats
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Model is the main TUI model.
type Model struct {
	source       Source
	clipboardCmd string
	maxEvents    int

	// Current mode
	mode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model

	// State
	events      []model.Event // newest first
	selected    *model.Event
	searchQuery string
	paused      bool
	unseen      int
	closed      bool
	snapshot    publish.Snapshot
	stats       client.Stats
	width       int
	height      int
	ready       bool

	// Key bindings
	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool
}

// eventItem wraps an event for the list component.
type eventItem struct {
	event model.Event
}

func (i eventItem) Title() string {
	return i.event.Kind.String()
}

func (i eventItem) Description() string {
	detail := i.event.Detail()
	if detail == "" {
		return relativeTime(i.event.Timestamp)
	}
	return fmt.Sprintf("%s - %s", relativeTime(i.event.Timestamp), detail)
}

func (i eventItem) FilterValue() string {
	return i.event.Kind.String() + " " + i.event.Detail()
}

// kindColor returns the accent color for an event kind.
func kindColor(kind model.Kind) lipgloss.Color {
	switch kind {
	case model.KindWorkspaceUrgent:
		return lipgloss.Color("9")
	case model.KindWorkspaceChanged:
		return lipgloss.Color("12")
	case model.KindFullscreenChanged, model.KindTitleChanged:
		return lipgloss.Color("10")
	case model.KindWindowOpened, model.KindWindowClosed:
		return lipgloss.Color("14")
	default:
		return lipgloss.Color("11")
	}
}

// eventDelegate is a custom list delegate that colors titles by kind.
type eventDelegate struct {
	list.DefaultDelegate
}

func newEventDelegate() eventDelegate {
	return eventDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render renders a list item with the kind's accent color.
func (d eventDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(eventItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	itemWidth := m.Width() - d.DefaultDelegate.Styles.NormalTitle.GetHorizontalPadding()

	var titleStyle, descStyle lipgloss.Style
	if index == m.Index() {
		titleStyle = d.DefaultDelegate.Styles.SelectedTitle
		descStyle = d.DefaultDelegate.Styles.SelectedDesc
	} else {
		titleStyle = d.DefaultDelegate.Styles.NormalTitle.Foreground(kindColor(ei.event.Kind))
		descStyle = d.DefaultDelegate.Styles.NormalDesc
	}

	title := truncate(ei.Title(), itemWidth)
	desc := truncate(ei.Description(), itemWidth)

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

// New creates a new TUI model reading from source.
func New(source Source, clipboardCmd string) Model {
	l := list.New(nil, newEventDelegate(), 0, 0)
	l.Title = "Compositor Events"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Filter by kind or detail..."
	searchInput.CharLimit = 100

	h := help.New()
	h.ShowAll = true

	return Model{
		source:       source,
		clipboardCmd: clipboardCmd,
		maxEvents:    DefaultMaxEvents,
		mode:         ModeList,
		list:         l,
		searchInput:  searchInput,
		help:         h,
		keys:         DefaultKeyMap(),
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		m.refreshState,
		tickState(),
	)
}

type eventMsg struct {
	event model.Event
}

type sourceClosedMsg struct{}

type stateMsg struct {
	snapshot publish.Snapshot
	stats    client.Stats
}

type tickMsg struct{}

// waitForEvent blocks until the source delivers the next event.
func (m Model) waitForEvent() tea.Cmd {
	if m.source == nil {
		return nil
	}
	events := m.source.Events()
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return sourceClosedMsg{}
		}
		return eventMsg{event: e}
	}
}

// refreshState reads the shared cells and client statistics.
func (m Model) refreshState() tea.Msg {
	if m.source == nil {
		return nil
	}
	return stateMsg{snapshot: m.source.Snapshot(), stats: m.source.Stats()}
}

func tickState() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-headerHeight-1)
		m.viewport = viewport.New(msg.Width, msg.Height-2)
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.addEvent(msg.event)
		return m, tea.Batch(m.waitForEvent(), m.refreshState)

	case sourceClosedMsg:
		m.closed = true
		return m, func() tea.Msg {
			return statusMsg{text: "Event source closed", isErr: true}
		}

	case stateMsg:
		m.snapshot = msg.snapshot
		m.stats = msg.stats
		return m, nil

	case tickMsg:
		if m.closed {
			return m, nil
		}
		return m, tea.Batch(m.refreshState, tickState())

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Copy failed: " + msg.err.Error(), isErr: true}
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: "Copied to clipboard", isErr: false}
		}
	}

	// Update child components
	switch m.mode {
	case ModeList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	case ModeDetail:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	case ModeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// addEvent records an event at the head of the log.
func (m *Model) addEvent(e model.Event) {
	m.events = append([]model.Event{e}, m.events...)
	if m.maxEvents > 0 && len(m.events) > m.maxEvents {
		m.events = m.events[:m.maxEvents]
	}

	if m.paused {
		m.unseen++
		return
	}
	m.list.SetItems(m.buildListItems())
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit is global, except while typing a search
	if m.mode != ModeSearch && key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Help) {
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.list.SelectedItem().(eventItem); ok {
			m.selected = &item.event
			m.mode = ModeDetail
			m.viewport.SetContent(m.renderDetail(item.event))
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if item, ok := m.list.SelectedItem().(eventItem); ok {
			data, err := json.MarshalIndent(item.event, "", "  ")
			if err != nil {
				return m, statusCmd("Failed to marshal JSON: "+err.Error(), true)
			}
			return m, m.copyToClipboard(string(data))
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyDetail):
		if item, ok := m.list.SelectedItem().(eventItem); ok {
			return m, m.copyToClipboard(item.event.Detail())
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyAllJSON):
		data, err := json.MarshalIndent(m.visibleEvents(), "", "  ")
		if err != nil {
			return m, statusCmd("Failed to marshal JSON: "+err.Error(), true)
		}
		return m, m.copyToClipboard(string(data))

	case key.Matches(msg, m.keys.CopyAllYAML):
		data, err := yaml.Marshal(m.visibleEvents())
		if err != nil {
			return m, statusCmd("Failed to marshal YAML: "+err.Error(), true)
		}
		return m, m.copyToClipboard(string(data))

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if m.paused {
			return m, statusCmd("Paused", false)
		}
		m.unseen = 0
		m.list.SetItems(m.buildListItems())
		return m, statusCmd("Resumed", false)

	case key.Matches(msg, m.keys.Clear):
		m.events = nil
		m.unseen = 0
		m.list.SetItems(nil)
		return m, statusCmd("Event log cleared", false)

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink
	}

	// Pass to list
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.selected != nil {
			data, err := json.MarshalIndent(m.selected, "", "  ")
			if err != nil {
				return m, statusCmd("Failed to marshal JSON: "+err.Error(), true)
			}
			return m, m.copyToClipboard(string(data))
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyDetail):
		if m.selected != nil {
			return m, m.copyToClipboard(m.selected.Detail())
		}
		return m, nil
	}

	// Pass to viewport
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Esc exits search mode and clears search
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		// Enter keeps the filter and returns to the list
		m.mode = ModeList
		m.searchInput.Blur()
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())

	return m, cmd
}

// visibleEvents returns the events matching the current search.
func (m Model) visibleEvents() []model.Event {
	if m.searchQuery == "" {
		return m.events
	}

	query := strings.ToLower(m.searchQuery)
	var filtered []model.Event
	for _, e := range m.events {
		if strings.Contains(strings.ToLower(e.Kind.String()), query) ||
			strings.Contains(strings.ToLower(e.Detail()), query) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// buildListItems creates list items from the visible events.
func (m Model) buildListItems() []list.Item {
	events := m.visibleEvents()
	items := make([]list.Item, len(events))
	for i, e := range events {
		items[i] = eventItem{event: e}
	}
	return items
}

// renderDetail renders the detail view for an event.
func (m Model) renderDetail(e model.Event) string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(kindColor(e.Kind))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	sb.WriteString(headerStyle.Render(e.Kind.String()) + "\n\n")

	sb.WriteString(labelStyle.Render("ID: ") + e.ID + "\n")
	sb.WriteString(labelStyle.Render("Time: ") + e.Time().Format(time.RFC3339Nano) +
		" (" + relativeTime(e.Timestamp) + ")\n")
	if detail := e.Detail(); detail != "" {
		sb.WriteString(labelStyle.Render("Detail: ") + detail + "\n")
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err == nil {
		sb.WriteString("\n" + labelStyle.Render("JSON:") + "\n")
		sb.WriteString(string(data) + "\n")
	}

	return sb.String()
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text string) tea.Cmd {
	command := m.clipboardCmd
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, command)}
	}
}

func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

// renderHeader renders the live state panel.
func (m Model) renderHeader() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle := lipgloss.NewStyle().Bold(true)

	stateStyle := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	if m.stats.State == client.StateStreaming {
		stateStyle = stateStyle.Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0"))
	} else {
		stateStyle = stateStyle.Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0"))
	}

	field := func(label, value string) string {
		return labelStyle.Render(label+" ") + valueStyle.Render(value)
	}

	fullscreen := "off"
	if m.snapshot.Fullscreen {
		fullscreen = "on"
	}
	autohide := "off"
	if m.snapshot.Autohide {
		autohide = "on"
	}
	title := m.snapshot.Title
	if title == "" {
		title = "-"
	}

	line1 := lipgloss.JoinHorizontal(lipgloss.Top,
		stateStyle.Render(strings.ToUpper(m.stats.State.String())),
		"  ",
		field("title", truncate(title, max(m.width-30, 10))),
	)

	urgent := m.snapshot.Urgent
	if urgent == "" {
		urgent = "-"
	}
	theme := m.snapshot.Theme
	if theme == "" {
		theme = "-"
	}
	line2 := strings.Join([]string{
		field("fullscreen", fullscreen),
		field("urgent", urgent),
		field("theme", theme),
		field("autohide", autohide),
	}, "  ")

	connected := "never"
	if !m.stats.ConnectedAt.IsZero() {
		connected = humanize.Time(m.stats.ConnectedAt)
	}
	line3 := strings.Join([]string{
		field("events", humanize.Comma(int64(m.stats.EventsFlushed))),
		field("lines", humanize.Comma(int64(m.stats.LinesRead))),
		field("connects", humanize.Comma(int64(m.stats.Connects))),
		field("connected", connected),
	}, "  ")

	if m.paused {
		line3 += "  " + lipgloss.NewStyle().Foreground(lipgloss.Color("11")).
			Render(fmt.Sprintf("PAUSED (%d new)", m.unseen))
	}

	return line1 + "\n" + line2 + "\n" + line3 + "\n"
}

func (m Model) viewList() string {
	s := m.renderHeader()
	s += m.list.View()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		s += "\n" + m.buildKeybindBar(m.width, ModeList)
	}

	return s
}

func (m Model) viewDetail() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render("Event Detail")

	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, ModeDetail)
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))

	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, ModeSearch)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.View(m.keys) + "\n\n"
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
	return s
}

// keybind represents a single keybind for the status bar.
type keybind struct {
	key  string
	desc string
}

// buildKeybindBar builds a keybind bar that fits within the given width.
// Binds are listed most important first and dropped from the end.
func (m Model) buildKeybindBar(width int, mode Mode) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind

	switch mode {
	case ModeList:
		binds = []keybind{
			{"q", "quit"},
			{"enter", "view"},
			{"?", "help"},
			{"/", "search"},
			{"p", "pause"},
			{"c", "copy"},
			{"s", "detail"},
			{"x", "clear"},
		}
	case ModeDetail:
		binds = []keybind{
			{"q", "quit"},
			{"esc", "back"},
			{"c", "copy JSON"},
			{"s", "copy detail"},
			{"j/k", "scroll"},
		}
	case ModeSearch:
		binds = []keybind{
			{"enter", "apply"},
			{"esc", "clear"},
			{"↑/↓", "navigate"},
		}
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		next := item
		if result != "" {
			next = result + separator + item
		}
		if width > 0 && lipgloss.Width(next) > width {
			break
		}
		result = next
	}

	return style.Render(result)
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}

// relativeTime returns a human-readable relative time for a unix millisecond timestamp.
func relativeTime(timestamp int64) string {
	t := time.UnixMilli(timestamp)
	if time.Since(t) < time.Second {
		return "now"
	}
	return humanize.Time(t)
}

// RunOptions configures the TUI.
type RunOptions struct {
	Source           Source
	ClipboardCommand string // Empty = auto-detect
	MaxEvents        int    // Zero = DefaultMaxEvents
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts RunOptions) error {
	m := New(opts.Source, opts.ClipboardCommand)
	if opts.MaxEvents > 0 {
		m.maxEvents = opts.MaxEvents
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
