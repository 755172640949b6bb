package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hybar/internal/client"
	"github.com/jmylchreest/hybar/internal/model"
	"github.com/jmylchreest/hybar/internal/publish"
)

type fakeSource struct {
	events chan model.Event
	snap   publish.Snapshot
	stats  client.Stats
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan model.Event, 8)}
}

func (f *fakeSource) Events() <-chan model.Event { return f.events }
func (f *fakeSource) Snapshot() publish.Snapshot { return f.snap }
func (f *fakeSource) Stats() client.Stats        { return f.stats }

func readyModel(t *testing.T, src Source) Model {
	t.Helper()
	m := New(src, "")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_EventsPrependedNewestFirst(t *testing.T) {
	m := readyModel(t, newFakeSource())

	m = update(t, m, eventMsg{event: model.WorkspaceChanged()})
	m = update(t, m, eventMsg{event: model.TitleChanged("vim")})

	require.Len(t, m.events, 2)
	assert.Equal(t, model.KindTitleChanged, m.events[0].Kind)
	assert.Len(t, m.list.Items(), 2)
}

func TestModel_MaxEvents(t *testing.T) {
	m := readyModel(t, newFakeSource())
	m.maxEvents = 3

	for i := 0; i < 5; i++ {
		m = update(t, m, eventMsg{event: model.WorkspaceUrgent(string(rune('a' + i)))})
	}

	require.Len(t, m.events, 3)
	assert.Equal(t, "e", m.events[0].Workspace)
	assert.Equal(t, "c", m.events[2].Workspace)
}

func TestModel_WaitForEvent(t *testing.T) {
	src := newFakeSource()
	m := New(src, "")

	src.events <- model.FullscreenChanged(true)
	msg := m.waitForEvent()()
	ev, ok := msg.(eventMsg)
	require.True(t, ok)
	assert.True(t, ev.event.Fullscreen)

	close(src.events)
	assert.IsType(t, sourceClosedMsg{}, m.waitForEvent()())
}

func TestModel_StateMsgUpdatesHeader(t *testing.T) {
	src := newFakeSource()
	src.snap = publish.Snapshot{Title: "Mozilla Firefox", Fullscreen: true, Theme: "nord"}
	src.stats = client.Stats{State: client.StateStreaming, EventsFlushed: 12345}

	m := readyModel(t, src)
	m = update(t, m, m.refreshState())

	view := m.View()
	assert.Contains(t, view, "Mozilla Firefox")
	assert.Contains(t, view, "STREAMING")
	assert.Contains(t, view, "nord")
	assert.Contains(t, view, "12,345")
}

func TestModel_SearchFiltersEvents(t *testing.T) {
	m := readyModel(t, newFakeSource())
	m = update(t, m, eventMsg{event: model.WorkspaceChanged()})
	m = update(t, m, eventMsg{event: model.TitleChanged("Mozilla Firefox")})
	m = update(t, m, eventMsg{event: model.WindowOpened("kitty", "term")})

	m = update(t, m, keyMsg("/"))
	assert.Equal(t, ModeSearch, m.mode)

	for _, r := range "firefox" {
		m = update(t, m, keyMsg(string(r)))
	}

	assert.Equal(t, "firefox", m.searchQuery)
	require.Len(t, m.visibleEvents(), 1)
	assert.Equal(t, model.KindTitleChanged, m.visibleEvents()[0].Kind)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
	assert.Len(t, m.visibleEvents(), 3)
}

func TestModel_PauseHoldsListUpdates(t *testing.T) {
	m := readyModel(t, newFakeSource())
	m = update(t, m, eventMsg{event: model.WorkspaceChanged()})

	m = update(t, m, keyMsg("p"))
	require.True(t, m.paused)

	m = update(t, m, eventMsg{event: model.TitleChanged("a")})
	m = update(t, m, eventMsg{event: model.TitleChanged("b")})

	assert.Len(t, m.events, 3)
	assert.Len(t, m.list.Items(), 1)
	assert.Equal(t, 2, m.unseen)
	assert.Contains(t, m.View(), "PAUSED (2 new)")

	m = update(t, m, keyMsg("p"))
	assert.False(t, m.paused)
	assert.Len(t, m.list.Items(), 3)
	assert.Zero(t, m.unseen)
}

func TestModel_ClearLog(t *testing.T) {
	m := readyModel(t, newFakeSource())
	m = update(t, m, eventMsg{event: model.WorkspaceChanged()})

	m = update(t, m, keyMsg("x"))
	assert.Empty(t, m.events)
	assert.Empty(t, m.list.Items())
}

func TestModel_DetailView(t *testing.T) {
	m := readyModel(t, newFakeSource())
	e := model.WindowOpened("kitty", "term")
	m = update(t, m, eventMsg{event: e})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeDetail, m.mode)
	require.NotNil(t, m.selected)
	assert.Equal(t, e.ID, m.selected.ID)
	assert.Contains(t, m.renderDetail(e), e.ID)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
	assert.Nil(t, m.selected)
}

func TestModel_HelpToggle(t *testing.T) {
	m := readyModel(t, newFakeSource())

	m = update(t, m, keyMsg("?"))
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = update(t, m, keyMsg("?"))
	assert.Equal(t, ModeList, m.mode)
}

func TestModel_QuitKeys(t *testing.T) {
	m := readyModel(t, newFakeSource())

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// q is text while searching
	m = update(t, m, keyMsg("/"))
	m = update(t, m, keyMsg("q"))
	assert.Equal(t, ModeSearch, m.mode)
	assert.Equal(t, "q", m.searchQuery)
}

func TestModel_SourceClosed(t *testing.T) {
	m := readyModel(t, newFakeSource())
	m = update(t, m, sourceClosedMsg{})
	assert.True(t, m.closed)

	_, cmd := m.Update(tickMsg{})
	assert.Nil(t, cmd)
}

func TestBuildKeybindBar_FitsWidth(t *testing.T) {
	m := readyModel(t, newFakeSource())

	bar := m.buildKeybindBar(20, ModeList)
	assert.LessOrEqual(t, len(stripStyles(bar)), 20)
	assert.Contains(t, stripStyles(bar), "q quit")
}

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "now", relativeTime(time.Now().UnixMilli()))
	assert.Equal(t, "1 hour ago", relativeTime(time.Now().Add(-time.Hour).UnixMilli()))
}

// stripStyles removes ANSI escape codes.
func stripStyles(s string) string {
	result := make([]byte, 0, len(s))
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}
