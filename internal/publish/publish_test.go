package publish

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hybar/internal/model"
)

func TestQueue_PublishAndReceive(t *testing.T) {
	q := NewQueue(4)

	require.NoError(t, q.Publish(model.WorkspaceChanged()))
	require.NoError(t, q.Publish(model.TitleChanged("vim")))
	assert.Equal(t, 2, q.Len())

	first := <-q.Events()
	second := <-q.Events()
	assert.Equal(t, model.KindWorkspaceChanged, first.Kind)
	assert.Equal(t, "vim", second.Title)
}

func TestQueue_FullDropsWithoutBlocking(t *testing.T) {
	q := NewQueue(1)

	require.NoError(t, q.Publish(model.WorkspaceChanged()))
	err := q.Publish(model.WorkspaceChanged())
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, uint64(1), q.Dropped())
	assert.Equal(t, 1, q.Len())
}

func TestQueue_Closed(t *testing.T) {
	q := NewQueue(2)
	require.NoError(t, q.Publish(model.WorkspaceChanged()))
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Publish(model.WorkspaceChanged()), ErrClosed)

	// Buffered events are still drained before the channel reports closed.
	_, ok := <-q.Events()
	assert.True(t, ok)
	_, ok = <-q.Events()
	assert.False(t, ok)
}

func TestQueue_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultQueueSize, NewQueue(0).Cap())
}

func TestWaker_Coalesces(t *testing.T) {
	w := NewWaker()
	w.Wake()
	w.Wake()
	w.Wake()

	<-w.C()
	select {
	case <-w.C():
		t.Fatal("expected a single coalesced wake-up")
	default:
	}
}

func TestCells_LatestValueWins(t *testing.T) {
	c := NewCells()

	_ = c.Publish(model.TitleChanged("one"))
	_ = c.Publish(model.TitleChanged("two"))
	_ = c.Publish(model.FullscreenChanged(true))
	_ = c.Publish(model.FullscreenChanged(false))

	title, ok := c.TakeTitle()
	require.True(t, ok)
	assert.Equal(t, "two", title)
	assert.False(t, c.Fullscreen())

	_, ok = c.TakeTitle()
	assert.False(t, ok)

	// The snapshot keeps the latest title after the pending cell is taken.
	assert.Equal(t, "two", c.Snapshot().Title)
	assert.Equal(t, uint64(4), c.Version())
}

func TestCells_UrgentImpliesWorkspace(t *testing.T) {
	c := NewCells()
	_ = c.Publish(model.WorkspaceUrgent("7"))

	assert.True(t, c.Snapshot().PendingWorkspace)
	assert.True(t, c.TakeWorkspace())
	assert.False(t, c.TakeWorkspace())

	id, ok := c.TakeUrgent()
	require.True(t, ok)
	assert.Equal(t, "7", id)
	_, ok = c.TakeUrgent()
	assert.False(t, ok)
}

func TestCells_Snapshot(t *testing.T) {
	c := NewCells()
	_ = c.Publish(model.WindowOpened("kitty", "terminal"))
	_ = c.Publish(model.WindowClosed("kitty"))
	_ = c.Publish(model.ReloadSettings())
	_ = c.Publish(model.ThemeChanged("nord"))
	last := model.AutohideChanged(true)
	_ = c.Publish(last)

	s := c.Snapshot()
	require.NotNil(t, s.LastOpened)
	assert.Equal(t, Window{Class: "kitty", Title: "terminal"}, *s.LastOpened)
	assert.Equal(t, "kitty", s.LastClosed)
	assert.True(t, s.PendingReload)
	assert.Equal(t, "nord", s.Theme)
	assert.True(t, s.Autohide)
	assert.Equal(t, last.ID, s.LastEventID)
	assert.Equal(t, "autohide-changed", s.LastEventKind)

	// Mutating the copy must not leak back into the cells.
	s.LastOpened.Class = "changed"
	assert.Equal(t, "kitty", c.Snapshot().LastOpened.Class)

	assert.True(t, c.TakeReload())
	assert.False(t, c.Snapshot().PendingReload)
}

func TestPublisher_FanOutAndWake(t *testing.T) {
	p := NewPublisher(nil)
	q := NewQueue(8)
	cells := NewCells()
	w := NewWaker()

	p.AddSink("queue", q)
	p.AddSink("cells", cells)
	p.OnWake(w.Wake)

	p.Publish(model.WorkspaceChanged(), model.FullscreenChanged(true))

	assert.Equal(t, 2, q.Len())
	assert.True(t, cells.Fullscreen())
	assert.Equal(t, uint64(4), p.Published())

	select {
	case <-w.C():
	default:
		t.Fatal("expected wake-up after publish")
	}
}

func TestPublisher_EmptyBatchDoesNotWake(t *testing.T) {
	p := NewPublisher(nil)
	woke := false
	p.OnWake(func() { woke = true })

	p.Publish()
	assert.False(t, woke)
}

func TestPublisher_FailingSinkIsIsolated(t *testing.T) {
	p := NewPublisher(nil)
	q := NewQueue(8)

	p.AddSink("broken", SinkFunc(func(model.Event) error {
		return errors.New("consumer gone")
	}))
	p.AddSink("queue", q)

	p.Publish(model.TitleChanged("a"))

	assert.Equal(t, 1, q.Len())
	assert.Equal(t, uint64(1), p.Dropped())
	assert.Equal(t, uint64(1), p.Published())
}

func TestPublisher_RemoveSink(t *testing.T) {
	p := NewPublisher(nil)
	q := NewQueue(8)
	p.AddSink("queue", q)
	p.RemoveSink("queue")

	p.Publish(model.WorkspaceChanged())
	assert.Equal(t, 0, q.Len())
}

func TestPublisher_ConcurrentPublish(t *testing.T) {
	p := NewPublisher(nil)
	cells := NewCells()
	p.AddSink("cells", cells)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Publish(model.WorkspaceChanged())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(800), cells.Version())
}
