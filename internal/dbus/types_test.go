package dbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hybar/internal/model"
)

func TestSignalName_CoversAllKinds(t *testing.T) {
	for _, kind := range model.Kinds() {
		name, ok := SignalName(kind)
		assert.True(t, ok, "kind %s has no signal", kind)
		assert.NotEmpty(t, name)
	}

	_, ok := SignalName(model.Kind(0))
	assert.False(t, ok)
}

func TestSignalArgs(t *testing.T) {
	tests := []struct {
		name       string
		event      model.Event
		wantMember string
		wantBody   []any
	}{
		{"workspace changed", model.WorkspaceChanged(), SignalWorkspaceChanged, nil},
		{"workspace urgent", model.WorkspaceUrgent("0x5a3c"), SignalWorkspaceUrgent, []any{"0x5a3c"}},
		{"fullscreen", model.FullscreenChanged(true), SignalFullscreenChanged, []any{true}},
		{"title", model.TitleChanged("Mozilla Firefox"), SignalTitleChanged, []any{"Mozilla Firefox"}},
		{"empty title", model.TitleChanged(""), SignalTitleChanged, []any{""}},
		{"window opened", model.WindowOpened("kitty", "term"), SignalWindowOpened, []any{"kitty", "term"}},
		{"window closed", model.WindowClosed("80e62df0"), SignalWindowClosed, []any{"80e62df0"}},
		{"reload", model.ReloadSettings(), SignalReloadSettings, nil},
		{"theme", model.ThemeChanged("nord"), SignalThemeChanged, []any{"nord"}},
		{"autohide", model.AutohideChanged(false), SignalAutohideChanged, []any{false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member, body, err := SignalArgs(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMember, member)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestSignalArgs_UnknownKind(t *testing.T) {
	_, _, err := SignalArgs(model.Event{Kind: model.Kind(99)})
	assert.Error(t, err)
}

func TestEventFromSignal_RoundTrip(t *testing.T) {
	events := []model.Event{
		model.WorkspaceChanged(),
		model.WorkspaceUrgent("3"),
		model.FullscreenChanged(true),
		model.TitleChanged("vim"),
		model.WindowOpened("kitty", "term"),
		model.WindowClosed("kitty"),
		model.ReloadSettings(),
		model.ThemeChanged("dark"),
		model.AutohideChanged(true),
	}

	for _, want := range events {
		t.Run(want.Kind.String(), func(t *testing.T) {
			member, body, err := SignalArgs(want)
			require.NoError(t, err)

			got, err := EventFromSignal(DBusInterface+"."+member, body)
			require.NoError(t, err)

			assert.Equal(t, want.Kind, got.Kind)
			assert.Equal(t, want.Detail(), got.Detail())
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestEventFromSignal_Errors(t *testing.T) {
	_, err := EventFromSignal("NameAcquired", nil)
	assert.ErrorIs(t, err, ErrUnknownSignal)

	_, err = EventFromSignal(SignalTitleChanged, nil)
	assert.ErrorContains(t, err, "missing argument 0")

	_, err = EventFromSignal(SignalFullscreenChanged, []any{"yes"})
	assert.ErrorContains(t, err, "want bool")

	_, err = EventFromSignal(SignalWindowOpened, []any{"kitty"})
	assert.ErrorContains(t, err, "missing argument 1")
}
