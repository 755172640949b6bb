package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/hybar/internal/model"
)

func TestFilter_Empty(t *testing.T) {
	result := Filter(nil, FilterOptions{})
	assert.Len(t, result, 0)
}

func TestFilter_NoFilters(t *testing.T) {
	events := []model.Event{
		{ID: "1", Kind: model.KindTitleChanged},
		{ID: "2", Kind: model.KindWindowClosed},
	}

	result := Filter(events, FilterOptions{})
	assert.Len(t, result, 2)
}

func TestFilter_ByKind(t *testing.T) {
	events := []model.Event{
		{ID: "1", Kind: model.KindTitleChanged},
		{ID: "2", Kind: model.KindWindowClosed},
		{ID: "3", Kind: model.KindTitleChanged},
	}

	result := Filter(events, FilterOptions{Kinds: map[model.Kind]bool{model.KindTitleChanged: true}})
	require.Len(t, result, 2)
	for _, e := range result {
		assert.Equal(t, model.KindTitleChanged, e.Kind)
	}
}

func TestFilter_BySince(t *testing.T) {
	now := time.Now()
	events := []model.Event{
		{ID: "1", Timestamp: now.Add(-30 * time.Minute).UnixMilli()},
		{ID: "2", Timestamp: now.Add(-2 * time.Hour).UnixMilli()},
		{ID: "3", Timestamp: now.Add(-10 * time.Second).UnixMilli()},
	}

	result := filterAt(events, FilterOptions{Since: time.Hour}, now)
	require.Len(t, result, 2)
	assert.Equal(t, "1", result[0].ID)
	assert.Equal(t, "3", result[1].ID)
}

func TestFilter_BySearch(t *testing.T) {
	events := []model.Event{
		{ID: "1", Kind: model.KindTitleChanged, Title: "Mozilla Firefox"},
		{ID: "2", Kind: model.KindWindowOpened, WindowClass: "kitty", WindowTitle: "term"},
		{ID: "3", Kind: model.KindWindowClosed, WindowClass: "firefox"},
	}

	result := Filter(events, FilterOptions{Search: "FIREFOX"})
	require.Len(t, result, 2)
	assert.Equal(t, "1", result[0].ID)
	assert.Equal(t, "3", result[1].ID)
}

func TestFilter_Limit(t *testing.T) {
	events := []model.Event{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	result := Filter(events, FilterOptions{Limit: 2})
	require.Len(t, result, 2)
	assert.Equal(t, "2", result[1].ID)
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds([]string{"title-changed,window-opened", " window-closed "})
	require.NoError(t, err)
	assert.Equal(t, map[model.Kind]bool{
		model.KindTitleChanged: true,
		model.KindWindowOpened: true,
		model.KindWindowClosed: true,
	}, kinds)

	kinds, err = ParseKinds(nil)
	require.NoError(t, err)
	assert.Nil(t, kinds)

	_, err = ParseKinds([]string{"bogus"})
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"90m", 90 * time.Minute, false},
		{"48h", 48 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"xd", 0, true},
		{"nope", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
