package tui

import (
	"context"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyloki/module-shop-admin/internal/sqlite"
	"github.com/billyloki/module-shop-admin/internal/stubapi"
	"github.com/billyloki/module-shop-admin/pkg/gateway"
	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

func newModel(t *testing.T) (Model, *sqlite.Backend) {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(t.TempDir()))
	t.Cleanup(func() { b.Detach() })
	srv := httptest.NewServer(stubapi.New(b))
	t.Cleanup(srv.Close)

	client, err := gateway.New(srv.URL + stubapi.DefaultPrefix)
	require.NoError(t, err)
	notes := &notify.Recorder{}
	list := shopadmin.NewCategoryList(client, shopadmin.WithNotifier(notes))
	return New(context.Background(), list, notes), b
}

// step runs cmd to completion and feeds its message back to m.
func step(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModelPaging(t *testing.T) {
	m, _ := newModel(t)
	m = step(t, m, m.Init())
	assert.Equal(t, "1-10 of 12", m.snap.Range.String())
	assert.Len(t, m.table.Rows(), 10)
	assert.Contains(t, m.View(), "page 1/2")

	m, cmd := press(t, m, "n")
	m = step(t, m, cmd)
	assert.Equal(t, 2, m.snap.Query.PageNumber)
	assert.Len(t, m.table.Rows(), 2)

	m, cmd = press(t, m, "p")
	m = step(t, m, cmd)
	assert.Equal(t, 1, m.snap.Query.PageNumber)
	assert.Zero(t, m.busy)
}

func TestModelSortAndFilter(t *testing.T) {
	m, _ := newModel(t)
	m = step(t, m, m.Init())

	m, cmd := press(t, m, "s")
	m = step(t, m, cmd)
	assert.Equal(t, types.CategoryFieldName, m.snap.Query.SortPredicate)
	assert.True(t, m.snap.Query.SortDescending)

	m, cmd = press(t, m, "r")
	m = step(t, m, cmd)
	assert.False(t, m.snap.Query.SortDescending)
	assert.Equal(t, "Audio", m.table.Rows()[0][1])

	m, _ = press(t, m, "/")
	require.True(t, m.filtering)
	for _, r := range "cam" {
		m, _ = press(t, m, string(r))
	}
	m, cmd = press(t, m, "enter")
	m = step(t, m, cmd)
	assert.False(t, m.filtering)
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "Cameras", m.table.Rows()[0][1])
	assert.Contains(t, m.View(), `name ~ "cam"`)
}

func TestModelToggleAndDelete(t *testing.T) {
	m, b := newModel(t)
	ctx := context.Background()
	m = step(t, m, m.Init())

	first, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, int64(12), first.ID)

	m, cmd := press(t, m, "t")
	m = step(t, m, cmd)
	stored, err := b.Categories().Get(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, !first.IncludeInMenu, stored.IncludeInMenu)
	assert.Equal(t, yesNo(stored.IncludeInMenu), m.table.Rows()[0][3])

	m, cmd = press(t, m, "d")
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Sports")
	m, cmd = press(t, m, "n")
	assert.Nil(t, cmd, "anything but y cancels")
	assert.Empty(t, m.confirming)

	m, _ = press(t, m, "d")
	m, cmd = press(t, m, "y")
	m = step(t, m, cmd)
	assert.Equal(t, 11, m.snap.Result.TotalCount())
	assert.Equal(t, "Deleted category 12", m.status)
	assert.False(t, m.failed)
	assert.Contains(t, m.View(), "Deleted category 12")
	_, err = b.Categories().Get(ctx, 12)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestModelShowsNotifications(t *testing.T) {
	m, b := newModel(t)
	m = step(t, m, m.Init())

	require.NoError(t, b.Categories().Delete(context.Background(), 12))
	m, cmd := press(t, m, "t")
	m = step(t, m, cmd)
	assert.True(t, m.failed)
	assert.Equal(t, types.ErrNotFound.Error(), m.status)
	assert.Contains(t, m.View(), types.ErrNotFound.Error())
}

func TestModelQuit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNextSortField(t *testing.T) {
	assert.Equal(t, types.CategoryFieldName, nextSortField(types.CategoryFieldID))
	last := types.CategorySortFields[len(types.CategorySortFields)-1]
	assert.Equal(t, types.CategorySortFields[0], nextSortField(last))
	assert.Equal(t, types.CategorySortFields[0], nextSortField("unknown"))
}
