package toggle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

var includeInMenu = Field[types.Category]{
	Name: types.CategoryFieldIncludeInMenu,
	Get:  func(c *types.Category) bool { return c.IncludeInMenu },
	Set:  func(c *types.Category, v bool) { c.IncludeInMenu = v },
}

type flagCall struct {
	ID    string
	Field string
	Value bool
}

// stubFlagger answers every SetFlag with err and records the calls.
type stubFlagger struct {
	mu    sync.Mutex
	err   error
	calls []flagCall
}

func (s *stubFlagger) SetFlag(_ context.Context, id, field string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, flagCall{ID: id, Field: field, Value: value})
	return s.err
}

type countingRefresher struct {
	mu    sync.Mutex
	count int
	err   error
}

func (r *countingRefresher) Search(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return r.err
}

func (r *countingRefresher) searches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func newCategoryToggle(f Flagger, r Refresher, n notify.Notifier) *Controller[types.Category] {
	return New(f, types.Category.Key,
		WithField(includeInMenu),
		WithRefresher[types.Category](r),
		WithNotifier[types.Category](n),
	)
}

func TestToggle(t *testing.T) {
	tests := []struct {
		name        string
		before      bool
		flagErr     error
		refreshErr  error
		wantErr     error
		wantValue   bool
		wantSent    bool
		wantRefresh int
		wantNotices []string
	}{
		{
			name:        "success flips and refreshes",
			before:      false,
			wantValue:   true,
			wantSent:    true,
			wantRefresh: 1,
		},
		{
			name:        "remote failure rolls back",
			before:      true,
			flagErr:     &types.RemoteFailure{Message: "该分类不允许隐藏"},
			wantErr:     types.ErrRemote,
			wantValue:   true,
			wantSent:    false,
			wantNotices: []string{"该分类不允许隐藏"},
		},
		{
			name:        "transport failure rolls back",
			before:      false,
			flagErr:     &types.TransportError{Op: "/category/switch", Err: errors.New("timeout")},
			wantErr:     types.ErrTransport,
			wantValue:   false,
			wantSent:    true,
			wantNotices: []string{notify.GenericFailureMessage},
		},
		{
			name:        "refresh failure does not fail the toggle",
			before:      false,
			refreshErr:  &types.TransportError{Op: "/category/grid", Err: errors.New("reset")},
			wantValue:   true,
			wantSent:    true,
			wantRefresh: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFlagger{err: tt.flagErr}
			r := &countingRefresher{err: tt.refreshErr}
			var rec notify.Recorder
			c := newCategoryToggle(f, r, &rec)

			cat := types.Category{ID: 5, IncludeInMenu: tt.before}
			err := c.Toggle(context.Background(), &cat, types.CategoryFieldIncludeInMenu)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantValue, cat.IncludeInMenu)
			require.Len(t, f.calls, 1)
			assert.Equal(t, flagCall{ID: "5", Field: "includeInMenu", Value: tt.wantSent}, f.calls[0])
			assert.Equal(t, tt.wantRefresh, r.searches())
			if tt.wantNotices == nil {
				assert.Empty(t, rec.Messages())
			} else {
				assert.Equal(t, tt.wantNotices, rec.Messages())
			}
			assert.Equal(t, 0, c.locks.size())
		})
	}
}

func TestToggleRollbackRestoresValue(t *testing.T) {
	f := &stubFlagger{err: &types.RemoteFailure{Message: "denied"}}
	c := newCategoryToggle(f, nil, nil)

	for _, before := range []bool{true, false} {
		cat := types.Category{ID: 1, IncludeInMenu: before}
		require.Error(t, c.Toggle(context.Background(), &cat, types.CategoryFieldIncludeInMenu))
		assert.Equal(t, before, cat.IncludeInMenu)
	}
}

func TestToggleUnknownField(t *testing.T) {
	f := &stubFlagger{}
	var rec notify.Recorder
	c := newCategoryToggle(f, nil, &rec)

	cat := types.Category{ID: 1}
	err := c.Toggle(context.Background(), &cat, "isDeleted")
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.ErrorIs(t, err, types.ErrUnknownField)
	assert.Empty(t, f.calls)
	assert.Len(t, rec.All(), 1)
	assert.Equal(t, []string{types.CategoryFieldIncludeInMenu}, c.Fields())
}

// gatedFlagger blocks every SetFlag until the test replies.
type gatedFlagger struct {
	calls chan gatedCall
}

type gatedCall struct {
	flagCall
	reply chan error
}

func (g *gatedFlagger) SetFlag(_ context.Context, id, field string, value bool) error {
	reply := make(chan error)
	g.calls <- gatedCall{flagCall: flagCall{ID: id, Field: field, Value: value}, reply: reply}
	return <-reply
}

func TestToggleSerializesSameRecord(t *testing.T) {
	g := &gatedFlagger{calls: make(chan gatedCall)}
	c := newCategoryToggle(g, nil, nil)
	ctx := context.Background()

	cat := types.Category{ID: 7}
	done := make(chan error, 2)
	go func() { done <- c.Toggle(ctx, &cat, types.CategoryFieldIncludeInMenu) }()
	first := <-g.calls
	assert.True(t, first.Value)

	go func() { done <- c.Toggle(ctx, &cat, types.CategoryFieldIncludeInMenu) }()
	select {
	case call := <-g.calls:
		t.Fatalf("second toggle reached the backend early: %+v", call.flagCall)
	case <-time.After(50 * time.Millisecond):
	}

	first.reply <- nil
	second := <-g.calls
	assert.False(t, second.Value, "second toggle starts from the first one's result")
	second.reply <- nil

	require.NoError(t, <-done)
	require.NoError(t, <-done)
	assert.False(t, cat.IncludeInMenu)
}

func TestToggleDifferentRecordsRunIndependently(t *testing.T) {
	g := &gatedFlagger{calls: make(chan gatedCall)}
	c := newCategoryToggle(g, nil, nil)
	ctx := context.Background()

	a := types.Category{ID: 1}
	b := types.Category{ID: 2}
	done := make(chan error, 2)
	go func() { done <- c.Toggle(ctx, &a, types.CategoryFieldIncludeInMenu) }()
	go func() { done <- c.Toggle(ctx, &b, types.CategoryFieldIncludeInMenu) }()

	var pending []gatedCall
	for range 2 {
		select {
		case call := <-g.calls:
			pending = append(pending, call)
		case <-time.After(time.Second):
			t.Fatal("toggles on different records blocked each other")
		}
	}
	ids := []string{pending[0].ID, pending[1].ID}
	assert.ElementsMatch(t, []string{"1", "2"}, ids)

	for _, call := range pending {
		call.reply <- nil
	}
	require.NoError(t, <-done)
	require.NoError(t, <-done)
	assert.True(t, a.IncludeInMenu)
	assert.True(t, b.IncludeInMenu)
}
