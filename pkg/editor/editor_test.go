package editor

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyloki/module-shop-admin/pkg/notify"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// fakeProvinces serves a fixed province list per country and counts calls.
type fakeProvinces struct {
	mu    sync.Mutex
	calls []string
	err   error
	data  map[string][]types.Option
}

func (f *fakeProvinces) Children(_ context.Context, parentID string) ([]types.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, parentID)
	if f.err != nil {
		return nil, f.err
	}
	return f.data[parentID], nil
}

func (f *fakeProvinces) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeCountries struct {
	calls int
	err   error
	items []types.Option
}

func (f *fakeCountries) List(context.Context) ([]types.Option, error) {
	f.calls++
	return f.items, f.err
}

type saveCall struct {
	Op     string
	ID     string
	Values any
}

// fakeSaver records saves; block, when set, holds every save until closed.
type fakeSaver struct {
	mu      sync.Mutex
	err     error
	calls   []saveCall
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeSaver) record(c saveCall) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	block, entered, err := f.block, f.entered, f.err
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeSaver) Create(_ context.Context, values any) error {
	return f.record(saveCall{Op: "create", Values: values})
}

func (f *fakeSaver) Update(_ context.Context, id string, values any) error {
	return f.record(saveCall{Op: "update", ID: id, Values: values})
}

type countingRefresher struct{ count int }

func (r *countingRefresher) Search(context.Context) error {
	r.count++
	return nil
}

var china = map[string][]types.Option{
	"1": {{ID: 10, Name: "广东省", Children: []types.Option{{ID: 11, Name: "深圳市"}}}, {ID: 20, Name: "浙江省"}},
	"2": {{ID: 30, Name: "California"}},
}

type fixture struct {
	provinces *fakeProvinces
	countries *fakeCountries
	saver     *fakeSaver
	refresher *countingRefresher
	rec       *notify.Recorder
	cascade   *Cascade
	options   *Options
	editor    *Editor[types.PriceDestination, types.PriceDestinationForm]
}

func newFixture() *fixture {
	f := &fixture{
		provinces: &fakeProvinces{data: china},
		countries: &fakeCountries{items: []types.Option{{ID: 1, Name: "中国"}, {ID: 2, Name: "United States"}}},
		saver:     &fakeSaver{},
		refresher: &countingRefresher{},
		rec:       &notify.Recorder{},
	}
	f.cascade = NewCascade(f.provinces, WithNotifier(f.rec))
	f.options = NewOptions(f.countries, WithNotifier(f.rec))
	f.editor = New(Config[types.PriceDestination, types.PriceDestinationForm]{
		Saver: f.saver,
		Key:   types.PriceDestination.Key,
		Form:  types.PriceDestination.Form,
		Parent: func(p types.PriceDestination) string {
			return p.Form().ParentKey()
		},
		SetParent: func(v *types.PriceDestinationForm, parentID string) error {
			v.StateOrProvinceID = nil
			v.CountryID = 0
			if parentID == "" {
				return nil
			}
			id, err := strconv.ParseInt(parentID, 10, 64)
			if err != nil {
				return types.NewValidationError("countryId", types.ErrInvalidID)
			}
			v.CountryID = id
			return nil
		},
		Cascade:   f.cascade,
		Reload:    []Reloader{f.options},
		Refresher: f.refresher,
	}, WithNotifier(f.rec))
	return f
}

func province(id int64) *int64 { return &id }

func validForm() types.PriceDestinationForm {
	return types.PriceDestinationForm{
		CountryID:        1,
		MinOrderSubtotal: decimal.RequireFromString("99.00"),
		ShippingPrice:    decimal.RequireFromString("12.50"),
		IsEnabled:        true,
	}
}

func TestOpenForCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.cascade.Select(ctx, "1"))

	f.editor.OpenForCreate()

	st := f.editor.State()
	assert.True(t, st.Open)
	assert.Equal(t, ModeCreate, st.Mode)
	assert.Equal(t, types.PriceDestinationForm{}, st.Values)
	assert.Empty(t, f.cascade.Children())
	assert.Equal(t, "", f.cascade.ParentID())
}

func TestOpenForEditLoadsChildren(t *testing.T) {
	f := newFixture()
	rec := types.PriceDestination{ID: 42, CountryID: 1, StateOrProvinceID: province(10), Note: "south"}

	require.NoError(t, f.editor.OpenForEdit(context.Background(), rec))

	st := f.editor.State()
	assert.True(t, st.Open)
	assert.Equal(t, ModeEdit, st.Mode)
	assert.Equal(t, int64(1), st.Values.CountryID)
	assert.Equal(t, "south", st.Values.Note)
	assert.Equal(t, []string{"1"}, f.provinces.calls)
	assert.Len(t, f.cascade.Children(), 2)
	assert.False(t, f.cascade.Loading())
}

func TestChangeParentToNoneClearsWithoutFetch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	rec := types.PriceDestination{ID: 42, CountryID: 1, StateOrProvinceID: province(10)}
	require.NoError(t, f.editor.OpenForEdit(ctx, rec))
	require.NotEmpty(t, f.cascade.Children())
	calls := f.provinces.count()

	require.NoError(t, f.editor.ChangeParent(ctx, ""))

	assert.Empty(t, f.cascade.Children())
	assert.Equal(t, calls, f.provinces.count())
	st := f.editor.State()
	assert.Nil(t, st.Values.StateOrProvinceID)
	assert.Zero(t, st.Values.CountryID)
}

func TestChangeParentRefetchesAndClearsChildField(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.editor.OpenForEdit(ctx, types.PriceDestination{ID: 1, CountryID: 1, StateOrProvinceID: province(10)}))

	require.NoError(t, f.editor.ChangeParent(ctx, "2"))

	st := f.editor.State()
	assert.Equal(t, int64(2), st.Values.CountryID)
	assert.Nil(t, st.Values.StateOrProvinceID)
	assert.Equal(t, []string{"1", "2"}, f.provinces.calls)
	children := f.cascade.Children()
	require.Len(t, children, 1)
	assert.Equal(t, "California", children[0].Name)
}

func TestChangeParentWhenClosed(t *testing.T) {
	f := newFixture()
	err := f.editor.ChangeParent(context.Background(), "1")
	assert.ErrorIs(t, err, types.ErrEditorClosed)
	assert.Zero(t, f.provinces.count())
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name    string
		open    func(t *testing.T, f *fixture)
		values  types.PriceDestinationForm
		saveErr error
		wantErr error
		check   func(t *testing.T, f *fixture)
	}{
		{
			name:   "create on success closes and refreshes",
			open:   func(t *testing.T, f *fixture) { f.editor.OpenForCreate() },
			values: validForm(),
			check: func(t *testing.T, f *fixture) {
				require.Len(t, f.saver.calls, 1)
				assert.Equal(t, "create", f.saver.calls[0].Op)
				st := f.editor.State()
				assert.False(t, st.Open)
				assert.False(t, st.Submitting)
				assert.Equal(t, types.PriceDestinationForm{}, st.Values)
				assert.Equal(t, 1, f.refresher.count)
				assert.Equal(t, 1, f.countries.calls)
				assert.Empty(t, f.rec.All())
			},
		},
		{
			name: "edit chooses update with record id",
			open: func(t *testing.T, f *fixture) {
				require.NoError(t, f.editor.OpenForEdit(context.Background(), types.PriceDestination{ID: 42, CountryID: 1}))
			},
			values: validForm(),
			check: func(t *testing.T, f *fixture) {
				require.Len(t, f.saver.calls, 1)
				assert.Equal(t, "update", f.saver.calls[0].Op)
				assert.Equal(t, "42", f.saver.calls[0].ID)
				assert.False(t, f.editor.State().Open)
			},
		},
		{
			name:    "remote failure keeps editor open",
			open:    func(t *testing.T, f *fixture) { f.editor.OpenForCreate() },
			values:  validForm(),
			saveErr: &types.RemoteFailure{Message: "该地区已存在运费设置"},
			wantErr: types.ErrRemote,
			check: func(t *testing.T, f *fixture) {
				st := f.editor.State()
				assert.True(t, st.Open)
				assert.False(t, st.Submitting)
				assert.Equal(t, int64(1), st.Values.CountryID)
				assert.Equal(t, []string{"该地区已存在运费设置"}, f.rec.Messages())
				assert.Zero(t, f.refresher.count)
			},
		},
		{
			name:    "transport failure clears submitting",
			open:    func(t *testing.T, f *fixture) { f.editor.OpenForCreate() },
			values:  validForm(),
			saveErr: &types.TransportError{Op: "/price-destination/add", Err: errors.New("refused")},
			wantErr: types.ErrTransport,
			check: func(t *testing.T, f *fixture) {
				assert.False(t, f.editor.State().Submitting)
				assert.Equal(t, []string{notify.GenericFailureMessage}, f.rec.Messages())
			},
		},
		{
			name:    "missing country is rejected before any call",
			open:    func(t *testing.T, f *fixture) { f.editor.OpenForCreate() },
			values:  types.PriceDestinationForm{ShippingPrice: decimal.NewFromInt(5)},
			wantErr: types.ErrValidation,
			check: func(t *testing.T, f *fixture) {
				assert.Empty(t, f.saver.calls)
				assert.Equal(t, []string{"countryId: is required"}, f.rec.Messages())
				assert.True(t, f.editor.State().Open)
			},
		},
		{
			name: "negative price is rejected",
			open: func(t *testing.T, f *fixture) { f.editor.OpenForCreate() },
			values: func() types.PriceDestinationForm {
				v := validForm()
				v.ShippingPrice = decimal.RequireFromString("-0.01")
				return v
			}(),
			wantErr: types.ErrValidation,
			check: func(t *testing.T, f *fixture) {
				assert.Empty(t, f.saver.calls)
				assert.Equal(t, []string{"shippingPrice: must be at least 0"}, f.rec.Messages())
			},
		},
		{
			name:    "closed editor",
			open:    func(t *testing.T, f *fixture) {},
			values:  validForm(),
			wantErr: types.ErrEditorClosed,
			check: func(t *testing.T, f *fixture) {
				assert.Empty(t, f.saver.calls)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.saver.err = tt.saveErr
			tt.open(t, f)

			err := f.editor.Submit(context.Background(), tt.values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			tt.check(t, f)
		})
	}
}

func TestSubmitRejectsReentrantSubmit(t *testing.T) {
	f := newFixture()
	f.saver.block = make(chan struct{})
	f.saver.entered = make(chan struct{}, 1)
	f.editor.OpenForCreate()
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.editor.Submit(ctx, validForm()) }()
	<-f.saver.entered
	assert.True(t, f.editor.State().Submitting)

	err := f.editor.Submit(ctx, validForm())
	assert.ErrorIs(t, err, types.ErrSubmitInProgress)
	assert.Empty(t, f.rec.All(), "re-entrant submit is silent")

	close(f.saver.block)
	require.NoError(t, <-done)
	assert.Len(t, f.saver.calls, 1)
	assert.False(t, f.editor.State().Submitting)
}

func TestSaveFromClosedModalLeavesNewModalAlone(t *testing.T) {
	f := newFixture()
	f.saver.block = make(chan struct{})
	f.saver.entered = make(chan struct{}, 2)
	f.editor.OpenForCreate()
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.editor.Submit(ctx, validForm()) }()
	<-f.saver.entered

	f.editor.Cancel()
	f.editor.OpenForCreate()
	require.NoError(t, f.editor.ChangeParent(ctx, "2"))
	st := f.editor.State()
	assert.True(t, st.Open)
	assert.False(t, st.Submitting, "a new modal starts idle")

	close(f.saver.block)
	require.NoError(t, <-done)

	st = f.editor.State()
	assert.True(t, st.Open, "the earlier save does not close the new modal")
	assert.Equal(t, int64(2), st.Values.CountryID)
	assert.Equal(t, 1, f.refresher.count, "the earlier save still refreshes the table")

	next := validForm()
	next.CountryID = 2
	require.NoError(t, f.editor.Submit(ctx, next))
	assert.False(t, f.editor.State().Open)
	require.Len(t, f.saver.calls, 2)
	assert.Equal(t, next, f.saver.calls[1].Values)
}

func TestFailedSaveFromClosedModalIsNotified(t *testing.T) {
	f := newFixture()
	f.saver.block = make(chan struct{})
	f.saver.entered = make(chan struct{}, 1)
	f.saver.err = &types.RemoteFailure{Message: "保存失败"}
	require.NoError(t, f.editor.OpenForEdit(context.Background(), types.PriceDestination{ID: 3, CountryID: 1}))

	done := make(chan error, 1)
	go func() { done <- f.editor.Submit(context.Background(), validForm()) }()
	<-f.saver.entered
	f.editor.Cancel()
	close(f.saver.block)

	assert.ErrorIs(t, <-done, types.ErrRemote)
	st := f.editor.State()
	assert.False(t, st.Open)
	assert.False(t, st.Submitting)
	assert.Equal(t, []string{"保存失败"}, f.rec.Messages())
}

func TestCancel(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.editor.OpenForEdit(context.Background(), types.PriceDestination{ID: 3, CountryID: 2}))
	f.editor.Cancel()

	st := f.editor.State()
	assert.False(t, st.Open)
	assert.Equal(t, types.PriceDestination{}, st.Current)
	assert.ErrorIs(t, f.editor.Submit(context.Background(), validForm()), types.ErrEditorClosed)
}
