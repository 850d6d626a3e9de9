package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carepartner/internal/api"
	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/store"
	"github.com/nhle/carepartner/internal/testutil"
)

type fakeFetcher struct {
	mu    gosync.Mutex
	err   error
	calls []model.SummaryQuery
}

func (f *fakeFetcher) Summary(_ context.Context, q model.SummaryQuery) (model.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if f.err != nil {
		return model.Summary{}, f.err
	}
	return model.Summary{DashTop: model.DashTop{TotalCount: int64(len(f.calls))}}, nil
}

func (f *fakeFetcher) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func next(t *testing.T, r *Refresher) ResultMsg {
	t.Helper()
	ch := make(chan ResultMsg, 1)
	go func() { ch <- r.WaitForResult()().(ResultMsg) }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for refresh result")
		return ResultMsg{}
	}
}

func dailyQuery() model.SummaryQuery {
	return model.SummaryQuery{Division: model.DivisionAll, DailyType: model.DailyTypeDaily, StartDate: "2024-03-15", TopN: 5}
}

func TestRefresherFetchesAndCaches(t *testing.T) {
	s := testutil.NewTestStore(t)
	f := &fakeFetcher{}
	r := New(f, s, 0, zerolog.Nop())
	t.Cleanup(r.Stop)

	cmd := r.Start(dailyQuery())
	require.NotNil(t, cmd)
	assert.Nil(t, r.Start(dailyQuery()), "second start is a no-op")

	msg := next(t, r)
	require.NoError(t, msg.Err)
	assert.False(t, msg.Stale)
	assert.Equal(t, int64(1), msg.Summary.DashTop.TotalCount)
	assert.True(t, r.IsCurrent(msg))
	assert.Equal(t, Idle, r.Status().State)
	assert.False(t, r.Status().LastRefresh.IsZero())

	cached, err := s.GetSummary(context.Background(), dailyQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Summary.DashTop.TotalCount)
}

func TestRefresherFallsBackToCache(t *testing.T) {
	s := testutil.NewTestStore(t)
	require.NoError(t, s.PutSummary(context.Background(), dailyQuery(), model.Summary{DashTop: model.DashTop{TotalCount: 77}}))

	f := &fakeFetcher{err: errors.New("connection refused")}
	r := New(f, s, 0, zerolog.Nop())
	t.Cleanup(r.Stop)
	r.Start(dailyQuery())

	msg := next(t, r)
	require.Error(t, msg.Err)
	assert.True(t, msg.Stale)
	assert.False(t, msg.AuthExpired)
	assert.Equal(t, int64(77), msg.Summary.DashTop.TotalCount)
	assert.Equal(t, Failed, r.Status().State)
}

func TestRefresherFailureWithoutCache(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	r := New(f, testutil.NewTestStore(t), 0, zerolog.Nop())
	t.Cleanup(r.Stop)
	r.Start(dailyQuery())

	msg := next(t, r)
	require.Error(t, msg.Err)
	assert.False(t, msg.Stale)
}

func TestRefresherReportsExpiredSession(t *testing.T) {
	f := &fakeFetcher{err: &api.AuthError{Method: "GET", Path: "/dashboard/summary", Status: 401}}
	r := New(f, nil, 0, zerolog.Nop())
	t.Cleanup(r.Stop)
	r.Start(dailyQuery())

	msg := next(t, r)
	assert.True(t, msg.AuthExpired)
	assert.False(t, msg.Stale)
}

func TestRefresherQueryChangeBumpsGeneration(t *testing.T) {
	f := &fakeFetcher{}
	r := New(f, nil, 0, zerolog.Nop())
	t.Cleanup(r.Stop)
	r.Start(dailyQuery())
	first := next(t, r)

	weekly := dailyQuery()
	weekly.DailyType = model.DailyTypeWeekly
	gen := r.SetQuery(weekly)

	assert.False(t, r.IsCurrent(first))
	second := next(t, r)
	assert.Equal(t, gen, second.Generation)
	assert.Equal(t, model.DailyTypeWeekly, second.Query.DailyType)
	assert.True(t, r.IsCurrent(second))
}

func TestRefresherManualRefresh(t *testing.T) {
	f := &fakeFetcher{}
	r := New(f, nil, 0, zerolog.Nop())
	t.Cleanup(r.Stop)
	r.Start(dailyQuery())
	next(t, r)

	r.Refresh()
	msg := next(t, r)
	assert.Equal(t, int64(2), msg.Summary.DashTop.TotalCount)
	assert.True(t, r.IsCurrent(msg))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "refreshing", Running.String())
	assert.Equal(t, "error", Failed.String())
}

var _ Cache = (*store.SQLiteStore)(nil)
