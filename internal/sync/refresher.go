// Package sync keeps the dashboard summary fresh in the background and
// hands results to the Bubble Tea runtime as messages.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/carepartner/internal/api"
	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/store"
)

// State is the refresher's current activity.
type State int

const (
	Idle State = iota
	Running
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "refreshing"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Status is a snapshot of the last refresh.
type Status struct {
	State       State
	LastRefresh time.Time
	Err         error
}

// ResultMsg is a tea.Msg sent when a refresh completes.
type ResultMsg struct {
	Generation uint64
	Query      model.SummaryQuery
	Summary    model.Summary
	FetchedAt  time.Time

	// Stale is set when the fetch failed and Summary came from the
	// local cache instead.
	Stale bool

	Err         error
	AuthExpired bool
}

// Fetcher loads a summary from the server.
type Fetcher interface {
	Summary(ctx context.Context, q model.SummaryQuery) (model.Summary, error)
}

// Cache is the part of the local store the refresher uses.
type Cache interface {
	PutSummary(ctx context.Context, q model.SummaryQuery, s model.Summary) error
	GetSummary(ctx context.Context, q model.SummaryQuery) (*store.CachedSummary, error)
}

// fetchTimeout bounds a single summary fetch.
const fetchTimeout = 30 * time.Second

// Refresher fetches the summary for the current query on a ticker and on
// demand. Every query change bumps the generation so results for an
// older selection can be recognised and dropped.
type Refresher struct {
	fetch    Fetcher
	cache    Cache
	interval time.Duration
	log      zerolog.Logger

	resultCh  chan ResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}

	mu         gosync.Mutex
	query      model.SummaryQuery
	generation uint64
	status     Status
	running    bool
	now        func() time.Time
}

// New creates a Refresher. A nil cache disables offline fallback, and an
// interval of zero disables periodic refresh.
func New(f Fetcher, c Cache, interval time.Duration, log zerolog.Logger) *Refresher {
	return &Refresher{
		fetch:     f,
		cache:     c,
		interval:  interval,
		log:       log,
		resultCh:  make(chan ResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}
}

// Start launches the background loop for q and returns the command that
// delivers the first result.
func (r *Refresher) Start(q model.SummaryQuery) tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.query = q
	r.generation++
	r.mu.Unlock()

	go r.loop()
	return r.WaitForResult()
}

// Stop halts the background loop.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	close(r.stopCh)
	r.running = false
}

// SetQuery switches to a new selection and triggers an immediate fetch.
// It returns the new generation.
func (r *Refresher) SetQuery(q model.SummaryQuery) uint64 {
	r.mu.Lock()
	r.query = q
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	r.Refresh()
	return gen
}

// Refresh requests an immediate fetch of the current query. Requests made
// while one is already pending are coalesced.
func (r *Refresher) Refresh() {
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

// IsCurrent reports whether msg belongs to the latest query.
func (r *Refresher) IsCurrent(msg ResultMsg) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return msg.Generation == r.generation
}

// Status returns the last refresh status.
func (r *Refresher) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// WaitForResult returns a tea.Cmd that blocks until the next result.
// Call it again after handling each ResultMsg to keep listening.
func (r *Refresher) WaitForResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

func (r *Refresher) loop() {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	r.refreshOnce()

	for {
		select {
		case <-r.stopCh:
			return
		case <-tick:
			r.refreshOnce()
		case <-r.triggerCh:
			r.refreshOnce()
		}
	}
}

func (r *Refresher) snapshot() (model.SummaryQuery, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.query, r.generation
}

// refreshOnce fetches the current query, caches it on success and falls
// back to the cache on failure.
func (r *Refresher) refreshOnce() {
	q, gen := r.snapshot()
	r.setStatus(Running, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	summary, err := r.fetch.Summary(ctx, q)
	if err != nil {
		r.setStatus(Failed, err)
		msg := ResultMsg{Generation: gen, Query: q, Err: err, AuthExpired: api.IsAuthError(err)}
		r.log.Warn().Err(err).Str("daily_type", string(q.DailyType)).Msg("summary refresh failed")

		if !msg.AuthExpired && r.cache != nil {
			cached, cerr := r.cache.GetSummary(ctx, q)
			switch {
			case cerr == nil:
				msg.Summary = cached.Summary
				msg.FetchedAt = cached.FetchedAt
				msg.Stale = true
			case !errors.Is(cerr, store.ErrNotFound):
				r.log.Error().Err(cerr).Msg("reading cached summary")
			}
		}
		r.send(msg)
		return
	}

	fetchedAt := r.now()
	if r.cache != nil {
		if cerr := r.cache.PutSummary(ctx, q, summary); cerr != nil {
			r.log.Error().Err(cerr).Msg("caching summary")
		}
	}

	r.setStatus(Idle, nil)
	r.log.Debug().Str("daily_type", string(q.DailyType)).Str("start_date", q.StartDate).Msg("summary refreshed")
	r.send(ResultMsg{Generation: gen, Query: q, Summary: summary, FetchedAt: fetchedAt})
}

func (r *Refresher) setStatus(state State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.State = state
	r.status.Err = err
	if state == Idle {
		r.status.LastRefresh = r.now()
	}
}

// send delivers msg without blocking the loop; results are dropped when
// nobody is listening.
func (r *Refresher) send(msg ResultMsg) {
	select {
	case r.resultCh <- msg:
	default:
	}
}
