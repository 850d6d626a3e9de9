package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/nhle/carepartner/internal/api"
	"github.com/nhle/carepartner/internal/auth"
	"github.com/nhle/carepartner/internal/issue"
	"github.com/nhle/carepartner/internal/model"
)

// Backend is the dashboard API as the client uses it.
type Backend interface {
	issue.Store

	Login(ctx context.Context, id, password string) (auth.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	Summary(ctx context.Context, q model.SummaryQuery) (model.Summary, error)
	Tags(ctx context.Context) ([]model.TagGroup, error)
	SubmitSurvey(ctx context.Context, s model.SurveySubmission) error
	ListSurveyResponses(ctx context.Context, q model.SurveyQuery) (model.SurveyPage, error)
}

var _ Backend = (*api.Client)(nil)

// Snapshot is everything the dashboard shows for one selection.
type Snapshot struct {
	View    model.ViewState
	Period  string
	Summary model.Summary
	Issues  []model.FlatIssue
	Tags    []model.TagGroup
}

// LoadSnapshot fetches the summary, the period's issue reports and the
// tag groups concurrently. Every request runs to completion; the errors
// of the failed ones are joined.
func LoadSnapshot(ctx context.Context, b Backend, v model.ViewState, excluded []string, ic issue.Context) (Snapshot, error) {
	snap := Snapshot{View: v, Period: ic.StartDate}

	var (
		errMu sync.Mutex
		errs  []error
	)
	fail := func(what string, err error) {
		errMu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", what, err))
		errMu.Unlock()
	}

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		s, err := b.Summary(ctx, v.SummaryQuery(excluded))
		if err != nil {
			fail("summary", err)
			return
		}
		snap.Summary = s
	})
	wg.Go(func() {
		issues, err := b.ListIssues(ctx, model.IssueListQuery{
			StartDate: ic.StartDate,
			DailyType: ic.DailyType,
			Category:  ic.Category,
		})
		if err != nil {
			fail("issues", err)
			return
		}
		snap.Issues = issues
	})
	wg.Go(func() {
		tags, err := b.Tags(ctx)
		if err != nil {
			fail("tags", err)
			return
		}
		snap.Tags = tags
	})
	wg.Wait()

	return snap, errors.Join(errs...)
}
