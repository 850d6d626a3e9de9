package issue

import (
	"context"
	"fmt"

	"github.com/nhle/carepartner/internal/model"
)

// Store is the remote persistence the editor talks to.
type Store interface {
	ListIssues(ctx context.Context, q model.IssueListQuery) ([]model.FlatIssue, error)
	// SaveIssues creates or updates issues and returns the identity of the
	// first one when the server assigned it.
	SaveIssues(ctx context.Context, issues []model.FlatIssue) (int64, error)
	DeleteIssue(ctx context.Context, id int64) error
	IssueCount(ctx context.Context, q model.IssueCountQuery) (int64, error)
}

// Execute runs eff against store and returns the result to Resolve.
func Execute(ctx context.Context, store Store, eff Effect) (Result, error) {
	switch eff := eff.(type) {
	case SaveEffect:
		id, err := store.SaveIssues(ctx, []model.FlatIssue{eff.Issue})
		if eff.Issue.IssueReportID != 0 {
			id = eff.Issue.IssueReportID
		}
		return SaveResult{Key: eff.Key, ID: id, Err: err}, nil

	case CountEffect:
		n, err := store.IssueCount(ctx, eff.Query)
		return CountResult{Key: eff.Key, Seq: eff.Seq, Count: n, Err: err}, nil

	case DeleteEffect:
		err := store.DeleteIssue(ctx, eff.ID)
		return DeleteResult{Key: eff.Key, Err: err}, nil

	default:
		return nil, fmt.Errorf("effect %T cannot be executed", eff)
	}
}

// Load fetches the issues of the collection's period and hydrates it.
func Load(ctx context.Context, store Store, c *Collection) error {
	q := model.IssueListQuery{
		StartDate: c.ctx.StartDate,
		DailyType: c.ctx.DailyType,
		Category:  c.ctx.Category,
	}
	issues, err := store.ListIssues(ctx, q)
	if err != nil {
		return fmt.Errorf("listing issues: %w", err)
	}
	c.Hydrate(issues)
	return nil
}
