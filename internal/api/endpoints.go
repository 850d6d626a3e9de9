package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nhle/carepartner/internal/auth"
	"github.com/nhle/carepartner/internal/issue"
	"github.com/nhle/carepartner/internal/model"
)

// Paths of the dashboard API.
const (
	PathLogin       = "/api/auth/login"
	PathLogout      = "/api/auth/logout"
	PathSummary     = "/api/dashboard/summary"
	PathTags        = "/api/dashboard/tags-list"
	PathExcelUpload = "/api/dashboard/excel/upload"
	PathSurveyAdd   = "/api/survey/insert"
	PathSurveyList  = "/api/survey/list"
	PathIssueList   = "/api/dashboard/issue-list"
	PathIssueSave   = "/api/dashboard/issue-insert"
	PathIssueDelete = "/api/dashboard/issue-delete"
	PathIssueCount  = "/api/dashboard/issue-cnt"
)

var _ issue.Store = (*Client)(nil)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, id, password string) (auth.Tokens, error) {
	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	body := map[string]string{"id": id, "password": password}
	if err := c.post(ctx, PathLogin, body, &resp); err != nil {
		return auth.Tokens{}, fmt.Errorf("logging in: %w", err)
	}
	if resp.AccessToken == "" {
		return auth.Tokens{}, fmt.Errorf("logging in: %w: no access token in response", ErrRejected)
	}
	return auth.Tokens{Access: resp.AccessToken, Refresh: resp.RefreshToken}, nil
}

// Logout revokes the refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	if err := c.post(ctx, PathLogout, body, nil); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

// Summary fetches the dashboard summary for q.
func (c *Client) Summary(ctx context.Context, q model.SummaryQuery) (model.Summary, error) {
	params := url.Values{}
	params.Set("categoryType", string(q.Division))
	params.Set("dailyType", string(q.DailyType))
	params.Set("startDate", q.StartDate)
	params.Set("excludeTags", strings.Join(q.ExcludeTags, ","))
	if q.TopN > 0 {
		params.Set("topN", strconv.Itoa(q.TopN))
	}

	var s model.Summary
	if err := c.get(ctx, PathSummary, params, &s); err != nil {
		return model.Summary{}, fmt.Errorf("fetching summary: %w", err)
	}
	return s, nil
}

// Tags lists the tag groups available for exclusion.
func (c *Client) Tags(ctx context.Context) ([]model.TagGroup, error) {
	var groups []model.TagGroup
	if err := c.get(ctx, PathTags, nil, &groups); err != nil {
		return nil, fmt.Errorf("fetching tags: %w", err)
	}
	return groups, nil
}

// ListIssues returns the issue reports of one period.
func (c *Client) ListIssues(ctx context.Context, q model.IssueListQuery) ([]model.FlatIssue, error) {
	params := url.Values{}
	params.Set("startDate", q.StartDate)
	params.Set("dailyType", string(q.DailyType))
	if q.Category != "" {
		params.Set("category", q.Category)
	}

	var resp struct {
		IssuedList []model.FlatIssue `json:"issuedList"`
	}
	if err := c.get(ctx, PathIssueList, params, &resp); err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	return resp.IssuedList, nil
}

// SaveIssues creates or updates issues. The returned id is the one the
// server assigned, or zero when it did not say.
func (c *Client) SaveIssues(ctx context.Context, issues []model.FlatIssue) (int64, error) {
	var resp struct {
		IssueReportID int64 `json:"issueReportId"`
	}
	if err := c.post(ctx, PathIssueSave, issues, &resp); err != nil {
		return 0, fmt.Errorf("saving issues: %w", err)
	}
	return resp.IssueReportID, nil
}

// DeleteIssue deletes a saved issue.
func (c *Client) DeleteIssue(ctx context.Context, id int64) error {
	params := url.Values{}
	params.Set("issue_report_id", strconv.FormatInt(id, 10))
	if err := c.delete(ctx, PathIssueDelete, params, nil); err != nil {
		return fmt.Errorf("deleting issue %d: %w", id, err)
	}
	return nil
}

// IssueCount returns the consultation count for a full category path.
func (c *Client) IssueCount(ctx context.Context, q model.IssueCountQuery) (int64, error) {
	params := url.Values{}
	params.Set("startDate", q.StartDate)
	params.Set("dailyType", string(q.DailyType))
	params.Set("category", q.Category)
	params.Set("midCategory", q.MidCategory)
	params.Set("subCategory", q.SubCategory)

	var resp struct {
		Count int64 `json:"count"`
	}
	if err := c.get(ctx, PathIssueCount, params, &resp); err != nil {
		return 0, fmt.Errorf("counting issues: %w", err)
	}
	return resp.Count, nil
}

// SubmitSurvey validates and stores a survey answer.
func (c *Client) SubmitSurvey(ctx context.Context, s model.SurveySubmission) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := c.post(ctx, PathSurveyAdd, s, nil); err != nil {
		return fmt.Errorf("submitting survey: %w", err)
	}
	return nil
}

// ListSurveyResponses returns one page of survey answers.
func (c *Client) ListSurveyResponses(ctx context.Context, q model.SurveyQuery) (model.SurveyPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(q.Page, 1)))
	params.Set("size", strconv.Itoa(max(q.Size, 1)))
	if q.StartDate != "" {
		params.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("endDate", q.EndDate)
	}

	var page model.SurveyPage
	if err := c.get(ctx, PathSurveyList, params, &page); err != nil {
		return model.SurveyPage{}, fmt.Errorf("listing survey responses: %w", err)
	}
	return page, nil
}

// UploadExcel posts a consultation export as multipart field "file".
func (c *Client) UploadExcel(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	name := filepath.Base(path)

	body := func() (io.Reader, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			return nil, "", fmt.Errorf("creating form file: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", fmt.Errorf("writing form file: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("closing multipart body: %w", err)
		}
		return &buf, w.FormDataContentType(), nil
	}

	err = c.call(ctx, request{method: http.MethodPost, path: PathExcelUpload, body: body}, nil)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	c.log.Info().Str("file", name).Int("bytes", len(data)).Msg("excel uploaded")
	return nil
}
