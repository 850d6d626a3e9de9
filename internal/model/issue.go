package model

// FlatIssue is the wire form of an issue report. Links travel as four
// fixed fields.
type FlatIssue struct {
	IssueReportID int64     `json:"issueReportId,omitempty"`
	DailyType     DailyType `json:"dailyType"`
	StartDate     string    `json:"startDate,omitempty"`
	Category      string    `json:"category"`
	MidCategory   string    `json:"midCategory"`
	SubCategory   string    `json:"subCategory"`
	OrgCnt        int64     `json:"orgCnt"`
	IssueDetail   string    `json:"issueDetail"`
	LinkURL1      string    `json:"linkUrl1"`
	LinkURL2      string    `json:"linkUrl2"`
	LinkURL3      string    `json:"linkUrl3"`
	LinkURL4      string    `json:"linkUrl4"`
	Opinion       string    `json:"opinion"`
	CreatedAt     string    `json:"createdAt,omitempty"`
}

// IssueListQuery selects the issue reports of one period.
type IssueListQuery struct {
	StartDate string
	DailyType DailyType
	Category  string
}

// IssueCountQuery identifies the full category path whose count backs a
// row's orgCnt.
type IssueCountQuery struct {
	StartDate   string
	DailyType   DailyType
	Category    string
	MidCategory string
	SubCategory string
}
