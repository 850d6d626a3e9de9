package model

// DailyType is the aggregation granularity the API groups data by.
type DailyType string

const (
	DailyTypeDaily   DailyType = "daily"
	DailyTypeWeekly  DailyType = "weekly"
	DailyTypeMonthly DailyType = "monthly"
)

// DailyTypes lists the valid daily types in tab order.
var DailyTypes = []DailyType{DailyTypeDaily, DailyTypeWeekly, DailyTypeMonthly}

// Valid reports whether d is one of the known daily types.
func (d DailyType) Valid() bool {
	switch d {
	case DailyTypeDaily, DailyTypeWeekly, DailyTypeMonthly:
		return true
	default:
		return false
	}
}

// Label is the tab label for d.
func (d DailyType) Label() string {
	switch d {
	case DailyTypeDaily:
		return "일간"
	case DailyTypeWeekly:
		return "주간"
	case DailyTypeMonthly:
		return "월간"
	default:
		return string(d)
	}
}

// Division filters the dashboard to one customer segment. The empty
// division means all segments.
type Division string

const (
	DivisionAll       Division = ""
	DivisionCaregiver Division = "caregiver"
	DivisionOrg       Division = "org"
	DivisionAcademy   Division = "academy"
	DivisionNormal    Division = "normal"
)

// Divisions lists the divisions in tab order.
var Divisions = []Division{
	DivisionAll, DivisionCaregiver, DivisionOrg, DivisionAcademy, DivisionNormal,
}

// Label is the tab label for d.
func (d Division) Label() string {
	switch d {
	case DivisionCaregiver:
		return "요양사"
	case DivisionOrg:
		return "기관"
	case DivisionAcademy:
		return "아카데미"
	case DivisionNormal:
		return "일반"
	default:
		return "전체"
	}
}

// Category returns the top-level category name the division corresponds
// to, or "" for the all-segments view.
func (d Division) Category() string {
	if d == DivisionAll {
		return ""
	}
	return d.Label()
}

// DashTop holds the headline counters and their previous-period values.
type DashTop struct {
	TotalCount         int64 `json:"totalCount"`
	LastTotalCount     int64 `json:"lastTotalCount"`
	CaregiverCount     int64 `json:"caregiverCount"`
	LastCaregiverCount int64 `json:"lastCaregiverCount"`
	OrgCount           int64 `json:"orgCount"`
	LastOrgCount       int64 `json:"lastOrgCount"`
	AcademyCount       int64 `json:"academyCount"`
	LastAcademyCount   int64 `json:"lastAcademyCount"`
	ChatRate           int64 `json:"chatRate"`
	LastChatRate       int64 `json:"lastChatRate"`
	CallRate           int64 `json:"callRate"`
	LastCallRate       int64 `json:"lastCallRate"`
	CallBack           int64 `json:"callBack"`
	LastCallBack       int64 `json:"lastCallBack"`
	CallBackSuc        int64 `json:"callBackSuc"`
	LastCallBackSuc    int64 `json:"lastCallBackSuc"`
}

// DailyRate is the same-day resolution rate, current and previous.
type DailyRate struct {
	CurrRatioPct float64 `json:"curr_ratio_pct"`
	PrevRatioPct float64 `json:"prev_ratio_pct"`
	DiffPct      float64 `json:"diff_pct"`
}

// WaitingTime is an average first-response time as HH:MM:SS.
type WaitingTime struct {
	WaitingTime string `json:"watingTime"`
}

// SurveyAverage is the mean overall satisfaction for one period offset.
type SurveyAverage struct {
	DayIndex      int     `json:"dayIndex"`
	AvgOverallSat float64 `json:"avgOverallSat"`
}

// Consultation breaks consultations down by type for one period offset.
type Consultation struct {
	DayIndex      int   `json:"dayIndex"`
	HowToUse      int64 `json:"howToUse"`
	Error         int64 `json:"error"`
	Inconvenience int64 `json:"inconvenience"`
	Etc           int64 `json:"etc"`
}

// SubCount is the count of one sub-category, now and in the previous period.
type SubCount struct {
	SubCategory string `json:"subCategory"`
	Cnt         int64  `json:"cnt"`
	PrevCnt     *int64 `json:"prevCnt,omitempty"`
}

// MidCounts groups sub-category counts under their mid-category.
type MidCounts struct {
	MidCategory string     `json:"midCategory"`
	Subs        []SubCount `json:"subs"`
}

// CategoryCounts is one entry of the nested category breakdown.
type CategoryCounts struct {
	Mids []MidCounts `json:"mids"`
}

// TopTag is a ranked sub-category with its trend percentage.
type TopTag struct {
	SubCategory string  `json:"subCategory"`
	Cnt         int64   `json:"cnt"`
	TrendPct    float64 `json:"trendPct"`
}

// Summary is the dashboard summary payload.
type Summary struct {
	DashTop          DashTop          `json:"dashTop"`
	DailyRate        []DailyRate      `json:"dailyRate"`
	WaitingTime      []WaitingTime    `json:"watingTime"`
	SurveyOverallAvg []SurveyAverage  `json:"surveyOverallAvg"`
	Consultation     []Consultation   `json:"consultation"`
	CatMidSubNested  []CategoryCounts `json:"catMidSubNested"`
	TopTags          []TopTag         `json:"topTags"`
	IncMonthTop      []TopTag         `json:"incMonthTop"`
	LastUpload       string           `json:"lastUpload"`
}

// SummaryQuery selects which summary to fetch.
type SummaryQuery struct {
	Division    Division
	DailyType   DailyType
	StartDate   string
	ExcludeTags []string
	TopN        int
}

// TagGroup is a top-level tag bucket and the tags under it.
type TagGroup struct {
	Tag  string   `json:"tag"`
	Data []string `json:"data"`
}
