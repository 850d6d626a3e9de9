package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Satisfaction scores, best first.
const (
	ScoreVerySatisfied    = 5
	ScoreSatisfied        = 4
	ScoreNeutral          = 3
	ScoreDissatisfied     = 2
	ScoreVeryDissatisfied = 1
)

// ScoreLabel returns the Korean answer label of a 1-5 score.
func ScoreLabel(score int) string {
	switch score {
	case ScoreVerySatisfied:
		return "매우만족"
	case ScoreSatisfied:
		return "만족"
	case ScoreNeutral:
		return "보통"
	case ScoreDissatisfied:
		return "불만족"
	case ScoreVeryDissatisfied:
		return "매우불만족"
	default:
		return "-"
	}
}

// Answers to "have you contacted us about this before?".
const (
	ContactYes     = "YES"
	ContactNo      = "NO"
	ContactNotSure = "NOT_SURE"
)

// ErrInvalidSurvey wraps every survey validation failure.
var ErrInvalidSurvey = errors.New("invalid survey")

// SurveySubmission is a satisfaction survey answer.
type SurveySubmission struct {
	Phone           string `json:"phone"`
	OverallSat      int    `json:"overallSat"`
	AnswerAccuracy  int    `json:"answerAccuracy"`
	PreviousContact string `json:"previousContact"`
	FreeComment     string `json:"freeComment,omitempty"`
}

// Validate checks the required answers.
func (s SurveySubmission) Validate() error {
	if strings.TrimSpace(s.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidSurvey)
	}
	if s.OverallSat < ScoreVeryDissatisfied || s.OverallSat > ScoreVerySatisfied {
		return fmt.Errorf("%w: overall satisfaction %d out of range", ErrInvalidSurvey, s.OverallSat)
	}
	if s.AnswerAccuracy < ScoreVeryDissatisfied || s.AnswerAccuracy > ScoreVerySatisfied {
		return fmt.Errorf("%w: answer accuracy %d out of range", ErrInvalidSurvey, s.AnswerAccuracy)
	}
	switch s.PreviousContact {
	case ContactYes, ContactNo, ContactNotSure:
	default:
		return fmt.Errorf("%w: previous contact %q", ErrInvalidSurvey, s.PreviousContact)
	}
	return nil
}

// SurveyResponse is one stored survey answer. Scores come back as labels,
// under either the plain or the *Text key depending on the server build.
type SurveyResponse struct {
	SurveyID           int64  `json:"surveyId"`
	Phone              string `json:"phone"`
	OverallSat         string `json:"overallSat"`
	OverallSatText     string `json:"overallSatText,omitempty"`
	AnswerAccuracy     string `json:"answerAccuracy"`
	AnswerAccuracyText string `json:"answerAccuracyText,omitempty"`
	PreviousContact    string `json:"previousContact"`
	FreeComment        string `json:"freeComment"`
	CreatedAt          string `json:"createdAt"`
}

// OverallLabel returns the overall satisfaction label.
func (r SurveyResponse) OverallLabel() string {
	if r.OverallSatText != "" {
		return r.OverallSatText
	}
	return r.OverallSat
}

// AccuracyLabel returns the answer accuracy label.
func (r SurveyResponse) AccuracyLabel() string {
	if r.AnswerAccuracyText != "" {
		return r.AnswerAccuracyText
	}
	return r.AnswerAccuracy
}

// SurveyPage is one page of survey responses.
type SurveyPage struct {
	Count int64
	List  []SurveyResponse
}

// UnmarshalJSON accepts both {count, list} and {totalCount, items}.
func (p *SurveyPage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Count      *int64           `json:"count"`
		TotalCount *int64           `json:"totalCount"`
		List       []SurveyResponse `json:"list"`
		Items      []SurveyResponse `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.TotalCount != nil:
		p.Count = *raw.TotalCount
	case raw.Count != nil:
		p.Count = *raw.Count
	}
	p.List = raw.List
	if len(raw.Items) > 0 {
		p.List = raw.Items
	}
	return nil
}

// Pages returns the number of pages of size n.
func (p SurveyPage) Pages(n int) int {
	if n <= 0 || p.Count <= 0 {
		return 0
	}
	return int((p.Count + int64(n) - 1) / int64(n))
}

// SurveyQuery pages through survey responses within a date range.
type SurveyQuery struct {
	Page      int
	Size      int
	StartDate string
	EndDate   string
}
