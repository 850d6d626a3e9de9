// Package issue holds the issue report editor: a per-row state machine
// driven by intents, and the collection that owns the rows of one period.
//
// Transitions are pure. Anything that needs the network comes back as an
// Effect; the caller runs it (see Execute) and feeds the Result back.
package issue

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nhle/carepartner/internal/category"
	"github.com/nhle/carepartner/internal/model"
)

// MaxLinks is the number of link slots a report has.
const MaxLinks = 4

var (
	// ErrValidation is returned when a submit is blocked by missing fields.
	ErrValidation = errors.New("issue has invalid fields")

	// ErrLastRow is returned when removing the only remaining row.
	ErrLastRow = errors.New("at least one issue row must remain")

	// ErrRowNotFound is returned for an index or key with no row.
	ErrRowNotFound = errors.New("issue row not found")

	// ErrSave wraps a failed save.
	ErrSave = errors.New("saving issue failed")

	// ErrDelete wraps a failed delete.
	ErrDelete = errors.New("deleting issue failed")
)

// Mode is whether a row's fields can be changed.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

// SyncState tracks the row's last save.
type SyncState int

const (
	Idle SyncState = iota
	Pending
	Committed
	Failed
)

func (s SyncState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Field names used as FieldErrors keys.
const (
	FieldDailyType   = "dailyType"
	FieldCategory    = "category"
	FieldMidCategory = "midCategory"
	FieldSubCategory = "subCategory"
)

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

// Error lists the failing fields in a stable order.
func (fe FieldErrors) Error() string {
	var parts []string
	for _, f := range []string{FieldDailyType, FieldCategory, FieldMidCategory, FieldSubCategory} {
		if msg, ok := fe[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	return strings.Join(parts, ", ")
}

// Fields is the editable content of a report.
type Fields struct {
	DailyType   model.DailyType
	Category    string
	MidCategory string
	SubCategory string
	OrgCnt      int64
	IssueDetail string
	Links       []string
	Opinion     string
}

func (f Fields) clone() Fields {
	f.Links = append([]string(nil), f.Links...)
	return f
}

// Validate checks the required fields and that the category path exists
// in tree. A nil tree means the built-in taxonomy.
func (f Fields) Validate(tree *category.Tree) FieldErrors {
	errs := FieldErrors{}
	if !f.DailyType.Valid() {
		errs[FieldDailyType] = "기간 유형을 선택하세요"
	}
	if strings.TrimSpace(f.Category) == "" {
		errs[FieldCategory] = "대분류를 선택하세요"
	}
	if strings.TrimSpace(f.MidCategory) == "" {
		errs[FieldMidCategory] = "중분류를 선택하세요"
	}
	if strings.TrimSpace(f.SubCategory) == "" {
		errs[FieldSubCategory] = "소분류를 선택하세요"
	}
	if t := orDefault(tree); len(errs) == 0 && !t.Contains(f.Category, f.MidCategory, f.SubCategory) {
		switch {
		case !slices.Contains(t.Categories(), f.Category):
			errs[FieldCategory] = unknownCategory
		case !slices.Contains(t.MidCategoriesOf(f.Category), f.MidCategory):
			errs[FieldMidCategory] = unknownMidCategory
		default:
			errs[FieldSubCategory] = unknownSubCategory
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

const (
	unknownCategory    = "목록에 없는 대분류입니다"
	unknownMidCategory = "목록에 없는 중분류입니다"
	unknownSubCategory = "목록에 없는 소분류입니다"
)

func orDefault(tree *category.Tree) *category.Tree {
	if tree == nil {
		return category.Default()
	}
	return tree
}

// Row is one issue report and its editing state. Rows are values; every
// transition returns a new Row.
type Row struct {
	// Key identifies the row locally, independent of server identity.
	Key string
	// ID is the server identity; zero until the first successful save.
	ID        int64
	StartDate string
	Fields

	Mode Mode
	Sync SyncState
	// Deleting is set while a remote delete is in flight.
	Deleting bool
	Errors   FieldErrors
	// Err is the last save or delete failure.
	Err error

	saved    Fields
	countSeq int
}

// NewRow returns an empty row in Editing.
func NewRow(key string, dailyType model.DailyType, category, startDate string) Row {
	return Row{
		Key:       key,
		StartDate: startDate,
		Fields: Fields{
			DailyType: dailyType,
			Category:  category,
			Links:     []string{""},
		},
		Mode: Editing,
	}
}

// FromFlat hydrates a saved report into a row in Viewing.
func FromFlat(key string, f model.FlatIssue) Row {
	var links []string
	for _, l := range []string{f.LinkURL1, f.LinkURL2, f.LinkURL3, f.LinkURL4} {
		if l != "" {
			links = append(links, l)
		}
	}
	if len(links) == 0 {
		links = []string{""}
	}

	fields := Fields{
		DailyType:   f.DailyType,
		Category:    f.Category,
		MidCategory: f.MidCategory,
		SubCategory: f.SubCategory,
		OrgCnt:      f.OrgCnt,
		IssueDetail: f.IssueDetail,
		Links:       links,
		Opinion:     f.Opinion,
	}
	return Row{
		Key:       key,
		ID:        f.IssueReportID,
		StartDate: f.StartDate,
		Fields:    fields,
		Mode:      Viewing,
		saved:     fields.clone(),
	}
}

// Flatten converts the row to its wire form. Link i goes to linkUrl{i+1}.
func (r Row) Flatten() model.FlatIssue {
	var urls [MaxLinks]string
	for i, l := range r.Links {
		if i >= MaxLinks {
			break
		}
		urls[i] = strings.TrimSpace(l)
	}
	return model.FlatIssue{
		IssueReportID: r.ID,
		DailyType:     r.DailyType,
		StartDate:     r.StartDate,
		Category:      r.Category,
		MidCategory:   r.MidCategory,
		SubCategory:   r.SubCategory,
		OrgCnt:        r.OrgCnt,
		IssueDetail:   r.IssueDetail,
		LinkURL1:      urls[0],
		LinkURL2:      urls[1],
		LinkURL3:      urls[2],
		LinkURL4:      urls[3],
		Opinion:       r.Opinion,
	}
}

// Saved reports whether the row has a server identity.
func (r Row) Saved() bool { return r.ID != 0 }

// Busy reports whether a save or delete is in flight.
func (r Row) Busy() bool { return r.Sync == Pending || r.Deleting }

// editable reports whether field intents apply.
func (r Row) editable() bool { return r.Mode == Editing && !r.Busy() }

// clearError drops one field's message without touching the map shared
// with earlier copies of the row.
func (r *Row) clearError(field string) {
	if _, ok := r.Errors[field]; !ok {
		return
	}
	errs := make(FieldErrors, len(r.Errors))
	for k, v := range r.Errors {
		if k != field {
			errs[k] = v
		}
	}
	if len(errs) == 0 {
		errs = nil
	}
	r.Errors = errs
}

// setError records one field's message on a fresh copy of the map.
func (r *Row) setError(field, msg string) {
	errs := make(FieldErrors, len(r.Errors)+1)
	for k, v := range r.Errors {
		errs[k] = v
	}
	errs[field] = msg
	r.Errors = errs
}

// Apply runs intent against r. Category values missing from tree at
// their level are refused with a field error; a nil tree means the
// built-in taxonomy. The returned effect is nil when the intent needs no
// outside work or was ignored.
func (r Row) Apply(tree *category.Tree, in Intent) (Row, Effect) {
	tree = orDefault(tree)
	r.Fields = r.Fields.clone()

	switch in.(type) {
	case Edit:
		if r.Mode != Viewing || r.Busy() {
			return r, nil
		}
		r.Mode = Editing
		r.Sync = Idle
		r.Errors = nil
		r.Err = nil
		return r, nil

	case Cancel:
		if r.Mode != Editing || r.Busy() {
			return r, nil
		}
		if !r.Saved() {
			return r, RemoveEffect{Key: r.Key}
		}
		r.Fields = r.saved.clone()
		r.Mode = Viewing
		r.Sync = Idle
		r.Errors = nil
		r.Err = nil
		r.countSeq++
		return r, nil

	case Submit:
		if !r.editable() {
			return r, nil
		}
		if errs := r.Validate(tree); errs != nil {
			r.Errors = errs
			return r, nil
		}
		r.Errors = nil
		r.Err = nil
		r.Sync = Pending
		return r, SaveEffect{Key: r.Key, Issue: r.Flatten()}

	case Delete:
		if r.Busy() {
			return r, nil
		}
		if !r.Saved() {
			return r, RemoveEffect{Key: r.Key}
		}
		r.Deleting = true
		r.Err = nil
		return r, DeleteEffect{Key: r.Key, ID: r.ID}
	}

	if !r.editable() {
		return r, nil
	}

	switch in := in.(type) {
	case SetCategory:
		if in.Value != "" && !slices.Contains(tree.Categories(), in.Value) {
			r.setError(FieldCategory, unknownCategory)
			return r, nil
		}
		r.Category = in.Value
		r.MidCategory = ""
		r.SubCategory = ""
		r.OrgCnt = 0
		r.countSeq++
		r.clearError(FieldCategory)

	case SetMidCategory:
		if in.Value != "" && !slices.Contains(tree.MidCategoriesOf(r.Category), in.Value) {
			r.setError(FieldMidCategory, unknownMidCategory)
			return r, nil
		}
		r.MidCategory = in.Value
		r.SubCategory = ""
		r.OrgCnt = 0
		r.countSeq++
		r.clearError(FieldMidCategory)

	case SetSubCategory:
		if in.Value != "" && !slices.Contains(tree.SubCategoriesOf(r.Category, r.MidCategory), in.Value) {
			r.setError(FieldSubCategory, unknownSubCategory)
			return r, nil
		}
		r.SubCategory = in.Value
		r.OrgCnt = 0
		r.countSeq++
		r.clearError(FieldSubCategory)
		if r.Category == "" || r.MidCategory == "" || r.SubCategory == "" {
			return r, nil
		}
		return r, CountEffect{
			Key: r.Key,
			Seq: r.countSeq,
			Query: model.IssueCountQuery{
				StartDate:   r.StartDate,
				DailyType:   r.DailyType,
				Category:    r.Category,
				MidCategory: r.MidCategory,
				SubCategory: r.SubCategory,
			},
		}

	case SetDetail:
		r.IssueDetail = in.Value

	case SetOpinion:
		r.Opinion = in.Value

	case AddLink:
		if len(r.Links) < MaxLinks {
			r.Links = append(r.Links, "")
		}

	case RemoveLink:
		if len(r.Links) > 1 && in.Index >= 0 && in.Index < len(r.Links) {
			r.Links = append(r.Links[:in.Index], r.Links[in.Index+1:]...)
		}

	case SetLink:
		if in.Index >= 0 && in.Index < len(r.Links) {
			r.Links[in.Index] = in.Value
		}
	}

	return r, nil
}

// ApplySave resolves a pending save.
func (r Row) ApplySave(res SaveResult) Row {
	if r.Sync != Pending {
		return r
	}
	if res.Err != nil {
		r.Sync = Failed
		r.Mode = Editing
		r.Err = fmt.Errorf("%w: %w", ErrSave, res.Err)
		return r
	}
	if r.ID == 0 {
		r.ID = res.ID
	}
	r.Sync = Committed
	r.Mode = Viewing
	r.Err = nil
	r.saved = r.Fields.clone()
	return r
}

// ApplyCount sets OrgCnt from a count result. Results for a selection the
// row has since moved away from are dropped.
func (r Row) ApplyCount(res CountResult) Row {
	if res.Seq != r.countSeq || r.Mode != Editing {
		return r
	}
	if res.Err != nil {
		r.OrgCnt = 0
		return r
	}
	r.OrgCnt = res.Count
	return r
}

// ApplyDeleteFailure clears the in-flight delete and records err.
func (r Row) ApplyDeleteFailure(err error) Row {
	r.Deleting = false
	r.Err = fmt.Errorf("%w: %w", ErrDelete, err)
	return r
}
