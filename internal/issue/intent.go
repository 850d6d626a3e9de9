package issue

import "github.com/nhle/carepartner/internal/model"

// Intent is a user action applied to a row.
type Intent interface {
	isIntent()
}

type (
	// Edit switches a viewed row into editing.
	Edit struct{}
	// Cancel discards edits, or removes a row that was never saved.
	Cancel struct{}
	// Submit validates the row and saves it.
	Submit struct{}
	// Delete removes the row, deleting it remotely first if it was saved.
	Delete struct{}

	// SetCategory selects a category and clears everything below it.
	SetCategory struct{ Value string }
	// SetMidCategory selects a mid-category and clears the sub-category.
	SetMidCategory struct{ Value string }
	// SetSubCategory selects a sub-category and requests its count.
	SetSubCategory struct{ Value string }

	SetDetail  struct{ Value string }
	SetOpinion struct{ Value string }

	// AddLink appends an empty link, up to MaxLinks.
	AddLink struct{}
	// RemoveLink drops the link at Index unless it is the only one.
	RemoveLink struct{ Index int }
	// SetLink replaces the link at Index.
	SetLink struct {
		Index int
		Value string
	}
)

func (Edit) isIntent()           {}
func (Cancel) isIntent()         {}
func (Submit) isIntent()         {}
func (Delete) isIntent()         {}
func (SetCategory) isIntent()    {}
func (SetMidCategory) isIntent() {}
func (SetSubCategory) isIntent() {}
func (SetDetail) isIntent()      {}
func (SetOpinion) isIntent()     {}
func (AddLink) isIntent()        {}
func (RemoveLink) isIntent()     {}
func (SetLink) isIntent()        {}

// Effect is work a transition asks the caller to perform. Every effect
// carries the Key of the row whose result it will produce.
type Effect interface {
	RowKey() string
}

// SaveEffect asks for the row to be persisted.
type SaveEffect struct {
	Key   string
	Issue model.FlatIssue
}

// CountEffect asks for the count of the row's category path. Seq ties
// the answer to the selection that requested it.
type CountEffect struct {
	Key   string
	Seq   int
	Query model.IssueCountQuery
}

// DeleteEffect asks for a saved row to be deleted remotely.
type DeleteEffect struct {
	Key string
	ID  int64
}

// RemoveEffect drops a row locally. Collection handles it itself.
type RemoveEffect struct {
	Key string
}

func (e SaveEffect) RowKey() string   { return e.Key }
func (e CountEffect) RowKey() string  { return e.Key }
func (e DeleteEffect) RowKey() string { return e.Key }
func (e RemoveEffect) RowKey() string { return e.Key }

// Result is the outcome of an effect, routed back by Key.
type Result interface {
	RowKey() string
}

// SaveResult reports a save. ID is the server identity of a newly
// created issue.
type SaveResult struct {
	Key string
	ID  int64
	Err error
}

// CountResult reports the count for the selection identified by Seq.
type CountResult struct {
	Key   string
	Seq   int
	Count int64
	Err   error
}

// DeleteResult reports a remote delete.
type DeleteResult struct {
	Key string
	Err error
}

func (r SaveResult) RowKey() string   { return r.Key }
func (r CountResult) RowKey() string  { return r.Key }
func (r DeleteResult) RowKey() string { return r.Key }
