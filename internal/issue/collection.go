package issue

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/carepartner/internal/category"
	"github.com/nhle/carepartner/internal/model"
)

// Context is what new rows of a collection are pre-filled with.
type Context struct {
	DailyType model.DailyType
	// Category is fixed when the editor is scoped to one division.
	Category  string
	StartDate string
}

// Collection owns the rows of one period. It always holds at least one row.
type Collection struct {
	ctx    Context
	tree   *category.Tree
	rows   []Row
	newKey func() string
}

// NewCollection returns a collection holding one empty row. Category
// selections are checked against tree, or the built-in taxonomy when
// tree is nil.
func NewCollection(ctx Context, tree *category.Tree) *Collection {
	c := &Collection{ctx: ctx, tree: orDefault(tree), newKey: uuid.NewString}
	c.rows = []Row{c.blankRow()}
	return c
}

func (c *Collection) blankRow() Row {
	return NewRow(c.newKey(), c.ctx.DailyType, c.ctx.Category, c.ctx.StartDate)
}

// Context returns the collection's context.
func (c *Collection) Context() Context { return c.ctx }

// Hydrate replaces the rows with the given server records. An empty list
// leaves a single blank row in Editing.
func (c *Collection) Hydrate(issues []model.FlatIssue) {
	if len(issues) == 0 {
		c.rows = []Row{c.blankRow()}
		return
	}
	rows := make([]Row, 0, len(issues))
	for _, f := range issues {
		r := FromFlat(c.newKey(), f)
		if r.StartDate == "" {
			r.StartDate = c.ctx.StartDate
		}
		rows = append(rows, r)
	}
	c.rows = rows
}

// Len returns the number of rows.
func (c *Collection) Len() int { return len(c.rows) }

// Rows returns a copy of the rows in order.
func (c *Collection) Rows() []Row {
	return append([]Row(nil), c.rows...)
}

// Row returns the row at i.
func (c *Collection) Row(i int) (Row, bool) {
	if i < 0 || i >= len(c.rows) {
		return Row{}, false
	}
	return c.rows[i], true
}

// IndexOf returns the index of the row with key, or -1.
func (c *Collection) IndexOf(key string) int {
	for i, r := range c.rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}

// AddRow appends a blank row and returns it.
func (c *Collection) AddRow() Row {
	r := c.blankRow()
	c.rows = append(c.rows, r)
	return r
}

// RemoveRow deletes the row at i. Saved rows come back as a DeleteEffect
// and stay until the delete succeeds.
func (c *Collection) RemoveRow(i int) (Effect, error) {
	return c.Dispatch(i, Delete{})
}

// live counts the rows not already on their way out.
func (c *Collection) live() int {
	n := 0
	for _, r := range c.rows {
		if !r.Deleting {
			n++
		}
	}
	return n
}

// Dispatch applies intent to the row at i. Effects that need the network
// are returned for the caller to run; local removals happen here.
func (c *Collection) Dispatch(i int, in Intent) (Effect, error) {
	if i < 0 || i >= len(c.rows) {
		return nil, fmt.Errorf("%w: index %d", ErrRowNotFound, i)
	}

	if _, ok := in.(Delete); ok && c.live() <= 1 {
		return nil, ErrLastRow
	}

	next, eff := c.rows[i].Apply(c.tree, in)

	if _, ok := eff.(RemoveEffect); ok {
		if len(c.rows) <= 1 {
			// Cancelling the only unsaved row starts it over instead.
			c.rows[i] = c.blankRow()
			return nil, nil
		}
		c.rows = append(c.rows[:i], c.rows[i+1:]...)
		return nil, nil
	}

	c.rows[i] = next

	if _, ok := in.(Submit); ok && next.Errors != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, next.Errors.Error())
	}

	return eff, nil
}

// DispatchKey is Dispatch addressed by row key.
func (c *Collection) DispatchKey(key string, in Intent) (Effect, error) {
	i := c.IndexOf(key)
	if i < 0 {
		return nil, fmt.Errorf("%w: key %s", ErrRowNotFound, key)
	}
	return c.Dispatch(i, in)
}

// Resolve routes an effect result to its row. Results for rows that are
// gone are dropped.
func (c *Collection) Resolve(res Result) error {
	i := c.IndexOf(res.RowKey())
	if i < 0 {
		return nil
	}

	switch res := res.(type) {
	case SaveResult:
		c.rows[i] = c.rows[i].ApplySave(res)
		return c.rows[i].Err

	case CountResult:
		c.rows[i] = c.rows[i].ApplyCount(res)
		return nil

	case DeleteResult:
		if res.Err != nil {
			c.rows[i] = c.rows[i].ApplyDeleteFailure(res.Err)
			return c.rows[i].Err
		}
		c.rows = append(c.rows[:i], c.rows[i+1:]...)
		if len(c.rows) == 0 {
			c.rows = []Row{c.blankRow()}
		}
		return nil
	}

	return nil
}
