package issues

import (
	"strings"

	"github.com/nhle/carepartner/internal/issue"
)

// Values is what the row editor form collects.
type Values struct {
	Category    string
	MidCategory string
	SubCategory string
	Detail      string
	// Links holds one URL per line.
	Links   string
	Opinion string
}

// ValuesOf pre-fills the form from r.
func ValuesOf(r issue.Row) Values {
	var links []string
	for _, l := range r.Links {
		if strings.TrimSpace(l) != "" {
			links = append(links, l)
		}
	}
	return Values{
		Category:    r.Category,
		MidCategory: r.MidCategory,
		SubCategory: r.SubCategory,
		Detail:      r.IssueDetail,
		Links:       strings.Join(links, "\n"),
		Opinion:     r.Opinion,
	}
}

// linkSlots splits the links text into at most MaxLinks slots; no links
// is one empty slot.
func linkSlots(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
		if len(out) == issue.MaxLinks {
			break
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// Intents returns the intents that take r to v. Category changes are
// emitted top-down so each level's reset happens before the level below
// is set; unchanged levels produce nothing, so a count is only
// re-requested when the path actually changes.
func Intents(r issue.Row, v Values) []issue.Intent {
	var out []issue.Intent

	switch {
	case v.Category != r.Category:
		out = append(out, issue.SetCategory{Value: v.Category})
		if v.MidCategory != "" {
			out = append(out, issue.SetMidCategory{Value: v.MidCategory})
		}
		if v.SubCategory != "" {
			out = append(out, issue.SetSubCategory{Value: v.SubCategory})
		}
	case v.MidCategory != r.MidCategory:
		out = append(out, issue.SetMidCategory{Value: v.MidCategory})
		if v.SubCategory != "" {
			out = append(out, issue.SetSubCategory{Value: v.SubCategory})
		}
	case v.SubCategory != r.SubCategory:
		out = append(out, issue.SetSubCategory{Value: v.SubCategory})
	}

	if v.Detail != r.IssueDetail {
		out = append(out, issue.SetDetail{Value: v.Detail})
	}
	if v.Opinion != r.Opinion {
		out = append(out, issue.SetOpinion{Value: v.Opinion})
	}

	target := linkSlots(v.Links)
	n := len(r.Links)
	for ; n < len(target); n++ {
		out = append(out, issue.AddLink{})
	}
	for ; n > len(target); n-- {
		out = append(out, issue.RemoveLink{Index: n - 1})
	}
	for i, l := range target {
		if i < len(r.Links) && r.Links[i] == l {
			continue
		}
		out = append(out, issue.SetLink{Index: i, Value: l})
	}

	return out
}
