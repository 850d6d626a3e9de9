package dashboard

import (
	"slices"
	"strings"

	"github.com/nhle/carepartner/internal/model"
)

// Stats counts tags by whether they are excluded.
type Stats struct {
	Total    int
	Excluded int
	Included int
}

// ExclusionStats summarizes all groups. Excluded is the size of the
// exclusion set, whether or not every entry is still a known tag.
func ExclusionStats(groups []model.TagGroup, excluded []string) Stats {
	total := 0
	for _, g := range groups {
		total += len(g.Data)
	}
	return Stats{Total: total, Excluded: len(excluded), Included: total - len(excluded)}
}

// GroupStats summarizes one group.
func GroupStats(g model.TagGroup, excluded []string) Stats {
	n := 0
	for _, tag := range g.Data {
		if slices.Contains(excluded, tag) {
			n++
		}
	}
	return Stats{Total: len(g.Data), Excluded: n, Included: len(g.Data) - n}
}

// ToggleTag adds tag to the exclusion set, or removes it if present.
func ToggleTag(excluded []string, tag string) []string {
	if slices.Contains(excluded, tag) {
		return slices.DeleteFunc(slices.Clone(excluded), func(t string) bool { return t == tag })
	}
	return append(slices.Clone(excluded), tag)
}

// ToggleGroup includes every tag of g when all of them are excluded, and
// excludes all of them otherwise.
func ToggleGroup(excluded []string, g model.TagGroup) []string {
	allExcluded := true
	for _, tag := range g.Data {
		if !slices.Contains(excluded, tag) {
			allExcluded = false
			break
		}
	}

	if allExcluded {
		return slices.DeleteFunc(slices.Clone(excluded), func(t string) bool {
			return slices.Contains(g.Data, t)
		})
	}

	out := slices.Clone(excluded)
	for _, tag := range g.Data {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// FilterTags keeps, in every group, the tags containing term
// case-insensitively. Groups are kept even when nothing matches.
func FilterTags(groups []model.TagGroup, term string) []model.TagGroup {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.TagGroup, len(groups))
	for i, g := range groups {
		out[i] = model.TagGroup{Tag: g.Tag, Data: []string{}}
		for _, tag := range g.Data {
			if strings.Contains(strings.ToLower(tag), term) {
				out[i].Data = append(out[i].Data, tag)
			}
		}
	}
	return out
}
