package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/carepartner/internal/model"
)

var testGroups = []model.TagGroup{
	{Tag: "요양사", Data: []string{"로그인", "회원가입", "급여"}},
	{Tag: "기관", Data: []string{"결제", "계약"}},
}

func TestExclusionStats(t *testing.T) {
	assert.Equal(t, Stats{Total: 5, Excluded: 0, Included: 5}, ExclusionStats(testGroups, nil))
	assert.Equal(t, Stats{Total: 5, Excluded: 2, Included: 3}, ExclusionStats(testGroups, []string{"로그인", "결제"}))
	assert.Equal(t, Stats{}, ExclusionStats(nil, nil))
}

func TestGroupStats(t *testing.T) {
	got := GroupStats(testGroups[0], []string{"로그인", "결제"})
	assert.Equal(t, Stats{Total: 3, Excluded: 1, Included: 2}, got)
}

func TestToggleTag(t *testing.T) {
	excluded := []string{"로그인"}
	added := ToggleTag(excluded, "결제")
	assert.Equal(t, []string{"로그인", "결제"}, added)
	assert.Equal(t, []string{"로그인"}, excluded, "input is not modified")

	removed := ToggleTag(added, "로그인")
	assert.Equal(t, []string{"결제"}, removed)
}

func TestToggleGroup(t *testing.T) {
	// Partially excluded: exclude the rest without duplicates.
	got := ToggleGroup([]string{"회원가입", "결제"}, testGroups[0])
	assert.ElementsMatch(t, []string{"회원가입", "결제", "로그인", "급여"}, got)
	assert.Len(t, got, 4)

	// Fully excluded: include them all again, keep other groups' tags.
	got = ToggleGroup(got, testGroups[0])
	assert.Equal(t, []string{"결제"}, got)
}

func TestToggleEmptyGroupIsNoop(t *testing.T) {
	got := ToggleGroup([]string{"결제"}, model.TagGroup{Tag: "빈 그룹"})
	assert.Equal(t, []string{"결제"}, got)
}

func TestFilterTags(t *testing.T) {
	groups := []model.TagGroup{{Tag: "A", Data: []string{"Login", "Logout", "Pay"}}, {Tag: "B", Data: []string{"Contract"}}}
	got := FilterTags(groups, "log")
	assert.Equal(t, []string{"Login", "Logout"}, got[0].Data)
	assert.Empty(t, got[1].Data)
	assert.Equal(t, "B", got[1].Tag)

	assert.Equal(t, groups[0].Data, FilterTags(groups, "")[0].Data)
}
