// Package category holds the three-level consultation taxonomy
// (category → mid-category → sub-category) that drives the cascading
// selectors of the issue editor.
package category

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Node is one level of the taxonomy. Sub-categories are leaves with no Sub.
type Node struct {
	Name string `mapstructure:"name" yaml:"name"`
	Sub  []Node `mapstructure:"sub" yaml:"sub,omitempty"`
}

// Names returns the names of nodes in order.
func Names(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func find(nodes []Node, name string) (Node, bool) {
	for _, n := range nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// Tree is a read-only taxonomy. It is safe for concurrent use.
type Tree struct {
	roots []Node
}

// New builds a tree from roots after checking that every category and
// mid-category has children.
func New(roots []Node) (*Tree, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("category table is empty")
	}
	for _, cat := range roots {
		if len(cat.Sub) == 0 {
			return nil, fmt.Errorf("category %q has no mid-categories", cat.Name)
		}
		for _, mid := range cat.Sub {
			if len(mid.Sub) == 0 {
				return nil, fmt.Errorf("mid-category %q/%q has no sub-categories", cat.Name, mid.Name)
			}
		}
	}
	return &Tree{roots: roots}, nil
}

// Categories returns the top-level category names.
func (t *Tree) Categories() []string {
	return Names(t.roots)
}

// MidCategoriesOf returns the mid-categories of category, or nil if the
// category is unknown.
func (t *Tree) MidCategoriesOf(category string) []string {
	cat, ok := find(t.roots, category)
	if !ok {
		return nil
	}
	return Names(cat.Sub)
}

// SubCategoriesOf returns the sub-categories under category/mid, or nil
// if either level is unknown.
func (t *Tree) SubCategoriesOf(category, mid string) []string {
	cat, ok := find(t.roots, category)
	if !ok {
		return nil
	}
	m, ok := find(cat.Sub, mid)
	if !ok {
		return nil
	}
	return Names(m.Sub)
}

// Contains reports whether category/mid/sub is a complete path in the tree.
func (t *Tree) Contains(category, mid, sub string) bool {
	for _, s := range t.SubCategoriesOf(category, mid) {
		if s == sub {
			return true
		}
	}
	return false
}

// Load reads a category table from a YAML file of the form
//
//	categories:
//	  - name: 요양사
//	    sub:
//	      - name: 앱 사용법
//	        sub: [{name: 회원가입}, {name: 로그인}]
//
// A missing file yields the default table.
func Load(path string) (*Tree, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return Default(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading category table %s: %w", path, err)
	}

	var file struct {
		Categories []Node `mapstructure:"categories"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("parsing category table %s: %w", path, err)
	}

	tree, err := New(file.Categories)
	if err != nil {
		return nil, fmt.Errorf("category table %s: %w", path, err)
	}
	return tree, nil
}
