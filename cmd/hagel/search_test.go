package main

import (
	"testing"

	"github.com/t0bias84/hagelskott/forum"
)

func testForest() []*forum.Category {
	return forum.BuildTree([]forum.Category{
		{ID: "1", Name: "Jakt"},
		{ID: "2", ParentID: forum.ID("1").Ptr(), Name: "Hagelvapen"},
		{ID: "3", Name: "Skytte", Description: "Lerduvor och jakt"},
		{ID: "4", ParentID: forum.ID("2").Ptr(), Name: "Vapenvård"},
	}, nil)
}

func TestSearchCategories(t *testing.T) {
	tests := []struct {
		query string
		limit int
		want  []string
	}{
		{"jkt", 0, []string{"Jakt"}},
		{"vård", 0, []string{"Jakt / Hagelvapen / Vapenvård"}},
		{"jakt", 0, []string{"Jakt", "Skytte"}},
		{"jakt", 1, []string{"Jakt"}},
		{"xyz", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			hits := searchCategories(testForest(), tt.query, tt.limit)
			if len(hits) != len(tt.want) {
				t.Fatalf("hits = %+v, want %d", hits, len(tt.want))
			}
			for i, want := range tt.want {
				if hits[i].Path != want && hits[i].Name != want {
					t.Errorf("hit %d = %+v, want %q", i, hits[i], want)
				}
			}
		})
	}
}

func TestCategoryPaths(t *testing.T) {
	roots := testForest()
	paths := categoryPaths(roots)
	vard := forum.Find(roots, "4")
	if got := paths[vard]; got != "Jakt / Hagelvapen / Vapenvård" {
		t.Errorf("path = %q", got)
	}
}
