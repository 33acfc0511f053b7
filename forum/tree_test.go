package forum

import (
	"strconv"
	"testing"
)

func cat(id string, parent *ID) Category {
	return Category{ID: ID(id), ParentID: parent, Name: "cat-" + id}
}

func ids(nodes []*Category) []ID {
	out := make([]ID, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func equalIDs(a []ID, b ...ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildTree_SelfParentBecomesRoot(t *testing.T) {
	records := []Category{
		cat("1", nil),
		cat("2", ID("1").Ptr()),
		cat("3", ID("3").Ptr()),
	}

	roots := BuildTree(records, nil)

	if got := ids(roots); !equalIDs(got, "1", "3") {
		t.Fatalf("roots = %v, want [1 3]", got)
	}
	if got := ids(roots[0].Subcategories); !equalIDs(got, "2") {
		t.Errorf("children of 1 = %v, want [2]", got)
	}
	if len(roots[1].Subcategories) != 0 {
		t.Errorf("3 should have no children, got %v", ids(roots[1].Subcategories))
	}
}

func TestBuildTree_Empty(t *testing.T) {
	for _, in := range [][]Category{nil, {}} {
		roots := BuildTree(in, nil)
		if roots == nil || len(roots) != 0 {
			t.Errorf("BuildTree(%v) = %v, want empty non-nil slice", in, roots)
		}
	}
}

func TestBuildTree(t *testing.T) {
	tests := []struct {
		name      string
		records   []Category
		parentID  *ID
		wantRoots []ID
		children  map[ID][]ID
	}{
		{
			name:      "orphan becomes root",
			records:   []Category{cat("1", nil), cat("2", ID("missing").Ptr())},
			wantRoots: []ID{"1", "2"},
		},
		{
			name:      "two node cycle terminates",
			records:   []Category{cat("4", ID("5").Ptr()), cat("5", ID("4").Ptr())},
			wantRoots: []ID{"5"},
			children:  map[ID][]ID{"5": {"4"}},
		},
		{
			name: "three node cycle terminates",
			records: []Category{
				cat("a", ID("c").Ptr()),
				cat("b", ID("a").Ptr()),
				cat("c", ID("b").Ptr()),
			},
			wantRoots: []ID{"c"},
			children:  map[ID][]ID{"c": {"a"}, "a": {"b"}},
		},
		{
			name: "child listed before parent",
			records: []Category{
				cat("2", ID("1").Ptr()),
				cat("3", ID("2").Ptr()),
				cat("1", nil),
			},
			wantRoots: []ID{"1"},
			children:  map[ID][]ID{"1": {"2"}, "2": {"3"}},
		},
		{
			name: "subtree root",
			records: []Category{
				cat("1", nil),
				cat("2", ID("1").Ptr()),
				cat("3", ID("1").Ptr()),
				cat("4", ID("3").Ptr()),
			},
			parentID:  ID("1").Ptr(),
			wantRoots: []ID{"2", "3", "1"},
			children:  map[ID][]ID{"3": {"4"}},
		},
		{
			name:      "records without ids stay roots",
			records:   []Category{{Name: "x"}, cat("2", ID("").Ptr())},
			wantRoots: []ID{"", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots := BuildTree(tt.records, tt.parentID)
			if got := ids(roots); !equalIDs(got, tt.wantRoots...) {
				t.Fatalf("roots = %v, want %v", got, tt.wantRoots)
			}
			for parent, want := range tt.children {
				node := Find(roots, parent)
				if node == nil {
					t.Fatalf("node %s not in tree", parent)
				}
				if got := ids(node.Subcategories); !equalIDs(got, want...) {
					t.Errorf("children of %s = %v, want %v", parent, got, want)
				}
			}
			if n := len(Flatten(roots)); n != len(tt.records) {
				t.Errorf("tree holds %d nodes, want %d", n, len(tt.records))
			}
		})
	}
}

func TestBuildTree_DoesNotModifyInput(t *testing.T) {
	records := []Category{cat("1", nil), cat("2", ID("1").Ptr())}
	roots := BuildTree(records, nil)
	*roots[0].Subcategories[0].ParentID = "changed"

	if records[0].Subcategories != nil {
		t.Error("input record gained subcategories")
	}
	if *records[1].ParentID != "1" {
		t.Error("input parent id was modified through the tree")
	}
}

func TestBuildTree_DeepChain(t *testing.T) {
	const depth = 50000
	records := make([]Category, depth)
	records[0] = cat("0", nil)
	for i := 1; i < depth; i++ {
		records[i] = Category{ID: ID(strconv.Itoa(i)), ParentID: ID(strconv.Itoa(i - 1)).Ptr()}
	}

	roots := BuildTree(records, nil)
	if len(roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(roots))
	}
	if d := Depth(roots); d != depth {
		t.Errorf("Depth = %d, want %d", d, depth)
	}
	if got := Find(roots, ID(strconv.Itoa(depth-1))); got == nil {
		t.Error("deepest node not found")
	}
}

func TestSearch(t *testing.T) {
	records := []Category{
		{ID: "1", Name: "Hagelgevär"},
		{ID: "2", ParentID: ID("1").Ptr(), Name: "Laddning", Description: "Hagel och krut"},
		{ID: "3", Name: "Kulvapen"},
		{ID: "4", ParentID: ID("3").Ptr(), Name: "Hylsor"},
	}
	roots := BuildTree(records, nil)

	tests := []struct {
		query string
		want  []ID
	}{
		{"hagel", []ID{"1", "2"}},
		{"HYLS", []ID{"4"}},
		{"  krut ", []ID{"2"}},
		{"", nil},
		{"saknas", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Search(roots, tt.query)
			if got == nil {
				t.Fatal("Search must return a non-nil slice")
			}
			if !equalIDs(ids(got), tt.want...) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, ids(got), tt.want)
			}
		})
	}
}

func TestWalk_HandBuiltLoop(t *testing.T) {
	a := &Category{ID: "a"}
	b := &Category{ID: "b", Subcategories: []*Category{a}}
	a.Subcategories = []*Category{b}

	if got := ids(Flatten([]*Category{a})); !equalIDs(got, "a", "b") {
		t.Errorf("Flatten = %v", got)
	}
	if Depth([]*Category{a}) != 2 {
		t.Errorf("Depth = %d", Depth([]*Category{a}))
	}
	if Find([]*Category{a}, "zzz") != nil {
		t.Error("Find should return nil for unknown id")
	}
}
