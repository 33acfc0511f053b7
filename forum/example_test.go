package forum_test

import (
	"fmt"

	"github.com/t0bias84/hagelskott/forum"
)

func ExampleBuildTree() {
	records := []forum.Category{
		{ID: "1", Name: "Hagelskytte"},
		{ID: "2", ParentID: forum.ID("1").Ptr(), Name: "Laddrecept"},
		{ID: "3", ParentID: forum.ID("3").Ptr(), Name: "Felaktig"},
	}

	for _, root := range forum.BuildTree(records, nil) {
		fmt.Println(root.Name)
		for _, child := range root.Subcategories {
			fmt.Println("  " + child.Name)
		}
	}
	// Output:
	// Hagelskytte
	//   Laddrecept
	// Felaktig
}
