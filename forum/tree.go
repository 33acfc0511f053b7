package forum

import "strings"

// BuildTree links a flat category list into a hierarchy.
//
// Categories whose parent equals parentID (nil for top level) are roots.
// Every other category is appended to its parent when the parent exists,
// is not the category itself and is not one of its descendants; otherwise
// it becomes an additional root. Inputs are copied and never modified.
// An empty input yields an empty, non-nil slice.
func BuildTree(records []Category, parentID *ID) []*Category {
	nodes := make([]*Category, len(records))
	index := make(map[ID]*Category, len(records))
	for i := range records {
		node := records[i]
		node.Subcategories = []*Category{}
		if node.ParentID != nil {
			p := *node.ParentID
			node.ParentID = &p
		}
		nodes[i] = &node
		if node.ID != "" {
			if _, dup := index[node.ID]; !dup {
				index[node.ID] = &node
			}
		}
	}

	roots := make([]*Category, 0)
	var rest []*Category
	for _, node := range nodes {
		if sameParent(node.ParentID, parentID) {
			roots = append(roots, node)
		} else {
			rest = append(rest, node)
		}
	}

	// A node is still the top of its own subtree when its turn comes, so
	// linking it under parent closes a loop exactly when parent's top is
	// the node itself.
	up := make(map[*Category]*Category, len(rest))
	for _, node := range rest {
		parent, ok := index[*nodeParent(node)]
		if !ok || parent == node || parent.ID == node.ID || top(up, parent) == node {
			roots = append(roots, node)
			continue
		}
		parent.Subcategories = append(parent.Subcategories, node)
		up[node] = parent
	}
	return roots
}

func nodeParent(c *Category) *ID {
	if c.ParentID == nil {
		empty := ID("")
		return &empty
	}
	return c.ParentID
}

func sameParent(a, b *ID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// top returns the topmost ancestor of n linked so far, compressing the
// chain it walked.
func top(up map[*Category]*Category, n *Category) *Category {
	root := n
	for up[root] != nil {
		root = up[root]
	}
	for n != root {
		next := up[n]
		up[n] = root
		n = next
	}
	return root
}

// Search returns every category in the forest whose name or description
// contains query, case-insensitively, in depth-first pre-order. An empty
// query matches nothing.
func Search(roots []*Category, query string) []*Category {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []*Category{}
	}
	matches := make([]*Category, 0)
	walk(roots, func(c *Category) bool {
		if strings.Contains(strings.ToLower(c.Name), query) ||
			strings.Contains(strings.ToLower(c.Description), query) {
			matches = append(matches, c)
		}
		return true
	})
	return matches
}

// Flatten lists every category in the forest in depth-first pre-order.
func Flatten(roots []*Category) []*Category {
	out := make([]*Category, 0, len(roots))
	walk(roots, func(c *Category) bool {
		out = append(out, c)
		return true
	})
	return out
}

// Find returns the category with the given id, or nil.
func Find(roots []*Category, id ID) *Category {
	var found *Category
	walk(roots, func(c *Category) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// Depth returns the number of levels in the forest.
func Depth(roots []*Category) int {
	type frame struct {
		node  *Category
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 1})
	}
	max := 0
	seen := make(map[*Category]bool)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil || seen[f.node] {
			continue
		}
		seen[f.node] = true
		if f.depth > max {
			max = f.depth
		}
		for i := len(f.node.Subcategories) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Subcategories[i], f.depth + 1})
		}
	}
	return max
}

// walk visits nodes in pre-order using an explicit stack. Each node is
// visited once even if a hand-built forest shares or loops nodes. Returning
// false from visit stops the walk.
func walk(roots []*Category, visit func(*Category) bool) {
	stack := make([]*Category, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	seen := make(map[*Category]bool)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil || seen[node] {
			continue
		}
		seen[node] = true
		if !visit(node) {
			return
		}
		for i := len(node.Subcategories) - 1; i >= 0; i-- {
			stack = append(stack, node.Subcategories[i])
		}
	}
}
