package parser

// ForEachChild calls visit for each direct child of n in source order and
// stops early when visit returns false. It reports whether all children were
// visited.
func ForEachChild(n *Node, visit func(*Node) bool) bool {
	if n == nil {
		return true
	}
	for _, child := range n.Children {
		if !visit(child) {
			return false
		}
	}
	return true
}

// Walk visits n and its descendants depth-first in source order. Returning
// false from visit skips the node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, visit)
	}
}

// Leaves returns the token leaves under n in source order, including missing
// ones.
func Leaves(n *Node) []*Node {
	var leaves []*Node
	Walk(n, func(c *Node) bool {
		if c.Token != nil {
			leaves = append(leaves, c)
			return false
		}
		return true
	})
	return leaves
}

// NodeAtOffset returns the innermost node whose span [Start, End) contains
// offset. Missing nodes are never returned.
func NodeAtOffset(root *Node, offset int) *Node {
	if root == nil || offset < root.Start || offset > root.End {
		return nil
	}
	found := root
	for {
		var next *Node
		ForEachChild(found, func(child *Node) bool {
			if child.IsMissing() || child.Start == child.End {
				return true
			}
			if offset >= child.Start && offset < child.End {
				next = child
				return false
			}
			return child.Start <= offset
		})
		if next == nil {
			return found
		}
		found = next
	}
}
