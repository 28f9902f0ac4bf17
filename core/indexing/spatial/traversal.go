package spatial

import (
	"fmt"
	"strings"

	pagemanager "github.com/gojodb/spatialidx/core/write_engine/page_manager"
)

// PrintTree renders a level-indented dump of the tree: for every node,
// its offset, type, entry count over capacity, and covering MBR. It
// is the formatted counterpart to GetAllEntries — returned rather
// than logged, so tests can assert on it directly.
func (e *engine[T]) PrintTree() string {
	var sb strings.Builder
	root := e.rootOffset()
	if root == uint64(pagemanager.InvalidPageID) {
		sb.WriteString("(empty tree)\n")
		return sb.String()
	}
	e.printNode(&sb, root, 0)
	return sb.String()
}

func (e *engine[T]) printNode(sb *strings.Builder, offset uint64, depth int) {
	view := e.loadView(offset)
	indent := strings.Repeat("  ", depth)
	kind := "leaf"
	if !view.isLeaf() {
		kind = "inner"
	}

	var mbrDesc string
	if view.count() > 0 {
		mbrDesc = describeMBR(view.coveringMBR())
	} else {
		mbrDesc = "<empty>"
	}

	fmt.Fprintf(sb, "%soffset=%d %s count=%d/%d mbr=%s\n", indent, offset, kind, view.count(), view.capacity(), mbrDesc)

	if view.isLeaf() {
		return
	}
	for i := 0; i < view.count(); i++ {
		e.printNode(sb, uint64(view.childOffsetAt(i)), depth+1)
	}
}

func describeMBR[T Coordinate](m MBR[T]) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range m.Lo {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "%v", v)
	}
	sb.WriteString(" .. ")
	for i, v := range m.Hi {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "%v", v)
	}
	sb.WriteString("]")
	return sb.String()
}
