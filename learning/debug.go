package learning

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Tree renders the table (stored entries and missing default keys) as a printable tree.
func (s *Storage[K]) Tree() treeprint.Tree {
	t := treeprint.NewWithRoot(fmt.Sprintf("storage (%d dimensions, %d entries)", s.dimensions, s.entries.Len()))
	s.addBranches(t)
	return t
}

func (s *Storage[K]) addBranches(t treeprint.Tree) {
	for p := s.entries.Oldest(); p != nil; p = p.Next() {
		if p.Value.IsNode() {
			p.Value.Node.addBranches(t.AddBranch(fmt.Sprint(p.Key)))
			continue
		}
		t.AddNode(fmt.Sprintf("%v: %g", p.Key, p.Value.Value))
	}
	for p := s.missing.Oldest(); p != nil; p = p.Next() {
		t.AddNode(fmt.Sprintf("%v: (default)", p.Key))
	}
}

func (s *Storage[K]) String() string {
	return s.Tree().String()
}
