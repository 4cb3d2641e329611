package filter

import "github.com/gtidcore/gtidcore/gtid"

// Intersection excludes an event unless every child includes it, used to
// combine e.g. a time-bounded Window with a server whitelist.
type Intersection struct {
	children []Node
}

// Intersect builds an Intersection over two or more nodes.
func Intersect(nodes ...Node) *Intersection {
	return &Intersection{children: nodes}
}

func (i *Intersection) Exclude(g gtid.ID) bool {
	excluded := false
	for _, child := range i.children {
		if child.Exclude(g) {
			excluded = true
		}
	}
	return excluded
}

// HasFinished is true once every child has finished.
func (i *Intersection) HasFinished() bool {
	for _, child := range i.children {
		if !child.HasFinished() {
			return false
		}
	}
	return true
}

func (i *Intersection) WriteWarnings(sink WarningSink) {
	for _, child := range i.children {
		child.WriteWarnings(sink)
	}
}
