package chunker

import "strings"

// HeadingEntry is one (level, heading) pair in a heading path.
type HeadingEntry struct {
	Level   int
	Heading string
}

// HeadingPath is the ordered ancestor chain of headings active at a point
// in a document. Levels are strictly increasing from root to leaf; no two
// entries share a level.
type HeadingPath []HeadingEntry

// Push returns the path after a new heading at the given level is seen.
// All entries at the same or a deeper level are removed before the new
// heading is appended, which maintains the strictly-increasing invariant.
func (p HeadingPath) Push(level int, heading string) HeadingPath {
	for len(p) > 0 && p[len(p)-1].Level >= level {
		p = p[:len(p)-1]
	}
	return append(p, HeadingEntry{Level: level, Heading: heading})
}

// Strings returns the heading texts from root to leaf.
func (p HeadingPath) Strings() []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.Heading
	}
	return out
}

// String renders the path as "Chapter 1 > Section 1.1".
func (p HeadingPath) String() string {
	return strings.Join(p.Strings(), " > ")
}

// Clone returns an independent copy of the path. Chunks hold snapshots, so
// later Push calls must not alias their backing array.
func (p HeadingPath) Clone() HeadingPath {
	out := make(HeadingPath, len(p))
	copy(out, p)
	return out
}
