// Package archivedag tracks archive identities seen along the current
// recursion path and rejects edges that would close a cycle, so that
// a quine archive (one that contains itself, directly or through a
// chain of extractions) does not recurse forever.
package archivedag

import "github.com/Wind-River/fvc-go/internal/digest"

// EdgeResult is the outcome of AddEdge.
type EdgeResult int

const (
	// EdgeOk means the edge was inserted.
	EdgeOk EdgeResult = iota
	// EdgeCycle means the edge would have closed a cycle; the graph
	// is unchanged.
	EdgeCycle
	// EdgeMissingSource means the "from" node was never registered
	// via Insert; a programmer error upstream.
	EdgeMissingSource
)

type node struct {
	digest      digest.Digest
	subArchives []digest.Digest
}

// Graph is a mapping from archive content digest to the set of
// archives directly extracted from it. The relation is acyclic at
// all times: AddEdge refuses any edge whose destination can already
// reach its source.
type Graph struct {
	archives map[digest.Digest]*node
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{archives: make(map[digest.Digest]*node)}
}

// Insert registers an archive node with an empty out-edge set.
// Idempotent: inserting an already-registered digest is a no-op.
func (g *Graph) Insert(d digest.Digest) {
	if _, ok := g.archives[d]; ok {
		return
	}
	g.archives[d] = &node{digest: d}
}

// Contains reports whether d has been registered.
func (g *Graph) Contains(d digest.Digest) bool {
	_, ok := g.archives[d]
	return ok
}

// AddEdge registers that an archive identified by "to" was extracted
// from the archive identified by "from". It first checks whether "to"
// can already reach "from" (the identity case to == from counts as a
// cycle); if so, the graph is left unchanged and EdgeCycle is
// returned. If "from" was never registered, EdgeMissingSource is
// returned. Otherwise "to" is appended to "from"'s out-edges.
func (g *Graph) AddEdge(from, to digest.Digest) EdgeResult {
	if g.canReach(to, from) {
		return EdgeCycle
	}

	n, ok := g.archives[from]
	if !ok {
		return EdgeMissingSource
	}
	n.subArchives = append(n.subArchives, to)
	return EdgeOk
}

// canReach reports whether a path exists from start to destination
// over the current edge set, via depth-first search. Because the
// graph never contains a cycle (the invariant AddEdge maintains),
// this always terminates.
func (g *Graph) canReach(start, destination digest.Digest) bool {
	if start == destination {
		return true
	}

	n, ok := g.archives[start]
	if !ok {
		return false
	}

	for _, next := range n.subArchives {
		if g.canReach(next, destination) {
			return true
		}
	}
	return false
}
