package archivedag

import (
	"testing"

	"github.com/Wind-River/fvc-go/internal/digest"
)

func d(b byte) digest.Digest {
	var out digest.Digest
	out[0] = b
	return out
}

func TestInsertContains(t *testing.T) {
	g := New()
	a := d(1)
	if g.Contains(a) {
		t.Fatal("fresh graph should not contain anything")
	}
	g.Insert(a)
	if !g.Contains(a) {
		t.Fatal("expected graph to contain inserted digest")
	}
}

func TestInsertIdempotent(t *testing.T) {
	g := New()
	a := d(1)
	g.Insert(a)
	g.Insert(a)
	if res := g.AddEdge(a, d(2)); res != EdgeOk {
		t.Fatalf("AddEdge after double insert: got %v, want EdgeOk", res)
	}
}

func TestAddEdgeOk(t *testing.T) {
	g := New()
	a, b := d(1), d(2)
	g.Insert(a)
	g.Insert(b)
	if res := g.AddEdge(a, b); res != EdgeOk {
		t.Fatalf("got %v, want EdgeOk", res)
	}
}

func TestAddEdgeMissingSource(t *testing.T) {
	g := New()
	a, b := d(1), d(2)
	g.Insert(b)
	if res := g.AddEdge(a, b); res != EdgeMissingSource {
		t.Fatalf("got %v, want EdgeMissingSource", res)
	}
}

func TestAddEdgeSelfCycle(t *testing.T) {
	g := New()
	a := d(1)
	g.Insert(a)
	if res := g.AddEdge(a, a); res != EdgeCycle {
		t.Fatalf("self edge: got %v, want EdgeCycle", res)
	}
}

func TestAddEdgeTransitiveCycle(t *testing.T) {
	g := New()
	a, b, c := d(1), d(2), d(3)
	g.Insert(a)
	g.Insert(b)
	g.Insert(c)

	if res := g.AddEdge(a, b); res != EdgeOk {
		t.Fatalf("a->b: got %v, want EdgeOk", res)
	}
	if res := g.AddEdge(b, c); res != EdgeOk {
		t.Fatalf("b->c: got %v, want EdgeOk", res)
	}
	// c -> a would close the cycle a -> b -> c -> a
	if res := g.AddEdge(c, a); res != EdgeCycle {
		t.Fatalf("c->a: got %v, want EdgeCycle", res)
	}
	// the rejected edge must not have been recorded
	if g.canReach(c, a) {
		t.Fatal("rejected cycle edge should not be reflected in the graph")
	}
}

func TestQuineTerminates(t *testing.T) {
	// q.zip extracted yields a byte-identical copy of q.zip: the
	// second encounter of the same digest must be rejected as a
	// self-cycle, proving termination rather than infinite descent.
	g := New()
	q := d(7)
	g.Insert(q)
	if res := g.AddEdge(q, q); res != EdgeCycle {
		t.Fatalf("quine self-reference: got %v, want EdgeCycle", res)
	}
}
