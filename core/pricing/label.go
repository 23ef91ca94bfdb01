package pricing

import "github.com/kilianp07/flightrecovery/core/model"

// label is a partial route ending at leg. Labels live in the arena of one
// search and refer to their predecessor by arena index.
type label struct {
	leg   int
	pred  int
	delay int
	rc    float64
	dead  bool
}

// dominates reports whether a makes b unnecessary. Extending a label costs
// more when it carries more delay, so a label that is cheaper and less
// delayed at the same leg yields cheaper extensions. This holds because the
// leg graph is acyclic.
func (a *label) dominates(b *label) bool {
	if a.leg != b.leg {
		return false
	}
	if a.rc > b.rc+model.EPS || a.delay > b.delay {
		return false
	}
	return a.rc <= b.rc-model.EPS || a.delay < b.delay
}

type queueItem struct {
	rc  float64
	idx int
}

// labelQueue is a min-heap on reduced cost.
type labelQueue []queueItem

func (q labelQueue) Len() int           { return len(q) }
func (q labelQueue) Less(i, j int) bool { return q[i].rc < q[j].rc }
func (q labelQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *labelQueue) Push(x any)        { *q = append(*q, x.(queueItem)) }
func (q *labelQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
