package sim

import (
	"container/heap"
	"math"
)

// NoPartner marks an agent with no pending event.
const NoPartner = -1

// Agent is the scheduling record of one particle: the absolute time of its
// earliest pending event, the partner, and the governing potential. A
// boundary event names the owner as its own partner. An agent naming its
// owner with neither potential set is an image refresh: a periodic image of
// one of the owner's pairs may come into range, so the owner is rescanned.
type Agent struct {
	EventTime float64
	Partner   int
	Pair      PairPotential
	Boundary  BoundaryPotential
}

func idleAgent() Agent {
	return Agent{EventTime: math.Inf(1), Partner: NoPartner}
}

// CollisionTime returns the time remaining until the event at clock now.
func (a Agent) CollisionTime(now float64) float64 {
	return a.EventTime - now
}

// Potential returns the potential governing the pending event, or nil.
func (a Agent) Potential() Potential {
	switch {
	case a.Pair != nil:
		return a.Pair
	case a.Boundary != nil:
		return a.Boundary
	}
	return nil
}

// agentQueue is an indexed min-heap of particle indices keyed by agent event
// time. Ordering: event time → particle index, so the head matches a linear
// scan in index order.
type agentQueue struct {
	agents []Agent
	order  []int // heap of particle indices
	slot   []int // slot[i] = position of particle i in order
}

func newAgentQueue(agents []Agent) *agentQueue {
	q := &agentQueue{
		agents: agents,
		order:  make([]int, len(agents)),
		slot:   make([]int, len(agents)),
	}
	for i := range agents {
		q.order[i] = i
		q.slot[i] = i
	}
	heap.Init(q)
	return q
}

// Len implements heap.Interface
func (q *agentQueue) Len() int {
	return len(q.order)
}

// Less implements heap.Interface
func (q *agentQueue) Less(x, y int) bool {
	i, j := q.order[x], q.order[y]
	ti, tj := q.agents[i].EventTime, q.agents[j].EventTime
	if ti != tj {
		return ti < tj
	}
	return i < j
}

// Swap implements heap.Interface
func (q *agentQueue) Swap(x, y int) {
	q.order[x], q.order[y] = q.order[y], q.order[x]
	q.slot[q.order[x]] = x
	q.slot[q.order[y]] = y
}

// Push implements heap.Interface
func (q *agentQueue) Push(x interface{}) {
	i := x.(int)
	q.slot[i] = len(q.order)
	q.order = append(q.order, i)
}

// Pop implements heap.Interface
func (q *agentQueue) Pop() interface{} {
	n := len(q.order)
	i := q.order[n-1]
	q.order = q.order[:n-1]
	return i
}

// update restores heap order after agent i changed.
func (q *agentQueue) update(i int) {
	heap.Fix(q, q.slot[i])
}

// next returns the particle whose agent holds the earliest event.
func (q *agentQueue) next() int {
	if len(q.order) == 0 {
		return NoPartner
	}
	return q.order[0]
}
