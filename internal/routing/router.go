package routing

import (
	"container/heap"
	"context"

	"github.com/antigravity/mtr-router/internal/routingerr"
)

// Router finds the minimum-weight path between two resolved stations on
// a built Graph, tie-breaking on hop count (§4.6).
type Router struct{}

// NewRouter returns a stateless Router. Router holds no graph: callers
// pass the Graph to search per call, since a single Builder output may
// serve many requests (e.g. from GraphCache).
func NewRouter() *Router {
	return &Router{}
}

type searchState struct {
	cost float64
	hops int
}

func (a searchState) less(b searchState) bool {
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	return a.hops < b.hops
}

type heapItem struct {
	station string
	state   searchState
	index   int
}

type stateHeap []*heapItem

func (h stateHeap) Len() int            { return len(h) }
func (h stateHeap) Less(i, j int) bool  { return h[i].state.less(h[j].state) }
func (h stateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *stateHeap) Push(x interface{}) {
	item := x.(*heapItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *stateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// ShortestPath runs Dijkstra's algorithm from origin to destination over
// g, returning the winning vertex sequence. Errors are the typed kinds
// of §4.6/§7.
func (r *Router) ShortestPath(ctx context.Context, g *Graph, origin, destination string) ([]string, float64, error) {
	if !g.HasVertex(origin) || !g.HasVertex(destination) {
		return nil, 0, routingerr.New(routingerr.KindUnknownStation, "origin or destination is not a routable station")
	}
	if origin == destination {
		return nil, 0, routingerr.New(routingerr.KindSameStation, "origin and destination resolve to the same station")
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, routingerr.Wrap(routingerr.KindCancelled, err, "shortest-path search")
	}

	best := map[string]searchState{origin: {cost: 0, hops: 0}}
	prev := map[string]string{}

	pq := &stateHeap{{station: origin, state: searchState{0, 0}}}
	heap.Init(pq)

	visited := map[string]bool{}

	for pq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, 0, routingerr.Wrap(routingerr.KindCancelled, err, "shortest-path search")
		}
		cur := heap.Pop(pq).(*heapItem)
		if visited[cur.station] {
			continue
		}
		visited[cur.station] = true
		if cur.station == destination {
			break
		}

		for _, e := range g.Edges(cur.station) {
			if visited[e.To] {
				continue
			}
			candidateState := searchState{cost: cur.state.cost + e.Weight(), hops: cur.state.hops + 1}
			existing, seen := best[e.To]
			if !seen || candidateState.less(existing) {
				best[e.To] = candidateState
				prev[e.To] = cur.station
				heap.Push(pq, &heapItem{station: e.To, state: candidateState})
			}
		}
	}

	finalState, ok := best[destination]
	if !ok {
		return nil, 0, routingerr.New(routingerr.KindNoPath, "no path between origin and destination under the active filter set")
	}

	path := []string{destination}
	for cur := destination; cur != origin; {
		p, ok := prev[cur]
		if !ok {
			return nil, 0, routingerr.New(routingerr.KindInternalInvariant, "path reconstruction broke before reaching origin")
		}
		path = append(path, p)
		cur = p
	}
	reverse(path)
	return path, finalState.cost, nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
