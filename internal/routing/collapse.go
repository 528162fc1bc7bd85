package routing

import (
	"math/big"
	"sort"

	"github.com/antigravity/mtr-router/internal/models"
)

// collapsePair turns every candidate proposed for a single (u, v) pair
// into the edge set that actually enters the graph (§4.5.6-§4.5.7).
func collapsePair(routeType models.RouteType, cs []candidate) []Edge {
	if len(cs) == 0 {
		return nil
	}
	var edges []Edge
	if routeType == models.RouteTypeTheory {
		for _, c := range cs {
			edges = append(edges, Edge{
				To:        c.to,
				Mode:      c.mode,
				Colour:    c.colour,
				Labels:    []string{c.label},
				Terminus:  c.terminus,
				IsWalk:    c.isWalk(),
				DurationS: c.durationS,
			})
		}
	} else {
		edges = clusterAndMerge(cs)
	}
	return filterNearMinWeight(edges)
}

// clusterAndMerge repeatedly pulls the fastest remaining candidate and
// merges it with every other remaining candidate within
// CollapseWindowSeconds of it, per §4.5.6 steps 1-5.
func clusterAndMerge(cs []candidate) []Edge {
	remaining := append([]candidate(nil), cs...)
	sort.Slice(remaining, func(i, j int) bool {
		if remaining[i].durationS != remaining[j].durationS {
			return remaining[i].durationS < remaining[j].durationS
		}
		return remaining[i].label < remaining[j].label
	})

	var merged []Edge
	for len(remaining) > 0 {
		durMin := remaining[0].durationS
		var group, rest []candidate
		for _, c := range remaining {
			if c.durationS-durMin <= CollapseWindowSeconds {
				group = append(group, c)
			} else {
				rest = append(rest, c)
			}
		}
		merged = append(merged, mergeGroup(group, durMin))
		remaining = rest
	}
	return merged
}

func mergeGroup(group []candidate, durMin float64) Edge {
	var labels []string
	seen := map[string]bool{}
	var mode models.Mode
	var colour uint32
	var terminus string
	isWalk := true
	var headways []int64

	for _, c := range group {
		if !seen[c.label] {
			labels = append(labels, c.label)
			seen[c.label] = true
		}
		if c.kind == kindRail {
			isWalk = false
			if mode == "" {
				mode, colour, terminus = c.mode, c.colour, c.terminus
			}
			headways = append(headways, int64(c.headwayS+0.5))
		} else if mode == "" {
			mode = c.mode
		}
	}
	sort.Strings(labels)

	return Edge{
		Labels:    labels,
		Mode:      mode,
		Colour:    colour,
		Terminus:  terminus,
		IsWalk:    isWalk,
		DurationS: durMin,
		WaitingS:  combinedWaiting(headways),
		HeadwayS:  combinedHeadway(headways),
	}
}

// combinedWaiting implements the headway rule of §4.5.6 step 3: half of
// the group's combined headway 1/Σ(1/h_k) (the harmonic mean of the
// headways divided by their count), computed exactly via an integer
// lcm/sum-of-rates so floating error cannot shift the result off the
// worked examples in §8.
func combinedWaiting(headwaysSeconds []int64) float64 {
	l, sumRate := lcmAndRateSum(headwaysSeconds)
	if sumRate == 0 {
		return 0
	}
	return float64(l) / float64(sumRate) / 2
}

// combinedHeadway is the combined headway 1/Σ(1/h_k) itself (twice
// combinedWaiting), exposed on the merged edge for display purposes.
func combinedHeadway(headwaysSeconds []int64) float64 {
	l, sumRate := lcmAndRateSum(headwaysSeconds)
	if sumRate == 0 {
		return 0
	}
	return float64(l) / float64(sumRate)
}

func lcmAndRateSum(headwaysSeconds []int64) (int64, int64) {
	var l int64
	for _, h := range headwaysSeconds {
		if h <= 0 {
			continue
		}
		if l == 0 {
			l = h
			continue
		}
		l = lcmInt64(l, h)
	}
	if l == 0 {
		return 0, 0
	}
	var sumRate int64
	for _, h := range headwaysSeconds {
		if h <= 0 {
			continue
		}
		sumRate += l / h
	}
	return l, sumRate
}

// lcmInt64 uses math/big's GCD; no fixed-width overflow-safe lcm exists
// in the standard library, and none of the retrieved examples import a
// number-theory package, so this is the narrowest possible stdlib use.
func lcmInt64(a, b int64) int64 {
	g := new(big.Int).GCD(nil, nil, big.NewInt(a), big.NewInt(b))
	if g.Sign() == 0 {
		return 0
	}
	return a / g.Int64() * b
}

// filterNearMinWeight applies §4.5.7's final retention rule: drop
// non-positive weights, then keep only edges within CollapseWindowSeconds
// of the cheapest surviving weight for this (u, v) pair.
func filterNearMinWeight(edges []Edge) []Edge {
	var positive []Edge
	for _, e := range edges {
		if e.Weight() > 0 {
			positive = append(positive, e)
		}
	}
	if len(positive) == 0 {
		return nil
	}
	minW := positive[0].Weight()
	for _, e := range positive[1:] {
		if e.Weight() < minW {
			minW = e.Weight()
		}
	}
	var out []Edge
	for _, e := range positive {
		if e.Weight()-minW <= CollapseWindowSeconds {
			out = append(out, e)
		}
	}
	return out
}
