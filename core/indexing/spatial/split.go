package spatial

import "math"

// rawEntry is the uniform (key, value bytes) shape split operates
// over, so a leaf split (value = payload) and an inner split (value =
// 8-byte child offset) share one code path.
type rawEntry[T Coordinate] struct {
	key   MBR[T]
	value []byte
}

// pickSeeds runs the O(n^2) quadratic seed pick: the pair whose union
// wastes the most area becomes the two group anchors. Ties go to the
// lexicographically lower (i, j), since the scan only overwrites on a
// strict improvement.
func pickSeeds[T Coordinate](entries []rawEntry[T]) (int, int) {
	bestI, bestJ := 0, 1
	bestWaste := math.Inf(-1)
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			waste := entries[i].key.Union(entries[j].key).Area() - entries[i].key.Area() - entries[j].key.Area()
			if waste > bestWaste {
				bestWaste = waste
				bestI, bestJ = i, j
			}
		}
	}
	return bestI, bestJ
}

// splitGroup accumulates members of one post-split side, tracking its
// covering MBR incrementally rather than recomputing it from scratch
// on every distribution step.
type splitGroup[T Coordinate] struct {
	entries []rawEntry[T]
	mbr     MBR[T]
}

func (g *splitGroup[T]) add(e rawEntry[T]) {
	if len(g.entries) == 0 {
		g.mbr = e.key.Clone()
	} else {
		g.mbr = g.mbr.Union(e.key)
	}
	g.entries = append(g.entries, e)
}

// splitEntries implements the full quadratic-split distribution over
// an overflowing node's n+1 items (the node's existing entries plus
// the new one). It returns the two groups; the caller decides which
// becomes "this node, rewritten" and which becomes "new block".
func splitEntries[T Coordinate](entries []rawEntry[T]) (splitGroup[T], splitGroup[T]) {
	seedI, seedJ := pickSeeds(entries)

	var groupA, groupB splitGroup[T]
	groupA.add(entries[seedI])
	groupB.add(entries[seedJ])

	remaining := make([]rawEntry[T], 0, len(entries)-2)
	for k, e := range entries {
		if k == seedI || k == seedJ {
			continue
		}
		remaining = append(remaining, e)
	}

	for len(remaining) > 0 {
		bestIdx := -1
		bestDiff := -1.0
		bestCostA, bestCostB := 0.0, 0.0
		for idx, e := range remaining {
			costA := groupA.mbr.EnlargementCost(e.key)
			costB := groupB.mbr.EnlargementCost(e.key)
			diff := costA - costB
			if diff < 0 {
				diff = -diff
			}
			if diff > bestDiff {
				bestDiff = diff
				bestIdx = idx
				bestCostA, bestCostB = costA, costB
			}
		}

		e := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)

		switch {
		case bestCostA < bestCostB:
			groupA.add(e)
		case bestCostB < bestCostA:
			groupB.add(e)
		case groupA.mbr.Area() < groupB.mbr.Area():
			groupA.add(e)
		case groupB.mbr.Area() < groupA.mbr.Area():
			groupB.add(e)
		default:
			groupA.add(e)
		}
	}

	return groupA, groupB
}
