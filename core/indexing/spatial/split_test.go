package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func entry(minX, minY, maxX, maxY float64, v byte) rawEntry[float64] {
	return rawEntry[float64]{key: rect(minX, minY, maxX, maxY), value: []byte{v}}
}

func TestPickSeeds_MaximisesWaste(t *testing.T) {
	// Two tight clusters far apart; the far-apart pair wastes the most
	// area if forced into one group, so the seed pick must choose one
	// member from each cluster, not two close neighbours.
	entries := []rawEntry[float64]{
		entry(0, 0, 1, 1, 0),
		entry(0, 0, 1, 1, 1),
		entry(100, 100, 101, 101, 2),
		entry(100, 100, 101, 101, 3),
	}
	i, j := pickSeeds(entries)
	require.NotEqual(t, i, j)
	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	require.True(t, lo < 2 && hi >= 2, "seeds must straddle the two clusters")
}

func TestSplitEntries_PartitionsAllItems(t *testing.T) {
	entries := []rawEntry[float64]{
		entry(0, 0, 1, 1, 0),
		entry(2, 2, 3, 3, 1),
		entry(50, 50, 51, 51, 2),
		entry(52, 52, 53, 53, 3),
		entry(100, 0, 101, 1, 4),
	}
	groupA, groupB := splitEntries(entries)
	require.Equal(t, len(entries), len(groupA.entries)+len(groupB.entries))

	seen := make(map[byte]bool)
	for _, e := range append(groupA.entries, groupB.entries...) {
		seen[e.value[0]] = true
	}
	require.Len(t, seen, len(entries), "every original item must land in exactly one group")
}

func TestSplitEntries_GroupMBRsCoverTheirMembers(t *testing.T) {
	entries := []rawEntry[float64]{
		entry(0, 0, 1, 1, 0),
		entry(5, 5, 6, 6, 1),
		entry(50, 50, 51, 51, 2),
		entry(55, 55, 56, 56, 3),
	}
	groupA, groupB := splitEntries(entries)
	for _, e := range groupA.entries {
		require.True(t, groupA.mbr.Contains(e.key))
	}
	for _, e := range groupB.entries {
		require.True(t, groupB.mbr.Contains(e.key))
	}
}
