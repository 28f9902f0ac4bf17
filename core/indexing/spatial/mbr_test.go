package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rect(minX, minY, maxX, maxY float64) MBR[float64] {
	return MBR[float64]{Lo: []float64{minX, minY}, Hi: []float64{maxX, maxY}}
}

func TestMBR_Area(t *testing.T) {
	require.Equal(t, 100.0, rect(0, 0, 10, 10).Area())
	require.Equal(t, 0.0, rect(0, 0, 0, 5).Area())
}

func TestMBR_Union(t *testing.T) {
	a := rect(0, 0, 10, 10)
	b := rect(5, 5, 20, 20)
	u := a.Union(b)
	require.Equal(t, rect(0, 0, 20, 20), u)
}

func TestMBR_EnlargementCost(t *testing.T) {
	a := rect(0, 0, 10, 10)
	b := rect(0, 0, 10, 10)
	require.Equal(t, 0.0, a.EnlargementCost(b), "covering an identical rect costs nothing")

	c := rect(10, 10, 20, 20)
	require.Equal(t, a.Union(c).Area()-a.Area(), a.EnlargementCost(c))
}

func TestMBR_Overlap(t *testing.T) {
	a := rect(0, 0, 10, 10)
	require.True(t, a.Overlap(rect(5, 5, 15, 15)))
	require.False(t, a.Overlap(rect(11, 11, 20, 20)))
	require.True(t, a.Overlap(rect(10, 10, 20, 20)), "touching edges count as overlap")
}

func TestMBR_Contains(t *testing.T) {
	outer := rect(0, 0, 10, 10)
	require.True(t, outer.Contains(rect(1, 1, 9, 9)))
	require.True(t, outer.Contains(outer))
	require.False(t, outer.Contains(rect(1, 1, 11, 9)))
}

func TestMBR_Equals(t *testing.T) {
	require.True(t, rect(0, 0, 10, 10).Equals(rect(0, 0, 10, 10)))
	require.False(t, rect(0, 0, 10, 10).Equals(rect(0, 0, 10, 11)))
}

func TestMBR_EncodeDecodeRoundTrip(t *testing.T) {
	m := rect(1.5, -2.25, 10.75, 100)
	buf := make([]byte, 32)
	encodeMBR(buf, m)
	got := decodeMBR[float64](buf, 2)
	require.Equal(t, m, got)
}

func TestMBR_IntegerCoordinateRoundTrip(t *testing.T) {
	m := MBR[int64]{Lo: []int64{-5, 0}, Hi: []int64{5, 10}}
	buf := make([]byte, 32)
	encodeMBR(buf, m)
	got := decodeMBR[int64](buf, 2)
	require.Equal(t, m, got)
}
