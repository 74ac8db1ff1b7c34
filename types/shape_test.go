package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	t.Parallel()

	s := Shape{Height: 3, Width: 5}
	require.Equal(t, 15, s.Elements())
	require.Equal(t, 17, s.InputLen())
	require.Equal(t, "3x5", s.String())
}

func TestRowBlockEnd(t *testing.T) {
	t.Parallel()

	require.Equal(t, 7, RowBlock{Rank: 1, Count: 3, Offset: 4}.End())
	require.Equal(t, 4, RowBlock{Rank: 2, Count: 0, Offset: 4}.End())
}

func TestHaloPlanRows(t *testing.T) {
	t.Parallel()

	h := HaloPlan{Top: true}
	require.Equal(t, 1, h.TopRows())
	require.Equal(t, 0, h.BottomRows())

	h = HaloPlan{Bottom: true}
	require.Equal(t, 0, h.TopRows())
	require.Equal(t, 1, h.BottomRows())
}

func TestEnvelopeKey(t *testing.T) {
	t.Parallel()

	env := Envelope{From: 2, To: 0, Kind: KindCollective, Tag: 9, Op: "gatherv"}
	require.Equal(t, MessageKey{From: 2, Kind: KindCollective, Tag: 9}, env.Key())
}
