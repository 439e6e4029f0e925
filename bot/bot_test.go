package bot

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badam/room"
)

func snapshotWith(table room.Table, hand ...string) room.Snapshot {
	return room.Snapshot{
		MyTurn:  true,
		Table:   table,
		MyCards: hand,
	}
}

func TestChooseOpening(t *testing.T) {
	b := New("opener", 0, rand.New(rand.NewSource(1)))

	// Only the seven of hearts opens a game
	move, err := b.Choose(snapshotWith(room.NewTable(), "7H", "7D", "2C"))
	require.NoError(t, err)
	assert.Equal(t, "7H", move)
}

func TestChoosePassesWithoutMoves(t *testing.T) {
	b := New("stuck", 0, rand.New(rand.NewSource(1)))

	move, err := b.Choose(snapshotWith(room.NewTable(), "2C", "KD"))
	require.NoError(t, err)
	assert.Equal(t, room.Pass, move)
}

func TestChoosePicksCandidate(t *testing.T) {
	table := room.NewTable()
	table[0] = room.Run{Lo: 5, Hi: 8} // 6H through 9H on the table

	b := New("picker", 0, rand.New(rand.NewSource(42)))
	snap := snapshotWith(table, "5H", "10H", "7D", "3C")

	for i := 0; i < 20; i++ {
		move, err := b.Choose(snap)
		require.NoError(t, err)
		assert.Contains(t, []string{"5H", "10H", "7D"}, move)
	}
}

func TestChooseRejectsMalformedSnapshot(t *testing.T) {
	b := New("confused", 0, rand.New(rand.NewSource(1)))

	_, err := b.Choose(snapshotWith(room.NewTable(), "not-a-card"))
	assert.Error(t, err)
}

func TestNewDefaultsRandSource(t *testing.T) {
	b := New("seedless", time.Millisecond, nil)
	require.NotNil(t, b.rng)
	assert.Equal(t, time.Millisecond, b.Delay)
}
