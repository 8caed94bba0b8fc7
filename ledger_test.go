package crapstable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBetMaintainsSummary(t *testing.T) {
	l := NewBetLedger()

	require.NoError(t, l.RecordBet("p1", BetType_Pass, 100, 0, 1))
	require.NoError(t, l.RecordBet("p1", BetType_Field, 50, 0, 1))

	summary := l.FindSummary("p1")
	require.NotNil(t, summary)
	assert.Equal(t, int64(150), summary.TotalAtRisk)
	assert.Equal(t, 2, summary.ActiveBetCount)
	assert.True(t, summary.HasBet(BetType_Pass))
	assert.True(t, summary.HasBet(BetType_Field))
	assert.False(t, summary.HasBet(BetType_Come))
	assert.True(t, l.ActiveIndex.Contains("p1"))

	// one active bet per (player, bet type)
	assert.ErrorIs(t, l.RecordBet("p1", BetType_Pass, 100, 0, 1), ErrLedgerDuplicateActiveBet)
}

func TestClearBetRollsSummaryBack(t *testing.T) {
	l := NewBetLedger()
	require.NoError(t, l.RecordBet("p1", BetType_Pass, 100, 0, 1))
	require.NoError(t, l.RecordBet("p1", BetType_Yes6, 60, 0, 1))

	bet, err := l.ClearBet("p1", BetType_Pass)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bet.Amount)
	assert.False(t, bet.IsActive)

	summary := l.FindSummary("p1")
	require.NotNil(t, summary)
	assert.Equal(t, int64(60), summary.TotalAtRisk)
	assert.Equal(t, 1, summary.ActiveBetCount)
	assert.False(t, summary.HasBet(BetType_Pass))

	// clearing the last bet drops the summary and the index entry
	_, err = l.ClearBet("p1", BetType_Yes6)
	require.NoError(t, err)
	assert.Nil(t, l.FindSummary("p1"))
	assert.False(t, l.ActiveIndex.Contains("p1"))

	_, err = l.ClearBet("p1", BetType_Yes6)
	assert.ErrorIs(t, err, ErrLedgerBetNotFound)
}

func TestActiveBetsCatalogOrder(t *testing.T) {
	l := NewBetLedger()
	require.NoError(t, l.RecordBet("p1", BetType_Fire, 10, 0, 1))
	require.NoError(t, l.RecordBet("p1", BetType_Pass, 100, 0, 1))
	require.NoError(t, l.RecordBet("p1", BetType_Field, 50, 0, 1))

	bets := l.ActiveBets("p1")
	require.Len(t, bets, 3)
	assert.Equal(t, BetType_Pass, bets[0].Type)
	assert.Equal(t, BetType_Field, bets[1].Type)
	assert.Equal(t, BetType_Fire, bets[2].Type)

	assert.Empty(t, l.ActiveBets("nobody"))
}

func TestActivePlayerIndexSwapRemove(t *testing.T) {
	idx := NewActivePlayerIndex()
	idx.Add("p1")
	idx.Add("p2")
	idx.Add("p3")
	idx.Add("p2") // idempotent
	assert.Equal(t, 3, idx.Count())

	idx.Remove("p2")
	assert.Equal(t, 2, idx.Count())
	assert.False(t, idx.Contains("p2"))
	assert.True(t, idx.Contains("p1"))
	assert.True(t, idx.Contains("p3"))

	// positions stay consistent after the swap
	for pos, playerID := range idx.PlayerIDs {
		assert.Equal(t, pos, idx.Positions[playerID])
	}

	idx.Remove("nobody")
	assert.Equal(t, 2, idx.Count())
}

func TestActivePlayerIndexPage(t *testing.T) {
	idx := NewActivePlayerIndex()
	for _, playerID := range []string{"a", "b", "c", "d", "e"} {
		idx.Add(playerID)
	}

	assert.Equal(t, []string{"a", "b"}, idx.Page(0, 2))
	assert.Equal(t, []string{"c", "d"}, idx.Page(2, 2))
	assert.Equal(t, []string{"e"}, idx.Page(4, 2))
	assert.Empty(t, idx.Page(5, 2))
	assert.Empty(t, idx.Page(0, 0))
	assert.Empty(t, idx.Page(-1, 2))

	// pages are copies, not views
	page := idx.Page(0, 1)
	page[0] = "mutated"
	assert.Equal(t, "a", idx.PlayerIDs[0])
}

func TestUpdateComePoint(t *testing.T) {
	l := NewBetLedger()
	require.NoError(t, l.RecordBet("p1", BetType_Come, 100, 0, 1))

	require.NoError(t, l.UpdateComePoint("p1", BetType_Come, 6))
	assert.Equal(t, 6, l.FindBet("p1", BetType_Come).Point)

	assert.ErrorIs(t, l.UpdateComePoint("p1", BetType_DontCome, 6), ErrLedgerBetNotFound)
}

func TestPendingClaims(t *testing.T) {
	l := NewBetLedger()

	_, err := l.TakePendingClaim("p1")
	assert.ErrorIs(t, err, ErrLedgerNoPendingClaim)

	l.AddPendingClaim("p1", 200)
	l.AddPendingClaim("p1", 50)
	l.AddPendingClaim("p1", 0) // ignored

	amount, err := l.TakePendingClaim("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(250), amount)

	_, err = l.TakePendingClaim("p1")
	assert.ErrorIs(t, err, ErrLedgerNoPendingClaim)
}
