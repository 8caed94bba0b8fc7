package crapstable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetTypeCatalogFitsBitmap(t *testing.T) {
	assert.LessOrEqual(t, int(BetTypeCount), 64)

	seen := make(map[string]bool)
	for bt := BetType(0); bt < BetTypeCount; bt++ {
		assert.True(t, bt.IsValid(), "bet type %d should be named", int(bt))
		name := bt.String()
		assert.False(t, seen[name], "duplicate bet type name %s", name)
		seen[name] = true
	}

	assert.False(t, BetType(BetTypeCount).IsValid())
	assert.False(t, BetType(-1).IsValid())
}

func TestBetTypeNumberAccessors(t *testing.T) {
	number, ok := BetType_Yes6.YesNumber()
	assert.True(t, ok)
	assert.Equal(t, 6, number)

	number, ok = BetType_No10.NoNumber()
	assert.True(t, ok)
	assert.Equal(t, 10, number)

	number, ok = BetType_Hard8.HardNumber()
	assert.True(t, ok)
	assert.Equal(t, 8, number)

	total, ok := BetType_Next12.NextTotal()
	assert.True(t, ok)
	assert.Equal(t, 12, total)

	total, ok = BetType_Repeater8.RepeaterTotal()
	assert.True(t, ok)
	assert.Equal(t, 8, total)

	_, ok = BetType_Pass.YesNumber()
	assert.False(t, ok)

	for _, total := range []int{2, 3, 4, 5, 6, 8, 9, 10, 11, 12} {
		bt, ok := RepeaterBetTypeByTotal(total)
		require.True(t, ok, "total %d", total)
		back, _ := bt.RepeaterTotal()
		assert.Equal(t, total, back)
	}
	_, ok = RepeaterBetTypeByTotal(7)
	assert.False(t, ok)
}

func TestOddsBetTypeRoundTrip(t *testing.T) {
	for _, base := range []BetType{BetType_Pass, BetType_DontPass, BetType_Come, BetType_DontCome} {
		odds, ok := OddsBetType(base)
		require.True(t, ok)
		assert.True(t, odds.IsOdds())

		back, ok := OddsBaseBetType(odds)
		require.True(t, ok)
		assert.Equal(t, base, back)
	}

	_, ok := OddsBetType(BetType_Field)
	assert.False(t, ok)
}

func TestEligibleInPhase(t *testing.T) {
	// nothing is placeable without an active series
	for bt := BetType(0); bt < BetTypeCount; bt++ {
		assert.False(t, bt.EligibleInPhase(GamePhase_Idle), "%s", bt)
	}

	assert.True(t, BetType_Pass.EligibleInPhase(GamePhase_ComeOut))
	assert.False(t, BetType_Pass.EligibleInPhase(GamePhase_Point))
	assert.True(t, BetType_DontPass.EligibleInPhase(GamePhase_ComeOut))

	assert.False(t, BetType_Come.EligibleInPhase(GamePhase_ComeOut))
	assert.True(t, BetType_Come.EligibleInPhase(GamePhase_Point))
	assert.True(t, BetType_DontCome.EligibleInPhase(GamePhase_Point))

	// odds slots are derived, never placed directly
	assert.False(t, BetType_PassOdds.EligibleInPhase(GamePhase_ComeOut))
	assert.False(t, BetType_PassOdds.EligibleInPhase(GamePhase_Point))

	assert.True(t, BetType_Fire.EligibleInPhase(GamePhase_ComeOut))
	assert.False(t, BetType_Fire.EligibleInPhase(GamePhase_Point))
	assert.True(t, BetType_Repeater6.EligibleInPhase(GamePhase_ComeOut))

	assert.False(t, BetType_Yes6.EligibleInPhase(GamePhase_ComeOut))
	assert.True(t, BetType_Yes6.EligibleInPhase(GamePhase_Point))
	assert.True(t, BetType_No4.EligibleInPhase(GamePhase_Point))

	assert.True(t, BetType_Field.EligibleInPhase(GamePhase_ComeOut))
	assert.True(t, BetType_Field.EligibleInPhase(GamePhase_Point))
	assert.True(t, BetType_Next7.EligibleInPhase(GamePhase_ComeOut))
	assert.True(t, BetType_Hard8.EligibleInPhase(GamePhase_ComeOut))
}

func TestRemovableIn(t *testing.T) {
	assert.True(t, BetType_Pass.RemovableIn(GamePhase_ComeOut, 0, false))
	assert.False(t, BetType_Pass.RemovableIn(GamePhase_Point, 0, false))
	assert.False(t, BetType_PassOdds.RemovableIn(GamePhase_Point, 0, false))

	assert.True(t, BetType_Come.RemovableIn(GamePhase_Point, 0, false))
	assert.False(t, BetType_Come.RemovableIn(GamePhase_Point, 6, false))
	assert.False(t, BetType_ComeOdds.RemovableIn(GamePhase_ComeOut, 8, false))

	assert.True(t, BetType_Fire.RemovableIn(GamePhase_ComeOut, 0, true))
	assert.False(t, BetType_Fire.RemovableIn(GamePhase_ComeOut, 0, false))
	assert.True(t, BetType_Repeater10.RemovableIn(GamePhase_ComeOut, 0, true))
	assert.False(t, BetType_Repeater10.RemovableIn(GamePhase_Point, 0, false))

	assert.True(t, BetType_Yes6.RemovableIn(GamePhase_Point, 0, false))
	assert.True(t, BetType_Field.RemovableIn(GamePhase_ComeOut, 0, false))
}

func TestPayoutOddsProfitTruncates(t *testing.T) {
	assert.Equal(t, int64(100), PayoutOdds{1, 1}.Profit(100))
	assert.Equal(t, int64(116), PayoutOdds{7, 6}.Profit(100))
	assert.Equal(t, int64(45), PayoutOdds{5, 11}.Profit(100))
	assert.Equal(t, int64(0), PayoutOdds{1, 2}.Profit(1))
	assert.Equal(t, int64(2400), PayoutOdds{24, 1}.Profit(100))
}

func TestBestTier(t *testing.T) {
	tiers := NewDefaultPayoutTable().FireTiers

	_, ok := bestTier(tiers, 3)
	assert.False(t, ok)

	odds, ok := bestTier(tiers, 4)
	require.True(t, ok)
	assert.Equal(t, PayoutOdds{24, 1}, odds)

	odds, ok = bestTier(tiers, 6)
	require.True(t, ok)
	assert.Equal(t, PayoutOdds{999, 1}, odds)

	// values past the top tier still collect the top tier
	odds, ok = bestTier(tiers, 9)
	require.True(t, ok)
	assert.Equal(t, PayoutOdds{999, 1}, odds)
}

func TestPayoutTableValidate(t *testing.T) {
	pt := NewDefaultPayoutTable()
	require.NoError(t, pt.Validate())

	bad := NewDefaultPayoutTable()
	bad.Line = PayoutOdds{1, 0}
	assert.ErrorIs(t, bad.Validate(), ErrCatalogInvalidPayoutOdds)

	bad = NewDefaultPayoutTable()
	bad.RepeaterThresholds[2] = 0
	assert.ErrorIs(t, bad.Validate(), ErrCatalogInvalidPayoutOdds)

	bad = NewDefaultPayoutTable()
	delete(bad.RepeaterOdds, 12)
	assert.ErrorIs(t, bad.Validate(), ErrCatalogInvalidPayoutOdds)

	bad = NewDefaultPayoutTable()
	delete(bad.DontPassOdds, 10)
	assert.ErrorIs(t, bad.Validate(), ErrCatalogInvalidPayoutOdds)

	// every map settlement indexes must cover its reachable keys
	bad = NewDefaultPayoutTable()
	delete(bad.PlaceYes, 6)
	assert.ErrorIs(t, bad.Validate(), ErrCatalogInvalidPayoutOdds)

	bad = NewDefaultPayoutTable()
	delete(bad.LayNo, 4)
	assert.ErrorIs(t, bad.Validate(), ErrCatalogInvalidPayoutOdds)

	bad = NewDefaultPayoutTable()
	delete(bad.Hardway, 8)
	assert.ErrorIs(t, bad.Validate(), ErrCatalogInvalidPayoutOdds)

	bad = NewDefaultPayoutTable()
	delete(bad.Next, 7)
	assert.ErrorIs(t, bad.Validate(), ErrCatalogInvalidPayoutOdds)
}
