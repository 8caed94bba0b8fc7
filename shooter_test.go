package crapstable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoll(seriesID string, d1, d2 int) DiceRoll {
	return DiceRoll{
		SeriesID: seriesID,
		Die1:     d1,
		Die2:     d2,
		Total:    d1 + d2,
	}
}

func applyRoll(t *testing.T, s *ShooterState, d1, d2 int) *RollOutcome {
	outcome, err := s.ApplyRoll(newRoll(s.SeriesID, d1, d2))
	require.NoError(t, err)
	return outcome
}

func TestComeOutTransitions(t *testing.T) {
	testCases := []struct {
		name         string
		d1, d2       int
		naturalWin   bool
		comeOutCraps bool
		phaseAfter   GamePhase
		pointAfter   int
	}{
		{"natural_7", 3, 4, true, false, GamePhase_ComeOut, 0},
		{"natural_11", 5, 6, true, false, GamePhase_ComeOut, 0},
		{"craps_2", 1, 1, false, true, GamePhase_ComeOut, 0},
		{"craps_3", 1, 2, false, true, GamePhase_ComeOut, 0},
		{"craps_12", 6, 6, false, true, GamePhase_ComeOut, 0},
		{"point_4", 2, 2, false, false, GamePhase_Point, 4},
		{"point_5", 2, 3, false, false, GamePhase_Point, 5},
		{"point_10", 5, 5, false, false, GamePhase_Point, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewShooterState("shooter")
			outcome := applyRoll(t, s, tc.d1, tc.d2)

			assert.Equal(t, GamePhase_ComeOut, outcome.PhaseBefore)
			assert.Equal(t, tc.naturalWin, outcome.NaturalWin)
			assert.Equal(t, tc.comeOutCraps, outcome.ComeOutCraps)
			assert.Equal(t, tc.phaseAfter, s.Phase)
			assert.Equal(t, tc.pointAfter, s.Point)
			assert.Equal(t, tc.phaseAfter == GamePhase_Point, outcome.PointEstablished)
			assert.False(t, outcome.SeriesEnded)
			if outcome.PointEstablished {
				assert.True(t, isPointNumber(s.Point))
			}
		})
	}
}

func TestPointMadeReturnsToComeOut(t *testing.T) {
	s := NewShooterState("shooter")
	applyRoll(t, s, 2, 4) // point 6

	outcome := applyRoll(t, s, 3, 3)
	assert.True(t, outcome.PointMade)
	assert.Equal(t, GamePhase_ComeOut, s.Phase)
	assert.Equal(t, 0, s.Point)
	assert.Equal(t, 1, s.PointsMadeCount)
	assert.Equal(t, 1, s.FirePointCount())
	assert.NotZero(t, s.FireMask&(1<<6))
	assert.Equal(t, 1, s.ConsecutiveWins)
}

func TestSevenOutEndsSeries(t *testing.T) {
	s := NewShooterState("shooter")
	applyRoll(t, s, 4, 5) // point 9

	outcome := applyRoll(t, s, 3, 4)
	assert.True(t, outcome.SeriesEnded)
	assert.Equal(t, GamePhase_Idle, s.Phase)
	assert.Equal(t, 0, s.Point)

	// no more rolls once the series is over
	_, err := s.ApplyRoll(newRoll(s.SeriesID, 2, 2))
	assert.ErrorIs(t, err, ErrShooterNoActiveSeries)
}

func TestSevenOutSnapshotsConsecutiveWinsBeforeReset(t *testing.T) {
	s := NewShooterState("shooter")
	applyRoll(t, s, 3, 4) // natural
	applyRoll(t, s, 5, 6) // natural
	applyRoll(t, s, 2, 3) // point 5
	applyRoll(t, s, 2, 3) // made, 3 straight wins
	applyRoll(t, s, 4, 4) // point 8

	outcome := applyRoll(t, s, 3, 4) // seven-out
	assert.True(t, outcome.SeriesEnded)
	assert.Equal(t, 3, outcome.ConsecutiveWins)
	assert.Equal(t, 0, s.ConsecutiveWins)
}

func TestPointPhaseIgnoresOtherTotals(t *testing.T) {
	s := NewShooterState("shooter")
	applyRoll(t, s, 2, 2) // point 4

	outcome := applyRoll(t, s, 5, 6) // 11 is nothing during point
	assert.False(t, outcome.NaturalWin)
	assert.False(t, outcome.PointMade)
	assert.False(t, outcome.SeriesEnded)
	assert.Equal(t, GamePhase_Point, s.Phase)
	assert.Equal(t, 4, s.Point)
}

func TestDoublesAndSmallTallMasks(t *testing.T) {
	s := NewShooterState("shooter")
	applyRoll(t, s, 1, 1) // craps, double 1, total 2
	applyRoll(t, s, 1, 2) // craps, total 3
	applyRoll(t, s, 3, 3) // point 6, double 3
	applyRoll(t, s, 1, 1) // total 2 again, same double

	assert.Equal(t, 2, s.DoublesCount())
	assert.Equal(t, 2, s.RollCountByTotal[2])
	assert.False(t, s.IsSmallComplete())

	applyRoll(t, s, 2, 2) // total 4
	applyRoll(t, s, 2, 3) // total 5
	applyRoll(t, s, 2, 4) // total 6, point made
	assert.True(t, s.IsSmallComplete())
	assert.False(t, s.IsTallComplete())
	assert.False(t, s.IsAllComplete())
}

func TestSevenDoesNotCountTowardSmallTall(t *testing.T) {
	s := NewShooterState("shooter")
	applyRoll(t, s, 3, 4)
	assert.Zero(t, s.SmallTallMask)
}

func TestInvalidDieRejected(t *testing.T) {
	s := NewShooterState("shooter")
	_, err := s.ApplyRoll(newRoll(s.SeriesID, 0, 4))
	assert.ErrorIs(t, err, ErrShooterInvalidDie)
	_, err = s.ApplyRoll(newRoll(s.SeriesID, 3, 7))
	assert.ErrorIs(t, err, ErrShooterInvalidDie)
	assert.Equal(t, 0, s.RollCount)
}

func TestArchive(t *testing.T) {
	s := NewShooterState("shooter")
	assert.True(t, s.IsFresh())
	applyRoll(t, s, 2, 2)
	assert.False(t, s.IsFresh())
	applyRoll(t, s, 2, 2)
	applyRoll(t, s, 3, 4)

	result := s.Archive(true)
	assert.Equal(t, s.SeriesID, result.SeriesID)
	assert.Equal(t, "shooter", result.ShooterID)
	assert.Equal(t, 3, result.RollCount)
	assert.Equal(t, 1, result.PointsMadeCount)
	assert.True(t, result.SevenOut)
}
