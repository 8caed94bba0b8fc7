package crapstable

import (
	"errors"
	"math/bits"
	"time"

	"github.com/google/uuid"
)

var (
	ErrShooterSeriesAlreadyActive = errors.New("shooter: a series is already active")
	ErrShooterNoActiveSeries      = errors.New("shooter: no active series")
	ErrShooterInvalidDie          = errors.New("shooter: die value out of range")
)

type GamePhase string

const (
	GamePhase_Idle    GamePhase = "idle"
	GamePhase_ComeOut GamePhase = "come_out"
	GamePhase_Point   GamePhase = "point"
)

// pointNumbers are the totals that can become the point.
var pointNumbers = []int{4, 5, 6, 8, 9, 10}

const (
	// smallTallMask bit layout: bit i is set when total i has rolled.
	smallMaskFull uint16 = 0x7C   // totals 2..6
	tallMaskFull  uint16 = 0x1F00 // totals 8..12
)

func setBit16(mask uint16, idx int) uint16 {
	return mask | 1<<uint(idx)
}

func setBit8(mask uint8, idx int) uint8 {
	return mask | 1<<uint(idx)
}

func popcount16(mask uint16) int {
	return bits.OnesCount16(mask)
}

func popcount8(mask uint8) int {
	return bits.OnesCount8(mask)
}

func isPointNumber(total int) bool {
	switch total {
	case 4, 5, 6, 8, 9, 10:
		return true
	}
	return false
}

/*
DiceRoll is the immutable record of one fulfilled roll. Sequence is the
table-wide roll counter; SeriesRoll counts rolls within the series that
produced it.
*/
type DiceRoll struct {
	RequestID  string `json:"request_id"`
	SeriesID   string `json:"series_id"`
	Die1       int    `json:"die_1"`
	Die2       int    `json:"die_2"`
	Total      int    `json:"total"`
	Sequence   int    `json:"sequence"`
	SeriesRoll int    `json:"series_roll"`
	RolledAt   int64  `json:"rolled_at"`
}

func (r DiceRoll) IsDouble() bool {
	return r.Die1 == r.Die2
}

/*
ShooterState tracks one shooter's series: the phase/point pair plus the compact
bitmask counters that drive the bonus bets. The masks grow monotonically during
a series and are only read out at seven-out.

Invariants: Phase == idle ⇔ Point == 0 ⇔ the series has ended;
Point != 0 ⇒ Phase == point.
*/
type ShooterState struct {
	SeriesID         string      `json:"series_id"`
	ShooterID        string      `json:"shooter_id"`
	Phase            GamePhase   `json:"phase"`
	Point            int         `json:"point"`
	PointsMadeCount  int         `json:"points_made_count"`
	ConsecutiveWins  int         `json:"consecutive_wins"`
	FireMask         uint16      `json:"fire_mask"`          // bits 4,5,6,8,9,10
	DoublesMask      uint8       `json:"doubles_mask"`       // bits 1..6
	SmallTallMask    uint16      `json:"small_tall_mask"`    // bits 2..6 and 8..12
	RollCountByTotal map[int]int `json:"roll_count_by_total"`
	RollCount        int         `json:"roll_count"`
	StartedAt        int64       `json:"started_at"`
}

func NewShooterState(shooterID string) *ShooterState {
	return &ShooterState{
		SeriesID:         uuid.New().String(),
		ShooterID:        shooterID,
		Phase:            GamePhase_ComeOut,
		Point:            0,
		RollCountByTotal: make(map[int]int),
		StartedAt:        time.Now().Unix(),
	}
}

// IsFresh reports whether no roll has happened yet in this series.
func (s *ShooterState) IsFresh() bool {
	return s.RollCount == 0
}

func (s *ShooterState) FirePointCount() int {
	return popcount16(s.FireMask)
}

func (s *ShooterState) DoublesCount() int {
	return popcount8(s.DoublesMask)
}

func (s *ShooterState) IsSmallComplete() bool {
	return s.SmallTallMask&smallMaskFull == smallMaskFull
}

func (s *ShooterState) IsTallComplete() bool {
	return s.SmallTallMask&tallMaskFull == tallMaskFull
}

func (s *ShooterState) IsAllComplete() bool {
	return s.IsSmallComplete() && s.IsTallComplete()
}

/*
RollOutcome captures what a single roll did to the state machine. The
settlement engine works entirely off this snapshot so that batched settlement
never has to re-read (or re-derive) shooter state that later rolls would have
mutated.
*/
type RollOutcome struct {
	Roll             DiceRoll  `json:"roll"`
	PhaseBefore      GamePhase `json:"phase_before"`
	PointBefore      int       `json:"point_before"`
	PhaseAfter       GamePhase `json:"phase_after"`
	PointAfter       int       `json:"point_after"`
	NaturalWin       bool      `json:"natural_win"`
	ComeOutCraps     bool      `json:"come_out_craps"`
	PointEstablished bool      `json:"point_established"`
	PointMade        bool      `json:"point_made"`
	SeriesEnded      bool      `json:"series_ended"`

	// series counters snapshotted at the moment of the roll
	ConsecutiveWins  int         `json:"consecutive_wins"`
	FireMask         uint16      `json:"fire_mask"`
	DoublesMask      uint8       `json:"doubles_mask"`
	SmallTallMask    uint16      `json:"small_tall_mask"`
	RollCountByTotal map[int]int `json:"roll_count_by_total"`
}

/*
ApplyRoll is the sole mutator of shooter state. It updates the per-total roll
counters and the bonus masks, then advances the phase machine:

	come-out: 7/11 natural, 2/3/12 craps, anything else establishes the point
	point:    point repeated returns to come-out, 7 ends the series
*/
func (s *ShooterState) ApplyRoll(roll DiceRoll) (*RollOutcome, error) {
	if s.Phase == GamePhase_Idle {
		return nil, ErrShooterNoActiveSeries
	}
	if roll.Die1 < 1 || roll.Die1 > 6 || roll.Die2 < 1 || roll.Die2 > 6 {
		return nil, ErrShooterInvalidDie
	}

	total := roll.Die1 + roll.Die2
	outcome := &RollOutcome{
		Roll:        roll,
		PhaseBefore: s.Phase,
		PointBefore: s.Point,
	}

	s.RollCount++
	s.RollCountByTotal[total]++
	if roll.Die1 == roll.Die2 {
		s.DoublesMask = setBit8(s.DoublesMask, roll.Die1)
	}
	if total != 7 {
		s.SmallTallMask = setBit16(s.SmallTallMask, total)
	}

	switch s.Phase {
	case GamePhase_ComeOut:
		switch {
		case total == 7 || total == 11:
			s.ConsecutiveWins++
			outcome.NaturalWin = true
		case total == 2 || total == 3 || total == 12:
			s.ConsecutiveWins = 0
			outcome.ComeOutCraps = true
		default:
			s.Point = total
			s.Phase = GamePhase_Point
			outcome.PointEstablished = true
		}
	case GamePhase_Point:
		switch {
		case total == s.Point:
			s.FireMask = setBit16(s.FireMask, s.Point)
			s.PointsMadeCount++
			s.ConsecutiveWins++
			s.Point = 0
			s.Phase = GamePhase_ComeOut
			outcome.PointMade = true
		case total == 7:
			s.Point = 0
			s.Phase = GamePhase_Idle
			outcome.SeriesEnded = true
		}
	}

	outcome.PhaseAfter = s.Phase
	outcome.PointAfter = s.Point
	outcome.ConsecutiveWins = s.ConsecutiveWins
	outcome.FireMask = s.FireMask
	outcome.DoublesMask = s.DoublesMask
	outcome.SmallTallMask = s.SmallTallMask
	outcome.RollCountByTotal = make(map[int]int, len(s.RollCountByTotal))
	for k, v := range s.RollCountByTotal {
		outcome.RollCountByTotal[k] = v
	}

	if outcome.SeriesEnded {
		s.ConsecutiveWins = 0
	}

	return outcome, nil
}

/*
SeriesResult is the archived record of a finished series, copied off the
shooter state before it is cleared.
*/
type SeriesResult struct {
	SeriesID        string `json:"series_id"`
	ShooterID       string `json:"shooter_id"`
	RollCount       int    `json:"roll_count"`
	PointsMadeCount int    `json:"points_made_count"`
	FireMask        uint16 `json:"fire_mask"`
	DoublesMask     uint8  `json:"doubles_mask"`
	SmallTallMask   uint16 `json:"small_tall_mask"`
	StartedAt       int64  `json:"started_at"`
	EndedAt         int64  `json:"ended_at"`
	SevenOut        bool   `json:"seven_out"`
}

func (s *ShooterState) Archive(sevenOut bool) *SeriesResult {
	return &SeriesResult{
		SeriesID:        s.SeriesID,
		ShooterID:       s.ShooterID,
		RollCount:       s.RollCount,
		PointsMadeCount: s.PointsMadeCount,
		FireMask:        s.FireMask,
		DoublesMask:     s.DoublesMask,
		SmallTallMask:   s.SmallTallMask,
		StartedAt:       s.StartedAt,
		EndedAt:         time.Now().Unix(),
		SevenOut:        sevenOut,
	}
}
