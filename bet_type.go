package crapstable

import (
	"errors"
	"fmt"
)

var (
	ErrCatalogInvalidBetType    = errors.New("catalog: invalid bet type")
	ErrCatalogInvalidPayoutOdds = errors.New("catalog: invalid payout odds")
)

/*
BetType is the fixed catalog of wager kinds the table accepts. Values double as
bit positions inside PlayerBetSummary.ActiveBetsBitmap, so they must stay below
64 and must never be renumbered.
*/
type BetType int

const (
	BetType_Pass     BetType = 0
	BetType_DontPass BetType = 1
	BetType_Come     BetType = 2
	BetType_DontCome BetType = 3
	BetType_Field    BetType = 4

	// Yes (place) bets win when their number rolls before a seven.
	BetType_Yes4  BetType = 5
	BetType_Yes5  BetType = 6
	BetType_Yes6  BetType = 7
	BetType_Yes8  BetType = 8
	BetType_Yes9  BetType = 9
	BetType_Yes10 BetType = 10

	// No (lay) bets win when a seven rolls before their number.
	BetType_No4  BetType = 11
	BetType_No5  BetType = 12
	BetType_No6  BetType = 13
	BetType_No8  BetType = 14
	BetType_No9  BetType = 15
	BetType_No10 BetType = 16

	BetType_Hard4  BetType = 17
	BetType_Hard6  BetType = 18
	BetType_Hard8  BetType = 19
	BetType_Hard10 BetType = 20

	// Next bets are one-roll propositions on the exact total of the next roll.
	BetType_Next2  BetType = 21
	BetType_Next3  BetType = 22
	BetType_Next4  BetType = 23
	BetType_Next5  BetType = 24
	BetType_Next6  BetType = 25
	BetType_Next7  BetType = 26
	BetType_Next8  BetType = 27
	BetType_Next9  BetType = 28
	BetType_Next10 BetType = 29
	BetType_Next11 BetType = 30
	BetType_Next12 BetType = 31

	BetType_AnyCraps BetType = 32
	BetType_AnySeven BetType = 33

	// Bonus bets resolve once per series, against the shooter's roll history.
	BetType_Fire             BetType = 34
	BetType_DifferentDoubles BetType = 35
	BetType_RideTheLine      BetType = 36
	BetType_Small            BetType = 37
	BetType_Tall             BetType = 38
	BetType_All              BetType = 39

	// Repeater bets win once their total has rolled a per-total number of times
	// within a single series, and lose at seven-out.
	BetType_Repeater2  BetType = 40
	BetType_Repeater3  BetType = 41
	BetType_Repeater4  BetType = 42
	BetType_Repeater5  BetType = 43
	BetType_Repeater6  BetType = 44
	BetType_Repeater8  BetType = 45
	BetType_Repeater9  BetType = 46
	BetType_Repeater10 BetType = 47
	BetType_Repeater11 BetType = 48
	BetType_Repeater12 BetType = 49

	BetType_PassOdds     BetType = 50
	BetType_DontPassOdds BetType = 51
	BetType_ComeOdds     BetType = 52
	BetType_DontComeOdds BetType = 53

	BetTypeCount = 54
)

var betTypeNames = map[BetType]string{
	BetType_Pass:             "pass",
	BetType_DontPass:         "dont_pass",
	BetType_Come:             "come",
	BetType_DontCome:         "dont_come",
	BetType_Field:            "field",
	BetType_Yes4:             "yes_4",
	BetType_Yes5:             "yes_5",
	BetType_Yes6:             "yes_6",
	BetType_Yes8:             "yes_8",
	BetType_Yes9:             "yes_9",
	BetType_Yes10:            "yes_10",
	BetType_No4:              "no_4",
	BetType_No5:              "no_5",
	BetType_No6:              "no_6",
	BetType_No8:              "no_8",
	BetType_No9:              "no_9",
	BetType_No10:             "no_10",
	BetType_Hard4:            "hard_4",
	BetType_Hard6:            "hard_6",
	BetType_Hard8:            "hard_8",
	BetType_Hard10:           "hard_10",
	BetType_Next2:            "next_2",
	BetType_Next3:            "next_3",
	BetType_Next4:            "next_4",
	BetType_Next5:            "next_5",
	BetType_Next6:            "next_6",
	BetType_Next7:            "next_7",
	BetType_Next8:            "next_8",
	BetType_Next9:            "next_9",
	BetType_Next10:           "next_10",
	BetType_Next11:           "next_11",
	BetType_Next12:           "next_12",
	BetType_AnyCraps:         "any_craps",
	BetType_AnySeven:         "any_seven",
	BetType_Fire:             "fire",
	BetType_DifferentDoubles: "different_doubles",
	BetType_RideTheLine:      "ride_the_line",
	BetType_Small:            "small",
	BetType_Tall:             "tall",
	BetType_All:              "all",
	BetType_Repeater2:        "repeater_2",
	BetType_Repeater3:        "repeater_3",
	BetType_Repeater4:        "repeater_4",
	BetType_Repeater5:        "repeater_5",
	BetType_Repeater6:        "repeater_6",
	BetType_Repeater8:        "repeater_8",
	BetType_Repeater9:        "repeater_9",
	BetType_Repeater10:       "repeater_10",
	BetType_Repeater11:       "repeater_11",
	BetType_Repeater12:       "repeater_12",
	BetType_PassOdds:         "pass_odds",
	BetType_DontPassOdds:     "dont_pass_odds",
	BetType_ComeOdds:         "come_odds",
	BetType_DontComeOdds:     "dont_come_odds",
}

func (bt BetType) String() string {
	if name, ok := betTypeNames[bt]; ok {
		return name
	}
	return fmt.Sprintf("bet_type_%d", int(bt))
}

func (bt BetType) IsValid() bool {
	_, ok := betTypeNames[bt]
	return ok
}

func (bt BetType) IsLine() bool {
	return bt == BetType_Pass || bt == BetType_DontPass || bt == BetType_Come || bt == BetType_DontCome
}

func (bt BetType) IsComeStyle() bool {
	return bt == BetType_Come || bt == BetType_DontCome
}

func (bt BetType) IsOneRoll() bool {
	if bt == BetType_Field || bt == BetType_AnyCraps || bt == BetType_AnySeven {
		return true
	}
	_, ok := bt.NextTotal()
	return ok
}

func (bt BetType) IsOdds() bool {
	return bt == BetType_PassOdds || bt == BetType_DontPassOdds || bt == BetType_ComeOdds || bt == BetType_DontComeOdds
}

func (bt BetType) IsBonus() bool {
	switch bt {
	case BetType_Fire, BetType_DifferentDoubles, BetType_RideTheLine, BetType_Small, BetType_Tall, BetType_All:
		return true
	}
	return false
}

func (bt BetType) IsRepeater() bool {
	_, ok := bt.RepeaterTotal()
	return ok
}

// IsDontSide reports whether the bet wins at seven-out.
func (bt BetType) IsDontSide() bool {
	switch bt {
	case BetType_DontPass, BetType_DontCome, BetType_DontPassOdds, BetType_DontComeOdds:
		return true
	}
	_, ok := bt.NoNumber()
	return ok
}

// YesNumber returns the place number a Yes bet is keyed to.
func (bt BetType) YesNumber() (int, bool) {
	switch bt {
	case BetType_Yes4:
		return 4, true
	case BetType_Yes5:
		return 5, true
	case BetType_Yes6:
		return 6, true
	case BetType_Yes8:
		return 8, true
	case BetType_Yes9:
		return 9, true
	case BetType_Yes10:
		return 10, true
	}
	return 0, false
}

func (bt BetType) NoNumber() (int, bool) {
	switch bt {
	case BetType_No4:
		return 4, true
	case BetType_No5:
		return 5, true
	case BetType_No6:
		return 6, true
	case BetType_No8:
		return 8, true
	case BetType_No9:
		return 9, true
	case BetType_No10:
		return 10, true
	}
	return 0, false
}

func (bt BetType) HardNumber() (int, bool) {
	switch bt {
	case BetType_Hard4:
		return 4, true
	case BetType_Hard6:
		return 6, true
	case BetType_Hard8:
		return 8, true
	case BetType_Hard10:
		return 10, true
	}
	return 0, false
}

func (bt BetType) NextTotal() (int, bool) {
	if bt >= BetType_Next2 && bt <= BetType_Next12 {
		return int(bt-BetType_Next2) + 2, true
	}
	return 0, false
}

func (bt BetType) RepeaterTotal() (int, bool) {
	if bt >= BetType_Repeater2 && bt <= BetType_Repeater6 {
		return int(bt-BetType_Repeater2) + 2, true
	}
	if bt >= BetType_Repeater8 && bt <= BetType_Repeater12 {
		return int(bt-BetType_Repeater8) + 8, true
	}
	return 0, false
}

func YesBetTypeByNumber(number int) (BetType, bool) {
	switch number {
	case 4:
		return BetType_Yes4, true
	case 5:
		return BetType_Yes5, true
	case 6:
		return BetType_Yes6, true
	case 8:
		return BetType_Yes8, true
	case 9:
		return BetType_Yes9, true
	case 10:
		return BetType_Yes10, true
	}
	return 0, false
}

func NoBetTypeByNumber(number int) (BetType, bool) {
	switch number {
	case 4:
		return BetType_No4, true
	case 5:
		return BetType_No5, true
	case 6:
		return BetType_No6, true
	case 8:
		return BetType_No8, true
	case 9:
		return BetType_No9, true
	case 10:
		return BetType_No10, true
	}
	return 0, false
}

func HardBetTypeByNumber(number int) (BetType, bool) {
	switch number {
	case 4:
		return BetType_Hard4, true
	case 6:
		return BetType_Hard6, true
	case 8:
		return BetType_Hard8, true
	case 10:
		return BetType_Hard10, true
	}
	return 0, false
}

func NextBetTypeByTotal(total int) (BetType, bool) {
	if total < 2 || total > 12 {
		return 0, false
	}
	return BetType_Next2 + BetType(total-2), true
}

func RepeaterBetTypeByTotal(total int) (BetType, bool) {
	switch {
	case total >= 2 && total <= 6:
		return BetType_Repeater2 + BetType(total-2), true
	case total >= 8 && total <= 12:
		return BetType_Repeater8 + BetType(total-8), true
	}
	return 0, false
}

// OddsBetType returns the odds slot derived from a line bet.
func OddsBetType(base BetType) (BetType, bool) {
	switch base {
	case BetType_Pass:
		return BetType_PassOdds, true
	case BetType_DontPass:
		return BetType_DontPassOdds, true
	case BetType_Come:
		return BetType_ComeOdds, true
	case BetType_DontCome:
		return BetType_DontComeOdds, true
	}
	return 0, false
}

// OddsBaseBetType is the inverse of OddsBetType.
func OddsBaseBetType(odds BetType) (BetType, bool) {
	switch odds {
	case BetType_PassOdds:
		return BetType_Pass, true
	case BetType_DontPassOdds:
		return BetType_DontPass, true
	case BetType_ComeOdds:
		return BetType_Come, true
	case BetType_DontComeOdds:
		return BetType_DontCome, true
	}
	return 0, false
}

/*
EligibleInPhase reports whether a bet type may be placed while the table is in
the given phase. Odds slots are never placed directly (PlaceOddsBet derives
them), and bonus/repeater bets additionally require a fresh series, which the
ledger checks against the shooter state.
*/
func (bt BetType) EligibleInPhase(phase GamePhase) bool {
	if phase == GamePhase_Idle {
		return false
	}

	switch {
	case bt == BetType_Pass || bt == BetType_DontPass:
		return phase == GamePhase_ComeOut
	case bt.IsComeStyle():
		return phase == GamePhase_Point
	case bt.IsOdds():
		return false
	case bt.IsBonus() || bt.IsRepeater():
		return phase == GamePhase_ComeOut
	default:
		_, isYes := bt.YesNumber()
		_, isNo := bt.NoNumber()
		if isYes || isNo {
			return phase == GamePhase_Point
		}
		return true
	}
}

/*
RemovableIn reports whether an active bet may be taken down. Line bets lock in
once engaged: pass-side bets after a point is established, come-style bets once
a come point is attached. Bonus and repeater bets lock in after the first roll
of the series.
*/
func (bt BetType) RemovableIn(phase GamePhase, pinnedPoint int, freshSeries bool) bool {
	switch {
	case bt == BetType_Pass || bt == BetType_DontPass || bt == BetType_PassOdds || bt == BetType_DontPassOdds:
		return phase == GamePhase_ComeOut
	case bt.IsComeStyle() || bt == BetType_ComeOdds || bt == BetType_DontComeOdds:
		return pinnedPoint == 0
	case bt.IsBonus() || bt.IsRepeater():
		return freshSeries
	default:
		return true
	}
}

/*
PayoutOdds is a profit ratio expressed as an integer pair: a winning bet of
amount A collects A + A*Numerator/Denominator. All settlement math is integer
only; truncation on division favors the house.
*/
type PayoutOdds struct {
	Numerator   int64 `json:"numerator"`
	Denominator int64 `json:"denominator"`
}

// Profit computes the win profit for a wager, truncating toward zero.
func (po PayoutOdds) Profit(amount int64) int64 {
	return amount * po.Numerator / po.Denominator
}

func (po PayoutOdds) validate() error {
	if po.Numerator < 0 || po.Denominator <= 0 {
		return ErrCatalogInvalidPayoutOdds
	}
	// keeps amount*numerator inside int64 for any amount the ledger accepts
	if po.Numerator > 1_000_000 {
		return ErrCatalogInvalidPayoutOdds
	}
	return nil
}

/*
PayoutTable carries every multiplier the settlement engine consults. It is
supplied through TableMeta so operators can tune the house edge; the library
ships defaults via NewDefaultPayoutTable. Don't-side odds and repeater tables
are operator-supplied figures validated only for internal consistency.
*/
type PayoutTable struct {
	Line PayoutOdds `json:"line"`

	FieldDouble PayoutOdds `json:"field_double"` // total 2
	FieldTriple PayoutOdds `json:"field_triple"` // total 12
	FieldFlat   PayoutOdds `json:"field_flat"`   // remaining field totals

	PlaceYes map[int]PayoutOdds `json:"place_yes"` // keyed by place number
	LayNo    map[int]PayoutOdds `json:"lay_no"`

	PassOdds     map[int]PayoutOdds `json:"pass_odds"` // keyed by point
	DontPassOdds map[int]PayoutOdds `json:"dont_pass_odds"`

	Hardway map[int]PayoutOdds `json:"hardway"`

	Next     map[int]PayoutOdds `json:"next"` // keyed by exact total
	AnyCraps PayoutOdds         `json:"any_craps"`
	AnySeven PayoutOdds         `json:"any_seven"`

	FireTiers    map[int]PayoutOdds `json:"fire_tiers"`    // keyed by distinct points made
	DoublesTiers map[int]PayoutOdds `json:"doubles_tiers"` // keyed by distinct doubles rolled
	RideTiers    map[int]PayoutOdds `json:"ride_tiers"`    // keyed by consecutive line wins

	SmallOdds PayoutOdds `json:"small_odds"`
	TallOdds  PayoutOdds `json:"tall_odds"`
	AllOdds   PayoutOdds `json:"all_odds"`

	RepeaterThresholds map[int]int        `json:"repeater_thresholds"` // keyed by total
	RepeaterOdds       map[int]PayoutOdds `json:"repeater_odds"`
}

func NewDefaultPayoutTable() PayoutTable {
	return PayoutTable{
		Line: PayoutOdds{1, 1},

		FieldDouble: PayoutOdds{2, 1},
		FieldTriple: PayoutOdds{3, 1},
		FieldFlat:   PayoutOdds{1, 1},

		PlaceYes: map[int]PayoutOdds{
			4: {9, 5}, 5: {7, 5}, 6: {7, 6}, 8: {7, 6}, 9: {7, 5}, 10: {9, 5},
		},
		LayNo: map[int]PayoutOdds{
			4: {5, 11}, 5: {5, 8}, 6: {4, 5}, 8: {4, 5}, 9: {5, 8}, 10: {5, 11},
		},

		PassOdds: map[int]PayoutOdds{
			4: {2, 1}, 5: {3, 2}, 6: {6, 5}, 8: {6, 5}, 9: {3, 2}, 10: {2, 1},
		},
		DontPassOdds: map[int]PayoutOdds{
			4: {1, 2}, 5: {2, 3}, 6: {5, 6}, 8: {5, 6}, 9: {2, 3}, 10: {1, 2},
		},

		Hardway: map[int]PayoutOdds{
			4: {7, 1}, 6: {9, 1}, 8: {9, 1}, 10: {7, 1},
		},

		Next: map[int]PayoutOdds{
			2: {30, 1}, 3: {15, 1}, 4: {10, 1}, 5: {7, 1}, 6: {6, 1},
			7: {4, 1}, 8: {6, 1}, 9: {7, 1}, 10: {10, 1}, 11: {15, 1}, 12: {30, 1},
		},
		AnyCraps: PayoutOdds{7, 1},
		AnySeven: PayoutOdds{4, 1},

		FireTiers: map[int]PayoutOdds{
			4: {24, 1}, 5: {249, 1}, 6: {999, 1},
		},
		DoublesTiers: map[int]PayoutOdds{
			3: {4, 1}, 4: {8, 1}, 5: {15, 1}, 6: {100, 1},
		},
		RideTiers: map[int]PayoutOdds{
			3: {2, 1}, 4: {5, 1}, 5: {10, 1}, 6: {20, 1}, 7: {50, 1}, 8: {150, 1},
		},

		SmallOdds: PayoutOdds{30, 1},
		TallOdds:  PayoutOdds{30, 1},
		AllOdds:   PayoutOdds{150, 1},

		RepeaterThresholds: map[int]int{
			2: 2, 3: 3, 4: 4, 5: 5, 6: 6, 8: 6, 9: 5, 10: 4, 11: 3, 12: 2,
		},
		RepeaterOdds: map[int]PayoutOdds{
			2: {40, 1}, 3: {50, 1}, 4: {65, 1}, 5: {80, 1}, 6: {90, 1},
			8: {90, 1}, 9: {80, 1}, 10: {65, 1}, 11: {50, 1}, 12: {40, 1},
		},
	}
}

func (pt PayoutTable) Validate() error {
	odds := []PayoutOdds{
		pt.Line, pt.FieldDouble, pt.FieldTriple, pt.FieldFlat,
		pt.AnyCraps, pt.AnySeven, pt.SmallOdds, pt.TallOdds, pt.AllOdds,
	}
	for _, m := range []map[int]PayoutOdds{
		pt.PlaceYes, pt.LayNo, pt.PassOdds, pt.DontPassOdds, pt.Hardway,
		pt.Next, pt.FireTiers, pt.DoublesTiers, pt.RideTiers, pt.RepeaterOdds,
	} {
		for _, po := range m {
			odds = append(odds, po)
		}
	}
	for _, po := range odds {
		if err := po.validate(); err != nil {
			return err
		}
	}

	// settlement indexes these maps directly, so every reachable key must exist
	for _, number := range pointNumbers {
		for _, m := range []map[int]PayoutOdds{pt.PassOdds, pt.DontPassOdds, pt.PlaceYes, pt.LayNo} {
			if _, ok := m[number]; !ok {
				return ErrCatalogInvalidPayoutOdds
			}
		}
	}
	for _, number := range []int{4, 6, 8, 10} {
		if _, ok := pt.Hardway[number]; !ok {
			return ErrCatalogInvalidPayoutOdds
		}
	}
	for total := 2; total <= 12; total++ {
		if _, ok := pt.Next[total]; !ok {
			return ErrCatalogInvalidPayoutOdds
		}
	}

	for total, threshold := range pt.RepeaterThresholds {
		if threshold <= 0 {
			return ErrCatalogInvalidPayoutOdds
		}
		if _, ok := pt.RepeaterOdds[total]; !ok {
			return ErrCatalogInvalidPayoutOdds
		}
	}

	return nil
}

// bestTier picks the richest tier whose key does not exceed value.
func bestTier(tiers map[int]PayoutOdds, value int) (PayoutOdds, bool) {
	found := false
	bestKey := 0
	for key := range tiers {
		if key <= value && key >= bestKey {
			bestKey = key
			found = true
		}
	}
	if !found {
		return PayoutOdds{}, false
	}
	return tiers[bestKey], true
}
