package crapstable

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"
)

const (
	SettlementStage_OneRoll  = "one_roll"
	SettlementStage_Line     = "line"
	SettlementStage_Standing = "standing"
	SettlementStage_Sweep    = "sweep"
	SettlementStage_Void     = "void"
)

var fieldWinTotals = []int{2, 3, 4, 9, 10, 11, 12}

/*
PendingSettlement is the resumable cursor for one roll's settlement. The roll
outcome is cached here so later batches settle against the same phase/point
context even if the table has moved on, and Players is a snapshot of the
active-player index taken when the roll landed. Each call to settleBatch
consumes at most the configured batch size of (player, stage) visits and
leaves the remainder exactly as it was.
*/
type PendingSettlement struct {
	Outcome      *RollOutcome `json:"outcome"`
	Stages       []string     `json:"stages"`
	StageIndex   int          `json:"stage_index"`
	PlayerCursor int          `json:"player_cursor"`
	Players      []string     `json:"players"`
	TotalPayout  int64        `json:"total_payout"`
}

func newPendingSettlement(outcome *RollOutcome, players []string) *PendingSettlement {
	stages := []string{SettlementStage_OneRoll}
	if outcome.NaturalWin || outcome.ComeOutCraps || outcome.PointMade || outcome.SeriesEnded {
		stages = append(stages, SettlementStage_Line)
	}
	if outcome.PhaseBefore == GamePhase_Point {
		stages = append(stages, SettlementStage_Standing)
	}
	if outcome.SeriesEnded {
		stages = append(stages, SettlementStage_Sweep)
	}

	return &PendingSettlement{
		Outcome: outcome,
		Stages:  stages,
		Players: players,
	}
}

func newVoidSettlement(players []string) *PendingSettlement {
	return &PendingSettlement{
		Stages:  []string{SettlementStage_Void},
		Players: players,
	}
}

func (ps *PendingSettlement) IsDone() bool {
	return ps.StageIndex >= len(ps.Stages)
}

/*
settleBatch advances the pending settlement by at most SettlementBatchSize
(player, stage) visits. Callers must hold the engine lock. When work remains
afterwards a delayed continuation is scheduled so the table drains itself even
without an external ContinueSettlement driver.
*/
func (te *tableEngine) settleBatch() error {
	ps := te.table.State.PendingSettlement
	if ps == nil {
		return nil
	}

	budget := te.options.SettlementBatchSize
	for budget > 0 && !ps.IsDone() {
		if ps.PlayerCursor >= len(ps.Players) {
			ps.StageIndex++
			ps.PlayerCursor = 0
			continue
		}

		playerID := ps.Players[ps.PlayerCursor]
		te.settlePlayerStage(playerID, ps.Stages[ps.StageIndex], ps)
		ps.PlayerCursor++
		budget--
	}

	if ps.IsDone() {
		te.finishSettlement(ps)
		return nil
	}

	return te.delay(te.tbForSettlement, te.options.SettlementContinueInterval, func() error {
		return te.ContinueSettlement()
	})
}

// settlePlayerStage resolves every bet of one player that the stage covers.
func (te *tableEngine) settlePlayerStage(playerID string, stage string, ps *PendingSettlement) {
	for _, bet := range te.table.State.Ledger.ActiveBets(playerID) {
		switch stage {
		case SettlementStage_OneRoll:
			te.settleOneRollBet(bet, ps)
		case SettlementStage_Line:
			te.settleLineBet(bet, ps)
		case SettlementStage_Standing:
			te.settleStandingBet(bet, ps)
		case SettlementStage_Sweep:
			te.settleSweepBet(bet, ps)
		case SettlementStage_Void:
			te.resolveBet(bet, BetResult_Pushed, bet.Amount, ps)
		}
	}
}

func (te *tableEngine) settleOneRollBet(bet *Bet, ps *PendingSettlement) {
	payouts := te.table.Meta.Payouts
	total := ps.Outcome.Roll.Total

	switch {
	case bet.Type == BetType_Field:
		if funk.Contains(fieldWinTotals, total) {
			odds := payouts.FieldFlat
			if total == 2 {
				odds = payouts.FieldDouble
			} else if total == 12 {
				odds = payouts.FieldTriple
			}
			te.resolveBet(bet, BetResult_Won, bet.Amount+odds.Profit(bet.Amount), ps)
		} else {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
		}

	case bet.Type == BetType_AnyCraps:
		if funk.Contains([]int{2, 3, 12}, total) {
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.AnyCraps.Profit(bet.Amount), ps)
		} else {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
		}

	case bet.Type == BetType_AnySeven:
		if total == 7 {
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.AnySeven.Profit(bet.Amount), ps)
		} else {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
		}

	default:
		if nextTotal, ok := bet.Type.NextTotal(); ok {
			if nextTotal == total {
				te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Next[total].Profit(bet.Amount), ps)
			} else {
				te.resolveBet(bet, BetResult_Lost, 0, ps)
			}
			return
		}

		// repeaters win the moment their total reaches its threshold
		if repTotal, ok := bet.Type.RepeaterTotal(); ok && repTotal == total {
			threshold, exists := payouts.RepeaterThresholds[repTotal]
			if exists && ps.Outcome.RollCountByTotal[repTotal] >= threshold {
				te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.RepeaterOdds[repTotal].Profit(bet.Amount), ps)
			}
		}
	}
}

func (te *tableEngine) settleLineBet(bet *Bet, ps *PendingSettlement) {
	if !funk.Contains([]BetType{BetType_Pass, BetType_DontPass, BetType_PassOdds, BetType_DontPassOdds}, bet.Type) {
		return
	}

	payouts := te.table.Meta.Payouts
	outcome := ps.Outcome
	total := outcome.Roll.Total
	point := outcome.PointBefore

	if outcome.PhaseBefore == GamePhase_ComeOut {
		// pass odds cannot exist without a point; only flat line bets resolve here
		switch bet.Type {
		case BetType_Pass:
			if outcome.NaturalWin {
				te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Line.Profit(bet.Amount), ps)
			} else if outcome.ComeOutCraps {
				te.resolveBet(bet, BetResult_Lost, 0, ps)
			}
		case BetType_DontPass:
			if outcome.NaturalWin {
				te.resolveBet(bet, BetResult_Lost, 0, ps)
			} else if outcome.ComeOutCraps {
				if total == 12 {
					te.resolveBet(bet, BetResult_Pushed, bet.Amount, ps)
				} else {
					te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Line.Profit(bet.Amount), ps)
				}
			}
		}
		return
	}

	switch {
	case outcome.PointMade:
		switch bet.Type {
		case BetType_Pass:
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Line.Profit(bet.Amount), ps)
		case BetType_PassOdds:
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.PassOdds[point].Profit(bet.Amount), ps)
		case BetType_DontPass, BetType_DontPassOdds:
			te.resolveBet(bet, BetResult_Lost, 0, ps)
		}
	case outcome.SeriesEnded:
		switch bet.Type {
		case BetType_Pass, BetType_PassOdds:
			te.resolveBet(bet, BetResult_Lost, 0, ps)
		case BetType_DontPass:
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Line.Profit(bet.Amount), ps)
		case BetType_DontPassOdds:
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.DontPassOdds[point].Profit(bet.Amount), ps)
		}
	}
}

func (te *tableEngine) settleStandingBet(bet *Bet, ps *PendingSettlement) {
	payouts := te.table.Meta.Payouts
	outcome := ps.Outcome
	total := outcome.Roll.Total

	switch bet.Type {
	case BetType_Come:
		if bet.Point == 0 {
			switch {
			case total == 7 || total == 11:
				te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Line.Profit(bet.Amount), ps)
			case funk.Contains([]int{2, 3, 12}, total):
				te.resolveBet(bet, BetResult_Lost, 0, ps)
			default:
				te.updateComePoint(bet, total)
			}
			return
		}
		if total == bet.Point {
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Line.Profit(bet.Amount), ps)
		} else if total == 7 {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
		}

	case BetType_DontCome:
		if bet.Point == 0 {
			switch {
			case total == 2 || total == 3:
				te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Line.Profit(bet.Amount), ps)
			case total == 12:
				te.resolveBet(bet, BetResult_Pushed, bet.Amount, ps)
			case total == 7 || total == 11:
				te.resolveBet(bet, BetResult_Lost, 0, ps)
			default:
				te.updateComePoint(bet, total)
			}
			return
		}
		if total == bet.Point {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
		} else if total == 7 {
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Line.Profit(bet.Amount), ps)
		}

	case BetType_ComeOdds:
		if bet.Point == 0 {
			return
		}
		if total == bet.Point {
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.PassOdds[bet.Point].Profit(bet.Amount), ps)
		} else if total == 7 {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
		}

	case BetType_DontComeOdds:
		if bet.Point == 0 {
			return
		}
		if total == bet.Point {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
		} else if total == 7 {
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.DontPassOdds[bet.Point].Profit(bet.Amount), ps)
		}

	default:
		// the point repeating resolves the line, not place bets, and sevens
		// are handled by the sweep
		placeResolvable := total != outcome.PointBefore && total != 7

		if number, ok := bet.Type.YesNumber(); ok && number == total && placeResolvable {
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.PlaceYes[number].Profit(bet.Amount), ps)
			return
		}
		if number, ok := bet.Type.NoNumber(); ok && number == total && placeResolvable {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
			return
		}
		if number, ok := bet.Type.HardNumber(); ok && number == total {
			if ps.Outcome.Roll.IsDouble() {
				te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.Hardway[number].Profit(bet.Amount), ps)
			} else {
				te.resolveBet(bet, BetResult_Lost, 0, ps)
			}
		}
	}
}

/*
settleSweepBet resolves everything still standing at seven-out: don't-side
bets win, place-side and hardway bets lose, and the bonus bets are judged
against the series masks snapshotted into the roll outcome.
*/
func (te *tableEngine) settleSweepBet(bet *Bet, ps *PendingSettlement) {
	payouts := te.table.Meta.Payouts
	outcome := ps.Outcome

	switch {
	case bet.Type == BetType_Fire:
		te.resolveBonusTier(bet, payouts.FireTiers, popcount16(outcome.FireMask), ps)

	case bet.Type == BetType_DifferentDoubles:
		te.resolveBonusTier(bet, payouts.DoublesTiers, popcount8(outcome.DoublesMask), ps)

	case bet.Type == BetType_RideTheLine:
		te.resolveBonusTier(bet, payouts.RideTiers, outcome.ConsecutiveWins, ps)

	case bet.Type == BetType_Small:
		te.resolveBonusFlag(bet, payouts.SmallOdds, outcome.SmallTallMask&smallMaskFull == smallMaskFull, ps)

	case bet.Type == BetType_Tall:
		te.resolveBonusFlag(bet, payouts.TallOdds, outcome.SmallTallMask&tallMaskFull == tallMaskFull, ps)

	case bet.Type == BetType_All:
		allComplete := outcome.SmallTallMask&(smallMaskFull|tallMaskFull) == smallMaskFull|tallMaskFull
		te.resolveBonusFlag(bet, payouts.AllOdds, allComplete, ps)

	case bet.Type.IsRepeater():
		te.resolveBet(bet, BetResult_Lost, 0, ps)

	default:
		if number, ok := bet.Type.NoNumber(); ok {
			te.resolveBet(bet, BetResult_Won, bet.Amount+payouts.LayNo[number].Profit(bet.Amount), ps)
			return
		}
		if _, ok := bet.Type.YesNumber(); ok {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
			return
		}
		if _, ok := bet.Type.HardNumber(); ok {
			te.resolveBet(bet, BetResult_Lost, 0, ps)
			return
		}

		// earlier stages should have drained everything else
		fmt.Printf("[DEBUG#settleSweepBet] unexpected leftover bet (%s) for player (%s), returning stake\n", bet.Type, bet.PlayerID)
		te.resolveBet(bet, BetResult_Pushed, bet.Amount, ps)
	}
}

func (te *tableEngine) resolveBonusTier(bet *Bet, tiers map[int]PayoutOdds, value int, ps *PendingSettlement) {
	odds, qualified := bestTier(tiers, value)
	if qualified {
		te.resolveBet(bet, BetResult_Won, bet.Amount+odds.Profit(bet.Amount), ps)
	} else {
		te.resolveBet(bet, BetResult_Lost, 0, ps)
	}
}

func (te *tableEngine) resolveBonusFlag(bet *Bet, odds PayoutOdds, won bool, ps *PendingSettlement) {
	if won {
		te.resolveBet(bet, BetResult_Won, bet.Amount+odds.Profit(bet.Amount), ps)
	} else {
		te.resolveBet(bet, BetResult_Lost, 0, ps)
	}
}

func (te *tableEngine) updateComePoint(bet *Bet, point int) {
	if err := te.table.State.Ledger.UpdateComePoint(bet.PlayerID, bet.Type, point); err != nil {
		fmt.Printf("[DEBUG#updateComePoint] failed to pin %s for player (%s): %v\n", bet.Type, bet.PlayerID, err)
		return
	}

	// the paired odds slot inherits the pin so it can resolve independently
	if oddsType, ok := OddsBetType(bet.Type); ok {
		if oddsBet := te.table.State.Ledger.FindBet(bet.PlayerID, oddsType); oddsBet != nil && oddsBet.Point == 0 {
			_ = te.table.State.Ledger.UpdateComePoint(bet.PlayerID, oddsType, point)
		}
	}
}

/*
resolveBet finalizes one bet: ledger bookkeeping first, vault credit after, so
the vault can never re-enter settlement against a half-cleared bet. A failed
credit queues the payout as a pending claim instead of dropping it.
*/
func (te *tableEngine) resolveBet(bet *Bet, result string, payout int64, ps *PendingSettlement) {
	cleared, err := te.table.State.Ledger.ClearBet(bet.PlayerID, bet.Type)
	if err != nil {
		fmt.Printf("[DEBUG#resolveBet] bet (%s) for player (%s) already cleared\n", bet.Type, bet.PlayerID)
		return
	}

	creditQueued := false
	if payout > 0 {
		if err := te.vaultBackend.Credit(bet.PlayerID, payout); err != nil {
			te.table.State.Ledger.AddPendingClaim(bet.PlayerID, payout)
			creditQueued = true
			te.emitErrorEvent("resolveBet#Credit", bet.PlayerID, err)
		}
	}

	rollNumber := 0
	seriesID := ""
	if ps.Outcome != nil {
		rollNumber = ps.Outcome.Roll.SeriesRoll
		seriesID = ps.Outcome.Roll.SeriesID
	}

	resolution := BetResolution{
		ID:         uuid.New().String(),
		TableID:    te.table.ID,
		SeriesID:   seriesID,
		PlayerID:   cleared.PlayerID,
		BetType:    cleared.Type,
		Amount:     cleared.Amount,
		Payout:     payout,
		Result:     result,
		RollNumber: rollNumber,
		UpdateAt:   time.Now().Unix(),
	}

	ps.TotalPayout += payout
	te.recordResolution(resolution, creditQueued)
	te.emitBetResolvedEvent(resolution)
}
