package crapstable

/*
TablePlayerGameStatistics accumulates a player's lifetime figures at this
table. Wager/payout totals are kept alongside the counts so external tooling
can derive hold percentage without replaying resolutions.
*/
type TablePlayerGameStatistics struct {
	BetsPlaced     int   `json:"bets_placed"`
	OddsBetsPlaced int   `json:"odds_bets_placed"`
	BetsRemoved    int   `json:"bets_removed"`
	BetsWon        int   `json:"bets_won"`
	BetsLost       int   `json:"bets_lost"`
	BetsPushed     int   `json:"bets_pushed"`
	TotalWagered   int64 `json:"total_wagered"`
	TotalPaidOut   int64 `json:"total_paid_out"`
	BiggestWin     int64 `json:"biggest_win"`
	PendingQueued  int   `json:"pending_queued"`

	// shooter-side statistics
	SeriesAsShooter     int `json:"series_as_shooter"`
	RollsAsShooter      int `json:"rolls_as_shooter"`
	PointsMadeAsShooter int `json:"points_made_as_shooter"`
	SevenOuts           int `json:"seven_outs"`
}

func NewPlayerGameStatistics() TablePlayerGameStatistics {
	return TablePlayerGameStatistics{}
}

func (te *tableEngine) recordBetPlaced(playerID string, amount int64, isOdds bool) {
	playerIdx := te.table.FindPlayerIdx(playerID)
	if playerIdx == UnsetValue {
		return
	}
	stats := &te.table.State.PlayerStates[playerIdx].GameStatistics
	stats.BetsPlaced++
	if isOdds {
		stats.OddsBetsPlaced++
	}
	stats.TotalWagered += amount
}

func (te *tableEngine) recordBetRemoved(playerID string) {
	playerIdx := te.table.FindPlayerIdx(playerID)
	if playerIdx == UnsetValue {
		return
	}
	te.table.State.PlayerStates[playerIdx].GameStatistics.BetsRemoved++
}

func (te *tableEngine) recordResolution(resolution BetResolution, creditQueued bool) {
	playerIdx := te.table.FindPlayerIdx(resolution.PlayerID)
	if playerIdx == UnsetValue {
		return
	}
	stats := &te.table.State.PlayerStates[playerIdx].GameStatistics

	switch resolution.Result {
	case BetResult_Won:
		stats.BetsWon++
		profit := resolution.Payout - resolution.Amount
		if profit > stats.BiggestWin {
			stats.BiggestWin = profit
		}
	case BetResult_Lost:
		stats.BetsLost++
	case BetResult_Pushed:
		stats.BetsPushed++
	}
	stats.TotalPaidOut += resolution.Payout
	if creditQueued {
		stats.PendingQueued++
	}
}

func (te *tableEngine) recordShooterRoll(shooterID string, outcome *RollOutcome) {
	playerIdx := te.table.FindPlayerIdx(shooterID)
	if playerIdx == UnsetValue {
		return
	}
	stats := &te.table.State.PlayerStates[playerIdx].GameStatistics
	stats.RollsAsShooter++
	if outcome.PointMade {
		stats.PointsMadeAsShooter++
	}
	if outcome.SeriesEnded {
		stats.SevenOuts++
	}
}

func (te *tableEngine) recordShooterSeries(shooterID string) {
	playerIdx := te.table.FindPlayerIdx(shooterID)
	if playerIdx == UnsetValue {
		return
	}
	te.table.State.PlayerStates[playerIdx].GameStatistics.SeriesAsShooter++
}
