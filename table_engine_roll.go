package crapstable

import (
	"time"

	"github.com/d-protocol/syncsaga"
)

/*
StartSeries hands the dice to a seated shooter and opens a fresh come-out
phase. Only one series can run at a time; any leftover settlement must drain
first.
*/
func (te *tableEngine) StartSeries(shooterID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.isClosed() {
		return ErrTableClosed
	}
	if te.table.State.ShooterState != nil {
		return ErrTableSeriesAlreadyActive
	}
	if te.table.State.PendingSettlement != nil {
		return ErrTableSettlementInProgress
	}

	playerIdx := te.table.FindPlayerIdx(shooterID)
	if playerIdx == UnsetValue {
		return ErrTablePlayerNotFound
	}

	te.rg.Stop()

	te.table.State.ShooterState = NewShooterState(shooterID)
	te.table.State.SeriesCount++
	te.table.State.Status = TableStateStatus(TableStateStatus_TablePlaying)
	te.lastShooterIdx = playerIdx

	te.recordShooterSeries(shooterID)
	te.emitEvent("StartSeries", shooterID)
	te.emitTableStateEvent(TableStateEvent_StatusUpdated)
	return nil
}

/*
EndSeries tears the active series down administratively. In-flight roll
requests are invalidated, whatever settlement had not drained is abandoned,
and every remaining stake is pushed back to its owner through a void
settlement drained synchronously before the call returns.
*/
func (te *tableEngine) EndSeries() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	shooter := te.table.State.ShooterState
	if shooter == nil {
		return ErrTableNoActiveSeries
	}

	for requestID := range te.pendingRolls {
		delete(te.pendingRolls, requestID)
	}
	te.tbForRollCooldown.Cancel()
	te.isRollCooldown = false
	te.tbForSettlement.Cancel()

	idx := te.table.State.Ledger.ActiveIndex
	ps := newVoidSettlement(idx.Page(0, idx.Count()))
	if prev := te.table.State.PendingSettlement; prev != nil {
		ps.TotalPayout = prev.TotalPayout
	}
	te.table.State.PendingSettlement = ps
	for !ps.IsDone() {
		if ps.PlayerCursor >= len(ps.Players) {
			ps.StageIndex++
			ps.PlayerCursor = 0
			continue
		}
		te.settlePlayerStage(ps.Players[ps.PlayerCursor], SettlementStage_Void, ps)
		ps.PlayerCursor++
	}
	te.table.State.PendingSettlement = nil

	result := shooter.Archive(false)
	te.table.State.SeriesHistory = append(te.table.State.SeriesHistory, result)
	te.table.State.ShooterState = nil
	te.table.State.Status = TableStateStatus(TableStateStatus_TableStandby)

	te.onSeriesEnded(te.table.ID, result)
	te.emitEvent("EndSeries", "")
	te.emitTableStateEvent(TableStateEvent_SeriesEnded)
	te.prepareNextSeries()
	return nil
}

/*
RequestRoll asks the randomness backend for the next roll and returns the
request handle. At most one request can be in flight, and the cooldown from
the previous roll must have elapsed.
*/
func (te *tableEngine) RequestRoll() (string, error) {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.isClosed() {
		return "", ErrTableClosed
	}
	shooter := te.table.State.ShooterState
	if shooter == nil || shooter.Phase == GamePhase_Idle {
		return "", ErrTableNoActiveSeries
	}
	if te.table.State.PendingSettlement != nil {
		return "", ErrTableSettlementInProgress
	}
	if len(te.pendingRolls) > 0 {
		return "", ErrTableRollInFlight
	}
	if te.isRollCooldown {
		return "", ErrTableRollCooldown
	}
	if te.randomnessBackend == nil {
		return "", ErrTableBackendNotConfigured
	}

	requestID, err := te.randomnessBackend.RequestRoll(shooter.SeriesID)
	if err != nil {
		return "", err
	}

	te.pendingRolls[requestID] = shooter.SeriesID
	te.emitEvent("RequestRoll", shooter.ShooterID)
	return requestID, nil
}

/*
FulfillRoll consumes a randomness fulfillment. Unknown handles and handles
requested for a series that has since ended are rejected as stale; a handle is
deleted on first use so a duplicate delivery is stale too. A valid fulfillment
advances the shooter state machine and opens settlement for the roll.
*/
func (te *tableEngine) FulfillRoll(requestID string, rawValues [2]uint64) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	seriesID, exist := te.pendingRolls[requestID]
	if !exist {
		return ErrTableStaleRollFulfillment
	}
	delete(te.pendingRolls, requestID)

	shooter := te.table.State.ShooterState
	if shooter == nil || shooter.SeriesID != seriesID {
		return ErrTableStaleRollFulfillment
	}

	roll := DiceRoll{
		RequestID:  requestID,
		SeriesID:   seriesID,
		Die1:       DieValue(rawValues[0]),
		Die2:       DieValue(rawValues[1]),
		Sequence:   te.table.State.RollSequence + 1,
		SeriesRoll: shooter.RollCount + 1,
		RolledAt:   time.Now().Unix(),
	}
	roll.Total = roll.Die1 + roll.Die2

	outcome, err := shooter.ApplyRoll(roll)
	if err != nil {
		return err
	}

	te.table.State.RollSequence = roll.Sequence
	te.table.State.LastRoll = &roll
	te.recordShooterRoll(shooter.ShooterID, outcome)
	te.startRollCooldown()

	idx := te.table.State.Ledger.ActiveIndex
	te.table.State.PendingSettlement = newPendingSettlement(outcome, idx.Page(0, idx.Count()))
	te.table.State.Status = TableStateStatus(TableStateStatus_TableSettling)

	te.onRollApplied(te.table.ID, &roll)
	te.emitEvent("FulfillRoll", shooter.ShooterID)

	return te.settleBatch()
}

/*
ContinueSettlement drains the next batch of the pending settlement. It is safe
to call when nothing is pending; the scheduled auto-continuation uses the same
entry point as external drivers.
*/
func (te *tableEngine) ContinueSettlement() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.table.State.PendingSettlement == nil {
		return nil
	}
	return te.settleBatch()
}

// finishSettlement closes out a fully drained settlement. Caller holds the lock.
func (te *tableEngine) finishSettlement(ps *PendingSettlement) {
	te.table.State.PendingSettlement = nil

	if ps.Outcome != nil && ps.Outcome.SeriesEnded {
		shooter := te.table.State.ShooterState
		result := shooter.Archive(true)
		te.table.State.SeriesHistory = append(te.table.State.SeriesHistory, result)
		te.table.State.ShooterState = nil
		te.table.State.Status = TableStateStatus(TableStateStatus_TableStandby)

		te.onSeriesEnded(te.table.ID, result)
		te.emitTableStateEvent(TableStateEvent_SeriesEnded)
		te.prepareNextSeries()
	} else {
		te.table.State.Status = TableStateStatus(TableStateStatus_TablePlaying)
	}

	te.emitEvent("finishSettlement", "")
	te.emitTableStateEvent(TableStateEvent_RollSettled)
}

/*
prepareNextSeries arms the ready group so the table reopens once every seated
player is ready (or the timeout auto-readies the stragglers). Completion
rotates the dice to the next seat and starts the series.
*/
func (te *tableEngine) prepareNextSeries() {
	if len(te.table.State.PlayerStates) == 0 || te.isReleased {
		return
	}

	te.rg.Stop()
	te.rg.OnCompleted(func(rg *syncsaga.ReadyGroup) {
		// ready completion can fire from inside a Ready call that already
		// holds the engine lock, so the open happens on its own goroutine
		go func() {
			te.lock.Lock()
			if te.isReleased {
				te.lock.Unlock()
				return
			}
			shooterID := te.nextShooterID()
			te.lock.Unlock()

			if shooterID == "" {
				return
			}

			te.onReadyOpenNextSeries(te.table.ID, shooterID)
			if err := te.StartSeries(shooterID); err != nil {
				te.lock.Lock()
				te.emitErrorEvent("OnCompleted#StartSeries", shooterID, err)
				te.lock.Unlock()
			}
		}()
	})

	te.rg.ResetParticipants()
	for playerIdx := range te.table.State.PlayerStates {
		te.rg.Add(int64(playerIdx), false)
	}
	te.rg.Start()
}

// nextShooterID rotates the dice one seat past the previous shooter.
func (te *tableEngine) nextShooterID() string {
	playerCount := len(te.table.State.PlayerStates)
	if playerCount == 0 {
		return ""
	}
	idx := (te.lastShooterIdx + 1) % playerCount
	if idx < 0 {
		idx = 0
	}
	return te.table.State.PlayerStates[idx].PlayerID
}

func (te *tableEngine) startRollCooldown() {
	if te.options.RollCooldownSeconds <= 0 {
		return
	}

	te.isRollCooldown = true
	cooldown := time.Duration(te.options.RollCooldownSeconds) * time.Second
	if err := te.tbForRollCooldown.NewTask(cooldown, func(isCancelled bool) {
		if isCancelled {
			return
		}
		te.lock.Lock()
		defer te.lock.Unlock()
		te.isRollCooldown = false
	}); err != nil {
		te.isRollCooldown = false
	}
}
