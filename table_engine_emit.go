package crapstable

import (
	"time"

	"github.com/d-protocol/timebank"
)

const (
	TableStateEvent_Created       = "Created"
	TableStateEvent_StatusUpdated = "StatusUpdated"
	TableStateEvent_PlayersLeave  = "PlayersLeave"
	TableStateEvent_RollSettled   = "RollSettled"
	TableStateEvent_SeriesEnded   = "SeriesEnded"
)

func (te *tableEngine) emitEvent(eventName string, playerID string) {
	te.table.UpdateAt = time.Now().Unix()
	te.table.UpdateSerial++
	te.onTableUpdated(te.table)
}

func (te *tableEngine) emitErrorEvent(eventName string, playerID string, err error) {
	te.table.UpdateAt = time.Now().Unix()
	te.table.UpdateSerial++
	te.onTableErrorUpdated(te.table, err)
}

func (te *tableEngine) emitTableStateEvent(eventName string) {
	te.onTableStateUpdated(eventName, te.table)
}

func (te *tableEngine) emitBetActionEvent(playerID string, action string, betType BetType, amount int64, point int) {
	te.onBetPlaced(TableBetAction{
		TableID:  te.table.ID,
		SeriesID: te.table.CurrentSeriesID(),
		PlayerID: playerID,
		Action:   action,
		BetType:  betType,
		Amount:   amount,
		Point:    point,
		UpdateAt: time.Now().Unix(),
	})
}

func (te *tableEngine) emitBetResolvedEvent(resolution BetResolution) {
	te.onBetResolved(resolution)
}

// delay schedules fn on the given time bank; errors from fn surface as error events.
func (te *tableEngine) delay(tb *timebank.TimeBank, interval int, fn func() error) error {
	var bufErr error
	err := tb.NewTask(time.Duration(interval)*time.Second, func(isCancelled bool) {
		if isCancelled {
			return
		}
		if err := fn(); err != nil {
			bufErr = err
			te.emitErrorEvent("delay", "", err)
		}
	})
	if err != nil {
		return err
	}
	return bufErr
}
