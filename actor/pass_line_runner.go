package actor

import (
	"github.com/d-protocol/crapstable"
)

/*
PassLineRunner is a minimal automated player: it readies up between series and
keeps a flat pass-line bet working on every come-out.
*/
type PassLineRunner struct {
	actor  Actor
	amount int64
}

func NewPassLineRunner(amount int64) *PassLineRunner {
	return &PassLineRunner{
		amount: amount,
	}
}

func (r *PassLineRunner) SetActor(a Actor) {
	r.actor = a
}

func (r *PassLineRunner) UpdateTableState(t *crapstable.Table) error {
	tableEngine := r.actor.GetTableEngine()
	playerID := r.actor.PlayerID()

	switch t.State.Status {
	case crapstable.TableStateStatus(crapstable.TableStateStatus_TableStandby):
		return tableEngine.PlayerReady(playerID)

	case crapstable.TableStateStatus(crapstable.TableStateStatus_TablePlaying):
		if t.CurrentPhase() != crapstable.GamePhase_ComeOut {
			return nil
		}

		summary, err := tableEngine.PlayerSummary(playerID)
		if err != nil {
			return err
		}
		if summary.HasBet(crapstable.BetType_Pass) {
			return nil
		}

		err = tableEngine.PlayerPlaceBet(playerID, crapstable.BetType_Pass, r.amount)
		if err != nil && err != crapstable.ErrLedgerDuplicateActiveBet {
			return err
		}
	}

	return nil
}
