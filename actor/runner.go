package actor

import (
	"github.com/d-protocol/crapstable"
)

/*
Runner reacts to table snapshots on behalf of one seated player. The host
drives it from its own goroutine with cloned snapshots; calling engine
methods from inside an engine callback is not supported.
*/
type Runner interface {
	SetActor(a Actor)
	UpdateTableState(t *crapstable.Table) error
}

// Actor binds a runner to the engine it acts through.
type Actor interface {
	GetTableEngine() crapstable.TableEngine
	PlayerID() string
}

type actor struct {
	tableEngine crapstable.TableEngine
	playerID    string
	runner      Runner
}

func NewActor(tableEngine crapstable.TableEngine, playerID string, runner Runner) Actor {
	a := &actor{
		tableEngine: tableEngine,
		playerID:    playerID,
		runner:      runner,
	}
	runner.SetActor(a)
	return a
}

func (a *actor) GetTableEngine() crapstable.TableEngine {
	return a.tableEngine
}

func (a *actor) PlayerID() string {
	return a.playerID
}
