package actor

import (
	"testing"

	"github.com/d-protocol/crapstable"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualRandomness struct {
	onRollFulfilled func(requestID string, rawValues [2]uint64)
}

func (m *manualRandomness) OnRollFulfilled(fn func(requestID string, rawValues [2]uint64)) {
	m.onRollFulfilled = fn
}

func (m *manualRandomness) RequestRoll(seriesID string) (string, error) {
	return uuid.New().String(), nil
}

func TestPassLineRunnerPlacesBetOnComeOut(t *testing.T) {
	vault := crapstable.NewNativeVaultBackend()
	vault.Deposit("p1", 1_000)

	options := crapstable.NewTableEngineOptions()
	options.RollCooldownSeconds = 0
	tableEngine := crapstable.NewTableEngine(options,
		crapstable.WithVaultBackend(vault),
		crapstable.WithRandomnessBackend(&manualRandomness{}),
	)
	_, err := tableEngine.CreateTable(crapstable.TableSetting{
		TableID:     uuid.New().String(),
		Meta:        crapstable.NewDefaultTableMeta(),
		JoinPlayers: []crapstable.JoinPlayer{{PlayerID: "p1"}},
	})
	require.NoError(t, err)
	require.NoError(t, tableEngine.StartSeries("p1"))

	runner := NewPassLineRunner(25)
	NewActor(tableEngine, "p1", runner)

	require.NoError(t, runner.UpdateTableState(tableEngine.GetTable()))

	summary, err := tableEngine.PlayerSummary("p1")
	require.NoError(t, err)
	assert.True(t, summary.HasBet(crapstable.BetType_Pass))
	assert.Equal(t, int64(975), vault.BalanceOf("p1"))

	// a second snapshot leaves the working bet alone
	require.NoError(t, runner.UpdateTableState(tableEngine.GetTable()))
	summary, err = tableEngine.PlayerSummary("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(25), summary.TotalAtRisk)
}
