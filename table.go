package crapstable

import (
	"encoding/json"
)

const (
	TableStateStatus_TableCreated  = "created"
	TableStateStatus_TableStandby  = "standby"
	TableStateStatus_TablePlaying  = "playing"
	TableStateStatus_TableSettling = "settling"
	TableStateStatus_TableClosed   = "closed"
)

const UnsetValue = -1

// maxTableBetAmount times the largest accepted payout numerator stays inside int64
const maxTableBetAmount = 1_000_000_000_000

type TableStateStatus string

type TableMeta struct {
	MinBetAmount    int64       `json:"min_bet_amount"`
	MaxBetAmount    int64       `json:"max_bet_amount"`
	MaxOddsMultiple int64       `json:"max_odds_multiple"`
	Payouts         PayoutTable `json:"payouts"`
}

type TablePlayerState struct {
	PlayerID       string                    `json:"player_id"`
	IsIn           bool                      `json:"is_in"`
	JoinedAt       int64                     `json:"joined_at"`
	GameStatistics TablePlayerGameStatistics `json:"game_statistics"`
}

type TableState struct {
	Status            TableStateStatus    `json:"status"`
	StartAt           int64               `json:"start_at"`
	PlayerStates      []*TablePlayerState `json:"player_states"`
	ShooterState      *ShooterState       `json:"shooter_state"`
	Ledger            *BetLedger          `json:"ledger"`
	LastRoll          *DiceRoll           `json:"last_roll"`
	RollSequence      int                 `json:"roll_sequence"`
	SeriesCount       int                 `json:"series_count"`
	SeriesHistory     []*SeriesResult     `json:"series_history"`
	PendingSettlement *PendingSettlement  `json:"pending_settlement"`
}

type Table struct {
	ID           string      `json:"id"`
	Meta         TableMeta   `json:"meta"`
	State        *TableState `json:"state"`
	UpdateAt     int64       `json:"update_at"`     // Last update timestamp
	UpdateSerial int         `json:"update_serial"` // Incremental update counter
}

func (t *Table) GetJSON() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FindPlayerIdx finds player index by playerID
func (t *Table) FindPlayerIdx(playerID string) int {
	for i, playerState := range t.State.PlayerStates {
		if playerState.PlayerID == playerID {
			return i
		}
	}
	return UnsetValue
}

// CurrentPhase returns the live phase; idle whenever no series is active.
func (t *Table) CurrentPhase() GamePhase {
	if t.State.ShooterState == nil {
		return GamePhase_Idle
	}
	return t.State.ShooterState.Phase
}

// CurrentPoint returns the established point, 0 when none.
func (t *Table) CurrentPoint() int {
	if t.State.ShooterState == nil {
		return 0
	}
	return t.State.ShooterState.Point
}

func (t *Table) CurrentShooterID() string {
	if t.State.ShooterState == nil {
		return ""
	}
	return t.State.ShooterState.ShooterID
}

func (t *Table) CurrentSeriesID() string {
	if t.State.ShooterState == nil {
		return ""
	}
	return t.State.ShooterState.SeriesID
}

// Clone creates a deep copy of the table
func (t *Table) Clone() (*Table, error) {
	jsonData, err := t.GetJSON()
	if err != nil {
		return nil, err
	}

	newTable := &Table{}
	err = json.Unmarshal([]byte(jsonData), newTable)
	if err != nil {
		return nil, err
	}

	return newTable, nil
}
