package crapstable

import (
	"errors"
	"sync"
	"time"

	"github.com/d-protocol/syncsaga"
	"github.com/d-protocol/timebank"
)

var (
	ErrTableInvalidCreateSetting = errors.New("table: invalid create table setting")
	ErrTablePlayerNotFound       = errors.New("table: player not found")
	ErrTablePlayerInvalidAction  = errors.New("table: player invalid action")
	ErrTablePlayerHasActiveBets  = errors.New("table: player still holds active bets")
	ErrTableClosed               = errors.New("table: table is closed")
	ErrTableSeriesAlreadyActive  = errors.New("table: a series is already active")
	ErrTableNoActiveSeries       = errors.New("table: no active series")
	ErrTableSettlementInProgress = errors.New("table: settlement in progress")
	ErrTableRollInFlight         = errors.New("table: a roll request is already in flight")
	ErrTableRollCooldown         = errors.New("table: roll cooldown has not elapsed")
	ErrTableStaleRollFulfillment = errors.New("table: stale or unknown roll fulfillment")
	ErrTableBackendNotConfigured = errors.New("table: backend not configured")
)

type TableEngineOpt func(*tableEngine)

type TableEngineOptions struct {
	RollCooldownSeconds        int // minimum seconds between roll requests
	SettlementContinueInterval int // seconds before an unfinished batch auto-continues
	SettlementBatchSize        int // max (player, stage) visits per settlement call
	ReadyGroupTimeout          int // seconds before unready players are auto-readied
}

func NewTableEngineOptions() *TableEngineOptions {
	return &TableEngineOptions{
		RollCooldownSeconds:        3,
		SettlementContinueInterval: 1,
		SettlementBatchSize:        64,
		ReadyGroupTimeout:          17,
	}
}

type TableEngineCallbacks struct {
	OnTableUpdated        func(table *Table)
	OnTableErrorUpdated   func(table *Table, err error)
	OnTableStateUpdated   func(event string, table *Table)
	OnBetPlaced           func(action TableBetAction)
	OnBetResolved         func(resolution BetResolution)
	OnRollApplied         func(tableID string, roll *DiceRoll)
	OnSeriesEnded         func(tableID string, result *SeriesResult)
	OnReadyOpenNextSeries func(tableID string, shooterID string)
}

func NewTableEngineCallbacks() *TableEngineCallbacks {
	return &TableEngineCallbacks{
		OnTableUpdated:        func(table *Table) {},
		OnTableErrorUpdated:   func(table *Table, err error) {},
		OnTableStateUpdated:   func(event string, table *Table) {},
		OnBetPlaced:           func(action TableBetAction) {},
		OnBetResolved:         func(resolution BetResolution) {},
		OnRollApplied:         func(tableID string, roll *DiceRoll) {},
		OnSeriesEnded:         func(tableID string, result *SeriesResult) {},
		OnReadyOpenNextSeries: func(tableID string, shooterID string) {},
	}
}

type TableEngine interface {
	// Events
	OnTableUpdated(fn func(table *Table))
	OnTableErrorUpdated(fn func(table *Table, err error))
	OnTableStateUpdated(fn func(event string, table *Table))
	OnBetPlaced(fn func(action TableBetAction))
	OnBetResolved(fn func(resolution BetResolution))
	OnRollApplied(fn func(tableID string, roll *DiceRoll))
	OnSeriesEnded(fn func(tableID string, result *SeriesResult))
	OnReadyOpenNextSeries(fn func(tableID string, shooterID string))

	// Other Actions
	ReleaseTable() error

	// Table Actions
	GetTable() *Table
	CreateTable(tableSetting TableSetting) (*Table, error)
	CloseTable() error

	// Series Actions
	StartSeries(shooterID string) error
	EndSeries() error
	RequestRoll() (string, error)
	FulfillRoll(requestID string, rawValues [2]uint64) error
	ContinueSettlement() error

	// Player Table Actions
	PlayerJoin(joinPlayer JoinPlayer) error
	PlayersLeave(playerIDs []string) error
	PlayerReady(playerID string) error

	// Player Bet Actions
	PlayerPlaceBet(playerID string, betType BetType, amount int64) error
	PlayerPlaceOddsBet(playerID string, baseBetType BetType, oddsAmount int64) error
	PlayerRemoveBet(playerID string, betType BetType) error
	PlayerClaimPendingPayout(playerID string) (int64, error)

	// Queries
	PlayerSummary(playerID string) (*PlayerBetSummary, error)
	PlayerActiveBets(playerID string) []*Bet
	ListActivePlayers(offset, limit int) []string
}

type tableEngine struct {
	lock              sync.Mutex
	options           *TableEngineOptions
	table             *Table
	vaultBackend      VaultBackend
	randomnessBackend RandomnessBackend
	rg                *syncsaga.ReadyGroup
	tbForSettlement   *timebank.TimeBank
	tbForRollCooldown *timebank.TimeBank
	pendingRolls      map[string]string // request handle -> series id
	isRollCooldown    bool
	isReleased        bool
	lastShooterIdx    int

	onTableUpdated        func(table *Table)
	onTableErrorUpdated   func(table *Table, err error)
	onTableStateUpdated   func(event string, table *Table)
	onBetPlaced           func(action TableBetAction)
	onBetResolved         func(resolution BetResolution)
	onRollApplied         func(tableID string, roll *DiceRoll)
	onSeriesEnded         func(tableID string, result *SeriesResult)
	onReadyOpenNextSeries func(tableID string, shooterID string)
}

func NewTableEngine(options *TableEngineOptions, opts ...TableEngineOpt) TableEngine {
	callbacks := NewTableEngineCallbacks()
	te := &tableEngine{
		options: options,
		rg: syncsaga.NewReadyGroup(
			syncsaga.WithTimeout(options.ReadyGroupTimeout, func(rg *syncsaga.ReadyGroup) {
				// Auto Ready By Default
				states := rg.GetParticipantStates()
				for playerIdx, isReady := range states {
					if !isReady {
						rg.Ready(playerIdx)
					}
				}
			}),
		),
		tbForSettlement:       timebank.NewTimeBank(),
		tbForRollCooldown:     timebank.NewTimeBank(),
		pendingRolls:          make(map[string]string),
		lastShooterIdx:        UnsetValue,
		onTableUpdated:        callbacks.OnTableUpdated,
		onTableErrorUpdated:   callbacks.OnTableErrorUpdated,
		onTableStateUpdated:   callbacks.OnTableStateUpdated,
		onBetPlaced:           callbacks.OnBetPlaced,
		onBetResolved:         callbacks.OnBetResolved,
		onRollApplied:         callbacks.OnRollApplied,
		onSeriesEnded:         callbacks.OnSeriesEnded,
		onReadyOpenNextSeries: callbacks.OnReadyOpenNextSeries,
	}

	for _, opt := range opts {
		opt(te)
	}

	return te
}

func WithVaultBackend(vb VaultBackend) TableEngineOpt {
	return func(te *tableEngine) {
		te.vaultBackend = vb
	}
}

func WithRandomnessBackend(rb RandomnessBackend) TableEngineOpt {
	return func(te *tableEngine) {
		te.randomnessBackend = rb
	}
}

func (te *tableEngine) OnTableUpdated(fn func(*Table)) {
	te.onTableUpdated = fn
}

func (te *tableEngine) OnTableErrorUpdated(fn func(*Table, error)) {
	te.onTableErrorUpdated = fn
}

func (te *tableEngine) OnTableStateUpdated(fn func(string, *Table)) {
	te.onTableStateUpdated = fn
}

func (te *tableEngine) OnBetPlaced(fn func(TableBetAction)) {
	te.onBetPlaced = fn
}

func (te *tableEngine) OnBetResolved(fn func(BetResolution)) {
	te.onBetResolved = fn
}

func (te *tableEngine) OnRollApplied(fn func(string, *DiceRoll)) {
	te.onRollApplied = fn
}

func (te *tableEngine) OnSeriesEnded(fn func(string, *SeriesResult)) {
	te.onSeriesEnded = fn
}

func (te *tableEngine) OnReadyOpenNextSeries(fn func(string, string)) {
	te.onReadyOpenNextSeries = fn
}

func (te *tableEngine) ReleaseTable() error {
	te.isReleased = true
	return nil
}

func (te *tableEngine) GetTable() *Table {
	return te.table
}

func (te *tableEngine) CreateTable(tableSetting TableSetting) (*Table, error) {
	meta := tableSetting.Meta
	if meta.MinBetAmount <= 0 || meta.MaxBetAmount < meta.MinBetAmount || meta.MaxOddsMultiple < 1 {
		return nil, ErrTableInvalidCreateSetting
	}
	// odds bets can reach MaxBetAmount*MaxOddsMultiple, so the limit scales down
	if meta.MaxBetAmount > maxTableBetAmount/meta.MaxOddsMultiple {
		return nil, ErrTableInvalidCreateSetting
	}
	if err := meta.Payouts.Validate(); err != nil {
		return nil, err
	}

	if te.vaultBackend == nil {
		te.vaultBackend = NewNativeVaultBackend()
	}
	if te.randomnessBackend == nil {
		te.randomnessBackend = NewNativeRandomnessBackend()
	}
	te.randomnessBackend.OnRollFulfilled(func(requestID string, rawValues [2]uint64) {
		if err := te.FulfillRoll(requestID, rawValues); err != nil {
			te.emitErrorEvent("OnRollFulfilled#FulfillRoll", "", err)
		}
	})

	table := &Table{
		ID:   tableSetting.TableID,
		Meta: meta,
	}
	state := TableState{
		Status:        TableStateStatus(TableStateStatus_TableCreated),
		StartAt:       time.Now().Unix(),
		PlayerStates:  make([]*TablePlayerState, 0),
		Ledger:        NewBetLedger(),
		SeriesHistory: make([]*SeriesResult, 0),
	}
	table.State = &state
	te.table = table

	te.emitEvent("CreateTable", "")
	te.emitTableStateEvent(TableStateEvent_Created)

	for _, joinPlayer := range tableSetting.JoinPlayers {
		if err := te.addPlayer(joinPlayer.PlayerID); err != nil {
			return nil, err
		}
	}

	te.table.State.Status = TableStateStatus(TableStateStatus_TableStandby)

	return te.table, nil
}

/*
CloseTable closes the table
  - Use cases: Forced close, auto close due to timeout, normal close
*/
func (te *tableEngine) CloseTable() error {
	te.lock.Lock()
	defer te.lock.Unlock()

	te.table.State.Status = TableStateStatus(TableStateStatus_TableClosed)
	te.ReleaseTable()

	te.emitEvent("CloseTable", "")
	te.emitTableStateEvent(TableStateEvent_StatusUpdated)
	return nil
}

/*
PlayerJoin seats a player at the table. Joining is idempotent; a returning
player keeps their statistics.
*/
func (te *tableEngine) PlayerJoin(joinPlayer JoinPlayer) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.isClosed() {
		return ErrTableClosed
	}

	if err := te.addPlayer(joinPlayer.PlayerID); err != nil {
		return err
	}

	te.emitEvent("PlayerJoin", joinPlayer.PlayerID)
	return nil
}

/*
PlayersLeave removes players from the table. A player holding active bets, a
queued payout claim, or the shooter role must resolve those first.
*/
func (te *tableEngine) PlayersLeave(playerIDs []string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	ledger := te.table.State.Ledger
	for _, playerID := range playerIDs {
		if te.table.FindPlayerIdx(playerID) == UnsetValue {
			return ErrTablePlayerNotFound
		}
		if summary := ledger.FindSummary(playerID); summary != nil && summary.ActiveBetCount > 0 {
			return ErrTablePlayerHasActiveBets
		}
		if ledger.PendingClaims[playerID] > 0 {
			return ErrTablePlayerHasActiveBets
		}
		if te.table.CurrentShooterID() == playerID {
			return ErrTablePlayerInvalidAction
		}
	}

	for _, playerID := range playerIDs {
		playerIdx := te.table.FindPlayerIdx(playerID)
		te.table.State.PlayerStates = append(
			te.table.State.PlayerStates[:playerIdx],
			te.table.State.PlayerStates[playerIdx+1:]...,
		)
	}

	te.emitEvent("PlayersLeave", "")
	te.emitTableStateEvent(TableStateEvent_PlayersLeave)
	return nil
}

/*
PlayerReady marks a player ready for the next series. When every seated player
is ready (or the ready-group timeout auto-readies the rest), the engine opens
the next series with the next shooter in seat order.
*/
func (te *tableEngine) PlayerReady(playerID string) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	playerIdx := te.table.FindPlayerIdx(playerID)
	if playerIdx == UnsetValue {
		return ErrTablePlayerNotFound
	}

	if isReady, exist := te.rg.GetParticipantStates()[int64(playerIdx)]; exist && !isReady {
		te.rg.Ready(int64(playerIdx))
	}

	return nil
}

func (te *tableEngine) PlayerPlaceBet(playerID string, betType BetType, amount int64) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if err := te.validateBetAction(playerID); err != nil {
		return err
	}

	if !betType.IsValid() || betType.IsOdds() {
		return ErrLedgerInvalidBetType
	}
	if amount < te.table.Meta.MinBetAmount || amount > te.table.Meta.MaxBetAmount {
		return ErrLedgerAmountOutOfBounds
	}

	shooter := te.table.State.ShooterState
	if !betType.EligibleInPhase(te.table.CurrentPhase()) {
		return ErrLedgerIneligiblePhase
	}
	if (betType.IsBonus() || betType.IsRepeater()) && !shooter.IsFresh() {
		return ErrLedgerSeriesNotFresh
	}

	ledger := te.table.State.Ledger
	if ledger.FindBet(playerID, betType) != nil {
		return ErrLedgerDuplicateActiveBet
	}

	if err := te.vaultBackend.Debit(playerID, amount); err != nil {
		return err
	}
	if err := ledger.RecordBet(playerID, betType, amount, 0, time.Now().Unix()); err != nil {
		// debit already happened; undo it so the rejection leaves no trace
		if creditErr := te.vaultBackend.Credit(playerID, amount); creditErr != nil {
			ledger.AddPendingClaim(playerID, amount)
			te.emitErrorEvent("PlayerPlaceBet#Credit", playerID, creditErr)
		}
		return err
	}

	te.recordBetPlaced(playerID, amount, false)
	te.emitBetActionEvent(playerID, "place", betType, amount, 0)
	te.emitEvent("PlayerPlaceBet", playerID)
	return nil
}

/*
PlayerPlaceOddsBet attaches true-odds backing to an active line bet. The pin
comes from the base bet for come-style bets and from the table point
otherwise, and the odds amount is capped at MaxOddsMultiple times the base
wager.
*/
func (te *tableEngine) PlayerPlaceOddsBet(playerID string, baseBetType BetType, oddsAmount int64) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if err := te.validateBetAction(playerID); err != nil {
		return err
	}

	oddsType, ok := OddsBetType(baseBetType)
	if !ok {
		return ErrLedgerInvalidBetType
	}

	ledger := te.table.State.Ledger
	baseBet := ledger.FindBet(playerID, baseBetType)
	if baseBet == nil {
		return ErrLedgerMissingBaseBet
	}

	point := baseBet.Point
	if !baseBetType.IsComeStyle() {
		point = te.table.CurrentPoint()
	}
	if point == 0 {
		return ErrLedgerMissingPoint
	}

	if oddsAmount <= 0 || oddsAmount > baseBet.Amount*te.table.Meta.MaxOddsMultiple {
		return ErrLedgerOddsOverCap
	}
	if ledger.FindBet(playerID, oddsType) != nil {
		return ErrLedgerDuplicateActiveBet
	}

	if err := te.vaultBackend.Debit(playerID, oddsAmount); err != nil {
		return err
	}
	if err := ledger.RecordBet(playerID, oddsType, oddsAmount, point, time.Now().Unix()); err != nil {
		if creditErr := te.vaultBackend.Credit(playerID, oddsAmount); creditErr != nil {
			ledger.AddPendingClaim(playerID, oddsAmount)
			te.emitErrorEvent("PlayerPlaceOddsBet#Credit", playerID, creditErr)
		}
		return err
	}

	te.recordBetPlaced(playerID, oddsAmount, true)
	te.emitBetActionEvent(playerID, "place_odds", oddsType, oddsAmount, point)
	te.emitEvent("PlayerPlaceOddsBet", playerID)
	return nil
}

/*
PlayerRemoveBet takes an active bet down and refunds the stake. The catalog
decides removability: engaged line bets stay up, bonus bets lock after the
first roll.
*/
func (te *tableEngine) PlayerRemoveBet(playerID string, betType BetType) error {
	te.lock.Lock()
	defer te.lock.Unlock()

	if err := te.validateBetAction(playerID); err != nil {
		return err
	}

	ledger := te.table.State.Ledger
	bet := ledger.FindBet(playerID, betType)
	if bet == nil {
		return ErrLedgerBetNotFound
	}

	shooter := te.table.State.ShooterState
	fresh := shooter != nil && shooter.IsFresh()
	if !betType.RemovableIn(te.table.CurrentPhase(), bet.Point, fresh) {
		return ErrLedgerBetNotRemovable
	}

	cleared, err := ledger.ClearBet(playerID, betType)
	if err != nil {
		return err
	}
	if err := te.vaultBackend.Credit(playerID, cleared.Amount); err != nil {
		ledger.AddPendingClaim(playerID, cleared.Amount)
		te.emitErrorEvent("PlayerRemoveBet#Credit", playerID, err)
	}

	te.recordBetRemoved(playerID)
	te.emitBetActionEvent(playerID, "remove", betType, cleared.Amount, cleared.Point)
	te.emitEvent("PlayerRemoveBet", playerID)
	return nil
}

/*
PlayerClaimPendingPayout retries the vault credit for a payout that failed to
transfer during settlement.
*/
func (te *tableEngine) PlayerClaimPendingPayout(playerID string) (int64, error) {
	te.lock.Lock()
	defer te.lock.Unlock()

	ledger := te.table.State.Ledger
	amount, err := ledger.TakePendingClaim(playerID)
	if err != nil {
		return 0, err
	}

	if err := te.vaultBackend.Credit(playerID, amount); err != nil {
		ledger.AddPendingClaim(playerID, amount)
		return 0, err
	}

	te.emitEvent("PlayerClaimPendingPayout", playerID)
	return amount, nil
}

func (te *tableEngine) PlayerSummary(playerID string) (*PlayerBetSummary, error) {
	te.lock.Lock()
	defer te.lock.Unlock()

	if te.table.FindPlayerIdx(playerID) == UnsetValue {
		return nil, ErrTablePlayerNotFound
	}

	summary := te.table.State.Ledger.FindSummary(playerID)
	if summary == nil {
		return &PlayerBetSummary{PlayerID: playerID}, nil
	}

	clone := *summary
	return &clone, nil
}

func (te *tableEngine) PlayerActiveBets(playerID string) []*Bet {
	te.lock.Lock()
	defer te.lock.Unlock()

	bets := te.table.State.Ledger.ActiveBets(playerID)
	clones := make([]*Bet, 0, len(bets))
	for _, bet := range bets {
		clone := *bet
		clones = append(clones, &clone)
	}
	return clones
}

// ListActivePlayers pages over the active-player index for batch tooling.
func (te *tableEngine) ListActivePlayers(offset, limit int) []string {
	te.lock.Lock()
	defer te.lock.Unlock()

	return te.table.State.Ledger.ActiveIndex.Page(offset, limit)
}

func (te *tableEngine) addPlayer(playerID string) error {
	if playerID == "" {
		return ErrTableInvalidCreateSetting
	}
	if te.table.FindPlayerIdx(playerID) != UnsetValue {
		return nil
	}

	te.table.State.PlayerStates = append(te.table.State.PlayerStates, &TablePlayerState{
		PlayerID:       playerID,
		IsIn:           true,
		JoinedAt:       time.Now().Unix(),
		GameStatistics: NewPlayerGameStatistics(),
	})
	return nil
}

func (te *tableEngine) validateBetAction(playerID string) error {
	if te.isClosed() {
		return ErrTableClosed
	}
	if te.table.FindPlayerIdx(playerID) == UnsetValue {
		return ErrTablePlayerNotFound
	}
	if te.table.State.PendingSettlement != nil {
		return ErrTableSettlementInProgress
	}
	if te.table.State.ShooterState == nil {
		return ErrTableNoActiveSeries
	}
	return nil
}

func (te *tableEngine) isClosed() bool {
	return te.isReleased || te.table.State.Status == TableStateStatus(TableStateStatus_TableClosed)
}
