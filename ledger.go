package crapstable

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrLedgerInvalidBetType     = errors.New("ledger: invalid bet type")
	ErrLedgerAmountOutOfBounds  = errors.New("ledger: bet amount out of bounds")
	ErrLedgerDuplicateActiveBet = errors.New("ledger: bet type already active for player")
	ErrLedgerBetNotFound        = errors.New("ledger: no active bet for player and bet type")
	ErrLedgerBetNotRemovable    = errors.New("ledger: bet type is not removable")
	ErrLedgerIneligiblePhase    = errors.New("ledger: bet type not allowed in current phase")
	ErrLedgerMissingBaseBet     = errors.New("ledger: odds bet requires an active base line bet")
	ErrLedgerMissingPoint       = errors.New("ledger: odds bet requires an established point")
	ErrLedgerOddsOverCap        = errors.New("ledger: odds amount exceeds allowed multiple of base bet")
	ErrLedgerNoPendingClaim     = errors.New("ledger: no pending payout claim")
	ErrLedgerSeriesNotFresh     = errors.New("ledger: bet type only allowed before the first roll of a series")
)

/*
Bet is one active wager. A (player, bet type) pair holds at most one active bet
at a time; Point is the number a come-style bet is pinned to (0 until the
following roll establishes it, and always 0 for bets that never pin).
*/
type Bet struct {
	PlayerID string  `json:"player_id"`
	Type     BetType `json:"type"`
	Amount   int64   `json:"amount"`
	Point    int     `json:"point"`
	PlacedAt int64   `json:"placed_at"`
	IsActive bool    `json:"is_active"`
}

/*
PlayerBetSummary is per-player aggregate bookkeeping. ActiveBetsBitmap has bit
i set exactly when bet type i is active, ActiveBetCount equals its popcount and
TotalAtRisk equals the sum of active amounts; the ledger maintains all three on
every mutation.
*/
type PlayerBetSummary struct {
	PlayerID         string `json:"player_id"`
	TotalAtRisk      int64  `json:"total_at_risk"`
	ActiveBetsBitmap uint64 `json:"active_bets_bitmap"`
	ActiveBetCount   int    `json:"active_bet_count"`
}

func (s *PlayerBetSummary) HasBet(bt BetType) bool {
	return s.ActiveBetsBitmap&(1<<uint(bt)) != 0
}

/*
ActivePlayerIndex is the set of players holding at least one active bet, kept
as an array plus index map so membership tests and removals are O(1)
(swap-with-last) while settlement can still paginate over a stable slice.
*/
type ActivePlayerIndex struct {
	PlayerIDs []string       `json:"player_ids"`
	Positions map[string]int `json:"positions"`
}

func NewActivePlayerIndex() *ActivePlayerIndex {
	return &ActivePlayerIndex{
		PlayerIDs: make([]string, 0),
		Positions: make(map[string]int),
	}
}

func (idx *ActivePlayerIndex) Contains(playerID string) bool {
	_, ok := idx.Positions[playerID]
	return ok
}

func (idx *ActivePlayerIndex) Add(playerID string) {
	if idx.Contains(playerID) {
		return
	}
	idx.Positions[playerID] = len(idx.PlayerIDs)
	idx.PlayerIDs = append(idx.PlayerIDs, playerID)
}

func (idx *ActivePlayerIndex) Remove(playerID string) {
	pos, ok := idx.Positions[playerID]
	if !ok {
		return
	}
	last := len(idx.PlayerIDs) - 1
	if pos != last {
		moved := idx.PlayerIDs[last]
		idx.PlayerIDs[pos] = moved
		idx.Positions[moved] = pos
	}
	idx.PlayerIDs = idx.PlayerIDs[:last]
	delete(idx.Positions, playerID)
}

func (idx *ActivePlayerIndex) Count() int {
	return len(idx.PlayerIDs)
}

// Page returns a copy of the index slice for external batch tooling.
func (idx *ActivePlayerIndex) Page(offset, limit int) []string {
	if offset < 0 || offset >= len(idx.PlayerIDs) || limit <= 0 {
		return []string{}
	}
	end := offset + limit
	if end > len(idx.PlayerIDs) {
		end = len(idx.PlayerIDs)
	}
	page := make([]string, end-offset)
	copy(page, idx.PlayerIDs[offset:end])
	return page
}

func betKey(playerID string, bt BetType) string {
	return fmt.Sprintf("%s#%d", playerID, int(bt))
}

/*
BetLedger stores active bets keyed by (player, bet type) together with the
per-player summaries and the active-player reverse index. It does pure
bookkeeping: validation against phase/shooter context and all vault movement
happen in the table engine, which mutates the ledger only through the methods
below so the summary invariants can never drift.
*/
type BetLedger struct {
	Bets          map[string]*Bet              `json:"bets"`
	Summaries     map[string]*PlayerBetSummary `json:"summaries"`
	ActiveIndex   *ActivePlayerIndex           `json:"active_index"`
	PendingClaims map[string]int64             `json:"pending_claims"`
}

func NewBetLedger() *BetLedger {
	return &BetLedger{
		Bets:          make(map[string]*Bet),
		Summaries:     make(map[string]*PlayerBetSummary),
		ActiveIndex:   NewActivePlayerIndex(),
		PendingClaims: make(map[string]int64),
	}
}

func (l *BetLedger) FindBet(playerID string, bt BetType) *Bet {
	return l.Bets[betKey(playerID, bt)]
}

func (l *BetLedger) FindSummary(playerID string) *PlayerBetSummary {
	return l.Summaries[playerID]
}

// RecordBet stores a validated, already-debited bet and updates bookkeeping.
func (l *BetLedger) RecordBet(playerID string, bt BetType, amount int64, point int, now int64) error {
	key := betKey(playerID, bt)
	if _, exists := l.Bets[key]; exists {
		return ErrLedgerDuplicateActiveBet
	}

	l.Bets[key] = &Bet{
		PlayerID: playerID,
		Type:     bt,
		Amount:   amount,
		Point:    point,
		PlacedAt: now,
		IsActive: true,
	}

	summary := l.Summaries[playerID]
	if summary == nil {
		summary = &PlayerBetSummary{PlayerID: playerID}
		l.Summaries[playerID] = summary
	}
	summary.ActiveBetsBitmap |= 1 << uint(bt)
	summary.ActiveBetCount = bits.OnesCount64(summary.ActiveBetsBitmap)
	summary.TotalAtRisk += amount

	l.ActiveIndex.Add(playerID)
	return nil
}

/*
ClearBet deletes a bet and rolls the summary back, removing the player from the
active index when no bets remain. It moves no value; payout handling belongs to
the settlement engine and must happen after this call so a collaborator can
never re-enter the ledger while a bet is half-cleared.
*/
func (l *BetLedger) ClearBet(playerID string, bt BetType) (*Bet, error) {
	key := betKey(playerID, bt)
	bet, ok := l.Bets[key]
	if !ok {
		return nil, ErrLedgerBetNotFound
	}
	delete(l.Bets, key)
	bet.IsActive = false

	summary := l.Summaries[playerID]
	if summary != nil {
		summary.ActiveBetsBitmap &^= 1 << uint(bt)
		summary.ActiveBetCount = bits.OnesCount64(summary.ActiveBetsBitmap)
		summary.TotalAtRisk -= bet.Amount
		if summary.ActiveBetCount == 0 {
			delete(l.Summaries, playerID)
			l.ActiveIndex.Remove(playerID)
		}
	}

	return bet, nil
}

// UpdateComePoint pins a come-style bet to the point its next roll established.
func (l *BetLedger) UpdateComePoint(playerID string, bt BetType, point int) error {
	bet, ok := l.Bets[betKey(playerID, bt)]
	if !ok {
		return ErrLedgerBetNotFound
	}
	bet.Point = point
	return nil
}

// ActiveBets lists a player's active bets in catalog order.
func (l *BetLedger) ActiveBets(playerID string) []*Bet {
	summary := l.Summaries[playerID]
	if summary == nil {
		return nil
	}
	bets := make([]*Bet, 0, summary.ActiveBetCount)
	for bt := BetType(0); bt < BetTypeCount; bt++ {
		if !summary.HasBet(bt) {
			continue
		}
		if bet := l.Bets[betKey(playerID, bt)]; bet != nil {
			bets = append(bets, bet)
		}
	}
	return bets
}

// AddPendingClaim queues a payout whose vault credit failed for later retry.
func (l *BetLedger) AddPendingClaim(playerID string, amount int64) {
	if amount <= 0 {
		return
	}
	l.PendingClaims[playerID] += amount
}

/*
TakePendingClaim removes and returns a player's queued payout. The caller must
re-queue it if the retried credit fails again.
*/
func (l *BetLedger) TakePendingClaim(playerID string) (int64, error) {
	amount, ok := l.PendingClaims[playerID]
	if !ok || amount <= 0 {
		return 0, ErrLedgerNoPendingClaim
	}
	delete(l.PendingClaims, playerID)
	return amount, nil
}
