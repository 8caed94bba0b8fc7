package crapstable

const (
	BetResult_Won    = "won"
	BetResult_Lost   = "lost"
	BetResult_Pushed = "pushed"
)

/*
TableBetAction is the structured notification emitted whenever a player places,
adds odds to, or removes a bet.
*/
type TableBetAction struct {
	TableID  string  `json:"table_id"`
	SeriesID string  `json:"series_id"`
	PlayerID string  `json:"player_id"`
	Action   string  `json:"action"` // place / place_odds / remove
	BetType  BetType `json:"bet_type"`
	Amount   int64   `json:"amount"`
	Point    int     `json:"point"`
	UpdateAt int64   `json:"update_at"`
}

/*
BetResolution is the structured notification emitted once per settled bet.
Exactly one of won/lost/pushed applies: a win pays stake plus profit, a push
returns the stake, a loss pays zero.
*/
type BetResolution struct {
	ID         string  `json:"id"`
	TableID    string  `json:"table_id"`
	SeriesID   string  `json:"series_id"`
	PlayerID   string  `json:"player_id"`
	BetType    BetType `json:"bet_type"`
	Amount     int64   `json:"amount"`
	Payout     int64   `json:"payout"`
	Result     string  `json:"result"`
	RollNumber int     `json:"roll_number"`
	UpdateAt   int64   `json:"update_at"`
}

type TableSetting struct {
	TableID     string       `json:"table_id"`
	Meta        TableMeta    `json:"table_meta"`
	JoinPlayers []JoinPlayer `json:"join_players"`
}

type JoinPlayer struct {
	PlayerID string `json:"player_id"`
}

// NewDefaultTableMeta returns playable limits with the library payout table.
func NewDefaultTableMeta() TableMeta {
	return TableMeta{
		MinBetAmount:    1,
		MaxBetAmount:    1_000_000,
		MaxOddsMultiple: 3,
		Payouts:         NewDefaultPayoutTable(),
	}
}
