package web

import (
	"net/http"
	"time"

	"minicasino/models"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// Money is an amount rendered both as cents and as a two-decimal string
type Money struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

func moneyOf(cents int64) Money {
	return Money{Cents: cents, Display: models.FormatAmount(cents)}
}

type indexResponse struct {
	Authenticated bool              `json:"authenticated"`
	Handle        string            `json:"handle,omitempty"`
	Balance       *Money            `json:"balance,omitempty"`
	Games         []models.GameKind `json:"games"`
	Flash         *Flash            `json:"flash,omitempty"`
}

type formPageResponse struct {
	Game    models.GameKind `json:"game,omitempty"`
	Choices []string        `json:"choices,omitempty"`
	Balance *Money          `json:"balance,omitempty"`
	Flash   *Flash          `json:"flash,omitempty"`
}

type depositResponse struct {
	Amount  Money `json:"amount"`
	Balance Money `json:"balance"`
}

type roundResponse struct {
	RoundID    uuid.UUID       `json:"round_id"`
	Game       models.GameKind `json:"game"`
	Outcome    string          `json:"outcome"`
	Choice     string          `json:"choice,omitempty"`
	Won        bool            `json:"won"`
	Wager      Money           `json:"wager"`
	NetChange  Money           `json:"net_change"`
	Multiplier int64           `json:"multiplier"`
	Balance    Money           `json:"balance"`
}

func newRoundResponse(result *models.RoundResult) roundResponse {
	return roundResponse{
		RoundID:    result.RoundID,
		Game:       result.Game,
		Outcome:    result.Outcome,
		Choice:     result.Choice,
		Won:        result.Won,
		Wager:      moneyOf(result.Wager),
		NetChange:  moneyOf(result.NetChange),
		Multiplier: result.Multiplier,
		Balance:    moneyOf(result.NewBalance),
	}
}

type historyEntry struct {
	RoundID    uuid.UUID       `json:"round_id"`
	Game       models.GameKind `json:"game"`
	Outcome    string          `json:"outcome"`
	Choice     string          `json:"choice,omitempty"`
	Won        bool            `json:"won"`
	Wager      Money           `json:"wager"`
	NetChange  Money           `json:"net_change"`
	Multiplier int64           `json:"multiplier"`
	PlayedAt   time.Time       `json:"played_at"`
}

type historyResponse struct {
	Rounds []historyEntry `json:"rounds"`
}

func newHistoryResponse(rounds []*models.GameRound) historyResponse {
	entries := make([]historyEntry, 0, len(rounds))
	for _, round := range rounds {
		entries = append(entries, historyEntry{
			RoundID:    round.ID,
			Game:       round.Game,
			Outcome:    round.Outcome,
			Choice:     round.Choice,
			Won:        round.Won,
			Wager:      moneyOf(round.Wager),
			NetChange:  moneyOf(round.NetChange),
			Multiplier: round.Multiplier,
			PlayedAt:   round.CreatedAt,
		})
	}
	return historyResponse{Rounds: entries}
}

type balanceEntry struct {
	ID              int64                  `json:"id"`
	TransactionType models.TransactionType `json:"transaction_type"`
	Before          Money                  `json:"before"`
	After           Money                  `json:"after"`
	Change          Money                  `json:"change"`
	RoundID         *uuid.UUID             `json:"round_id,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

type balanceHistoryResponse struct {
	Entries []balanceEntry `json:"entries"`
}

func newBalanceHistoryResponse(history []*models.BalanceHistory) balanceHistoryResponse {
	entries := make([]balanceEntry, 0, len(history))
	for _, h := range history {
		entries = append(entries, balanceEntry{
			ID:              h.ID,
			TransactionType: h.TransactionType,
			Before:          moneyOf(h.BalanceBefore),
			After:           moneyOf(h.BalanceAfter),
			Change:          moneyOf(h.ChangeAmount),
			RoundID:         h.RelatedRoundID,
			CreatedAt:       h.CreatedAt,
		})
	}
	return balanceHistoryResponse{Entries: entries}
}

type errorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Status: status, Error: message})
}
