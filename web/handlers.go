package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"minicasino/games"
	"minicasino/models"
	"minicasino/service"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const genericErrorMessage = "Something went wrong. Please try again."

// Health reports storage reachability
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		log.WithField("error", err).Warn("Health check failed")
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "unhealthy"})
		return
	}
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

// Index describes the visitor and the available games
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	resp := indexResponse{
		Games: models.GameKinds,
		Flash: popFlash(w, r),
	}
	if account, ok := accountFromContext(r.Context()); ok {
		balance := moneyOf(account.Balance)
		resp.Authenticated = true
		resp.Handle = account.Handle
		resp.Balance = &balance
	}
	render.JSON(w, r, resp)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, formPageResponse{Flash: popFlash(w, r)})
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, formPageResponse{Flash: popFlash(w, r)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form credentialsForm
	if err := h.decodeForm(r, &form); err != nil {
		redirectWithFlash(w, r, "/login", FlashDanger, formMessage(err))
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), form.Handle, form.Secret)
	if err != nil {
		h.failRedirect(w, r, "/login", err)
		return
	}

	if err := h.sessions.Issue(w, account.ID); err != nil {
		h.failRedirect(w, r, "/login", err)
		return
	}

	redirectWithFlash(w, r, "/", FlashSuccess, "Logged in successfully!")
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form credentialsForm
	if err := h.decodeForm(r, &form); err != nil {
		redirectWithFlash(w, r, "/register", FlashDanger, formMessage(err))
		return
	}

	if _, err := h.accounts.Register(r.Context(), form.Handle, form.Secret); err != nil {
		h.failRedirect(w, r, "/register", err)
		return
	}

	redirectWithFlash(w, r, "/login", FlashSuccess, "Account created! Please log in.")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	redirectWithFlash(w, r, "/", FlashInfo, "You have been logged out.")
}

func (h *Handler) DepositPage(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFromContext(r.Context())
	balance := moneyOf(account.Balance)
	render.JSON(w, r, formPageResponse{Balance: &balance, Flash: popFlash(w, r)})
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFromContext(r.Context())

	var form depositForm
	if err := h.decodeForm(r, &form); err != nil {
		redirectWithFlash(w, r, r.URL.Path, FlashDanger, formMessage(err))
		return
	}

	result, err := h.games.Deposit(r.Context(), account.ID, form.Amount.String())
	if err != nil {
		h.failRedirect(w, r, r.URL.Path, err)
		return
	}

	render.JSON(w, r, depositResponse{
		Amount:  moneyOf(result.Amount),
		Balance: moneyOf(result.NewBalance),
	})
}

// GamePage returns the balance and choices for a game form
func (h *Handler) GamePage(game models.GameKind) http.HandlerFunc {
	var choices []string
	switch game {
	case models.GameCoin:
		choices = []string{games.Heads, games.Tails}
	case models.GameRoulette:
		choices = []string{games.Even, games.Odd}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		account, _ := accountFromContext(r.Context())
		balance := moneyOf(account.Balance)
		render.JSON(w, r, formPageResponse{
			Game:    game,
			Choices: choices,
			Balance: &balance,
			Flash:   popFlash(w, r),
		})
	}
}

type playFunc func(ctx context.Context, accountID uuid.UUID, form wagerForm) (*models.RoundResult, error)

func (h *Handler) PlayCoin(w http.ResponseWriter, r *http.Request) {
	h.play(w, r, func(ctx context.Context, id uuid.UUID, form wagerForm) (*models.RoundResult, error) {
		return h.games.PlayCoin(ctx, id, form.Wager.String(), form.Choice)
	})
}

func (h *Handler) PlayRoulette(w http.ResponseWriter, r *http.Request) {
	h.play(w, r, func(ctx context.Context, id uuid.UUID, form wagerForm) (*models.RoundResult, error) {
		return h.games.PlayRoulette(ctx, id, form.Wager.String(), form.Choice)
	})
}

func (h *Handler) PlaySlots(w http.ResponseWriter, r *http.Request) {
	h.play(w, r, func(ctx context.Context, id uuid.UUID, form wagerForm) (*models.RoundResult, error) {
		return h.games.PlaySlots(ctx, id, form.Wager.String())
	})
}

func (h *Handler) play(w http.ResponseWriter, r *http.Request, play playFunc) {
	account, _ := accountFromContext(r.Context())

	var form wagerForm
	if err := h.decodeForm(r, &form); err != nil {
		redirectWithFlash(w, r, r.URL.Path, FlashDanger, formMessage(err))
		return
	}

	result, err := play(r.Context(), account.ID, form)
	if err != nil {
		h.failRedirect(w, r, r.URL.Path, err)
		return
	}

	render.JSON(w, r, newRoundResponse(result))
}

// History kinds
const (
	historyKindRounds  = "rounds"
	historyKindBalance = "balance"
)

// History lists the caller's recent rounds, or balance changes with kind=balance
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFromContext(r.Context())
	query := r.URL.Query()

	var filter models.RoundFilter
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || limit == 0 {
			renderError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	switch kind := query.Get("kind"); kind {
	case "", historyKindRounds:
	case historyKindBalance:
		if query.Get("game") != "" {
			renderError(w, r, http.StatusBadRequest, "game filter applies to rounds only")
			return
		}
		h.balanceHistory(w, r, account.ID, filter.Limit)
		return
	default:
		renderError(w, r, http.StatusBadRequest, "Unknown history kind "+strconv.Quote(kind))
		return
	}

	if raw := query.Get("game"); raw != "" {
		game := models.GameKind(raw)
		if !game.Valid() {
			renderError(w, r, http.StatusBadRequest, "Unknown game "+strconv.Quote(raw))
			return
		}
		filter.Game = &game
	}

	rounds, err := h.games.History(r.Context(), account.ID, filter)
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		renderError(w, r, http.StatusBadRequest, ve.Message)
		return
	}
	if err != nil {
		log.WithFields(log.Fields{
			"accountID": account.ID,
			"error":     err,
		}).Error("Failed to list rounds")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	render.JSON(w, r, newHistoryResponse(rounds))
}

func (h *Handler) balanceHistory(w http.ResponseWriter, r *http.Request, accountID uuid.UUID, limit uint64) {
	entries, err := h.games.BalanceHistory(r.Context(), accountID, limit)
	if err != nil {
		log.WithFields(log.Fields{
			"accountID": accountID,
			"error":     err,
		}).Error("Failed to list balance history")
		renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	render.JSON(w, r, newBalanceHistoryResponse(entries))
}

// failRedirect maps a service error to a flash message on the originating form
func (h *Handler) failRedirect(w http.ResponseWriter, r *http.Request, target string, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		redirectWithFlash(w, r, target, FlashDanger, ve.Message)
		return
	}

	if errors.Is(err, service.ErrAccountNotFound) {
		h.sessions.Clear(w)
		redirectWithFlash(w, r, "/login", FlashInfo, "Please log in to continue")
		return
	}

	fields := log.Fields{
		"path":  r.URL.Path,
		"error": err,
	}
	if account, ok := accountFromContext(r.Context()); ok {
		fields["accountID"] = account.ID
	}
	log.WithFields(fields).Error("Request failed")

	redirectWithFlash(w, r, target, FlashDanger, genericErrorMessage)
}
