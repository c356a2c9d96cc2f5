package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"minicasino/models"
	"minicasino/service"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const accountKey contextKey = "account"

// accountFromContext returns the logged-in account, if any
func accountFromContext(ctx context.Context) (*models.Account, bool) {
	account, ok := ctx.Value(accountKey).(*models.Account)
	return account, ok && account != nil
}

// requestLogger logs one line per request through logrus
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.WithFields(log.Fields{
				"requestID": middleware.GetReqID(r.Context()),
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    status,
				"bytes":     ww.BytesWritten(),
				"duration":  time.Since(start),
			}).Info("HTTP request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// loadSession attaches the account named by the session cookie. Requests
// without a valid session continue anonymously.
func (h *Handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, err := h.sessions.AccountID(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		account, err := h.accounts.GetAccount(r.Context(), accountID)
		if errors.Is(err, service.ErrAccountNotFound) {
			h.sessions.Clear(w)
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			log.WithFields(log.Fields{
				"accountID": accountID,
				"error":     err,
			}).Error("Failed to load session account")
			renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAccount sends anonymous visitors to the login form
func requireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := accountFromContext(r.Context()); !ok {
			redirectWithFlash(w, r, "/login", FlashInfo, "Please log in to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redirectAuthenticated keeps logged-in accounts away from login and registration
func redirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := accountFromContext(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
