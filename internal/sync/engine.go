// Package sync owns the connected-account token lifecycle and the
// reconciliation of Google's upcoming-event page into the local mirror.
package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"main/internal/apperrors"
	"main/internal/database"
	"main/internal/google"
	"main/internal/model"
)

// refreshMargin is how close to expiry an access token may get before a
// sync refreshes it proactively.
const refreshMargin = 2 * time.Minute

// TokenClient is the slice of the Google client the engine needs for the
// refresh-token grant.
type TokenClient interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// EventLister fetches and normalizes the provider's upcoming-event page.
type EventLister interface {
	ListUpcomingEvents(ctx context.Context, accessToken string) ([]google.Event, error)
}

type Engine struct {
	accounts database.AccountStore
	events   database.EventStore
	oauth    TokenClient
	calendar EventLister
	log      *zap.Logger
	now      func() time.Time
}

func NewEngine(accounts database.AccountStore, events database.EventStore, oauth TokenClient, calendar EventLister, log *zap.Logger) *Engine {
	return &Engine{
		accounts: accounts,
		events:   events,
		oauth:    oauth,
		calendar: calendar,
		log:      log,
		now:      time.Now,
	}
}

// SaveTokens upserts the user's Google account record after a code
// exchange. The access token is always overwritten; the refresh token only
// when the response carried one, because Google omits it on repeat consents.
func (e *Engine) SaveTokens(user *model.User, token *oauth2.Token, linkedEmail string) (*model.ConnectedAccount, error) {
	existing, err := e.accounts.FindAccountByUser(user.ID, model.ProviderGoogle)
	if err != nil {
		return nil, err
	}

	if linkedEmail == "" {
		linkedEmail = user.Email
	}

	account := &model.ConnectedAccount{
		UserID:       user.ID,
		Provider:     model.ProviderGoogle,
		LinkedEmail:  linkedEmail,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if account.RefreshToken == "" && existing != nil {
		account.RefreshToken = existing.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		account.TokenExpiry = &expiry
	}
	now := e.now().UTC()
	account.LastSyncedAt = &now

	account, err = e.accounts.UpsertAccount(account)
	if err != nil {
		return nil, err
	}

	e.log.Info("saved oauth tokens", zap.Int64("user_id", user.ID), zap.Int64("account_id", account.ID))
	return account, nil
}

// needsRefresh is true when an expiry is recorded and falls within the
// safety margin. Accounts without a recorded expiry are assumed valid until
// a provider call fails.
func (e *Engine) needsRefresh(account *model.ConnectedAccount) bool {
	if account.TokenExpiry == nil {
		return false
	}
	return !account.TokenExpiry.After(e.now().Add(refreshMargin))
}

// EnsureFresh returns an access token usable right now, refreshing and
// persisting first when the stored one is about to expire. An account that
// needs a refresh but has no refresh token is a terminal condition: the
// user must re-authorize.
func (e *Engine) EnsureFresh(ctx context.Context, account *model.ConnectedAccount) (string, error) {
	if e.needsRefresh(account) {
		if account.RefreshToken == "" {
			return "", fmt.Errorf("%w: no refresh token stored for account %d", apperrors.ErrUpstreamAuth, account.ID)
		}

		token, err := e.oauth.Refresh(ctx, account.RefreshToken)
		if err != nil {
			return "", err
		}

		account.AccessToken = token.AccessToken
		if token.RefreshToken != "" {
			account.RefreshToken = token.RefreshToken
		}
		if !token.Expiry.IsZero() {
			expiry := token.Expiry.UTC()
			account.TokenExpiry = &expiry
		}

		if err := e.accounts.UpdateAccountTokens(account.ID, account.AccessToken, account.RefreshToken, account.TokenExpiry); err != nil {
			return "", err
		}
		e.log.Info("refreshed access token", zap.Int64("account_id", account.ID))
	}

	if account.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token stored for account %d", apperrors.ErrUpstreamAuth, account.ID)
	}
	return account.AccessToken, nil
}

// Sync reconciles the account's mirror against Google's latest page of
// upcoming events and returns the normalized list. All storage writes of
// one sync commit atomically; a failure leaves the previous mirror intact.
func (e *Engine) Sync(ctx context.Context, account *model.ConnectedAccount) ([]google.Event, error) {
	accessToken, err := e.EnsureFresh(ctx, account)
	if err != nil {
		return nil, err
	}

	normalized, err := e.calendar.ListUpcomingEvents(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	rows := make([]model.ExternalEvent, 0, len(normalized))
	for _, event := range normalized {
		if event.ID == "" {
			continue
		}
		rows = append(rows, model.ExternalEvent{
			AccountID:    account.ID,
			ExternalID:   event.ID,
			Title:        event.Summary,
			Description:  event.Description,
			Start:        google.ParseEventTime(event.Start),
			End:          google.ParseEventTime(event.End),
			Status:       event.Status,
			Origin:       model.ProviderGoogle,
			LastSyncedAt: &now,
		})
	}

	if err := e.events.ReplaceAccountEvents(account.ID, rows); err != nil {
		return nil, err
	}

	e.log.Info("synchronized calendar events",
		zap.Int64("account_id", account.ID),
		zap.Int("events", len(rows)),
	)
	return normalized, nil
}
