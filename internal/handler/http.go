package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"main/internal/apperrors"
	"main/internal/database"
	"main/internal/google"
	"main/internal/model"
	"main/internal/state"
)

// GoogleClient is the slice of the Google integration the handlers use.
type GoogleClient interface {
	AuthURL(scope, authState string) (string, error)
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserinfo(ctx context.Context, accessToken string) (*google.Userinfo, error)
	ListUpcomingEvents(ctx context.Context, accessToken string) ([]google.Event, error)
}

// Syncer owns token persistence and mirror reconciliation for connected
// accounts.
type Syncer interface {
	SaveTokens(user *model.User, token *oauth2.Token, linkedEmail string) (*model.ConnectedAccount, error)
	Sync(ctx context.Context, account *model.ConnectedAccount) ([]google.Event, error)
}

// UserResolver maps a provider-verified email onto a local user.
type UserResolver interface {
	ResolveOrCreate(email, displayName string) (*model.User, error)
}

type Handler struct {
	users    database.UserStore
	accounts database.AccountStore
	gc       GoogleClient
	syncer   Syncer
	resolver UserResolver
	guard    *state.Guard
	log      *zap.Logger
}

func New(users database.UserStore, accounts database.AccountStore, gc GoogleClient, syncer Syncer, resolver UserResolver, guard *state.Guard, log *zap.Logger) *Handler {
	return &Handler{
		users:    users,
		accounts: accounts,
		gc:       gc,
		syncer:   syncer,
		resolver: resolver,
		guard:    guard,
		log:      log,
	}
}

func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Agenda Inteligente API funcionando correctamente"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers()
	if err != nil {
		h.log.Error("could not list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"correo"`
	Timezone string `json:"zona_horaria"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Faltan campos obligatorios (nombre, correo)"})
		return
	}
	if req.Timezone == "" {
		req.Timezone = "America/Mexico_City"
	}

	user, err := h.users.CreateUser(&model.User{
		Name:     req.Name,
		Email:    req.Email,
		Timezone: req.Timezone,
	})
	if err != nil {
		h.log.Error("could not create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// InitGoogleOAuth hands the frontend the consent-screen URL. The state is
// passed through opaque.
func (h *Handler) InitGoogleOAuth(c *gin.Context) {
	authURL, err := h.gc.AuthURL(c.Query("scope"), c.Query("state"))
	if err != nil {
		h.log.Error("could not build google auth url", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OAuth init failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": authURL})
}

type callbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// GoogleCallback receives the provider's code, exchanges it, resolves the
// user, saves the tokens and runs a first sync. A browser navigation (GET)
// with a validated redirect hint gets its outcome as a redirect; everything
// else gets JSON.
func (h *Handler) GoogleCallback(c *gin.Context) {
	var code, rawState string
	if c.Request.Method == http.MethodPost {
		var req callbackRequest
		_ = c.ShouldBindJSON(&req)
		code, rawState = req.Code, req.State
	} else {
		code, rawState = c.Query("code"), c.Query("state")
	}

	hints := state.Decode(rawState)
	isBrowser := c.Request.Method == http.MethodGet

	fail := func(status int, errName, message string) {
		if isBrowser {
			if target := h.guard.ValidateRedirect(hints.Redirect); target != "" {
				c.Redirect(http.StatusFound, state.BuildRedirectURL(target, map[string]string{
					"status":  "error",
					"message": message,
					"next":    hints.Next,
				}))
				return
			}
		}
		c.JSON(status, gin.H{"error": errName, "details": message})
	}

	if code == "" {
		fail(http.StatusBadRequest, "missing code", "Google did not return the 'code' parameter")
		return
	}

	ctx := c.Request.Context()

	token, err := h.gc.Exchange(ctx, code)
	if err != nil {
		h.log.Error("google oauth callback failed during code exchange", zap.Error(err))
		fail(apperrors.HTTPStatus(err), "Google OAuth callback failed", err.Error())
		return
	}
	if token.AccessToken == "" {
		h.log.Error("google returned an empty access token")
		fail(http.StatusInternalServerError, "Google OAuth callback failed", "Google did not return a valid access token")
		return
	}

	info, err := h.gc.FetchUserinfo(ctx, token.AccessToken)
	if err != nil {
		h.log.Error("google oauth callback failed during userinfo fetch", zap.Error(err))
		fail(apperrors.HTTPStatus(err), "Google OAuth callback failed", err.Error())
		return
	}

	user, err := h.resolver.ResolveOrCreate(info.Email, info.Name)
	if err != nil {
		h.log.Error("google oauth callback failed resolving the user", zap.Error(err))
		fail(apperrors.HTTPStatus(err), "Google OAuth callback failed", err.Error())
		return
	}

	account, err := h.syncer.SaveTokens(user, token, info.Email)
	if err != nil {
		h.log.Error("google oauth callback failed saving tokens", zap.Error(err))
		fail(apperrors.HTTPStatus(err), "Google OAuth callback failed", err.Error())
		return
	}

	events, err := h.syncer.Sync(ctx, account)
	if err != nil {
		h.log.Error("google oauth callback failed during the initial sync", zap.Error(err))
		fail(apperrors.HTTPStatus(err), "Google OAuth callback failed", err.Error())
		return
	}

	if isBrowser {
		if target := h.guard.ValidateRedirect(hints.Redirect); target != "" {
			c.Redirect(http.StatusFound, state.BuildRedirectURL(target, map[string]string{
				"status":  "success",
				"user_id": strconv.FormatInt(user.ID, 10),
				"email":   user.Email,
				"name":    user.Name,
				"next":    hints.Next,
			}))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cuenta de Google conectada exitosamente",
		"usuario": gin.H{
			"id":     user.ID,
			"nombre": user.Name,
			"correo": user.Email,
		},
		"events": events,
	})
}

type eventsRequest struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// GoogleEvents returns the upcoming events for one account. With an
// explicit access_token it lists straight from Google without touching
// storage; otherwise the account is looked up and a full sync runs.
func (h *Handler) GoogleEvents(c *gin.Context) {
	var req eventsRequest
	if c.Request.Method == http.MethodPost {
		_ = c.ShouldBindJSON(&req)
	} else {
		req.UserID, _ = strconv.ParseInt(c.Query("user_id"), 10, 64)
		req.Email = c.Query("email")
		req.AccessToken = c.Query("access_token")
	}

	ctx := c.Request.Context()

	if req.AccessToken != "" {
		events, err := h.gc.ListUpcomingEvents(ctx, req.AccessToken)
		if err != nil {
			h.log.Error("could not list google events with the provided token", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
		return
	}

	var account *model.ConnectedAccount
	var err error
	switch {
	case req.UserID != 0:
		account, err = h.accounts.FindAccountByUser(req.UserID, model.ProviderGoogle)
	case req.Email != "":
		account, err = h.accounts.FindAccountByEmail(req.Email, model.ProviderGoogle)
	}
	if err != nil {
		h.log.Error("could not look up connected account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up connected account"})
		return
	}

	if account == nil {
		c.JSON(http.StatusOK, gin.H{"events": []google.Event{}, "requires_auth": true})
		return
	}

	events, err := h.syncer.Sync(ctx, account)
	if err != nil {
		h.log.Error("could not synchronize google events", zap.Error(err))
		c.JSON(apperrors.HTTPStatus(err), gin.H{
			"error":   "No se pudieron sincronizar los eventos de Google",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
