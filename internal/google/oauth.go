package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"

	"main/internal/apperrors"
	"main/internal/config"
)

// DefaultScope is requested when the caller does not supply one: read-only
// calendar access plus enough profile scope to resolve the account's email.
var DefaultScope = strings.Join([]string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"openid",
}, " ")

// requestTimeout bounds every call to Google so a hung upstream cannot pin
// a request handler.
const requestTimeout = 10 * time.Second

// Client talks to Google's OAuth and Calendar endpoints. It is stateless;
// tokens live in the connected-account store.
type Client struct {
	cfg *config.Config
	log *zap.Logger
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	return &Client{cfg: cfg, log: log}
}

func (c *Client) oauthConfig(scope string) (*oauth2.Config, error) {
	clientID, clientSecret, redirectURI, err := c.cfg.GoogleOAuth()
	if err != nil {
		return nil, err
	}
	if scope == "" {
		scope = DefaultScope
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       strings.Fields(scope),
		Endpoint:     googleauth.Endpoint,
	}, nil
}

// AuthURL builds the consent-screen URL for the authorization-code flow.
// access_type=offline and prompt=consent make Google return a refresh token;
// the opaque state is echoed back on the callback.
func (c *Client) AuthURL(scope, state string) (string, error) {
	conf, err := c.oauthConfig(scope)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	conf, err := c.oauthConfig("")
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, c.classifyTokenErr("code exchange", err)
	}
	return token, nil
}

// Refresh trades a refresh token for a fresh access token. When Google
// rotates the refresh token the returned token carries the new one,
// otherwise it carries the one passed in.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	conf, err := c.oauthConfig("")
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, c.classifyTokenErr("token refresh", err)
	}
	return token, nil
}

func (c *Client) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: requestTimeout})
	return context.WithTimeout(ctx, requestTimeout)
}

// classifyTokenErr separates "Google said no" from "Google was unreachable".
// The raw response body is logged here and never surfaces to callers.
func (c *Client) classifyTokenErr(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		c.log.Error("google rejected "+op,
			zap.Int("status", retrieveErr.Response.StatusCode),
			zap.ByteString("body", retrieveErr.Body),
		)
		return fmt.Errorf("%w: %s failed", apperrors.ErrUpstreamAuth, op)
	}
	c.log.Error("google unreachable during "+op, zap.Error(err))
	return fmt.Errorf("%w: %s: %v", apperrors.ErrNetwork, op, err)
}
