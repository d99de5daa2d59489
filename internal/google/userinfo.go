package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"main/internal/apperrors"
)

// Userinfo holds the subset of the OpenID profile this system cares about.
type Userinfo struct {
	Email string
	Name  string
}

// FetchUserinfo asks Google who the access token belongs to.
func (c *Client) FetchUserinfo(ctx context.Context, accessToken string) (*Userinfo, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	svc, err := oauth2v2.NewService(ctx, option.WithHTTPClient(c.bearerClient(ctx, accessToken)))
	if err != nil {
		return nil, fmt.Errorf("userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			c.log.Error("google rejected userinfo request",
				zap.Int("status", apiErr.Code),
				zap.String("body", apiErr.Body),
			)
			return nil, fmt.Errorf("%w: userinfo request failed", apperrors.ErrUpstreamAuth)
		}
		return nil, fmt.Errorf("%w: userinfo: %v", apperrors.ErrNetwork, err)
	}

	return &Userinfo{Email: info.Email, Name: info.Name}, nil
}

func (c *Client) bearerClient(ctx context.Context, accessToken string) *http.Client {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = requestTimeout
	return client
}
