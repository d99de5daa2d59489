package state

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Guard allow-lists where the callback may redirect the browser. It is the
// sole defense against open redirects via the state parameter.
type Guard struct {
	allowedBase string
	log         *zap.Logger
}

func NewGuard(allowedBase string, log *zap.Logger) *Guard {
	return &Guard{allowedBase: allowedBase, log: log}
}

// ValidateRedirect returns the candidate unchanged when it sits under the
// allow-listed frontend origin, and "" otherwise.
func (g *Guard) ValidateRedirect(candidate string) string {
	if candidate == "" {
		return ""
	}
	if !strings.HasPrefix(candidate, g.allowedBase) {
		g.log.Warn("rejected redirect target outside the allowed origin",
			zap.String("target", candidate),
			zap.String("allowed_base", g.allowedBase),
		)
		return ""
	}
	return candidate
}

// BuildRedirectURL appends the non-empty params to target as a query string.
func BuildRedirectURL(target string, params map[string]string) string {
	values := url.Values{}
	for key, value := range params {
		if value != "" {
			values.Set(key, value)
		}
	}
	if len(values) == 0 {
		return target
	}
	return target + "?" + values.Encode()
}
