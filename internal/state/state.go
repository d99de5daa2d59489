// Package state carries advisory redirect hints through the OAuth redirect
// round trip. The payload travels through the browser and the provider, so
// nothing here is trusted: decoding is fail-open and every redirect target
// must pass the allow-list guard before use.
package state

import (
	"encoding/json"
	"net/url"
)

// Payload is what the frontend may tuck into the state parameter: where to
// send the browser after the callback, and an app-level continuation hint.
type Payload struct {
	Redirect string `json:"redirect,omitempty"`
	Next     string `json:"next,omitempty"`
}

// Encode produces the opaque, URL-safe state value: URL-escaped JSON.
func Encode(p Payload) string {
	raw, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return url.QueryEscape(string(raw))
}

// Decode never fails. Absent or malformed input yields an empty payload,
// which downstream reads as "no redirect requested". The state parameter is
// attacker-influenced and is not used for CSRF protection.
func Decode(value string) Payload {
	if value == "" {
		return Payload{}
	}

	unescaped, err := url.QueryUnescape(value)
	if err != nil {
		unescaped = value
	}

	var p Payload
	if err := json.Unmarshal([]byte(unescaped), &p); err != nil {
		return Payload{}
	}
	return p
}
