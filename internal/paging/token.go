package paging

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidToken is returned when a continuation token cannot be decoded.
var ErrInvalidToken = errors.New("invalid continuation token")

// Token marks where a listing stopped: the link of the page to fetch and the number of items of
// that page that were already returned. An empty NextLink refers to the first page.
type Token struct {
	NextLink string `json:"nextLink,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Encode returns the opaque, URL safe representation of the token.
func (t Token) Encode() string {
	b, _ := json.Marshal(t)
	return base64.RawURLEncoding.EncodeToString(b)
}

// ParseToken decodes a token produced by Encode. An empty string yields a zero token.
func ParseToken(s string) (Token, error) {
	var t Token
	s = strings.TrimSpace(s)
	if s == "" {
		return t, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return t, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := json.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if t.Offset < 0 {
		return t, fmt.Errorf("%w: negative offset %d", ErrInvalidToken, t.Offset)
	}
	return t, nil
}
