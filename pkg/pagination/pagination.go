// Package pagination implements keyset paging for the order history.
// Listings run newest-first; a page hands back an opaque token pointing at
// the last row it returned, and the next request resumes below that row.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPageSize applies when the caller does not ask for a limit.
	DefaultPageSize = 20
	// MaxPageSize caps a single page regardless of the requested limit.
	MaxPageSize = 50
)

// Params carries the raw paging inputs from the query string.
type Params struct {
	Limit  int
	Cursor string
}

// Marker pins a position in a created_at-descending listing: the timestamp
// and id of the last row the previous page returned.
type Marker struct {
	CreatedAt time.Time `json:"t"`
	ID        uuid.UUID `json:"id"`
}

// PageSize clamps the requested limit to the allowed bounds.
func PageSize(requested int) int {
	switch {
	case requested <= 0:
		return DefaultPageSize
	case requested > MaxPageSize:
		return MaxPageSize
	}
	return requested
}

// FetchSize is PageSize plus one extra row, used to detect whether a further
// page exists without a second query.
func FetchSize(requested int) int {
	return PageSize(requested) + 1
}

// Token serializes the marker into an opaque URL-safe string.
func (m Marker) Token() string {
	payload, _ := json.Marshal(m)
	return base64.RawURLEncoding.EncodeToString(payload)
}

// Decode parses a token produced by Token. An empty token means the first
// page and yields a nil marker.
func Decode(token string) (*Marker, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode page token: %w", err)
	}
	var m Marker
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse page token: %w", err)
	}
	if m.ID == uuid.Nil || m.CreatedAt.IsZero() {
		return nil, fmt.Errorf("page token incomplete")
	}
	return &m, nil
}
