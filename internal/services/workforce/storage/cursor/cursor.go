// Package cursor provides opaque pagination token encoding for list
// queries. A token carries the last-row key of the previous page plus a
// hash of the filter it was produced under, so a token minted for one
// filter cannot silently page through another.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Cursor is the decoded state of a pagination token.
type Cursor struct {
	// Key is the last-row key of the previous page. Rows strictly after
	// it (in the query's sort order) belong to the next page.
	Key string `json:"k"`
	// FilterHash invalidates the token when the filter changes.
	FilterHash string `json:"f,omitempty"`
}

// New builds a cursor for the page following the given row key.
func New(lastKey, filter string) Cursor {
	return Cursor{Key: lastKey, FilterHash: HashFilter(filter)}
}

// Encode serializes a cursor to an opaque URL-safe string.
func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses an opaque token back into a cursor.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("empty token")
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if c.Key == "" {
		return Cursor{}, fmt.Errorf("cursor missing row key")
	}
	return c, nil
}

// HashFilter computes a short hash of the filter string for token
// validation. Empty filters hash to the empty string.
func HashFilter(filter string) string {
	if filter == "" {
		return ""
	}
	h := sha256.Sum256([]byte(filter))
	return hex.EncodeToString(h[:8])
}

// ValidateFilter reports an error when the cursor was minted under a
// different filter than the current one.
func ValidateFilter(c Cursor, currentFilter string) error {
	if c.FilterHash != HashFilter(currentFilter) {
		return fmt.Errorf("filter changed since cursor was created")
	}
	return nil
}
