// Package state implements the durable key-value collaborator used by the
// bot: storage backends with optimistic-concurrency entity tags, plus the
// conversation- and user-scoped partitions persisted at the end of each turn.
package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

var (
	ErrETagConflict = errors.New("state: etag conflict")
	ErrETagRequired = errors.New("state: etag is required (use ETagAny to force overwrite)")
)

// ETagAny forces a write regardless of the stored entity tag.
const ETagAny = "*"

// Item is one stored record: an opaque JSON value plus the entity tag it was
// read with. Writes must carry the current tag or ETagAny.
type Item struct {
	Value json.RawMessage `json:"value"`
	ETag  string          `json:"etag,omitempty"`
}

type Storage interface {
	Read(ctx context.Context, keys []string) (map[string]Item, error)
	Write(ctx context.Context, changes map[string]Item) error
	Delete(ctx context.Context, keys []string) error
}

// computeETag derives a deterministic tag from the canonicalized JSON value,
// so equal values always carry equal tags regardless of key order.
func computeETag(value json.RawMessage) (string, error) {
	canonical, err := jsoncanonicalizer.Transform(value)
	if err != nil {
		return "", fmt.Errorf("state: canonicalize value: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:8]), nil
}

func checkWrite(existing Item, found bool, change Item) error {
	if change.ETag == "" {
		return ErrETagRequired
	}
	if change.ETag == ETagAny {
		return nil
	}
	if !found {
		return fmt.Errorf("%w: record no longer exists", ErrETagConflict)
	}
	if existing.ETag != change.ETag {
		return fmt.Errorf("%w: have %s, want %s", ErrETagConflict, change.ETag, existing.ETag)
	}
	return nil
}
