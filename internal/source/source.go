// Package source provides payload access for the scoring engine: file,
// inline blob, or any custom fetch, with a once-per-lifetime cached decode
// in front. Weights do not change at runtime, so a successful decode is
// final for the life of the process.
package source

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/typemetry/typemetry/internal/payload"
)

// Source yields the decoded payload envelope.
type Source interface {
	Payload(ctx context.Context) (*payload.Envelope, error)
}

// Func adapts a closure into a Source.
type Func func(ctx context.Context) (*payload.Envelope, error)

// Payload implements Source.
func (f Func) Payload(ctx context.Context) (*payload.Envelope, error) {
	return f(ctx)
}

// FileSource decodes a payload file on demand. Sealed and plain JSON files
// both work; Key is only consulted for sealed ones.
type FileSource struct {
	Path string
	Key  string
}

// Payload implements Source.
func (f FileSource) Payload(ctx context.Context) (*payload.Envelope, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	env, err := payload.Decode(data, f.Key)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", f.Path, err)
	}
	return env, nil
}

// BytesSource decodes an in-memory blob.
type BytesSource struct {
	Data []byte
	Key  string
}

// Payload implements Source.
func (b BytesSource) Payload(ctx context.Context) (*payload.Envelope, error) {
	return payload.Decode(b.Data, b.Key)
}

// Cached wraps a source with the once-only decode contract: at most one
// fetch runs at a time, every caller observes the same resolved envelope,
// and a success is cached for the process lifetime. A failure is not
// cached; callers arriving after the failing flight settles will retry,
// while callers who joined it share its error.
type Cached struct {
	src Source

	flight singleflight.Group
	mu     sync.RWMutex
	env    *payload.Envelope
}

// NewCached wraps src.
func NewCached(src Source) *Cached {
	return &Cached{src: src}
}

// Payload implements Source. The context of whichever caller starts the
// flight governs the underlying fetch.
func (c *Cached) Payload(ctx context.Context) (*payload.Envelope, error) {
	c.mu.RLock()
	env := c.env
	c.mu.RUnlock()
	if env != nil {
		return env, nil
	}

	v, err, _ := c.flight.Do("payload", func() (any, error) {
		c.mu.RLock()
		env := c.env
		c.mu.RUnlock()
		if env != nil {
			return env, nil
		}
		fetched, err := c.src.Payload(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.env = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*payload.Envelope), nil
}
