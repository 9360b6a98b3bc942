package bank

import (
	"context"
	"errors"
	"fmt"

	"github.com/typemetry/typemetry/internal/payload"
)

// StoreSource assembles the engine's serving envelope from every bank in a
// store. Each bank row carries the single-mode sealed envelope written at
// load time; serving merges them so the engine sees one payload covering all
// modes.
type StoreSource struct {
	store Store
	key   string
}

// NewStoreSource wraps a store. key opens sealed per-bank payloads.
func NewStoreSource(store Store, key string) *StoreSource {
	return &StoreSource{store: store, key: key}
}

// Payload implements the engine's source interface.
func (s *StoreSource) Payload(ctx context.Context) (*payload.Envelope, error) {
	modes, err := s.store.ListModes(ctx)
	if err != nil {
		return nil, fmt.Errorf("bank: list modes: %w", err)
	}

	merged := &payload.Envelope{Weights: map[string]any{}}
	for _, mode := range modes {
		blob, err := s.store.PayloadBytes(ctx, mode)
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", mode, err)
		}
		if len(blob) == 0 {
			// Bank stored without weights; it has items but cannot score.
			continue
		}
		env, err := payload.Decode(blob, s.key)
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", mode, err)
		}
		for k, v := range env.Weights {
			merged.Weights[k] = v
		}
		// The freshest bank names the merged envelope's version.
		if env.TS >= merged.TS {
			merged.TS = env.TS
			merged.Version = env.Version
		}
		if merged.Mapping.Funcs == nil {
			merged.Mapping.Funcs = env.Mapping.Funcs
		}
		if merged.Mapping.Types == nil {
			merged.Mapping.Types = env.Mapping.Types
		}
	}
	if len(merged.Weights) == 0 {
		return nil, errors.New("bank: no scorable banks loaded")
	}
	return merged, nil
}
