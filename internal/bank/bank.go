// Package bank models authored assessment content: the items a session
// presents and the sealed weight payload that scores them. Banks are content
// only; responses and results never land here.
package bank

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Item is one assessment statement. Options override the default Likert
// labels when present; most items leave them empty.
type Item struct {
	ID      string   `json:"id"`
	Stem    string   `json:"stem"`
	Options []string `json:"options,omitempty"`
}

// Bank is one mode's authored content.
type Bank struct {
	Mode    string `json:"mode"`
	Title   string `json:"title"`
	Version string `json:"version,omitempty"`
	Items   []Item `json:"items"`
}

// ItemIDs returns the item ids in authored order.
func (b Bank) ItemIDs() []string {
	ids := make([]string, len(b.Items))
	for i, it := range b.Items {
		ids[i] = it.ID
	}
	return ids
}

var ErrNotFound = errors.New("bank not found")

// Store persists banks together with their sealed payload blob.
type Store interface {
	PutBank(ctx context.Context, b Bank, payload []byte) error
	GetBank(ctx context.Context, mode string) (Bank, error)
	ListModes(ctx context.Context) ([]string, error)
	PayloadBytes(ctx context.Context, mode string) ([]byte, error)
}

type memoryStore struct {
	mu       sync.RWMutex
	banks    map[string]Bank
	payloads map[string][]byte
}

// NewInMemoryStore backs the store with process memory, for tests and for
// serving a bank directory without a database.
func NewInMemoryStore() Store {
	return &memoryStore{
		banks:    map[string]Bank{},
		payloads: map[string][]byte{},
	}
}

func (m *memoryStore) PutBank(ctx context.Context, b Bank, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banks[b.Mode] = b
	if payload != nil {
		m.payloads[b.Mode] = payload
	}
	return nil
}

func (m *memoryStore) GetBank(ctx context.Context, mode string) (Bank, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.banks[mode]
	if !ok {
		return Bank{}, ErrNotFound
	}
	return b, nil
}

func (m *memoryStore) ListModes(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	modes := make([]string, 0, len(m.banks))
	for mode := range m.banks {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	return modes, nil
}

func (m *memoryStore) PayloadBytes(ctx context.Context, mode string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.banks[mode]; !ok {
		return nil, ErrNotFound
	}
	return m.payloads[mode], nil
}

// Items adapts a Store to the scoring engine's item-order interface.
type Items struct {
	Store Store
}

// ItemIDs returns the mode's item ids in authored order.
func (i Items) ItemIDs(ctx context.Context, mode string) ([]string, error) {
	b, err := i.Store.GetBank(ctx, mode)
	if err != nil {
		return nil, err
	}
	return b.ItemIDs(), nil
}
