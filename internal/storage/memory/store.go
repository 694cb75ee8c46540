package memory

import (
	"context"
	"strings"
	"sync"

	"vaultScope/internal/model"
)

// Store is an in-memory Store implementation, used by the one-shot CLI
// commands and by tests.
type Store struct {
	mu        sync.RWMutex
	vaults    map[string]model.Vault
	tokens    map[string]model.Token
	tvlStates map[string]model.TotalTvlState
	counter   uint64
	feeds     []model.PriceFeed
	snapshots []model.TvlSnapshot
}

func NewStore() *Store {
	return &Store{
		vaults:    make(map[string]model.Vault),
		tokens:    make(map[string]model.Token),
		tvlStates: make(map[string]model.TotalTvlState),
	}
}

func key(address string) string {
	return strings.ToLower(address)
}

func (s *Store) LoadVault(_ context.Context, address string) (model.Vault, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vault, ok := s.vaults[key(address)]
	return vault, ok, nil
}

func (s *Store) SaveVault(_ context.Context, vault model.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vaults[key(vault.Address)] = vault
	return nil
}

func (s *Store) LoadToken(_ context.Context, address string) (model.Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[key(address)]
	return token, ok, nil
}

func (s *Store) SaveToken(_ context.Context, token model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key(token.Address)] = token
	return nil
}

func (s *Store) LoadTotalTvlState(_ context.Context, id string) (model.TotalTvlState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.tvlStates[id]
	return state, ok, nil
}

func (s *Store) SaveTotalTvlState(_ context.Context, state model.TotalTvlState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := state
	copied.Vaults = append([]string(nil), state.Vaults...)
	s.tvlStates[state.ID] = copied
	return nil
}

func (s *Store) BumpTvlCounter(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.counter, nil
}

func (s *Store) AppendPriceFeed(_ context.Context, feed model.PriceFeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds = append(s.feeds, feed)
	return nil
}

func (s *Store) AppendTvlSnapshot(_ context.Context, snapshot model.TvlSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

// PriceFeeds returns a copy of the appended feed records.
func (s *Store) PriceFeeds() []model.PriceFeed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.PriceFeed(nil), s.feeds...)
}

// TvlSnapshots returns a copy of the appended snapshots.
func (s *Store) TvlSnapshots() []model.TvlSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TvlSnapshot(nil), s.snapshots...)
}

func (s *Store) Close() {}
