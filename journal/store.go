package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Store is the Repository over a Blobs backend. Every write reads the whole
// collection, replaces it, and writes it back under one lock.
type Store struct {
	mu    sync.Mutex
	blobs Blobs
	codec Codec
	log   zerolog.Logger
}

var _ Repository = (*Store)(nil)

func NewStore(blobs Blobs, codec Codec, log zerolog.Logger) *Store {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Store{
		blobs: blobs,
		codec: codec,
		log:   log.With().Str("component", "store").Str("codec", codec.Name()).Logger(),
	}
}

// Blobs exposes the backend, used by backup and restore.
func (s *Store) Blobs() Blobs { return s.blobs }

type loadState int

const (
	loaded loadState = iota
	missing
	malformed
)

// load decodes key into v. A value that does not decode is logged and
// reported as malformed; callers fall back to their default.
func (s *Store) load(ctx context.Context, key string, v any) (loadState, error) {
	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return missing, nil
		}
		return missing, fmt.Errorf("read %s: %w", key, err)
	}
	if err := s.codec.Unmarshal(data, v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding malformed journal data")
		return malformed, nil
	}
	return loaded, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// corrupt is the error write paths return instead of replacing a value
// that did not decode.
func corrupt(key string) error {
	return fmt.Errorf("%s: %w", key, ErrCorrupt)
}

// accounts materialises the default portfolio on first use. A malformed
// accounts value also yields the default, without overwriting what is stored.
func (s *Store) accounts(ctx context.Context) ([]Portfolio, error) {
	accs, _, err := s.loadAccounts(ctx)
	return accs, err
}

func (s *Store) loadAccounts(ctx context.Context) ([]Portfolio, loadState, error) {
	var accs []Portfolio
	state, err := s.load(ctx, KeyAccounts, &accs)
	if err != nil {
		return nil, state, err
	}

	switch state {
	case missing:
		accs = []Portfolio{DefaultPortfolio()}
		if err := s.save(ctx, KeyAccounts, accs); err != nil {
			return nil, state, err
		}
		s.log.Info().Msg("Created default portfolio")
	case malformed:
		accs = []Portfolio{DefaultPortfolio()}
	}
	return accs, state, nil
}

func (s *Store) Accounts(ctx context.Context) ([]Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts(ctx)
}

func (s *Store) Account(ctx context.Context, id string) (Portfolio, error) {
	accs, err := s.Accounts(ctx)
	if err != nil {
		return Portfolio{}, err
	}
	for _, a := range accs {
		if a.ID == id {
			return a, nil
		}
	}
	return Portfolio{}, fmt.Errorf("portfolio %q: %w", id, ErrNotFound)
}

func (s *Store) SaveAccount(ctx context.Context, p Portfolio) (Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accs, state, err := s.loadAccounts(ctx)
	if err != nil {
		return Portfolio{}, err
	}
	if state == malformed {
		return Portfolio{}, corrupt(KeyAccounts)
	}

	p = NormalizePortfolio(p)
	replaced := false
	for i := range accs {
		if accs[i].ID == p.ID {
			accs[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		accs = append(accs, p)
	}

	if err := s.save(ctx, KeyAccounts, accs); err != nil {
		return Portfolio{}, err
	}
	s.log.Debug().Str("portfolio", p.ID).Bool("update", replaced).Msg("Portfolio saved")
	return p, nil
}

// allTrades reads the trade collection; a malformed value reads as empty.
func (s *Store) allTrades(ctx context.Context) ([]Trade, error) {
	trades, _, err := s.loadTrades(ctx)
	return trades, err
}

func (s *Store) loadTrades(ctx context.Context) ([]Trade, loadState, error) {
	var trades []Trade
	state, err := s.load(ctx, KeyTrades, &trades)
	if err != nil {
		return nil, state, err
	}
	if state != loaded {
		return nil, state, nil
	}
	return trades, state, nil
}

// tradesForWrite is loadTrades for read-then-replace writes, which must
// never overwrite a collection they could not read.
func (s *Store) tradesForWrite(ctx context.Context) ([]Trade, error) {
	trades, state, err := s.loadTrades(ctx)
	if err != nil {
		return nil, err
	}
	if state == malformed {
		return nil, corrupt(KeyTrades)
	}
	return trades, nil
}

// Trades returns one portfolio's trades, newest date first. Trades on the
// same date keep their stored order.
func (s *Store) Trades(ctx context.Context, accountID string) ([]Trade, error) {
	s.mu.Lock()
	all, err := s.allTrades(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Trade, 0, len(all))
	for _, t := range all {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) Trade(ctx context.Context, id string) (Trade, error) {
	s.mu.Lock()
	all, err := s.allTrades(ctx)
	s.mu.Unlock()
	if err != nil {
		return Trade{}, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return Trade{}, fmt.Errorf("trade %q: %w", id, ErrNotFound)
}

// SaveTrade normalises t, deriving its RR, and inserts or replaces it by ID.
// Replacing a trade that belongs to another portfolio fails with
// ErrReparent.
func (s *Store) SaveTrade(ctx context.Context, t Trade) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.tradesForWrite(ctx)
	if err != nil {
		return Trade{}, err
	}

	t = NormalizeTrade(t)
	replaced := false
	for i := range all {
		if all[i].ID == t.ID {
			if all[i].AccountID != t.AccountID {
				return Trade{}, fmt.Errorf("trade %q belongs to portfolio %q: %w", t.ID, all[i].AccountID, ErrReparent)
			}
			all[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, t)
	}

	if err := s.save(ctx, KeyTrades, all); err != nil {
		return Trade{}, err
	}
	s.log.Debug().Str("trade", t.ID).Str("symbol", t.Symbol).Bool("update", replaced).Msg("Trade saved")
	return t, nil
}

// DeleteTrade removes the trade with id. Unknown ids are ignored.
func (s *Store) DeleteTrade(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.tradesForWrite(ctx)
	if err != nil {
		return err
	}

	kept := make([]Trade, 0, len(all))
	for _, t := range all {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(all) {
		return nil
	}

	if err := s.save(ctx, KeyTrades, kept); err != nil {
		return err
	}
	s.log.Debug().Str("trade", id).Msg("Trade deleted")
	return nil
}

func (s *Store) Onboarded(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v bool
	state, err := s.load(ctx, KeyOnboarded, &v)
	if err != nil || state != loaded {
		return false, err
	}
	return v, nil
}

func (s *Store) SetOnboarded(ctx context.Context, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, KeyOnboarded, v)
}
