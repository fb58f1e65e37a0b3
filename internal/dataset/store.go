package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Loader produces a fresh Data snapshot from the configured source.
type Loader func(ctx context.Context) (*Data, error)

// RetryPolicy bounds how often a failing load is retried. Loads failing
// with ErrInvalidData are never retried.
type RetryPolicy struct {
	Attempts int
	Interval time.Duration
}

// Store holds the current Data snapshot. Readers call Current once per
// query and work on that snapshot; Reload swaps in a new one atomically.
type Store struct {
	current atomic.Pointer[Data]
	loader  Loader
	retry   RetryPolicy
	logger  zerolog.Logger

	reloadMu sync.Mutex
}

// NewStore wraps a fixed snapshot. Reload on such a store fails.
func NewStore(data *Data) *Store {
	s := &Store{logger: zerolog.Nop()}
	s.current.Store(data)
	return s
}

// Open performs the initial load, retrying per policy.
func Open(ctx context.Context, loader Loader, retry RetryPolicy, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		loader: loader,
		retry:  retry,
		logger: logger.With().Str("component", "dataset").Logger(),
	}
	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active snapshot.
func (s *Store) Current() *Data {
	return s.current.Load()
}

// Reload loads a new snapshot and swaps it in. On failure the previous
// snapshot stays active.
func (s *Store) Reload(ctx context.Context) (*Data, error) {
	if s.loader == nil {
		return nil, errors.New("dataset store has no loader")
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	var data *Data
	attempt := 0
	op := func() error {
		attempt++
		d, err := s.loader(ctx)
		if err != nil {
			if errors.Is(err, ErrInvalidData) {
				return backoff.Permanent(err)
			}
			return err
		}
		data = d
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("dataset load failed, retrying")
	}

	if err := backoff.RetryNotify(op, s.backoff(ctx), notify); err != nil {
		s.logger.Error().Err(err).Int("attempts", attempt).Msg("dataset load failed")
		return nil, fmt.Errorf("reload dataset: %w", err)
	}

	s.current.Store(data)
	s.logger.Info().
		Int("games", data.Games.Len()).
		Int("similarity_titles", data.Similarity.Len()).
		Int("genres", len(data.Games.GenreKeys())).
		Msg("dataset loaded")
	return data, nil
}

func (s *Store) backoff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if s.retry.Interval > 0 {
		eb.InitialInterval = s.retry.Interval
	}
	retries := s.retry.Attempts
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}
