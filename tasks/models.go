package tasks

import (
	"context"
	"errors"
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/redis"
)

// ModelStore caches trained models under their corpus fingerprint.
type ModelStore struct {
	client redis.Client
}

var storeLogger = logger.NewLogger("Model store")

func (store ModelStore) Get(ctx context.Context, fingerprint string) (pos.Model, error) {
	var m pos.Model
	err := store.client.GetJSON(ctx, modelKey(fingerprint), &m)
	return m, err
}

func (store ModelStore) Save(ctx context.Context, fingerprint string, m pos.Model) error {
	return store.client.SaveJSON(ctx, modelKey(fingerprint), m)
}

// GetOrTrain returns the cached model or runs train under the fingerprint's
// lock, so concurrent processes train a corpus once.
func (store ModelStore) GetOrTrain(ctx context.Context, fingerprint string, train func() (pos.Model, error)) (pos.Model, error) {
	fpLogger := storeLogger.With().Str("fingerprint", fingerprint).Logger()

	m, err := store.Get(ctx, fingerprint)
	if err == nil {
		fpLogger.Info().Msg("Using cached model")
		return m, nil
	}
	if !errors.Is(err, redis.ErrNotFound) {
		return pos.Model{}, err
	}

	release, err := store.client.Lock(ctx, modelKey(fingerprint))
	if err != nil {
		return pos.Model{}, err
	}
	defer func() {
		if err := release(); err != nil {
			fpLogger.Err(err).Msg("Failed to release model lock")
		}
	}()

	// someone else may have finished while we waited for the lock
	if m, err = store.Get(ctx, fingerprint); err == nil {
		fpLogger.Info().Msg("Using model trained by another process")
		return m, nil
	}

	fpLogger.Info().Msg("Training model")
	if m, err = train(); err != nil {
		return pos.Model{}, err
	}
	if err = store.Save(ctx, fingerprint, m); err != nil {
		return pos.Model{}, err
	}
	return m, nil
}
