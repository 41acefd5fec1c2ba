package redis

import (
	"context"
	"errors"
	"github.com/alicebob/miniredis/v2"
	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type document struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestClient(t *testing.T, lockRetries int) Client {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := Wrap(redis.NewClient(&redis.Options{Addr: server.Addr()}), 10*time.Second, lockRetries)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGetJSONMissingKey(t *testing.T) {
	client := newTestClient(t, 0)
	var doc document
	err := client.GetJSON(context.Background(), "nope", &doc)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLockIsExclusive(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, 0)

	release, err := client.Lock(ctx, "doc")
	require.NoError(t, err)

	_, err = client.Lock(ctx, "doc")
	assert.True(t, errors.Is(err, redislock.ErrNotObtained))

	require.NoError(t, release())
	again, err := client.Lock(ctx, "doc")
	require.NoError(t, err)
	require.NoError(t, again())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, 0)
	require.NoError(t, client.SaveJSON(ctx, "doc", document{Name: "a"}))

	var doc document
	require.NoError(t, client.Update(ctx, "doc", &doc, func() error {
		doc.Count += 2
		return nil
	}))

	var stored document
	require.NoError(t, client.GetJSON(ctx, "doc", &stored))
	assert.Equal(t, document{Name: "a", Count: 2}, stored)

	failed := errors.New("rejected")
	err := client.Update(ctx, "doc", &doc, func() error { return failed })
	assert.True(t, errors.Is(err, failed))

	// the lock is released after a failed update
	release, err := client.Lock(ctx, "doc")
	require.NoError(t, err)
	require.NoError(t, release())
}
