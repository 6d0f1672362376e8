package entropy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientUsesCrypto(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
	for i := 0; i < 100; i++ {
		s := c.Seed(context.Background())
		assert.GreaterOrEqual(t, s, int64(1))
		assert.LessOrEqual(t, s, int64(maxSeed))
	}
	assert.Nil(t, NewClient(""))
}

func TestSeedFromPool(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "generateIntegers", req["method"])
		w.Write([]byte(`{"jsonrpc":"2.0","result":{"random":{"data":[42,7]}},"id":1}`))
	}))
	defer srv.Close()

	c := NewClient("key")
	c.endpoint = srv.URL
	require.True(t, c.Enabled())

	ctx := context.Background()
	assert.Equal(t, int64(42), c.Seed(ctx))
	assert.Equal(t, int64(7), c.Seed(ctx))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(42), c.Seed(ctx))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSeedFallsBackOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","error":{"message":"bad key"},"id":1}`))
	}))
	defer srv.Close()

	c := NewClient("key")
	c.endpoint = srv.URL
	s := c.Seed(context.Background())
	assert.GreaterOrEqual(t, s, int64(1))
	assert.Empty(t, c.pool)
}
