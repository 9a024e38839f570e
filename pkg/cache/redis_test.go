package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := New(ctx, WithAddress("127.0.0.1:1"))

	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestCache_KeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	c := NewWithClient(client, "mindcompass:")
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	assert.Equal(t, "mindcompass:progress:abc", c.key("progress:abc"))
	assert.Equal(t, "plain", NewWithClient(client, "").key("plain"))
}
