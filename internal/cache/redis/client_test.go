package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptionsHostPort(t *testing.T) {
	opts, err := clientOptions(ClientConfig{Addr: "localhost:6379", DB: 2, TLSEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	require.NotNil(t, opts.TLSConfig)
}

func TestClientOptionsURL(t *testing.T) {
	opts, err := clientOptions(ClientConfig{Addr: "rediss://:secret@cache.internal:6380/3"})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)
	assert.NotNil(t, opts.TLSConfig)

	opts, err = clientOptions(ClientConfig{Addr: "redis://cache.internal:6379/3", Password: "override", DB: 5})
	require.NoError(t, err)
	assert.Equal(t, "override", opts.Password)
	assert.Equal(t, 5, opts.DB)
	assert.Nil(t, opts.TLSConfig)
}

func TestClientOptionsRejectsBadAddress(t *testing.T) {
	_, err := clientOptions(ClientConfig{Addr: " "})
	require.Error(t, err)

	_, err = clientOptions(ClientConfig{Addr: "http://cache.internal:6379"})
	require.Error(t, err)
}
