package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_WatcherRejectsMissingRequiredFields(t *testing.T) {
	err := Validate(Watcher{})
	assert.Error(t, err)
}

func TestValidate_WatcherAcceptsMinimalValidConfig(t *testing.T) {
	err := Validate(Watcher{
		ChainID:        1,
		RPCURL:         "https://rpc.example.com",
		DBURL:          "postgres://localhost/db",
		RedisURL:       "localhost:6379",
		RedisStreamKey: DefaultRedisStreamKey,
		RedisGroupName: DefaultRedisGroupName,
		Workers:        4,
	})

	assert.NoError(t, err)
}

func TestValidate_IndexerRequiresIndexerName(t *testing.T) {
	err := Validate(Indexer{
		ChainID:        1,
		DBURL:          "postgres://localhost/db",
		RedisURL:       "localhost:6379",
		RedisStreamKey: DefaultRedisStreamKey,
		RedisGroupName: DefaultRedisGroupName,
	})

	assert.Error(t, err)
}
