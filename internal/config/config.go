// Package config holds and validates the two binaries' runtime
// configuration, using validator-tagged structs in the style of the
// teacher's env/env.go. The values are filled in by cmd/ from command-line
// flags and their defaults; no environment variable or config file
// overrides them.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	// DefaultRedisStreamKey is the stream the Watcher publishes log
	// batches to and the Indexer consumes from.
	DefaultRedisStreamKey = "evm_transfer_logs"
	// DefaultRedisGroupName is the consumer group the Indexer reads
	// through.
	DefaultRedisGroupName = "evm_transfer_indexer"
)

// Watcher holds Stage A's runtime configuration.
type Watcher struct {
	ChainID        uint32  `validate:"required"`
	RPCURL         string  `validate:"required,url"`
	DBURL          string  `validate:"required"`
	RedisURL       string  `validate:"required"`
	RedisStreamKey string  `validate:"required"`
	RedisGroupName string  `validate:"required"`
	StartBlock     *uint64
	EndBlock       *uint64
	Reset          bool
	Debug          bool
	Workers        int `validate:"required,gt=0"`
	Migrate        bool
}

// Indexer holds Stage B's runtime configuration.
type Indexer struct {
	IndexerName    string `validate:"required"`
	ChainID        uint32 `validate:"required"`
	DBURL          string `validate:"required"`
	RedisURL       string `validate:"required"`
	RedisStreamKey string `validate:"required"`
	RedisGroupName string `validate:"required"`
	Debug          bool
	Migrate        bool
}

// Validate runs struct-tag validation and returns a single wrapped error
// describing every violation, so CLI startup fails fatally with one
// readable message (spec.md §6 and §7's "initialization errors are fatal").
func Validate(cfg interface{}) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
