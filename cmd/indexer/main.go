// Command indexer is Stage B of the pipeline: it reads summary logs off
// the stream through a consumer group and decodes/persists transfer
// events via the processor registry. Flags mirror spec.md §6; command
// wiring is grounded on the teacher's indexer/cmd/root.go cobra setup
// and the Rust original's assets-indexer main.rs consumer loop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chainwatch/evm-transfer-indexer/internal/config"
	"github.com/chainwatch/evm-transfer-indexer/internal/db"
	"github.com/chainwatch/evm-transfer-indexer/internal/logger"
	"github.com/chainwatch/evm-transfer-indexer/internal/processor"
	"github.com/chainwatch/evm-transfer-indexer/internal/streambus"
)

var (
	indexerName    string
	chainID        uint32
	redisURL       string
	redisStreamKey string
	redisGroupName string
	dbURL          string
	debug          bool
	migrate        bool
)

func init() {
	rootCmd.Flags().StringVar(&indexerName, "indexer-name", "", "unique consumer name within the group (required)")
	rootCmd.Flags().Uint32Var(&chainID, "chain-id", 1, "chain id whose logs this indexer decodes")
	rootCmd.Flags().StringVar(&redisURL, "redis-url", "localhost:6379", "redis stream server address")
	rootCmd.Flags().StringVar(&redisStreamKey, "redis-stream-key", config.DefaultRedisStreamKey, "stream key to consume from")
	rootCmd.Flags().StringVar(&redisGroupName, "redis-group-name", config.DefaultRedisGroupName, "consumer group to read through")
	rootCmd.Flags().StringVar(&dbURL, "db-url", "", "postgres connection string")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&migrate, "migrate", false, "apply the pipeline schema before starting")
	_ = rootCmd.MarkFlagRequired("indexer-name")
}

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "Decode stream logs into persisted transfer events",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.InitDefaults(viper.GetString("ENV"), debug)
		ctx := logger.NewContext(context.Background(), nil)

		cfg := config.Indexer{
			IndexerName:    indexerName,
			ChainID:        chainID,
			DBURL:          dbURL,
			RedisURL:       redisURL,
			RedisStreamKey: redisStreamKey,
			RedisGroupName: redisGroupName,
			Debug:          debug,
			Migrate:        migrate,
		}
		if err := config.Validate(cfg); err != nil {
			logger.For(ctx).WithError(err).Fatal("invalid configuration")
		}

		if cfg.Migrate {
			if err := db.Migrate(cfg.DBURL); err != nil {
				logger.For(ctx).WithError(err).Fatal("failed to migrate database")
			}
		}

		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			logger.For(ctx).WithError(err).Fatal("failed to connect to database")
		}
		defer pool.Close()

		contracts := db.NewContractRepository(pool)
		erc721 := db.NewERC721Repository(pool)
		erc1155 := db.NewERC1155Repository(pool)
		registry := processor.NewDefaultRegistry(contracts, erc721, erc1155)

		redisClient := streambus.NewClient(cfg.RedisURL, "")
		defer redisClient.Close()
		consumer := streambus.NewConsumer(redisClient)

		if err := consumer.EnsureGroup(ctx, cfg.RedisStreamKey, cfg.RedisGroupName); err != nil {
			logger.For(ctx).WithError(err).Fatal("failed to ensure consumer group")
		}

		runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.For(ctx).Infof("indexer %q reading stream %q as group %q", cfg.IndexerName, cfg.RedisStreamKey, cfg.RedisGroupName)
		for {
			select {
			case <-runCtx.Done():
				logger.For(ctx).Info("indexer shutting down")
				return nil
			default:
			}

			records, err := consumer.Read(runCtx, cfg.RedisStreamKey, cfg.RedisGroupName, cfg.IndexerName)
			if err != nil {
				if runCtx.Err() != nil {
					continue
				}
				logger.For(ctx).WithError(err).Error("failed to read from stream")
				continue
			}

			for _, record := range records {
				for _, summary := range record.Logs {
					registry.Dispatch(ctx, toRequest(cfg.ChainID, summary))
				}
			}
		}
	},
}

// toRequest maps one wire SummaryLog into the processor's per-log
// request, topic-by-position per spec.md §3.
func toRequest(chainID uint32, l streambus.SummaryLog) processor.Request {
	req := processor.Request{
		ChainID:     chainID,
		BlockNumber: l.BlockNumber,
		Address:     l.Address,
		Data:        l.Data,
	}
	if l.TransactionHash != nil {
		req.TxHash = *l.TransactionHash
	}
	if l.TransactionIndex != nil {
		req.TxIndex = *l.TransactionIndex
	}
	if len(l.Topics) > 0 {
		req.Topic0 = l.Topics[0]
	}
	if len(l.Topics) > 1 {
		req.Topic1 = &l.Topics[1]
	}
	if len(l.Topics) > 2 {
		req.Topic2 = &l.Topics[2]
	}
	if len(l.Topics) > 3 {
		req.Topic3 = &l.Topics[3]
	}
	return req
}

func main() {
	viper.SetDefault("ENV", "local")
	viper.AutomaticEnv()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
