// Command watcher is Stage A of the pipeline: it walks the chain by
// block number and forwards each transaction's receipt logs to the
// stream. Flags mirror spec.md §6's CLI surface; command wiring is
// grounded on the teacher's indexer/cmd/root.go cobra setup.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chainwatch/evm-transfer-indexer/internal/chainreg"
	"github.com/chainwatch/evm-transfer-indexer/internal/config"
	"github.com/chainwatch/evm-transfer-indexer/internal/db"
	"github.com/chainwatch/evm-transfer-indexer/internal/ethrpc"
	"github.com/chainwatch/evm-transfer-indexer/internal/logger"
	"github.com/chainwatch/evm-transfer-indexer/internal/streambus"
	"github.com/chainwatch/evm-transfer-indexer/internal/syncer"
)

var (
	chainID        uint32
	rpcURL         string
	startBlock     uint64
	endBlock       uint64
	reset          bool
	debug          bool
	redisURL       string
	redisStreamKey string
	redisGroupName string
	dbURL          string
	workers        int
	migrate        bool
)

func init() {
	rootCmd.Flags().Uint32Var(&chainID, "chain-id", 1, "chain id to synchronize")
	rootCmd.Flags().StringVar(&rpcURL, "rpc", "", "JSON-RPC HTTP endpoint of the EVM node")
	rootCmd.Flags().Uint64Var(&startBlock, "start-block", 0, "first block to process [optional]")
	rootCmd.Flags().Uint64Var(&endBlock, "end-block", 0, "last block to process [optional]; when omitted, tail the chain head")
	rootCmd.Flags().BoolVar(&reset, "reset", false, "delete all progress rows for this chain before starting")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVar(&redisURL, "redis-url", "localhost:6379", "redis stream server address")
	rootCmd.Flags().StringVar(&redisStreamKey, "redis-stream-key", config.DefaultRedisStreamKey, "stream key logs are published to")
	rootCmd.Flags().StringVar(&redisGroupName, "redis-group-name", config.DefaultRedisGroupName, "consumer group created on the stream")
	rootCmd.Flags().StringVar(&dbURL, "db-url", "", "postgres connection string")
	rootCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "per-block receipt fan-out worker budget")
	rootCmd.Flags().BoolVar(&migrate, "migrate", false, "apply the pipeline schema before starting")
}

var rootCmd = &cobra.Command{
	Use:   "watcher",
	Short: "Watch an EVM chain and publish transfer event logs to a stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.InitDefaults(viper.GetString("ENV"), debug)
		ctx := logger.NewContext(context.Background(), nil)

		cfg := config.Watcher{
			ChainID:        chainID,
			RPCURL:         rpcURL,
			DBURL:          dbURL,
			RedisURL:       redisURL,
			RedisStreamKey: redisStreamKey,
			RedisGroupName: redisGroupName,
			Reset:          reset,
			Debug:          debug,
			Workers:        workers,
			Migrate:        migrate,
		}
		if cmd.Flags().Changed("start-block") {
			cfg.StartBlock = &startBlock
		}
		if cmd.Flags().Changed("end-block") {
			cfg.EndBlock = &endBlock
		}
		if err := config.Validate(cfg); err != nil {
			logger.For(ctx).WithError(err).Fatal("invalid configuration")
		}

		chain, err := chainreg.Get(cfg.ChainID)
		if err != nil {
			logger.For(ctx).WithError(err).Fatal("unknown chain id")
		}
		logger.For(ctx).Infof("starting watcher for chain %s (%d)", chain.Name, chain.ID)

		ethClient, err := ethrpc.Dial(ctx, cfg.RPCURL)
		if err != nil {
			logger.For(ctx).WithError(err).Fatal("failed to connect to RPC node")
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
		blockRepo := db.NewBlockRepository(pool)

		redisClient := streambus.NewClient(cfg.RedisURL, "")
		defer redisClient.Close()
		producer := streambus.NewProducer(redisClient)

		sync := syncer.New(ethClient, producer, blockRepo, syncer.Config{
			ChainID:    cfg.ChainID,
			StreamKey:  cfg.RedisStreamKey,
			StartBlock: cfg.StartBlock,
			EndBlock:   cfg.EndBlock,
			Workers:    cfg.Workers,
		})

		runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := sync.Run(runCtx, cfg.Reset); err != nil && runCtx.Err() == nil {
			logger.For(ctx).WithError(err).Error("watcher exited with error")
			return err
		}
		logger.For(ctx).Info("watcher shutting down")
		return nil
	},
}

func main() {
	viper.SetDefault("ENV", "local")
	viper.AutomaticEnv()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
