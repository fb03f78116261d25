// Package syncer is C5, the Synchronizer: walks block ranges, orchestrates
// bounded fan-out of receipt fetches, publishes logs, records progress,
// and recovers gaps. Grounded on the teacher's indexer/indexer.go
// catchUp/workerpool idiom and the Rust original's
// apps/chain-watcher/src/services/sync.rs (ChainSynchronizer).
package syncer

import (
	"context"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gammazero/workerpool"

	"github.com/chainwatch/evm-transfer-indexer/internal/logger"
	"github.com/chainwatch/evm-transfer-indexer/internal/streambus"
)

// BlockchainClient is the subset of C1 the Synchronizer drives.
type BlockchainClient interface {
	GetBlockWithTxs(ctx context.Context, number uint64) (*types.Block, error)
	GetTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	GetBlockNumber(ctx context.Context) (uint64, error)
}

// LogPublisher is C2's public operation.
type LogPublisher interface {
	SendLogs(ctx context.Context, streamKey string, logs []streambus.SummaryLog) error
}

// BlockStore is the subset of C3 the Synchronizer drives directly.
type BlockStore interface {
	GetIndexedBlocks(ctx context.Context, chainID uint32) (map[uint64]struct{}, error)
	InsertBlock(ctx context.Context, blockNumber uint64, chainID uint32) error
	Reset(ctx context.Context, chainID uint32) error
}

// Config parameterizes one Synchronizer run.
type Config struct {
	ChainID    uint32
	StreamKey  string
	StartBlock *uint64
	EndBlock   *uint64
	// Workers bounds per-block receipt-fetch+publish fan-out; defaults
	// to runtime.NumCPU() at the call site per spec.md §5.
	Workers int
}

// Synchronizer is C5.
type Synchronizer struct {
	chain  BlockchainClient
	stream LogPublisher
	blocks BlockStore
	cfg    Config
}

func New(chain BlockchainClient, stream LogPublisher, blocks BlockStore, cfg Config) *Synchronizer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Synchronizer{chain: chain, stream: stream, blocks: blocks, cfg: cfg}
}

// StartBlock returns the configured start, else 0.
func (s *Synchronizer) StartBlock() uint64 {
	if s.cfg.StartBlock != nil {
		return *s.cfg.StartBlock
	}
	return 0
}

// EndBlock returns the configured end, else the live head from C1.
func (s *Synchronizer) EndBlock(ctx context.Context) (uint64, error) {
	if s.cfg.EndBlock != nil {
		return *s.cfg.EndBlock, nil
	}
	return s.chain.GetBlockNumber(ctx)
}

// MissingBlocks returns [start, end) \ indexed(chain_id). When the
// indexed set is empty the result is empty too — the first-run,
// nothing-to-recover case (spec.md §4.5).
func (s *Synchronizer) MissingBlocks(ctx context.Context) ([]uint64, error) {
	indexed, err := s.blocks.GetIndexedBlocks(ctx, s.cfg.ChainID)
	if err != nil {
		logger.For(ctx).WithError(err).Error("failed to load indexed blocks")
		indexed = map[uint64]struct{}{}
	}
	if len(indexed) == 0 {
		return nil, nil
	}

	end, err := s.EndBlock(ctx)
	if err != nil {
		return nil, err
	}

	start := s.StartBlock()
	var missing []uint64
	for n := start; n < end; n++ {
		if _, ok := indexed[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

// SyncMissingBlocks processes a (possibly empty) list of specific
// heights, recovering gaps left by a prior crash.
func (s *Synchronizer) SyncMissingBlocks(ctx context.Context, blocks []uint64) {
	for _, n := range blocks {
		s.processBlock(ctx, n)
	}
}

// Sync processes an inclusive range [from, to]. If to < from it returns
// immediately (spec.md §8 boundary behavior).
func (s *Synchronizer) Sync(ctx context.Context, from, to uint64) {
	if to < from {
		return
	}
	for n := from; n <= to; n++ {
		s.processBlock(ctx, n)
	}
}

// processBlock implements the per-block protocol of spec.md §4.5: fetch
// the block, fan out receipt fetch + publish across at most cfg.Workers
// concurrent tasks, wait for all of them, then record progress. RPC and
// publish errors are logged and swallowed; the block is left unmarked so
// the next MissingBlocks sweep retries it.
func (s *Synchronizer) processBlock(ctx context.Context, number uint64) {
	block, err := s.chain.GetBlockWithTxs(ctx, number)
	if err != nil {
		logger.For(ctx).WithError(err).WithField("block", number).Error("failed to fetch block")
		return
	}
	if block == nil {
		return
	}

	var failed atomic.Bool
	wp := workerpool.New(s.cfg.Workers)
	for _, tx := range block.Transactions() {
		txHash := tx.Hash()
		wp.Submit(func() {
			if !s.processTransaction(ctx, txHash) {
				failed.Store(true)
			}
		})
	}
	wp.StopWait()

	if failed.Load() {
		logger.For(ctx).WithField("block", number).Warn("block left unrecorded after a receipt or publish error")
		return
	}

	if err := s.blocks.InsertBlock(ctx, number, s.cfg.ChainID); err != nil {
		logger.For(ctx).WithError(err).WithField("block", number).Error("failed to record block progress")
		return
	}
	logger.For(ctx).WithField("block", number).Debug("block fully processed")
}

// processTransaction fetches one receipt and publishes its logs. It
// returns false when the receipt fetch or the publish failed.
func (s *Synchronizer) processTransaction(ctx context.Context, txHash common.Hash) bool {
	receipt, err := s.chain.GetTransactionReceipt(ctx, txHash)
	if err != nil {
		logger.For(ctx).WithError(err).WithField("tx", txHash.Hex()).Error("failed to fetch receipt")
		return false
	}
	if receipt == nil {
		return true
	}

	logs := make([]streambus.SummaryLog, 0, len(receipt.Logs))
	for _, l := range receipt.Logs {
		if l == nil {
			continue
		}
		logs = append(logs, streambus.NewSummaryLog(*l))
	}

	if err := s.stream.SendLogs(ctx, s.cfg.StreamKey, logs); err != nil {
		logger.For(ctx).WithError(err).WithField("tx", txHash.Hex()).Error("failed to publish logs")
		return false
	}
	return true
}

// Run drives the full protocol: optional reset, a missing-blocks sweep,
// then an infinite loop tailing the chain head. The outer loop has no
// sleep; progress blocks naturally on the RPC's tail latency.
func (s *Synchronizer) Run(ctx context.Context, reset bool) error {
	if reset {
		if err := s.blocks.Reset(ctx, s.cfg.ChainID); err != nil {
			return err
		}
	}

	missing, err := s.MissingBlocks(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		logger.For(ctx).Infof("recovering %d missing blocks", len(missing))
		s.SyncMissingBlocks(ctx, missing)
	}

	// The loop always starts at start_block, matching spec.md §4.5's Run
	// protocol literally: the first Sync(cursor, end) call below fetches a
	// fresh end and covers [start_block, end] single-handedly, so there is
	// no gap between the sweep and the tail loop to account for. Starting
	// from a later snapshot of end_block taken right after the sweep would
	// leave anything that landed on-chain between the two end_block reads
	// unfetched until a future restart's sweep caught it.
	cursor := s.StartBlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end, err := s.EndBlock(ctx)
		if err != nil {
			logger.For(ctx).WithError(err).Error("failed to fetch chain head")
			continue
		}
		if end < cursor {
			continue
		}
		s.Sync(ctx, cursor, end)
		cursor = end + 1
	}
}
