package chain

import (
	"context"
	"time"

	"token-backend/log"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Cursor persists the last fully scanned block.
type Cursor interface {
	// Last returns the stored block, ok is false when nothing was saved yet.
	Last() (block uint64, ok bool, err error)
	Save(block uint64) error
}

type WatcherConfig struct {
	Address common.Address
	Topics  [][]common.Hash
	// FromBlock is used when the cursor is empty; 0 starts at the current head.
	FromBlock     uint64
	BatchSize     uint64
	PollInterval  time.Duration
	RetryInterval time.Duration
}

// Watcher 历史补扫 + 实时跟踪合约日志。
// 有 subscriber 时订阅新日志，同时按 PollInterval 轮询 eth_getLogs 推进游标。
type Watcher struct {
	conf   WatcherConfig
	reader LogReader
	sub    LogSubscriber
	cursor Cursor
}

func NewWatcher(conf WatcherConfig, reader LogReader, sub LogSubscriber, cursor Cursor) *Watcher {
	if conf.PollInterval <= 0 {
		conf.PollInterval = 12 * time.Second
	}
	if conf.RetryInterval <= 0 {
		conf.RetryInterval = 3 * time.Second
	}
	return &Watcher{conf: conf, reader: reader, sub: sub, cursor: cursor}
}

func (w *Watcher) query() ethereum.FilterQuery {
	return ethereum.FilterQuery{
		Addresses: []common.Address{w.conf.Address},
		Topics:    w.conf.Topics,
	}
}

// Run blocks until ctx ends and nothing writes to out after it returns.
// The subscription only lowers latency: the range scan keeps running every
// PollInterval, advances the cursor and retries ranges that failed.
// Logs are delivered more than once (subscription plus scan, restarts);
// consumers dedupe on (tx hash, log index).
func (w *Watcher) Run(ctx context.Context, out chan<- types.Log) error {
	next, err := w.start(ctx)
	for err != nil {
		log.Logger.Sugar().Warn("watcher start failed: ", err)
		if !sleepCtx(ctx, w.conf.RetryInterval) {
			return ctx.Err()
		}
		next, err = w.start(ctx)
	}
	log.Logger.Sugar().Infof("watching %s from block %d", w.conf.Address.Hex(), next)

	var done chan struct{}
	if w.sub != nil {
		// 先订阅再补扫，避免两者之间漏块
		done = make(chan struct{})
		go func() {
			defer close(done)
			SubscribeLoop(ctx, w.sub, w.query(), out, w.conf.RetryInterval)
		}()
	}

	ticker := time.NewTicker(w.conf.PollInterval)
	defer ticker.Stop()
	for {
		next = w.catchUp(ctx, next, out)
		select {
		case <-ctx.Done():
			if done != nil {
				<-done
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// start resolves the first block to scan.
func (w *Watcher) start(ctx context.Context) (uint64, error) {
	last, ok, err := w.cursor.Last()
	if err != nil {
		return 0, err
	}
	if ok {
		return last + 1, nil
	}
	if w.conf.FromBlock > 0 {
		return w.conf.FromBlock, nil
	}
	return w.reader.BlockNumber(ctx)
}

// catchUp scans [next, head] and advances the cursor past what was delivered.
func (w *Watcher) catchUp(ctx context.Context, next uint64, out chan<- types.Log) uint64 {
	head, err := w.reader.BlockNumber(ctx)
	if err != nil {
		log.Logger.Sugar().Warn("get block number failed: ", err)
		return next
	}
	if head < next {
		return next
	}

	scanned, err := ScanHistory(ctx, w.reader, w.query(), next, head, w.conf.BatchSize, out)
	if scanned > next {
		if serr := w.cursor.Save(scanned - 1); serr != nil {
			log.Logger.Sugar().Warn("save scan cursor failed: ", serr)
		}
	}
	if err != nil && ctx.Err() == nil {
		log.Logger.Sugar().Warnf("scan %d -> %d failed: %v", next, head, err)
	}
	return scanned
}
