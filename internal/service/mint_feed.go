package service

import (
	"context"
	"encoding/json"

	"token-backend/internal/chain"
	"token-backend/internal/metrics"
	"token-backend/internal/repo"
	"token-backend/internal/stats"
	"token-backend/internal/worker"
	"token-backend/log"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Broadcaster pushes a message to every connected feed client.
type Broadcaster interface {
	Broadcast(msg []byte)
}

// MintEvent 推送给 websocket 客户端的 mint 事件
type MintEvent struct {
	To          string `json:"to"`
	Amount      string `json:"amount"`
	RawAmount   string `json:"raw_amount"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint   `json:"log_index"`
	BlockNumber uint64 `json:"block_number"`
}

// MintFeed 处理合约 Transfer 日志：from 为零地址的即 mint
type MintFeed struct {
	abi     abi.ABI
	events  *repo.EventStore
	stats   *stats.Recipients
	hub     Broadcaster
	metrics *metrics.Metrics
}

func NewMintFeed(hub Broadcaster, events *repo.EventStore, recipients *stats.Recipients, m *metrics.Metrics) (*MintFeed, error) {
	parsed, err := chain.TokenABI()
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = repo.NewEventStore()
	}
	if recipients == nil {
		recipients = stats.NewRecipients()
	}
	return &MintFeed{abi: parsed, events: events, stats: recipients, hub: hub, metrics: m}, nil
}

// Topics filters Transfer logs whose sender is the zero address.
func (f *MintFeed) Topics() [][]common.Hash {
	id, _ := chain.EventID(f.abi, chain.TransferEvent)
	return [][]common.Hash{{id}, {common.Hash{}}}
}

// HandleLog is safe for concurrent use by the worker pool.
func (f *MintFeed) HandleLog(l types.Log) {
	// 链重组撤销的日志，允许之后重新处理
	if l.Removed {
		f.events.Forget(l.TxHash.Hex(), l.Index)
		return
	}

	tr, err := chain.DecodeTransfer(f.abi, l)
	if err != nil {
		log.Logger.Sugar().Warn("decode fail ", err)
		return
	}
	if !tr.IsMint() {
		return
	}
	if !f.events.FirstSeen(tr.TxHash.Hex(), tr.LogIndex) {
		return
	}

	f.stats.Observe(tr.To)
	f.metrics.IncMintEvent()

	ev := MintEvent{
		To:          tr.To.Hex(),
		Amount:      chain.FormatEther(tr.Value),
		RawAmount:   tr.Value.String(),
		TxHash:      tr.TxHash.Hex(),
		LogIndex:    tr.LogIndex,
		BlockNumber: tr.BlockNumber,
	}
	log.Logger.Sugar().Infof("Mint event: to %s amount %s tx %s", ev.To, ev.RawAmount, ev.TxHash)

	if f.hub == nil {
		return
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Logger.Sugar().Error("marshal mint event ", err)
		return
	}
	f.hub.Broadcast(msg)
}

func (f *MintFeed) Stats() stats.Snapshot {
	return f.stats.Snapshot()
}

// Run feeds the watcher's logs through a pool of n workers until ctx ends.
func (f *MintFeed) Run(ctx context.Context, w *chain.Watcher, n int) error {
	logs := make(chan types.Log, 256)
	wg := worker.Start(n, logs, f.HandleLog)
	err := w.Run(ctx, logs)
	close(logs)
	wg.Wait()
	return err
}
