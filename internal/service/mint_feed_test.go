package service

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"token-backend/internal/chain"
	"token-backend/internal/repo"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferLog(t *testing.T, from, to common.Address, value int64, tx string, idx uint) types.Log {
	t.Helper()
	a, err := chain.TokenABI()
	require.NoError(t, err)
	data, err := a.Events[chain.TransferEvent].Inputs.NonIndexed().Pack(big.NewInt(value))
	require.NoError(t, err)
	return types.Log{
		Address: tokenAddr,
		Topics: []common.Hash{
			a.Events[chain.TransferEvent].ID,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data:        data,
		TxHash:      common.HexToHash(tx),
		Index:       idx,
		BlockNumber: 100,
	}
}

func TestMintFeed_HandleLog(t *testing.T) {
	hub := &recordingHub{}
	feed, err := NewMintFeed(hub, repo.NewEventStore(), nil, nil)
	require.NoError(t, err)

	mint := transferLog(t, common.Address{}, holder, 1, "0x01", 0)
	feed.HandleLog(mint)
	feed.HandleLog(mint)
	feed.HandleLog(transferLog(t, keyAddr, holder, 5, "0x02", 0))
	feed.HandleLog(transferLog(t, common.Address{}, keyAddr, 2_000_000_000_000_000_000, "0x03", 1))

	require.Equal(t, 2, hub.Len())
	var ev MintEvent
	require.NoError(t, json.Unmarshal(hub.msgs[0], &ev))
	assert.Equal(t, holder.Hex(), ev.To)
	assert.Equal(t, "0.000000000000000001", ev.Amount)
	assert.Equal(t, "1", ev.RawAmount)
	assert.Equal(t, uint64(100), ev.BlockNumber)

	require.NoError(t, json.Unmarshal(hub.msgs[1], &ev))
	assert.Equal(t, "2", ev.Amount)

	s := feed.Stats()
	assert.Equal(t, uint64(2), s.MintsObserved)
	assert.InDelta(t, 2, float64(s.UniqueRecipients), 0.5)
}

func TestMintFeed_RemovedLogReprocessed(t *testing.T) {
	hub := &recordingHub{}
	feed, err := NewMintFeed(hub, nil, nil, nil)
	require.NoError(t, err)

	l := transferLog(t, common.Address{}, holder, 1, "0x01", 0)
	feed.HandleLog(l)
	removed := l
	removed.Removed = true
	feed.HandleLog(removed)
	feed.HandleLog(l)

	assert.Equal(t, 2, hub.Len())
}

func TestMintFeed_Topics(t *testing.T) {
	feed, err := NewMintFeed(nil, nil, nil, nil)
	require.NoError(t, err)

	topics := feed.Topics()
	require.Len(t, topics, 2)
	assert.Equal(t, common.Hash{}, topics[1][0])

	// no hub configured
	feed.HandleLog(transferLog(t, common.Address{}, holder, 1, "0x01", 0))
	assert.Equal(t, uint64(1), feed.Stats().MintsObserved)
}

type staticLogs struct {
	logs []types.Log
}

func (s *staticLogs) BlockNumber(context.Context) (uint64, error) {
	return 100, nil
}

func (s *staticLogs) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return s.logs, nil
}

func TestMintFeed_Run(t *testing.T) {
	hub := &recordingHub{}
	feed, err := NewMintFeed(hub, nil, nil, nil)
	require.NoError(t, err)

	reader := &staticLogs{logs: []types.Log{
		transferLog(t, common.Address{}, holder, 1, "0x01", 0),
		transferLog(t, common.Address{}, keyAddr, 1, "0x02", 0),
	}}
	w := chain.NewWatcher(chain.WatcherConfig{
		Address:      tokenAddr,
		Topics:       feed.Topics(),
		FromBlock:    90,
		PollInterval: time.Hour,
	}, reader, nil, repo.NewMemoryCursor())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx, w, 2) }()

	assert.Eventually(t, func() bool { return hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
