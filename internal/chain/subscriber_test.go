package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSub struct {
	errc chan error
}

func (s *fakeSub) Unsubscribe() {}

func (s *fakeSub) Err() <-chan error {
	return s.errc
}

func TestForward(t *testing.T) {
	sub := &fakeSub{errc: make(chan error, 1)}
	in := make(chan types.Log, 1)
	out := make(chan types.Log, 1)

	done := make(chan error, 1)
	go func() { done <- forward(context.Background(), sub, in, out) }()

	in <- types.Log{BlockNumber: 3}
	select {
	case l := <-out:
		assert.Equal(t, uint64(3), l.BlockNumber)
	case <-time.After(time.Second):
		t.Fatal("log not forwarded")
	}

	sub.errc <- errors.New("websocket closed")
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, "websocket closed", err.Error())
	case <-time.After(time.Second):
		t.Fatal("forward did not return")
	}
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepCtx(ctx, time.Hour))
	assert.True(t, sleepCtx(context.Background(), time.Millisecond))
}
